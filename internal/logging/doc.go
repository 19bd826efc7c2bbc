// Package logger provides leveled logging for tact CLI commands.
//
// The logger supports multiple verbosity levels controlled by command-line
// flags. Output is formatted with coloured prefixes.
//
// # Verbosity Levels
//
// Logging behavior is controlled by two flags:
//
//   - --verbose: Shows info messages
//   - --debug: Shows all messages including debug details
//
// Warnings and errors are always shown.
//
// # Log Methods
//
//	Logger.Infof()           // Shown with --verbose or --debug
//	Logger.Debugf()          // Shown only with --debug
//	Logger.Warnf()           // Always shown
//	Logger.Errorf()          // Always shown
//	Logger.ErrorfAndReturn() // Builds an error, logged with --debug
//
// # Usage
//
// Create a logger with the desired verbosity:
//
//	log := Logger{Verbose: verbose, Debug: debug}
//	log.Infof("Rendering %d frames", count)
//
// Commands create a logger in their PersistentPreRun and pass it to
// internal functions.
package logger
