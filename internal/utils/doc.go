// Package utils provides shared utility functions for tact.
//
// # Filesystem Utilities
//
//   - ListFilesWithExt: lists files in a directory by extension
//   - WriteFileAtomic: writes a file through a temporary name
//
// # System Utilities
//
//   - GetHostname, DeviceName: identify this machine in output names
//   - SanitizeName: normalizes labels for use in file names
//
// # I/O Utilities
//
//   - StdinIsPiped: tells piped input from an interactive terminal
//   - ReadLine: reads one line, used for --password-stdin
//
// # Terminal Utilities
//
//   - ReadPassphrase, ReadPassphraseFromTTY: read passwords without echo
//   - ClearScreen, WaitForEnterFromTTY: page codes on the terminal
package utils
