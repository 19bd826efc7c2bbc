package cmd

import (
	logger "github.com/PolarWolf314/tact/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	verbose bool
	debug   bool
	Logger  logger.Logger

	BackupCmd = &cobra.Command{
		Use:   "backup",
		Short: "Move your records to another device through QR codes",
		Long: `Seals your profile and records with a password, splits the encrypted
backup into QR codes and reads them back on the receiving device.

The codes can be saved as a zip of images, a printable PDF, an animated GIF
or plain text, or shown one at a time in the terminal.`,
		PersistentPreRun: initLogger,
	}
)

func init() {
	addLoggingFlags(BackupCmd)

	BackupCmd.AddCommand(exportCmd)
	BackupCmd.AddCommand(importCmd)
	BackupCmd.AddCommand(estimateCmd)
	BackupCmd.AddCommand(logCmd)
}

// addLoggingFlags binds --verbose and --debug for a command group.
func addLoggingFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	cmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug output")
}

func initLogger(cmd *cobra.Command, args []string) {
	Logger = logger.Logger{
		Verbose: verbose,
		Debug:   debug,
	}
	Logger.Debugf("Initializing %s command with verbose=%t, debug=%t", cmd.CommandPath(), verbose, debug)
}

// Helper functions for testing

// ResetGlobalState resets all global variables to their default values for testing.
func ResetGlobalState() {
	verbose = false
	debug = false
	resetExportCommandState()
	resetImportCommandState()
	resetEstimateCommandState()
	resetLogCommandState()
	resetProfileCommandState()
	resetRecordsCommandState()
	for _, group := range []*cobra.Command{BackupCmd, ProfileCmd, RecordsCmd} {
		resetCobraFlagState(group)
	}
}

// resetCobraFlagState clears the Changed marks left by a previous run.
func resetCobraFlagState(cmd *cobra.Command) {
	reset := func(flag *pflag.Flag) { flag.Changed = false }
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetCobraFlagState(sub)
	}
}
