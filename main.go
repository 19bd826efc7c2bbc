package main

import (
	"fmt"
	"os"

	"github.com/PolarWolf314/tact/cmd"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tact",
	Short: "tact - Move your notes between devices with QR codes, no network needed.",
	Long: `tact keeps a profile and its records on this device and moves them to
another one through a sequence of encrypted QR codes. Nothing is uploaded:
the codes are printed, shown on screen or saved as images and scanned on
the other side.

Usage:
  tact <command> [flags]

Available Commands:
  backup     Export and import encrypted QR backups
  records    Manage the records stored on this device
  profile    Show or edit the local profile
  config     Manage configuration

Run 'tact help <command>' for more details on a specific command.
`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Welcome to tact! Run 'tact --help' to see available commands.")
	},
}

func init() {
	rootCmd.AddCommand(cmd.BackupCmd)
	rootCmd.AddCommand(cmd.RecordsCmd)
	rootCmd.AddCommand(cmd.ProfileCmd)
	rootCmd.AddCommand(cmd.ConfigCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
