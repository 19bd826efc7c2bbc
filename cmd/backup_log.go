package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/PolarWolf314/tact/internal/audit"
	kerrors "github.com/PolarWolf314/tact/internal/errors"
	"github.com/PolarWolf314/tact/internal/ui"
	"github.com/PolarWolf314/tact/internal/workflows"
	"github.com/spf13/cobra"
)

var (
	logLimit     int
	logReverse   bool
	logSession   string
	logOperation string
	logSince     string
	logUntil     string
	logJSON      bool
)

func init() {
	logCmd.Flags().IntVarP(&logLimit, "number", "n", 0, "limit number of entries shown")
	logCmd.Flags().BoolVar(&logReverse, "reverse", false, "show most recent entries first")
	logCmd.Flags().StringVar(&logSession, "session", "", "filter by transfer session id")
	logCmd.Flags().StringVar(&logOperation, "operation", "", "filter by operation: export, import, profile, record (comma-separated)")
	logCmd.Flags().StringVar(&logSince, "since", "", "show entries on or after date (YYYY-MM-DD)")
	logCmd.Flags().StringVar(&logUntil, "until", "", "show entries on or before date (YYYY-MM-DD)")
	logCmd.Flags().BoolVar(&logJSON, "json", false, "output as JSON array")
}

// resetLogCommandState resets the log command's global state for testing.
func resetLogCommandState() {
	logLimit = 0
	logReverse = false
	logSession = ""
	logOperation = ""
	logSince = ""
	logUntil = ""
	logJSON = false
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "View the history of exports and imports",
	Long: `Displays the audit log of exports, imports and local edits on this device.

Examples:
  tact backup log                         # View full log
  tact backup log -n 10                   # Last 10 entries
  tact backup log --reverse               # Most recent first
  tact backup log --operation import      # Only imports
  tact backup log --session k3x9q2        # One transfer
  tact backup log --since 2024-01-01      # Filter by date
  tact backup log --json                  # JSON output`,
	RunE: runLog,
}

func runLog(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting log command")

	result, err := workflows.Log(context.Background(), workflows.LogOptions{
		Limit:      logLimit,
		Reverse:    logReverse,
		Session:    logSession,
		Operations: logOperation,
		Since:      logSince,
		Until:      logUntil,
	})
	if err != nil {
		fmt.Println(formatLogError(err))
		if isUnexpectedError(err) {
			return err
		}
		return nil
	}

	Logger.Debugf("Parsed %d entries, %d after filtering", result.TotalEntriesBeforeFilter, len(result.Entries))

	if len(result.Entries) == 0 {
		if result.TotalEntriesBeforeFilter == 0 {
			fmt.Println("No audit log entries found.")
		} else {
			fmt.Println("No audit log entries found matching the filters.")
		}
		return nil
	}

	if logJSON {
		return outputLogJSON(result.Entries)
	}
	for _, e := range result.Entries {
		fmt.Printf("%-19s  %-8s  %s\n", workflows.FormatDateTime(e.Timestamp), e.Operation, workflows.FormatDetails(e))
	}
	return nil
}

// formatLogError formats a log error for display to the user.
func formatLogError(err error) string {
	switch {
	case errors.Is(err, kerrors.ErrNoFilesFound):
		return ui.Info.Sprint("ℹ") + " No audit log found. Exports and imports are logged once you run them."
	case errors.Is(err, kerrors.ErrInvalidDateFormat):
		return ui.Error.Sprint("✗") + " " + err.Error()
	default:
		return ui.Error.Sprint("✗") + " Failed to read audit log: " + err.Error()
	}
}

func outputLogJSON(entries []audit.Entry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal entries to JSON: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
