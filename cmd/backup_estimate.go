package cmd

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/tact/internal/ui"
	"github.com/PolarWolf314/tact/internal/workflows"
	"github.com/spf13/cobra"
)

var estimateCapacity int

func init() {
	estimateCmd.Flags().IntVar(&estimateCapacity, "capacity", 0, "characters per QR code (default from config)")
}

// resetEstimateCommandState resets the estimate command's global state for testing.
func resetEstimateCommandState() {
	estimateCapacity = 0
}

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Show how many QR codes an export would need",
	Long: `Measures the backup of your profile without encrypting it and reports
how many QR codes an export would produce at the configured capacity.

Examples:
  tact backup estimate
  tact backup estimate --capacity 800`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting estimate command")
		spinner, cleanup := startSpinner("Measuring backup...", verbose)
		defer cleanup()

		result, err := workflows.Estimate(context.Background(), workflows.EstimateOptions{Capacity: estimateCapacity})
		if err != nil {
			spinner.FinalMSG = formatBackupError(err)
			if isUnexpectedError(err) {
				return err
			}
			return nil
		}

		Logger.Debugf("Serialized %d, compressed %d, encoded %d", result.Serialized, result.Compressed, result.Encoded)

		spinner.FinalMSG = fmt.Sprintf("%s %s would need %s %s\n\n"+
			"  Records:    %d\n"+
			"  JSON:       %s\n"+
			"  Compressed: %s\n"+
			"  Blob:       %s\n"+
			"  Capacity:   %d characters per code, %d per data chunk",
			ui.Success.Sprint("✓"), "Exporting "+ui.Plural(result.Records, "record"),
			ui.Plural(result.FrameCount, "QR code"), ui.Muted.Sprint(string(result.Format)),
			result.Records, ui.Bytes(result.Serialized), ui.Bytes(result.Compressed),
			fmt.Sprintf("%d characters", result.Encoded),
			result.Options.Capacity, result.Options.ChunkSize())
		return nil
	},
}
