package cmd

import (
	"fmt"
	"os"

	"github.com/PolarWolf314/tact/internal/artifacts"
	"github.com/PolarWolf314/tact/internal/configs"
	"github.com/PolarWolf314/tact/internal/ui"
	"github.com/spf13/cobra"
)

var (
	configInitForce    bool
	configInitCapacity int
	configInitFormat   string
)

func init() {
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "overwrite an existing config.toml")
	configInitCmd.Flags().IntVar(&configInitCapacity, "capacity", 0, "characters per QR code")
	configInitCmd.Flags().StringVar(&configInitFormat, "format", "", "default export format")
	ConfigCmd.AddCommand(configInitCmd)
}

// resetConfigInitState resets the config init command's global state for testing.
func resetConfigInitState() {
	configInitForce = false
	configInitCapacity = 0
	configInitFormat = ""
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write config.toml with the default settings",
	Long: `Creates config.toml in the tact config directory with every setting at its
default, so it can be edited by hand. Set TACT_CONFIG_DIR to use another
directory.

Examples:
  tact config init
  tact config init --capacity 800 --format pdf
  tact config init --force`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ConfigLogger.Infof("Starting config init command")

		path := configs.UserTactSettings.ConfigFile()
		if _, err := os.Stat(path); err == nil && !configInitForce {
			fmt.Println(ui.Warning.Sprint("⚠") + " " + ui.Path.Sprint(path) + " already exists\n" +
				ui.Info.Sprint("→") + " Use " + ui.Flag.Sprint("--force") + " to replace it with the defaults")
			return nil
		}

		config := configs.DefaultConfig()
		if configInitCapacity > 0 {
			config.Transfer.Capacity = configInitCapacity
		}
		if configInitFormat != "" {
			f, err := artifacts.ParseFormat(configInitFormat)
			if err != nil {
				fmt.Println(ui.Error.Sprint("✗") + " " + err.Error())
				return nil
			}
			config.Transfer.Format = string(f)
		}

		spinner, cleanup := startSpinnerWithFlags("Writing configuration...", configVerbose, configDebug)
		defer cleanup()

		if err := configs.SaveConfig(config); err != nil {
			spinner.FinalMSG = ui.Error.Sprint("✗") + " " + err.Error()
			return nil
		}

		ConfigLogger.Debugf("Wrote %s", path)
		spinner.FinalMSG = ui.Success.Sprint("✓") + " Wrote " + ui.Path.Sprint(path)
		return nil
	},
}
