package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/PolarWolf314/tact/internal/configs"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var configShowJSON bool

func init() {
	configShowCmd.Flags().BoolVar(&configShowJSON, "json", false, "output in JSON format")
	ConfigCmd.AddCommand(configShowCmd)
}

// resetConfigShowState resets the config show command's global state for testing.
func resetConfigShowState() {
	configShowJSON = false
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display the effective configuration",
	Long: `Displays the configuration tact runs with: config.toml merged over the
built-in defaults, plus the directories tact reads and writes.

Examples:
  tact config show
  tact config show --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ConfigLogger.Infof("Starting config show command")

		path := configs.UserTactSettings.ConfigFile()
		ConfigLogger.Debugf("Loading config from %s", path)
		config, err := configs.LoadConfig()
		if err != nil {
			fmt.Println(color.RedString("✗") + " " + err.Error())
			return nil
		}

		if configShowJSON {
			output, err := json.MarshalIndent(config, "", "  ")
			if err != nil {
				return ConfigLogger.ErrorfAndReturn("Failed to marshal config to JSON: %v", err)
			}
			fmt.Println(string(output))
			return nil
		}

		source := path
		if _, err := os.Stat(path); os.IsNotExist(err) {
			source = "built-in defaults, " + path + " not found"
		}

		fmt.Println(color.CyanString("Configuration") + " (" + source + "):")
		fmt.Println()
		fmt.Println(color.CyanString("Transfer:"))
		fmt.Printf("  %-18s %s\n", "Capacity:", color.GreenString("%d characters", config.Transfer.Capacity))
		fmt.Printf("  %-18s %s\n", "Overhead:", color.GreenString("%d characters", config.Transfer.Overhead))
		fmt.Printf("  %-18s %s\n", "Image size:", color.GreenString("%d px", config.Transfer.ImageSize))
		fmt.Printf("  %-18s %s\n", "Frame interval:", color.GreenString("%s", config.FrameInterval()))
		fmt.Printf("  %-18s %s\n", "Format:", color.GreenString(config.Transfer.Format))
		fmt.Println(color.CyanString("Import:"))
		fmt.Printf("  %-18s %s\n", "Idle timeout:", color.GreenString("%s", config.Import.SessionIdleTimeout.Duration))
		fmt.Println()
		fmt.Printf("  %-18s %s\n", "Data directory:", color.YellowString(configs.UserTactSettings.DataPath))
		return nil
	},
}
