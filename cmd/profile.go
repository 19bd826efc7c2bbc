package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	kerrors "github.com/PolarWolf314/tact/internal/errors"
	"github.com/PolarWolf314/tact/internal/ui"
	"github.com/PolarWolf314/tact/internal/workflows"
	"github.com/spf13/cobra"
)

var (
	profileName  string
	profileEmail string

	ProfileCmd = &cobra.Command{
		Use:   "profile",
		Short: "Show or edit the local profile",
		Long: `The local profile owns the records on this device and travels with every
backup. A default profile is created the first time tact runs.`,
		PersistentPreRun: initLogger,
	}
)

func init() {
	addLoggingFlags(ProfileCmd)

	profileSetCmd.Flags().StringVarP(&profileName, "name", "n", "", "display name")
	profileSetCmd.Flags().StringVarP(&profileEmail, "email", "e", "", "email address")
	profileSetCmd.MarkFlagsOneRequired("name", "email")

	ProfileCmd.AddCommand(profileShowCmd)
	ProfileCmd.AddCommand(profileSetCmd)
}

// resetProfileCommandState resets the profile commands' global state for testing.
func resetProfileCommandState() {
	profileName = ""
	profileEmail = ""
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display the local profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting profile show command")

		p, err := workflows.Profile(context.Background())
		if err != nil {
			return Logger.ErrorfAndReturn("failed to load profile: %v", err)
		}

		fmt.Printf("Name:    %s\n", p.User.Name)
		fmt.Printf("Email:   %s\n", p.User.Email)
		fmt.Printf("ID:      %s\n", ui.Muted.Sprint(p.User.ID))
		fmt.Printf("Records: %d\n", p.RecordsCount)
		if len(p.Tags) > 0 {
			fmt.Printf("Tags:    %s\n", strings.Join(p.Tags, ", "))
		}
		return nil
	},
}

var profileSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change the profile's name or email",
	Long: `Changes the display name or email of the local profile.

Examples:
  tact profile set --name "Ada Lovelace"
  tact profile set --email ada@example.com`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting profile set command")

		var opts workflows.UpdateProfileOptions
		if cmd.Flags().Changed("name") {
			opts.Name = &profileName
		}
		if cmd.Flags().Changed("email") {
			opts.Email = &profileEmail
		}

		u, err := workflows.UpdateProfile(context.Background(), opts)
		if errors.Is(err, kerrors.ErrInvalidEmail) {
			fmt.Println(ui.Error.Sprint("✗") + " " + ui.Highlight.Sprint(profileEmail) + " is not a valid email address")
			return nil
		}
		if err != nil {
			return Logger.ErrorfAndReturn("failed to update profile: %v", err)
		}

		fmt.Println(ui.Success.Sprint("✓") + " Profile updated: " + u.Name + " <" + u.Email + ">")
		return nil
	},
}
