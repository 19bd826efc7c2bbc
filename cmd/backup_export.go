package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/PolarWolf314/tact/internal/artifacts"
	"github.com/PolarWolf314/tact/internal/frames"
	"github.com/PolarWolf314/tact/internal/qr"
	"github.com/PolarWolf314/tact/internal/ui"
	"github.com/PolarWolf314/tact/internal/utils"
	"github.com/PolarWolf314/tact/internal/workflows"
	"github.com/spf13/cobra"
)

var (
	exportOutputPath       string
	exportFormat           string
	exportCapacity         int
	exportForce            bool
	exportShow             bool
	exportPasswordStdin    bool
	exportGeneratePassword bool
)

func init() {
	exportCmd.Flags().StringVarP(&exportOutputPath, "output", "o", "", "output path, or - for stdout (default: tact-<device>-<session>.<ext>)")
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "", "artifact format: auto, png, zip, pdf, gif or text (default from config)")
	exportCmd.Flags().IntVar(&exportCapacity, "capacity", 0, "characters per QR code (default from config)")
	exportCmd.Flags().BoolVar(&exportForce, "force", false, "overwrite an existing output file")
	exportCmd.Flags().BoolVar(&exportShow, "show", false, "show the codes one at a time in the terminal instead of writing a file")
	exportCmd.Flags().BoolVar(&exportPasswordStdin, "password-stdin", false, "read the password from the first line of stdin")
	exportCmd.Flags().BoolVar(&exportGeneratePassword, "generate-password", false, "generate a random password and print it")
	exportCmd.MarkFlagsMutuallyExclusive("password-stdin", "generate-password")
	exportCmd.MarkFlagsMutuallyExclusive("show", "output")
}

// resetExportCommandState resets the export command's global state for testing.
func resetExportCommandState() {
	exportOutputPath = ""
	exportFormat = ""
	exportCapacity = 0
	exportForce = false
	exportShow = false
	exportPasswordStdin = false
	exportGeneratePassword = false
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export your records as encrypted QR codes",
	Long: `Seals your profile and all of its records into an encrypted backup and
renders it as QR codes for another device to scan.

Small backups fit a single code and are written as a png. Larger backups
are split into a header code plus numbered data codes; scan the header
first, then the data codes in any order.

The password is read from TACT_PASSWORD, from stdin with --password-stdin,
or prompted for. The receiving device needs the same password.

Examples:
  # Export to the default file name
  tact backup export

  # Print a PDF to carry the codes on paper
  tact backup export --format pdf -o backup.pdf

  # Page through the codes on screen
  tact backup export --show

  # Generate a strong password instead of choosing one
  tact backup export --generate-password`,
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting export command")

	var format artifacts.Format
	if exportFormat != "" {
		f, err := artifacts.ParseFormat(exportFormat)
		if err != nil {
			fmt.Println(formatBackupError(err))
			return nil
		}
		format = f
	}

	var password string
	var err error
	if exportGeneratePassword {
		password, err = generatePassword()
	} else {
		password, err = readPassword(passwordSource{FromStdin: exportPasswordStdin, Confirm: true})
	}
	if err != nil {
		fmt.Println(formatBackupError(err))
		if isUnexpectedError(err) {
			return err
		}
		return nil
	}

	toStdout := exportOutputPath == workflows.StdoutPath
	spinner, cleanup := startSpinner("Sealing and rendering backup...", verbose)
	defer cleanup()

	result, err := workflows.Export(context.Background(), workflows.ExportOptions{
		Password:    password,
		Format:      format,
		OutputPath:  exportOutputPath,
		Force:       exportForce,
		DisplayOnly: exportShow,
		Capacity:    exportCapacity,
	})
	if err != nil {
		spinner.FinalMSG = formatBackupError(err)
		if isUnexpectedError(err) {
			return err
		}
		return nil
	}

	Logger.Infof("Session %s: %s, %s", result.Plan.SessionID,
		ui.Plural(result.FrameCount(), "code"), ui.Plural(result.RecordsCount, "record"))

	summary := exportSummary(result)
	if exportGeneratePassword {
		summary += "\n\n" + ui.Warning.Sprint("⚠") + " Generated password: " + ui.Secret.Sprint(password) + "\n" +
			"  Write it down; it is not stored anywhere."
	}

	if toStdout {
		spinner.FinalMSG = ""
		fmt.Fprintln(os.Stderr, summary)
		return nil
	}

	if exportShow {
		spinner.FinalMSG = ""
		cleanup()
		if err := showFrames(result.Plan); err != nil {
			return Logger.ErrorfAndReturn("failed to show codes: %v", err)
		}
		fmt.Println(summary)
		return nil
	}

	spinner.FinalMSG = summary
	return nil
}

func exportSummary(result *workflows.ExportResult) string {
	var b strings.Builder

	switch {
	case result.OutputPath == "":
		b.WriteString(ui.Success.Sprint("✓") + " Showed backup of " + ui.Plural(result.RecordsCount, "record"))
	case result.OutputPath == workflows.StdoutPath:
		b.WriteString(ui.Success.Sprint("✓") + " Wrote " + string(result.Format) + " backup of " +
			ui.Plural(result.RecordsCount, "record") + " to stdout")
	default:
		b.WriteString(ui.Success.Sprint("✓") + " Exported " + ui.Plural(result.RecordsCount, "record") +
			" to " + ui.Path.Sprint(result.OutputPath) + " " + ui.Muted.Sprint(ui.Bytes(result.Size)))
	}

	fmt.Fprintf(&b, "\n\n  Session: %s\n  Codes:   %d", ui.Session.Sprint(result.Plan.SessionID), result.FrameCount())
	if result.Plan.Single {
		b.WriteString(" (single code)")
	} else {
		fmt.Fprintf(&b, " (1 header + %d data)", result.Plan.Total())
	}
	fmt.Fprintf(&b, "\n  Owner:   %s <%s>", result.Owner.Name, result.Owner.Email)

	b.WriteString("\n\n" + ui.Info.Sprint("→") + " Import on the other device with " +
		ui.Code.Sprint("tact backup import <path>"))
	return b.String()
}

// showFrames pages through the codes on the terminal, one per screen.
func showFrames(plan frames.Plan) error {
	if !utils.IsTTYAvailable() {
		return fmt.Errorf("--show needs an interactive terminal")
	}

	enc := qr.NewEncoder(qr.DefaultSize)
	all := plan.Frames()
	for i, f := range all {
		art, err := enc.Terminal(f.String())
		if err != nil {
			return err
		}
		if err := utils.ClearScreen(); err != nil {
			return err
		}

		page := fmt.Sprintf("%s\n%s  %s\n\n", art, ui.Highlight.Sprint(f.Label()), ui.Bar(i+1, len(all), 20))
		if i < len(all)-1 {
			page += "Press Enter for the next code..."
		} else {
			page += "Press Enter when the last code is scanned..."
		}
		if err := utils.WriteToTTY(page); err != nil {
			return err
		}
		if err := utils.WaitForEnterFromTTY(); err != nil {
			return err
		}
	}
	return utils.ClearScreen()
}
