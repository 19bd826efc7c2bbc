package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/PolarWolf314/tact/internal/collector"
	"github.com/PolarWolf314/tact/internal/configs"
	"github.com/PolarWolf314/tact/internal/ui"
	"github.com/PolarWolf314/tact/internal/utils"
	"github.com/PolarWolf314/tact/internal/workflows"
	"github.com/spf13/cobra"
)

var (
	importDryRun        bool
	importPasswordStdin bool
)

func init() {
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "decrypt and check the backup without changing local data")
	importCmd.Flags().BoolVar(&importPasswordStdin, "password-stdin", false, "read the password from the first line of stdin")
}

// resetImportCommandState resets the import command's global state for testing.
func resetImportCommandState() {
	importDryRun = false
	importPasswordStdin = false
}

var importCmd = &cobra.Command{
	Use:   "import <path|->",
	Short: "Restore records from scanned QR codes",
	Long: `Reads the QR codes of a backup, reassembles and decrypts it, and replaces
the backup owner's profile and records on this device.

The source can be:
  - a zip, gif or png written by 'tact backup export'
  - a directory of photos or screenshots of the codes
  - a text file with one code per line
  - - to read one code per line from stdin, such as a scanner's output

Codes of other apps are skipped, and codes may be in any order. The import
stops as soon as every code of a backup has been read.

Examples:
  # Import a zip of codes
  tact backup import tact-laptop-k3x9q2.zip

  # Import photos taken with a phone
  tact backup import ~/Pictures/backup/

  # Stream codes from a webcam scanner
  zbarcam --raw | tact backup import -

  # Check a backup without touching local data
  tact backup import backup.zip --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting import command")
	source := args[0]
	streaming := source == workflows.StdinPath

	if streaming && importPasswordStdin {
		fmt.Println(ui.Error.Sprint("✗") + " " + ui.Flag.Sprint("--password-stdin") + " cannot be used when reading codes from stdin\n" +
			ui.Info.Sprint("→") + " Set " + ui.Code.Sprint(PasswordEnv) + " or enter the password when prompted")
		return nil
	}

	cfg, err := configs.LoadConfig()
	if err != nil {
		return Logger.ErrorfAndReturn("failed to load config: %v", err)
	}

	if streaming && !utils.StdinIsPiped() {
		fmt.Fprintln(os.Stderr, ui.Info.Sprint("→")+" Scan or paste the codes, one per line. The import continues once every code is read.")
	}

	scan, err := scanSource(source, cfg)
	if err != nil {
		fmt.Println(formatBackupError(err))
		if isUnexpectedError(err) {
			return err
		}
		return nil
	}
	Logger.Infof("Reassembled session %s from %s", scan.SessionID, ui.Plural(scan.Scanned, "input"))
	if scan.Malformed > 0 || scan.Unreadable > 0 {
		Logger.Warnf("Skipped %s and %s", ui.Plural(scan.Malformed, "damaged code"), ui.Plural(scan.Unreadable, "unreadable image"))
	}

	password, err := readPassword(passwordSource{FromStdin: importPasswordStdin, StdinBusy: streaming})
	if err != nil {
		fmt.Println(formatBackupError(err))
		if isUnexpectedError(err) {
			return err
		}
		return nil
	}

	spinner, cleanup := startSpinner("Decrypting backup...", verbose)
	defer cleanup()

	result, err := workflows.Import(context.Background(), workflows.ImportOptions{
		Scan:       scan,
		SourcePath: source,
		Password:   password,
		DryRun:     importDryRun,
	})
	if err != nil {
		spinner.FinalMSG = formatBackupError(err)
		if isUnexpectedError(err) {
			return err
		}
		return nil
	}

	spinner.FinalMSG = importSummary(result)
	return nil
}

// scanSource reads codes from source behind a spinner that tracks progress.
func scanSource(source string, cfg *configs.Config) (*workflows.ScanResult, error) {
	spinner, cleanup := startSpinner("Scanning QR codes...", verbose)
	defer cleanup()

	return workflows.Scan(context.Background(), workflows.ScanOptions{
		SourcePath:  source,
		IdleTimeout: cfg.Import.SessionIdleTimeout.Duration,
		OnProgress: func(p collector.Progress) {
			Logger.Debugf("Session %s: %s", p.SessionID, p)
			spinner.Lock()
			spinner.Suffix = " Scanning QR codes... " + ui.Bar(p.Captured(), p.Expected(), 20)
			spinner.Unlock()
		},
	})
}

func importSummary(result *workflows.ImportResult) string {
	var b strings.Builder

	owner := fmt.Sprintf("%s <%s>", result.Owner.Name, result.Owner.Email)
	if result.DryRun {
		b.WriteString(ui.Success.Sprint("✓") + " Backup is valid " + ui.Muted.Sprint("dry run, nothing was changed"))
	} else {
		b.WriteString(ui.Success.Sprint("✓") + " Imported " + ui.Plural(result.RecordsCount, "record") +
			" of " + ui.Highlight.Sprint(owner))
	}

	fmt.Fprintf(&b, "\n\n  Session:  %s\n  Owner:    %s\n  Records:  %d\n  Exported: %s",
		ui.Session.Sprint(result.SessionID), owner, result.RecordsCount, result.ExportedAt.Local().Format("2006-01-02 15:04"))

	if result.ReplacedCount > 0 {
		verb := "Replaced"
		if result.DryRun {
			verb = "Would replace"
		}
		b.WriteString("\n\n" + ui.Warning.Sprint("⚠") + " " + verb + " " +
			ui.Plural(result.ReplacedCount, "existing record") + " of this profile")
	}
	return b.String()
}
