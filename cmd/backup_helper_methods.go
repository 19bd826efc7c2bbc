package cmd

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/PolarWolf314/tact/internal/cipher"
	kerrors "github.com/PolarWolf314/tact/internal/errors"
	"github.com/PolarWolf314/tact/internal/ui"
	"github.com/PolarWolf314/tact/internal/utils"
	"github.com/briandowns/spinner"
)

// PasswordEnv names the environment variable that supplies the backup
// password non-interactively.
const PasswordEnv = "TACT_PASSWORD"

// startSpinner creates and starts a spinner with the given message when not in verbose or debug mode.
// Returns the spinner and a function that should be deferred to clean up.
//
// IMPORTANT: spinner.FinalMSG values do NOT need trailing newlines. The cleanup function
// automatically calls ui.EnsureNewline() on the final message before printing it.
func startSpinner(message string, verbose bool) (*spinner.Spinner, func()) {
	Logger.Debugf("Starting spinner with message: %s", message)
	return startSpinnerWithFlags(message, verbose, debug)
}

// startSpinnerWithFlags creates and starts a spinner with explicit verbose and debug flags.
// This is useful for commands that have their own flag variables (e.g., config commands).
func startSpinnerWithFlags(message string, verbose, debugFlag bool) (*spinner.Spinner, func()) {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + message
	s.Writer = os.Stderr

	// Ignore color errors - continue without colored spinner if it fails.
	_ = s.Color("cyan")

	quiet := !verbose && !debugFlag
	if quiet {
		s.Start()
		// Ensure log output is discarded unless in verbose mode.
		log.SetOutput(io.Discard)
	}

	cleanup := func() {
		if quiet {
			log.SetOutput(os.Stderr)
		}

		finalMsg := ""
		if s.FinalMSG != "" {
			finalMsg = ui.EnsureNewline(s.FinalMSG)
			// Clear FinalMSG so s.Stop() doesn't print it.
			s.FinalMSG = ""
		}

		if quiet {
			s.Stop()
		}

		// Print final message to stdout (for tests to capture).
		if finalMsg != "" {
			fmt.Print(finalMsg)
		}
	}

	return s, cleanup
}

// passwordSource says where a command may read the backup password from.
type passwordSource struct {
	// FromStdin reads the first line of stdin.
	FromStdin bool

	// Confirm prompts twice when asking interactively.
	Confirm bool

	// StdinBusy prompts on the terminal device because stdin carries frames.
	StdinBusy bool
}

// readPassword resolves the backup password from TACT_PASSWORD, then
// stdin, then an interactive prompt.
func readPassword(src passwordSource) (string, error) {
	if pw := os.Getenv(PasswordEnv); pw != "" {
		Logger.Debugf("Using password from %s", PasswordEnv)
		return pw, nil
	}

	if src.FromStdin {
		Logger.Debugf("Reading password from stdin")
		pw, err := utils.ReadLine(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading password from stdin: %w", err)
		}
		if pw == "" {
			return "", kerrors.ErrEmptyPassword
		}
		return pw, nil
	}

	read := utils.ReadPassphrase
	if src.StdinBusy {
		read = utils.ReadPassphraseFromTTY
	}

	var pw []byte
	var err error
	if src.Confirm {
		pw, err = utils.ReadNewPassphrase(read, "Backup password: ", "Confirm password: ")
	} else {
		pw, err = read("Backup password: ")
	}
	if err != nil {
		return "", err
	}
	if len(pw) == 0 {
		return "", kerrors.ErrEmptyPassword
	}
	return string(pw), nil
}

// generatePassword creates a random password for an export.
func generatePassword() (string, error) {
	return cipher.GeneratePassword(cipher.DefaultPasswordLength)
}

// formatBackupError formats a backup error for display to the user.
func formatBackupError(err error) string {
	switch {
	case errors.Is(err, kerrors.ErrDecryptionFailed):
		return ui.Error.Sprint("✗") + " Could not decrypt the backup\n" +
			ui.Info.Sprint("→") + " Check the password; a damaged code is reported as a wrong password too"

	case errors.Is(err, kerrors.ErrIncompleteTransfer):
		return ui.Error.Sprint("✗") + " " + err.Error() + "\n" +
			ui.Info.Sprint("→") + " Scan the missing codes and run the import again"

	case errors.Is(err, kerrors.ErrNoCodeFound):
		return ui.Error.Sprint("✗") + " No backup QR codes found: " + err.Error()

	case errors.Is(err, kerrors.ErrSessionTotalMismatch):
		return ui.Error.Sprint("✗") + " " + err.Error() + "\n" +
			ui.Info.Sprint("→") + " The codes come from different exports; scan codes of one export only"

	case errors.Is(err, kerrors.ErrUnsupportedFormatVersion):
		return ui.Error.Sprint("✗") + " " + err.Error() + "\n" +
			ui.Info.Sprint("→") + " Upgrade tact on this device"

	case errors.Is(err, kerrors.ErrInvalidBundleFormat):
		return ui.Error.Sprint("✗") + " The codes decrypted but do not contain a tact backup"

	case errors.Is(err, kerrors.ErrEmptyPassword),
		errors.Is(err, utils.ErrPasswordMismatch),
		errors.Is(err, kerrors.ErrOutputExists),
		errors.Is(err, kerrors.ErrInvalidFileType),
		errors.Is(err, kerrors.ErrInvalidCapacity),
		errors.Is(err, kerrors.ErrFileNotFound),
		errors.Is(err, kerrors.ErrNoFilesFound),
		errors.Is(err, kerrors.ErrInvalidArchive):
		return ui.Error.Sprint("✗") + " " + err.Error()

	default:
		return ui.Error.Sprint("✗") + " Backup failed: " + err.Error()
	}
}

// isUnexpectedError returns true if the error is unexpected and should cause a non-zero exit.
func isUnexpectedError(err error) bool {
	for _, expected := range []error{
		kerrors.ErrDecryptionFailed,
		kerrors.ErrIncompleteTransfer,
		kerrors.ErrNoCodeFound,
		kerrors.ErrSessionTotalMismatch,
		kerrors.ErrUnsupportedFormatVersion,
		kerrors.ErrInvalidBundleFormat,
		kerrors.ErrEmptyPassword,
		utils.ErrPasswordMismatch,
		kerrors.ErrOutputExists,
		kerrors.ErrInvalidFileType,
		kerrors.ErrInvalidCapacity,
		kerrors.ErrFileNotFound,
		kerrors.ErrNoFilesFound,
		kerrors.ErrInvalidArchive,
		kerrors.ErrRecordNotFound,
		kerrors.ErrInvalidEmail,
		kerrors.ErrInvalidDateFormat,
	} {
		if errors.Is(err, expected) {
			return false
		}
	}
	return true
}
