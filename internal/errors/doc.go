// Package errors provides typed error values for the tact application.
//
// Using sentinel errors allows callers to handle specific error conditions
// programmatically with errors.Is() rather than string matching. This makes
// error handling more robust and refactoring-safe.
//
// # Error Categories
//
// Errors are grouped by category:
//
//   - Crypto errors: Encryption/decryption failures (ErrDecryptionFailed)
//   - Bundle errors: Decrypted data is not a backup (ErrInvalidBundleFormat)
//   - Protocol errors: Frame and reassembly problems (ErrMalformedFrame,
//     ErrSessionTotalMismatch)
//   - Store errors: Local data lookups (ErrUserNotFound)
//   - File errors: File system issues (ErrNoFilesFound, ErrFileNotFound)
//
// ErrMalformedFrame is expected during scanning: a blurry photograph of a
// code produces it, and the scan loop should skip the frame and continue.
// ErrSessionTotalMismatch and ErrDecryptionFailed are terminal for the
// current transfer.
//
// # Usage
//
// Handle errors in the CLI layer:
//
//	result, err := workflows.Import(ctx, opts)
//	if errors.Is(err, kerrors.ErrDecryptionFailed) {
//	    // Show user-friendly message
//	}
//
// Wrap errors with additional context:
//
//	return fmt.Errorf("parsing frame %q: %w", text, errors.ErrMalformedFrame)
package errors
