// Package workflows provides high-level orchestration for tact commands.
//
// Workflows coordinate multiple operations across packages (store, packager,
// frames, collector, artifacts, audit) to implement complete user-facing
// features. Each workflow handles a single command's business logic,
// independent of CLI concerns like flag parsing, spinners, and output
// formatting.
//
// # Design Philosophy
//
// The cmd/ package should be a thin layer that:
//   - Parses command-line flags and arguments
//   - Reads passwords from the terminal
//   - Calls the appropriate workflow function
//   - Formats the result for display
//
// Workflows handle everything else:
//   - Loading configuration and opening the record store
//   - Performing the core operation
//   - Recording audit trail entries
//
// # Available Workflows
//
//   - Export: Seals the local profile into QR codes and writes an artifact
//   - Scan: Reads QR codes from an artifact, images or a stream and
//     reassembles the encrypted blob
//   - Import: Decrypts a scanned blob and restores it into the store
//   - Estimate: Predicts the size and code count of an export
//   - Profile, UpdateProfile: Show and edit the local profile
//   - AddRecord, ListRecords, DeleteRecord: Manage local records
//   - Log: Reads the audit history
//
// Scan and Import are separate so the CLI can report a missing code before
// asking for a password.
//
// # Error Handling
//
// Workflows return typed errors from the internal/errors package, allowing
// the CLI layer to provide appropriate user-facing messages without string
// matching. Use errors.Is() to check for specific error conditions:
//
//	result, err := workflows.Scan(ctx, opts)
//	if errors.Is(err, kerrors.ErrIncompleteTransfer) {
//	    // Tell the user which codes are still missing
//	}
//
// # Context Usage
//
// All workflow functions accept a context.Context as their first parameter.
// Scan stops decoding images as soon as the context is cancelled.
package workflows
