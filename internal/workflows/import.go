package workflows

import (
	"context"
	"fmt"
	"time"

	"github.com/PolarWolf314/tact/internal/audit"
	"github.com/PolarWolf314/tact/internal/bundle"
	"github.com/PolarWolf314/tact/internal/cipher"
	kerrors "github.com/PolarWolf314/tact/internal/errors"
	"github.com/PolarWolf314/tact/internal/packager"
)

// ImportOptions configures the import workflow.
type ImportOptions struct {
	// Scan is the completed transfer to import. Required.
	Scan *ScanResult

	// SourcePath is recorded in the audit log.
	SourcePath string

	// Password opens the backup. Required.
	Password string

	// DryRun decrypts and validates without changing local data.
	DryRun bool
}

// ImportResult contains the outcome of an import operation.
type ImportResult struct {
	// SessionID identifies the transfer that was imported.
	SessionID string

	// Owner is the profile restored from the backup.
	Owner bundle.User

	// RecordsCount is the number of records in the backup.
	RecordsCount int

	// ReplacedCount is the number of local records of the same owner that
	// were (or, for a dry run, would be) replaced.
	ReplacedCount int

	// ExportedAt is when the backup was taken.
	ExportedAt time.Time

	// FormatVersion is the bundle format version of the backup.
	FormatVersion string

	// DryRun indicates whether this was a dry run.
	DryRun bool
}

// Import decrypts a scanned transfer and replaces the backup owner's
// profile and records in the local store. The imported owner becomes the
// local profile.
//
// Returns ErrEmptyPassword if no password is given.
// Returns ErrDecryptionFailed if the password is wrong or the blob is corrupt.
// Returns ErrInvalidBundleFormat or ErrUnsupportedFormatVersion if the
// decrypted data is not a usable backup.
func Import(ctx context.Context, opts ImportOptions) (*ImportResult, error) {
	if opts.Scan == nil || opts.Scan.Blob == "" {
		return nil, kerrors.ErrIncompleteTransfer
	}
	if opts.Password == "" {
		return nil, kerrors.ErrEmptyPassword
	}

	b, err := packager.New(cipher.Default()).Unpack(opts.Scan.Blob, opts.Password)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{
		SessionID:     opts.Scan.SessionID,
		Owner:         b.Payload.Owner,
		RecordsCount:  len(b.Payload.Records),
		ExportedAt:    b.ExportedAt,
		FormatVersion: b.FormatVersion,
		DryRun:        opts.DryRun,
	}

	s, err := openStore()
	if err != nil {
		return nil, err
	}
	defer s.Close()

	existing, err := s.ListRecords(ctx, b.Payload.Owner.ID)
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}
	result.ReplacedCount = len(existing)

	if !opts.DryRun {
		if err := s.ReplaceOwnerData(ctx, b.Payload.Owner, b.Records()); err != nil {
			return nil, fmt.Errorf("restoring backup: %w", err)
		}
	}

	audit.Log(audit.Entry{
		User:         b.Payload.Owner.ID,
		Operation:    audit.OpImport,
		SessionID:    opts.Scan.SessionID,
		Format:       string(opts.Scan.Format),
		SourcePath:   opts.SourcePath,
		RecordsCount: result.RecordsCount,
		Owner:        b.Payload.Owner.Email,
		DryRun:       opts.DryRun,
	})

	return result, nil
}
