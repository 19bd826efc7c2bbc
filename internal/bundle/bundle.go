package bundle

import (
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	kerrors "github.com/PolarWolf314/tact/internal/errors"
)

// CurrentFormatVersion is stamped on every bundle this build exports.
const CurrentFormatVersion = "1.0.0"

// supportedVersions accepts every 1.x bundle; a 2.0.0 bundle may change
// meaning and must be rejected rather than parsed on a best-effort basis.
const supportedVersions = ">= 1.0.0, < 2.0.0"

// Importance levels for a record.
const (
	ImportanceLow    = "low"
	ImportanceMedium = "medium"
	ImportanceHigh   = "high"
)

// User is the profile that owns a set of records.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Record is a single note belonging to a user.
type Record struct {
	ID         string    `json:"id"`
	OwnerID    string    `json:"ownerId,omitempty"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Emoji      string    `json:"emoji,omitempty"`
	Importance string    `json:"importance,omitempty"`
	Encrypted  bool      `json:"isEncrypted,omitempty"`
	Tags       []string  `json:"tags,omitempty"`
	CreatedAt  time.Time `json:"createdAt,omitzero"`
	UpdatedAt  time.Time `json:"updatedAt,omitzero"`
}

// Payload is the data section of a bundle.
type Payload struct {
	Owner   User     `json:"owner"`
	Records []Record `json:"records"`
}

// Bundle is the complete plaintext backup moved between devices.
type Bundle struct {
	FormatVersion string    `json:"formatVersion"`
	ExportedAt    time.Time `json:"exportedAt"`
	OwnerID       string    `json:"ownerId"`
	Payload       Payload   `json:"payload"`
}

// New builds a bundle for owner at the current format version.
// Timestamps are normalised to UTC millisecond precision so a bundle
// compares equal to itself after a round trip through its wire form.
func New(owner User, records []Record, exportedAt time.Time) Bundle {
	normalized := make([]Record, len(records))
	for i, r := range records {
		r.CreatedAt = NormalizeTime(r.CreatedAt)
		r.UpdatedAt = NormalizeTime(r.UpdatedAt)
		if len(r.Tags) == 0 {
			r.Tags = nil
		}
		normalized[i] = r
	}

	return Bundle{
		FormatVersion: CurrentFormatVersion,
		ExportedAt:    NormalizeTime(exportedAt),
		OwnerID:       owner.ID,
		Payload: Payload{
			Owner:   owner,
			Records: normalized,
		},
	}
}

// NormalizeTime truncates t to milliseconds in UTC. The zero time is
// returned unchanged.
func NormalizeTime(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC().Truncate(time.Millisecond)
}

// Validate checks the required fields and the format version.
func (b Bundle) Validate() error {
	if strings.TrimSpace(b.FormatVersion) == "" {
		return fmt.Errorf("%w: missing formatVersion", kerrors.ErrInvalidBundleFormat)
	}
	if err := CheckVersion(b.FormatVersion); err != nil {
		return err
	}
	if strings.TrimSpace(b.OwnerID) == "" {
		return fmt.Errorf("%w: missing ownerId", kerrors.ErrInvalidBundleFormat)
	}
	if b.Payload.Owner.ID == "" {
		return fmt.Errorf("%w: missing payload owner", kerrors.ErrInvalidBundleFormat)
	}
	if b.Payload.Owner.ID != b.OwnerID {
		return fmt.Errorf("%w: payload owner %q does not match ownerId %q",
			kerrors.ErrInvalidBundleFormat, b.Payload.Owner.ID, b.OwnerID)
	}
	for i, r := range b.Payload.Records {
		if r.ID == "" {
			return fmt.Errorf("%w: record %d has no id", kerrors.ErrInvalidBundleFormat, i)
		}
	}
	return nil
}

// CheckVersion reports whether this build can read bundles written at version.
func CheckVersion(version string) error {
	v, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("%w: %q is not a version", kerrors.ErrUnsupportedFormatVersion, version)
	}

	constraint, err := semver.NewConstraint(supportedVersions)
	if err != nil {
		return fmt.Errorf("parsing supported version range: %w", err)
	}

	if !constraint.Check(v) {
		return fmt.Errorf("%w: %s (supported %s)", kerrors.ErrUnsupportedFormatVersion, version, supportedVersions)
	}
	return nil
}

// Records returns the payload records with OwnerID filled in from the bundle
// owner, as they should be written to a local store.
func (b Bundle) Records() []Record {
	out := make([]Record, len(b.Payload.Records))
	for i, r := range b.Payload.Records {
		if r.OwnerID == "" {
			r.OwnerID = b.OwnerID
		}
		out[i] = r
	}
	return out
}

// Legacy is the export document written by the browser app. Its notes
// name their owner with userId rather than ownerId.
type Legacy struct {
	Version    string    `json:"version"`
	ExportedAt time.Time `json:"exportedAt"`
	UserID     string    `json:"userId"`
	Data       struct {
		User  User         `json:"user"`
		Notes []LegacyNote `json:"notes"`
	} `json:"data"`
}

// LegacyNote is a note inside a Legacy document.
type LegacyNote struct {
	Record
	UserID string `json:"userId"`
}

// Bundle converts l into a bundle, keeping its format version so it is
// validated like any other import.
func (l Legacy) Bundle() Bundle {
	records := make([]Record, len(l.Data.Notes))
	for i, n := range l.Data.Notes {
		r := n.Record
		if r.OwnerID == "" {
			r.OwnerID = n.UserID
		}
		records[i] = r
	}

	b := New(l.Data.User, records, l.ExportedAt)
	b.FormatVersion = l.Version
	b.OwnerID = l.UserID
	return b
}
