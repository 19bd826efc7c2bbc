package workflows

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"strings"
	"time"

	"github.com/PolarWolf314/tact/internal/audit"
	"github.com/PolarWolf314/tact/internal/configs"
	kerrors "github.com/PolarWolf314/tact/internal/errors"
)

// LogOptions configures the log workflow.
type LogOptions struct {
	// Limit is the maximum number of entries to return. 0 means no limit.
	Limit int

	// Reverse orders entries from most recent to oldest when true.
	Reverse bool

	// Session filters entries by transfer session id.
	Session string

	// Operations filters entries by operation names (comma-separated).
	Operations string

	// Since filters entries on or after this date (YYYY-MM-DD format).
	Since string

	// Until filters entries on or before this date (YYYY-MM-DD format).
	Until string
}

// LogResult contains the outcome of a log operation.
type LogResult struct {
	// Entries are the filtered audit log entries.
	Entries []audit.Entry

	// TotalEntriesBeforeFilter is the count of entries before filtering.
	TotalEntriesBeforeFilter int
}

// Log reads and filters the history of exports, imports and local edits.
//
// Returns ErrNoFilesFound if no audit log exists.
// Returns ErrInvalidDateFormat if the date format is invalid.
func Log(ctx context.Context, opts LogOptions) (*LogResult, error) {
	entries, err := audit.ReadEntries()
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", kerrors.ErrNoFilesFound, configs.AuditFileName)
	}
	if err != nil {
		return nil, fmt.Errorf("reading audit log: %w", err)
	}

	keep, err := logFilter(opts)
	if err != nil {
		return nil, err
	}

	filtered := make([]audit.Entry, 0, len(entries))
	for _, e := range entries {
		if keep(e) {
			filtered = append(filtered, e)
		}
	}

	// The log is oldest first; a limit always keeps the most recent.
	if opts.Limit > 0 && len(filtered) > opts.Limit {
		filtered = filtered[len(filtered)-opts.Limit:]
	}
	if opts.Reverse {
		slices.Reverse(filtered)
	}

	return &LogResult{
		Entries:                  filtered,
		TotalEntriesBeforeFilter: len(entries),
	}, nil
}

// logFilter compiles opts into a predicate.
func logFilter(opts LogOptions) (func(audit.Entry) bool, error) {
	var ops []string
	if opts.Operations != "" {
		for _, op := range strings.Split(opts.Operations, ",") {
			ops = append(ops, strings.ToLower(strings.TrimSpace(op)))
		}
	}

	var since, until time.Time
	if opts.Since != "" {
		t, err := time.Parse(time.DateOnly, opts.Since)
		if err != nil {
			return nil, fmt.Errorf("%w: --since date format invalid, use YYYY-MM-DD", kerrors.ErrInvalidDateFormat)
		}
		since = t
	}
	if opts.Until != "" {
		t, err := time.Parse(time.DateOnly, opts.Until)
		if err != nil {
			return nil, fmt.Errorf("%w: --until date format invalid, use YYYY-MM-DD", kerrors.ErrInvalidDateFormat)
		}
		// Include the entire day.
		until = t.Add(24*time.Hour - time.Nanosecond)
	}

	return func(e audit.Entry) bool {
		if opts.Session != "" && e.SessionID != opts.Session {
			return false
		}
		if ops != nil && !slices.Contains(ops, strings.ToLower(e.Operation)) {
			return false
		}
		if since.IsZero() && until.IsZero() {
			return true
		}
		t, ok := parseTimestamp(e.Timestamp)
		if !ok {
			return false
		}
		return !t.Before(since) && (until.IsZero() || !t.After(until))
	}, nil
}

func parseTimestamp(ts string) (time.Time, bool) {
	t, err := time.Parse(audit.TimeLayout, ts)
	if err != nil {
		t, err = time.Parse(time.RFC3339, ts)
	}
	return t, err == nil
}

// FormatDateTime formats a timestamp as YYYY-MM-DD HH:MM:SS.
func FormatDateTime(ts string) string {
	t, ok := parseTimestamp(ts)
	if !ok {
		if len(ts) >= 19 {
			return ts[:19]
		}
		return ts
	}
	return t.Format(time.DateTime)
}

// FormatDetails summarises what an entry did.
func FormatDetails(e audit.Entry) string {
	switch e.Operation {
	case audit.OpExport:
		return fmt.Sprintf("%s, %d codes, %d records -> %s", e.SessionID, e.FrameCount, e.RecordsCount, e.OutputPath)
	case audit.OpImport:
		details := fmt.Sprintf("%s, %d records of %s", e.SessionID, e.RecordsCount, e.Owner)
		if e.SourcePath != "" {
			details += " from " + e.SourcePath
		}
		if e.DryRun {
			details += " (dry run)"
		}
		return details
	default:
		return e.Detail
	}
}
