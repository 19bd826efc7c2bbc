package workflows

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/PolarWolf314/tact/internal/audit"
	kerrors "github.com/PolarWolf314/tact/internal/errors"
)

func writeLog(t *testing.T) {
	t.Helper()
	withDevice(t)

	entries := []audit.Entry{
		{Timestamp: "2024-01-10T09:00:00.000000Z", User: "u1", Operation: audit.OpRecord, Detail: "add r1"},
		{Timestamp: "2024-01-15T10:30:00.000000Z", User: "u1", Operation: audit.OpExport, SessionID: "s1", FrameCount: 5, RecordsCount: 2, OutputPath: "b.zip"},
		{Timestamp: "2024-01-20T18:00:00.000000Z", User: "u1", Operation: audit.OpImport, SessionID: "s1", RecordsCount: 2, Owner: "a@x", DryRun: true},
		{Timestamp: "2024-02-01T07:45:00.000000Z", User: "u1", Operation: audit.OpImport, SessionID: "s1", RecordsCount: 2, Owner: "a@x", SourcePath: "b.zip"},
	}
	for _, e := range entries {
		audit.Log(e)
	}
}

func TestLogFilters(t *testing.T) {
	writeLog(t)
	ctx := context.Background()

	tests := []struct {
		name string
		opts LogOptions
		want []string
	}{
		{"all", LogOptions{}, []string{"2024-01-10", "2024-01-15", "2024-01-20", "2024-02-01"}},
		{"operations", LogOptions{Operations: "export, IMPORT"}, []string{"2024-01-15", "2024-01-20", "2024-02-01"}},
		{"session", LogOptions{Session: "s1", Operations: "import"}, []string{"2024-01-20", "2024-02-01"}},
		{"since", LogOptions{Since: "2024-01-20"}, []string{"2024-01-20", "2024-02-01"}},
		{"until includes the day", LogOptions{Until: "2024-01-15"}, []string{"2024-01-10", "2024-01-15"}},
		{"limit keeps recent", LogOptions{Limit: 2}, []string{"2024-01-20", "2024-02-01"}},
		{"reverse with limit", LogOptions{Limit: 2, Reverse: true}, []string{"2024-02-01", "2024-01-20"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Log(ctx, tt.opts)
			if err != nil {
				t.Fatalf("Log failed: %v", err)
			}
			if result.TotalEntriesBeforeFilter != 4 {
				t.Errorf("Expected 4 entries before filtering, got %d", result.TotalEntriesBeforeFilter)
			}
			var dates []string
			for _, e := range result.Entries {
				dates = append(dates, e.Timestamp[:10])
			}
			if strings.Join(dates, ",") != strings.Join(tt.want, ",") {
				t.Errorf("Expected %v, got %v", tt.want, dates)
			}
		})
	}
}

func TestLogErrors(t *testing.T) {
	withDevice(t)
	ctx := context.Background()

	if _, err := Log(ctx, LogOptions{}); !errors.Is(err, kerrors.ErrNoFilesFound) {
		t.Errorf("Expected ErrNoFilesFound, got %v", err)
	}

	writeLog(t)
	if _, err := Log(ctx, LogOptions{Since: "15/01/2024"}); !errors.Is(err, kerrors.ErrInvalidDateFormat) {
		t.Errorf("Expected ErrInvalidDateFormat, got %v", err)
	}
}

func TestFormatDetails(t *testing.T) {
	tests := []struct {
		entry audit.Entry
		want  string
	}{
		{audit.Entry{Operation: audit.OpExport, SessionID: "s1", FrameCount: 5, RecordsCount: 2, OutputPath: "b.zip"}, "s1, 5 codes, 2 records -> b.zip"},
		{audit.Entry{Operation: audit.OpImport, SessionID: "s1", RecordsCount: 2, Owner: "a@x", SourcePath: "-", DryRun: true}, "s1, 2 records of a@x from - (dry run)"},
		{audit.Entry{Operation: audit.OpProfile, Detail: "name,email"}, "name,email"},
	}

	for _, tt := range tests {
		if got := FormatDetails(tt.entry); got != tt.want {
			t.Errorf("FormatDetails(%s) = %q, want %q", tt.entry.Operation, got, tt.want)
		}
	}

	if got := FormatDateTime("2024-01-15T10:30:00.000000Z"); got != "2024-01-15 10:30:00" {
		t.Errorf("FormatDateTime = %q", got)
	}
}
