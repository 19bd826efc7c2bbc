package audit

import (
	"bytes"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/PolarWolf314/tact/internal/configs"
)

// Operation names.
const (
	OpExport  = "export"
	OpImport  = "import"
	OpProfile = "profile"
	OpRecord  = "record"
)

// TimeLayout is the timestamp format of Entry.Timestamp.
const TimeLayout = "2006-01-02T15:04:05.000000Z"

// Entry represents a single audit log entry.
type Entry struct {
	Timestamp string `json:"ts"`   // RFC3339 with microseconds.
	User      string `json:"user"` // Id of the local profile.
	Operation string `json:"op"`   // Operation name.

	// Optional fields depending on operation.
	SessionID    string `json:"session_id,omitempty"`    // For export/import.
	FrameCount   int    `json:"frame_count,omitempty"`   // For export/import.
	Format       string `json:"format,omitempty"`        // For export/import.
	OutputPath   string `json:"output_path,omitempty"`   // For export.
	SourcePath   string `json:"source_path,omitempty"`   // For import.
	RecordsCount int    `json:"records_count,omitempty"` // For export/import.
	Owner        string `json:"owner,omitempty"`         // For import.
	DryRun       bool   `json:"dry_run,omitempty"`       // For import.
	Detail       string `json:"detail,omitempty"`        // For profile/record changes.
}

// Log appends an entry to the audit log.
// If logging fails, it does not return an error.
// Operations should not fail just because audit logging failed.
func Log(entry Entry) {
	if entry.Timestamp == "" {
		entry.Timestamp = time.Now().UTC().Format(TimeLayout)
	}

	logPath := LogPath()
	if logPath == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0700); err != nil {
		return
	}

	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return
	}
	defer f.Close()

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}

	_, _ = f.Write(append(data, '\n'))
}

// LogPath returns the path to the audit log file, or an empty string when
// no data directory is configured.
func LogPath() string {
	if configs.UserTactSettings == nil || configs.UserTactSettings.DataPath == "" {
		return ""
	}
	return configs.UserTactSettings.AuditFile()
}

// ReadEntries reads all entries from the audit log.
// A missing log is reported as an error wrapping fs.ErrNotExist.
func ReadEntries() ([]Entry, error) {
	logPath := LogPath()
	if logPath == "" {
		return nil, fs.ErrNotExist
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		return nil, err
	}

	return ParseEntries(data)
}

// ParseEntries parses JSON Lines data into audit entries.
// Malformed lines are silently skipped.
func ParseEntries(data []byte) ([]Entry, error) {
	var entries []Entry
	for _, line := range bytes.Split(data, []byte{'\n'}) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		var entry Entry
		if err := json.Unmarshal(line, &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
