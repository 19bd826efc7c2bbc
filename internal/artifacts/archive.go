package artifacts

import (
	"bytes"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"text/template"
	"time"

	kerrors "github.com/PolarWolf314/tact/internal/errors"
	"github.com/klauspost/compress/zip"
)

// ReadmeName is the instructions file placed at the root of every archive.
const ReadmeName = "README.txt"

// maxEntrySize bounds a single extracted image.
const maxEntrySize = 16 << 20

var readmeTemplate = template.Must(template.New("readme").Parse(`tact backup - Session: {{.SessionID}}
Total QR Codes: {{.Count}}

INSTRUCTIONS:
1. Each PNG file contains a single QR code
2. Scan all QR codes with "tact backup import" or point it at this archive
3. The codes are combined automatically to restore your data
4. Files are numbered in order (qr-001.png, qr-002.png, etc.)

SCANNING TIPS:
- Use good lighting when scanning
- Hold your device steady
- Keep the entire QR code inside the camera frame
- You can scan the codes in any order

Generated: {{.Generated}}
`))

// EntryName is the archive file name of the frame at position i (0-based).
func EntryName(i int) string {
	return fmt.Sprintf("qr-%03d.png", i+1)
}

// WriteArchive writes a zip holding README.txt and one numbered PNG per
// frame. PNGs are stored, not deflated, since they are already compressed.
func WriteArchive(w io.Writer, sessionID string, pngs [][]byte, now time.Time) error {
	zw := zip.NewWriter(w)

	var readme bytes.Buffer
	err := readmeTemplate.Execute(&readme, map[string]any{
		"SessionID": sessionID,
		"Count":     len(pngs),
		"Generated": now.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("rendering readme: %w", err)
	}

	if err := writeEntry(zw, ReadmeName, zip.Deflate, readme.Bytes(), now); err != nil {
		return err
	}
	for i, data := range pngs {
		if err := writeEntry(zw, EntryName(i), zip.Store, data, now); err != nil {
			return err
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalising archive: %w", err)
	}
	return nil
}

func writeEntry(zw *zip.Writer, name string, method uint16, data []byte, now time.Time) error {
	fw, err := zw.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   method,
		Modified: now,
	})
	if err != nil {
		return fmt.Errorf("creating %s: %w", name, err)
	}
	if _, err := fw.Write(data); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

// Entry is one image extracted from an archive.
type Entry struct {
	Name string
	Data []byte
}

// ReadArchive returns the PNG entries of a zip sorted by name. Any other
// files, directories included, are skipped.
func ReadArchive(r io.ReaderAt, size int64) ([]Entry, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrInvalidArchive, err)
	}

	var entries []Entry
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || !strings.EqualFold(path.Ext(f.Name), ".png") {
			continue
		}
		data, err := readEntry(f)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{Name: f.Name, Data: data})
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: archive contains no png images", kerrors.ErrNoFilesFound)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})
	return entries, nil
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", kerrors.ErrInvalidArchive, f.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, maxEntrySize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", kerrors.ErrInvalidArchive, f.Name, err)
	}
	if len(data) > maxEntrySize {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", kerrors.ErrInvalidArchive, f.Name, maxEntrySize)
	}
	return data, nil
}
