package packager

import (
	"bytes"
	"encoding/base64"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/PolarWolf314/tact/internal/bundle"
	"github.com/PolarWolf314/tact/internal/cipher"
	kerrors "github.com/PolarWolf314/tact/internal/errors"
	"github.com/klauspost/compress/gzip"
)

const testPassword = "correct-horse"

func sampleBundle() bundle.Bundle {
	owner := bundle.User{ID: "u1", Name: "A", Email: "a@x"}
	records := []bundle.Record{{ID: "n1", Title: "t", Content: "c"}}
	return bundle.New(owner, records, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
}

func TestPackUnpackRoundTrip(t *testing.T) {
	p := New(nil)
	b := sampleBundle()
	b.Payload.Records = append(b.Payload.Records, bundle.Record{
		ID:         "n2",
		Title:      "groceries",
		Content:    strings.Repeat("milk, eggs, bread | ", 40),
		Emoji:      "🛒",
		Importance: bundle.ImportanceHigh,
		Tags:       []string{"home", "weekly"},
		CreatedAt:  time.Date(2024, 2, 1, 8, 30, 0, 123000000, time.UTC),
	})

	blob, err := p.Pack(b, testPassword)
	if err != nil {
		t.Fatalf("Pack failed: %v", err)
	}

	got, err := p.Unpack(blob, testPassword)
	if err != nil {
		t.Fatalf("Unpack failed: %v", err)
	}

	if !reflect.DeepEqual(got, b) {
		t.Errorf("Round trip mismatch:\nwant %+v\ngot  %+v", b, got)
	}
}

func TestUnpackWrongPassword(t *testing.T) {
	p := New(nil)

	blob, err := p.Pack(sampleBundle(), testPassword)
	if err != nil {
		t.Fatalf("Pack failed: %v", err)
	}

	if _, err := p.Unpack(blob, "battery-staple"); !errors.Is(err, kerrors.ErrDecryptionFailed) {
		t.Errorf("Expected ErrDecryptionFailed, got %v", err)
	}
}

func TestZeroValuePackager(t *testing.T) {
	var p Packager

	blob, err := p.Pack(sampleBundle(), testPassword)
	if err != nil {
		t.Fatalf("Pack failed: %v", err)
	}

	got, err := New(nil).Unpack(blob, testPassword)
	if err != nil {
		t.Fatalf("Unpack failed: %v", err)
	}
	if !reflect.DeepEqual(got, sampleBundle()) {
		t.Errorf("Round trip mismatch:\nwant %+v\ngot  %+v", sampleBundle(), got)
	}

	if _, err := p.Unpack(blob, "battery-staple"); !errors.Is(err, kerrors.ErrDecryptionFailed) {
		t.Errorf("Expected ErrDecryptionFailed, got %v", err)
	}
}

func TestUnpackBrowserExport(t *testing.T) {
	doc := `{"version":"1.0.0","exportedAt":"2024-03-01T12:00:00.000Z","userId":"u1",` +
		`"data":{"user":{"id":"u1","name":"Ada","email":"ada@example.com"},` +
		`"notes":[{"id":"n1","userId":"u1","title":"Groceries","content":"milk","emoji":"🛒",` +
		`"importance":"high","tags":["t1"],"createdAt":"2024-02-01T08:30:00.000Z","updatedAt":"2024-02-02T08:30:00.000Z"}]}}`

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write([]byte(doc)); err != nil {
		t.Fatalf("gzip failed: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("gzip failed: %v", err)
	}
	blob, err := cipher.Default().Encrypt([]byte(base64.StdEncoding.EncodeToString(buf.Bytes())), testPassword)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	b, err := New(nil).Unpack(blob, testPassword)
	if err != nil {
		t.Fatalf("Unpack failed: %v", err)
	}
	if b.OwnerID != "u1" || b.Payload.Owner.Email != "ada@example.com" {
		t.Errorf("Unexpected owner in %+v", b)
	}
	if !b.ExportedAt.Equal(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("Unexpected export time %v", b.ExportedAt)
	}
	records := b.Records()
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}
	r := records[0]
	if r.OwnerID != "u1" || r.Title != "Groceries" || r.Importance != bundle.ImportanceHigh || len(r.Tags) != 1 {
		t.Errorf("Unexpected record %+v", r)
	}
}

func TestUnpackInvalidBrowserExport(t *testing.T) {
	tests := []struct {
		name     string
		document string
		want     error
	}{
		{"missing version", `{"userId":"u1","data":{"user":{"id":"u1"}}}`, kerrors.ErrInvalidBundleFormat},
		{"missing userId", `{"version":"1.0.0","data":{"user":{"id":"u1"}}}`, kerrors.ErrInvalidBundleFormat},
		{"user mismatch", `{"version":"1.0.0","userId":"u1","data":{"user":{"id":"u2"}}}`, kerrors.ErrInvalidBundleFormat},
		{"future version", `{"version":"2.0.0","userId":"u1","data":{"user":{"id":"u1"}}}`, kerrors.ErrUnsupportedFormatVersion},
	}

	p := New(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Unpack(sealRaw(t, tt.document), testPassword)
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestPackEmptyPassword(t *testing.T) {
	if _, err := New(nil).Pack(sampleBundle(), ""); !errors.Is(err, kerrors.ErrEmptyPassword) {
		t.Errorf("Expected ErrEmptyPassword, got %v", err)
	}
}

func TestPackRejectsInvalidBundle(t *testing.T) {
	b := sampleBundle()
	b.OwnerID = ""

	if _, err := New(nil).Pack(b, testPassword); !errors.Is(err, kerrors.ErrInvalidBundleFormat) {
		t.Errorf("Expected ErrInvalidBundleFormat, got %v", err)
	}
}

// sealRaw encrypts an arbitrary document the way Pack would, so Unpack's
// validation can be exercised on content Pack refuses to produce.
func sealRaw(t *testing.T, document string) string {
	t.Helper()

	compressed, err := deflate([]byte(document), 9)
	if err != nil {
		t.Fatalf("deflate failed: %v", err)
	}
	encoded := base64.StdEncoding.EncodeToString(compressed)

	blob, err := cipher.Default().Encrypt([]byte(encoded), testPassword)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	return blob
}

func TestUnpackInvalidDocuments(t *testing.T) {
	tests := []struct {
		name     string
		document string
		want     error
	}{
		{"not json", "hello", kerrors.ErrInvalidBundleFormat},
		{"json array", `[1,2,3]`, kerrors.ErrInvalidBundleFormat},
		{"missing payload", `{"formatVersion":"1.0.0","ownerId":"u1"}`, kerrors.ErrInvalidBundleFormat},
		{"missing ownerId", `{"formatVersion":"1.0.0","payload":{"owner":{"id":"u1"},"records":[]}}`, kerrors.ErrInvalidBundleFormat},
		{"null formatVersion", `{"formatVersion":null,"ownerId":"u1","payload":{"owner":{"id":"u1"},"records":[]}}`, kerrors.ErrInvalidBundleFormat},
		{"owner mismatch", `{"formatVersion":"1.0.0","ownerId":"u1","payload":{"owner":{"id":"u2"},"records":[]}}`, kerrors.ErrInvalidBundleFormat},
		{"future version", `{"formatVersion":"2.0.0","ownerId":"u1","payload":{"owner":{"id":"u1"},"records":[]}}`, kerrors.ErrUnsupportedFormatVersion},
		{"garbage version", `{"formatVersion":"latest","ownerId":"u1","payload":{"owner":{"id":"u1"},"records":[]}}`, kerrors.ErrUnsupportedFormatVersion},
	}

	p := New(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Unpack(sealRaw(t, tt.document), testPassword)
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestUnpackMinorVersionAccepted(t *testing.T) {
	doc := `{"formatVersion":"1.4.0","exportedAt":"2024-03-01T12:00:00Z","ownerId":"u1","payload":{"owner":{"id":"u1","name":"A","email":"a@x"},"records":[{"id":"n1","title":"t","content":"c","futureField":true}]}}`

	b, err := New(nil).Unpack(sealRaw(t, doc), testPassword)
	if err != nil {
		t.Fatalf("Unpack failed: %v", err)
	}
	if b.FormatVersion != "1.4.0" || len(b.Payload.Records) != 1 {
		t.Errorf("Unexpected bundle %+v", b)
	}
}

func TestUnpackCorruptCompression(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte{0xff, 0xfe, 0xfd, 0x00})
	blob, err := cipher.Default().Encrypt([]byte(encoded), testPassword)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	if _, err := New(nil).Unpack(blob, testPassword); !errors.Is(err, kerrors.ErrInvalidBundleFormat) {
		t.Errorf("Expected ErrInvalidBundleFormat, got %v", err)
	}
}

func TestMeasureMatchesPack(t *testing.T) {
	p := New(nil)
	b := sampleBundle()
	b.Payload.Records[0].Content = strings.Repeat("lorem ipsum dolor sit amet ", 30)

	size, err := p.Measure(b)
	if err != nil {
		t.Fatalf("Measure failed: %v", err)
	}

	blob, err := p.Pack(b, testPassword)
	if err != nil {
		t.Fatalf("Pack failed: %v", err)
	}

	if size.Encoded != len(blob) {
		t.Errorf("Measure predicted %d chars, Pack produced %d", size.Encoded, len(blob))
	}
	if size.Records != 1 {
		t.Errorf("Expected 1 record, got %d", size.Records)
	}
	if size.Compressed >= size.Serialized {
		t.Errorf("Expected repetitive content to compress: %d >= %d", size.Compressed, size.Serialized)
	}
}
