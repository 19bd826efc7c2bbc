package artifacts

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	kerrors "github.com/PolarWolf314/tact/internal/errors"
	"github.com/PolarWolf314/tact/internal/qr"
	"github.com/klauspost/compress/zip"
)

var testTime = time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

func sampleTexts(n int) []string {
	out := []string{fmt.Sprintf("TQR|art00001|M|%d", n-1)}
	for i := 0; i < n-1; i++ {
		out = append(out, fmt.Sprintf("TQR|art00001|%d|%d|%s", i, n-1, strings.Repeat(string(rune('a'+i)), 120)))
	}
	return out
}

func TestRenderKeepsOrder(t *testing.T) {
	texts := sampleTexts(6)
	enc := qr.NewEncoder(300)

	imgs, err := RenderImages(context.Background(), enc, texts)
	if err != nil {
		t.Fatalf("RenderImages failed: %v", err)
	}

	dec := qr.NewDecoder()
	for i, img := range imgs {
		got, err := dec.Decode(img)
		if err != nil {
			t.Fatalf("Decode %d failed: %v", i, err)
		}
		if got != texts[i] {
			t.Errorf("Image %d decoded to %q, want %q", i, got, texts[i])
		}
	}
}

func TestRenderCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := RenderPNGs(ctx, qr.NewEncoder(100), sampleTexts(4)); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestArchiveRoundTrip(t *testing.T) {
	pngs := [][]byte{[]byte("one"), []byte("two"), []byte("three")}

	var buf bytes.Buffer
	if err := WriteArchive(&buf, "art00001", pngs, testTime); err != nil {
		t.Fatalf("WriteArchive failed: %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("zip.NewReader failed: %v", err)
	}
	names := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	want := []string{"README.txt", "qr-001.png", "qr-002.png", "qr-003.png"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Errorf("Expected entries %v, got %v", want, names)
	}

	rc, err := zr.File[0].Open()
	if err != nil {
		t.Fatalf("Opening readme failed: %v", err)
	}
	var readme bytes.Buffer
	_, _ = readme.ReadFrom(rc)
	rc.Close()
	for _, s := range []string{"Session: art00001", "Total QR Codes: 3", "Generated: 2024-06-01T08:00:00Z"} {
		if !strings.Contains(readme.String(), s) {
			t.Errorf("README missing %q", s)
		}
	}

	entries, err := ReadArchive(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("ReadArchive failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(entries))
	}
	for i, e := range entries {
		if e.Name != EntryName(i) || !bytes.Equal(e.Data, pngs[i]) {
			t.Errorf("Entry %d = %s %q", i, e.Name, e.Data)
		}
	}
}

func TestReadArchiveSortsAndFilters(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range []string{"qr-010.png", "notes.txt", "qr-002.PNG", "nested/", "qr-001.png"} {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if !strings.HasSuffix(name, "/") {
			_, _ = w.Write([]byte(name))
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	entries, err := ReadArchive(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("ReadArchive failed: %v", err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name)
	}
	if strings.Join(names, ",") != "qr-001.png,qr-002.PNG,qr-010.png" {
		t.Errorf("Unexpected entries %v", names)
	}
}

func TestReadArchiveErrors(t *testing.T) {
	garbage := []byte("definitely not a zip file")
	if _, err := ReadArchive(bytes.NewReader(garbage), int64(len(garbage))); !errors.Is(err, kerrors.ErrInvalidArchive) {
		t.Errorf("Expected ErrInvalidArchive, got %v", err)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	if _, err := zw.Create("README.txt"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	_ = zw.Close()
	if _, err := ReadArchive(bytes.NewReader(buf.Bytes()), int64(buf.Len())); !errors.Is(err, kerrors.ErrNoFilesFound) {
		t.Errorf("Expected ErrNoFilesFound, got %v", err)
	}
}

func TestAnimationRoundTrip(t *testing.T) {
	texts := sampleTexts(3)
	imgs, err := RenderImages(context.Background(), qr.NewEncoder(300), texts)
	if err != nil {
		t.Fatalf("RenderImages failed: %v", err)
	}

	slides := make([]Slide, len(imgs))
	for i, img := range imgs {
		slides[i] = Slide{Caption: fmt.Sprintf("QR Code %d of %d", i+1, len(imgs)), Image: img}
	}

	var buf bytes.Buffer
	if err := WriteAnimation(&buf, slides, 0); err != nil {
		t.Fatalf("WriteAnimation failed: %v", err)
	}

	frames, err := DecodeAnimation(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("DecodeAnimation failed: %v", err)
	}
	if len(frames) != len(texts) {
		t.Fatalf("Expected %d frames, got %d", len(texts), len(frames))
	}

	dec := qr.NewDecoder()
	for i, frame := range frames {
		if b := frame.Bounds(); b.Dy() != 300+captionHeight {
			t.Errorf("Frame %d has height %d", i, b.Dy())
		}
		got, err := dec.Decode(frame)
		if err != nil {
			t.Fatalf("Decode frame %d failed: %v", i, err)
		}
		if got != texts[i] {
			t.Errorf("Frame %d decoded to %q", i, got)
		}
	}
}

func TestWriteDocument(t *testing.T) {
	texts := sampleTexts(3)
	pngs, err := RenderPNGs(context.Background(), qr.NewEncoder(200), texts)
	if err != nil {
		t.Fatalf("RenderPNGs failed: %v", err)
	}

	pages := make([]Page, len(pngs))
	for i, data := range pngs {
		pages[i] = Page{Caption: fmt.Sprintf("Caption %d", i), PNG: data}
	}

	var buf bytes.Buffer
	if err := WriteDocument(&buf, "art00001", pages, testTime); err != nil {
		t.Fatalf("WriteDocument failed: %v", err)
	}

	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Error("Output does not start with a PDF header")
	}
	if !bytes.Contains(buf.Bytes(), []byte("/Count 3")) {
		t.Error("Expected a three-page document")
	}
}

func TestWriteDocumentBadImage(t *testing.T) {
	var buf bytes.Buffer
	err := WriteDocument(&buf, "s", []Page{{Caption: "x", PNG: []byte("not a png")}}, testTime)
	if err == nil {
		t.Error("Expected an error for invalid image data")
	}
}

func TestTextRoundTrip(t *testing.T) {
	texts := sampleTexts(4)

	var buf bytes.Buffer
	if err := WriteText(&buf, texts); err != nil {
		t.Fatalf("WriteText failed: %v", err)
	}

	got, err := ReadText(strings.NewReader("\n  " + strings.ReplaceAll(buf.String(), "\n", "\r\n\n")))
	if err != nil {
		t.Fatalf("ReadText failed: %v", err)
	}
	if strings.Join(got, "\n") != strings.Join(texts, "\n") {
		t.Errorf("Expected %v, got %v", texts, got)
	}

	if err := WriteText(&buf, []string{"bad\nline"}); err == nil {
		t.Error("Expected an error for text containing a newline")
	}
}

func TestFormats(t *testing.T) {
	for _, tt := range []struct {
		in   string
		want Format
	}{
		{"", FormatAuto},
		{"AUTO", FormatAuto},
		{"pdf", FormatPDF},
		{" Zip ", FormatZip},
		{"text", FormatText},
	} {
		got, err := ParseFormat(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
	if _, err := ParseFormat("webm"); !errors.Is(err, kerrors.ErrInvalidFileType) {
		t.Errorf("Expected ErrInvalidFileType, got %v", err)
	}

	if got := FormatAuto.Resolve(1); got != FormatPNG {
		t.Errorf("Expected png for a single frame, got %s", got)
	}
	if got := FormatAuto.Resolve(7); got != FormatZip {
		t.Errorf("Expected zip for many frames, got %s", got)
	}
	if got := FormatGIF.Resolve(1); got != FormatGIF {
		t.Errorf("Expected explicit format kept, got %s", got)
	}
	if FormatText.Ext() != ".txt" || FormatPDF.Ext() != ".pdf" {
		t.Error("Unexpected extensions")
	}

	for path, want := range map[string]Format{"a/b.ZIP": FormatZip, "x.jpeg": FormatPNG, "f.gif": FormatGIF, "frames.txt": FormatText} {
		if got, err := FromPath(path); err != nil || got != want {
			t.Errorf("FromPath(%q) = %q, %v", path, got, err)
		}
	}
	if _, err := FromPath("backup.webm"); !errors.Is(err, kerrors.ErrInvalidFileType) {
		t.Errorf("Expected ErrInvalidFileType, got %v", err)
	}
}
