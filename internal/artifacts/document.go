package artifacts

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// Page is one code placed in a printable document.
type Page struct {
	Caption string
	PNG     []byte
}

const (
	docCodeSize = 150.0
	docFooterY  = 15.0
)

// WriteDocument writes an A4 PDF with one code per page. Each page
// carries its caption above the code and "Page i of n" at the bottom.
func WriteDocument(w io.Writer, sessionID string, pages []Page, now time.Time) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("tact backup "+sessionID, true)
	pdf.SetCreator("tact", true)
	pdf.SetCreationDate(now)
	pdf.SetAutoPageBreak(false, 0)

	width, height := pdf.GetPageSize()
	x := (width - docCodeSize) / 2
	y := (height-docCodeSize)/2 - 20

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	for i, page := range pages {
		pdf.AddPage()

		name := fmt.Sprintf("frame-%03d", i+1)
		pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(page.PNG))
		pdf.ImageOptions(name, x, y, docCodeSize, docCodeSize, false, opts, 0, "")

		pdf.SetFont("Helvetica", "B", 14)
		pdf.SetXY(0, y-20)
		pdf.CellFormat(width, 10, page.Caption, "", 0, "C", false, 0, "")

		pdf.SetFont("Helvetica", "", 10)
		pdf.SetXY(0, height-docFooterY-5)
		pdf.CellFormat(width, 10, fmt.Sprintf("Page %d of %d", i+1, len(pages)), "", 0, "C", false, 0, "")
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("writing pdf: %w", err)
	}
	return nil
}
