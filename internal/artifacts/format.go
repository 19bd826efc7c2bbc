package artifacts

import (
	"fmt"
	"path/filepath"
	"strings"

	kerrors "github.com/PolarWolf314/tact/internal/errors"
)

// Format names an export container.
type Format string

const (
	FormatAuto Format = "auto"
	FormatPNG  Format = "png"
	FormatZip  Format = "zip"
	FormatPDF  Format = "pdf"
	FormatGIF  Format = "gif"
	FormatText Format = "text"
)

// Formats lists every concrete format in display order.
var Formats = []Format{FormatPNG, FormatZip, FormatPDF, FormatGIF, FormatText}

// ParseFormat accepts a format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if f == "" || f == FormatAuto {
		return FormatAuto, nil
	}
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: unknown format %q", kerrors.ErrInvalidFileType, s)
}

// Resolve picks a concrete format. Auto chooses png for a single frame
// and zip otherwise.
func (f Format) Resolve(frameCount int) Format {
	if f != FormatAuto && f != "" {
		return f
	}
	if frameCount == 1 {
		return FormatPNG
	}
	return FormatZip
}

// Ext is the file extension written for f.
func (f Format) Ext() string {
	if f == FormatText {
		return ".txt"
	}
	return "." + string(f)
}

// FromPath guesses the container of an existing file from its extension.
func FromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg":
		return FormatPNG, nil
	case ".zip":
		return FormatZip, nil
	case ".pdf":
		return FormatPDF, nil
	case ".gif":
		return FormatGIF, nil
	case ".txt":
		return FormatText, nil
	}
	return "", fmt.Errorf("%w: %s", kerrors.ErrInvalidFileType, path)
}
