package frames

import (
	"fmt"
	"strconv"
	"strings"

	kerrors "github.com/PolarWolf314/tact/internal/errors"
)

// Wire constants. Changing any of these breaks compatibility with codes
// printed by earlier builds.
const (
	// Magic prefixes every frame this protocol produces.
	Magic = "TQR"

	// LegacyMagic prefixes frames printed by the browser app. They are
	// accepted when reading and never written.
	LegacyMagic = "BQR"

	// Separator delimits frame fields.
	Separator = "|"

	// HeaderMarker occupies the sequence field of a header frame.
	HeaderMarker = "M"

	// SessionIDLength is the length of generated session ids.
	SessionIDLength = 8
)

const (
	headerFields = 4
	dataFields   = 5
)

// Frame is one scannable unit of an encoded blob.
//
// A header frame announces Total for its session and carries no chunk.
// A data frame carries the chunk at position Index of Total. A data frame
// with Index 0 and Total 0 is a complete blob on its own.
type Frame struct {
	SessionID string
	Header    bool
	Index     int
	Total     int
	Chunk     string
}

// Single reports whether f is a self-contained single-frame transfer.
func (f Frame) Single() bool {
	return !f.Header && f.Total == 0
}

// String formats f as its exact wire text:
//
//	TQR|sessionId|M|total
//	TQR|sessionId|index|total|chunk
func (f Frame) String() string {
	if f.Header {
		return Magic + Separator + f.SessionID + Separator + HeaderMarker + Separator + strconv.Itoa(f.Total)
	}
	return dataPrefix(f.SessionID, f.Index, f.Total) + f.Chunk
}

// Label is a short human-readable caption for a rendered frame.
func (f Frame) Label() string {
	switch {
	case f.Header:
		return "Header QR (scan first)"
	case f.Single():
		return "Backup QR"
	default:
		return fmt.Sprintf("QR Code %d of %d", f.Index+1, f.Total)
	}
}

func dataPrefix(sessionID string, index, total int) string {
	return Magic + Separator + sessionID + Separator + strconv.Itoa(index) + Separator + strconv.Itoa(total) + Separator
}

// IsFrame reports whether text carries the protocol marker.
func IsFrame(text string) bool {
	return strings.HasPrefix(text, Magic+Separator) || strings.HasPrefix(text, LegacyMagic+Separator)
}

// Parse decodes the wire text of a frame.
//
// Text that does not begin with the protocol marker is not an error: Parse
// returns ok == false so callers can ignore foreign QR content. Text that
// does carry the marker but cannot be decoded returns ErrMalformedFrame.
func Parse(text string) (frame Frame, ok bool, err error) {
	if !IsFrame(text) {
		return Frame{}, false, nil
	}

	// The chunk may itself contain the separator, so it always takes
	// the remainder of the text.
	parts := strings.SplitN(text, Separator, dataFields)
	if len(parts) < headerFields {
		return Frame{}, true, fmt.Errorf("%w: expected at least %d fields, got %d", kerrors.ErrMalformedFrame, headerFields, len(parts))
	}

	sessionID := parts[1]
	if sessionID == "" {
		return Frame{}, true, fmt.Errorf("%w: empty session id", kerrors.ErrMalformedFrame)
	}

	if parts[2] == HeaderMarker {
		if len(parts) != headerFields {
			return Frame{}, true, fmt.Errorf("%w: header frame has %d fields", kerrors.ErrMalformedFrame, len(parts))
		}
		total, err := parseCount(parts[3])
		if err != nil {
			return Frame{}, true, err
		}
		if total < 1 {
			return Frame{}, true, fmt.Errorf("%w: header declares %d frames", kerrors.ErrMalformedFrame, total)
		}
		return Frame{SessionID: sessionID, Header: true, Total: total}, true, nil
	}

	if len(parts) != dataFields {
		return Frame{}, true, fmt.Errorf("%w: data frame has %d fields", kerrors.ErrMalformedFrame, len(parts))
	}
	index, err := parseCount(parts[2])
	if err != nil {
		return Frame{}, true, err
	}
	total, err := parseCount(parts[3])
	if err != nil {
		return Frame{}, true, err
	}

	switch {
	case total == 0 && index != 0:
		return Frame{}, true, fmt.Errorf("%w: single frame with index %d", kerrors.ErrMalformedFrame, index)
	case total > 0 && index >= total:
		return Frame{}, true, fmt.Errorf("%w: index %d outside %d frames", kerrors.ErrMalformedFrame, index, total)
	}

	return Frame{SessionID: sessionID, Index: index, Total: total, Chunk: parts[4]}, true, nil
}

func parseCount(field string) (int, error) {
	n, err := strconv.Atoi(field)
	if err != nil || n < 0 || strings.HasPrefix(field, "+") {
		return 0, fmt.Errorf("%w: invalid number %q", kerrors.ErrMalformedFrame, field)
	}
	return n, nil
}
