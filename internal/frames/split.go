package frames

import (
	"crypto/rand"
	"fmt"
	"math/big"

	kerrors "github.com/PolarWolf314/tact/internal/errors"
)

// Capacity defaults. These describe what a rendered code can reliably
// carry; they are tunable and not part of the wire format.
const (
	// DefaultCapacity is the target length of a frame's text.
	DefaultCapacity = 350

	// DefaultOverhead is the budget reserved for data frame fields.
	DefaultOverhead = 60

	// MinOverhead is the data frame prefix of a one-frame transfer with a
	// generated session id ("TQR|xxxxxxxx|0|1|").
	MinOverhead = len(Magic) + 4*len(Separator) + SessionIDLength + 2
)

const sessionAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// Options controls how a blob is split into frames.
type Options struct {
	// Capacity is the maximum frame text length the renderer supports.
	Capacity int

	// Overhead is reserved from Capacity for the fields of every data
	// frame; the remainder is the chunk size.
	Overhead int
}

// DefaultOptions returns the default capacity and overhead.
func DefaultOptions() Options {
	return Options{Capacity: DefaultCapacity, Overhead: DefaultOverhead}
}

// ChunkSize is the largest number of blob characters a data frame carries.
// Frames of a long transfer carry less when their prefix outgrows Overhead.
func (o Options) ChunkSize() int {
	return o.Capacity - o.Overhead
}

// Validate checks the options reserve at least the shortest data frame
// prefix and still leave room for payload.
func (o Options) Validate() error {
	if o.Capacity <= 0 || o.Overhead < MinOverhead {
		return fmt.Errorf("%w: capacity %d, overhead %d (minimum %d)", kerrors.ErrInvalidCapacity, o.Capacity, o.Overhead, MinOverhead)
	}
	if o.ChunkSize() <= 0 {
		return fmt.Errorf("%w: overhead %d leaves no room in capacity %d", kerrors.ErrInvalidCapacity, o.Overhead, o.Capacity)
	}
	return nil
}

// Plan is the ordered set of frames produced for one export.
type Plan struct {
	SessionID string

	// Single is true when the whole blob fits in one data frame with
	// Total 0 and no header is emitted.
	Single bool

	// Header is the header frame; zero when Single.
	Header Frame

	// Data holds the data frames in sequence order.
	Data []Frame
}

// Total is the number of data frames announced by the header, or 0 for a
// single-frame plan.
func (p Plan) Total() int {
	if p.Single {
		return 0
	}
	return len(p.Data)
}

// Frames returns every frame in render order: the header first, then the
// data frames by index.
func (p Plan) Frames() []Frame {
	if p.Single {
		return append([]Frame(nil), p.Data...)
	}
	out := make([]Frame, 0, len(p.Data)+1)
	out = append(out, p.Header)
	return append(out, p.Data...)
}

// Texts returns the wire text of every frame in render order.
func (p Plan) Texts() []string {
	all := p.Frames()
	out := make([]string, len(all))
	for i, f := range all {
		out[i] = f.String()
	}
	return out
}

// Split divides blob into frames under a fresh random session id.
func Split(blob string, opts Options) (Plan, error) {
	sessionID, err := NewSessionID()
	if err != nil {
		return Plan{}, err
	}
	return SplitWithSession(blob, sessionID, opts)
}

// SplitWithSession is Split with a caller-chosen session id.
func SplitWithSession(blob, sessionID string, opts Options) (Plan, error) {
	if err := opts.Validate(); err != nil {
		return Plan{}, err
	}
	if sessionID == "" {
		return Plan{}, fmt.Errorf("%w: empty session id", kerrors.ErrMalformedFrame)
	}

	if fitsSingle(len(blob), sessionID, opts) {
		return Plan{
			SessionID: sessionID,
			Single:    true,
			Data:      []Frame{{SessionID: sessionID, Index: 0, Total: 0, Chunk: blob}},
		}, nil
	}

	size, total, err := layout(len(blob), sessionID, opts)
	if err != nil {
		return Plan{}, err
	}
	data := make([]Frame, 0, total)
	for i := 0; i < total; i++ {
		start := i * size
		end := min(start+size, len(blob))
		data = append(data, Frame{SessionID: sessionID, Index: i, Total: total, Chunk: blob[start:end]})
	}

	return Plan{
		SessionID: sessionID,
		Header:    Frame{SessionID: sessionID, Header: true, Total: total},
		Data:      data,
	}, nil
}

// Count predicts how many codes a blob of blobLen characters needs,
// including the header frame.
func Count(blobLen int, opts Options) int {
	if fitsSingle(blobLen, sessionAlphabet[:SessionIDLength], opts) {
		return 1
	}
	_, total, err := layout(blobLen, sessionAlphabet[:SessionIDLength], opts)
	if err != nil {
		return 0
	}
	return total + 1
}

// layout picks the chunk size and data frame count for a multi-frame blob
// so that the longest prefix, that of the last frame, plus a chunk fits
// Capacity.
func layout(blobLen int, sessionID string, opts Options) (size, total int, err error) {
	size = opts.ChunkSize()
	for size > 0 {
		total = (blobLen + size - 1) / size
		room := opts.Capacity - len(dataPrefix(sessionID, total-1, total))
		if room >= size {
			return size, total, nil
		}
		size = room
	}
	return 0, 0, fmt.Errorf("%w: capacity %d leaves no room for data after the frame fields", kerrors.ErrInvalidCapacity, opts.Capacity)
}

// fitsSingle reports whether a blob fits one data frame once the actual
// single-frame prefix is accounted for.
func fitsSingle(blobLen int, sessionID string, opts Options) bool {
	return len(dataPrefix(sessionID, 0, 0))+blobLen <= opts.Capacity
}

// NewSessionID returns a random base-36 token of SessionIDLength characters.
func NewSessionID() (string, error) {
	max := big.NewInt(int64(len(sessionAlphabet)))
	id := make([]byte, SessionIDLength)
	for i := range id {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generating session id: %w", err)
		}
		id[i] = sessionAlphabet[n.Int64()]
	}
	return string(id), nil
}
