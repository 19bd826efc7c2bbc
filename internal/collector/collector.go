package collector

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	kerrors "github.com/PolarWolf314/tact/internal/errors"
	"github.com/PolarWolf314/tact/internal/frames"
)

// Progress is a snapshot of one session's reassembly state.
type Progress struct {
	SessionID  string
	HeaderSeen bool

	// Total is the number of data frames, or 0 while no frame has
	// declared it yet.
	Total int

	// Received counts distinct data frames stored so far.
	Received int

	LastActivity time.Time
}

// Captured is the number of codes scanned so far, header included.
func (p Progress) Captured() int {
	if p.HeaderSeen {
		return p.Received + 1
	}
	return p.Received
}

// Expected is the number of codes the session needs, header included,
// or 0 while the total is still unknown.
func (p Progress) Expected() int {
	if p.Total == 0 {
		return 0
	}
	return p.Total + 1
}

// String renders the progress for display, e.g. "7/12 frames captured".
func (p Progress) String() string {
	if p.Expected() == 0 {
		return fmt.Sprintf("%d frames captured", p.Captured())
	}
	return fmt.Sprintf("%d/%d frames captured", p.Captured(), p.Expected())
}

// Result is the outcome of consuming one scanned string.
type Result struct {
	// Recognized is false for text that is not a frame of this protocol.
	Recognized bool

	// Complete is true when this frame finished its session. Blob then
	// holds the reassembled text and the session has been removed.
	Complete bool

	SessionID string
	Blob      string
	Progress  Progress
}

type session struct {
	headerSeen   bool
	total        int
	chunks       map[int]string
	lastActivity time.Time
}

func (s *session) progress(id string) Progress {
	return Progress{
		SessionID:    id,
		HeaderSeen:   s.headerSeen,
		Total:        s.total,
		Received:     len(s.chunks),
		LastActivity: s.lastActivity,
	}
}

func (s *session) complete() bool {
	if !s.headerSeen || s.total == 0 || len(s.chunks) < s.total {
		return false
	}
	for i := 0; i < s.total; i++ {
		if _, ok := s.chunks[i]; !ok {
			return false
		}
	}
	return true
}

func (s *session) assemble() string {
	var b strings.Builder
	for i := 0; i < s.total; i++ {
		b.WriteString(s.chunks[i])
	}
	return b.String()
}

// Option configures a Collector.
type Option func(*Collector)

// WithClock sets the time source used to stamp session activity.
func WithClock(now func() time.Time) Option {
	return func(c *Collector) {
		c.now = now
	}
}

// Collector reassembles sessions from frames delivered in any order.
// The zero value is not usable; call New.
type Collector struct {
	mu       sync.Mutex
	sessions map[string]*session
	now      func() time.Time
}

// New returns an empty Collector.
func New(opts ...Option) *Collector {
	c := &Collector{
		sessions: make(map[string]*session),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Consume feeds one scanned string to the collector.
//
// Foreign text returns a Result with Recognized false and no error.
// A frame that cannot be parsed returns ErrMalformedFrame; the caller
// should skip it and keep scanning. A frame whose total disagrees with
// what its session already recorded returns ErrSessionTotalMismatch and
// the session is discarded. Otherwise the frame is recorded and the
// Result reports progress, or the reassembled blob once every frame of
// the session has arrived.
func (c *Collector) Consume(raw string) (Result, error) {
	frame, ok, err := frames.Parse(raw)
	if !ok {
		return Result{}, nil
	}
	if err != nil {
		return Result{Recognized: true}, err
	}

	if frame.Single() {
		return Result{
			Recognized: true,
			Complete:   true,
			SessionID:  frame.SessionID,
			Blob:       frame.Chunk,
			Progress:   Progress{SessionID: frame.SessionID, Received: 1, LastActivity: c.now()},
		}, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	s, exists := c.sessions[frame.SessionID]
	if !exists {
		s = &session{chunks: make(map[int]string)}
		c.sessions[frame.SessionID] = s
	}

	if s.total != 0 && s.total != frame.Total {
		delete(c.sessions, frame.SessionID)
		return Result{Recognized: true, SessionID: frame.SessionID}, fmt.Errorf("%w: session %s recorded %d frames, frame declares %d",
			kerrors.ErrSessionTotalMismatch, frame.SessionID, s.total, frame.Total)
	}

	s.total = frame.Total
	if frame.Header {
		s.headerSeen = true
	} else {
		s.chunks[frame.Index] = frame.Chunk
	}
	s.lastActivity = c.now()

	result := Result{
		Recognized: true,
		SessionID:  frame.SessionID,
		Progress:   s.progress(frame.SessionID),
	}
	if s.complete() {
		result.Complete = true
		result.Blob = s.assemble()
		delete(c.sessions, frame.SessionID)
	}
	return result, nil
}

// Progress returns the state of an in-progress session.
func (c *Collector) Progress(sessionID string) (Progress, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.sessions[sessionID]
	if !ok {
		return Progress{}, false
	}
	return s.progress(sessionID), true
}

// Sessions returns a snapshot of every in-progress session ordered by
// session id.
func (c *Collector) Sessions() []Progress {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Progress, 0, len(c.sessions))
	for id, s := range c.sessions {
		out = append(out, s.progress(id))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].SessionID < out[j].SessionID
	})
	return out
}

// Discard drops a session. It reports whether the session existed.
func (c *Collector) Discard(sessionID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.sessions[sessionID]
	delete(c.sessions, sessionID)
	return ok
}

// EvictIdle drops every session that has received no frame for longer
// than maxIdle and returns their ids in sorted order.
func (c *Collector) EvictIdle(maxIdle time.Duration) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	cutoff := c.now().Add(-maxIdle)
	var evicted []string
	for id, s := range c.sessions {
		if s.lastActivity.Before(cutoff) {
			delete(c.sessions, id)
			evicted = append(evicted, id)
		}
	}
	sort.Strings(evicted)
	return evicted
}

// Len returns the number of in-progress sessions.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.sessions)
}
