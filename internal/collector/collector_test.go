package collector

import (
	"errors"
	"fmt"
	"math/rand"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PolarWolf314/tact/internal/bundle"
	kerrors "github.com/PolarWolf314/tact/internal/errors"
	"github.com/PolarWolf314/tact/internal/frames"
	"github.com/PolarWolf314/tact/internal/packager"
)

// permutations returns every ordering of items.
func permutations(items []string) [][]string {
	if len(items) <= 1 {
		return [][]string{append([]string(nil), items...)}
	}
	var out [][]string
	for i := range items {
		rest := make([]string, 0, len(items)-1)
		rest = append(rest, items[:i]...)
		rest = append(rest, items[i+1:]...)
		for _, p := range permutations(rest) {
			out = append(out, append([]string{items[i]}, p...))
		}
	}
	return out
}

func randomBlob(r *rand.Rand, n int) string {
	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"
	b := make([]byte, n)
	for i := range b {
		b[i] = alphabet[r.Intn(len(alphabet))]
	}
	return string(b)
}

func TestEveryPermutationCompletesOnce(t *testing.T) {
	opts := frames.Options{Capacity: 40, Overhead: 30}
	blob := randomBlob(rand.New(rand.NewSource(1)), 4*opts.ChunkSize())

	plan, err := frames.SplitWithSession(blob, "perm0001", opts)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	if plan.Total() != 4 {
		t.Fatalf("Expected 4 data frames, got %d", plan.Total())
	}

	orders := permutations(plan.Texts())
	if len(orders) != 120 {
		t.Fatalf("Expected 120 permutations, got %d", len(orders))
	}

	for n, order := range orders {
		c := New()
		completions := 0
		for _, text := range order {
			res, err := c.Consume(text)
			if err != nil {
				t.Fatalf("Permutation %d: unexpected error %v", n, err)
			}
			if res.Complete {
				completions++
				if res.Blob != blob {
					t.Fatalf("Permutation %d: reassembled blob differs", n)
				}
			}
		}
		if completions != 1 {
			t.Errorf("Permutation %d: expected exactly one completion, got %d", n, completions)
		}
		if c.Len() != 0 {
			t.Errorf("Permutation %d: session left behind after completion", n)
		}
	}
}

func TestShuffledReassemblyAcrossCapacities(t *testing.T) {
	r := rand.New(rand.NewSource(42))

	for _, capacity := range []int{80, 150, 350, 1000} {
		opts := frames.Options{Capacity: capacity, Overhead: frames.DefaultOverhead}
		for trial := 0; trial < 10; trial++ {
			blob := randomBlob(r, 1+r.Intn(5000))
			plan, err := frames.Split(blob, opts)
			if err != nil {
				t.Fatalf("Split failed: %v", err)
			}

			texts := plan.Texts()
			r.Shuffle(len(texts), func(i, j int) { texts[i], texts[j] = texts[j], texts[i] })

			c := New()
			var got string
			for _, text := range texts {
				res, err := c.Consume(text)
				if err != nil {
					t.Fatalf("Consume failed: %v", err)
				}
				if res.Complete {
					got = res.Blob
				}
			}
			if got != blob {
				t.Errorf("Capacity %d trial %d: reassembled %d chars, want %d", capacity, trial, len(got), len(blob))
			}
		}
	}
}

func TestMissingFrameNeverCompletes(t *testing.T) {
	opts := frames.Options{Capacity: 50, Overhead: 30}
	plan, err := frames.SplitWithSession(strings.Repeat("x", 5*opts.ChunkSize()), "miss0001", opts)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}

	for withheld := range plan.Data {
		c := New()
		for round := 0; round < 3; round++ {
			for _, f := range plan.Frames() {
				if !f.Header && f.Index == withheld {
					continue
				}
				res, err := c.Consume(f.String())
				if err != nil {
					t.Fatalf("Consume failed: %v", err)
				}
				if res.Complete {
					t.Fatalf("Completed without frame %d", withheld)
				}
			}
		}

		p, ok := c.Progress("miss0001")
		if !ok {
			t.Fatal("Expected session to remain in progress")
		}
		if p.Received != plan.Total()-1 || !p.HeaderSeen {
			t.Errorf("Unexpected progress %+v", p)
		}
	}
}

func TestHeaderRequired(t *testing.T) {
	opts := frames.Options{Capacity: 50, Overhead: 30}
	plan, err := frames.SplitWithSession(strings.Repeat("y", 3*opts.ChunkSize()), "head0001", opts)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}

	c := New()
	for _, f := range plan.Data {
		res, err := c.Consume(f.String())
		if err != nil {
			t.Fatalf("Consume failed: %v", err)
		}
		if res.Complete {
			t.Fatal("Completed before the header frame arrived")
		}
	}

	res, err := c.Consume(plan.Header.String())
	if err != nil {
		t.Fatalf("Consume failed: %v", err)
	}
	if !res.Complete {
		t.Error("Expected header to complete the session")
	}
}

func TestTotalMismatch(t *testing.T) {
	c := New()

	if _, err := c.Consume("TQR|mism0001|M|5"); err != nil {
		t.Fatalf("Consume header failed: %v", err)
	}

	res, err := c.Consume("TQR|mism0001|0|6|chunk")
	if !errors.Is(err, kerrors.ErrSessionTotalMismatch) {
		t.Fatalf("Expected ErrSessionTotalMismatch, got %v", err)
	}
	if res.Complete {
		t.Error("Mismatch must not complete")
	}
	if c.Len() != 0 {
		t.Error("Expected mismatched session to be discarded")
	}
}

func TestTotalMismatchBetweenDataFrames(t *testing.T) {
	c := New()

	if _, err := c.Consume("TQR|mism0002|1|3|b"); err != nil {
		t.Fatalf("Consume failed: %v", err)
	}
	if _, err := c.Consume("TQR|mism0002|M|4"); !errors.Is(err, kerrors.ErrSessionTotalMismatch) {
		t.Errorf("Expected ErrSessionTotalMismatch, got %v", err)
	}
}

func TestForeignInput(t *testing.T) {
	c := New()

	for _, text := range []string{"", "hello", "https://example.com/TQR|x|M|2", "BQR|abc|M|2", "WIFI:S:home;;"} {
		res, err := c.Consume(text)
		if err != nil {
			t.Errorf("Consume(%q) returned error %v", text, err)
		}
		if res.Recognized || res.Complete {
			t.Errorf("Consume(%q) = %+v; expected unrecognized", text, res)
		}
	}

	if c.Len() != 0 {
		t.Errorf("Foreign input created %d sessions", c.Len())
	}
}

func TestMalformedFrameLeavesStateUnchanged(t *testing.T) {
	c := New()

	if _, err := c.Consume("TQR|good0001|M|2"); err != nil {
		t.Fatalf("Consume failed: %v", err)
	}

	res, err := c.Consume("TQR|good0001|x|2|chunk")
	if !errors.Is(err, kerrors.ErrMalformedFrame) {
		t.Fatalf("Expected ErrMalformedFrame, got %v", err)
	}
	if !res.Recognized {
		t.Error("Malformed frame should still be recognized as protocol text")
	}

	p, ok := c.Progress("good0001")
	if !ok || p.Received != 0 || !p.HeaderSeen || p.Total != 2 {
		t.Errorf("Unexpected progress after malformed frame: %+v", p)
	}
}

func TestLastWriteWins(t *testing.T) {
	c := New()

	for _, text := range []string{"TQR|lww00001|M|2", "TQR|lww00001|0|2|old", "TQR|lww00001|0|2|new"} {
		if _, err := c.Consume(text); err != nil {
			t.Fatalf("Consume(%q) failed: %v", text, err)
		}
	}

	res, err := c.Consume("TQR|lww00001|1|2|-tail")
	if err != nil {
		t.Fatalf("Consume failed: %v", err)
	}
	if !res.Complete || res.Blob != "new-tail" {
		t.Errorf("Expected blob %q, got %+v", "new-tail", res)
	}
}

func TestSingleFrame(t *testing.T) {
	c := New()

	res, err := c.Consume("TQR|solo0001|0|0|whole|blob")
	if err != nil {
		t.Fatalf("Consume failed: %v", err)
	}
	if !res.Complete || res.Blob != "whole|blob" || res.SessionID != "solo0001" {
		t.Errorf("Unexpected result %+v", res)
	}
	if c.Len() != 0 {
		t.Error("Single frame should not leave a session entry")
	}
}

func TestProgressString(t *testing.T) {
	tests := []struct {
		progress Progress
		want     string
	}{
		{Progress{HeaderSeen: true, Total: 11, Received: 6}, "7/12 frames captured"},
		{Progress{Total: 3, Received: 1}, "1/4 frames captured"},
		{Progress{Received: 0}, "0 frames captured"},
	}

	for _, tt := range tests {
		if got := tt.progress.String(); got != tt.want {
			t.Errorf("Expected %q, got %q", tt.want, got)
		}
	}
}

func TestSessionsAndEviction(t *testing.T) {
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	c := New(WithClock(func() time.Time { return now }))

	if _, err := c.Consume("TQR|aaaa0001|M|3"); err != nil {
		t.Fatalf("Consume failed: %v", err)
	}
	now = now.Add(10 * time.Minute)
	if _, err := c.Consume("TQR|bbbb0001|0|2|x"); err != nil {
		t.Fatalf("Consume failed: %v", err)
	}

	sessions := c.Sessions()
	if len(sessions) != 2 || sessions[0].SessionID != "aaaa0001" || sessions[1].SessionID != "bbbb0001" {
		t.Fatalf("Unexpected sessions %+v", sessions)
	}

	evicted := c.EvictIdle(5 * time.Minute)
	if !reflect.DeepEqual(evicted, []string{"aaaa0001"}) {
		t.Errorf("Expected aaaa0001 evicted, got %v", evicted)
	}
	if c.Len() != 1 {
		t.Errorf("Expected 1 session left, got %d", c.Len())
	}

	if !c.Discard("bbbb0001") {
		t.Error("Expected Discard to report an existing session")
	}
	if c.Discard("bbbb0001") {
		t.Error("Expected second Discard to report nothing")
	}
}

func TestConcurrentSessions(t *testing.T) {
	opts := frames.Options{Capacity: 60, Overhead: 30}
	r := rand.New(rand.NewSource(7))

	const sessions = 8
	blobs := make(map[string]string, sessions)
	var texts []string
	for i := 0; i < sessions; i++ {
		id := fmt.Sprintf("conc%04d", i)
		blobs[id] = randomBlob(r, 500+r.Intn(500))
		plan, err := frames.SplitWithSession(blobs[id], id, opts)
		if err != nil {
			t.Fatalf("Split failed: %v", err)
		}
		texts = append(texts, plan.Texts()...)
	}
	r.Shuffle(len(texts), func(i, j int) { texts[i], texts[j] = texts[j], texts[i] })

	c := New()
	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		complete = make(map[string]string)
	)
	for _, text := range texts {
		wg.Add(1)
		go func(text string) {
			defer wg.Done()
			res, err := c.Consume(text)
			if err != nil {
				t.Errorf("Consume failed: %v", err)
				return
			}
			if res.Complete {
				mu.Lock()
				complete[res.SessionID] = res.Blob
				mu.Unlock()
			}
		}(text)
	}
	wg.Wait()

	if !reflect.DeepEqual(complete, blobs) {
		t.Errorf("Expected %d sessions completed intact, got %d", len(blobs), len(complete))
	}
	if c.Len() != 0 {
		t.Errorf("Expected empty table, got %d sessions", c.Len())
	}
}

func TestBackupScenario(t *testing.T) {
	p := packager.New(nil)
	owner := bundle.User{ID: "u1", Name: "A", Email: "a@x"}
	exportedAt := time.Date(2024, 5, 4, 9, 30, 0, 0, time.UTC)
	small := bundle.New(owner, []bundle.Record{{ID: "n1", Title: "t", Content: "c"}}, exportedAt)

	blob, err := p.Pack(small, "correct-horse")
	if err != nil {
		t.Fatalf("Pack failed: %v", err)
	}
	plan, err := frames.Split(blob, frames.DefaultOptions())
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	if !plan.Single || plan.Total() != 0 {
		t.Fatalf("Expected the small bundle to fit one frame, blob is %d chars", len(blob))
	}

	// Random content so compression cannot hide the extra length.
	extra := randomBlob(rand.New(rand.NewSource(2000)), 2000)
	large := bundle.New(owner, []bundle.Record{{ID: "n1", Title: "t", Content: "c" + extra}}, exportedAt)

	blob, err = p.Pack(large, "correct-horse")
	if err != nil {
		t.Fatalf("Pack failed: %v", err)
	}
	plan, err = frames.Split(blob, frames.DefaultOptions())
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	if plan.Total() < 6 {
		t.Fatalf("Expected at least 6 data frames, got %d", plan.Total())
	}

	texts := plan.Texts()
	c := New()
	var reassembled string
	for i := len(texts) - 1; i >= 0; i-- {
		res, err := c.Consume(texts[i])
		if err != nil {
			t.Fatalf("Consume failed: %v", err)
		}
		if res.Complete {
			if i != 0 {
				t.Fatalf("Completed early at position %d", i)
			}
			reassembled = res.Blob
		}
	}

	got, err := p.Unpack(reassembled, "correct-horse")
	if err != nil {
		t.Fatalf("Unpack failed: %v", err)
	}
	if !reflect.DeepEqual(got, large) {
		t.Error("Unpacked bundle differs from the original")
	}
}
