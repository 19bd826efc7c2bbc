package workflows

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/PolarWolf314/tact/internal/artifacts"
	"github.com/PolarWolf314/tact/internal/collector"
	kerrors "github.com/PolarWolf314/tact/internal/errors"
	"github.com/PolarWolf314/tact/internal/qr"
	"github.com/PolarWolf314/tact/internal/utils"
)

// StdinPath is the source path that reads frame text from standard input.
const StdinPath = "-"

var imageExts = []string{".png", ".jpg", ".jpeg", ".gif"}

// ScanOptions configures the scan workflow.
type ScanOptions struct {
	// SourcePath is an artifact file, a directory of images, or StdinPath
	// for one frame text per line.
	SourcePath string

	// Stdin is read when SourcePath is StdinPath.
	Stdin io.Reader

	// IdleTimeout drops partial sessions that receive no frame for this
	// long while reading a stream. Zero keeps them.
	IdleTimeout time.Duration

	// OnProgress is called after every frame that advances a session.
	// Calls are serialised.
	OnProgress func(collector.Progress)

	// Decoder reads images. Nil uses qr.NewDecoder.
	Decoder qr.ImageDecoder
}

// ScanResult contains the outcome of a scan.
type ScanResult struct {
	// SessionID identifies the completed transfer.
	SessionID string

	// Blob is the reassembled encrypted blob.
	Blob string

	// Format is the container the codes were read from.
	Format artifacts.Format

	// Scanned is the number of images or lines examined.
	Scanned int

	// Unreadable counts images without a readable code.
	Unreadable int

	// Ignored counts codes that are not tact frames.
	Ignored int

	// Malformed counts tact frames that failed to parse.
	Malformed int
}

// Scan reads QR codes from a source and reassembles the first transfer
// that completes.
//
// Returns ErrFileNotFound if the source does not exist.
// Returns ErrInvalidFileType for containers that cannot be read back.
// Returns ErrNoCodeFound if no tact frame was found at all.
// Returns ErrIncompleteTransfer if frames were found but no session completed.
// Returns ErrSessionTotalMismatch if frames of one session disagree.
func Scan(ctx context.Context, opts ScanOptions) (*ScanResult, error) {
	s := &scanner{
		collector:  collector.New(),
		decoder:    opts.Decoder,
		onProgress: opts.OnProgress,
	}
	if s.decoder == nil {
		s.decoder = qr.NewDecoder()
	}

	var err error
	if opts.SourcePath == StdinPath {
		s.result.Format = artifacts.FormatText
		stdin := opts.Stdin
		if stdin == nil {
			stdin = os.Stdin
		}
		err = s.stream(ctx, stdin, opts.IdleTimeout)
	} else {
		err = s.scanPath(ctx, opts.SourcePath)
	}
	if err != nil && !errors.Is(err, errScanComplete) {
		return nil, err
	}

	if s.result.Blob != "" {
		return &s.result, nil
	}
	return nil, s.incomplete()
}

var errScanComplete = errors.New("scan complete")

type scanner struct {
	collector  *collector.Collector
	decoder    qr.ImageDecoder
	onProgress func(collector.Progress)

	mu       sync.Mutex
	result   ScanResult
	frames   int
	mismatch error
}

func (s *scanner) scanPath(ctx context.Context, path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("%w: %s", kerrors.ErrFileNotFound, path)
	}
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	if info.IsDir() {
		return s.scanDirectory(ctx, path)
	}

	format, err := artifacts.FromPath(path)
	if err != nil {
		return err
	}
	s.result.Format = format

	switch format {
	case artifacts.FormatText:
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("opening %s: %w", path, err)
		}
		defer f.Close()
		lines, err := artifacts.ReadText(f)
		if err != nil {
			return err
		}
		for _, line := range lines {
			if err := ctx.Err(); err != nil {
				return err
			}
			s.count()
			if err := s.consume(line); err != nil {
				return err
			}
		}
		return nil

	case artifacts.FormatZip:
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("opening %s: %w", path, err)
		}
		defer f.Close()
		entries, err := artifacts.ReadArchive(f, info.Size())
		if err != nil {
			return err
		}
		loaders := make([]func() ([]image.Image, error), len(entries))
		for i, e := range entries {
			e := e
			loaders[i] = func() ([]image.Image, error) {
				img, _, err := image.Decode(bytes.NewReader(e.Data))
				if err != nil {
					return nil, fmt.Errorf("decoding %s: %w", e.Name, err)
				}
				return []image.Image{img}, nil
			}
		}
		return s.scanImages(ctx, loaders)

	case artifacts.FormatGIF, artifacts.FormatPNG:
		return s.scanImages(ctx, []func() ([]image.Image, error){func() ([]image.Image, error) {
			return loadImages(path)
		}})
	}

	return fmt.Errorf("%w: %s files cannot be read back, scan the printed pages with a camera or import the images instead",
		kerrors.ErrInvalidFileType, format)
}

func (s *scanner) scanDirectory(ctx context.Context, dir string) error {
	paths, err := utils.ListFilesWithExt(dir, imageExts...)
	if err != nil {
		return fmt.Errorf("listing %s: %w", dir, err)
	}
	if len(paths) == 0 {
		return fmt.Errorf("%w: no images in %s", kerrors.ErrNoFilesFound, dir)
	}

	s.result.Format = artifacts.FormatPNG
	loaders := make([]func() ([]image.Image, error), len(paths))
	for i, p := range paths {
		p := p
		loaders[i] = func() ([]image.Image, error) { return loadImages(p) }
	}
	return s.scanImages(ctx, loaders)
}

// loadImages reads a still image, or every frame of an animated gif.
func loadImages(path string) ([]image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	if filepath.Ext(path) == ".gif" {
		return artifacts.DecodeAnimation(f)
	}
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return []image.Image{img}, nil
}

// scanImages decodes images concurrently. Files that fail to load count
// as unreadable. The first completed session cancels the remaining work.
func (s *scanner) scanImages(ctx context.Context, loaders []func() ([]image.Image, error)) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for _, load := range loaders {
		load := load
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			images, err := load()
			if err != nil {
				s.count()
				s.tally(&s.result.Unreadable)
				return nil
			}
			for _, img := range images {
				if err := ctx.Err(); err != nil {
					return err
				}
				s.count()
				text, err := s.decoder.Decode(img)
				if errors.Is(err, kerrors.ErrNoCodeFound) {
					s.tally(&s.result.Unreadable)
					continue
				}
				if err != nil {
					return err
				}
				if err := s.consume(text); err != nil {
					return err
				}
			}
			return nil
		})
	}

	return g.Wait()
}

// stream consumes one frame per line as it arrives, until a session
// completes or r is exhausted. Scanner tools that print each code they
// read can be piped straight in.
func (s *scanner) stream(ctx context.Context, r io.Reader, idle time.Duration) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)

	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		s.count()
		if err := s.consume(string(line)); err != nil {
			return err
		}
		if idle > 0 {
			s.collector.EvictIdle(idle)
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("reading frames: %w", err)
	}
	return nil
}

func (s *scanner) consume(text string) error {
	res, err := s.collector.Consume(text)

	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case errors.Is(err, kerrors.ErrMalformedFrame):
		s.result.Malformed++
		return nil
	case err != nil:
		s.mismatch = err
		return err
	case !res.Recognized:
		s.result.Ignored++
		return nil
	}

	s.frames++
	if s.onProgress != nil {
		s.onProgress(res.Progress)
	}
	if res.Complete && s.result.Blob == "" {
		s.result.SessionID = res.SessionID
		s.result.Blob = res.Blob
		return errScanComplete
	}
	return nil
}

func (s *scanner) count() {
	s.tally(&s.result.Scanned)
}

func (s *scanner) tally(n *int) {
	s.mu.Lock()
	*n++
	s.mu.Unlock()
}

// incomplete explains why no session completed.
func (s *scanner) incomplete() error {
	if s.mismatch != nil {
		return s.mismatch
	}
	if s.frames == 0 {
		return fmt.Errorf("%w: scanned %d, unreadable %d, other codes %d",
			kerrors.ErrNoCodeFound, s.result.Scanned, s.result.Unreadable, s.result.Ignored)
	}

	var best collector.Progress
	for _, p := range s.collector.Sessions() {
		if p.Captured() > best.Captured() {
			best = p
		}
	}
	if best.SessionID == "" {
		return kerrors.ErrIncompleteTransfer
	}
	if !best.HeaderSeen {
		return fmt.Errorf("%w: session %s has %s, the header code is missing",
			kerrors.ErrIncompleteTransfer, best.SessionID, best)
	}
	return fmt.Errorf("%w: session %s has %s", kerrors.ErrIncompleteTransfer, best.SessionID, best)
}
