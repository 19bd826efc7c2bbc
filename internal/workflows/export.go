package workflows

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/PolarWolf314/tact/internal/artifacts"
	"github.com/PolarWolf314/tact/internal/audit"
	"github.com/PolarWolf314/tact/internal/bundle"
	"github.com/PolarWolf314/tact/internal/cipher"
	"github.com/PolarWolf314/tact/internal/configs"
	kerrors "github.com/PolarWolf314/tact/internal/errors"
	"github.com/PolarWolf314/tact/internal/frames"
	"github.com/PolarWolf314/tact/internal/packager"
	"github.com/PolarWolf314/tact/internal/qr"
	"github.com/PolarWolf314/tact/internal/store"
	"github.com/PolarWolf314/tact/internal/utils"
)

// StdoutPath is the output path that writes the artifact to standard output.
const StdoutPath = "-"

// ExportOptions configures the export workflow.
type ExportOptions struct {
	// Password seals the backup. Required.
	Password string

	// Format selects the artifact container. Empty uses the configured
	// format.
	Format artifacts.Format

	// OutputPath is where the artifact is written. If empty, defaults to
	// tact-<device>-<session><ext> in the current directory. StdoutPath
	// writes to Stdout.
	OutputPath string

	// Stdout receives the artifact when OutputPath is StdoutPath.
	Stdout io.Writer

	// Force overwrites an existing output file.
	Force bool

	// DisplayOnly builds the frames without writing any artifact.
	DisplayOnly bool

	// Capacity overrides the configured frame capacity when positive.
	Capacity int

	// Config overrides config.toml. Nil loads it.
	Config *configs.Config

	// Now stamps the bundle and artifact. Nil uses time.Now.
	Now func() time.Time
}

// ExportResult contains the outcome of an export operation.
type ExportResult struct {
	// Owner is the profile that was exported.
	Owner bundle.User

	// RecordsCount is the number of records in the backup.
	RecordsCount int

	// Plan holds the frames in render order.
	Plan frames.Plan

	// Format is the concrete container written.
	Format artifacts.Format

	// OutputPath is the path written, StdoutPath, or empty for DisplayOnly.
	OutputPath string

	// Size is the number of artifact bytes written.
	Size int
}

// FrameCount is the number of QR codes in the export.
func (r *ExportResult) FrameCount() int {
	return len(r.Plan.Frames())
}

// Export seals the local profile and its records into a blob, splits it
// into frames and writes them as a scannable artifact.
//
// Returns ErrEmptyPassword if no password is given.
// Returns ErrInvalidFileType if a png is requested for more than one frame.
// Returns ErrOutputExists if the output exists and Force is not set.
func Export(ctx context.Context, opts ExportOptions) (*ExportResult, error) {
	if opts.Password == "" {
		return nil, kerrors.ErrEmptyPassword
	}

	cfg, err := loadConfig(opts.Config)
	if err != nil {
		return nil, err
	}

	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	frameOpts := cfg.FrameOptions()
	if opts.Capacity > 0 {
		frameOpts.Capacity = opts.Capacity
	}
	if err := frameOpts.Validate(); err != nil {
		return nil, err
	}

	format := opts.Format
	if format == "" {
		if format, err = artifacts.ParseFormat(cfg.Transfer.Format); err != nil {
			return nil, err
		}
	}

	b, err := localBundle(ctx, now())
	if err != nil {
		return nil, err
	}

	blob, err := packager.New(cipher.Default()).Pack(b, opts.Password)
	if err != nil {
		return nil, err
	}

	plan, err := frames.Split(blob, frameOpts)
	if err != nil {
		return nil, err
	}

	result := &ExportResult{
		Owner:        b.Payload.Owner,
		RecordsCount: len(b.Payload.Records),
		Plan:         plan,
		Format:       format.Resolve(len(plan.Frames())),
	}

	if opts.DisplayOnly {
		return result, nil
	}

	data, err := renderArtifact(ctx, result.Format, plan, cfg, now())
	if err != nil {
		return nil, err
	}

	outputPath := opts.OutputPath
	if outputPath == "" {
		outputPath = fmt.Sprintf("tact-%s-%s%s", utils.DeviceName(), plan.SessionID, result.Format.Ext())
	}

	if outputPath == StdoutPath {
		if opts.Stdout == nil {
			opts.Stdout = os.Stdout
		}
		if _, err := opts.Stdout.Write(data); err != nil {
			return nil, fmt.Errorf("writing artifact: %w", err)
		}
	} else {
		if _, err := os.Stat(outputPath); err == nil && !opts.Force {
			return nil, fmt.Errorf("%w: %s", kerrors.ErrOutputExists, outputPath)
		}
		if err := utils.WriteFileAtomic(outputPath, data, 0600); err != nil {
			return nil, fmt.Errorf("writing artifact: %w", err)
		}
	}
	result.OutputPath = outputPath
	result.Size = len(data)

	audit.Log(audit.Entry{
		User:         result.Owner.ID,
		Operation:    audit.OpExport,
		SessionID:    plan.SessionID,
		FrameCount:   result.FrameCount(),
		Format:       string(result.Format),
		OutputPath:   outputPath,
		RecordsCount: result.RecordsCount,
	})

	return result, nil
}

// localBundle builds a bundle of the local profile and all of its records.
func localBundle(ctx context.Context, now time.Time) (bundle.Bundle, error) {
	var b bundle.Bundle
	err := withLocalUser(ctx, func(s *store.Store, owner bundle.User) error {
		records, err := s.ListRecords(ctx, owner.ID)
		if err != nil {
			return fmt.Errorf("listing records: %w", err)
		}
		b = bundle.New(owner, records, now)
		return nil
	})
	return b, err
}

// renderArtifact draws every frame of plan into one container.
func renderArtifact(ctx context.Context, format artifacts.Format, plan frames.Plan, cfg *configs.Config, now time.Time) ([]byte, error) {
	all := plan.Frames()
	texts := plan.Texts()
	enc := qr.NewEncoder(cfg.Transfer.ImageSize)

	var buf bytes.Buffer
	switch format {
	case artifacts.FormatText:
		if err := artifacts.WriteText(&buf, texts); err != nil {
			return nil, err
		}

	case artifacts.FormatPNG:
		if len(texts) != 1 {
			return nil, fmt.Errorf("%w: a png holds one QR code but this backup needs %d; use zip, pdf or gif",
				kerrors.ErrInvalidFileType, len(texts))
		}
		return enc.PNG(texts[0])

	case artifacts.FormatZip:
		pngs, err := artifacts.RenderPNGs(ctx, enc, texts)
		if err != nil {
			return nil, err
		}
		if err := artifacts.WriteArchive(&buf, plan.SessionID, pngs, now); err != nil {
			return nil, err
		}

	case artifacts.FormatPDF:
		pngs, err := artifacts.RenderPNGs(ctx, enc, texts)
		if err != nil {
			return nil, err
		}
		pages := make([]artifacts.Page, len(pngs))
		for i, data := range pngs {
			pages[i] = artifacts.Page{Caption: all[i].Label(), PNG: data}
		}
		if err := artifacts.WriteDocument(&buf, plan.SessionID, pages, now); err != nil {
			return nil, err
		}

	case artifacts.FormatGIF:
		images, err := artifacts.RenderImages(ctx, enc, texts)
		if err != nil {
			return nil, err
		}
		slides := make([]artifacts.Slide, len(images))
		for i, img := range images {
			slides[i] = artifacts.Slide{Caption: all[i].Label(), Image: img}
		}
		if err := artifacts.WriteAnimation(&buf, slides, cfg.FrameInterval()); err != nil {
			return nil, err
		}

	default:
		return nil, fmt.Errorf("%w: %s", kerrors.ErrInvalidFileType, format)
	}

	return buf.Bytes(), nil
}
