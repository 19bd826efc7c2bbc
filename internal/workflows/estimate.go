package workflows

import (
	"context"
	"time"

	"github.com/PolarWolf314/tact/internal/artifacts"
	"github.com/PolarWolf314/tact/internal/cipher"
	"github.com/PolarWolf314/tact/internal/configs"
	"github.com/PolarWolf314/tact/internal/frames"
	"github.com/PolarWolf314/tact/internal/packager"
)

// EstimateOptions configures the estimate workflow.
type EstimateOptions struct {
	// Capacity overrides the configured frame capacity when positive.
	Capacity int

	// Config overrides config.toml. Nil loads it.
	Config *configs.Config
}

// EstimateResult describes what an export would produce right now.
type EstimateResult struct {
	packager.Size

	// Options are the frame options the estimate used.
	Options frames.Options

	// FrameCount is the number of QR codes including the header.
	FrameCount int

	// Format is the container auto would pick.
	Format artifacts.Format
}

// Estimate reports the blob size and QR code count of exporting the local
// profile, without deriving a key or writing anything.
func Estimate(ctx context.Context, opts EstimateOptions) (*EstimateResult, error) {
	cfg, err := loadConfig(opts.Config)
	if err != nil {
		return nil, err
	}

	frameOpts := cfg.FrameOptions()
	if opts.Capacity > 0 {
		frameOpts.Capacity = opts.Capacity
	}
	if err := frameOpts.Validate(); err != nil {
		return nil, err
	}

	b, err := localBundle(ctx, time.Now())
	if err != nil {
		return nil, err
	}

	size, err := packager.New(cipher.Default()).Measure(b)
	if err != nil {
		return nil, err
	}

	count := frames.Count(size.Encoded, frameOpts)
	return &EstimateResult{
		Size:       size,
		Options:    frameOpts,
		FrameCount: count,
		Format:     artifacts.FormatAuto.Resolve(count),
	}, nil
}
