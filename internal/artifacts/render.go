package artifacts

import (
	"context"
	"image"
	"runtime"

	"github.com/PolarWolf314/tact/internal/qr"
	"golang.org/x/sync/errgroup"
)

// renderAll applies fn to every text concurrently and returns the results
// in input order. The first error cancels the remaining work.
func renderAll[T any](ctx context.Context, texts []string, fn func(string) (T, error)) ([]T, error) {
	out := make([]T, len(texts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, text := range texts {
		i, text := i, text
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			v, err := fn(text)
			if err != nil {
				return err
			}
			out[i] = v
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// RenderImages encodes every frame text as a code image.
func RenderImages(ctx context.Context, enc qr.ImageEncoder, texts []string) ([]image.Image, error) {
	return renderAll(ctx, texts, enc.Image)
}

// RenderPNGs encodes every frame text as PNG bytes.
func RenderPNGs(ctx context.Context, enc qr.ImageEncoder, texts []string) ([][]byte, error) {
	return renderAll(ctx, texts, enc.PNG)
}
