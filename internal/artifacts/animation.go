package artifacts

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"io"
	"time"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"
	"golang.org/x/image/font/basicfont"
)

// DefaultFrameInterval is how long each code stays on screen.
const DefaultFrameInterval = 500 * time.Millisecond

// captionHeight is the strip above each code that holds its caption.
const captionHeight = 32

var animationPalette = color.Palette{
	color.White,
	color.Black,
	color.Gray{Y: 0x80},
}

// Slide is one code shown in an animation.
type Slide struct {
	Caption string
	Image   image.Image
}

// WriteAnimation writes a looping GIF showing each slide for interval.
func WriteAnimation(w io.Writer, slides []Slide, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	delay := int(interval / (10 * time.Millisecond))
	if delay < 1 {
		delay = 1
	}

	anim := &gif.GIF{
		Image: make([]*image.Paletted, len(slides)),
		Delay: make([]int, len(slides)),
	}
	for i, s := range slides {
		anim.Image[i] = captioned(s)
		anim.Delay[i] = delay
	}

	if err := gif.EncodeAll(w, anim); err != nil {
		return fmt.Errorf("writing gif: %w", err)
	}
	return nil
}

// captioned draws the slide's caption above its code and reduces the
// result to the animation palette.
func captioned(s Slide) *image.Paletted {
	b := s.Image.Bounds()
	dc := gg.NewContext(b.Dx(), b.Dy()+captionHeight)
	dc.SetColor(color.White)
	dc.Clear()
	dc.DrawImage(s.Image, 0, captionHeight)

	dc.SetFontFace(basicfont.Face7x13)
	dc.SetColor(color.Black)
	dc.DrawStringAnchored(s.Caption, float64(b.Dx())/2, captionHeight/2, 0.5, 0.5)

	src := dc.Image()
	dst := image.NewPaletted(src.Bounds(), animationPalette)
	draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Src)
	return dst
}

// DecodeAnimation returns every frame of a GIF as a standalone image.
func DecodeAnimation(r io.Reader) ([]image.Image, error) {
	anim, err := gif.DecodeAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading gif: %w", err)
	}

	bounds := image.Rect(0, 0, anim.Config.Width, anim.Config.Height)
	canvas := image.NewRGBA(bounds)
	draw.Draw(canvas, bounds, image.NewUniform(color.White), image.Point{}, draw.Src)

	out := make([]image.Image, 0, len(anim.Image))
	for _, frame := range anim.Image {
		draw.Draw(canvas, frame.Bounds(), frame, frame.Bounds().Min, draw.Over)
		snapshot := image.NewRGBA(bounds)
		draw.Draw(snapshot, bounds, canvas, image.Point{}, draw.Src)
		out = append(out, snapshot)
	}
	return out, nil
}
