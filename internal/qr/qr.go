package qr

import (
	"fmt"
	"image"

	kerrors "github.com/PolarWolf314/tact/internal/errors"
	"github.com/makiuchi-d/gozxing"
	zxqr "github.com/makiuchi-d/gozxing/qrcode"
	qrenc "github.com/skip2/go-qrcode"
)

// DefaultSize is the edge length in pixels of rendered codes.
const DefaultSize = 400

// ImageEncoder turns frame text into a code image.
type ImageEncoder interface {
	Image(text string) (image.Image, error)
	PNG(text string) ([]byte, error)
}

// ImageDecoder extracts frame text from an image. It returns
// ErrNoCodeFound when the image holds no readable code.
type ImageDecoder interface {
	Decode(img image.Image) (string, error)
}

// Encoder renders QR codes with skip2/go-qrcode.
type Encoder struct {
	// Size is the image edge length in pixels.
	Size int
}

// NewEncoder returns an Encoder producing size x size images. A
// non-positive size selects DefaultSize.
func NewEncoder(size int) *Encoder {
	if size <= 0 {
		size = DefaultSize
	}
	return &Encoder{Size: size}
}

// Image renders text as a QR code.
func (e *Encoder) Image(text string) (image.Image, error) {
	code, err := qrenc.New(text, qrenc.Medium)
	if err != nil {
		return nil, fmt.Errorf("encoding %d chars as QR: %w", len(text), err)
	}
	return code.Image(e.Size), nil
}

// PNG renders text as a PNG-encoded QR code.
func (e *Encoder) PNG(text string) ([]byte, error) {
	code, err := qrenc.New(text, qrenc.Medium)
	if err != nil {
		return nil, fmt.Errorf("encoding %d chars as QR: %w", len(text), err)
	}
	data, err := code.PNG(e.Size)
	if err != nil {
		return nil, fmt.Errorf("writing QR png: %w", err)
	}
	return data, nil
}

// Terminal renders text as a QR code drawn with Unicode half blocks,
// suitable for scanning straight off a terminal.
func (e *Encoder) Terminal(text string) (string, error) {
	code, err := qrenc.New(text, qrenc.Medium)
	if err != nil {
		return "", fmt.Errorf("encoding %d chars as QR: %w", len(text), err)
	}
	return code.ToSmallString(false), nil
}

// Decoder reads QR codes with gozxing.
type Decoder struct {
	hints map[gozxing.DecodeHintType]interface{}
}

// NewDecoder returns a Decoder that tries hard to locate a code.
func NewDecoder() *Decoder {
	return &Decoder{
		hints: map[gozxing.DecodeHintType]interface{}{
			gozxing.DecodeHintType_TRY_HARDER: true,
		},
	}
}

// Decode returns the text of the QR code in img.
func (d *Decoder) Decode(img image.Image) (string, error) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", fmt.Errorf("%w: %v", kerrors.ErrNoCodeFound, err)
	}

	result, err := zxqr.NewQRCodeReader().Decode(bmp, d.hints)
	if err != nil {
		return "", fmt.Errorf("%w: %v", kerrors.ErrNoCodeFound, err)
	}
	return result.GetText(), nil
}
