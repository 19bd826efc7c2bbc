package packager

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"

	"github.com/PolarWolf314/tact/internal/bundle"
	"github.com/PolarWolf314/tact/internal/cipher"
	kerrors "github.com/PolarWolf314/tact/internal/errors"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
)

// MaxBundleSize caps the inflated size of an imported bundle.
const MaxBundleSize = 32 << 20

// Packager turns bundles into encrypted text blobs and back.
// It holds no per-call state and is safe for concurrent use.
type Packager struct {
	// Cipher seals blobs. Nil uses cipher.Default.
	Cipher *cipher.Engine

	// Level is the DEFLATE compression level.
	Level int
}

// New returns a Packager sealing with engine at best compression.
func New(engine *cipher.Engine) *Packager {
	if engine == nil {
		engine = cipher.Default()
	}
	return &Packager{Cipher: engine, Level: flate.BestCompression}
}

func (p *Packager) engine() *cipher.Engine {
	if p.Cipher == nil {
		return cipher.Default()
	}
	return p.Cipher
}

// Size describes the intermediate sizes of a bundle's encoding.
type Size struct {
	// Serialized is the length of the JSON form.
	Serialized int

	// Compressed is the length of the deflated JSON.
	Compressed int

	// Encoded is the exact length of the blob Pack would return.
	Encoded int

	// Records is the number of records in the payload.
	Records int
}

// Pack serialises, compresses, base64 encodes and then encrypts b.
// Compression happens before encryption because ciphertext does not compress.
func (p *Packager) Pack(b bundle.Bundle, password string) (string, error) {
	encoded, _, _, err := p.encode(b)
	if err != nil {
		return "", err
	}

	blob, err := p.engine().Encrypt([]byte(encoded), password)
	if err != nil {
		return "", fmt.Errorf("encrypting bundle: %w", err)
	}
	return blob, nil
}

// Unpack reverses Pack. A wrong password or corrupted blob returns
// ErrDecryptionFailed; a blob that decrypts but is not a valid bundle
// returns ErrInvalidBundleFormat or ErrUnsupportedFormatVersion.
func (p *Packager) Unpack(blob, password string) (bundle.Bundle, error) {
	plaintext, err := p.engine().Decrypt(blob, password)
	if err != nil {
		return bundle.Bundle{}, err
	}

	compressed, err := base64.StdEncoding.DecodeString(string(plaintext))
	if err != nil {
		return bundle.Bundle{}, fmt.Errorf("%w: payload is not base64: %v", kerrors.ErrInvalidBundleFormat, err)
	}

	serialized, err := inflate(compressed)
	if err != nil {
		return bundle.Bundle{}, fmt.Errorf("%w: %v", kerrors.ErrInvalidBundleFormat, err)
	}

	return Parse(serialized)
}

// Measure reports the sizes Pack would produce for b without encrypting it.
func (p *Packager) Measure(b bundle.Bundle) (Size, error) {
	encoded, serialized, compressed, err := p.encode(b)
	if err != nil {
		return Size{}, err
	}

	return Size{
		Serialized: serialized,
		Compressed: compressed,
		Encoded:    cipher.EncodedLen(len(encoded)),
		Records:    len(b.Payload.Records),
	}, nil
}

// Parse decodes a serialized bundle and validates it. Required sections
// must be present in the document, not merely zero-valued after decoding.
// A browser app export document is converted to a bundle.
func Parse(serialized []byte) (bundle.Bundle, error) {
	var sections map[string]json.RawMessage
	if err := json.Unmarshal(serialized, &sections); err != nil {
		return bundle.Bundle{}, fmt.Errorf("%w: %v", kerrors.ErrInvalidBundleFormat, err)
	}
	if _, ok := sections["payload"]; !ok {
		if _, ok := sections["data"]; ok {
			return parseLegacy(serialized, sections)
		}
	}
	for _, key := range []string{"formatVersion", "ownerId", "payload"} {
		raw, ok := sections[key]
		if !ok || string(raw) == "null" {
			return bundle.Bundle{}, fmt.Errorf("%w: missing %s", kerrors.ErrInvalidBundleFormat, key)
		}
	}

	var b bundle.Bundle
	if err := json.Unmarshal(serialized, &b); err != nil {
		return bundle.Bundle{}, fmt.Errorf("%w: %v", kerrors.ErrInvalidBundleFormat, err)
	}
	if err := b.Validate(); err != nil {
		return bundle.Bundle{}, err
	}
	return b, nil
}

func parseLegacy(serialized []byte, sections map[string]json.RawMessage) (bundle.Bundle, error) {
	for _, key := range []string{"version", "userId", "data"} {
		raw, ok := sections[key]
		if !ok || string(raw) == "null" {
			return bundle.Bundle{}, fmt.Errorf("%w: missing %s", kerrors.ErrInvalidBundleFormat, key)
		}
	}

	var legacy bundle.Legacy
	if err := json.Unmarshal(serialized, &legacy); err != nil {
		return bundle.Bundle{}, fmt.Errorf("%w: %v", kerrors.ErrInvalidBundleFormat, err)
	}
	b := legacy.Bundle()
	if err := b.Validate(); err != nil {
		return bundle.Bundle{}, err
	}
	return b, nil
}

// encode returns the base64 text of the compressed bundle along with the
// lengths of its JSON and compressed forms.
func (p *Packager) encode(b bundle.Bundle) (string, int, int, error) {
	if err := b.Validate(); err != nil {
		return "", 0, 0, err
	}

	serialized, err := json.Marshal(b)
	if err != nil {
		return "", 0, 0, fmt.Errorf("serializing bundle: %w", err)
	}

	compressed, err := deflate(serialized, p.Level)
	if err != nil {
		return "", 0, 0, fmt.Errorf("compressing bundle: %w", err)
	}

	return base64.StdEncoding.EncodeToString(compressed), len(serialized), len(compressed), nil
}

func deflate(data []byte, level int) ([]byte, error) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, level)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// gzipMagic starts every gzip member. A raw DEFLATE stream cannot start
// with 0x1f, whose block type bits are reserved.
var gzipMagic = []byte{0x1f, 0x8b}

// inflate decompresses raw DEFLATE, or gzip as written by the browser app.
func inflate(data []byte) ([]byte, error) {
	var r io.ReadCloser
	if bytes.HasPrefix(data, gzipMagic) {
		zr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decompressing payload: %w", err)
		}
		r = zr
	} else {
		r = flate.NewReader(bytes.NewReader(data))
	}
	defer r.Close()

	out, err := io.ReadAll(io.LimitReader(r, MaxBundleSize+1))
	if err != nil {
		return nil, fmt.Errorf("decompressing payload: %w", err)
	}
	if len(out) > MaxBundleSize {
		return nil, fmt.Errorf("decompressed payload exceeds %d bytes", MaxBundleSize)
	}
	return out, nil
}
