package cipher

import (
	"crypto/aes"
	gocipher "crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"

	kerrors "github.com/PolarWolf314/tact/internal/errors"
	"golang.org/x/crypto/pbkdf2"
)

const (
	// SaltSize is the length of the random PBKDF2 salt prepended to every blob.
	SaltSize = 16

	// NonceSize is the length of the AES-GCM nonce following the salt.
	NonceSize = 12

	// KeySize is the derived key length (AES-256).
	KeySize = 32

	// TagSize is the GCM authentication tag length appended to the ciphertext.
	TagSize = 16

	// Iterations is the PBKDF2 iteration count. The blob does not record it,
	// so every device must use the same value.
	Iterations = 100000

	// Overhead is the number of bytes an encrypted blob adds to its plaintext
	// before base64 encoding.
	Overhead = SaltSize + NonceSize + TagSize
)

// Engine derives keys from passwords and seals data with AES-256-GCM.
// It holds no state across calls and is safe for concurrent use.
// The zero value is ready to use.
type Engine struct {
	rand io.Reader
}

// Default returns an Engine reading salts and nonces from crypto/rand.
func Default() *Engine {
	return &Engine{rand: rand.Reader}
}

// DeriveKey stretches password into a 256-bit key with PBKDF2-HMAC-SHA256.
// This is deliberately slow; callers on an interactive path should run it
// off the main goroutine.
func DeriveKey(password string, salt []byte, iterations int) []byte {
	return pbkdf2.Key([]byte(password), salt, iterations, KeySize, sha256.New)
}

// Encrypt seals plaintext under a key derived from password and returns
// base64(salt || nonce || ciphertext || tag). Salt and nonce are fresh for
// every call, so encrypting the same input twice gives different output.
func (e *Engine) Encrypt(plaintext []byte, password string) (string, error) {
	if password == "" {
		return "", kerrors.ErrEmptyPassword
	}

	blob := make([]byte, SaltSize+NonceSize, SaltSize+NonceSize+len(plaintext)+TagSize)
	if _, err := io.ReadFull(e.random(), blob); err != nil {
		return "", fmt.Errorf("%w: reading random salt and nonce: %v", kerrors.ErrEncryptFailed, err)
	}
	salt := blob[:SaltSize]
	nonce := blob[SaltSize : SaltSize+NonceSize]

	aead, err := newAEAD(DeriveKey(password, salt, Iterations))
	if err != nil {
		return "", fmt.Errorf("%w: %v", kerrors.ErrEncryptFailed, err)
	}

	blob = aead.Seal(blob, nonce, plaintext, nil)
	return base64.StdEncoding.EncodeToString(blob), nil
}

// Decrypt reverses Encrypt. Every failure, whether a wrong password, a
// truncated blob or bad base64, returns ErrDecryptionFailed.
func (e *Engine) Decrypt(encoded string, password string) ([]byte, error) {
	blob, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, kerrors.ErrDecryptionFailed
	}
	if len(blob) < SaltSize+NonceSize+TagSize {
		return nil, kerrors.ErrDecryptionFailed
	}

	salt := blob[:SaltSize]
	nonce := blob[SaltSize : SaltSize+NonceSize]
	body := blob[SaltSize+NonceSize:]

	aead, err := newAEAD(DeriveKey(password, salt, Iterations))
	if err != nil {
		return nil, kerrors.ErrDecryptionFailed
	}

	plaintext, err := aead.Open(nil, nonce, body, nil)
	if err != nil {
		return nil, kerrors.ErrDecryptionFailed
	}
	return plaintext, nil
}

// EncodedLen returns the length of the base64 text Encrypt produces for a
// plaintext of n bytes.
func EncodedLen(n int) int {
	return base64.StdEncoding.EncodedLen(n + Overhead)
}

func (e *Engine) random() io.Reader {
	if e == nil || e.rand == nil {
		return rand.Reader
	}
	return e.rand
}

func newAEAD(key []byte) (gocipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return gocipher.NewGCM(block)
}
