package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
)

// Token sizes in bytes before encoding.
const (
	TokenSize128 = 16 // anonymous forum identifiers
	TokenSize256 = 32 // signing secrets
)

// GenerateToken returns size random bytes encoded as unpadded base64url.
func GenerateToken(size int) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("token size must be positive, got %d", size)
	}

	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// MustGenerateToken is GenerateToken for start-up paths where a failing
// random source is unrecoverable.
func MustGenerateToken(size int) string {
	token, err := GenerateToken(size)
	if err != nil {
		panic(fmt.Sprintf("cryptox: %v", err))
	}
	return token
}

// HashingWriter wraps w and computes the SHA-256 of everything written
// through it. Uploads are hashed while they are copied to disk so the file is
// only read once.
type HashingWriter struct {
	w io.Writer
	h hash.Hash
	n int64
}

// NewHashingWriter returns a HashingWriter writing to w.
func NewHashingWriter(w io.Writer) *HashingWriter {
	return &HashingWriter{w: w, h: sha256.New()}
}

func (hw *HashingWriter) Write(p []byte) (int, error) {
	n, err := hw.w.Write(p)
	_, _ = hw.h.Write(p[:n])
	hw.n += int64(n)
	return n, err
}

// Sum returns the lowercase hex SHA-256 of the bytes written so far.
func (hw *HashingWriter) Sum() string {
	return hex.EncodeToString(hw.h.Sum(nil))
}

// Written returns the number of bytes written so far.
func (hw *HashingWriter) Written() int64 { return hw.n }
