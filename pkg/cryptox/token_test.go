package cryptox

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	tests := []struct {
		name string
		size int
		want int // encoded length
	}{
		{"128-bit token", TokenSize128, 22},
		{"256-bit token", TokenSize256, 43},
		{"custom size", 24, 32},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := GenerateToken(tt.size)
			require.NoError(t, err)
			require.Len(t, token, tt.want)

			raw, err := base64.RawURLEncoding.DecodeString(token)
			require.NoError(t, err)
			require.Len(t, raw, tt.size)

			token2, err := GenerateToken(tt.size)
			require.NoError(t, err)
			require.NotEqual(t, token, token2, "tokens should be unique")
		})
	}
}

func TestGenerateToken_InvalidSize(t *testing.T) {
	for _, size := range []int{0, -1} {
		token, err := GenerateToken(size)
		require.Error(t, err)
		require.Empty(t, token)
	}
}

func TestMustGenerateToken_Panics(t *testing.T) {
	require.NotEmpty(t, MustGenerateToken(TokenSize128))
	require.Panics(t, func() {
		MustGenerateToken(0)
	})
}

func TestHashingWriter(t *testing.T) {
	payload := strings.Repeat("habit tracker ", 1000)

	var dst bytes.Buffer
	hw := NewHashingWriter(&dst)
	n, err := io.Copy(hw, strings.NewReader(payload))
	require.NoError(t, err)

	sum := sha256.Sum256([]byte(payload))
	require.Equal(t, hex.EncodeToString(sum[:]), hw.Sum())
	require.Equal(t, int64(len(payload)), n)
	require.Equal(t, n, hw.Written())
	require.Equal(t, payload, dst.String())
}

func TestHashingWriter_Empty(t *testing.T) {
	hw := NewHashingWriter(io.Discard)
	require.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", hw.Sum())
	require.Zero(t, hw.Written())
}
