package cryptox

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const pepperLength = 32

// LoadOrCreatePepper reads the pepper stored at path. When the file does not
// exist a new random pepper is generated and written with 0600 permissions.
//
// Losing the pepper file invalidates every stored password hash, so it should
// live on the same persistent volume as the database.
func LoadOrCreatePepper(path string) (string, error) {
	path = filepath.Clean(path)

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		pepper := strings.TrimSpace(string(data))
		if pepper == "" {
			return "", fmt.Errorf("pepper file %s is empty", path)
		}
		return pepper, nil
	case !errors.Is(err, os.ErrNotExist):
		return "", fmt.Errorf("read pepper: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return "", fmt.Errorf("create pepper dir: %w", err)
	}

	buf := make([]byte, pepperLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate pepper: %w", err)
	}
	pepper := base64.RawURLEncoding.EncodeToString(buf)

	if err := os.WriteFile(path, []byte(pepper), 0o600); err != nil {
		return "", fmt.Errorf("write pepper: %w", err)
	}
	return pepper, nil
}
