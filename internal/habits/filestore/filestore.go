// Package filestore keeps uploaded files on local disk, one directory per
// user: <root>/<userID>/<filename>.
package filestore

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aussiebroadwan/habits/pkg/cryptox"
	"github.com/aussiebroadwan/habits/pkg/idx"
)

var (
	ErrInvalidFilename = errors.New("filestore: invalid filename")
	ErrInvalidUserID   = errors.New("filestore: invalid user id")
	ErrTooLarge        = errors.New("filestore: file too large")
)

const tempPrefix = ".upload-"

type Store struct {
	root string
}

// Saved describes a file written by Save.
type Saved struct {
	Path string
	Hash string // hex sha-256
	Size int64
}

// Entry is a file found by Scan.
type Entry struct {
	UserID   string
	Filename string
	Path     string
	ModTime  time.Time
}

// New creates root if needed.
func New(root string) (*Store, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve upload dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o750); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{root: abs}, nil
}

func (s *Store) Root() string { return s.root }

// Path returns where userID's filename lives. Inputs are not validated; use
// CleanFilename first for anything that came off the wire.
func (s *Store) Path(userID, filename string) string {
	return filepath.Join(s.root, userID, filename)
}

// CleanFilename reduces a client supplied name to a bare base name and
// rejects anything that could escape the user directory or collide with
// in-flight temp files.
func CleanFilename(name string) (string, error) {
	name = strings.TrimSpace(strings.ReplaceAll(name, `\`, "/"))
	base := path.Base(name)
	switch {
	case name == "", base == ".", base == "..", base == "/":
		return "", ErrInvalidFilename
	case strings.HasPrefix(base, "."):
		return "", ErrInvalidFilename
	case strings.ContainsRune(base, 0):
		return "", ErrInvalidFilename
	}
	return base, nil
}

// Save streams r into userID's directory as filename, hashing while it
// writes. Content lands in a temp file first and is renamed into place, so
// readers never observe a partial file. A maxBytes of zero means unlimited.
func (s *Store) Save(userID, filename string, r io.Reader, maxBytes int64) (Saved, error) {
	if !idx.Valid(userID) {
		return Saved{}, ErrInvalidUserID
	}
	clean, err := CleanFilename(filename)
	if err != nil {
		return Saved{}, err
	}

	dir := filepath.Join(s.root, userID)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return Saved{}, fmt.Errorf("create user dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, tempPrefix+"*")
	if err != nil {
		return Saved{}, fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		// Already renamed on success.
		_ = os.Remove(tmpName)
	}()

	src := r
	if maxBytes > 0 {
		src = io.LimitReader(r, maxBytes+1)
	}

	hw := cryptox.NewHashingWriter(tmp)
	if _, err := io.Copy(hw, src); err != nil {
		_ = tmp.Close()
		return Saved{}, fmt.Errorf("write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return Saved{}, fmt.Errorf("close file: %w", err)
	}
	if maxBytes > 0 && hw.Written() > maxBytes {
		return Saved{}, ErrTooLarge
	}

	dst := filepath.Join(dir, clean)
	if err := os.Rename(tmpName, dst); err != nil {
		return Saved{}, fmt.Errorf("move file into place: %w", err)
	}

	return Saved{Path: dst, Hash: hw.Sum(), Size: hw.Written()}, nil
}

// Remove deletes userID's filename. A missing file is not an error.
func (s *Store) Remove(userID, filename string) error {
	err := os.Remove(s.Path(userID, filename))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// RemovePath deletes a path previously returned by Scan.
func (s *Store) RemovePath(p string) error {
	err := os.Remove(p)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Scan lists every regular file one level below each user directory.
// Unreadable user directories are reported in the joined error while the
// rest of the tree is still returned. In-flight temp files are skipped.
func (s *Store) Scan() ([]Entry, error) {
	dirs, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("read upload dir: %w", err)
	}

	var (
		entries []Entry
		errs    []error
	)
	for _, d := range dirs {
		if !d.IsDir() {
			continue
		}
		userDir := filepath.Join(s.root, d.Name())
		files, err := os.ReadDir(userDir)
		if err != nil {
			errs = append(errs, fmt.Errorf("read %s: %w", userDir, err))
			continue
		}
		for _, f := range files {
			if !f.Type().IsRegular() || strings.HasPrefix(f.Name(), tempPrefix) {
				continue
			}
			info, err := f.Info()
			if err != nil {
				// Removed since ReadDir.
				if !errors.Is(err, fs.ErrNotExist) {
					errs = append(errs, err)
				}
				continue
			}
			entries = append(entries, Entry{
				UserID:   d.Name(),
				Filename: f.Name(),
				Path:     filepath.Join(userDir, f.Name()),
				ModTime:  info.ModTime(),
			})
		}
	}
	return entries, errors.Join(errs...)
}
