package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Audio artifacts are named <uuid>.mp3 / <uuid>.mid by the services, so
// anything outside this shape is rejected before touching the filesystem.
var allowedExtensions = map[string]bool{
	".mp3": true,
	".mid": true,
}

var ErrInvalidFilename = errors.New("invalid artifact filename")

// LocalStore resolves artifact filenames inside a single output directory
// and refuses anything that could escape it.
type LocalStore struct {
	dir string
}

// NewLocalStore creates the output directory if needed.
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

// Dir returns the output directory path.
func (s *LocalStore) Dir() string {
	return s.dir
}

// Resolve validates filename and returns its absolute path within the
// store. The file must already exist.
func (s *LocalStore) Resolve(filename string) (string, error) {
	if err := ValidateFilename(filename); err != nil {
		return "", err
	}
	path := filepath.Join(s.dir, filename)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("artifact not found: %s", filename)
	}
	return path, nil
}

// PathFor returns the absolute path a new artifact should be written to.
func (s *LocalStore) PathFor(filename string) (string, error) {
	if err := ValidateFilename(filename); err != nil {
		return "", err
	}
	return filepath.Join(s.dir, filename), nil
}

// Remove deletes an artifact. Missing files are not an error.
func (s *LocalStore) Remove(filename string) error {
	path, err := s.PathFor(filename)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// ValidateFilename rejects path traversal and unexpected extensions.
func ValidateFilename(filename string) error {
	if filename == "" {
		return ErrInvalidFilename
	}
	if strings.Contains(filename, "..") || strings.ContainsAny(filename, "/\\") {
		return ErrInvalidFilename
	}
	if filepath.Base(filename) != filename {
		return ErrInvalidFilename
	}
	if !allowedExtensions[strings.ToLower(filepath.Ext(filename))] {
		return ErrInvalidFilename
	}
	return nil
}
