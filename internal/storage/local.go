package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// LocalStore writes attachment files beneath one base directory. The
// database row is the authoritative record; the store only ever holds
// the bytes, so callers treat removal as best effort.
type LocalStore struct {
	dir string
}

// NewLocalStore returns a store rooted at dir.
func NewLocalStore(dir string) *LocalStore {
	return &LocalStore{dir: dir}
}

// Save streams content into a uniquely named file and returns the stored
// path plus the number of bytes written. The original file name is kept
// as a suffix so stored files stay recognizable on disk.
func (s *LocalStore) Save(fileName string, content io.Reader) (string, int64, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", 0, err
	}

	name := uuid.NewString() + "_" + sanitizeFileName(fileName)
	path := filepath.Join(s.dir, name)

	file, err := os.Create(path)
	if err != nil {
		return "", 0, err
	}

	written, err := io.Copy(file, content)
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return "", 0, err
	}
	return path, written, nil
}

// Check verifies the base directory exists and is writable enough for
// uploads, creating it on first use. The readiness probe calls this.
func (s *LocalStore) Check() error {
	if s == nil {
		return errors.New("attachment store not configured")
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}
	info, err := os.Stat(s.dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", s.dir)
	}
	return nil
}

// Remove deletes a stored file. Blank and whitespace-only paths are
// treated as "nothing stored" and succeed without touching the disk.
func (s *LocalStore) Remove(path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	return os.Remove(path)
}

func sanitizeFileName(name string) string {
	base := filepath.Base(strings.TrimSpace(name))
	if base == "." || base == string(filepath.Separator) || base == "" {
		return "upload"
	}
	return base
}
