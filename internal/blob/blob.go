// Package blob stores confirmation images on the local filesystem.
// Uploads return opaque refs; deletes are best-effort.
package blob

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

type FileStore struct {
	dir string
}

// DefaultDir returns the default image directory.
func DefaultDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(homeDir, ".meosjourney", "images"), nil
}

func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create blob dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Upload copies the content into the store and returns its ref. The ref is
// random, not content-derived; re-uploading the same image yields a new ref.
func (s *FileStore) Upload(r io.Reader, ext string) (string, error) {
	ext = strings.TrimPrefix(strings.ToLower(ext), ".")
	if ext == "" {
		ext = "bin"
	}
	ref := uuid.NewString() + "." + ext

	f, err := os.Create(filepath.Join(s.dir, ref))
	if err != nil {
		return "", fmt.Errorf("create blob: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("write blob: %w", err)
	}
	return ref, nil
}

// UploadFile uploads an existing file, keeping its extension.
func (s *FileStore) UploadFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()
	return s.Upload(f, filepath.Ext(path))
}

func (s *FileStore) Delete(ref string) error {
	// Refs are generated by Upload; reject anything path-like.
	if ref == "" || strings.ContainsAny(ref, `/\`) {
		return fmt.Errorf("invalid blob ref: %q", ref)
	}
	if err := os.Remove(filepath.Join(s.dir, ref)); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("delete blob: %w", err)
	}
	return nil
}

func (s *FileStore) Path(ref string) string {
	return filepath.Join(s.dir, ref)
}
