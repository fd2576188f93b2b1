package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// FileStore manages the temp-file area holding uploads and generated artifacts.
type FileStore struct {
	dir string
}

// NewFileStore creates a new FileStore rooted at the given directory.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Dir returns the root directory of the store.
func (s *FileStore) Dir() string {
	return s.dir
}

// SaveUpload copies src into a freshly named file in the store and returns its path.
// The extension is kept so the encoder can rely on format detection by name.
func (s *FileStore) SaveUpload(src io.Reader, ext string) (string, error) {
	path := filepath.Join(s.dir, uuid.NewString()+ext)

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(path)
		return "", fmt.Errorf("write upload file: %w", err)
	}

	if err := dst.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close upload file: %w", err)
	}

	return path, nil
}

// NewOutputPath returns a fresh unique path for an encoding artifact.
// The file is not created; the encoder owns it from start to promotion or cleanup.
func (s *FileStore) NewOutputPath() string {
	return filepath.Join(s.dir, uuid.NewString()+".mp4")
}

// Exists checks whether the file at path is present.
func (s *FileStore) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Size returns the size of the file at path in bytes.
func (s *FileStore) Size(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// Remove deletes the file at path. Missing files are not an error.
func (s *FileStore) Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
