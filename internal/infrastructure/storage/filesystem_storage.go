package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/erp/erpsync/internal/domain/integration"
	"github.com/spf13/afero"
)

var _ integration.BinaryStore = (*FilesystemStorage)(nil)

// FilesystemStorage implements BinaryStore on an afero filesystem rooted at a
// directory. Production uses the OS filesystem; tests use an in-memory one.
type FilesystemStorage struct {
	fs afero.Fs
}

// NewFilesystemStorage stores files below root on the OS filesystem
func NewFilesystemStorage(root string) (*FilesystemStorage, error) {
	if root == "" {
		return nil, errors.New("storage root directory is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage root: %w", err)
	}
	return NewFilesystemStorageOn(afero.NewBasePathFs(afero.NewOsFs(), root)), nil
}

// NewFilesystemStorageOn stores files on fs
func NewFilesystemStorageOn(fs afero.Fs) *FilesystemStorage {
	return &FilesystemStorage{fs: fs}
}

// Put writes data to key and returns key. Keys are slash separated and may not
// escape the storage root.
func (s *FilesystemStorage) Put(_ context.Context, key string, data []byte, _ string) (string, error) {
	clean := path.Clean("/" + key)
	if key == "" || strings.HasSuffix(key, "/") || clean == "/" {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	name := strings.TrimPrefix(clean, "/")
	if err := s.fs.MkdirAll(path.Dir(clean), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory for %s: %w", name, err)
	}
	if err := afero.WriteFile(s.fs, clean, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", name, err)
	}
	return name, nil
}

// Exists reports whether key has been written
func (s *FilesystemStorage) Exists(key string) (bool, error) {
	return afero.Exists(s.fs, path.Clean("/"+key))
}

// Read returns the content stored under key
func (s *FilesystemStorage) Read(key string) ([]byte, error) {
	return afero.ReadFile(s.fs, path.Clean("/"+key))
}
