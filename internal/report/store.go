package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// LocalStore writes artifacts under a directory on disk.
type LocalStore struct {
	dir string
}

// NewLocalStore creates dir if needed and returns a store rooted at it.
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

// Put writes data to dir/key. The content type is implied by the extension.
func (s *LocalStore) Put(_ context.Context, key string, data []byte, _ string) error {
	path := filepath.Join(s.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", key, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// Location returns where key is written.
func (s *LocalStore) Location(key string) string {
	return filepath.Join(s.dir, filepath.FromSlash(key))
}
