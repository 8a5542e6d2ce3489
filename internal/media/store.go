package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Store persists image bytes and maps them to retrievable URLs.
// Delete accepts the public URL previously returned by Save; URLs a store
// does not own are ignored, so stale or external links never fail a request.
type Store interface {
	Save(ctx context.Context, name string, data []byte) (string, error)
	Delete(ctx context.Context, fileURL string) error
}

// LocalStore writes images under a public directory served as static files.
type LocalStore struct {
	dir     string
	baseURL string
}

// NewLocalStore creates a disk-backed store. Files land in dir and are
// addressed as <baseURL>/images/<name>.
func NewLocalStore(dir, baseURL string) *LocalStore {
	return &LocalStore{
		dir:     dir,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

func (s *LocalStore) Save(_ context.Context, name string, data []byte) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create image directory: %w", err)
	}
	path := filepath.Join(s.dir, filepath.Base(name))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image file: %w", err)
	}
	return s.baseURL + "/images/" + filepath.Base(name), nil
}

func (s *LocalStore) Delete(_ context.Context, fileURL string) error {
	prefix := s.baseURL + "/images/"
	if !strings.HasPrefix(fileURL, prefix) {
		return nil
	}
	name := filepath.Base(strings.TrimPrefix(fileURL, prefix))
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete image file: %w", err)
	}
	return nil
}
