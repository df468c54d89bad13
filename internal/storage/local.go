package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore writes blobs under a directory on the local filesystem and
// serves them from a static route.
type LocalStore struct {
	dir     string
	baseURL string
}

// NewLocalStore creates a LocalStore rooted at dir. Files are addressed as
// baseURL/<key>.
func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("local storage: directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("local storage: create dir %s: %w", dir, err)
	}
	return &LocalStore{
		dir:     dir,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}, nil
}

// Dir returns the root directory blobs are written under.
func (s *LocalStore) Dir() string { return s.dir }

// Save writes the blob to disk and returns its public URL.
func (s *LocalStore) Save(_ context.Context, key string, _ string, r io.Reader) (string, error) {
	key = strings.TrimLeft(key, "/")
	if key == "" {
		return "", fmt.Errorf("local storage: empty key")
	}
	// Keys contain a user-derived segment; refuse anything that escapes dir.
	cleaned := filepath.Clean(key)
	if strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("local storage: invalid key %q", key)
	}

	path := filepath.Join(s.dir, cleaned)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("local storage: create dir for %s: %w", key, err)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("local storage: create %s: %w", key, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("local storage: write %s: %w", key, err)
	}

	if s.baseURL == "" {
		return cleaned, nil
	}
	return s.baseURL + "/" + filepath.ToSlash(cleaned), nil
}

// Remove deletes the blob at key if it exists.
func (s *LocalStore) Remove(_ context.Context, key string) error {
	cleaned := filepath.Clean(strings.TrimLeft(key, "/"))
	if strings.HasPrefix(cleaned, "..") || cleaned == "." {
		return fmt.Errorf("local storage: invalid key %q", key)
	}
	err := os.Remove(filepath.Join(s.dir, cleaned))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("local storage: remove %s: %w", key, err)
	}
	return nil
}
