package disk

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mresitgokce1/inventory-multi-brand-api/internal/storage"
)

// Storage implements storage.Storage on the local filesystem under a single
// root directory.
type Storage struct {
	root    string
	baseURL string
}

// New creates a disk storage rooted at root. Files are reachable under
// baseURL + "/" + key.
func New(root, baseURL string) (*Storage, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return &Storage{
		root:    root,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

// Save writes the file under key, creating parent directories as needed.
// The write goes to a temp file first so readers never observe a partial file.
func (s *Storage) Save(_ context.Context, input *storage.SaveInput) (*storage.SaveResult, error) {
	if !storage.ValidKey(input.Key) {
		return nil, fmt.Errorf("invalid storage key %q", input.Key)
	}

	path := s.path(input.Key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".upload-*")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}

	if _, err := io.Copy(tmp, input.Data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("store file: %w", err)
	}

	return &storage.SaveResult{
		Key: input.Key,
		URL: s.URL(input.Key),
	}, nil
}

// Open returns a reader over the stored file.
func (s *Storage) Open(_ context.Context, key string) (io.ReadCloser, error) {
	if !storage.ValidKey(key) {
		return nil, fmt.Errorf("invalid storage key %q", key)
	}

	f, err := os.Open(s.path(key))
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	return f, nil
}

// Delete removes the stored file. A missing file is not an error.
func (s *Storage) Delete(_ context.Context, key string) error {
	if !storage.ValidKey(key) {
		return fmt.Errorf("invalid storage key %q", key)
	}

	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}

// URL returns the public URL for the given key.
func (s *Storage) URL(key string) string {
	return s.baseURL + "/" + key
}

func (s *Storage) path(key string) string {
	return filepath.Join(s.root, filepath.FromSlash(key))
}
