package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/mresitgokce1/inventory-multi-brand-api/internal/storage"
)

// Storage implements storage.Storage using an in-memory map. It holds the
// full file bytes so tests can round-trip saved content.
type Storage struct {
	mu      sync.RWMutex
	files   map[string][]byte
	baseURL string
}

// New creates a new in-memory storage instance.
func New(baseURL string) *Storage {
	return &Storage{
		files:   make(map[string][]byte),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Save stores the file bytes in memory.
func (s *Storage) Save(_ context.Context, input *storage.SaveInput) (*storage.SaveResult, error) {
	if !storage.ValidKey(input.Key) {
		return nil, fmt.Errorf("invalid storage key %q", input.Key)
	}

	data, err := io.ReadAll(input.Data)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	s.mu.Lock()
	s.files[input.Key] = data
	s.mu.Unlock()

	return &storage.SaveResult{
		Key: input.Key,
		URL: s.URL(input.Key),
	}, nil
}

// Open returns a reader over the stored bytes.
func (s *Storage) Open(_ context.Context, key string) (io.ReadCloser, error) {
	s.mu.RLock()
	data, exists := s.files[key]
	s.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("file not found: %s", key)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Delete removes the stored file. A missing key is not an error.
func (s *Storage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.files, key)
	s.mu.Unlock()
	return nil
}

// URL returns the URL for the given key.
func (s *Storage) URL(key string) string {
	return s.baseURL + "/" + key
}

// Len reports the number of stored files.
func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.files)
}
