package storage

import (
	"context"
	"io"
	"strings"
)

// Storage defines the interface for stored product image files. Keys are
// slash-separated relative paths such as "products/<id>.jpg".
type Storage interface {
	// Save stores a file under the given key, replacing any previous content.
	Save(ctx context.Context, input *SaveInput) (*SaveResult, error)

	// Open returns a reader over the file stored under key.
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the file stored under key. Deleting a missing key is
	// not an error.
	Delete(ctx context.Context, key string) error

	// URL returns the public URL for the given key.
	URL(key string) string
}

// SaveInput holds the parameters for saving a file.
type SaveInput struct {
	Key         string
	ContentType string
	Data        io.Reader
}

// SaveResult holds the result of a successful save.
type SaveResult struct {
	Key string
	URL string
}

// ValidKey reports whether key is safe to use as a storage path. Keys must
// be relative, slash-separated, and free of traversal segments.
func ValidKey(key string) bool {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return false
	}
	for _, part := range strings.Split(key, "/") {
		if part == "" || part == "." || part == ".." {
			return false
		}
	}
	return true
}
