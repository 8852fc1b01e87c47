package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidKey(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want bool
	}{
		{"simple", "products/abc.jpg", true},
		{"nested", "products/small/abc_small.jpg", true},
		{"single segment", "abc.jpg", true},
		{"empty", "", false},
		{"absolute", "/etc/passwd", false},
		{"traversal", "products/../../etc/passwd", false},
		{"dot segment", "products/./abc.jpg", false},
		{"double slash", "products//abc.jpg", false},
		{"backslash", `products\abc.jpg`, false},
		{"trailing slash", "products/", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidKey(tt.key))
		})
	}
}
