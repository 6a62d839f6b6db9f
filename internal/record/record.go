// Package record builds FileRecords, the sole I/O boundary between the
// filesystem and the extractor registry.
package record

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/beaconfind/beaconfind/internal/digest"
)

// FileRecord is the transient unit of work produced by the walker/watcher
// and consumed by the extractor registry and document maintainer.
type FileRecord struct {
	Path   string
	Digest string
	Bytes  []byte
}

// New reads path fully into memory and computes its digest.
func New(path string) (*FileRecord, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", path, err)
	}
	sum, err := digest.Sum(bytes)
	if err != nil {
		return nil, fmt.Errorf("digest %q: %w", path, err)
	}
	return &FileRecord{Path: path, Digest: sum, Bytes: bytes}, nil
}

// Extension returns the lowercase file extension without the leading dot,
// or "" if path has none.
func Extension(path string) string {
	ext := filepath.Ext(path)
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsHidden reports whether the basename of path begins with a dot.
func IsHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
