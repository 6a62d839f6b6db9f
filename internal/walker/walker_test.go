package walker

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/beaconfind/beaconfind/internal/extract"
	"github.com/beaconfind/beaconfind/internal/keyword"
	"github.com/beaconfind/beaconfind/internal/maintainer"
	"go.uber.org/zap"
)

func setup(t *testing.T) (root string, idx *keyword.Index, m *maintainer.Maintainer) {
	t.Helper()
	root = t.TempDir()
	idx, err := keyword.Open(filepath.Join(t.TempDir(), "bleve"))
	if err != nil {
		t.Fatalf("keyword.Open: %v", err)
	}
	t.Cleanup(func() { _ = idx.Close() })

	reg := extract.NewRegistry(zap.NewNop(), extract.NewTextExtractor())
	m = maintainer.New(idx, reg, zap.NewNop())
	return root, idx, m
}

func TestRunIndexesSupportedFilesAndSkipsOthers(t *testing.T) {
	root, idx, m := setup(t)

	if err := os.WriteFile(filepath.Join(root, "keep.txt"), []byte("indexed content"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "skip.bin"), []byte("binary"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(root, ".hidden"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, ".hidden", "secret.txt"), []byte("hidden"), 0600); err != nil {
		t.Fatal(err)
	}

	w := New([]string{root}, []string{"txt"}, m, idx, filepath.Join(t.TempDir(), "sentinel"), zap.NewNop())
	if err := w.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	results, err := idx.Search("indexed")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result for indexed content, got %d", len(results))
	}

	results, err = idx.Search("hidden")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected hidden file to be skipped, got %d results", len(results))
	}
}

func TestRunSkipsWhenSentinelAlreadyExists(t *testing.T) {
	root, idx, m := setup(t)
	sentinel := filepath.Join(t.TempDir(), "sentinel")
	if err := os.WriteFile(sentinel, []byte{}, 0644); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(filepath.Join(root, "a.txt"), []byte("should not be indexed"), 0600); err != nil {
		t.Fatal(err)
	}

	w := New([]string{root}, []string{"txt"}, m, idx, sentinel, zap.NewNop())
	if err := w.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	results, err := idx.Search("indexed")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected walk to be skipped, got %d results", len(results))
	}
}
