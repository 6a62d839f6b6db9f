// Package walker performs the one-shot recursive scan of the configured
// roots on first start, gated by a sentinel file so subsequent daemon
// starts rely on the watcher alone.
package walker

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/beaconfind/beaconfind/internal/keyword"
	"github.com/beaconfind/beaconfind/internal/maintainer"
	"github.com/beaconfind/beaconfind/internal/record"
	"go.uber.org/zap"
)

// Walker performs the initial recursive walk of a set of root directories.
type Walker struct {
	roots        []string
	extensions   map[string]struct{}
	maintainer   *maintainer.Maintainer
	index        *keyword.Index
	sentinelPath string
	logger       *zap.Logger
}

// New builds a Walker. extensions is the registry's supported-extension
// set (without leading dots); sentinelPath names a file whose presence
// means the walk has already run.
func New(roots []string, extensions []string, m *maintainer.Maintainer, index *keyword.Index, sentinelPath string, logger *zap.Logger) *Walker {
	if logger == nil {
		logger = zap.NewNop()
	}
	set := make(map[string]struct{}, len(extensions))
	for _, e := range extensions {
		set[e] = struct{}{}
	}
	return &Walker{roots: roots, extensions: set, maintainer: m, index: index, sentinelPath: sentinelPath, logger: logger}
}

// AlreadyRan reports whether the sentinel file is already present.
func (w *Walker) AlreadyRan() bool {
	_, err := os.Stat(w.sentinelPath)
	return err == nil
}

// Run walks every configured root depth-first, feeding each eligible
// entry to the maintainer's Observe, and writes the sentinel on success.
// If the sentinel already exists, Run does nothing.
func (w *Walker) Run(ctx context.Context) error {
	if w.AlreadyRan() {
		w.logger.Info("initial walk already done, skipping")
		return nil
	}

	for _, root := range w.roots {
		if err := w.walkRoot(ctx, root); err != nil {
			return fmt.Errorf("walk root %s: %w", root, err)
		}
		if err := w.index.Commit(); err != nil {
			return fmt.Errorf("commit after walking root %s: %w", root, err)
		}
	}

	if err := w.index.Commit(); err != nil {
		return fmt.Errorf("commit before writing sentinel: %w", err)
	}
	if err := os.WriteFile(w.sentinelPath, []byte{}, 0644); err != nil {
		return fmt.Errorf("write sentinel: %w", err)
	}
	return nil
}

func (w *Walker) walkRoot(ctx context.Context, root string) error {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			w.logger.Warn("walk entry failed", zap.String("path", path), zap.Error(err))
			return nil
		}
		if isHidden(d.Name()) {
			if d.IsDir() && path != root {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		ext := record.Extension(path)
		if len(w.extensions) > 0 {
			if _, ok := w.extensions[ext]; !ok {
				return nil
			}
		}

		rec, err := record.New(path)
		if err != nil {
			w.logger.Warn("read file failed", zap.String("path", path), zap.Error(err))
			return nil
		}
		if err := w.maintainer.Observe(ctx, rec); err != nil {
			w.logger.Warn("observe failed", zap.String("path", path), zap.Error(err))
		}
		return nil
	})
	if err != nil {
		return err
	}
	return nil
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
