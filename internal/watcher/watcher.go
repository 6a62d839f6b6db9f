// Package watcher consumes a debounced filesystem-event stream and
// translates create/modify/remove/rename into the C7 maintainer's
// Observe/Remove operations, per the event translation table.
package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/beaconfind/beaconfind/internal/ledger"
	"github.com/beaconfind/beaconfind/internal/maintainer"
	"github.com/beaconfind/beaconfind/internal/record"
)

// DefaultDebounce is used when the caller does not override the
// quiescence window. The contract only requires "between 1 and 30
// seconds"; 10s matches the documented default.
const DefaultDebounce = 10 * time.Second

// Watcher subscribes to recursive filesystem notifications under a set of
// root directories and drives the maintainer accordingly. Rapid
// successive events for the same path are coalesced: each event resets a
// per-path timer, and only once the path goes quiet does the watcher
// reconcile it against current disk state.
type Watcher struct {
	roots           []string
	extensions      map[string]struct{}
	maintainer      *maintainer.Maintainer
	ledger          *ledger.Ledger
	debounce        time.Duration
	commitBatchSize int
	logger          *zap.Logger

	fsw *fsnotify.Watcher

	mu             sync.Mutex
	timers         map[string]*time.Timer
	watchedDirs    map[string]struct{}
	uncommittedOps int

	wg       sync.WaitGroup
	done     chan struct{}
	stopOnce sync.Once
}

// New builds a Watcher. extensions is the registry's supported-extension
// set (without leading dots, lowercase); an empty set means every
// extension matches. commitBatchSize is the number of reconciles batched
// between commits (config.Overrides.CommitBatchSize); values below 1 are
// treated as 1, committing after every reconcile.
func New(roots []string, extensions []string, m *maintainer.Maintainer, l *ledger.Ledger, debounce time.Duration, commitBatchSize int, logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if commitBatchSize < 1 {
		commitBatchSize = 1
	}
	set := make(map[string]struct{}, len(extensions))
	for _, e := range extensions {
		set[e] = struct{}{}
	}
	return &Watcher{
		roots:           roots,
		extensions:      set,
		maintainer:      m,
		ledger:          l,
		debounce:        debounce,
		commitBatchSize: commitBatchSize,
		logger:          logger,
		timers:          make(map[string]*time.Timer),
		watchedDirs:     make(map[string]struct{}),
		done:            make(chan struct{}),
	}
}

// Start begins watching the configured roots. It returns once every root
// has an initial set of watches installed; event handling continues on a
// background goroutine until ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create filesystem watcher: %w", err)
	}
	w.fsw = fsw

	for _, root := range w.roots {
		if err := w.addWatchRecursive(root); err != nil {
			_ = fsw.Close()
			return fmt.Errorf("watch root %s: %w", root, err)
		}
	}

	w.wg.Add(1)
	go w.run(ctx)
	return nil
}

// Stop cancels event handling and waits for any in-flight reconciliation
// to finish, then flushes any commit held back by commitBatchSize so
// nothing observed before shutdown is left invisible to searchers.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() { close(w.done) })
	w.wg.Wait()
	w.flushCommit()
}

func (w *Watcher) run(ctx context.Context) {
	defer w.wg.Done()
	defer w.fsw.Close()
	for {
		select {
		case <-ctx.Done():
			w.drainTimers()
			return
		case <-w.done:
			w.drainTimers()
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(ctx, ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			if err != nil {
				w.logger.Warn("watcher error", zap.Error(err))
			}
		}
	}
}

func (w *Watcher) drainTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, t := range w.timers {
		if t.Stop() {
			w.wg.Done() // the callback will never run to release its slot
		}
		delete(w.timers, path)
	}
}

// handleEvent ignores pure Chmod events (the translation table's
// "other", which is dropped) and hidden paths, and otherwise schedules a
// debounced reconciliation.
func (w *Watcher) handleEvent(ctx context.Context, ev fsnotify.Event) {
	if ev.Op&^fsnotify.Chmod == 0 {
		return
	}
	if record.IsHidden(ev.Name) {
		return
	}
	w.scheduleReconcile(ctx, ev.Name)
}

// scheduleReconcile (re)starts the per-path debounce timer. When it
// fires, reconcile inspects current disk state rather than the specific
// event that triggered it, which is what lets several rapid writes (or a
// create immediately followed by writes) collapse into one observable
// action.
func (w *Watcher) scheduleReconcile(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.timers[path]; ok {
		if t.Stop() {
			w.wg.Done() // the superseded callback will never run
		}
	}
	w.wg.Add(1)
	w.timers[path] = time.AfterFunc(w.debounce, func() {
		defer w.wg.Done()
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()
		w.reconcile(ctx, path)
	})
}

func (w *Watcher) reconcile(ctx context.Context, path string) {
	info, err := os.Stat(path)
	if err != nil {
		w.reconcileRemoved(ctx, path)
		return
	}
	if info.IsDir() {
		w.reconcileDirectory(ctx, path)
		return
	}
	w.reconcileFile(ctx, path)
}

// reconcileFile implements both `create` and `modify`: on_remove first
// detaches the location from whatever document previously owned it (a
// no-op if none did), then on_observe attaches it to the document for
// the file's current content.
func (w *Watcher) reconcileFile(ctx context.Context, path string) {
	ext := record.Extension(path)
	if len(w.extensions) > 0 {
		if _, ok := w.extensions[ext]; !ok {
			return
		}
	}

	if err := w.maintainer.Remove(ctx, path); err != nil {
		w.logger.Warn("reconcile: remove stale location failed", zap.String("path", path), zap.Error(err))
	}

	rec, err := record.New(path)
	if err != nil {
		w.logger.Warn("reconcile: read file failed", zap.String("path", path), zap.Error(err))
		return
	}
	if err := w.maintainer.Observe(ctx, rec); err != nil {
		w.logger.Warn("reconcile: observe failed", zap.String("path", path), zap.Error(err))
	}
	if w.ledger != nil {
		if err := w.ledger.Observe(ctx, path, rec.Digest); err != nil {
			w.logger.Warn("reconcile: ledger observe failed", zap.String("path", path), zap.Error(err))
		}
	}
	w.commit()
}

// reconcileDirectory implements the "create, and it turned out to be a
// directory" branch: recurse and observe every eligible file inside it.
func (w *Watcher) reconcileDirectory(ctx context.Context, dir string) {
	if err := w.addWatchRecursive(dir); err != nil {
		w.logger.Warn("reconcile: add watch failed", zap.String("path", dir), zap.Error(err))
	}

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if record.IsHidden(path) {
			if d.IsDir() && path != dir {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		w.reconcileFile(ctx, path)
		return nil
	})
	if err != nil {
		w.logger.Warn("reconcile: walk new directory failed", zap.String("path", dir), zap.Error(err))
	}
}

// reconcileRemoved implements both `remove` and the source side of
// `rename`: the path no longer resolves on disk, so a prior directory is
// expanded into its known member paths via the ledger rather than
// re-walked.
func (w *Watcher) reconcileRemoved(ctx context.Context, path string) {
	w.mu.Lock()
	_, wasDir := w.watchedDirs[path]
	w.mu.Unlock()

	if wasDir {
		w.removeWatchRecursive(path)
		if w.ledger == nil {
			return
		}
		known, err := w.ledger.PathsUnder(ctx, path)
		if err != nil {
			w.logger.Warn("reconcile: ledger lookup failed", zap.String("path", path), zap.Error(err))
			return
		}
		for _, p := range known {
			w.removeOne(ctx, p)
		}
		w.commit()
		return
	}

	w.removeOne(ctx, path)
	w.commit()
}

func (w *Watcher) removeOne(ctx context.Context, path string) {
	if err := w.maintainer.Remove(ctx, path); err != nil {
		w.logger.Warn("reconcile: remove failed", zap.String("path", path), zap.Error(err))
	}
	if w.ledger != nil {
		if err := w.ledger.Forget(ctx, path); err != nil {
			w.logger.Warn("reconcile: ledger forget failed", zap.String("path", path), zap.Error(err))
		}
	}
}

// commit batches reconciles per commitBatchSize, so a deployment under
// heavy write load can trade a small amount of search-visibility latency
// for fewer Bleve batch commits. uncommittedOps is only cleared once
// maintainer.Commit actually succeeds; a transient failure leaves it at
// or above commitBatchSize so the very next reconcile retries the
// commit immediately instead of silently waiting for a full extra batch.
func (w *Watcher) commit() {
	w.mu.Lock()
	w.uncommittedOps++
	due := w.uncommittedOps >= w.commitBatchSize
	w.mu.Unlock()

	if !due {
		return
	}
	if err := w.maintainer.Commit(); err != nil {
		w.logger.Warn("reconcile: commit failed", zap.Error(err))
		return
	}

	w.mu.Lock()
	w.uncommittedOps = 0
	w.mu.Unlock()
}

// flushCommit commits unconditionally, regardless of commitBatchSize.
func (w *Watcher) flushCommit() {
	if err := w.maintainer.Commit(); err != nil {
		w.logger.Warn("flush commit failed", zap.Error(err))
		return
	}

	w.mu.Lock()
	w.uncommittedOps = 0
	w.mu.Unlock()
}

// addWatchRecursive registers fsnotify watches on root and every
// subdirectory beneath it, recording each in watchedDirs so a later
// removal event can be recognised as "this was a directory" even though
// the directory itself is gone by the time the event is handled.
func (w *Watcher) addWatchRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if record.IsHidden(path) && path != root {
			return fs.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			w.logger.Warn("watch add failed", zap.String("path", path), zap.Error(err))
			return nil
		}
		w.mu.Lock()
		w.watchedDirs[path] = struct{}{}
		w.mu.Unlock()
		return nil
	})
}

// removeWatchRecursive drops every watched directory at or beneath
// prefix from the tracking set. The underlying fsnotify watches for
// paths that no longer exist are cleaned up automatically by the kernel
// notification source; removeWatchRecursive only needs to forget them.
func (w *Watcher) removeWatchRecursive(prefix string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for dir := range w.watchedDirs {
		if dir == prefix || isUnder(prefix, dir) {
			_ = w.fsw.Remove(dir)
			delete(w.watchedDirs, dir)
		}
	}
}

func isUnder(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
