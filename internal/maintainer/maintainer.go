// Package maintainer implements the invariant-preserving core of the
// indexing pipeline: on_observe and on_remove, the only two operations
// that mutate the index.
package maintainer

import (
	"context"
	"fmt"
	"sync"

	"github.com/beaconfind/beaconfind/internal/codec"
	"github.com/beaconfind/beaconfind/internal/extract"
	"github.com/beaconfind/beaconfind/internal/keyword"
	"github.com/beaconfind/beaconfind/internal/record"
	"go.uber.org/zap"
)

// Maintainer drives the index through Observe/Remove while preserving:
// one document per content hash, multi-location tracking, and at most
// one live document per path. Each public method's lookup-then-mutate
// sequence spans multiple Index calls that are individually but not
// jointly atomic, so mu serializes Observe/Remove/Commit against each
// other — the watcher dispatches reconciliation for distinct paths as
// independent goroutines (one per debounce timer), and two of them
// racing on the same content hash would otherwise both see "no existing
// document" and stage conflicting adds.
type Maintainer struct {
	index    *keyword.Index
	registry *extract.Registry
	logger   *zap.Logger
	mu       sync.Mutex
}

// New builds a Maintainer over an already-open index and extractor registry.
func New(index *keyword.Index, registry *extract.Registry, logger *zap.Logger) *Maintainer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Maintainer{index: index, registry: registry, logger: logger}
}

// Observe handles a file creation or modification. It is used by both the
// initial walker and the watcher's create/modify path. The CPU-bound
// extraction work (m.registry.Analyse, which dispatches onto its own
// worker pool) deliberately runs outside mu: holding the index lock for
// that long would serialize every concurrently-reconciled file onto a
// single goroutine daemon-wide, defeating the extractor pool. The lookup
// is therefore repeated once extraction completes, under lock, so a
// hash that another goroutine added in the meantime is still merged
// correctly instead of producing a duplicate document.
func (m *Maintainer) Observe(ctx context.Context, rec *record.FileRecord) error {
	location, err := codec.Encode(rec.Path)
	if err != nil {
		return fmt.Errorf("encode location for %s: %w", rec.Path, err)
	}

	m.mu.Lock()
	_, existing, ok, err := m.index.LookupByHash(rec.Digest)
	if err != nil {
		m.mu.Unlock()
		m.fatalOnCollision(err)
		return fmt.Errorf("lookup by hash %s: %w", rec.Digest, err)
	}
	if ok {
		err := m.observeKnownHash(existing, rec.Digest, location)
		m.mu.Unlock()
		return err
	}
	m.mu.Unlock()

	fields := m.registry.Analyse(ctx, rec)
	if len(fields) == 0 {
		m.logger.Debug("no extractor produced fields, skipping", zap.String("path", rec.Path))
		return nil
	}

	doc := keyword.Document{
		Title:     fields[0].Title,
		Hash:      rec.Digest,
		Locations: []string{location},
	}
	for i, f := range fields {
		if i > 0 {
			doc.Body += " "
		}
		doc.Body += f.Body
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	_, existing, ok, err = m.index.LookupByHash(rec.Digest)
	if err != nil {
		m.fatalOnCollision(err)
		return fmt.Errorf("lookup by hash %s: %w", rec.Digest, err)
	}
	if ok {
		return m.observeKnownHash(existing, rec.Digest, location)
	}
	if err := m.index.Add(doc); err != nil {
		return fmt.Errorf("add document for %s: %w", rec.Path, err)
	}
	return nil
}

func (m *Maintainer) observeKnownHash(existing keyword.Document, hash, location string) error {
	for _, loc := range existing.Locations {
		if loc == location {
			return nil // already tracked
		}
	}

	updated := existing
	updated.Locations = append(append([]string{}, existing.Locations...), location)

	if err := m.index.DeleteByHash(hash); err != nil {
		return fmt.Errorf("delete stale document for hash %s: %w", hash, err)
	}
	if err := m.index.Add(updated); err != nil {
		return fmt.Errorf("re-add document with new location for hash %s: %w", hash, err)
	}
	return nil
}

// Remove handles a file deletion or the source side of a rename. It is
// used by the watcher's delete/rename-from path.
func (m *Maintainer) Remove(ctx context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	location, err := codec.EncodeBestEffort(path)
	if err != nil {
		return fmt.Errorf("encode location for %s: %w", path, err)
	}

	_, doc, ok, err := m.index.LookupByLocation(location)
	if err != nil {
		m.fatalOnCollision(err)
		return fmt.Errorf("lookup by location %s: %w", location, err)
	}
	if !ok {
		return nil
	}

	if len(doc.Locations) >= 2 {
		rebuilt := doc
		rebuilt.Locations = removeLocation(doc.Locations, location)
		if err := m.index.DeleteByLocation(location); err != nil {
			return fmt.Errorf("delete-by-location during rebuild for %s: %w", path, err)
		}
		if err := m.index.Add(rebuilt); err != nil {
			return fmt.Errorf("re-add rebuilt document for %s: %w", path, err)
		}
		return nil
	}

	if err := m.index.DeleteByLocation(location); err != nil {
		return fmt.Errorf("delete-by-location for %s: %w", path, err)
	}
	return nil
}

// Commit makes every Observe/Remove call since the last Commit visible to
// searchers. Callers (the walker, the watcher) decide the cadence.
func (m *Maintainer) Commit() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.index.Commit()
}

// fatalOnCollision terminates the daemon with a diagnostic when C6
// reports more than one document sharing a hash or location. The
// invariants this maintainer preserves make this unreachable in correct
// operation, so its appearance means the index itself is corrupt.
func (m *Maintainer) fatalOnCollision(err error) {
	if _, ok := err.(*keyword.CollisionError); ok {
		m.logger.Fatal("structural invariant violated", zap.Error(err))
	}
}

func removeLocation(locations []string, target string) []string {
	out := make([]string, 0, len(locations)-1)
	for _, l := range locations {
		if l != target {
			out = append(out, l)
		}
	}
	return out
}
