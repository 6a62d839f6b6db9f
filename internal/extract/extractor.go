// Package extract holds the pluggable content-extraction registry: a set
// of per-format extractors, each offering Supports/Extensions/Extract, run
// against a single FileRecord and aggregated into ExtractedFields.
package extract

import (
	"context"
	"runtime"
	"sync"

	"github.com/beaconfind/beaconfind/internal/record"
	"go.uber.org/zap"
)

// ExtractedFields is the per-extractor result: a title and a body.
type ExtractedFields struct {
	Title string
	Body  string
}

// Extractor extracts text/tags from one file format. Extract must be pure
// with respect to the filesystem: it may only consume rec.Bytes and
// rec.Path, never re-read the file.
type Extractor interface {
	// Supports reports whether this extractor handles the given extension
	// (without leading dot, lowercase).
	Supports(ext string) bool
	// Extensions lists every extension this extractor supports.
	Extensions() []string
	// Extract turns a FileRecord into ExtractedFields.
	Extract(ctx context.Context, rec *record.FileRecord) (ExtractedFields, error)
}

// Registry holds an ordered set of extractors and dispatches FileRecords
// to every matching one. Extraction is CPU-bound, so matching extractors
// for a single file run concurrently on a bounded worker pool rather than
// sequentially in the caller's goroutine (the watcher/walker lane).
type Registry struct {
	extractors []Extractor
	logger     *zap.Logger
	sem        chan struct{}
}

// NewRegistry builds a registry from the given extractors, with a worker
// pool sized to the available hardware threads. Call SetPoolSize to
// override it from a configuration value.
func NewRegistry(logger *zap.Logger, extractors ...Extractor) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{extractors: extractors, logger: logger, sem: make(chan struct{}, runtime.NumCPU())}
}

// SetPoolSize resizes the extraction worker pool. Sizes below 1 are
// ignored, leaving the previous pool in place.
func (r *Registry) SetPoolSize(n int) {
	if n < 1 {
		return
	}
	r.sem = make(chan struct{}, n)
}

// SupportedExtensions returns the union of every extractor's extensions,
// used by the walker/watcher to pre-filter before reading a file.
func (r *Registry) SupportedExtensions() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, e := range r.extractors {
		for _, ext := range e.Extensions() {
			if _, ok := seen[ext]; ok {
				continue
			}
			seen[ext] = struct{}{}
			out = append(out, ext)
		}
	}
	return out
}

// Supports reports whether any extractor in the registry handles ext.
func (r *Registry) Supports(ext string) bool {
	for _, e := range r.extractors {
		if e.Supports(ext) {
			return true
		}
	}
	return false
}

// Analyse runs every extractor matching rec's extension on the worker
// pool and returns the fields from every extractor that succeeded, in
// registry order (so the first element comes from the earliest-registered
// matching extractor that succeeded). A single extractor failure is logged and dropped; it
// does not prevent other extractors from contributing. Analyse blocks
// until every dispatched extractor has returned, so the caller (the
// watcher/walker lane) awaits the pool rather than running extraction
// itself.
func (r *Registry) Analyse(ctx context.Context, rec *record.FileRecord) []ExtractedFields {
	ext := record.Extension(rec.Path)

	var matched []Extractor
	for _, e := range r.extractors {
		if e.Supports(ext) {
			matched = append(matched, e)
		}
	}
	if len(matched) == 0 {
		return nil
	}

	var wg sync.WaitGroup
	results := make([]*ExtractedFields, len(matched)) // one slot per extractor, nil on failure
	for i, e := range matched {
		i, e := i, e
		sem := r.sem // snapshot: SetPoolSize may swap r.sem between acquire and release
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			defer func() {
				if p := recover(); p != nil {
					r.logger.Error("extractor panicked",
						zap.String("path", rec.Path),
						zap.String("extension", ext),
						zap.Any("panic", p))
				}
			}()

			fields, err := e.Extract(ctx, rec)
			if err != nil {
				r.logger.Warn("extractor failed",
					zap.String("path", rec.Path),
					zap.String("extension", ext),
					zap.Error(err))
				return
			}
			results[i] = &fields
		}()
	}
	wg.Wait()

	var out []ExtractedFields
	for _, f := range results {
		if f != nil {
			out = append(out, *f)
		}
	}
	return out
}
