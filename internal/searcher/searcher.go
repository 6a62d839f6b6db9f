// Package searcher projects a raw query string onto the full-text index
// and back into {title, locations, body} results for the external query
// layer, per spec.md's C10 contract.
package searcher

import (
	"go.uber.org/zap"

	"github.com/beaconfind/beaconfind/internal/codec"
	"github.com/beaconfind/beaconfind/internal/keyword"
)

// Result is one projected hit: the decoded filesystem locations replace
// the index's opaque location tokens. JSON tags match spec.md §6's wire
// shape exactly, including the singular "location" key.
type Result struct {
	Title     string   `json:"title"`
	Locations []string `json:"location"`
	Body      string   `json:"body"`
}

// Searcher wraps a keyword.Index for read-only querying. It holds no
// writer state; the index writer belongs exclusively to the watcher/walker
// lane (spec.md §5).
type Searcher struct {
	index  *keyword.Index
	logger *zap.Logger
}

// New builds a Searcher over an already-open index.
func New(index *keyword.Index, logger *zap.Logger) *Searcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Searcher{index: index, logger: logger}
}

// Search parses query against the title/body fields and returns up to
// the index's top-K scoring documents, projected to {title, locations,
// body}. A query the underlying index cannot parse or execute is logged
// and treated as zero results rather than propagated, per spec.md §4.9
// step 1 ("syntax errors become an empty result set plus a log entry").
func (s *Searcher) Search(query string) []Result {
	hits, err := s.index.Search(query)
	if err != nil {
		s.logger.Info("search query failed", zap.String("query", query), zap.Error(err))
		return []Result{}
	}

	out := make([]Result, 0, len(hits))
	for _, hit := range hits {
		locations := make([]string, 0, len(hit.Doc.Locations))
		for _, token := range hit.Doc.Locations {
			locations = append(locations, codec.Decode(token))
		}
		out = append(out, Result{
			Title:     hit.Doc.Title,
			Locations: locations,
			Body:      hit.Doc.Body,
		})
	}
	return out
}
