// Package keyword wraps a Bleve full-text index with the small algebra
// the document maintainer needs: lookup, add, and delete by hash or
// location, plus a top-K title/body search.
package keyword

import "fmt"

// Document is the indexed shape for one content-addressed file.
type Document struct {
	Title     string   `json:"title"`
	Hash      string   `json:"hash"`
	Locations []string `json:"location"`
	Body      string   `json:"body"`
}

// CollisionError reports that a hash or location lookup matched more
// than one document — a structural invariant violation.
type CollisionError struct {
	Field string // "hash" or "location"
	Value string
	IDs   []string
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("structural invariant violation: %d documents share %s=%q: %v", len(e.IDs), e.Field, e.Value, e.IDs)
}

// Result is a single search hit.
type Result struct {
	ID    string
	Score float64
	Doc   Document
}
