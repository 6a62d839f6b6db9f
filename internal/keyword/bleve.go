package keyword

import (
	"fmt"
	"os"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
)

// searchLimit is the fixed top-K result count (§4.6 says K=10, no pagination).
const searchLimit = 10

// Index wraps a Bleve full-text index with the lookup/add/delete/commit
// algebra the document maintainer drives. Additions and deletions are
// staged in an in-memory batch and only become visible to Search when
// Commit is called. LookupByHash/LookupByLocation consult the staged
// documents first so two Adds in the same uncommitted batch (e.g. two
// identical-content files seen during one walker root) see each other,
// rather than silently overwriting the batch entry keyed by hash.
type Index struct {
	index bleve.Index

	mu          sync.Mutex
	batch       *bleve.Batch
	pending     int
	pendingDocs map[string]Document // keyed by document ID (= Document.Hash)
}

// Open creates or opens a Bleve index at path. An existing index is
// reused as-is so unchanged files are not re-indexed across restarts;
// changing the mapping requires removing the index directory.
func Open(path string) (*Index, error) {
	if _, err := os.Stat(path); err == nil {
		idx, err := bleve.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open index: %w", err)
		}
		return &Index{index: idx, batch: idx.NewBatch(), pendingDocs: make(map[string]Document)}, nil
	}

	idx, err := bleve.New(path, buildMapping())
	if err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}
	return &Index{index: idx, batch: idx.NewBatch(), pendingDocs: make(map[string]Document)}, nil
}

func buildMapping() bleve.IndexMapping {
	im := bleve.NewIndexMapping()

	textField := bleve.NewTextFieldMapping()
	textField.Analyzer = standard.Name // lowercase + tokenize, no stemming

	hashField := bleve.NewKeywordFieldMapping()
	locationField := bleve.NewKeywordFieldMapping()

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt("title", textField)
	docMapping.AddFieldMappingsAt("body", textField)
	docMapping.AddFieldMappingsAt("hash", hashField)
	docMapping.AddFieldMappingsAt("location", locationField)

	im.DefaultMapping = docMapping
	return im
}

// LookupByHash returns the unique document with hash = h, or ok=false if
// none exists. A *CollisionError is returned if more than one matches.
// A staged (not yet committed) document takes priority over the
// committed index, so an uncommitted Add is immediately visible here.
func (ix *Index) LookupByHash(h string) (id string, doc Document, ok bool, err error) {
	ix.mu.Lock()
	if d, found := ix.pendingDocs[h]; found {
		ix.mu.Unlock()
		return h, d, true, nil
	}
	ix.mu.Unlock()
	return ix.lookupByField("hash", h)
}

// LookupByLocation returns the unique document whose location list
// contains l, or ok=false if none. A *CollisionError is returned if more
// than one matches — checked across the staged documents themselves,
// not just (as lookupByField does) across the committed index, since
// Document.Hash only makes pendingDocs collision-free on hash, not on
// location. Staged documents are consulted before the committed index,
// for the same reason as LookupByHash.
func (ix *Index) LookupByLocation(l string) (id string, doc Document, ok bool, err error) {
	ix.mu.Lock()
	var matchIDs []string
	var matchDocs []Document
	for id, d := range ix.pendingDocs {
		for _, loc := range d.Locations {
			if loc == l {
				matchIDs = append(matchIDs, id)
				matchDocs = append(matchDocs, d)
				break
			}
		}
	}
	ix.mu.Unlock()

	if len(matchIDs) > 1 {
		return "", Document{}, false, &CollisionError{Field: "location", Value: l, IDs: matchIDs}
	}
	if len(matchIDs) == 1 {
		return matchIDs[0], matchDocs[0], true, nil
	}
	return ix.lookupByField("location", l)
}

func (ix *Index) lookupByField(field, value string) (id string, doc Document, ok bool, err error) {
	q := bleve.NewTermQuery(value)
	q.SetField(field)
	req := bleve.NewSearchRequest(q)
	req.Fields = []string{"title", "hash", "location", "body"}
	req.Size = 2 // only need to know if there's more than one

	results, err := ix.index.Search(req)
	if err != nil {
		return "", Document{}, false, fmt.Errorf("lookup by %s: %w", field, err)
	}
	if len(results.Hits) == 0 {
		return "", Document{}, false, nil
	}
	if len(results.Hits) > 1 {
		ids := make([]string, len(results.Hits))
		for i, h := range results.Hits {
			ids[i] = h.ID
		}
		return "", Document{}, false, &CollisionError{Field: field, Value: value, IDs: ids}
	}

	hit := results.Hits[0]
	return hit.ID, documentFromFields(hit.Fields), true, nil
}

func documentFromFields(fields map[string]interface{}) Document {
	var doc Document
	if v, ok := fields["title"].(string); ok {
		doc.Title = v
	}
	if v, ok := fields["hash"].(string); ok {
		doc.Hash = v
	}
	if v, ok := fields["body"].(string); ok {
		doc.Body = v
	}
	switch v := fields["location"].(type) {
	case string:
		doc.Locations = []string{v}
	case []interface{}:
		for _, e := range v {
			if s, ok := e.(string); ok {
				doc.Locations = append(doc.Locations, s)
			}
		}
	}
	return doc
}

// Add stages an addition, keyed by the document's content hash. Staged
// immediately (not visible to Search until Commit, but visible to
// LookupByHash/LookupByLocation right away) so that a second Add for the
// same hash, in the same uncommitted batch, is recognised as an update to
// the first rather than silently overwriting it in the batch.
func (ix *Index) Add(doc Document) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if err := ix.batch.Index(doc.Hash, doc); err != nil {
		return err
	}
	ix.pendingDocs[doc.Hash] = doc
	ix.pending++
	return nil
}

// DeleteByHash stages deletion of the document with hash = h, if any.
func (ix *Index) DeleteByHash(h string) error {
	id, _, ok, err := ix.LookupByHash(h)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.batch.Delete(id)
	delete(ix.pendingDocs, id)
	ix.pending++
	return nil
}

// DeleteByLocation stages deletion of the document whose location list
// contains l, if any.
func (ix *Index) DeleteByLocation(l string) error {
	id, _, ok, err := ix.LookupByLocation(l)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.batch.Delete(id)
	delete(ix.pendingDocs, id)
	ix.pending++
	return nil
}

// Commit makes all staged additions and deletions atomic and visible to
// readers.
func (ix *Index) Commit() error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if ix.pending == 0 {
		return nil
	}
	if err := ix.index.Batch(ix.batch); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	ix.batch = ix.index.NewBatch()
	ix.pendingDocs = make(map[string]Document)
	ix.pending = 0
	return nil
}

// Search returns up to searchLimit top-scoring documents for query,
// parsed against the title and body fields.
func (ix *Index) Search(query string) ([]Result, error) {
	titleQuery := bleve.NewMatchQuery(query)
	titleQuery.SetField("title")
	bodyQuery := bleve.NewMatchQuery(query)
	bodyQuery.SetField("body")

	q := bleve.NewDisjunctionQuery(titleQuery, bodyQuery)
	req := bleve.NewSearchRequest(q)
	req.Size = searchLimit
	req.Fields = []string{"title", "hash", "location", "body"}

	results, err := ix.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	out := make([]Result, len(results.Hits))
	for i, hit := range results.Hits {
		out[i] = Result{ID: hit.ID, Score: hit.Score, Doc: documentFromFields(hit.Fields)}
	}
	return out, nil
}

// Close closes the underlying Bleve index.
func (ix *Index) Close() error {
	return ix.index.Close()
}
