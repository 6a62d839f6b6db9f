package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/beaconfind/beaconfind/internal/keyword"
	"github.com/beaconfind/beaconfind/internal/searcher"
)

func TestHandleSearchReturnsResults(t *testing.T) {
	idx, err := keyword.Open(filepath.Join(t.TempDir(), "bleve"))
	if err != nil {
		t.Fatalf("keyword.Open: %v", err)
	}
	t.Cleanup(func() { _ = idx.Close() })

	doc := keyword.Document{Title: "report", Hash: "abc123", Locations: []string{"/tmp/report.txt"}, Body: "annual budget report"}
	if err := idx.Add(doc); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := idx.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	srv := New(searcher.New(idx, zap.NewNop()), 0, zap.NewNop())

	r := httptest.NewRequest(http.MethodGet, "/search/budget", nil)
	w := httptest.NewRecorder()

	srv.Router().ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	// Decode into raw maps, not searcher.Result, so a struct-tag
	// regression (wrong case, wrong key name) would actually fail here
	// instead of round-tripping silently through the same Go type.
	var results []map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&results); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("results = %+v", results)
	}
	if title, _ := results[0]["title"].(string); title != "report" {
		t.Fatalf(`results[0]["title"] = %v, want "report"`, results[0]["title"])
	}
	locations, ok := results[0]["location"].([]interface{})
	if !ok || len(locations) != 1 || locations[0] != "/tmp/report.txt" {
		t.Fatalf(`results[0]["location"] = %v`, results[0]["location"])
	}
	if _, hasCapitalized := results[0]["Title"]; hasCapitalized {
		t.Fatalf("response uses capitalized Go field name instead of a json tag: %+v", results[0])
	}
}

func TestHandleHealth(t *testing.T) {
	srv := New(nil, 0, zap.NewNop())
	r := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	srv.Router().ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}
