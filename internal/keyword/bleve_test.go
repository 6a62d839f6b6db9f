package keyword

import (
	"path/filepath"
	"testing"
)

func TestLookupByHashNotFound(t *testing.T) {
	idx := openTestIndex(t)

	_, _, ok, err := idx.LookupByHash("does-not-exist")
	if err != nil {
		t.Fatalf("LookupByHash: %v", err)
	}
	if ok {
		t.Fatal("expected no document for unknown hash")
	}
}

func TestAddCommitThenLookupByHashAndLocation(t *testing.T) {
	idx := openTestIndex(t)

	doc := Document{
		Title:     "report.txt",
		Hash:      "deadbeef",
		Locations: []string{"/home/alice/report.txt"},
		Body:      "quarterly findings",
	}
	if err := idx.Add(doc); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := idx.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	_, got, ok, err := idx.LookupByHash("deadbeef")
	if err != nil {
		t.Fatalf("LookupByHash: %v", err)
	}
	if !ok {
		t.Fatal("expected to find document by hash")
	}
	if got.Title != doc.Title || got.Body != doc.Body {
		t.Fatalf("LookupByHash returned %+v, want %+v", got, doc)
	}

	_, got, ok, err = idx.LookupByLocation("/home/alice/report.txt")
	if err != nil {
		t.Fatalf("LookupByLocation: %v", err)
	}
	if !ok {
		t.Fatal("expected to find document by location")
	}
	if got.Hash != doc.Hash {
		t.Fatalf("LookupByLocation returned hash %q, want %q", got.Hash, doc.Hash)
	}
}

func TestSearchFindsTitleAndBody(t *testing.T) {
	idx := openTestIndex(t)

	if err := idx.Add(Document{
		Title:     "budget.xlsx",
		Hash:      "h1",
		Locations: []string{"/docs/budget.xlsx"},
		Body:      "revenue projections for next quarter",
	}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := idx.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	results, err := idx.Search("budget")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Doc.Hash != "h1" {
		t.Fatalf("Search(budget) = %+v, want one hit with hash h1", results)
	}

	results, err = idx.Search("projections")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Doc.Hash != "h1" {
		t.Fatalf("Search(projections) = %+v, want one hit with hash h1", results)
	}
}

func TestDeleteByHashRemovesDocument(t *testing.T) {
	idx := openTestIndex(t)

	if err := idx.Add(Document{Title: "t", Hash: "h2", Locations: []string{"/a"}, Body: "onlyhere"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := idx.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if err := idx.DeleteByHash("h2"); err != nil {
		t.Fatalf("DeleteByHash: %v", err)
	}
	if err := idx.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	_, _, ok, err := idx.LookupByHash("h2")
	if err != nil {
		t.Fatalf("LookupByHash: %v", err)
	}
	if ok {
		t.Fatal("expected document to be gone after DeleteByHash+Commit")
	}
}

func TestAddNotVisibleToSearchBeforeCommit(t *testing.T) {
	idx := openTestIndex(t)

	if err := idx.Add(Document{Title: "t", Hash: "h3", Locations: []string{"/b"}, Body: "uncommitted"}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	results, err := idx.Search("uncommitted")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected Search to find nothing before Commit, got %+v", results)
	}
}

func TestAddVisibleToLookupBeforeCommit(t *testing.T) {
	idx := openTestIndex(t)

	if err := idx.Add(Document{Title: "t", Hash: "h3", Locations: []string{"/b"}, Body: "uncommitted"}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	_, doc, ok, err := idx.LookupByHash("h3")
	if err != nil {
		t.Fatalf("LookupByHash: %v", err)
	}
	if !ok || doc.Body != "uncommitted" {
		t.Fatalf("expected staged addition to be visible to LookupByHash before Commit, got ok=%v doc=%+v", ok, doc)
	}

	_, doc, ok, err = idx.LookupByLocation("/b")
	if err != nil {
		t.Fatalf("LookupByLocation: %v", err)
	}
	if !ok || doc.Hash != "h3" {
		t.Fatalf("expected staged addition to be visible to LookupByLocation before Commit, got ok=%v doc=%+v", ok, doc)
	}
}

// TestSecondAddSameHashBeforeCommitMergesLocations guards against the
// batch-as-map bug: two Adds for the same content hash staged in the
// same uncommitted batch (e.g. the walker observing two identical-content
// files under one root before its single end-of-root Commit) must merge
// into one document carrying both locations, not silently overwrite each
// other's batch entry.
func TestSecondAddSameHashBeforeCommitMergesLocations(t *testing.T) {
	idx := openTestIndex(t)

	if err := idx.Add(Document{Title: "a", Hash: "shared", Locations: []string{"/a"}, Body: "dup"}); err != nil {
		t.Fatalf("Add first: %v", err)
	}

	_, existing, ok, err := idx.LookupByHash("shared")
	if err != nil {
		t.Fatalf("LookupByHash: %v", err)
	}
	if !ok {
		t.Fatal("expected first staged Add to be visible before staging the second")
	}

	merged := existing
	merged.Locations = append(append([]string{}, existing.Locations...), "/b")
	if err := idx.DeleteByHash("shared"); err != nil {
		t.Fatalf("DeleteByHash: %v", err)
	}
	if err := idx.Add(merged); err != nil {
		t.Fatalf("Add merged: %v", err)
	}
	if err := idx.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	_, got, ok, err := idx.LookupByHash("shared")
	if err != nil {
		t.Fatalf("LookupByHash: %v", err)
	}
	if !ok {
		t.Fatal("expected merged document after commit")
	}
	if len(got.Locations) != 2 {
		t.Fatalf("Locations = %v, want both /a and /b", got.Locations)
	}
}

// TestLookupByLocationDetectsStagedCollision guards the staged-document
// path's collision check: two uncommitted documents both claiming the
// same location must be reported the same way the committed-index path
// reports two committed documents sharing a location, rather than
// silently returning whichever one the map iteration visits first.
func TestLookupByLocationDetectsStagedCollision(t *testing.T) {
	idx := openTestIndex(t)

	if err := idx.Add(Document{Title: "a", Hash: "h1", Locations: []string{"/dup"}, Body: "one"}); err != nil {
		t.Fatalf("Add first: %v", err)
	}
	if err := idx.Add(Document{Title: "b", Hash: "h2", Locations: []string{"/dup"}, Body: "two"}); err != nil {
		t.Fatalf("Add second: %v", err)
	}

	_, _, _, err := idx.LookupByLocation("/dup")
	if err == nil {
		t.Fatal("expected a collision error for two staged documents sharing a location")
	}
	if _, ok := err.(*CollisionError); !ok {
		t.Fatalf("expected *CollisionError, got %T: %v", err, err)
	}
}

func openTestIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := Open(filepath.Join(t.TempDir(), "bleve"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = idx.Close() })
	return idx
}
