package classify

import "testing"

func TestLabelCacheEvictsOldest(t *testing.T) {
	c := newLabelCache(2)
	c.Set("a", "cat")
	c.Set("b", "dog")
	c.Set("c", "car") // evicts "a"

	if _, ok := c.Get("a"); ok {
		t.Fatalf("expected %q to be evicted", "a")
	}
	if v, ok := c.Get("b"); !ok || v != "dog" {
		t.Fatalf("expected %q -> dog, got %q ok=%v", "b", v, ok)
	}
	if v, ok := c.Get("c"); !ok || v != "car" {
		t.Fatalf("expected %q -> car, got %q ok=%v", "c", v, ok)
	}
}

func TestLabelLookup(t *testing.T) {
	if got := label(0); got != labels[0] {
		t.Fatalf("label(0) = %q, want %q", got, labels[0])
	}
	if got := label(-1); got != "unknown" {
		t.Fatalf("label(-1) = %q, want unknown", got)
	}
	if got := label(len(labels) + 10); got != "unknown" {
		t.Fatalf("label(out of range) = %q, want unknown", got)
	}
}
