package ledger

import (
	"context"
	"path/filepath"
	"sort"
	"testing"
)

func openTestLedger(t *testing.T) *Ledger {
	t.Helper()
	l, err := Open(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func TestObserveAndDigestOf(t *testing.T) {
	ctx := context.Background()
	l := openTestLedger(t)

	if err := l.Observe(ctx, "/tmp/a.txt", "deadbeef"); err != nil {
		t.Fatalf("Observe: %v", err)
	}
	digest, ok, err := l.DigestOf(ctx, "/tmp/a.txt")
	if err != nil {
		t.Fatalf("DigestOf: %v", err)
	}
	if !ok || digest != "deadbeef" {
		t.Fatalf("DigestOf = %q, %v; want deadbeef, true", digest, ok)
	}

	if err := l.Observe(ctx, "/tmp/a.txt", "c0ffee"); err != nil {
		t.Fatalf("Observe (update): %v", err)
	}
	digest, _, _ = l.DigestOf(ctx, "/tmp/a.txt")
	if digest != "c0ffee" {
		t.Fatalf("expected updated digest c0ffee, got %q", digest)
	}
}

func TestPathsUnderFindsDescendants(t *testing.T) {
	ctx := context.Background()
	l := openTestLedger(t)

	for _, p := range []string{"/tmp/dir/a.txt", "/tmp/dir/sub/b.txt", "/tmp/dirother/c.txt", "/tmp/dir"} {
		if err := l.Observe(ctx, p, "h"); err != nil {
			t.Fatalf("Observe %s: %v", p, err)
		}
	}

	got, err := l.PathsUnder(ctx, "/tmp/dir")
	if err != nil {
		t.Fatalf("PathsUnder: %v", err)
	}
	sort.Strings(got)
	want := []string{"/tmp/dir", "/tmp/dir/a.txt", "/tmp/dir/sub/b.txt"}
	if len(got) != len(want) {
		t.Fatalf("PathsUnder = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("PathsUnder[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestForgetRemovesPath(t *testing.T) {
	ctx := context.Background()
	l := openTestLedger(t)

	if err := l.Observe(ctx, "/tmp/a.txt", "h"); err != nil {
		t.Fatalf("Observe: %v", err)
	}
	if err := l.Forget(ctx, "/tmp/a.txt"); err != nil {
		t.Fatalf("Forget: %v", err)
	}
	_, ok, err := l.DigestOf(ctx, "/tmp/a.txt")
	if err != nil {
		t.Fatalf("DigestOf: %v", err)
	}
	if ok {
		t.Fatal("expected path to be forgotten")
	}
}
