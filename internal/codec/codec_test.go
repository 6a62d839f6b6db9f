package codec

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "file.txt")
	if err := os.WriteFile(path, []byte("hello"), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	token, err := Encode(path)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got := Decode(token)

	want, err := filepath.EvalSymlinks(path)
	if err != nil {
		t.Fatalf("EvalSymlinks: %v", err)
	}
	if got != want {
		t.Fatalf("round trip mismatch: got %q want %q", got, want)
	}
}

func TestEncodeMissingPathFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "does-not-exist.txt")
	if _, err := Encode(path); err == nil {
		t.Fatal("expected Encode to fail for a missing path")
	}
}

func TestEncodeBestEffortSucceedsForMissingPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "deleted.txt")
	token, err := EncodeBestEffort(path)
	if err != nil {
		t.Fatalf("EncodeBestEffort: %v", err)
	}
	if Decode(token) != path {
		t.Fatalf("round trip mismatch: got %q want %q", Decode(token), path)
	}
}

func TestEncodeBestEffortMatchesEncodeWhenPathExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "file.txt")
	if err := os.WriteFile(path, []byte("hello"), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	viaEncode, err := Encode(path)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	viaBestEffort, err := EncodeBestEffort(path)
	if err != nil {
		t.Fatalf("EncodeBestEffort: %v", err)
	}
	if viaEncode != viaBestEffort {
		t.Fatalf("Encode and EncodeBestEffort diverged: %q vs %q", viaEncode, viaBestEffort)
	}
}
