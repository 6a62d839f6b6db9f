// Package codec implements the bijective mapping between canonical absolute
// filesystem paths and the location tokens stored in the full-text index.
package codec

import (
	"fmt"
	"path/filepath"
)

// Encode canonicalises p (resolving symlinks and `.`/`..` segments) and
// returns the location token for it. It fails if p cannot be canonicalised,
// e.g. because the file no longer exists; callers should treat that as
// "skip this path".
func Encode(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("canonicalise %q: %w", p, err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("canonicalise %q: %w", p, err)
	}
	return encodeNative(resolved), nil
}

// Decode is the inverse of Encode: it reconstructs the native absolute path
// from a location token.
func Decode(token string) string {
	return decodeNative(token)
}

// EncodeBestEffort behaves like Encode but falls back to an
// un-symlink-resolved absolute path when p no longer exists, which is the
// normal case for a path being removed: there is nothing left to stat.
func EncodeBestEffort(p string) (string, error) {
	if token, err := Encode(p); err == nil {
		return token, nil
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("canonicalise %q: %w", p, err)
	}
	return encodeNative(abs), nil
}
