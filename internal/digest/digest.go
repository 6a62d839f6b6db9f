// Package digest computes the content-addressed hash used to deduplicate
// indexed documents.
package digest

import (
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// Size is the digest length in bytes (BLAKE2b-512).
const Size = blake2b.Size

// Sum returns the lowercase hex-encoded BLAKE2b-512 digest of data.
func Sum(data []byte) (string, error) {
	h := blake2b.Sum512(data)
	return hex.EncodeToString(h[:]), nil
}

// MustSum is Sum but panics on error. BLAKE2b-512 only fails to initialise
// with an invalid key or output size, neither of which applies here, so
// this is safe to use where an error return would just be plumbing.
func MustSum(data []byte) string {
	sum, err := Sum(data)
	if err != nil {
		panic(fmt.Sprintf("digest: unexpected blake2b failure: %v", err))
	}
	return sum
}
