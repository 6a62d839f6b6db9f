//go:build windows

package codec

import "strings"

// uncPrefix is the extended-length path prefix filepath.EvalSymlinks may
// return on Windows; the facet form never carries it.
const uncPrefix = `\\?\`

// encodeNative strips the UNC prefix and converts native separators to "/".
func encodeNative(resolved string) string {
	resolved = strings.TrimPrefix(resolved, uncPrefix)
	return strings.ReplaceAll(resolved, `\`, "/")
}

// decodeNative converts a location token back to a native Windows path.
func decodeNative(token string) string {
	return strings.ReplaceAll(token, "/", `\`)
}
