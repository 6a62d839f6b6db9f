package extract

import "strings"

// extSet is a small helper embedded by single-format extractors to provide
// Supports/Extensions from a fixed list.
type extSet struct {
	exts []string
}

func newExtSet(exts ...string) extSet {
	return extSet{exts: exts}
}

func (s extSet) Supports(ext string) bool {
	ext = strings.ToLower(ext)
	for _, e := range s.exts {
		if e == ext {
			return true
		}
	}
	return false
}

func (s extSet) Extensions() []string {
	return append([]string(nil), s.exts...)
}
