package extract

import (
	"context"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/beaconfind/beaconfind/internal/record"
)

// TextExtractor reads plain-text files as-is, validating UTF-8.
type TextExtractor struct{ extSet }

// NewTextExtractor returns the plain-text extractor.
func NewTextExtractor() *TextExtractor {
	return &TextExtractor{extSet: newExtSet("txt")}
}

// Extract returns the file's content decoded as UTF-8, replacing any
// invalid sequences with the replacement character. Title is the filename.
func (e *TextExtractor) Extract(_ context.Context, rec *record.FileRecord) (ExtractedFields, error) {
	content := rec.Bytes
	if !utf8.Valid(content) {
		content = []byte(strings.ToValidUTF8(string(content), "�"))
	}
	return ExtractedFields{
		Title: filepath.Base(rec.Path),
		Body:  string(content),
	}, nil
}
