package extract

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/beaconfind/beaconfind/internal/record"
	"github.com/ledongthuc/pdf"
)

// PDFExtractor extracts page text from PDF files.
type PDFExtractor struct{ extSet }

// NewPDFExtractor returns the PDF extractor.
func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{extSet: newExtSet("pdf")}
}

// Extract concatenates the plain text of every page, stripping the
// word-internal soft breaks ("\b ") the underlying library leaves between
// glyph runs it could not join into a single word.
func (e *PDFExtractor) Extract(_ context.Context, rec *record.FileRecord) (ExtractedFields, error) {
	r, err := pdf.NewReader(bytes.NewReader(rec.Bytes), int64(len(rec.Bytes)))
	if err != nil {
		return ExtractedFields{}, fmt.Errorf("open PDF: %w", err)
	}
	var buf bytes.Buffer
	numPages := r.NumPage()
	for i := 0; i < numPages; i++ {
		page := r.Page(i + 1)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return ExtractedFields{}, fmt.Errorf("extract page %d: %w", i+1, err)
		}
		buf.WriteString(text)
		if i < numPages-1 {
			buf.WriteByte('\n')
		}
	}
	body := strings.ReplaceAll(buf.String(), "\b ", "")
	return ExtractedFields{
		Title: filepath.Base(rec.Path),
		Body:  body,
	}, nil
}
