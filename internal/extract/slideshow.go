package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/beaconfind/beaconfind/internal/record"
)

// slideshowSlidePathPrefix is the path prefix for slide XML files inside a .pptx zip.
const slideshowSlidePathPrefix = "ppt/slides/slide"

// slideshowTextRun matches <a:t>text</a:t> (and any attribute variant).
var slideshowTextRun = regexp.MustCompile(`<a:t[^>]*>([^<]*)</a:t>`)

// SlideshowExtractor extracts text runs from .pptx slides.
type SlideshowExtractor struct{ extSet }

// NewSlideshowExtractor returns the slideshow extractor.
func NewSlideshowExtractor() *SlideshowExtractor {
	return &SlideshowExtractor{extSet: newExtSet("pptx")}
}

// Extract reads every ppt/slides/slideN.xml entry in the zip and collects
// all <a:t> text-run strings, space-joined. Title is left empty.
func (e *SlideshowExtractor) Extract(_ context.Context, rec *record.FileRecord) (ExtractedFields, error) {
	zr, err := zip.NewReader(bytes.NewReader(rec.Bytes), int64(len(rec.Bytes)))
	if err != nil {
		return ExtractedFields{}, fmt.Errorf("open PPTX zip: %w", err)
	}
	var body strings.Builder
	for _, f := range zr.File {
		if !strings.HasPrefix(f.Name, slideshowSlidePathPrefix) || !strings.HasSuffix(f.Name, ".xml") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return ExtractedFields{}, fmt.Errorf("open slide %s: %w", f.Name, err)
		}
		var slideBuf bytes.Buffer
		if _, err := slideBuf.ReadFrom(rc); err != nil {
			_ = rc.Close()
			return ExtractedFields{}, fmt.Errorf("read slide %s: %w", f.Name, err)
		}
		_ = rc.Close()
		for _, m := range slideshowTextRun.FindAllStringSubmatch(slideBuf.String(), -1) {
			body.WriteString(m[1])
			body.WriteByte(' ')
		}
	}
	return ExtractedFields{Body: body.String()}, nil
}
