package extract

import (
	"context"
	"fmt"

	"github.com/beaconfind/beaconfind/internal/classify"
	"github.com/beaconfind/beaconfind/internal/record"
)

// ImageClassifierExtractor yields the top-1 class label from a bundled
// MobileNet-v2 model as a file's body.
type ImageClassifierExtractor struct {
	extSet
	classifier *classify.Classifier
}

// NewImageClassifierExtractor wraps a loaded classifier as an Extractor.
func NewImageClassifierExtractor(classifier *classify.Classifier) *ImageClassifierExtractor {
	return &ImageClassifierExtractor{
		extSet:     newExtSet("tif", "tiff", "jpg", "jpeg", "png", "bmp", "ico", "gif"),
		classifier: classifier,
	}
}

// Extract decodes the image and runs it through the classifier, caching on
// content digest so re-observing an unchanged file skips inference.
func (e *ImageClassifierExtractor) Extract(_ context.Context, rec *record.FileRecord) (ExtractedFields, error) {
	img, err := classify.DecodeImage(rec.Bytes)
	if err != nil {
		return ExtractedFields{}, fmt.Errorf("decode image: %w", err)
	}
	label, err := e.classifier.Classify(rec.Digest, img)
	if err != nil {
		return ExtractedFields{}, fmt.Errorf("classify image: %w", err)
	}
	return ExtractedFields{Body: label}, nil
}
