package extract

import (
	"bytes"
	"context"

	"github.com/beaconfind/beaconfind/internal/geocode"
	"github.com/beaconfind/beaconfind/internal/record"
	goexif "github.com/rwcarlsen/goexif/exif"
)

// EXIFExtractor reverse-geocodes the GPS coordinates embedded in a photo's
// EXIF tags into a location string.
type EXIFExtractor struct{ extSet }

// NewEXIFExtractor returns the EXIF extractor.
func NewEXIFExtractor() *EXIFExtractor {
	return &EXIFExtractor{extSet: newExtSet("tif", "tiff", "jpg", "jpeg")}
}

// Extract decodes GPS EXIF tags and reverse-geocodes them. Files with no
// GPS tags yield an empty body, not an error, matching the contract that
// "no GPS" is a valid, successful outcome.
func (e *EXIFExtractor) Extract(_ context.Context, rec *record.FileRecord) (ExtractedFields, error) {
	x, err := goexif.Decode(bytes.NewReader(rec.Bytes))
	if err != nil {
		// No EXIF data at all is common and not an extraction failure.
		return ExtractedFields{}, nil
	}
	lat, lon, err := x.LatLong()
	if err != nil {
		return ExtractedFields{}, nil
	}
	city, err := geocode.Nearest(lat, lon)
	if err != nil {
		return ExtractedFields{}, err
	}
	return ExtractedFields{Body: city.Format()}, nil
}
