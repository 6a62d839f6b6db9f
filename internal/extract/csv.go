package extract

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/beaconfind/beaconfind/internal/record"
)

// CSVExtractor reads the header row of a CSV file and indexes it
// space-joined as the body.
type CSVExtractor struct{ extSet }

// NewCSVExtractor returns the CSV header extractor.
func NewCSVExtractor() *CSVExtractor {
	return &CSVExtractor{extSet: newExtSet("csv")}
}

// Extract returns the header row, each field followed by a trailing space,
// as the body. Title is left empty; the header row carries no file name.
func (e *CSVExtractor) Extract(_ context.Context, rec *record.FileRecord) (ExtractedFields, error) {
	r := csv.NewReader(bytes.NewReader(rec.Bytes))
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err != nil {
		return ExtractedFields{}, fmt.Errorf("read CSV header: %w", err)
	}
	var body strings.Builder
	for _, field := range header {
		body.WriteString(field)
		body.WriteByte(' ')
	}
	return ExtractedFields{Body: body.String()}, nil
}
