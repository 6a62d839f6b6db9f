package extract

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/beaconfind/beaconfind/internal/record"
	"github.com/xuri/excelize/v2"
)

// SpreadsheetExtractor reads every string cell value across every sheet of
// an .xlsx workbook.
type SpreadsheetExtractor struct{ extSet }

// NewSpreadsheetExtractor returns the spreadsheet extractor.
func NewSpreadsheetExtractor() *SpreadsheetExtractor {
	return &SpreadsheetExtractor{extSet: newExtSet("xlsx")}
}

// Extract space-joins every string cell value across all sheets, in sheet
// and row order. Title is left empty; no cell carries a file name.
func (e *SpreadsheetExtractor) Extract(_ context.Context, rec *record.FileRecord) (ExtractedFields, error) {
	f, err := excelize.OpenReader(bytes.NewReader(rec.Bytes))
	if err != nil {
		return ExtractedFields{}, fmt.Errorf("open spreadsheet: %w", err)
	}
	defer f.Close()

	var body strings.Builder
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return ExtractedFields{}, fmt.Errorf("get rows for sheet %q: %w", sheet, err)
		}
		for _, row := range rows {
			for _, cell := range row {
				if cell == "" {
					continue
				}
				body.WriteString(cell)
				body.WriteByte(' ')
			}
		}
	}
	return ExtractedFields{Body: body.String()}, nil
}
