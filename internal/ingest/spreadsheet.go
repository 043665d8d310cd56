package ingest

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// MIME types accepted for uploads.
const (
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	mimeXLS  = "application/vnd.ms-excel"
)

// nullTokens are cell values treated as missing after trimming.
var nullTokens = map[string]bool{
	"":     true,
	"nan":  true,
	"none": true,
	"null": true,
}

// parseWorkbook decodes spreadsheet bytes into rows of named fields. Column
// names come from the first row of the first sheet, lower-cased with spaces
// replaced by underscores. Cell values are trimmed; null tokens become empty
// strings.
func parseWorkbook(data []byte) ([]map[string]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q has no header row", sheets[0])
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = normalizeHeader(h)
	}

	var records []map[string]string
	for _, row := range rows[1:] {
		record := make(map[string]string, len(headers))
		for i, header := range headers {
			if header == "" {
				continue
			}
			var cell string
			if i < len(row) {
				cell = normalizeCell(row[i])
			}
			record[header] = cell
		}
		records = append(records, record)
	}
	return records, nil
}

// normalizeHeader lower-cases a column name and replaces spaces with
// underscores, matching the spreadsheet column contract.
func normalizeHeader(h string) string {
	h = strings.TrimSpace(strings.ToLower(h))
	return strings.ReplaceAll(h, " ", "_")
}

// normalizeCell trims a cell and maps missing-value tokens to empty.
func normalizeCell(v string) string {
	v = strings.TrimSpace(v)
	if nullTokens[strings.ToLower(v)] {
		return ""
	}
	return v
}
