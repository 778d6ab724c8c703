package importer

import "errors"

var ErrEmptySheet = errors.New("sheet has no rows")

// Ingest turns a raw grid into canonical records. Row 0 is always the header
// row; rows [1, headerRowCount) are skipped by position without looking at
// their content, so description rows never leak into the data. Headers that
// normalize to "" are dropped, and when two headers normalize to the same name
// the right-most column wins.
func Ingest(sheet RawSheet, headerRowCount int) ([]string, []Record, error) {
	if len(sheet) == 0 {
		return nil, nil, ErrEmptySheet
	}
	if headerRowCount < 1 {
		headerRowCount = 1
	}

	headers := make([]string, len(sheet[0]))
	for i, cell := range sheet[0] {
		headers[i] = NormalizeHeader(cell)
	}

	if headerRowCount >= len(sheet) {
		return headers, []Record{}, nil
	}

	records := make([]Record, 0, len(sheet)-headerRowCount)
	for i, row := range sheet[headerRowCount:] {
		values := make(map[string]Cell, len(headers))
		for col, header := range headers {
			if header == "" {
				continue
			}
			if col < len(row) {
				values[header] = row[col]
			} else {
				values[header] = nil
			}
		}
		records = append(records, Record{RowNumber: headerRowCount + i + 1, Values: values})
	}

	return headers, records, nil
}
