package importer

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// CSVReader reads comma- or tab-separated exports. A UTF-8 or UTF-16 BOM is
// honored and stripped; files without one are read as UTF-8. Empty lines
// become empty rows.
type CSVReader struct{}

func (r *CSVReader) Read(path string) (RawSheet, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv file %s: %w", path, err)
	}
	defer file.Close()

	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	buffered := bufio.NewReader(transform.NewReader(file, decoder))

	reader := csv.NewReader(buffered)
	reader.Comma = detectDelimiter(buffered)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	sheet := make(RawSheet, 0, 128)
	nextLine := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row %d: %w", len(sheet)+1, err)
		}

		// encoding/csv skips empty lines; keep them as empty rows so row
		// positions match the file.
		line, _ := reader.FieldPos(0)
		for ; nextLine < line; nextLine++ {
			sheet = append(sheet, []Cell{})
		}
		last := len(row) - 1
		lastLine, _ := reader.FieldPos(last)
		nextLine = lastLine + strings.Count(row[last], "\n") + 1

		cells := make([]Cell, len(row))
		for i, value := range row {
			if value == "" {
				cells[i] = nil
				continue
			}
			cells[i] = value
		}
		sheet = append(sheet, cells)
	}

	return sheet, nil
}

// detectDelimiter picks tab when the header line has tabs but no commas, as in
// Excel "Unicode Text" saves.
func detectDelimiter(r *bufio.Reader) rune {
	peek, _ := r.Peek(4096)
	if idx := bytes.IndexByte(peek, '\n'); idx >= 0 {
		peek = peek[:idx]
	}
	if bytes.IndexByte(peek, '\t') >= 0 && bytes.IndexByte(peek, ',') < 0 {
		return '\t'
	}
	return ','
}
