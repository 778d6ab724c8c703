package importer

import (
	"fmt"
	"strings"
)

// Reader loads the first worksheet of a file as a raw grid.
type Reader interface {
	Read(path string) (RawSheet, error)
}

func ReaderForFormat(format string) (Reader, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "csv":
		return &CSVReader{}, nil
	case "excel", "xlsx", "xlsm":
		return &ExcelReader{}, nil
	case "xls":
		return &XLSReader{}, nil
	default:
		return nil, fmt.Errorf("unsupported input format: %s", format)
	}
}
