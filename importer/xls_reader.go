package importer

import (
	"fmt"

	"github.com/extrame/xls"
)

const xlsMaxRows = 100000

// XLSReader reads legacy binary .xls workbooks with a single worksheet.
type XLSReader struct{}

func (r *XLSReader) Read(path string) (RawSheet, error) {
	workbook, err := xls.Open(path, "utf-8")
	if err != nil {
		return nil, fmt.Errorf("open xls file %s: %w", path, err)
	}
	if workbook.NumSheets() == 0 {
		return nil, fmt.Errorf("xls file has no sheets: %s", path)
	}
	if workbook.NumSheets() > 1 {
		return nil, fmt.Errorf("xls file %s has %d sheets; export a single sheet", path, workbook.NumSheets())
	}

	rows := workbook.ReadAllCells(xlsMaxRows)
	sheet := make(RawSheet, 0, len(rows))
	for _, row := range rows {
		cells := make([]Cell, len(row))
		for i, value := range row {
			if value != "" {
				cells[i] = value
			}
		}
		sheet = append(sheet, cells)
	}
	return sheet, nil
}
