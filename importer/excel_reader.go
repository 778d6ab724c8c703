package importer

import (
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"
)

// ExcelReader reads .xlsx/.xlsm workbooks. Cells are returned unformatted so
// numbers and date serials keep their numeric value.
type ExcelReader struct{}

func (r *ExcelReader) Read(path string) (RawSheet, error) {
	file, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open excel file %s: %w", path, err)
	}
	defer file.Close()

	sheetName := file.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("excel file has no sheets: %s", path)
	}

	rows, err := file.Rows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("read rows from sheet %s: %w", sheetName, err)
	}
	defer rows.Close()

	sheet := make(RawSheet, 0, 128)
	for rowIndex := 1; rows.Next(); rowIndex++ {
		values, err := rows.Columns(excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("read row %d from sheet %s: %w", rowIndex, sheetName, err)
		}

		cells := make([]Cell, len(values))
		for col, value := range values {
			if value == "" {
				continue
			}
			if !numericText(value) {
				cells[col] = value
				continue
			}
			// Numeric-looking text may be a real number, a bool or a string
			// such as an order ID with leading zeros.
			name, err := excelize.CoordinatesToCellName(col+1, rowIndex)
			if err != nil {
				return nil, fmt.Errorf("resolve cell name: %w", err)
			}
			cellType, err := file.GetCellType(sheetName, name)
			if err != nil {
				return nil, fmt.Errorf("read cell type %s: %w", name, err)
			}
			cells[col] = typedCell(cellType, value)
		}
		sheet = append(sheet, cells)
	}
	if err := rows.Error(); err != nil {
		return nil, fmt.Errorf("read rows from sheet %s: %w", sheetName, err)
	}

	return sheet, nil
}

// numericText reports whether a raw cell value could be stored as a number.
func numericText(value string) bool {
	_, err := strconv.ParseFloat(value, 64)
	return err == nil
}

func typedCell(cellType excelize.CellType, value string) Cell {
	switch cellType {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeError:
		return value
	case excelize.CellTypeBool:
		return value == "1" || value == "TRUE" || value == "true"
	default:
		if number, err := strconv.ParseFloat(value, 64); err == nil {
			return number
		}
		return value
	}
}
