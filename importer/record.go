package importer

import (
	"strconv"
	"strings"
	"time"
)

// Cell is one loosely typed spreadsheet value: string, float64, bool,
// time.Time or nil for an empty cell.
type Cell = any

// RawSheet is a zero-indexed, row-major grid of cells as read from a file.
type RawSheet [][]Cell

// Record is one data row keyed by canonical header.
type Record struct {
	RowNumber int
	Values    map[string]Cell
}

// Get returns the first value found for the given column names.
func (r Record) Get(keys ...string) Cell {
	for _, key := range keys {
		if value, ok := r.Values[NormalizeHeader(key)]; ok {
			return value
		}
	}
	return nil
}

// Text returns the first value found for keys rendered as trimmed text.
func (r Record) Text(keys ...string) string {
	return cellText(r.Get(keys...))
}

// Has reports whether any of the given columns exists in the record.
func (r Record) Has(keys ...string) bool {
	for _, key := range keys {
		if _, ok := r.Values[NormalizeHeader(key)]; ok {
			return true
		}
	}
	return false
}

// Blank reports whether every value of the record is empty.
func (r Record) Blank() bool {
	for _, value := range r.Values {
		if cellText(value) != "" {
			return false
		}
	}
	return true
}

// NormalizeHeader trims a header cell and collapses inner whitespace runs to a
// single space. Anything that is not a string normalizes to "".
func NormalizeHeader(raw Cell) string {
	text, ok := raw.(string)
	if !ok {
		return ""
	}
	return strings.Join(strings.Fields(text), " ")
}

func cellText(value Cell) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		return v.Format(time.RFC3339)
	default:
		return ""
	}
}
