package importer

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

var amountReplacer = strings.NewReplacer("฿", "", "THB", "", "thb", "", ",", "", " ", "", "\u00a0", "")

func parseAmount(value Cell) (decimal.Decimal, error) {
	switch v := value.(type) {
	case nil:
		return decimal.Zero, nil
	case float64:
		return decimal.NewFromFloat(v).Round(2), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	}

	raw := cellText(value)
	cleaned := amountReplacer.Replace(raw)
	if cleaned == "" || cleaned == "-" {
		return decimal.Zero, nil
	}
	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse amount %q: %w", raw, err)
	}
	return amount.Round(2), nil
}

func parseQuantity(value Cell) (int, error) {
	if number, ok := value.(float64); ok {
		if number < 0 {
			return 0, fmt.Errorf("quantity must not be negative")
		}
		return int(math.Round(number)), nil
	}

	cleaned := strings.ReplaceAll(cellText(value), ",", "")
	if cleaned == "" {
		return 0, nil
	}
	quantity, err := strconv.Atoi(cleaned)
	if err != nil {
		return 0, fmt.Errorf("parse quantity %q: %w", cleaned, err)
	}
	if quantity < 0 {
		return 0, fmt.Errorf("quantity must not be negative")
	}
	return quantity, nil
}

// parseDateTime accepts Excel date serials, time.Time cells and the textual
// layouts used by platform exports. Text is interpreted in loc.
func parseDateTime(value Cell, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}

	switch v := value.(type) {
	case nil:
		return time.Time{}, fmt.Errorf("empty datetime")
	case time.Time:
		return v.In(loc), nil
	case float64:
		parsed, err := excelize.ExcelDateToTime(v, false)
		if err != nil {
			return time.Time{}, fmt.Errorf("convert excel date %v: %w", v, err)
		}
		// Serials carry wall-clock time without a zone.
		return time.Date(parsed.Year(), parsed.Month(), parsed.Day(), parsed.Hour(), parsed.Minute(), parsed.Second(), 0, loc), nil
	}

	text := cellText(value)
	if text == "" {
		return time.Time{}, fmt.Errorf("empty datetime")
	}
	if serial, err := strconv.ParseFloat(text, 64); err == nil && serial > 0 {
		return parseDateTime(serial, loc)
	}

	layouts := []string{
		time.RFC3339,
		"02/01/2006 15:04:05",
		"02/01/2006 15:04",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		"2006/01/02 15:04:05",
		"2006/01/02 15:04",
		"02/01/2006",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if parsed, err := time.ParseInLocation(layout, text, loc); err == nil {
			return parsed, nil
		}
	}

	return time.Time{}, fmt.Errorf("unsupported datetime format: %q", text)
}
