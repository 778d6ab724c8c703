// Package sales holds the normalized records shared by importers, storage and
// reports.
package sales

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	PlatformTikTok  = "tiktok"
	PlatformShopee  = "shopee"
	PlatformGeneric = "generic"
)

// DayLayout is the calendar-day key used for grouping and storage.
const DayLayout = "2006-01-02"

// Order is one order line as imported from a platform export.
type Order struct {
	ID          int64
	OwnerID     string `validate:"required"`
	Platform    string `validate:"required"`
	OrderID     string `validate:"required"`
	Status      string
	CreatedAt   time.Time
	ProductName string
	SKU         string
	Quantity    int `validate:"gte=0"`
	Revenue     decimal.Decimal
	PlatformFee decimal.Decimal
	Settlement  decimal.Decimal
	SourceFile  string
	ImportBatch string
}

// Cancelled reports whether the platform status marks the order as cancelled.
func (o Order) Cancelled() bool {
	status := strings.ToLower(o.Status)
	return strings.Contains(status, "cancel") || strings.Contains(status, "ยกเลิก")
}

// Day returns the calendar day the order was created on.
func (o Order) Day() string {
	return o.CreatedAt.Format(DayLayout)
}

type Expense struct {
	ID          int64
	OwnerID     string
	SpentOn     time.Time
	Category    string
	Description string
	Amount      decimal.Decimal
}

func (e Expense) Day() string {
	return e.SpentOn.Format(DayLayout)
}

// Totals is the aggregate over a date range that feeds the summary bar.
type Totals struct {
	Revenue        decimal.Decimal
	PlatformFees   decimal.Decimal
	Settlement     decimal.Decimal
	Expenses       decimal.Decimal
	OrderCount     int
	CancelledCount int
}

// DailyTotals is the per-day aggregate used by cashflow views.
type DailyTotals struct {
	Date         string
	Settlement   decimal.Decimal
	Expenses     decimal.Decimal
	OrderCount   int
	ExpenseCount int
}
