package reconcile

import (
	"fmt"

	"shopdash/internal/timeutil"
	"shopdash/sales"

	"github.com/shopspring/decimal"
)

// Store is the read side the cashflow ledger needs. *storage.SQLiteStore
// satisfies it.
type Store interface {
	DailyTotals(ownerID string, r timeutil.Range) ([]sales.DailyTotals, error)
	ListOrders(ownerID string, r timeutil.Range) ([]sales.Order, error)
}

// Day is one ledger line. Balance is the running balance after the day.
type Day struct {
	Date         string          `json:"date"`
	Inflow       decimal.Decimal `json:"inflow"`
	Outflow      decimal.Decimal `json:"outflow"`
	Net          decimal.Decimal `json:"net"`
	Balance      decimal.Decimal `json:"balance"`
	OrderCount   int             `json:"orderCount"`
	ExpenseCount int             `json:"expenseCount"`
}

type Result struct {
	From         string          `json:"from"`
	To           string          `json:"to"`
	Opening      decimal.Decimal `json:"opening"`
	Closing      decimal.Decimal `json:"closing"`
	TotalInflow  decimal.Decimal `json:"totalInflow"`
	TotalOutflow decimal.Decimal `json:"totalOutflow"`
	Days         []Day           `json:"days"`
	Unsettled    []sales.Order   `json:"unsettled"`
}

// Run builds the cashflow ledger for one owner: one line per calendar day of r,
// inflow from settlement of non-cancelled orders, outflow from expenses, and a
// running balance starting at opening. Per-day figures come from the store's
// daily aggregate; orders are only scanned for unsettled ones.
func Run(store Store, ownerID string, r timeutil.Range, opening decimal.Decimal) (*Result, error) {
	daily, err := store.DailyTotals(ownerID, r)
	if err != nil {
		return nil, fmt.Errorf("load daily totals: %w", err)
	}
	orders, err := store.ListOrders(ownerID, r)
	if err != nil {
		return nil, fmt.Errorf("load orders: %w", err)
	}

	byDay := make(map[string]sales.DailyTotals, len(daily))
	for _, totals := range daily {
		byDay[totals.Date] = totals
	}

	result := &Result{
		From:      r.FromKey(),
		To:        r.ToKey(),
		Opening:   opening,
		Unsettled: make([]sales.Order, 0),
	}
	for _, order := range orders {
		if !order.Cancelled() && !order.Settlement.IsPositive() {
			result.Unsettled = append(result.Unsettled, order)
		}
	}

	days := r.Days()
	balance := opening
	result.Days = make([]Day, 0, len(days))
	for _, date := range days {
		line := Day{Date: date, Inflow: decimal.Zero, Outflow: decimal.Zero}
		if totals, ok := byDay[date]; ok {
			line.Inflow = totals.Settlement
			line.Outflow = totals.Expenses
			line.OrderCount = totals.OrderCount
			line.ExpenseCount = totals.ExpenseCount
		}
		line.Net = line.Inflow.Sub(line.Outflow)
		balance = balance.Add(line.Net)
		line.Balance = balance

		result.TotalInflow = result.TotalInflow.Add(line.Inflow)
		result.TotalOutflow = result.TotalOutflow.Add(line.Outflow)
		result.Days = append(result.Days, line)
	}
	result.Closing = balance

	return result, nil
}
