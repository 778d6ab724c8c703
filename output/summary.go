package output

import (
	"embed"
	"fmt"
	"strings"
	"text/template"

	"shopdash/internal/timeutil"
	"shopdash/sales"

	"github.com/Rhymond/go-money"
	"github.com/montanaflynn/stats"
	"github.com/shopspring/decimal"
)

//go:embed templates/*.md
var templates embed.FS

// Summary is the dashboard summary bar for one date range.
type Summary struct {
	Range             timeutil.Range  `json:"-"`
	From              string          `json:"from"`
	To                string          `json:"to"`
	Revenue           decimal.Decimal `json:"revenue"`
	PlatformFees      decimal.Decimal `json:"platformFees"`
	Settlement        decimal.Decimal `json:"settlement"`
	Expenses          decimal.Decimal `json:"expenses"`
	Net               decimal.Decimal `json:"net"`
	OrderCount        int             `json:"orderCount"`
	CancelledCount    int             `json:"cancelledCount"`
	AverageOrderValue decimal.Decimal `json:"averageOrderValue"`
	MedianOrderValue  decimal.Decimal `json:"medianOrderValue"`
}

// BuildSummary derives the summary bar from stored totals and the per-order
// revenue values of the same range. Net is settlement minus expenses.
func BuildSummary(r timeutil.Range, totals sales.Totals, orderValues []decimal.Decimal) (Summary, error) {
	summary := Summary{
		Range:          r,
		From:           r.FromKey(),
		To:             r.ToKey(),
		Revenue:        totals.Revenue,
		PlatformFees:   totals.PlatformFees,
		Settlement:     totals.Settlement,
		Expenses:       totals.Expenses,
		Net:            totals.Settlement.Sub(totals.Expenses),
		OrderCount:     totals.OrderCount,
		CancelledCount: totals.CancelledCount,
	}
	if len(orderValues) == 0 {
		return summary, nil
	}

	data := make(stats.Float64Data, 0, len(orderValues))
	for _, value := range orderValues {
		data = append(data, value.InexactFloat64())
	}

	mean, err := stats.Mean(data)
	if err != nil {
		return Summary{}, fmt.Errorf("compute average order value: %w", err)
	}
	median, err := stats.Median(data)
	if err != nil {
		return Summary{}, fmt.Errorf("compute median order value: %w", err)
	}

	summary.AverageOrderValue = decimal.NewFromFloat(mean).Round(2)
	summary.MedianOrderValue = decimal.NewFromFloat(median).Round(2)
	return summary, nil
}

// FormatMoney renders amount in the currency's display form, e.g. ฿1,234.50.
func FormatMoney(amount decimal.Decimal, currency string) (string, error) {
	cur := money.GetCurrency(currency)
	if cur == nil {
		return "", fmt.Errorf("unsupported currency %q", currency)
	}
	factor := decimal.New(1, int32(cur.Fraction))
	minor := amount.Mul(factor).Round(0).IntPart()
	return money.New(minor, cur.Code).Display(), nil
}

// RenderSummaryMarkdown renders the summary as a markdown report.
func RenderSummaryMarkdown(summary Summary, currency string) (string, error) {
	if money.GetCurrency(currency) == nil {
		return "", fmt.Errorf("unsupported currency %q", currency)
	}

	content, err := templates.ReadFile("templates/summary.md")
	if err != nil {
		return "", fmt.Errorf("read summary template: %w", err)
	}

	funcs := template.FuncMap{
		"money": func(amount decimal.Decimal) string {
			formatted, _ := FormatMoney(amount, currency)
			return formatted
		},
	}
	tmpl, err := template.New("summary").Funcs(funcs).Parse(string(content))
	if err != nil {
		return "", fmt.Errorf("parse summary template: %w", err)
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, summary); err != nil {
		return "", fmt.Errorf("render summary: %w", err)
	}
	return b.String(), nil
}
