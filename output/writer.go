package output

import (
	"fmt"
	"strings"
	"time"

	"shopdash/reconcile"
	"shopdash/sales"

	"github.com/shopspring/decimal"
)

// Table is a header row plus typed data rows. Cells are strings, ints,
// decimals or times.
type Table struct {
	Headers []string
	Rows    [][]any
}

type Writer interface {
	Write(path string, table Table) error
}

func WriterForFormat(format string) (Writer, error) {
	switch normalizeFormat(format) {
	case "csv":
		return &CSVWriter{}, nil
	case "excel", "xlsx":
		return &ExcelWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

func normalizeFormat(value string) string {
	return strings.TrimSpace(strings.ToLower(value))
}

// OrdersTable uses the column names the generic importer reads, so an orders
// export can be imported again.
func OrdersTable(orders []sales.Order) Table {
	table := Table{
		Headers: []string{"Platform", "Order ID", "Status", "Order Date", "Product", "SKU", "Quantity", "Revenue", "Platform Fee", "Settlement", "Source File", "Import Batch"},
		Rows:    make([][]any, 0, len(orders)),
	}
	for _, order := range orders {
		table.Rows = append(table.Rows, []any{
			order.Platform,
			order.OrderID,
			order.Status,
			order.CreatedAt,
			order.ProductName,
			order.SKU,
			order.Quantity,
			order.Revenue,
			order.PlatformFee,
			order.Settlement,
			order.SourceFile,
			order.ImportBatch,
		})
	}
	return table
}

func CashflowTable(result *reconcile.Result) Table {
	table := Table{
		Headers: []string{"Date", "Inflow", "Outflow", "Net", "Balance", "Orders", "Expenses"},
		Rows:    make([][]any, 0, len(result.Days)),
	}
	for _, day := range result.Days {
		table.Rows = append(table.Rows, []any{
			day.Date,
			day.Inflow,
			day.Outflow,
			day.Net,
			day.Balance,
			day.OrderCount,
			day.ExpenseCount,
		})
	}
	return table
}

func ExpensesTable(expenses []sales.Expense) Table {
	table := Table{
		Headers: []string{"ID", "Date", "Category", "Description", "Amount"},
		Rows:    make([][]any, 0, len(expenses)),
	}
	for _, expense := range expenses {
		table.Rows = append(table.Rows, []any{
			expense.ID,
			expense.Day(),
			expense.Category,
			expense.Description,
			expense.Amount,
		})
	}
	return table
}

func cellString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case decimal.Decimal:
		return v.StringFixed(2)
	case time.Time:
		return v.Format(time.RFC3339)
	default:
		return fmt.Sprint(v)
	}
}
