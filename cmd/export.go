package cmd

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"shopdash/config"
	"shopdash/output"
	"shopdash/reconcile"

	"github.com/spf13/cobra"
)

var (
	exportFormat  string
	exportMode    string
	exportOutput  string
	exportOpening string
	exportRange   rangeFlags
	exportStore   storeFlags
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export orders, expenses or the cashflow ledger to CSV/Excel",
	Long: `Export stored data for one owner and date range.

Modes:
- orders: export each stored order line
- expenses: export each recorded expense
- cashflow: export the daily ledger (inflow, outflow, net, running balance)

Output format can be selected explicitly via --format or inferred from --output extension.`,
	Example: `
  # Export this month's orders to CSV
  shopdash export --mode orders --output ./orders.csv

  # Export last month's cashflow to Excel with an opening balance
  shopdash export --mode cashflow --range last-month --opening 15000 --output ./cashflow.xlsx

  # Force Excel format independent of extension
  shopdash export --mode expenses --format excel --output ./expenses.out
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}

		format := exportFormat
		if strings.TrimSpace(format) == "" {
			format = detectExportFormat(exportOutput)
		}
		writer, err := output.WriterForFormat(format)
		if err != nil {
			return err
		}

		dateRange, err := exportRange.resolve(cfg, time.Now())
		if err != nil {
			return err
		}

		store, err := exportStore.open(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		owner := exportStore.owner(cfg)
		var table output.Table
		mode := strings.TrimSpace(strings.ToLower(exportMode))
		switch mode {
		case "", "orders":
			mode = "orders"
			orders, err := store.ListOrders(owner, dateRange)
			if err != nil {
				return err
			}
			table = output.OrdersTable(orders)
		case "expenses":
			expenses, err := store.ListExpenses(owner, dateRange)
			if err != nil {
				return err
			}
			table = output.ExpensesTable(expenses)
		case "cashflow":
			opening, err := parseAmountFlag("opening", exportOpening)
			if err != nil {
				return err
			}
			result, err := reconcile.Run(store, owner, dateRange, opening)
			if err != nil {
				return err
			}
			table = output.CashflowTable(result)
		default:
			return fmt.Errorf("unsupported export mode: %s (supported: orders, expenses, cashflow)", exportMode)
		}

		if err := writer.Write(exportOutput, table); err != nil {
			return err
		}
		fmt.Printf("Export completed. Rows: %d, Mode: %s, Range: %s, Format: %s, File: %s\n", len(table.Rows), mode, dateRange, format, exportOutput)
		return nil
	},
}

func detectExportFormat(path string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	switch ext {
	case "csv":
		return "csv"
	case "xlsx", "xlsm":
		return "excel"
	default:
		return "csv"
	}
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportMode, "mode", "orders", "Export mode: orders|expenses|cashflow")
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "", "Output format: csv|excel (optional, inferred from output extension)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file path")
	exportCmd.Flags().StringVar(&exportOpening, "opening", "", "Opening balance for cashflow mode")
	exportRange.bind(exportCmd)
	exportStore.bind(exportCmd)

	_ = exportCmd.MarkFlagRequired("output")
}
