package cmd

import (
	"fmt"
	"io"
	"time"

	"shopdash/config"
	"shopdash/output"
	"shopdash/reconcile"

	"github.com/spf13/cobra"
)

var (
	reconcileOpening string
	reconcileRange   rangeFlags
	reconcileStore   storeFlags
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Print the daily cashflow ledger",
	Long: `Build the cashflow ledger for one owner and date range.

Each day lists inflow (settlement of non-cancelled orders), outflow (expenses), net and
the running balance starting from --opening. Orders without a positive settlement are
listed as unsettled.`,
	Example: `
  # Ledger for the current month
  shopdash reconcile

  # Ledger for last month starting from a known bank balance
  shopdash reconcile --range last-month --opening 15000
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}
		opening, err := parseAmountFlag("opening", reconcileOpening)
		if err != nil {
			return err
		}
		dateRange, err := reconcileRange.resolve(cfg, time.Now())
		if err != nil {
			return err
		}

		store, err := reconcileStore.open(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		result, err := reconcile.Run(store, reconcileStore.owner(cfg), dateRange, opening)
		if err != nil {
			return err
		}
		return printLedger(cmd.OutOrStdout(), result, cfg.Currency)
	},
}

func printLedger(w io.Writer, result *reconcile.Result, currency string) error {
	fmt.Fprintf(w, "%-10s %14s %14s %14s %14s\n", "Date", "Inflow", "Outflow", "Net", "Balance")
	for _, day := range result.Days {
		fmt.Fprintf(w, "%-10s %14s %14s %14s %14s\n", day.Date, day.Inflow.StringFixed(2), day.Outflow.StringFixed(2), day.Net.StringFixed(2), day.Balance.StringFixed(2))
	}

	opening, err := output.FormatMoney(result.Opening, currency)
	if err != nil {
		return err
	}
	closing, err := output.FormatMoney(result.Closing, currency)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Cashflow %s..%s. Opening: %s, Closing: %s, Unsettled orders: %d\n", result.From, result.To, opening, closing, len(result.Unsettled))
	for _, order := range result.Unsettled {
		fmt.Fprintf(w, "  unsettled %s order %s (%s) created %s\n", order.Platform, order.OrderID, order.Status, order.Day())
	}
	return nil
}

func init() {
	rootCmd.AddCommand(reconcileCmd)

	reconcileCmd.Flags().StringVar(&reconcileOpening, "opening", "", "Opening balance")
	reconcileRange.bind(reconcileCmd)
	reconcileStore.bind(reconcileCmd)
}
