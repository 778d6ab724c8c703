package cmd

import (
	"fmt"
	"time"

	"shopdash/config"
	"shopdash/output"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
)

var (
	summaryRange rangeFlags
	summaryStore storeFlags
	summaryPlain bool
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show the summary bar for a date range",
	Long: `Aggregate stored orders and expenses for one owner and date range.

Cancelled orders only count toward the cancelled total. Net is settlement minus expenses.
Amounts are formatted in the configured currency.`,
	Example: `
  # Summary for the current month
  shopdash summary

  # Summary for the last 7 days as plain markdown
  shopdash summary --range last7 --plain

  # Summary for a custom range
  shopdash summary --from 2026-03-01 --to 2026-03-15
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}
		dateRange, err := summaryRange.resolve(cfg, time.Now())
		if err != nil {
			return err
		}

		store, err := summaryStore.open(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		owner := summaryStore.owner(cfg)
		totals, err := store.Totals(owner, dateRange)
		if err != nil {
			return err
		}
		values, err := store.OrderValues(owner, dateRange)
		if err != nil {
			return err
		}
		summary, err := output.BuildSummary(dateRange, totals, values)
		if err != nil {
			return err
		}

		markdown, err := output.RenderSummaryMarkdown(summary, cfg.Currency)
		if err != nil {
			return err
		}
		if summaryPlain {
			fmt.Fprint(cmd.OutOrStdout(), markdown)
			return nil
		}

		rendered, err := renderMarkdown(markdown)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), rendered)
		return nil
	},
}

func renderMarkdown(markdown string) (string, error) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return "", fmt.Errorf("create markdown renderer: %w", err)
	}
	rendered, err := renderer.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return rendered, nil
}

func init() {
	rootCmd.AddCommand(summaryCmd)

	summaryRange.bind(summaryCmd)
	summaryStore.bind(summaryCmd)
	summaryCmd.Flags().BoolVar(&summaryPlain, "plain", false, "Print raw markdown instead of terminal rendering")
}
