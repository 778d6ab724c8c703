package cmd

import (
	"fmt"
	"strings"
	"time"

	"shopdash/config"
	"shopdash/internal/timeutil"
	"shopdash/sales"

	"github.com/spf13/cobra"
)

var (
	expenseDate        string
	expenseCategory    string
	expenseDescription string
	expenseAmount      string
	expenseID          int64
	expenseRange       rangeFlags
	expenseStore       storeFlags
)

var expenseCmd = &cobra.Command{
	Use:   "expense",
	Short: "Record, list and delete business expenses",
	Long: `Manage expenses that reduce net profit and appear as cashflow outflow.

Expenses are stored per owner in the same SQLite database as imported orders.`,
	Example: `
  # Record an ad spend
  shopdash expense add --date 2026-03-05 --category ads --description "Live boost" --amount 500

  # List this month's expenses
  shopdash expense list

  # Delete one expense
  shopdash expense delete --id 12
`,
}

var expenseAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record one expense",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}
		expense, err := buildExpense(cfg, expenseDate, expenseCategory, expenseDescription, expenseAmount)
		if err != nil {
			return err
		}

		store, err := expenseStore.open(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		id, err := store.InsertExpense(expenseStore.owner(cfg), expense)
		if err != nil {
			return err
		}
		fmt.Printf("Expense recorded. ID: %d, Date: %s, Category: %s, Amount: %s\n", id, expense.Day(), expense.Category, expense.Amount.StringFixed(2))
		return nil
	},
}

var expenseListCmd = &cobra.Command{
	Use:   "list",
	Short: "List expenses in a date range",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}
		dateRange, err := expenseRange.resolve(cfg, time.Now())
		if err != nil {
			return err
		}

		store, err := expenseStore.open(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		expenses, err := store.ListExpenses(expenseStore.owner(cfg), dateRange)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, expense := range expenses {
			fmt.Fprintf(out, "%6d  %s  %-16s %12s  %s\n", expense.ID, expense.Day(), expense.Category, expense.Amount.StringFixed(2), expense.Description)
		}
		fmt.Fprintf(out, "Expenses: %d, Range: %s\n", len(expenses), dateRange)
		return nil
	},
}

var expenseDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete one expense by ID",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}

		store, err := expenseStore.open(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.DeleteExpense(expenseStore.owner(cfg), expenseID); err != nil {
			return fmt.Errorf("delete expense %d: %w", expenseID, err)
		}
		fmt.Printf("Deleted expense: %d\n", expenseID)
		return nil
	},
}

func buildExpense(cfg *config.Config, date, category, description, amount string) (sales.Expense, error) {
	loc, err := cfg.Location()
	if err != nil {
		return sales.Expense{}, err
	}
	day, err := time.ParseInLocation(timeutil.DayLayout, strings.TrimSpace(date), loc)
	if err != nil {
		return sales.Expense{}, fmt.Errorf("invalid --date value %q (expected YYYY-MM-DD)", date)
	}
	if strings.TrimSpace(category) == "" {
		return sales.Expense{}, fmt.Errorf("--category is required")
	}
	value, err := parseAmountFlag("amount", amount)
	if err != nil {
		return sales.Expense{}, err
	}
	if !value.IsPositive() {
		return sales.Expense{}, fmt.Errorf("--amount must be > 0")
	}

	return sales.Expense{
		SpentOn:     day,
		Category:    strings.TrimSpace(category),
		Description: strings.TrimSpace(description),
		Amount:      value,
	}, nil
}

func init() {
	rootCmd.AddCommand(expenseCmd)
	expenseCmd.AddCommand(expenseAddCmd, expenseListCmd, expenseDeleteCmd)

	expenseAddCmd.Flags().StringVar(&expenseDate, "date", time.Now().Format(timeutil.DayLayout), "Expense date, format YYYY-MM-DD")
	expenseAddCmd.Flags().StringVar(&expenseCategory, "category", "", "Expense category, e.g. ads, packaging, shipping")
	expenseAddCmd.Flags().StringVar(&expenseDescription, "description", "", "Free-text description")
	expenseAddCmd.Flags().StringVar(&expenseAmount, "amount", "", "Amount in the configured currency")
	_ = expenseAddCmd.MarkFlagRequired("category")
	_ = expenseAddCmd.MarkFlagRequired("amount")
	expenseStore.bind(expenseAddCmd)

	expenseRange.bind(expenseListCmd)
	expenseStore.bind(expenseListCmd)

	expenseDeleteCmd.Flags().Int64Var(&expenseID, "id", 0, "Expense ID")
	_ = expenseDeleteCmd.MarkFlagRequired("id")
	expenseStore.bind(expenseDeleteCmd)
}
