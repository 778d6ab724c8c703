package cmd

import (
	"fmt"
	"strings"
	"time"

	"shopdash/config"
	"shopdash/internal/timeutil"
	"shopdash/storage"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// rangeFlags binds the date-range picker flags shared by reporting commands.
type rangeFlags struct {
	preset string
	from   string
	to     string
}

func (f *rangeFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.preset, "range", "", "Range preset: "+strings.Join(timeutil.SupportedPresets(), "|")+" (default this-month)")
	cmd.Flags().StringVar(&f.from, "from", "", "Custom range start, format YYYY-MM-DD")
	cmd.Flags().StringVar(&f.to, "to", "", "Custom range end, format YYYY-MM-DD")
}

func (f *rangeFlags) resolve(cfg *config.Config, now time.Time) (timeutil.Range, error) {
	loc, err := cfg.Location()
	if err != nil {
		return timeutil.Range{}, err
	}
	return timeutil.ParseRange(f.preset, f.from, f.to, now.In(loc))
}

// storeFlags binds --db and --owner; both fall back to the configuration.
type storeFlags struct {
	dbPath  string
	ownerID string
}

func (f *storeFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.dbPath, "db", "", "Path to local SQLite database (default: database.path from config)")
	cmd.Flags().StringVar(&f.ownerID, "owner", "", "Shop owner ID (default: owner.id from config)")
}

func (f *storeFlags) owner(cfg *config.Config) string {
	return firstNonEmpty(f.ownerID, cfg.Owner.ID)
}

func (f *storeFlags) open(cfg *config.Config) (*storage.SQLiteStore, error) {
	return storage.OpenSQLite(resolveDBPath(f.dbPath, cfg))
}

func resolveDBPath(flagValue string, cfg *config.Config) string {
	if cfg == nil {
		return strings.TrimSpace(flagValue)
	}
	return firstNonEmpty(flagValue, cfg.Database.Path)
}

func parseAmountFlag(name, value string) (decimal.Decimal, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return decimal.Zero, nil
	}
	amount, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid --%s value %q: %w", name, value, err)
	}
	return amount.Round(2), nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
