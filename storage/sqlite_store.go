package storage

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"shopdash/internal/timeutil"
	"shopdash/sales"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

// SQLiteStore keeps orders and expenses per owner. Every statement is
// filtered by owner_id, so one owner can never read or change another
// owner's rows through this type.
type SQLiteStore struct {
	db *sqlx.DB
}

var (
	ErrOwnerRequired   = errors.New("owner id is required")
	ErrExpenseNotFound = errors.New("expense not found")
)

func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) ensureSchema() error {
	// Amounts are stored in minor units so SUM() stays exact.
	const schema = `
CREATE TABLE IF NOT EXISTS orders (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	owner_id TEXT NOT NULL,
	platform TEXT NOT NULL,
	order_id TEXT NOT NULL,
	status TEXT NOT NULL,
	cancelled INTEGER NOT NULL DEFAULT 0,
	order_date TEXT NOT NULL,
	created_at TEXT NOT NULL,
	product_name TEXT NOT NULL,
	sku TEXT NOT NULL,
	quantity INTEGER NOT NULL CHECK(quantity >= 0),
	revenue_minor INTEGER NOT NULL,
	platform_fee_minor INTEGER NOT NULL,
	settlement_minor INTEGER NOT NULL,
	source_file TEXT NOT NULL,
	import_batch TEXT NOT NULL,
	imported_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE(owner_id, platform, order_id, sku)
);
CREATE INDEX IF NOT EXISTS idx_orders_owner_date ON orders(owner_id, order_date);

CREATE TABLE IF NOT EXISTS expenses (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	owner_id TEXT NOT NULL,
	spent_on TEXT NOT NULL,
	category TEXT NOT NULL,
	description TEXT NOT NULL,
	amount_minor INTEGER NOT NULL CHECK(amount_minor >= 0),
	created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_expenses_owner_date ON expenses(owner_id, spent_on);
`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

type orderRow struct {
	ID               int64  `db:"id"`
	OwnerID          string `db:"owner_id"`
	Platform         string `db:"platform"`
	OrderID          string `db:"order_id"`
	Status           string `db:"status"`
	CreatedAt        string `db:"created_at"`
	ProductName      string `db:"product_name"`
	SKU              string `db:"sku"`
	Quantity         int    `db:"quantity"`
	RevenueMinor     int64  `db:"revenue_minor"`
	PlatformFeeMinor int64  `db:"platform_fee_minor"`
	SettlementMinor  int64  `db:"settlement_minor"`
	SourceFile       string `db:"source_file"`
	ImportBatch      string `db:"import_batch"`
}

type expenseRow struct {
	ID          int64  `db:"id"`
	OwnerID     string `db:"owner_id"`
	SpentOn     string `db:"spent_on"`
	Category    string `db:"category"`
	Description string `db:"description"`
	AmountMinor int64  `db:"amount_minor"`
}

// InsertOrders stores orders for ownerID and returns how many were new.
// Re-importing the same export is a no-op. Orders carrying a different owner
// are rejected.
func (s *SQLiteStore) InsertOrders(ownerID string, orders []sales.Order) (int, error) {
	if err := requireOwner(ownerID); err != nil {
		return 0, err
	}
	if len(orders) == 0 {
		return 0, nil
	}

	tx, err := s.db.Beginx()
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}

	const insertStmt = `
INSERT OR IGNORE INTO orders (
	owner_id,
	platform,
	order_id,
	status,
	cancelled,
	order_date,
	created_at,
	product_name,
	sku,
	quantity,
	revenue_minor,
	platform_fee_minor,
	settlement_minor,
	source_file,
	import_batch
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`

	stmt, err := tx.Prepare(insertStmt)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("prepare insert statement: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, order := range orders {
		if order.OwnerID != ownerID {
			_ = tx.Rollback()
			return 0, fmt.Errorf("order %s belongs to owner %q, not %q", order.OrderID, order.OwnerID, ownerID)
		}
		res, err := stmt.Exec(
			ownerID,
			order.Platform,
			order.OrderID,
			order.Status,
			boolToInt(order.Cancelled()),
			order.Day(),
			order.CreatedAt.UTC().Format(time.RFC3339),
			order.ProductName,
			order.SKU,
			order.Quantity,
			toMinor(order.Revenue),
			toMinor(order.PlatformFee),
			toMinor(order.Settlement),
			order.SourceFile,
			order.ImportBatch,
		)
		if err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("insert order %s: %w", order.OrderID, err)
		}

		rows, err := res.RowsAffected()
		if err == nil && rows > 0 {
			inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}

	return inserted, nil
}

// ListOrders returns the owner's orders created within r, oldest first.
// created_at is stored in UTC; times are returned in r's location.
func (s *SQLiteStore) ListOrders(ownerID string, r timeutil.Range) ([]sales.Order, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}

	const query = `
SELECT
	id,
	owner_id,
	platform,
	order_id,
	status,
	created_at,
	product_name,
	sku,
	quantity,
	revenue_minor,
	platform_fee_minor,
	settlement_minor,
	source_file,
	import_batch
FROM orders
WHERE owner_id = ? AND order_date BETWEEN ? AND ?
ORDER BY created_at, id;
`

	rows := make([]orderRow, 0, 256)
	if err := s.db.Select(&rows, query, ownerID, r.FromKey(), r.ToKey()); err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}

	orders := make([]sales.Order, 0, len(rows))
	for _, row := range rows {
		createdAt, err := time.Parse(time.RFC3339, row.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("parse created time %q: %w", row.CreatedAt, err)
		}
		orders = append(orders, sales.Order{
			ID:          row.ID,
			OwnerID:     row.OwnerID,
			Platform:    row.Platform,
			OrderID:     row.OrderID,
			Status:      row.Status,
			CreatedAt:   createdAt.In(r.Location()),
			ProductName: row.ProductName,
			SKU:         row.SKU,
			Quantity:    row.Quantity,
			Revenue:     fromMinor(row.RevenueMinor),
			PlatformFee: fromMinor(row.PlatformFeeMinor),
			Settlement:  fromMinor(row.SettlementMinor),
			SourceFile:  row.SourceFile,
			ImportBatch: row.ImportBatch,
		})
	}
	return orders, nil
}

// DeleteImportBatch removes every order of one import run.
func (s *SQLiteStore) DeleteImportBatch(ownerID, batchID string) (int64, error) {
	if err := requireOwner(ownerID); err != nil {
		return 0, err
	}
	if strings.TrimSpace(batchID) == "" {
		return 0, fmt.Errorf("import batch id is required")
	}

	res, err := s.db.Exec(`DELETE FROM orders WHERE owner_id = ? AND import_batch = ?;`, ownerID, batchID)
	if err != nil {
		return 0, fmt.Errorf("delete import batch %s: %w", batchID, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("read deleted row count: %w", err)
	}
	return rows, nil
}

// InsertExpense stores one expense and returns its row ID.
func (s *SQLiteStore) InsertExpense(ownerID string, expense sales.Expense) (int64, error) {
	if err := requireOwner(ownerID); err != nil {
		return 0, err
	}
	if expense.SpentOn.IsZero() {
		return 0, fmt.Errorf("expense date is required")
	}
	if expense.Amount.IsNegative() {
		return 0, fmt.Errorf("expense amount must be >= 0")
	}

	res, err := s.db.Exec(
		`INSERT INTO expenses (owner_id, spent_on, category, description, amount_minor) VALUES (?, ?, ?, ?, ?);`,
		ownerID,
		expense.Day(),
		strings.TrimSpace(expense.Category),
		strings.TrimSpace(expense.Description),
		toMinor(expense.Amount),
	)
	if err != nil {
		return 0, fmt.Errorf("insert expense: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read inserted row id: %w", err)
	}
	return id, nil
}

func (s *SQLiteStore) ListExpenses(ownerID string, r timeutil.Range) ([]sales.Expense, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}

	const query = `
SELECT id, owner_id, spent_on, category, description, amount_minor
FROM expenses
WHERE owner_id = ? AND spent_on BETWEEN ? AND ?
ORDER BY spent_on, id;
`

	rows := make([]expenseRow, 0, 64)
	if err := s.db.Select(&rows, query, ownerID, r.FromKey(), r.ToKey()); err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}

	expenses := make([]sales.Expense, 0, len(rows))
	for _, row := range rows {
		spentOn, err := time.ParseInLocation(sales.DayLayout, row.SpentOn, r.Location())
		if err != nil {
			return nil, fmt.Errorf("parse expense date %q: %w", row.SpentOn, err)
		}
		expenses = append(expenses, sales.Expense{
			ID:          row.ID,
			OwnerID:     row.OwnerID,
			SpentOn:     spentOn,
			Category:    row.Category,
			Description: row.Description,
			Amount:      fromMinor(row.AmountMinor),
		})
	}
	return expenses, nil
}

// DeleteExpense removes one expense; ErrExpenseNotFound when the ID does not
// exist for this owner.
func (s *SQLiteStore) DeleteExpense(ownerID string, id int64) error {
	if err := requireOwner(ownerID); err != nil {
		return err
	}
	if id <= 0 {
		return fmt.Errorf("expense id must be > 0")
	}

	res, err := s.db.Exec(`DELETE FROM expenses WHERE owner_id = ? AND id = ?;`, ownerID, id)
	if err != nil {
		return fmt.Errorf("delete expense %d: %w", id, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read deleted row count: %w", err)
	}
	if rows == 0 {
		return ErrExpenseNotFound
	}
	return nil
}

// Totals aggregates the owner's orders and expenses within r. Cancelled orders
// count only toward CancelledCount.
func (s *SQLiteStore) Totals(ownerID string, r timeutil.Range) (sales.Totals, error) {
	if err := requireOwner(ownerID); err != nil {
		return sales.Totals{}, err
	}

	const orderQuery = `
SELECT
	COALESCE(SUM(CASE WHEN cancelled = 0 THEN revenue_minor ELSE 0 END), 0) AS revenue_minor,
	COALESCE(SUM(CASE WHEN cancelled = 0 THEN platform_fee_minor ELSE 0 END), 0) AS platform_fee_minor,
	COALESCE(SUM(CASE WHEN cancelled = 0 THEN settlement_minor ELSE 0 END), 0) AS settlement_minor,
	COUNT(DISTINCT CASE WHEN cancelled = 0 THEN platform || ':' || order_id END) AS order_count,
	COUNT(DISTINCT CASE WHEN cancelled = 1 THEN platform || ':' || order_id END) AS cancelled_count
FROM orders
WHERE owner_id = ? AND order_date BETWEEN ? AND ?;
`
	var orderTotals struct {
		RevenueMinor     int64 `db:"revenue_minor"`
		PlatformFeeMinor int64 `db:"platform_fee_minor"`
		SettlementMinor  int64 `db:"settlement_minor"`
		OrderCount       int   `db:"order_count"`
		CancelledCount   int   `db:"cancelled_count"`
	}
	if err := s.db.Get(&orderTotals, orderQuery, ownerID, r.FromKey(), r.ToKey()); err != nil {
		return sales.Totals{}, fmt.Errorf("aggregate orders: %w", err)
	}

	var expenseMinor int64
	const expenseQuery = `SELECT COALESCE(SUM(amount_minor), 0) FROM expenses WHERE owner_id = ? AND spent_on BETWEEN ? AND ?;`
	if err := s.db.Get(&expenseMinor, expenseQuery, ownerID, r.FromKey(), r.ToKey()); err != nil {
		return sales.Totals{}, fmt.Errorf("aggregate expenses: %w", err)
	}

	return sales.Totals{
		Revenue:        fromMinor(orderTotals.RevenueMinor),
		PlatformFees:   fromMinor(orderTotals.PlatformFeeMinor),
		Settlement:     fromMinor(orderTotals.SettlementMinor),
		Expenses:       fromMinor(expenseMinor),
		OrderCount:     orderTotals.OrderCount,
		CancelledCount: orderTotals.CancelledCount,
	}, nil
}

// OrderValues returns the revenue of each non-cancelled order within r, summed
// over its lines.
func (s *SQLiteStore) OrderValues(ownerID string, r timeutil.Range) ([]decimal.Decimal, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}

	const query = `
SELECT SUM(revenue_minor)
FROM orders
WHERE owner_id = ? AND cancelled = 0 AND order_date BETWEEN ? AND ?
GROUP BY platform, order_id
ORDER BY MIN(created_at);
`
	minors := make([]int64, 0, 256)
	if err := s.db.Select(&minors, query, ownerID, r.FromKey(), r.ToKey()); err != nil {
		return nil, fmt.Errorf("query order values: %w", err)
	}

	values := make([]decimal.Decimal, 0, len(minors))
	for _, minor := range minors {
		values = append(values, fromMinor(minor))
	}
	return values, nil
}

// DailyTotals aggregates settlement and expenses per day within r. Days
// without activity are omitted.
func (s *SQLiteStore) DailyTotals(ownerID string, r timeutil.Range) ([]sales.DailyTotals, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}

	const query = `
SELECT
	day,
	SUM(settlement_minor) AS settlement_minor,
	SUM(expense_minor) AS expense_minor,
	SUM(order_count) AS order_count,
	SUM(expense_count) AS expense_count
FROM (
	SELECT order_date AS day, settlement_minor, 0 AS expense_minor, 1 AS order_count, 0 AS expense_count
	FROM orders
	WHERE owner_id = ? AND cancelled = 0 AND order_date BETWEEN ? AND ?
	UNION ALL
	SELECT spent_on AS day, 0, amount_minor, 0, 1
	FROM expenses
	WHERE owner_id = ? AND spent_on BETWEEN ? AND ?
)
GROUP BY day
ORDER BY day;
`
	var rows []struct {
		Day             string `db:"day"`
		SettlementMinor int64  `db:"settlement_minor"`
		ExpenseMinor    int64  `db:"expense_minor"`
		OrderCount      int    `db:"order_count"`
		ExpenseCount    int    `db:"expense_count"`
	}
	if err := s.db.Select(&rows, query, ownerID, r.FromKey(), r.ToKey(), ownerID, r.FromKey(), r.ToKey()); err != nil {
		return nil, fmt.Errorf("aggregate daily totals: %w", err)
	}

	out := make([]sales.DailyTotals, 0, len(rows))
	for _, row := range rows {
		out = append(out, sales.DailyTotals{
			Date:         row.Day,
			Settlement:   fromMinor(row.SettlementMinor),
			Expenses:     fromMinor(row.ExpenseMinor),
			OrderCount:   row.OrderCount,
			ExpenseCount: row.ExpenseCount,
		})
	}
	return out, nil
}

// Owners lists every owner with stored data.
func (s *SQLiteStore) Owners() ([]string, error) {
	owners := make([]string, 0, 4)
	const query = `SELECT owner_id FROM orders UNION SELECT owner_id FROM expenses ORDER BY 1;`
	if err := s.db.Select(&owners, query); err != nil {
		return nil, fmt.Errorf("query owners: %w", err)
	}
	return owners, nil
}

func requireOwner(ownerID string) error {
	if strings.TrimSpace(ownerID) == "" {
		return ErrOwnerRequired
	}
	return nil
}

func toMinor(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

func fromMinor(minor int64) decimal.Decimal {
	return decimal.New(minor, -2)
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
