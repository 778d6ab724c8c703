// Package web serves the dashboard's local JSON API. The owner of each request
// comes from the X-Owner-ID header and every store call is scoped to it.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"shopdash/config"
	"shopdash/importer"
	"shopdash/internal/timeutil"
	"shopdash/output"
	"shopdash/reconcile"
	"shopdash/sales"
	"shopdash/storage"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"
)

const OwnerHeader = "X-Owner-ID"

type ownerKey struct{}

type Server struct {
	store  *storage.SQLiteStore
	cfg    config.Config
	loc    *time.Location
	now    func() time.Time
	router chi.Router
}

type importResponse struct {
	BatchID        string `json:"batchId"`
	FilesProcessed int    `json:"filesProcessed"`
	RowsRead       int    `json:"rowsRead"`
	RowsMapped     int    `json:"rowsMapped"`
	RowsSkipped    int    `json:"rowsSkipped"`
	RowsPersisted  int    `json:"rowsPersisted"`
}

type deleteBatchResponse struct {
	BatchID     string `json:"batchId"`
	RowsDeleted int64  `json:"rowsDeleted"`
}

type orderView struct {
	Platform    string          `json:"platform"`
	OrderID     string          `json:"orderId"`
	Status      string          `json:"status"`
	Cancelled   bool            `json:"cancelled"`
	CreatedAt   time.Time       `json:"createdAt"`
	ProductName string          `json:"productName"`
	SKU         string          `json:"sku"`
	Quantity    int             `json:"quantity"`
	Revenue     decimal.Decimal `json:"revenue"`
	PlatformFee decimal.Decimal `json:"platformFee"`
	Settlement  decimal.Decimal `json:"settlement"`
	SourceFile  string          `json:"sourceFile"`
	ImportBatch string          `json:"importBatch"`
}

type ordersResponse struct {
	From   string      `json:"from"`
	To     string      `json:"to"`
	Orders []orderView `json:"orders"`
}

type expenseView struct {
	ID          int64           `json:"id"`
	Date        string          `json:"date"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

type expensesResponse struct {
	From     string        `json:"from"`
	To       string        `json:"to"`
	Expenses []expenseView `json:"expenses"`
}

type expenseRequest struct {
	Date        string          `json:"date"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

type cashflowResponse struct {
	*reconcile.Result
	Unsettled []orderView `json:"unsettled"`
}

func NewServer(store *storage.SQLiteStore, cfg config.Config) (http.Handler, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	server := &Server{
		store: store,
		cfg:   cfg,
		loc:   loc,
		now:   time.Now,
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	router.Route("/api", func(r chi.Router) {
		r.Use(server.withOwner)
		r.Get("/summary", server.handleSummary)
		r.Get("/orders", server.handleOrders)
		r.Get("/cashflow", server.handleCashflow)
		r.Post("/import", server.handleImport)
		r.Delete("/imports/{batch}", server.handleDeleteImport)
		r.Get("/expenses", server.handleExpenses)
		r.Post("/expenses", server.handleExpenseCreate)
		r.Delete("/expenses/{id}", server.handleExpenseDelete)
	})
	server.router = router

	return server, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) withOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		owner := strings.TrimSpace(r.Header.Get(OwnerHeader))
		if owner == "" {
			owner = strings.TrimSpace(s.cfg.Owner.ID)
		}
		if owner == "" {
			http.Error(w, "missing "+OwnerHeader+" header", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ownerKey{}, owner)))
	})
}

// OwnerFromContext returns the owner resolved for the request.
func OwnerFromContext(ctx context.Context) string {
	owner, _ := ctx.Value(ownerKey{}).(string)
	return owner
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	owner := OwnerFromContext(r.Context())
	dateRange, err := s.parseRange(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	totals, err := s.store.Totals(owner, dateRange)
	if err != nil {
		http.Error(w, err.Error(), storeErrorStatus(err))
		return
	}
	values, err := s.store.OrderValues(owner, dateRange)
	if err != nil {
		http.Error(w, err.Error(), storeErrorStatus(err))
		return
	}
	summary, err := output.BuildSummary(dateRange, totals, values)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleOrders(w http.ResponseWriter, r *http.Request) {
	owner := OwnerFromContext(r.Context())
	dateRange, err := s.parseRange(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	orders, err := s.store.ListOrders(owner, dateRange)
	if err != nil {
		http.Error(w, err.Error(), storeErrorStatus(err))
		return
	}
	writeJSON(w, http.StatusOK, ordersResponse{
		From:   dateRange.FromKey(),
		To:     dateRange.ToKey(),
		Orders: orderViews(orders),
	})
}

func (s *Server) handleCashflow(w http.ResponseWriter, r *http.Request) {
	owner := OwnerFromContext(r.Context())
	dateRange, err := s.parseRange(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	opening := decimal.Zero
	if raw := strings.TrimSpace(r.URL.Query().Get("opening")); raw != "" {
		opening, err = decimal.NewFromString(raw)
		if err != nil {
			http.Error(w, fmt.Sprintf("invalid opening balance %q", raw), http.StatusBadRequest)
			return
		}
	}

	result, err := reconcile.Run(s.store, owner, dateRange, opening)
	if err != nil {
		http.Error(w, err.Error(), storeErrorStatus(err))
		return
	}
	writeJSON(w, http.StatusOK, cashflowResponse{Result: result, Unsettled: orderViews(result.Unsettled)})
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	owner := OwnerFromContext(r.Context())
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, fmt.Sprintf("parse multipart form: %v", err), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file upload", http.StatusBadRequest)
		return
	}
	defer file.Close()

	tmp, err := os.CreateTemp("", tempUploadPattern(header.Filename))
	if err != nil {
		http.Error(w, fmt.Sprintf("create temp upload: %v", err), http.StatusInternalServerError)
		return
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, file); err != nil {
		_ = tmp.Close()
		http.Error(w, fmt.Sprintf("save upload: %v", err), http.StatusInternalServerError)
		return
	}
	if err := tmp.Close(); err != nil {
		http.Error(w, fmt.Sprintf("close upload temp file: %v", err), http.StatusInternalServerError)
		return
	}

	result, err := importer.Run([]string{tmpPath}, s.cfg, importer.RunOptions{
		OwnerID:    owner,
		MapperName: strings.TrimSpace(r.FormValue("mapper")),
		SourceName: header.Filename,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	inserted, err := s.store.InsertOrders(owner, result.Orders)
	if err != nil {
		http.Error(w, fmt.Sprintf("insert imported orders: %v", err), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, importResponse{
		BatchID:        result.BatchID,
		FilesProcessed: result.FilesProcessed,
		RowsRead:       result.RowsRead,
		RowsMapped:     result.RowsMapped,
		RowsSkipped:    result.RowsSkipped,
		RowsPersisted:  inserted,
	})
}

func (s *Server) handleDeleteImport(w http.ResponseWriter, r *http.Request) {
	owner := OwnerFromContext(r.Context())
	batch := strings.TrimSpace(chi.URLParam(r, "batch"))

	deleted, err := s.store.DeleteImportBatch(owner, batch)
	if err != nil {
		http.Error(w, err.Error(), storeErrorStatus(err))
		return
	}
	if deleted == 0 {
		http.Error(w, "import batch not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, deleteBatchResponse{BatchID: batch, RowsDeleted: deleted})
}

func (s *Server) handleExpenses(w http.ResponseWriter, r *http.Request) {
	owner := OwnerFromContext(r.Context())
	dateRange, err := s.parseRange(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	expenses, err := s.store.ListExpenses(owner, dateRange)
	if err != nil {
		http.Error(w, err.Error(), storeErrorStatus(err))
		return
	}

	views := make([]expenseView, 0, len(expenses))
	for _, expense := range expenses {
		views = append(views, toExpenseView(expense))
	}
	writeJSON(w, http.StatusOK, expensesResponse{From: dateRange.FromKey(), To: dateRange.ToKey(), Expenses: views})
}

func (s *Server) handleExpenseCreate(w http.ResponseWriter, r *http.Request) {
	owner := OwnerFromContext(r.Context())

	var body expenseRequest
	if err := decodeJSON(r, &body); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	expense, err := s.buildExpense(body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	id, err := s.store.InsertExpense(owner, expense)
	if err != nil {
		http.Error(w, err.Error(), storeErrorStatus(err))
		return
	}
	expense.ID = id
	writeJSON(w, http.StatusCreated, toExpenseView(expense))
}

func (s *Server) handleExpenseDelete(w http.ResponseWriter, r *http.Request) {
	owner := OwnerFromContext(r.Context())
	id, err := parsePositiveInt64(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid expense id", http.StatusBadRequest)
		return
	}

	if err := s.store.DeleteExpense(owner, id); err != nil {
		http.Error(w, err.Error(), storeErrorStatus(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) parseRange(r *http.Request) (timeutil.Range, error) {
	query := r.URL.Query()
	return timeutil.ParseRange(query.Get("range"), query.Get("from"), query.Get("to"), s.now().In(s.loc))
}

func (s *Server) buildExpense(body expenseRequest) (sales.Expense, error) {
	day, err := time.ParseInLocation(timeutil.DayLayout, strings.TrimSpace(body.Date), s.loc)
	if err != nil {
		return sales.Expense{}, fmt.Errorf("invalid date format (expected YYYY-MM-DD)")
	}
	if strings.TrimSpace(body.Category) == "" {
		return sales.Expense{}, fmt.Errorf("category is required")
	}
	if !body.Amount.IsPositive() {
		return sales.Expense{}, fmt.Errorf("amount must be > 0")
	}
	return sales.Expense{
		SpentOn:     day,
		Category:    body.Category,
		Description: body.Description,
		Amount:      body.Amount.Round(2),
	}, nil
}

func orderViews(orders []sales.Order) []orderView {
	views := make([]orderView, 0, len(orders))
	for _, order := range orders {
		views = append(views, orderView{
			Platform:    order.Platform,
			OrderID:     order.OrderID,
			Status:      order.Status,
			Cancelled:   order.Cancelled(),
			CreatedAt:   order.CreatedAt,
			ProductName: order.ProductName,
			SKU:         order.SKU,
			Quantity:    order.Quantity,
			Revenue:     order.Revenue,
			PlatformFee: order.PlatformFee,
			Settlement:  order.Settlement,
			SourceFile:  order.SourceFile,
			ImportBatch: order.ImportBatch,
		})
	}
	return views
}

func toExpenseView(expense sales.Expense) expenseView {
	return expenseView{
		ID:          expense.ID,
		Date:        expense.Day(),
		Category:    strings.TrimSpace(expense.Category),
		Description: strings.TrimSpace(expense.Description),
		Amount:      expense.Amount,
	}
}

func storeErrorStatus(err error) int {
	switch {
	case errors.Is(err, storage.ErrOwnerRequired):
		return http.StatusUnauthorized
	case errors.Is(err, storage.ErrExpenseNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func parsePositiveInt64(value string) (int64, error) {
	parsed, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0, err
	}
	if parsed <= 0 {
		return 0, fmt.Errorf("value must be > 0")
	}
	return parsed, nil
}

func decodeJSON(r *http.Request, out any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(out); err != nil {
		return err
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("request body must contain a single JSON object")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func tempUploadPattern(filename string) string {
	base := filepath.Base(strings.TrimSpace(filename))
	if base == "" || base == "." {
		return "upload-*"
	}

	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if stem == "" {
		stem = "upload"
	}
	if ext == "" {
		return stem + "-*"
	}
	return stem + "-*" + ext
}
