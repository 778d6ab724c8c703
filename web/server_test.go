package web

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"shopdash/config"
	"shopdash/sales"
	"shopdash/storage"

	"github.com/shopspring/decimal"
)

const shopeeCSV = "Order ID,Order Status,Order Creation Date,Product Name,Quantity,Product Subtotal,Commission Fee\n" +
	"2603AAA,Completed,2026-03-02 09:00,Toner,2,600,30\n" +
	"2603AAB,Cancelled,2026-03-02 10:00,Toner,1,300,0\n"

func testConfig() config.Config {
	return config.Config{
		Owner:    config.OwnerConfig{ID: "default"},
		Database: config.DatabaseConfig{Path: "unused.db"},
		Currency: "THB",
		Import:   config.ImportConfig{Timezone: "Asia/Bangkok", MaxRows: 1000},
		Server:   config.ServerConfig{Port: 8080},
		Rules: []config.Rule{
			{Name: "sp", Mapper: "shopee", FileTemplate: "Order.all.*.csv"},
		},
	}
}

func openTestStore(t *testing.T) *storage.SQLiteStore {
	t.Helper()
	store, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "web.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func newTestServer(t *testing.T, store *storage.SQLiteStore) *httptest.Server {
	t.Helper()
	handler, err := NewServer(store, testConfig())
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return ts
}

func doRequest(t *testing.T, method, url, owner, contentType string, body io.Reader) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if owner != "" {
		req.Header.Set(OwnerHeader, owner)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	return resp
}

func uploadCSV(t *testing.T, ts *httptest.Server, owner, filename, content string) *http.Response {
	t.Helper()
	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := form.Close(); err != nil {
		t.Fatalf("close form: %v", err)
	}
	return doRequest(t, http.MethodPost, ts.URL+"/api/import", owner, form.FormDataContentType(), &body)
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestServer_ImportThenSummaryIsOwnerScoped(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ts := newTestServer(t, store)

	resp := uploadCSV(t, ts, "shop-a", "Order.all.20260301_20260331.csv", shopeeCSV)
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("expected 200 from import, got %d: %s", resp.StatusCode, body)
	}
	var imported importResponse
	decodeBody(t, resp, &imported)
	if imported.RowsMapped != 2 || imported.RowsPersisted != 2 || imported.BatchID == "" {
		t.Fatalf("unexpected import response: %+v", imported)
	}

	resp = doRequest(t, http.MethodGet, ts.URL+"/api/summary?from=2026-03-01&to=2026-03-31", "shop-a", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from summary, got %d", resp.StatusCode)
	}
	var summary struct {
		Revenue        decimal.Decimal `json:"revenue"`
		Settlement     decimal.Decimal `json:"settlement"`
		OrderCount     int             `json:"orderCount"`
		CancelledCount int             `json:"cancelledCount"`
	}
	decodeBody(t, resp, &summary)
	if !summary.Revenue.Equal(decimal.NewFromInt(600)) || !summary.Settlement.Equal(decimal.NewFromInt(570)) {
		t.Fatalf("unexpected summary amounts: %+v", summary)
	}
	if summary.OrderCount != 1 || summary.CancelledCount != 1 {
		t.Fatalf("unexpected summary counts: %+v", summary)
	}

	resp = doRequest(t, http.MethodGet, ts.URL+"/api/orders?from=2026-03-01&to=2026-03-31", "shop-b", "", nil)
	var other ordersResponse
	decodeBody(t, resp, &other)
	if len(other.Orders) != 0 {
		t.Fatalf("expected shop-b to see no orders, got %d", len(other.Orders))
	}

	resp = doRequest(t, http.MethodDelete, ts.URL+"/api/imports/"+imported.BatchID, "shop-b", "", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 deleting another owner's batch, got %d", resp.StatusCode)
	}

	resp = doRequest(t, http.MethodDelete, ts.URL+"/api/imports/"+imported.BatchID, "shop-a", "", nil)
	var deleted deleteBatchResponse
	decodeBody(t, resp, &deleted)
	if deleted.RowsDeleted != 2 {
		t.Fatalf("expected 2 deleted rows, got %+v", deleted)
	}
}

func TestServer_ListsImportedOrders(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, openTestStore(t))

	resp := uploadCSV(t, ts, "shop-a", "Order.all.20260301_20260331.csv", shopeeCSV)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from import, got %d", resp.StatusCode)
	}

	resp = doRequest(t, http.MethodGet, ts.URL+"/api/orders?from=2026-03-02&to=2026-03-02", "shop-a", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from orders, got %d", resp.StatusCode)
	}
	var listed ordersResponse
	decodeBody(t, resp, &listed)
	if listed.From != "2026-03-02" || listed.To != "2026-03-02" {
		t.Fatalf("unexpected range: %s..%s", listed.From, listed.To)
	}
	if len(listed.Orders) != 2 {
		t.Fatalf("expected 2 orders, got %+v", listed.Orders)
	}
	first, second := listed.Orders[0], listed.Orders[1]
	if first.OrderID != "2603AAA" || first.Platform != "shopee" || first.Cancelled {
		t.Fatalf("unexpected first order: %+v", first)
	}
	if !first.Settlement.Equal(decimal.NewFromInt(570)) || first.SourceFile != "Order.all.20260301_20260331.csv" {
		t.Fatalf("unexpected first order amounts: %+v", first)
	}
	if second.OrderID != "2603AAB" || !second.Cancelled {
		t.Fatalf("expected cancelled second order, got %+v", second)
	}

	resp = doRequest(t, http.MethodGet, ts.URL+"/api/orders?from=2026-03-03&to=2026-03-31", "shop-a", "", nil)
	var later ordersResponse
	decodeBody(t, resp, &later)
	if len(later.Orders) != 0 {
		t.Fatalf("expected no orders after 2026-03-02, got %+v", later.Orders)
	}
}

func TestServer_ImportMissingColumnsIsBadRequest(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, openTestStore(t))

	resp := uploadCSV(t, ts, "shop-a", "Order.all.broken.csv", "Order ID,Status\n1,Completed\n")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "Order Creation Date") {
		t.Fatalf("expected missing column in message, got %s", body)
	}
}

func TestServer_ExpensesLifecycle(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, openTestStore(t))

	payload := `{"date":"2026-03-05","category":"ads","description":"boost","amount":"120.50"}`
	resp := doRequest(t, http.MethodPost, ts.URL+"/api/expenses", "shop-a", "application/json", strings.NewReader(payload))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var created expenseView
	decodeBody(t, resp, &created)
	if created.ID == 0 || created.Date != "2026-03-05" {
		t.Fatalf("unexpected created expense: %+v", created)
	}

	resp = doRequest(t, http.MethodGet, ts.URL+"/api/expenses?from=2026-03-01&to=2026-03-31", "shop-a", "", nil)
	var listed expensesResponse
	decodeBody(t, resp, &listed)
	if len(listed.Expenses) != 1 || !listed.Expenses[0].Amount.Equal(decimal.RequireFromString("120.50")) {
		t.Fatalf("unexpected expenses: %+v", listed)
	}

	resp = doRequest(t, http.MethodGet, ts.URL+"/api/cashflow?from=2026-03-05&to=2026-03-05&opening=1000", "shop-a", "", nil)
	var cashflow struct {
		Closing decimal.Decimal `json:"closing"`
		Days    []struct {
			Date    string          `json:"date"`
			Outflow decimal.Decimal `json:"outflow"`
		} `json:"days"`
	}
	decodeBody(t, resp, &cashflow)
	if len(cashflow.Days) != 1 || !cashflow.Closing.Equal(decimal.RequireFromString("879.50")) {
		t.Fatalf("unexpected cashflow: %+v", cashflow)
	}

	resp = doRequest(t, http.MethodDelete, ts.URL+"/api/expenses/"+strconv.FormatInt(created.ID, 10), "shop-b", "", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for another owner, got %d", resp.StatusCode)
	}

	resp = doRequest(t, http.MethodDelete, ts.URL+"/api/expenses/"+strconv.FormatInt(created.ID, 10), "shop-a", "", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
}

func TestServer_RejectsInvalidInput(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, openTestStore(t))

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{name: "bad range", method: http.MethodGet, path: "/api/summary?range=fortnight", want: http.StatusBadRequest},
		{name: "bad orders range", method: http.MethodGet, path: "/api/orders?range=fortnight", want: http.StatusBadRequest},
		{name: "bad expenses range", method: http.MethodGet, path: "/api/expenses?range=fortnight", want: http.StatusBadRequest},
		{name: "reversed dates", method: http.MethodGet, path: "/api/orders?from=2026-03-05&to=2026-03-01", want: http.StatusBadRequest},
		{name: "bad opening", method: http.MethodGet, path: "/api/cashflow?opening=abc", want: http.StatusBadRequest},
		{name: "bad expense date", method: http.MethodPost, path: "/api/expenses", body: `{"date":"05/03/2026","category":"ads","amount":"1"}`, want: http.StatusBadRequest},
		{name: "zero expense", method: http.MethodPost, path: "/api/expenses", body: `{"date":"2026-03-05","category":"ads","amount":"0"}`, want: http.StatusBadRequest},
		{name: "unknown field", method: http.MethodPost, path: "/api/expenses", body: `{"date":"2026-03-05","category":"ads","amount":"1","extra":true}`, want: http.StatusBadRequest},
		{name: "bad expense id", method: http.MethodDelete, path: "/api/expenses/abc", want: http.StatusBadRequest},
		{name: "missing upload", method: http.MethodPost, path: "/api/import", want: http.StatusBadRequest},
	}

	for _, tc := range tests {
		var body io.Reader
		contentType := ""
		if tc.body != "" {
			body = strings.NewReader(tc.body)
			contentType = "application/json"
		}
		resp := doRequest(t, tc.method, ts.URL+tc.path, "shop-a", contentType, body)
		resp.Body.Close()
		if resp.StatusCode != tc.want {
			t.Fatalf("%s: expected %d, got %d", tc.name, tc.want, resp.StatusCode)
		}
	}
}

func TestServer_FallsBackToConfiguredOwner(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	order := sales.Order{
		OwnerID:     "default",
		Platform:    sales.PlatformShopee,
		OrderID:     "X1",
		Status:      "Completed",
		CreatedAt:   time.Date(2026, 3, 2, 9, 0, 0, 0, time.FixedZone("ICT", 7*60*60)),
		Quantity:    1,
		Revenue:     decimal.NewFromInt(10),
		Settlement:  decimal.NewFromInt(10),
		ImportBatch: "b",
	}
	if _, err := store.InsertOrders("default", []sales.Order{order}); err != nil {
		t.Fatalf("insert order: %v", err)
	}
	ts := newTestServer(t, store)

	resp := doRequest(t, http.MethodGet, ts.URL+"/api/orders?from=2026-03-01&to=2026-03-31", "", "", nil)
	var listed ordersResponse
	decodeBody(t, resp, &listed)
	if len(listed.Orders) != 1 || listed.Orders[0].OrderID != "X1" {
		t.Fatalf("expected configured owner's order, got %+v", listed.Orders)
	}
}

func TestTempUploadPattern(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"Order.all.csv":    "Order.all-*.csv",
		"":                 "upload-*",
		"../x/TikTok.xlsx": "TikTok-*.xlsx",
		"noext":            "noext-*",
		".xlsx":            "upload-*.xlsx",
	}
	for input, want := range tests {
		if got := tempUploadPattern(input); got != want {
			t.Fatalf("tempUploadPattern(%q): want %q, got %q", input, want, got)
		}
	}
}
