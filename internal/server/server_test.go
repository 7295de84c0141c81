package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/simonvc/minibooks/internal/books"
	"github.com/simonvc/minibooks/internal/config"
	"github.com/simonvc/minibooks/internal/ledger"
	"github.com/simonvc/minibooks/internal/report"
	"github.com/simonvc/minibooks/internal/store"
)

const admin = "admin"

func newTestServer(t *testing.T, rateLimit int) http.Handler {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "books.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	svc := books.New(st, zerolog.Nop())
	cfg := config.ServerConfig{
		Addr:            ":0",
		ReadTimeout:     time.Second,
		WriteTimeout:    time.Second,
		ShutdownTimeout: time.Second,
		RateLimit:       rateLimit,
	}
	return New(svc, cfg, zerolog.Nop()).Handler()
}

func do(t *testing.T, h http.Handler, method, path, user string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set(ActorHeader, user)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeInto[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func created[T any](t *testing.T, h http.Handler, path string, body any) T {
	t.Helper()
	rec := do(t, h, http.MethodPost, path, admin, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeInto[T](t, rec)
}

type seeded struct {
	customer ledger.Customer
	product  ledger.Product
}

// seed buys 5 widgets at 10 on credit.
func seed(t *testing.T, h http.Handler) seeded {
	t.Helper()
	c := created[ledger.Customer](t, h, "/api/v1/customers", map[string]any{"name": "Acme Corp", "email": "ops@acme.test"})
	sp := created[ledger.Supplier](t, h, "/api/v1/suppliers", map[string]any{"name": "Widget Works"})
	p := created[ledger.Product](t, h, "/api/v1/products", map[string]any{"name": "Widget", "purchase_price": "10", "sale_price": "20"})
	created[ledger.Purchase](t, h, "/api/v1/purchases", map[string]any{
		"counterparty_id": sp.ID,
		"date":            "2024-03-01",
		"payment_method":  "credit",
		"items":           []map[string]any{{"product_id": p.ID, "quantity": 5, "price": "10"}},
	})
	return seeded{customer: c, product: p}
}

func TestHealthAndSecurityHeaders(t *testing.T) {
	h := newTestServer(t, 0)
	rec := do(t, h, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestSaleFlow(t *testing.T) {
	h := newTestServer(t, 0)
	fx := seed(t, h)

	sale := created[ledger.Sale](t, h, "/api/v1/sales", map[string]any{
		"counterparty_id": fx.customer.ID,
		"date":            "2024-03-02",
		"payment_method":  "Cash",
		"items":           []map[string]any{{"product_id": fx.product.ID, "quantity": 2, "price": "20"}},
	})
	assert.Equal(t, "INV-ACM-0001", sale.InvoiceNumber)
	assert.True(t, decimal.RequireFromString("40").Equal(sale.Total))

	rec := do(t, h, http.MethodGet, "/api/v1/products/"+fx.product.ID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 3, decodeInto[ledger.Product](t, rec).Stock)

	rec = do(t, h, http.MethodGet, "/api/v1/reports/trial-balance", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	tb := decodeInto[report.TrialBalance](t, rec)
	assert.True(t, tb.Balanced)
	assert.Equal(t, "110", tb.TotalDebit.String())

	rec = do(t, h, http.MethodGet, "/api/v1/reports/profit-and-loss?from=2024-03-01&to=2024-03-31", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	pl := decodeInto[report.ProfitAndLoss](t, rec)
	assert.Equal(t, "40", pl.Revenue.String())
	assert.Equal(t, "20", pl.GrossProfit.String())

	rec = do(t, h, http.MethodGet, "/api/v1/invoices/next?type=sale&counterparty=Acme+Corp", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "INV-ACM-0002", decodeInto[map[string]string](t, rec)["invoice_number"])
}

func TestSummaryReport(t *testing.T) {
	h := newTestServer(t, 0)
	fx := seed(t, h)
	created[ledger.Sale](t, h, "/api/v1/sales", map[string]any{
		"counterparty_id": fx.customer.ID,
		"date":            "2024-04-02",
		"payment_method":  "Cash",
		"items":           []map[string]any{{"product_id": fx.product.ID, "quantity": 2, "price": "20"}},
	})

	rec := do(t, h, http.MethodGet, "/api/v1/reports/summary", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	sum := decodeInto[report.Summary](t, rec)
	assert.True(t, decimal.RequireFromString("40").Equal(sum.TotalSales))
	assert.True(t, decimal.RequireFromString("50").Equal(sum.TotalPurchases))
	assert.Equal(t, 1, sum.ProductCount)
	require.Len(t, sum.LowStock, 1)
	require.Len(t, sum.Monthly, 2)
	assert.Equal(t, "2024-03", sum.Monthly[0].Month)
	assert.Equal(t, "2024-04", sum.Monthly[1].Month)

	rec = do(t, h, http.MethodGet, "/api/v1/reports/summary?from=2024-04-01&low_stock=1", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	sum = decodeInto[report.Summary](t, rec)
	assert.True(t, sum.TotalPurchases.IsZero())
	assert.Empty(t, sum.LowStock)
	require.Len(t, sum.Monthly, 1)

	rec = do(t, h, http.MethodGet, "/api/v1/reports/summary?low_stock=-3", admin, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestErrorKinds(t *testing.T) {
	h := newTestServer(t, 0)
	fx := seed(t, h)

	tests := []struct {
		name   string
		method string
		path   string
		user   string
		body   any
		status int
		kind   string
		msg    string
	}{
		{
			name: "insufficient stock", method: http.MethodPost, path: "/api/v1/sales", user: admin,
			body: map[string]any{
				"counterparty_id": fx.customer.ID, "date": "2024-03-02", "payment_method": "Cash",
				"items": []map[string]any{{"product_id": fx.product.ID, "quantity": 9, "price": "20"}},
			},
			status: http.StatusBadRequest, kind: "validation", msg: "Insufficient stock for Widget. Available: 5",
		},
		{
			name: "unknown entry", method: http.MethodGet, path: "/api/v1/journal/nope",
			status: http.StatusNotFound, kind: "not_found",
		},
		{
			name: "no actor", method: http.MethodGet, path: "/api/v1/reports/balance-sheet",
			status: http.StatusForbidden, kind: "forbidden",
		},
		{
			name: "unbalanced entry", method: http.MethodPost, path: "/api/v1/journal", user: admin,
			body: map[string]any{
				"date": "2024-03-02", "description": "typo",
				"lines": []map[string]any{
					{"account_id": "101", "debit": "100"},
					{"account_id": "301", "credit": "99"},
				},
			},
			status: http.StatusBadRequest, kind: "validation", msg: "difference 1.00",
		},
		{
			name: "bad record type", method: http.MethodPost, path: "/api/v1/approvals", user: admin,
			body:   map[string]any{"record_type": "invoice", "record_id": "x"},
			status: http.StatusBadRequest, kind: "validation",
		},
		{
			name: "bad date", method: http.MethodGet, path: "/api/v1/reports/trial-balance?from=March", user: admin,
			status: http.StatusBadRequest, kind: "validation",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, tt.method, tt.path, tt.user, tt.body)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			resp := decodeInto[ErrorResponse](t, rec)
			assert.Equal(t, tt.kind, resp.Kind)
			if tt.msg != "" {
				assert.Contains(t, resp.Error, tt.msg)
			}
		})
	}
}

func TestRequestValidation(t *testing.T) {
	h := newTestServer(t, 0)

	rec := do(t, h, http.MethodPost, "/api/v1/customers", admin, map[string]any{"email": "not-an-email"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeInto[ErrorResponse](t, rec)
	assert.Equal(t, "required", resp.Fields["contactRequest.Name"])
	assert.Equal(t, "email", resp.Fields["contactRequest.Email"])

	rec = do(t, h, http.MethodPost, "/api/v1/customers", admin, map[string]any{"name": "x", "colour": "red"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid JSON")
}

func TestJournalApproveTwiceConflicts(t *testing.T) {
	h := newTestServer(t, 0)
	e := created[ledger.JournalEntry](t, h, "/api/v1/journal", map[string]any{
		"date": "2024-03-01", "description": "Owner investment",
		"lines": []map[string]any{
			{"account_id": "101", "debit": "500"},
			{"account_id": "301", "credit": "500"},
		},
	})
	assert.Equal(t, ledger.PendingApproval, e.Status)

	rec := do(t, h, http.MethodGet, "/api/v1/journal?status=pending_approval", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeInto[[]ledger.JournalEntry](t, rec), 1)

	rec = do(t, h, http.MethodPost, "/api/v1/journal/"+e.ID+"/approve", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, ledger.Approved, decodeInto[ledger.JournalEntry](t, rec).Status)

	rec = do(t, h, http.MethodPost, "/api/v1/journal/"+e.ID+"/approve", admin, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestDeletionRequestFlow(t *testing.T) {
	h := newTestServer(t, 0)
	fx := seed(t, h)

	ar := created[ledger.ApprovalRequest](t, h, "/api/v1/approvals", map[string]any{
		"record_type": "customer", "record_id": fx.customer.ID,
	})
	assert.Equal(t, ledger.RequestPending, ar.Status)

	rec := do(t, h, http.MethodPost, "/api/v1/approvals", admin, map[string]any{
		"record_type": "customer", "record_id": fx.customer.ID,
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/v1/approvals/"+ar.ID+"/approve", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/v1/customers", "", nil)
	assert.Empty(t, decodeInto[[]ledger.Customer](t, rec))
	rec = do(t, h, http.MethodGet, "/api/v1/customers?deleted=true", "", nil)
	assert.Len(t, decodeInto[[]ledger.Customer](t, rec), 1)

	rec = do(t, h, http.MethodGet, "/api/v1/activity?limit=1", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	acts := decodeInto[[]ledger.ActivityLog](t, rec)
	require.Len(t, acts, 1)
	assert.Equal(t, "Approved Deletion", acts[0].Action)
}

func TestUpdateCustomerHistory(t *testing.T) {
	h := newTestServer(t, 0)
	fx := seed(t, h)

	rec := do(t, h, http.MethodPut, "/api/v1/customers/"+fx.customer.ID, admin, map[string]any{
		"name": "Acme Corp", "email": "billing@acme.test", "version": fx.customer.Version,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodPut, "/api/v1/customers/"+fx.customer.ID, admin, map[string]any{
		"name": "Acme", "version": fx.customer.Version,
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/v1/history/customer/"+fx.customer.ID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	edits := decodeInto[[]ledger.EditLog](t, rec)
	require.Len(t, edits, 1)
	assert.Equal(t, "email", edits[0].Field)
	assert.Equal(t, "billing@acme.test", edits[0].NewValue)
}

func TestExportXLSX(t *testing.T) {
	h := newTestServer(t, 0)
	seed(t, h)

	rec := do(t, h, http.MethodGet, "/api/v1/reports/export.xlsx", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Trial Balance", "Profit and Loss", "Balance Sheet"}, f.GetSheetList())
}

func TestBackupRoundTrip(t *testing.T) {
	h := newTestServer(t, 0)
	seed(t, h)

	rec := do(t, h, http.MethodGet, "/api/v1/backup", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	snap := decodeInto[store.Snapshot](t, rec)
	require.Len(t, snap.Products, 1)

	other := newTestServer(t, 0)
	rec = do(t, other, http.MethodPost, "/api/v1/backup/restore", admin, snap)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = do(t, other, http.MethodGet, "/api/v1/reports/integrity", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	ir := decodeInto[books.IntegrityReport](t, rec)
	assert.True(t, ir.OK())
}

func TestRateLimit(t *testing.T) {
	h := newTestServer(t, 2)
	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/healthz", "", nil).Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, do(t, h, http.MethodGet, "/healthz", "", nil).Code)
}
