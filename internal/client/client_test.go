package client

import (
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonvc/minibooks/internal/books"
	"github.com/simonvc/minibooks/internal/config"
	"github.com/simonvc/minibooks/internal/ledger"
	"github.com/simonvc/minibooks/internal/server"
	"github.com/simonvc/minibooks/internal/store"
)

var ctx = context.Background()

func newTestClient(t *testing.T, user string) *Client {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "books.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	cfg := config.ServerConfig{ReadTimeout: time.Second, WriteTimeout: time.Second, ShutdownTimeout: time.Second}
	ts := httptest.NewServer(server.New(books.New(st, zerolog.Nop()), cfg, zerolog.Nop()).Handler())
	t.Cleanup(ts.Close)
	return New(ts.URL, user)
}

func TestRoundTrip(t *testing.T) {
	c := newTestClient(t, "admin")
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	sup, err := c.CreateSupplier(ctx, books.ContactInput{Name: "Bolt Supply"})
	require.NoError(t, err)
	p, err := c.CreateProduct(ctx, books.ProductInput{Name: "Bolt", PurchasePrice: decimal.NewFromInt(2), SalePrice: decimal.NewFromInt(5)})
	require.NoError(t, err)

	next, err := c.NextInvoiceNumber(ctx, ledger.RecordPurchase, sup.Name)
	require.NoError(t, err)
	assert.Equal(t, "PINV-BOL-0001", next)

	pur, err := c.RecordPurchase(ctx, books.TradeDraft{
		CounterpartyID: sup.ID,
		Date:           day,
		Items:          []ledger.Item{{ProductID: p.ID, Quantity: 10, Price: decimal.NewFromInt(2)}},
		PaymentMethod:  ledger.PaymentCash,
	})
	require.NoError(t, err)
	assert.Equal(t, next, pur.InvoiceNumber)

	tb, err := c.TrialBalance(ctx, books.ReportQuery{})
	require.NoError(t, err)
	assert.True(t, tb.Balanced)
	assert.Equal(t, "20", tb.TotalDebit.String())

	led, err := c.AccountLedger(ctx, "101", books.ReportQuery{})
	require.NoError(t, err)
	assert.Equal(t, "-20", led.Balance.String())

	var buf bytes.Buffer
	require.NoError(t, c.ExportXLSX(ctx, books.ReportQuery{}, &buf))
	assert.NotZero(t, buf.Len())

	sum, err := c.Summary(ctx, books.SummaryQuery{})
	require.NoError(t, err)
	assert.Equal(t, "20", sum.TotalPurchases.String())
	assert.Empty(t, sum.LowStock)
	require.Len(t, sum.Monthly, 1)
	assert.Equal(t, "2024-05", sum.Monthly[0].Month)

	ten := int64(10)
	sum, err = c.Summary(ctx, books.SummaryQuery{LowStockThreshold: &ten})
	require.NoError(t, err)
	require.Len(t, sum.LowStock, 1)
	assert.Equal(t, p.ID, sum.LowStock[0].ProductID)
}

func TestUpdateExpenseDescription(t *testing.T) {
	c := newTestClient(t, "admin")
	e, err := c.RecordExpense(ctx, books.ExpenseDraft{
		Date:        time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC),
		Category:    "Utilities",
		Description: "Electricity",
		Amount:      decimal.NewFromInt(80),
	})
	require.NoError(t, err)

	updated, err := c.UpdateExpense(ctx, e.ID, e.Version, "May electricity")
	require.NoError(t, err)
	assert.Equal(t, "May electricity", updated.Description)
	assert.True(t, updated.Date.Equal(e.Date))

	_, err = c.UpdateExpense(ctx, e.ID, e.Version, "stale")
	assert.True(t, errors.Is(err, ledger.ErrConflict), "got %v", err)
}

func TestJournalAndApprovals(t *testing.T) {
	c := newTestClient(t, "admin")
	e, err := c.PostEntry(ctx, books.EntryDraft{
		Date:        time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC),
		Description: "Owner investment",
		Lines: []ledger.Line{
			ledger.DebitLine("101", decimal.NewFromInt(300)),
			ledger.CreditLine("301", decimal.NewFromInt(300)),
		},
	})
	require.NoError(t, err)

	pending, err := c.ListEntries(ctx, store.EntryFilter{Status: ledger.PendingApproval})
	require.NoError(t, err)
	require.Len(t, pending, 1)

	_, err = c.ApproveEntry(ctx, e.ID)
	require.NoError(t, err)
	_, err = c.ApproveEntry(ctx, e.ID)
	assert.True(t, errors.Is(err, ledger.ErrConflict), "got %v", err)

	ar, err := c.RequestDelete(ctx, ledger.RecordJournalEntry, e.ID)
	require.NoError(t, err)
	_, err = c.RejectRequest(ctx, ar.ID)
	require.NoError(t, err)

	closed, err := c.ListRequests(ctx, ledger.RequestRejected)
	require.NoError(t, err)
	assert.Len(t, closed, 1)
}

func TestErrorsCarryKind(t *testing.T) {
	c := newTestClient(t, "")

	_, err := c.TrialBalance(ctx, books.ReportQuery{})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 403, apiErr.Status)
	assert.ErrorIs(t, err, ledger.ErrForbidden)

	_, err = c.GetProduct(ctx, "missing")
	assert.ErrorIs(t, err, ledger.ErrNotFound)

	_, err = c.CreateCustomer(ctx, books.ContactInput{})
	require.ErrorAs(t, err, &apiErr)
	assert.ErrorIs(t, err, ledger.ErrValidation)
	assert.Equal(t, "required", apiErr.Fields["contactRequest.Name"])
}
