package posting

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/simonvc/minibooks/internal/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func chart() []ledger.Account {
	accounts := make([]ledger.Account, len(ledger.DefaultChart))
	for i, c := range ledger.DefaultChart {
		accounts[i] = ledger.Account{ID: c.ID, Name: c.Name, Type: c.Type}
	}
	return accounts
}

func widgets(stock int64) map[string]ledger.Product {
	return map[string]ledger.Product{
		"p1": {ID: "p1", Name: "Widget", PurchasePrice: d("10"), SalePrice: d("20"), Stock: stock, Lifecycle: ledger.Active},
	}
}

func sale(method ledger.PaymentMethod, taxRate string, items ...ledger.Item) *ledger.Sale {
	s := &ledger.Sale{
		InvoiceNumber: "INV-ACM-0001",
		CustomerID:    "c1",
		Date:          time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Items:         items,
		PaymentMethod: method,
	}
	s.Totals = ledger.ComputeTotals(items, d(taxRate))
	return s
}

type side struct {
	account string
	debit   string
	credit  string
}

func assertLines(t *testing.T, want []side, got []ledger.Line) {
	t.Helper()
	require.Len(t, got, len(want))
	for i, w := range want {
		assert.Equal(t, w.account, got[i].AccountID, "line %d account", i)
		assert.True(t, got[i].Debit.Equal(d(w.debit)), "line %d debit %s", i, got[i].Debit)
		assert.True(t, got[i].Credit.Equal(d(w.credit)), "line %d credit %s", i, got[i].Credit)
	}
}

func balanced(t *testing.T, lines []ledger.Line) {
	t.Helper()
	e := &ledger.JournalEntry{Description: "check", Date: time.Now(), Lines: lines}
	require.NoError(t, e.Validate())
}

func TestSaleCashNoTax(t *testing.T) {
	s := sale(ledger.PaymentCash, "0", ledger.Item{ProductID: "p1", Quantity: 2, Price: d("20")})

	post, err := Sale(s, widgets(5), ledger.DefaultAccountMap())
	require.NoError(t, err)

	assertLines(t, []side{
		{"101", "40", "0"},
		{"401", "0", "40"},
		{"501", "20", "0"},
		{"103", "0", "20"},
	}, post.Lines)
	balanced(t, post.Lines)

	assert.True(t, post.COGS.Equal(d("20")))
	assert.Equal(t, []StockMove{{ProductID: "p1", Delta: -2}}, post.StockMoves)
	assert.Equal(t, "c1", post.Lines[0].CustomerID)
	assert.Equal(t, "p1", post.Lines[3].ProductID)
	assert.Equal(t, int64(2), post.Lines[3].Quantity)
}

func TestSaleCreditWithTax(t *testing.T) {
	s := sale(ledger.PaymentCredit, "10", ledger.Item{ProductID: "p1", Quantity: 1, Price: d("20")})

	post, err := Sale(s, widgets(5), ledger.DefaultAccountMap())
	require.NoError(t, err)

	assertLines(t, []side{
		{"102", "22", "0"},
		{"401", "0", "20"},
		{"202", "0", "2"},
		{"501", "10", "0"},
		{"103", "0", "10"},
	}, post.Lines)
	balanced(t, post.Lines)
}

func TestSaleInsufficientStock(t *testing.T) {
	s := sale(ledger.PaymentCash, "0",
		ledger.Item{ProductID: "p1", Quantity: 3, Price: d("20")},
		ledger.Item{ProductID: "p1", Quantity: 3, Price: d("20")},
	)

	post, err := Sale(s, widgets(5), ledger.DefaultAccountMap())
	assert.Nil(t, post)

	var se *ledger.InsufficientStockError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, int64(5), se.Available)
	assert.Equal(t, int64(6), se.Requested)
	assert.Equal(t, "Insufficient stock for Widget. Available: 5", err.Error())
}

func TestSaleDeletedProduct(t *testing.T) {
	products := widgets(5)
	p := products["p1"]
	p.Lifecycle = ledger.Deleted
	products["p1"] = p

	_, err := Sale(sale(ledger.PaymentCash, "0", ledger.Item{ProductID: "p1", Quantity: 1, Price: d("20")}),
		products, ledger.DefaultAccountMap())
	assert.ErrorIs(t, err, ledger.ErrProductNotFound)
}

func TestPurchase(t *testing.T) {
	items := []ledger.Item{{ProductID: "p1", Quantity: 4, Price: d("10")}}
	p := &ledger.Purchase{SupplierID: "s1", Items: items, PaymentMethod: ledger.PaymentCredit}
	p.Totals = ledger.ComputeTotals(items, d("5"))

	post, err := Purchase(p, widgets(0), ledger.DefaultAccountMap())
	require.NoError(t, err)

	assertLines(t, []side{
		{"103", "40", "0"},
		{"104", "2", "0"},
		{"201", "0", "42"},
	}, post.Lines)
	balanced(t, post.Lines)
	assert.Equal(t, "s1", post.Lines[2].SupplierID)
	assert.Equal(t, []StockMove{{ProductID: "p1", Delta: 4}}, post.StockMoves)
}

func TestResolveExpenseAccount(t *testing.T) {
	tests := []struct {
		category string
		fallback string
		want     string
		wantErr  bool
	}{
		{category: "rent", fallback: "503", want: "502"},
		{category: "Utilities", fallback: "503", want: "503"},
		{category: "Stationery", fallback: "503", want: "503"},
		{category: "Stationery", fallback: "101", wantErr: true},
		{category: "Stationery", fallback: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.category+"/"+tt.fallback, func(t *testing.T) {
			acct, err := ResolveExpenseAccount(tt.category, chart(), tt.fallback)
			if tt.wantErr {
				assert.ErrorIs(t, err, ledger.ErrUnresolvedExpenseAccount)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, acct.ID)
		})
	}
}

func TestExpense(t *testing.T) {
	e := &ledger.Expense{Category: "Rent", Amount: d("1200")}
	post, err := Expense(e, chart(), ledger.DefaultAccountMap())
	require.NoError(t, err)
	assertLines(t, []side{{"502", "1200", "0"}, {"101", "0", "1200"}}, post.Lines)
	assert.Empty(t, post.StockMoves)
}

func TestInventoryMoves(t *testing.T) {
	e := &ledger.JournalEntry{Lines: []ledger.Line{
		{AccountID: "103", Debit: d("30"), Credit: decimal.Zero, ProductID: "p1", Quantity: 3},
		{AccountID: "103", Debit: decimal.Zero, Credit: d("10"), ProductID: "p2", Quantity: 1},
		{AccountID: "101", Debit: decimal.Zero, Credit: d("20"), ProductID: "p3", Quantity: 9},
	}}
	assert.Equal(t, []StockMove{{"p1", 3}, {"p2", -1}}, InventoryMoves(e, "103"))
}
