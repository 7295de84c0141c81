package report

import (
	"testing"
	"time"

	"github.com/simonvc/minibooks/internal/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sourced(e ledger.JournalEntry, rt ledger.RecordType) ledger.JournalEntry {
	e.SourceType = rt
	e.SourceID = e.ID
	return e
}

func summaryEntries() []ledger.JournalEntry {
	feb := time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC)
	return []ledger.JournalEntry{
		je("je-1", day(1), ledger.DebitLine("101", d("500")), ledger.CreditLine("301", d("500"))),
		sourced(je("pu-1", feb,
			ledger.DebitLine("103", d("50")), ledger.DebitLine("104", d("5")),
			ledger.CreditLine("201", d("55"))), ledger.RecordPurchase),
		sourced(je("sa-1", day(3),
			ledger.DebitLine("101", d("44")), ledger.CreditLine("401", d("40")), ledger.CreditLine("202", d("4")),
			ledger.DebitLine("501", d("20")), ledger.CreditLine("103", d("20"))), ledger.RecordSale),
		sourced(je("sa-2", day(20),
			ledger.DebitLine("102", d("22")), ledger.CreditLine("401", d("20")), ledger.CreditLine("202", d("2")),
			ledger.DebitLine("501", d("10")), ledger.CreditLine("103", d("10"))), ledger.RecordSale),
		sourced(je("pu-2", day(21),
			ledger.DebitLine("103", d("30")), ledger.CreditLine("101", d("30"))), ledger.RecordPurchase),
		sourced(je("ex-1", day(4), ledger.DebitLine("502", d("100")), ledger.CreditLine("101", d("100"))), ledger.RecordExpense),
	}
}

func TestBuildSummaryTotals(t *testing.T) {
	sum, err := BuildSummary(summaryEntries(), chart(), nil, ledger.DefaultAccountMap(), 5)
	require.NoError(t, err)

	assert.True(t, sum.TotalSales.Equal(d("66")), sum.TotalSales.String())
	assert.True(t, sum.TotalPurchases.Equal(d("85")), sum.TotalPurchases.String())
	assert.True(t, sum.TotalExpenses.Equal(d("100")), sum.TotalExpenses.String())
	assert.True(t, sum.GrossProfit.Equal(d("30")), sum.GrossProfit.String())
	assert.True(t, sum.NetProfit.Equal(d("-70")), sum.NetProfit.String())
	assert.Zero(t, sum.ProductCount)
	assert.Empty(t, sum.LowStock)
}

func TestBuildSummaryMonthlyBuckets(t *testing.T) {
	sum, err := BuildSummary(summaryEntries(), chart(), nil, ledger.DefaultAccountMap(), 5)
	require.NoError(t, err)

	require.Len(t, sum.Monthly, 2)
	assert.Equal(t, "2024-02", sum.Monthly[0].Month)
	assert.True(t, sum.Monthly[0].Sales.IsZero())
	assert.True(t, sum.Monthly[0].Purchases.Equal(d("55")))

	assert.Equal(t, "2024-03", sum.Monthly[1].Month)
	assert.True(t, sum.Monthly[1].Sales.Equal(d("66")), sum.Monthly[1].Sales.String())
	assert.True(t, sum.Monthly[1].Purchases.Equal(d("30")))
}

func TestBuildSummaryEmptyLedger(t *testing.T) {
	sum, err := BuildSummary(nil, chart(), nil, ledger.DefaultAccountMap(), 5)
	require.NoError(t, err)
	assert.True(t, sum.TotalSales.IsZero())
	assert.True(t, sum.NetProfit.IsZero())
	assert.NotNil(t, sum.Monthly)
	assert.NotNil(t, sum.LowStock)
}

func TestBuildSummaryLowStock(t *testing.T) {
	products := []ledger.Product{
		{ID: "p1", Name: "Widget", Stock: 12, Lifecycle: ledger.Active},
		{ID: "p2", Name: "Gadget", Stock: 5, Lifecycle: ledger.Active},
		{ID: "p3", Name: "Sprocket", Stock: 0, Lifecycle: ledger.PendingDeletion},
		{ID: "p4", Name: "Gizmo", Stock: 1, Lifecycle: ledger.Deleted},
		{ID: "p5", Name: "Bolt", Stock: 6, Lifecycle: ledger.Active},
	}

	sum, err := BuildSummary(nil, chart(), products, ledger.DefaultAccountMap(), 5)
	require.NoError(t, err)
	assert.Equal(t, 4, sum.ProductCount)
	assert.Equal(t, int64(5), sum.LowStockThreshold)
	require.Len(t, sum.LowStock, 2)
	assert.Equal(t, "p3", sum.LowStock[0].ProductID)
	assert.Equal(t, "p2", sum.LowStock[1].ProductID)

	sum, err = BuildSummary(nil, chart(), products, ledger.DefaultAccountMap(), 0)
	require.NoError(t, err)
	require.Len(t, sum.LowStock, 1)
	assert.Equal(t, "Sprocket", sum.LowStock[0].Name)
}

func TestBuildSummaryUnknownAccount(t *testing.T) {
	entries := []ledger.JournalEntry{je("je-x", day(1), ledger.DebitLine("999", d("1")), ledger.CreditLine("101", d("1")))}
	_, err := BuildSummary(entries, chart(), nil, ledger.DefaultAccountMap(), 5)
	assert.ErrorIs(t, err, ledger.ErrDataIntegrity)
}
