package report

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/simonvc/minibooks/internal/ledger"
)

// MonthLayout keys the monthly buckets of a summary.
const MonthLayout = "2006-01"

// MonthTotals is the gross sales and purchases booked in one calendar month.
type MonthTotals struct {
	Month     string          `json:"month"`
	Sales     decimal.Decimal `json:"sales"`
	Purchases decimal.Decimal `json:"purchases"`
}

// StockAlert is a product at or below the low-stock threshold.
type StockAlert struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	SKU       string `json:"sku,omitempty"`
	Stock     int64  `json:"stock"`
}

// Summary is the dashboard view of a period.
type Summary struct {
	Period            Period          `json:"period"`
	TotalSales        decimal.Decimal `json:"total_sales"`
	TotalPurchases    decimal.Decimal `json:"total_purchases"`
	TotalExpenses     decimal.Decimal `json:"total_expenses"`
	GrossProfit       decimal.Decimal `json:"gross_profit"`
	NetProfit         decimal.Decimal `json:"net_profit"`
	ProductCount      int             `json:"product_count"`
	LowStockThreshold int64           `json:"low_stock_threshold"`
	LowStock          []StockAlert    `json:"low_stock"`
	Monthly           []MonthTotals   `json:"monthly"`
}

// BuildSummary condenses the ledger and the product list into the dashboard
// figures. Sales and purchases are gross of tax, taken from the settlement
// side of the entries their records posted. Expenses and profits come from
// the profit and loss. Months appear only when they carry a sale or a
// purchase, in calendar order.
func BuildSummary(entries []ledger.JournalEntry, accounts []ledger.Account, products []ledger.Product, accts ledger.AccountMap, threshold int64) (*Summary, error) {
	tb, err := BuildTrialBalance(entries, accounts)
	if err != nil {
		return nil, err
	}
	pl := BuildProfitAndLoss(tb, accts.COGS)

	sum := &Summary{
		TotalSales:        decimal.Zero,
		TotalPurchases:    decimal.Zero,
		TotalExpenses:     pl.OperatingExpenses,
		GrossProfit:       pl.GrossProfit,
		NetProfit:         pl.NetProfit,
		LowStockThreshold: threshold,
		LowStock:          []StockAlert{},
		Monthly:           []MonthTotals{},
	}

	months := map[string]*MonthTotals{}
	bucket := func(e ledger.JournalEntry) *MonthTotals {
		key := e.Date.UTC().Format(MonthLayout)
		m, ok := months[key]
		if !ok {
			m = &MonthTotals{Month: key, Sales: decimal.Zero, Purchases: decimal.Zero}
			months[key] = m
		}
		return m
	}
	for _, e := range entries {
		switch e.SourceType {
		case ledger.RecordSale:
			gross := settled(e, accts, true)
			sum.TotalSales = sum.TotalSales.Add(gross)
			m := bucket(e)
			m.Sales = m.Sales.Add(gross)
		case ledger.RecordPurchase:
			gross := settled(e, accts, false)
			sum.TotalPurchases = sum.TotalPurchases.Add(gross)
			m := bucket(e)
			m.Purchases = m.Purchases.Add(gross)
		}
	}
	for _, m := range months {
		sum.Monthly = append(sum.Monthly, *m)
	}
	sort.Slice(sum.Monthly, func(i, j int) bool { return sum.Monthly[i].Month < sum.Monthly[j].Month })

	for _, p := range products {
		if p.Lifecycle == ledger.Deleted {
			continue
		}
		sum.ProductCount++
		if p.Stock <= threshold {
			sum.LowStock = append(sum.LowStock, StockAlert{ProductID: p.ID, Name: p.Name, SKU: p.SKU, Stock: p.Stock})
		}
	}
	sort.SliceStable(sum.LowStock, func(i, j int) bool { return sum.LowStock[i].Stock < sum.LowStock[j].Stock })
	return sum, nil
}

// settled sums the cash or credit leg of a sale (debits) or purchase (credits).
func settled(e ledger.JournalEntry, accts ledger.AccountMap, debit bool) decimal.Decimal {
	counter := accts.Receivable
	if !debit {
		counter = accts.Payable
	}
	total := decimal.Zero
	for _, l := range e.Lines {
		if l.AccountID != accts.Cash && l.AccountID != counter {
			continue
		}
		if debit {
			total = total.Add(l.Debit)
		} else {
			total = total.Add(l.Credit)
		}
	}
	return total
}
