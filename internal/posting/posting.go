// Package posting turns business transactions into balanced journal lines
// and the stock movements that accompany them. Everything here is pure: the
// caller loads products and accounts, and applies the result atomically.
package posting

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/simonvc/minibooks/internal/ledger"
)

// StockMove changes one product's stock by Delta units.
type StockMove struct {
	ProductID string `json:"product_id"`
	Delta     int64  `json:"delta"`
}

// Posting is the ledger footprint of a business transaction.
type Posting struct {
	Lines      []ledger.Line
	StockMoves []StockMove
	// COGS is the purchase cost of goods sold; zero for purchases and expenses.
	COGS decimal.Decimal
}

func (p *Posting) debit(accountID string, amount decimal.Decimal) *ledger.Line {
	if amount.IsZero() {
		return nil
	}
	p.Lines = append(p.Lines, ledger.DebitLine(accountID, amount))
	return &p.Lines[len(p.Lines)-1]
}

func (p *Posting) credit(accountID string, amount decimal.Decimal) *ledger.Line {
	if amount.IsZero() {
		return nil
	}
	p.Lines = append(p.Lines, ledger.CreditLine(accountID, amount))
	return &p.Lines[len(p.Lines)-1]
}

func settlementAccount(m ledger.PaymentMethod, accts ledger.AccountMap, credit ledger.AccountRole) (string, error) {
	switch m {
	case ledger.PaymentCash:
		return accts.Cash, nil
	case ledger.PaymentCredit:
		return accts.Get(credit), nil
	}
	return "", fmt.Errorf("%w: %q", ledger.ErrInvalidPaymentMethod, m)
}

// lookup returns the active product for id.
func lookup(products map[string]ledger.Product, id string) (ledger.Product, error) {
	p, ok := products[id]
	if !ok || p.Lifecycle == ledger.Deleted {
		return ledger.Product{}, fmt.Errorf("%w: %s", ledger.ErrProductNotFound, id)
	}
	return p, nil
}

// quantities sums item quantities per product, in first-seen order.
func quantities(items []ledger.Item) ([]string, map[string]int64) {
	var order []string
	qty := map[string]int64{}
	for _, it := range items {
		if _, seen := qty[it.ProductID]; !seen {
			order = append(order, it.ProductID)
		}
		qty[it.ProductID] += it.Quantity
	}
	return order, qty
}

// Sale validates stock for every item before building anything, so a
// failure leaves nothing to undo.
//
// Lines: Dr Cash or Receivable (total), Cr Sales Revenue (subtotal),
// Cr Sales Tax Payable (tax), Dr COGS (total cost), and one Cr Inventory
// per item tagged with its product and quantity. Zero amounts are omitted.
func Sale(s *ledger.Sale, products map[string]ledger.Product, accts ledger.AccountMap) (*Posting, error) {
	order, qty := quantities(s.Items)
	for _, id := range order {
		p, err := lookup(products, id)
		if err != nil {
			return nil, err
		}
		if p.Stock < qty[id] {
			return nil, &ledger.InsufficientStockError{
				ProductID:   p.ID,
				ProductName: p.Name,
				Available:   p.Stock,
				Requested:   qty[id],
			}
		}
	}

	settle, err := settlementAccount(s.PaymentMethod, accts, ledger.RoleReceivable)
	if err != nil {
		return nil, err
	}

	post := &Posting{COGS: decimal.Zero}
	costs := make([]decimal.Decimal, len(s.Items))
	for i, it := range s.Items {
		costs[i] = ledger.Round(products[it.ProductID].PurchasePrice.Mul(decimal.NewFromInt(it.Quantity)))
		post.COGS = post.COGS.Add(costs[i])
	}

	if l := post.debit(settle, s.Total); l != nil {
		l.CustomerID = s.CustomerID
	}
	post.credit(accts.SalesRevenue, s.Subtotal)
	post.credit(accts.SalesTax, s.TaxAmount)
	post.debit(accts.COGS, post.COGS)
	for i, it := range s.Items {
		if l := post.credit(accts.Inventory, costs[i]); l != nil {
			l.ProductID = it.ProductID
			l.Quantity = it.Quantity
		}
	}

	for _, id := range order {
		post.StockMoves = append(post.StockMoves, StockMove{ProductID: id, Delta: -qty[id]})
	}
	return post, nil
}

// Purchase builds Dr Inventory (subtotal), Dr Input Tax Credit (tax) and
// Cr Cash or Payable (total), and increments stock per item.
func Purchase(p *ledger.Purchase, products map[string]ledger.Product, accts ledger.AccountMap) (*Posting, error) {
	order, qty := quantities(p.Items)
	for _, id := range order {
		if _, err := lookup(products, id); err != nil {
			return nil, err
		}
	}

	settle, err := settlementAccount(p.PaymentMethod, accts, ledger.RolePayable)
	if err != nil {
		return nil, err
	}

	post := &Posting{COGS: decimal.Zero}
	post.debit(accts.Inventory, p.Subtotal)
	post.debit(accts.InputTax, p.TaxAmount)
	if l := post.credit(settle, p.Total); l != nil {
		l.SupplierID = p.SupplierID
	}

	for _, id := range order {
		post.StockMoves = append(post.StockMoves, StockMove{ProductID: id, Delta: qty[id]})
	}
	return post, nil
}

// ResolveExpenseAccount picks the first Expense account, in chart order, whose
// name contains category case-insensitively. Otherwise it falls back to the
// configured default expense account.
func ResolveExpenseAccount(category string, chart []ledger.Account, fallback string) (ledger.Account, error) {
	needle := strings.ToLower(strings.TrimSpace(category))
	if needle != "" {
		for _, a := range chart {
			if a.Type == ledger.ExpenseAccount && strings.Contains(strings.ToLower(a.Name), needle) {
				return a, nil
			}
		}
	}
	if fallback != "" {
		for _, a := range chart {
			if a.ID == fallback && a.Type == ledger.ExpenseAccount {
				return a, nil
			}
		}
	}
	return ledger.Account{}, fmt.Errorf("%w: %q", ledger.ErrUnresolvedExpenseAccount, category)
}

// Expense builds Dr <resolved expense account> and Cr Cash for the amount.
func Expense(e *ledger.Expense, chart []ledger.Account, accts ledger.AccountMap) (*Posting, error) {
	acct, err := ResolveExpenseAccount(e.Category, chart, accts.DefaultExpense)
	if err != nil {
		return nil, err
	}
	amount := ledger.Round(e.Amount)
	post := &Posting{COGS: decimal.Zero}
	post.debit(acct.ID, amount)
	post.credit(accts.Cash, amount)
	return post, nil
}

// InventoryMoves derives the stock movements a manually posted journal entry
// causes when approved: lines on the inventory account that carry a product
// and quantity move stock up on debit and down on credit.
func InventoryMoves(e *ledger.JournalEntry, inventoryAccount string) []StockMove {
	var moves []StockMove
	for _, l := range e.Lines {
		if l.AccountID != inventoryAccount || l.ProductID == "" || l.Quantity == 0 {
			continue
		}
		delta := l.Quantity
		if l.Credit.IsPositive() {
			delta = -delta
		}
		moves = append(moves, StockMove{ProductID: l.ProductID, Delta: delta})
	}
	return moves
}
