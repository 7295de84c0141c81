package books

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/simonvc/minibooks/internal/auth"
	"github.com/simonvc/minibooks/internal/invoice"
	"github.com/simonvc/minibooks/internal/ledger"
	"github.com/simonvc/minibooks/internal/posting"
	"github.com/simonvc/minibooks/internal/store"
)

// TradeDraft is a sale or purchase before posting. An empty InvoiceNumber
// is generated from the counterparty's name.
type TradeDraft struct {
	InvoiceNumber  string               `json:"invoice_number"`
	CounterpartyID string               `json:"counterparty_id"`
	Date           time.Time            `json:"date"`
	Items          []ledger.Item        `json:"items"`
	TaxRate        decimal.Decimal      `json:"tax_rate"`
	PaymentMethod  ledger.PaymentMethod `json:"payment_method"`
}

type ExpenseDraft struct {
	Date        time.Time       `json:"date"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

// RecordSale posts a sale: stock is checked, the approved journal entry,
// stock decrements, sale record and activity row are written together.
func (s *Service) RecordSale(ctx context.Context, actor string, draft TradeDraft) (*ledger.Sale, error) {
	if err := s.require(ctx, actor, auth.CreateSale); err != nil {
		return nil, err
	}

	sale := &ledger.Sale{
		ID:            s.newID(),
		InvoiceNumber: strings.TrimSpace(draft.InvoiceNumber),
		CustomerID:    draft.CounterpartyID,
		Date:          ledger.DateOf(draft.Date),
		Items:         draft.Items,
		PaymentMethod: draft.PaymentMethod,
		Status:        ledger.Approved,
		Lifecycle:     ledger.Active,
		CreatedBy:     actor,
		CreatedAt:     s.now(),
		Totals:        ledger.ComputeTotals(draft.Items, draft.TaxRate),
	}

	err := s.store.WithTx(ctx, func(q *store.Queries) error {
		if sale.CustomerID == "" {
			return fmt.Errorf("%w: customer", ledger.ErrMissingField)
		}
		customer, err := q.GetCustomer(ctx, sale.CustomerID)
		if err != nil {
			return err
		}
		if customer.Lifecycle == ledger.Deleted {
			return fmt.Errorf("%w: %s", ledger.ErrCustomerNotFound, customer.ID)
		}
		if sale.InvoiceNumber == "" {
			if sale.InvoiceNumber, err = s.nextInvoice(ctx, q, ledger.RecordSale, customer.Name); err != nil {
				return err
			}
		}
		if err := sale.Validate(); err != nil {
			return err
		}

		products, err := loadProducts(ctx, q, sale.Items)
		if err != nil {
			return err
		}
		chart, accts, err := s.chart(ctx, q)
		if err != nil {
			return err
		}
		post, err := posting.Sale(sale, products, accts)
		if err != nil {
			return err
		}

		desc := fmt.Sprintf("Sale %s to %s", sale.InvoiceNumber, customer.Name)
		entry, err := s.postApproved(ctx, q, chart, actor, sale.Date, desc, ledger.RecordSale, sale.ID, post)
		if err != nil {
			return err
		}
		sale.JournalEntryID = entry.ID
		if err := q.InsertSale(ctx, sale); err != nil {
			return err
		}
		return s.activity(ctx, q, actor, "Create Sale",
			fmt.Sprintf("%s: %s", sale.InvoiceNumber, ledger.FormatAmount(sale.Total)))
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("sale_id", sale.ID).
		Str("invoice_number", sale.InvoiceNumber).
		Str("total", ledger.FormatAmount(sale.Total)).
		Int("items", len(sale.Items)).
		Msg("sale recorded")
	return sale, nil
}

// RecordPurchase posts a purchase and increments stock.
func (s *Service) RecordPurchase(ctx context.Context, actor string, draft TradeDraft) (*ledger.Purchase, error) {
	if err := s.require(ctx, actor, auth.CreatePurchase); err != nil {
		return nil, err
	}

	purchase := &ledger.Purchase{
		ID:            s.newID(),
		InvoiceNumber: strings.TrimSpace(draft.InvoiceNumber),
		SupplierID:    draft.CounterpartyID,
		Date:          ledger.DateOf(draft.Date),
		Items:         draft.Items,
		PaymentMethod: draft.PaymentMethod,
		Status:        ledger.Approved,
		Lifecycle:     ledger.Active,
		CreatedBy:     actor,
		CreatedAt:     s.now(),
		Totals:        ledger.ComputeTotals(draft.Items, draft.TaxRate),
	}

	err := s.store.WithTx(ctx, func(q *store.Queries) error {
		if purchase.SupplierID == "" {
			return fmt.Errorf("%w: supplier", ledger.ErrMissingField)
		}
		supplier, err := q.GetSupplier(ctx, purchase.SupplierID)
		if err != nil {
			return err
		}
		if supplier.Lifecycle == ledger.Deleted {
			return fmt.Errorf("%w: %s", ledger.ErrSupplierNotFound, supplier.ID)
		}
		if purchase.InvoiceNumber == "" {
			if purchase.InvoiceNumber, err = s.nextInvoice(ctx, q, ledger.RecordPurchase, supplier.Name); err != nil {
				return err
			}
		}
		if err := purchase.Validate(); err != nil {
			return err
		}

		products, err := loadProducts(ctx, q, purchase.Items)
		if err != nil {
			return err
		}
		chart, accts, err := s.chart(ctx, q)
		if err != nil {
			return err
		}
		post, err := posting.Purchase(purchase, products, accts)
		if err != nil {
			return err
		}

		desc := fmt.Sprintf("Purchase %s from %s", purchase.InvoiceNumber, supplier.Name)
		entry, err := s.postApproved(ctx, q, chart, actor, purchase.Date, desc, ledger.RecordPurchase, purchase.ID, post)
		if err != nil {
			return err
		}
		purchase.JournalEntryID = entry.ID
		if err := q.InsertPurchase(ctx, purchase); err != nil {
			return err
		}
		return s.activity(ctx, q, actor, "Create Purchase",
			fmt.Sprintf("%s: %s", purchase.InvoiceNumber, ledger.FormatAmount(purchase.Total)))
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("purchase_id", purchase.ID).
		Str("invoice_number", purchase.InvoiceNumber).
		Str("total", ledger.FormatAmount(purchase.Total)).
		Msg("purchase recorded")
	return purchase, nil
}

// RecordExpense posts an expense against the account its category resolves to.
func (s *Service) RecordExpense(ctx context.Context, actor string, draft ExpenseDraft) (*ledger.Expense, error) {
	if err := s.require(ctx, actor, auth.CreateExpense); err != nil {
		return nil, err
	}

	now := s.now()
	exp := &ledger.Expense{
		ID:          s.newID(),
		Date:        ledger.DateOf(draft.Date),
		Category:    strings.TrimSpace(draft.Category),
		Description: draft.Description,
		Amount:      ledger.Round(draft.Amount),
		Status:      ledger.Approved,
		Lifecycle:   ledger.Active,
		Version:     1,
		CreatedBy:   actor,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := exp.Validate(); err != nil {
		return nil, err
	}

	err := s.store.WithTx(ctx, func(q *store.Queries) error {
		chart, accts, err := s.chart(ctx, q)
		if err != nil {
			return err
		}
		post, err := posting.Expense(exp, chart.Accounts(), accts)
		if err != nil {
			return err
		}

		desc := "Expense: " + exp.Category
		if exp.Description != "" {
			desc += " - " + exp.Description
		}
		entry, err := s.postApproved(ctx, q, chart, actor, exp.Date, desc, ledger.RecordExpense, exp.ID, post)
		if err != nil {
			return err
		}
		exp.JournalEntryID = entry.ID
		if err := q.InsertExpense(ctx, exp); err != nil {
			return err
		}
		return s.activity(ctx, q, actor, "Create Expense",
			fmt.Sprintf("%s: %s", exp.Category, ledger.FormatAmount(exp.Amount)))
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("expense_id", exp.ID).Str("amount", ledger.FormatAmount(exp.Amount)).Msg("expense recorded")
	return exp, nil
}

// postApproved writes a posting as an approved entry and applies its stock moves.
func (s *Service) postApproved(ctx context.Context, q *store.Queries, chart *ledger.Chart, actor string,
	date time.Time, desc string, source ledger.RecordType, sourceID string, post *posting.Posting) (*ledger.JournalEntry, error) {
	now := s.now()
	e := &ledger.JournalEntry{
		ID:          s.newID(),
		Date:        date,
		Description: desc,
		Lines:       post.Lines,
		Status:      ledger.Approved,
		Lifecycle:   ledger.Active,
		SourceType:  source,
		SourceID:    sourceID,
		CreatedBy:   actor,
		CreatedAt:   now,
		ApprovedBy:  actor,
		ApprovedAt:  &now,
	}
	if err := s.postEntry(ctx, q, chart, e); err != nil {
		return nil, err
	}
	for _, m := range post.StockMoves {
		if err := q.AdjustStock(ctx, m.ProductID, m.Delta); err != nil {
			return nil, err
		}
	}
	return e, nil
}

func loadProducts(ctx context.Context, q *store.Queries, items []ledger.Item) (map[string]ledger.Product, error) {
	products := make(map[string]ledger.Product, len(items))
	for _, it := range items {
		if _, ok := products[it.ProductID]; ok {
			continue
		}
		p, err := q.GetProduct(ctx, it.ProductID)
		if err != nil {
			return nil, err
		}
		products[p.ID] = *p
	}
	return products, nil
}

func (s *Service) nextInvoice(ctx context.Context, q *store.Queries, rt ledger.RecordType, counterparty string) (string, error) {
	stem, err := invoice.Stem(rt, counterparty)
	if err != nil {
		return "", err
	}
	existing, err := q.InvoiceNumbers(ctx, rt, stem)
	if err != nil {
		return "", err
	}
	return invoice.Next(stem, existing), nil
}

// NextInvoiceNumber previews the number the next sale or purchase with this
// counterparty would receive.
func (s *Service) NextInvoiceNumber(ctx context.Context, rt ledger.RecordType, counterparty string) (string, error) {
	return s.nextInvoice(ctx, s.store.Queries, rt, counterparty)
}

func (s *Service) GetSale(ctx context.Context, id string) (*ledger.Sale, error) {
	return s.store.GetSale(ctx, id)
}

func (s *Service) ListSales(ctx context.Context, includeDeleted bool) ([]ledger.Sale, error) {
	return s.store.ListSales(ctx, includeDeleted)
}

func (s *Service) GetPurchase(ctx context.Context, id string) (*ledger.Purchase, error) {
	return s.store.GetPurchase(ctx, id)
}

func (s *Service) ListPurchases(ctx context.Context, includeDeleted bool) ([]ledger.Purchase, error) {
	return s.store.ListPurchases(ctx, includeDeleted)
}

func (s *Service) GetExpense(ctx context.Context, id string) (*ledger.Expense, error) {
	return s.store.GetExpense(ctx, id)
}

func (s *Service) ListExpenses(ctx context.Context, includeDeleted bool) ([]ledger.Expense, error) {
	return s.store.ListExpenses(ctx, includeDeleted)
}
