package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "Cash"
	PaymentCredit PaymentMethod = "Credit"
)

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch {
	case strings.EqualFold(s, string(PaymentCash)):
		return PaymentCash, nil
	case strings.EqualFold(s, string(PaymentCredit)):
		return PaymentCredit, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPaymentMethod, s)
}

type Customer struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	Lifecycle Lifecycle `json:"lifecycle"`
	Version   int64     `json:"version"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Customer) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: customer name", ErrMissingField)
	}
	return nil
}

type Supplier struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	Lifecycle Lifecycle `json:"lifecycle"`
	Version   int64     `json:"version"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *Supplier) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("%w: supplier name", ErrMissingField)
	}
	return nil
}

type Product struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	SKU           string          `json:"sku"`
	Category      string          `json:"category"`
	Unit          string          `json:"unit"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	SalePrice     decimal.Decimal `json:"sale_price"`
	Stock         int64           `json:"stock"`
	Lifecycle     Lifecycle       `json:"lifecycle"`
	Version       int64           `json:"version"`
	CreatedBy     string          `json:"created_by"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (p *Product) Validate() error {
	switch {
	case strings.TrimSpace(p.Name) == "":
		return fmt.Errorf("%w: product name", ErrMissingField)
	case p.PurchasePrice.IsNegative():
		return fmt.Errorf("%w: purchase price of %s is negative", ErrInvalidAmount, p.Name)
	case p.SalePrice.IsNegative():
		return fmt.Errorf("%w: sale price of %s is negative", ErrInvalidAmount, p.Name)
	case p.Stock < 0:
		return fmt.Errorf("%w: stock of %s is negative", ErrInvalidAmount, p.Name)
	}
	return nil
}

// Item is one product line of a sale or purchase. Price is per unit.
type Item struct {
	ProductID string          `json:"product_id"`
	Quantity  int64           `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// Totals are the derived amounts of a sale or purchase.
type Totals struct {
	Subtotal  decimal.Decimal `json:"subtotal"`
	TaxRate   decimal.Decimal `json:"tax_rate"`
	TaxAmount decimal.Decimal `json:"tax_amount"`
	Total     decimal.Decimal `json:"total"`
}

var hundred = decimal.NewFromInt(100)

// ComputeTotals derives subtotal, tax and total from items and a percentage tax rate.
func ComputeTotals(items []Item, taxRate decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.Price.Mul(decimal.NewFromInt(it.Quantity)))
	}
	subtotal = Round(subtotal)
	tax := Round(subtotal.Mul(taxRate).Div(hundred))
	return Totals{
		Subtotal:  subtotal,
		TaxRate:   taxRate,
		TaxAmount: tax,
		Total:     subtotal.Add(tax),
	}
}

func validateItems(items []Item, taxRate decimal.Decimal) error {
	if len(items) == 0 {
		return fmt.Errorf("%w: at least one item", ErrMissingField)
	}
	for i, it := range items {
		switch {
		case it.ProductID == "":
			return fmt.Errorf("%w: item %d has no product", ErrMissingField, i+1)
		case it.Quantity <= 0:
			return fmt.Errorf("%w: item %d quantity must be positive", ErrInvalidAmount, i+1)
		case it.Price.IsNegative():
			return fmt.Errorf("%w: item %d price is negative", ErrInvalidAmount, i+1)
		}
	}
	if taxRate.IsNegative() {
		return fmt.Errorf("%w: tax rate is negative", ErrInvalidAmount)
	}
	return nil
}

type Sale struct {
	ID             string        `json:"id"`
	InvoiceNumber  string        `json:"invoice_number"`
	CustomerID     string        `json:"customer_id"`
	Date           time.Time     `json:"date"`
	Items          []Item        `json:"items"`
	PaymentMethod  PaymentMethod `json:"payment_method"`
	Status         Approval      `json:"status"`
	Lifecycle      Lifecycle     `json:"lifecycle"`
	JournalEntryID string        `json:"journal_entry_id"`
	CreatedBy      string        `json:"created_by"`
	CreatedAt      time.Time     `json:"created_at"`
	Totals
}

func (s *Sale) Validate() error {
	if strings.TrimSpace(s.InvoiceNumber) == "" {
		return fmt.Errorf("%w: invoice number", ErrMissingField)
	}
	if s.CustomerID == "" {
		return fmt.Errorf("%w: customer", ErrMissingField)
	}
	if s.Date.IsZero() {
		return fmt.Errorf("%w: sale date", ErrMissingField)
	}
	if _, err := ParsePaymentMethod(string(s.PaymentMethod)); err != nil {
		return err
	}
	return validateItems(s.Items, s.TaxRate)
}

type Purchase struct {
	ID             string        `json:"id"`
	InvoiceNumber  string        `json:"invoice_number"`
	SupplierID     string        `json:"supplier_id"`
	Date           time.Time     `json:"date"`
	Items          []Item        `json:"items"`
	PaymentMethod  PaymentMethod `json:"payment_method"`
	Status         Approval      `json:"status"`
	Lifecycle      Lifecycle     `json:"lifecycle"`
	JournalEntryID string        `json:"journal_entry_id"`
	CreatedBy      string        `json:"created_by"`
	CreatedAt      time.Time     `json:"created_at"`
	Totals
}

func (p *Purchase) Validate() error {
	if strings.TrimSpace(p.InvoiceNumber) == "" {
		return fmt.Errorf("%w: invoice number", ErrMissingField)
	}
	if p.SupplierID == "" {
		return fmt.Errorf("%w: supplier", ErrMissingField)
	}
	if p.Date.IsZero() {
		return fmt.Errorf("%w: purchase date", ErrMissingField)
	}
	if _, err := ParsePaymentMethod(string(p.PaymentMethod)); err != nil {
		return err
	}
	return validateItems(p.Items, p.TaxRate)
}

type Expense struct {
	ID             string          `json:"id"`
	Date           time.Time       `json:"date"`
	Category       string          `json:"category"`
	Description    string          `json:"description"`
	Amount         decimal.Decimal `json:"amount"`
	Status         Approval        `json:"status"`
	Lifecycle      Lifecycle       `json:"lifecycle"`
	JournalEntryID string          `json:"journal_entry_id"`
	Version        int64           `json:"version"`
	CreatedBy      string          `json:"created_by"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func (e *Expense) Validate() error {
	switch {
	case strings.TrimSpace(e.Category) == "":
		return fmt.Errorf("%w: expense category", ErrMissingField)
	case e.Date.IsZero():
		return fmt.Errorf("%w: expense date", ErrMissingField)
	case !Round(e.Amount).IsPositive():
		return fmt.Errorf("%w: expense amount must be positive", ErrInvalidAmount)
	}
	return nil
}
