package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Approval is the posting state of a journal entry or business transaction.
type Approval string

const (
	PendingApproval Approval = "pending_approval"
	Approved        Approval = "approved"
)

// Line is one side of a journal entry. Exactly one of Debit or Credit is non-zero.
type Line struct {
	AccountID  string          `json:"account_id"`
	Debit      decimal.Decimal `json:"debit"`
	Credit     decimal.Decimal `json:"credit"`
	ProductID  string          `json:"product_id,omitempty"`
	Quantity   int64           `json:"quantity,omitempty"`
	CustomerID string          `json:"customer_id,omitempty"`
	SupplierID string          `json:"supplier_id,omitempty"`
}

func DebitLine(accountID string, amount decimal.Decimal) Line {
	return Line{AccountID: accountID, Debit: amount, Credit: decimal.Zero}
}

func CreditLine(accountID string, amount decimal.Decimal) Line {
	return Line{AccountID: accountID, Debit: decimal.Zero, Credit: amount}
}

type JournalEntry struct {
	ID          string     `json:"id"`
	Date        time.Time  `json:"date"`
	Description string     `json:"description"`
	Lines       []Line     `json:"lines"`
	Status      Approval   `json:"status"`
	Lifecycle   Lifecycle  `json:"lifecycle"`
	SourceType  RecordType `json:"source_type,omitempty"`
	SourceID    string     `json:"source_id,omitempty"`
	CreatedBy   string     `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
	ApprovedBy  string     `json:"approved_by,omitempty"`
	ApprovedAt  *time.Time `json:"approved_at,omitempty"`
}

// Totals sums both sides of the entry.
func (e *JournalEntry) Totals() (debits, credits decimal.Decimal) {
	debits, credits = decimal.Zero, decimal.Zero
	for _, l := range e.Lines {
		debits = debits.Add(l.Debit)
		credits = credits.Add(l.Credit)
	}
	return debits, credits
}

// Posted reports whether the entry counts towards the books.
func (e *JournalEntry) Posted() bool {
	return e.Status == Approved && e.Lifecycle != Deleted
}

// Validate checks entry invariants: a description and date, at least 2 lines,
// one non-negative side per line, and equal non-zero totals at cent precision.
// Account existence is checked against the chart by the caller.
func (e *JournalEntry) Validate() error {
	if strings.TrimSpace(e.Description) == "" {
		return ErrEmptyDescription
	}
	if e.Date.IsZero() {
		return fmt.Errorf("%w: entry date", ErrMissingField)
	}
	if len(e.Lines) < 2 {
		return ErrTooFewLines
	}
	for i, l := range e.Lines {
		switch {
		case strings.TrimSpace(l.AccountID) == "":
			return fmt.Errorf("%w: line %d has no account", ErrInvalidLine, i+1)
		case l.Debit.IsNegative() || l.Credit.IsNegative():
			return fmt.Errorf("%w: line %d has a negative amount", ErrInvalidLine, i+1)
		case l.Debit.IsZero() == l.Credit.IsZero():
			return fmt.Errorf("%w: line %d must have exactly one of debit or credit", ErrInvalidLine, i+1)
		case l.Quantity < 0:
			return fmt.Errorf("%w: line %d has a negative quantity", ErrInvalidLine, i+1)
		case l.Quantity > 0 && l.ProductID == "":
			return fmt.Errorf("%w: line %d has a quantity but no product", ErrInvalidLine, i+1)
		}
	}

	debits, credits := e.Totals()
	if !AmountsEqual(debits, credits) {
		return &UnbalancedError{Debits: debits, Credits: credits}
	}
	if Round(debits).IsZero() || Round(credits).IsZero() {
		return ErrZeroEntry
	}
	return nil
}
