package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Error kinds. Every error returned by the core unwraps to exactly one of these.
var (
	ErrValidation    = errors.New("validation failed")
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrForbidden     = errors.New("permission denied")
	ErrPersistence   = errors.New("persistence failure")
	ErrDataIntegrity = errors.New("data integrity violation")
)

type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

func newError(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

var (
	ErrEmptyDescription         = newError(ErrValidation, "description is required")
	ErrMissingField             = newError(ErrValidation, "missing required field")
	ErrInvalidAmount            = newError(ErrValidation, "invalid amount")
	ErrTooFewLines              = newError(ErrValidation, "journal entry must have at least 2 lines")
	ErrInvalidLine              = newError(ErrValidation, "invalid journal line")
	ErrUnbalancedEntry          = newError(ErrValidation, "journal entry does not balance")
	ErrZeroEntry                = newError(ErrValidation, "journal entry totals must be non-zero")
	ErrInsufficientStock        = newError(ErrValidation, "insufficient stock")
	ErrUnresolvedExpenseAccount = newError(ErrValidation, "no expense account matches category")
	ErrImmutableField           = newError(ErrValidation, "field cannot be changed")
	ErrInvalidAccountType       = newError(ErrValidation, "invalid account type")
	ErrInvalidRecordType        = newError(ErrValidation, "invalid record type")
	ErrInvalidPaymentMethod     = newError(ErrValidation, "payment method must be Cash or Credit")

	ErrAccountNotFound  = newError(ErrNotFound, "account not found")
	ErrEntryNotFound    = newError(ErrNotFound, "journal entry not found")
	ErrRecordNotFound   = newError(ErrNotFound, "record not found")
	ErrProductNotFound  = newError(ErrNotFound, "product not found")
	ErrRequestNotFound  = newError(ErrNotFound, "approval request not found")
	ErrUserNotFound     = newError(ErrNotFound, "user not found")
	ErrCustomerNotFound = newError(ErrNotFound, "customer not found")
	ErrSupplierNotFound = newError(ErrNotFound, "supplier not found")

	ErrAlreadyApproved   = newError(ErrConflict, "journal entry is already approved")
	ErrDeletionPending   = newError(ErrConflict, "record already has a pending deletion request")
	ErrRecordNotActive   = newError(ErrConflict, "record is not active")
	ErrRequestClosed     = newError(ErrConflict, "approval request is no longer pending")
	ErrStaleVersion      = newError(ErrConflict, "record was modified since it was read")
	ErrDuplicateInvoice  = newError(ErrConflict, "invoice number already used")
	ErrDuplicateAccount  = newError(ErrConflict, "account already exists")
	ErrDuplicateRecord   = newError(ErrConflict, "record already exists")
	ErrPostedBySource    = newError(ErrConflict, "journal entry belongs to a source record")
	ErrUnknownLedgerLine = newError(ErrDataIntegrity, "ledger line references unknown account")
)

// Kind returns the error kind err belongs to, or nil when err carries none.
func Kind(err error) error {
	for _, k := range []error{ErrValidation, ErrNotFound, ErrConflict, ErrForbidden, ErrPersistence, ErrDataIntegrity} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}

// UnbalancedError reports the totals of a journal entry whose sides disagree.
type UnbalancedError struct {
	Debits  decimal.Decimal
	Credits decimal.Decimal
}

func (e *UnbalancedError) Difference() decimal.Decimal {
	return e.Debits.Sub(e.Credits).Abs()
}

func (e *UnbalancedError) Error() string {
	return fmt.Sprintf("%s: debits %s, credits %s, difference %s",
		ErrUnbalancedEntry, e.Debits.StringFixed(2), e.Credits.StringFixed(2), e.Difference().StringFixed(2))
}

func (e *UnbalancedError) Unwrap() error { return ErrUnbalancedEntry }

// InsufficientStockError names the product that cannot cover a sale or stock movement.
type InsufficientStockError struct {
	ProductID   string
	ProductName string
	Available   int64
	Requested   int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Insufficient stock for %s. Available: %d", e.ProductName, e.Available)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }
