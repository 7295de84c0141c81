package ledger

import "fmt"

// Lifecycle is the deletion state shared by every auditable record.
type Lifecycle string

const (
	Active          Lifecycle = "active"
	PendingDeletion Lifecycle = "pending_deletion"
	Deleted         Lifecycle = "deleted"
)

// RecordType identifies a kind of auditable record.
type RecordType string

const (
	RecordCustomer     RecordType = "customer"
	RecordSupplier     RecordType = "supplier"
	RecordProduct      RecordType = "product"
	RecordSale         RecordType = "sale"
	RecordPurchase     RecordType = "purchase"
	RecordExpense      RecordType = "expense"
	RecordJournalEntry RecordType = "journal_entry"
)

var AllRecordTypes = []RecordType{
	RecordCustomer,
	RecordSupplier,
	RecordProduct,
	RecordSale,
	RecordPurchase,
	RecordExpense,
	RecordJournalEntry,
}

func ParseRecordType(s string) (RecordType, error) {
	for _, rt := range AllRecordTypes {
		if string(rt) == s {
			return rt, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidRecordType, s)
}

// Label returns the human-readable name used in activity log actions.
func (r RecordType) Label() string {
	switch r {
	case RecordCustomer:
		return "Customer"
	case RecordSupplier:
		return "Supplier"
	case RecordProduct:
		return "Product"
	case RecordSale:
		return "Sale"
	case RecordPurchase:
		return "Purchase"
	case RecordExpense:
		return "Expense"
	case RecordJournalEntry:
		return "Journal Entry"
	default:
		return string(r)
	}
}
