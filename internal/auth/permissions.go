package auth

import "github.com/simonvc/minibooks/internal/ledger"

type Permission string

const (
	ViewActivityLog Permission = "VIEW_ACTIVITY_LOG"
	ViewReports     Permission = "VIEW_REPORTS"
	ManageUsers     Permission = "MANAGE_USERS"
	ManageAccounts  Permission = "MANAGE_ACCOUNTS"
	ManageSettings  Permission = "MANAGE_SETTINGS"
	ManageBackup    Permission = "MANAGE_BACKUP"

	CreateCustomer        Permission = "CREATE_CUSTOMER"
	EditCustomer          Permission = "EDIT_CUSTOMER"
	RequestDeleteCustomer Permission = "REQUEST_DELETE_CUSTOMER"
	ApproveDeleteCustomer Permission = "APPROVE_DELETE_CUSTOMER"

	CreateSupplier        Permission = "CREATE_SUPPLIER"
	EditSupplier          Permission = "EDIT_SUPPLIER"
	RequestDeleteSupplier Permission = "REQUEST_DELETE_SUPPLIER"
	ApproveDeleteSupplier Permission = "APPROVE_DELETE_SUPPLIER"

	CreateProduct        Permission = "CREATE_PRODUCT"
	EditProduct          Permission = "EDIT_PRODUCT"
	RequestDeleteProduct Permission = "REQUEST_DELETE_PRODUCT"
	ApproveDeleteProduct Permission = "APPROVE_DELETE_PRODUCT"

	CreateSale        Permission = "CREATE_SALE"
	RequestDeleteSale Permission = "REQUEST_DELETE_SALE"
	ApproveDeleteSale Permission = "APPROVE_DELETE_SALE"

	CreatePurchase        Permission = "CREATE_PURCHASE"
	RequestDeletePurchase Permission = "REQUEST_DELETE_PURCHASE"
	ApproveDeletePurchase Permission = "APPROVE_DELETE_PURCHASE"

	CreateExpense        Permission = "CREATE_EXPENSE"
	EditExpense          Permission = "EDIT_EXPENSE"
	RequestDeleteExpense Permission = "REQUEST_DELETE_EXPENSE"
	ApproveDeleteExpense Permission = "APPROVE_DELETE_EXPENSE"

	CreateJournalEntry        Permission = "CREATE_JOURNAL_ENTRY"
	ApproveJournalEntry       Permission = "APPROVE_JOURNAL_ENTRY"
	RequestDeleteJournalEntry Permission = "REQUEST_DELETE_JOURNAL_ENTRY"
	ApproveDeleteJournalEntry Permission = "APPROVE_DELETE_JOURNAL_ENTRY"
)

var rolePermissions = map[Role][]Permission{
	RoleAdmin: {
		ViewActivityLog, ViewReports, ManageUsers, ManageSettings, ManageBackup,
		CreateCustomer, EditCustomer, RequestDeleteCustomer, ApproveDeleteCustomer,
		CreateSupplier, EditSupplier, RequestDeleteSupplier, ApproveDeleteSupplier,
		CreateProduct, EditProduct, RequestDeleteProduct, ApproveDeleteProduct,
		CreateSale, RequestDeleteSale, ApproveDeleteSale,
		CreatePurchase, RequestDeletePurchase, ApproveDeletePurchase,
		CreateExpense, EditExpense, RequestDeleteExpense, ApproveDeleteExpense,
	},
	RoleSalesManager: {
		ViewReports,
		CreateCustomer, EditCustomer, RequestDeleteCustomer, ApproveDeleteCustomer,
		CreateSale, RequestDeleteSale, ApproveDeleteSale,
	},
	RoleSalesStaff: {
		CreateCustomer, EditCustomer, RequestDeleteCustomer,
		CreateSale, RequestDeleteSale,
	},
	RolePurchaseManager: {
		ViewReports,
		CreateSupplier, EditSupplier, RequestDeleteSupplier, ApproveDeleteSupplier,
		CreateProduct, EditProduct, RequestDeleteProduct, ApproveDeleteProduct,
		CreatePurchase, RequestDeletePurchase, ApproveDeletePurchase,
	},
	RolePurchaseStaff: {
		CreateSupplier, EditSupplier, RequestDeleteSupplier,
		CreateProduct, EditProduct, RequestDeleteProduct,
		CreatePurchase, RequestDeletePurchase,
	},
	RoleAccountsManager: {
		ViewActivityLog, ViewReports, ManageAccounts,
		CreateExpense, EditExpense, RequestDeleteExpense, ApproveDeleteExpense,
		CreateJournalEntry, ApproveJournalEntry, RequestDeleteJournalEntry, ApproveDeleteJournalEntry,
	},
	RoleGeneralLedgerStaff: {
		ViewReports,
		CreateExpense, EditExpense, RequestDeleteExpense,
		CreateJournalEntry, RequestDeleteJournalEntry,
	},
}

// Has reports whether the role grants p. Super Admin holds every permission.
func (r Role) Has(p Permission) bool {
	if r == RoleSuperAdmin {
		return true
	}
	for _, granted := range rolePermissions[r] {
		if granted == p {
			return true
		}
	}
	return false
}

// Permissions lists what the role grants, nil meaning everything.
func (r Role) Permissions() []Permission {
	if r == RoleSuperAdmin {
		return nil
	}
	return rolePermissions[r]
}

// RequestDeletePermission is required to open a deletion request for a record type.
func RequestDeletePermission(rt ledger.RecordType) Permission {
	switch rt {
	case ledger.RecordCustomer:
		return RequestDeleteCustomer
	case ledger.RecordSupplier:
		return RequestDeleteSupplier
	case ledger.RecordProduct:
		return RequestDeleteProduct
	case ledger.RecordSale:
		return RequestDeleteSale
	case ledger.RecordPurchase:
		return RequestDeletePurchase
	case ledger.RecordExpense:
		return RequestDeleteExpense
	case ledger.RecordJournalEntry:
		return RequestDeleteJournalEntry
	}
	panic("auth: unhandled record type " + string(rt))
}

// ApproveDeletePermission is required to approve or reject a deletion request.
func ApproveDeletePermission(rt ledger.RecordType) Permission {
	switch rt {
	case ledger.RecordCustomer:
		return ApproveDeleteCustomer
	case ledger.RecordSupplier:
		return ApproveDeleteSupplier
	case ledger.RecordProduct:
		return ApproveDeleteProduct
	case ledger.RecordSale:
		return ApproveDeleteSale
	case ledger.RecordPurchase:
		return ApproveDeletePurchase
	case ledger.RecordExpense:
		return ApproveDeleteExpense
	case ledger.RecordJournalEntry:
		return ApproveDeleteJournalEntry
	}
	panic("auth: unhandled record type " + string(rt))
}
