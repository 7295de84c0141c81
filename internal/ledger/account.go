package ledger

import (
	"fmt"
	"strings"
	"time"
)

type AccountType string

const (
	Asset          AccountType = "Asset"
	Liability      AccountType = "Liability"
	Equity         AccountType = "Equity"
	Revenue        AccountType = "Revenue"
	ExpenseAccount AccountType = "Expense"
)

var AllAccountTypes = []AccountType{
	Asset,
	Liability,
	Equity,
	Revenue,
	ExpenseAccount,
}

type Account struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Type      AccountType `json:"type"`
	CreatedAt time.Time   `json:"created_at"`
}

// ParseAccountType accepts any casing of the five account types.
func ParseAccountType(s string) (AccountType, error) {
	for _, t := range AllAccountTypes {
		if strings.EqualFold(string(t), s) {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidAccountType, s)
}

// DebitNormal reports whether balances of this type grow on the debit side.
// Assets and Expenses are debit-normal; Liabilities, Equity, and Revenue are credit-normal.
func (t AccountType) DebitNormal() bool {
	return t == Asset || t == ExpenseAccount
}

// NormalBalance returns "Debit" or "Credit" for the account type.
func NormalBalance(t AccountType) string {
	if t.DebitNormal() {
		return "Debit"
	}
	return "Credit"
}

func (a *Account) Validate() error {
	if strings.TrimSpace(a.ID) == "" {
		return fmt.Errorf("%w: account id", ErrMissingField)
	}
	if strings.TrimSpace(a.Name) == "" {
		return fmt.Errorf("%w: account name", ErrMissingField)
	}
	if _, err := ParseAccountType(string(a.Type)); err != nil {
		return err
	}
	return nil
}

// AccountRole names an account the posting rules need to find by purpose.
type AccountRole string

const (
	RoleCash           AccountRole = "cash"
	RoleReceivable     AccountRole = "receivable"
	RolePayable        AccountRole = "payable"
	RoleInventory      AccountRole = "inventory"
	RoleInputTax       AccountRole = "input_tax"
	RoleSalesTax       AccountRole = "sales_tax"
	RoleSalesRevenue   AccountRole = "sales_revenue"
	RoleCOGS           AccountRole = "cogs"
	RoleDefaultExpense AccountRole = "default_expense"
)

var AllAccountRoles = []AccountRole{
	RoleCash, RoleReceivable, RolePayable, RoleInventory, RoleInputTax,
	RoleSalesTax, RoleSalesRevenue, RoleCOGS, RoleDefaultExpense,
}

// AccountMap resolves account roles to chart ids.
type AccountMap struct {
	Cash           string `json:"cash"`
	Receivable     string `json:"receivable"`
	Payable        string `json:"payable"`
	Inventory      string `json:"inventory"`
	InputTax       string `json:"input_tax"`
	SalesTax       string `json:"sales_tax"`
	SalesRevenue   string `json:"sales_revenue"`
	COGS           string `json:"cogs"`
	DefaultExpense string `json:"default_expense"`
}

func DefaultAccountMap() AccountMap {
	return AccountMap{
		Cash:           "101",
		Receivable:     "102",
		Inventory:      "103",
		InputTax:       "104",
		Payable:        "201",
		SalesTax:       "202",
		SalesRevenue:   "401",
		COGS:           "501",
		DefaultExpense: "503",
	}
}

func (m *AccountMap) field(role AccountRole) *string {
	switch role {
	case RoleCash:
		return &m.Cash
	case RoleReceivable:
		return &m.Receivable
	case RolePayable:
		return &m.Payable
	case RoleInventory:
		return &m.Inventory
	case RoleInputTax:
		return &m.InputTax
	case RoleSalesTax:
		return &m.SalesTax
	case RoleSalesRevenue:
		return &m.SalesRevenue
	case RoleCOGS:
		return &m.COGS
	case RoleDefaultExpense:
		return &m.DefaultExpense
	}
	return nil
}

func (m AccountMap) Get(role AccountRole) string {
	if f := m.field(role); f != nil {
		return *f
	}
	return ""
}

// Set overrides one role. An empty id clears it, which disables the default
// expense fallback for that role.
func (m *AccountMap) Set(role AccountRole, id string) error {
	f := m.field(role)
	if f == nil {
		return fmt.Errorf("%w: unknown account role %q", ErrMissingField, role)
	}
	*f = id
	return nil
}

// SettingKey is the settings collection key that overrides a role.
func (r AccountRole) SettingKey() string {
	return "account." + string(r)
}
