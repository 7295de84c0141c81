package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/simonvc/minibooks/internal/ledger"
)

type Role string

const (
	RoleSuperAdmin         Role = "Super Admin"
	RoleAdmin              Role = "Admin"
	RoleSalesManager       Role = "Sales Manager"
	RoleSalesStaff         Role = "Sales Staff"
	RolePurchaseManager    Role = "Purchase Manager"
	RolePurchaseStaff      Role = "Purchase Staff"
	RoleAccountsManager    Role = "Accounts Manager"
	RoleGeneralLedgerStaff Role = "General Ledger Staff"
)

var AllRoles = []Role{
	RoleSuperAdmin,
	RoleAdmin,
	RoleSalesManager,
	RoleSalesStaff,
	RolePurchaseManager,
	RolePurchaseStaff,
	RoleAccountsManager,
	RoleGeneralLedgerStaff,
}

func ParseRole(s string) (Role, error) {
	for _, r := range AllRoles {
		if strings.EqualFold(string(r), s) {
			return r, nil
		}
	}
	return "", fmt.Errorf("%w: unknown role %q", ledger.ErrMissingField, s)
}

type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// SystemUser is seeded on first start so a fresh database can be administered.
var SystemUser = User{ID: "admin", Name: "Administrator", Email: "admin@localhost", Role: RoleSuperAdmin, Active: true}

// UserSource looks users up by id.
type UserSource interface {
	GetUser(ctx context.Context, id string) (*User, error)
}

// Authorizer re-checks caller permissions at the service boundary.
type Authorizer struct {
	users UserSource
}

func NewAuthorizer(users UserSource) *Authorizer {
	return &Authorizer{users: users}
}

// Require fails with ledger.ErrForbidden unless userID is an active user
// whose role grants p.
func (a *Authorizer) Require(ctx context.Context, userID string, p Permission) error {
	if userID == "" {
		return fmt.Errorf("%w: no user", ledger.ErrForbidden)
	}
	u, err := a.users.GetUser(ctx, userID)
	if err != nil {
		if ledger.Kind(err) == ledger.ErrNotFound {
			return fmt.Errorf("%w: unknown user %s", ledger.ErrForbidden, userID)
		}
		return err
	}
	if !u.Active {
		return fmt.Errorf("%w: user %s is inactive", ledger.ErrForbidden, userID)
	}
	if !u.Role.Has(p) {
		return fmt.Errorf("%w: %s (%s) lacks %s", ledger.ErrForbidden, u.Name, u.Role, p)
	}
	return nil
}
