package books

import (
	"context"
	"fmt"
	"strings"

	"github.com/simonvc/minibooks/internal/auth"
	"github.com/simonvc/minibooks/internal/ledger"
	"github.com/simonvc/minibooks/internal/store"
)

type UserInput struct {
	ID     string    `json:"id"`
	Name   string    `json:"name"`
	Email  string    `json:"email"`
	Role   auth.Role `json:"role"`
	Active bool      `json:"active"`
}

func (in UserInput) user() (*auth.User, error) {
	role, err := auth.ParseRole(string(in.Role))
	if err != nil {
		return nil, err
	}
	u := &auth.User{
		ID:     strings.TrimSpace(in.ID),
		Name:   strings.TrimSpace(in.Name),
		Email:  in.Email,
		Role:   role,
		Active: in.Active,
	}
	if u.Name == "" {
		return nil, fmt.Errorf("%w: user name", ledger.ErrMissingField)
	}
	return u, nil
}

// CreateUser adds a user. An empty id is generated.
func (s *Service) CreateUser(ctx context.Context, actor string, in UserInput) (*auth.User, error) {
	if err := s.require(ctx, actor, auth.ManageUsers); err != nil {
		return nil, err
	}
	u, err := in.user()
	if err != nil {
		return nil, err
	}
	if u.ID == "" {
		u.ID = s.newID()
	}
	u.CreatedAt = s.now()

	err = s.store.WithTx(ctx, func(q *store.Queries) error {
		if err := q.InsertUser(ctx, u); err != nil {
			return err
		}
		return s.activity(ctx, q, actor, "Create User", fmt.Sprintf("%s (%s)", u.Name, u.Role))
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) UpdateUser(ctx context.Context, actor, id string, in UserInput) (*auth.User, error) {
	if err := s.require(ctx, actor, auth.ManageUsers); err != nil {
		return nil, err
	}
	u, err := in.user()
	if err != nil {
		return nil, err
	}
	u.ID = id

	err = s.store.WithTx(ctx, func(q *store.Queries) error {
		current, err := q.GetUser(ctx, id)
		if err != nil {
			return err
		}
		u.CreatedAt = current.CreatedAt
		if err := q.UpdateUser(ctx, u); err != nil {
			return err
		}
		return s.activity(ctx, q, actor, "Update User", fmt.Sprintf("%s (%s)", u.Name, u.Role))
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) GetUser(ctx context.Context, id string) (*auth.User, error) {
	return s.store.GetUser(ctx, id)
}

func (s *Service) ListUsers(ctx context.Context) ([]auth.User, error) {
	return s.store.ListUsers(ctx)
}

func (s *Service) GetAccount(ctx context.Context, id string) (*ledger.Account, error) {
	return s.store.GetAccount(ctx, id)
}

func (s *Service) ListAccounts(ctx context.Context) ([]ledger.Account, error) {
	return s.store.ListAccounts(ctx)
}

// CreateAccount extends the chart. Accounts are never deleted and their type
// never changes.
func (s *Service) CreateAccount(ctx context.Context, actor string, acct ledger.Account) (*ledger.Account, error) {
	if err := s.require(ctx, actor, auth.ManageAccounts); err != nil {
		return nil, err
	}
	acct.ID = strings.TrimSpace(acct.ID)
	acct.Name = strings.TrimSpace(acct.Name)
	acct.CreatedAt = s.now()
	if err := acct.Validate(); err != nil {
		return nil, err
	}
	err := s.store.WithTx(ctx, func(q *store.Queries) error {
		if err := q.InsertAccount(ctx, &acct); err != nil {
			return err
		}
		return s.activity(ctx, q, actor, "Create Account", fmt.Sprintf("%s %s (%s)", acct.ID, acct.Name, acct.Type))
	})
	if err != nil {
		return nil, err
	}
	return &acct, nil
}

func (s *Service) Settings(ctx context.Context) (map[string]string, error) {
	return s.store.ListSettings(ctx)
}

func (s *Service) AccountMap(ctx context.Context) (ledger.AccountMap, error) {
	return s.store.AccountMap(ctx)
}

// SetAccountRole points a posting role at another account. The account must
// exist and have the type the role requires.
func (s *Service) SetAccountRole(ctx context.Context, actor string, role ledger.AccountRole, accountID string) error {
	if err := s.require(ctx, actor, auth.ManageSettings); err != nil {
		return err
	}
	want, ok := roleTypes[role]
	if !ok {
		return fmt.Errorf("%w: unknown account role %q", ledger.ErrMissingField, role)
	}
	return s.store.WithTx(ctx, func(q *store.Queries) error {
		acct, err := q.GetAccount(ctx, accountID)
		if err != nil {
			return err
		}
		if acct.Type != want {
			return fmt.Errorf("%w: %s must be a %s account, %s is %s",
				ledger.ErrInvalidAccountType, role, want, acct.ID, acct.Type)
		}
		if err := q.PutSetting(ctx, role.SettingKey(), acct.ID); err != nil {
			return err
		}
		return s.activity(ctx, q, actor, "Update Settings", fmt.Sprintf("%s = %s", role.SettingKey(), acct.ID))
	})
}

var roleTypes = map[ledger.AccountRole]ledger.AccountType{
	ledger.RoleCash:           ledger.Asset,
	ledger.RoleReceivable:     ledger.Asset,
	ledger.RoleInventory:      ledger.Asset,
	ledger.RoleInputTax:       ledger.Asset,
	ledger.RolePayable:        ledger.Liability,
	ledger.RoleSalesTax:       ledger.Liability,
	ledger.RoleSalesRevenue:   ledger.Revenue,
	ledger.RoleCOGS:           ledger.ExpenseAccount,
	ledger.RoleDefaultExpense: ledger.ExpenseAccount,
}
