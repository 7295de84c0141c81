package books

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/simonvc/minibooks/internal/auth"
	"github.com/simonvc/minibooks/internal/ledger"
	"github.com/simonvc/minibooks/internal/store"
)

type ContactInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type ProductInput struct {
	Name          string          `json:"name"`
	SKU           string          `json:"sku"`
	Category      string          `json:"category"`
	Unit          string          `json:"unit"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	SalePrice     decimal.Decimal `json:"sale_price"`
}

// ExpenseUpdate changes an expense's description. Date, category and amount
// are accepted only when unchanged.
type ExpenseUpdate struct {
	Date        *time.Time       `json:"date,omitempty"`
	Description *string          `json:"description,omitempty"`
	Category    *string          `json:"category,omitempty"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
}

func (s *Service) CreateCustomer(ctx context.Context, actor string, in ContactInput) (*ledger.Customer, error) {
	if err := s.require(ctx, actor, auth.CreateCustomer); err != nil {
		return nil, err
	}
	now := s.now()
	c := &ledger.Customer{
		ID:        s.newID(),
		Name:      strings.TrimSpace(in.Name),
		Email:     in.Email,
		Phone:     in.Phone,
		Address:   in.Address,
		Lifecycle: ledger.Active,
		Version:   1,
		CreatedBy: actor,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	err := s.store.WithTx(ctx, func(q *store.Queries) error {
		if err := q.InsertCustomer(ctx, c); err != nil {
			return err
		}
		return s.activity(ctx, q, actor, "Create Customer", c.Name)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateCustomer applies in over the stored customer at version and records
// the changed fields in the edit log.
func (s *Service) UpdateCustomer(ctx context.Context, actor, id string, version int64, in ContactInput) (*ledger.Customer, error) {
	if err := s.require(ctx, actor, auth.EditCustomer); err != nil {
		return nil, err
	}
	var updated *ledger.Customer
	err := s.store.WithTx(ctx, func(q *store.Queries) error {
		before, err := q.GetCustomer(ctx, id)
		if err != nil {
			return err
		}
		after := *before
		after.Name, after.Email, after.Phone, after.Address = strings.TrimSpace(in.Name), in.Email, in.Phone, in.Address
		after.Version = version
		after.UpdatedAt = s.now()
		if err := editable(ledger.RecordCustomer, id, before.Lifecycle, after.Validate()); err != nil {
			return err
		}
		if err := q.UpdateCustomer(ctx, &after); err != nil {
			return err
		}
		if err := s.recordEdits(ctx, q, actor, ledger.RecordCustomer, id, before, &after); err != nil {
			return err
		}
		updated = &after
		return s.activity(ctx, q, actor, "Update Customer", after.Name)
	})
	return updated, err
}

func (s *Service) GetCustomer(ctx context.Context, id string) (*ledger.Customer, error) {
	return s.store.GetCustomer(ctx, id)
}

func (s *Service) ListCustomers(ctx context.Context, includeDeleted bool) ([]ledger.Customer, error) {
	return s.store.ListCustomers(ctx, includeDeleted)
}

func (s *Service) CreateSupplier(ctx context.Context, actor string, in ContactInput) (*ledger.Supplier, error) {
	if err := s.require(ctx, actor, auth.CreateSupplier); err != nil {
		return nil, err
	}
	now := s.now()
	sup := &ledger.Supplier{
		ID:        s.newID(),
		Name:      strings.TrimSpace(in.Name),
		Email:     in.Email,
		Phone:     in.Phone,
		Address:   in.Address,
		Lifecycle: ledger.Active,
		Version:   1,
		CreatedBy: actor,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := sup.Validate(); err != nil {
		return nil, err
	}
	err := s.store.WithTx(ctx, func(q *store.Queries) error {
		if err := q.InsertSupplier(ctx, sup); err != nil {
			return err
		}
		return s.activity(ctx, q, actor, "Create Supplier", sup.Name)
	})
	if err != nil {
		return nil, err
	}
	return sup, nil
}

func (s *Service) UpdateSupplier(ctx context.Context, actor, id string, version int64, in ContactInput) (*ledger.Supplier, error) {
	if err := s.require(ctx, actor, auth.EditSupplier); err != nil {
		return nil, err
	}
	var updated *ledger.Supplier
	err := s.store.WithTx(ctx, func(q *store.Queries) error {
		before, err := q.GetSupplier(ctx, id)
		if err != nil {
			return err
		}
		after := *before
		after.Name, after.Email, after.Phone, after.Address = strings.TrimSpace(in.Name), in.Email, in.Phone, in.Address
		after.Version = version
		after.UpdatedAt = s.now()
		if err := editable(ledger.RecordSupplier, id, before.Lifecycle, after.Validate()); err != nil {
			return err
		}
		if err := q.UpdateSupplier(ctx, &after); err != nil {
			return err
		}
		if err := s.recordEdits(ctx, q, actor, ledger.RecordSupplier, id, before, &after); err != nil {
			return err
		}
		updated = &after
		return s.activity(ctx, q, actor, "Update Supplier", after.Name)
	})
	return updated, err
}

func (s *Service) GetSupplier(ctx context.Context, id string) (*ledger.Supplier, error) {
	return s.store.GetSupplier(ctx, id)
}

func (s *Service) ListSuppliers(ctx context.Context, includeDeleted bool) ([]ledger.Supplier, error) {
	return s.store.ListSuppliers(ctx, includeDeleted)
}

// CreateProduct adds a product with no stock; stock arrives through purchases
// and approved inventory entries.
func (s *Service) CreateProduct(ctx context.Context, actor string, in ProductInput) (*ledger.Product, error) {
	if err := s.require(ctx, actor, auth.CreateProduct); err != nil {
		return nil, err
	}
	now := s.now()
	p := &ledger.Product{
		ID:            s.newID(),
		Name:          strings.TrimSpace(in.Name),
		SKU:           in.SKU,
		Category:      in.Category,
		Unit:          in.Unit,
		PurchasePrice: in.PurchasePrice,
		SalePrice:     in.SalePrice,
		Lifecycle:     ledger.Active,
		Version:       1,
		CreatedBy:     actor,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	err := s.store.WithTx(ctx, func(q *store.Queries) error {
		if err := q.InsertProduct(ctx, p); err != nil {
			return err
		}
		return s.activity(ctx, q, actor, "Create Product", p.Name)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) UpdateProduct(ctx context.Context, actor, id string, version int64, in ProductInput) (*ledger.Product, error) {
	if err := s.require(ctx, actor, auth.EditProduct); err != nil {
		return nil, err
	}
	var updated *ledger.Product
	err := s.store.WithTx(ctx, func(q *store.Queries) error {
		before, err := q.GetProduct(ctx, id)
		if err != nil {
			return err
		}
		after := *before
		after.Name, after.SKU, after.Category, after.Unit = strings.TrimSpace(in.Name), in.SKU, in.Category, in.Unit
		after.PurchasePrice, after.SalePrice = in.PurchasePrice, in.SalePrice
		after.Version = version
		after.UpdatedAt = s.now()
		if err := editable(ledger.RecordProduct, id, before.Lifecycle, after.Validate()); err != nil {
			return err
		}
		if err := q.UpdateProduct(ctx, &after); err != nil {
			return err
		}
		if err := s.recordEdits(ctx, q, actor, ledger.RecordProduct, id, before, &after); err != nil {
			return err
		}
		updated = &after
		return s.activity(ctx, q, actor, "Update Product", after.Name)
	})
	return updated, err
}

func (s *Service) GetProduct(ctx context.Context, id string) (*ledger.Product, error) {
	return s.store.GetProduct(ctx, id)
}

func (s *Service) ListProducts(ctx context.Context, includeDeleted bool) ([]ledger.Product, error) {
	return s.store.ListProducts(ctx, includeDeleted)
}

// UpdateExpense changes the description of an expense. Date, category and
// amount are fixed by the posted journal entry; resending the current value
// is accepted.
func (s *Service) UpdateExpense(ctx context.Context, actor, id string, version int64, in ExpenseUpdate) (*ledger.Expense, error) {
	if err := s.require(ctx, actor, auth.EditExpense); err != nil {
		return nil, err
	}
	var updated *ledger.Expense
	err := s.store.WithTx(ctx, func(q *store.Queries) error {
		before, err := q.GetExpense(ctx, id)
		if err != nil {
			return err
		}
		if in.Category != nil && strings.TrimSpace(*in.Category) != before.Category {
			return fmt.Errorf("%w: expense category", ledger.ErrImmutableField)
		}
		if in.Amount != nil && !ledger.AmountsEqual(*in.Amount, before.Amount) {
			return fmt.Errorf("%w: expense amount", ledger.ErrImmutableField)
		}
		if in.Date != nil && !ledger.DateOf(*in.Date).Equal(before.Date) {
			return fmt.Errorf("%w: expense date", ledger.ErrImmutableField)
		}

		after := *before
		if in.Description != nil {
			after.Description = *in.Description
		}
		after.Version = version
		after.UpdatedAt = s.now()
		if err := editable(ledger.RecordExpense, id, before.Lifecycle, after.Validate()); err != nil {
			return err
		}
		if err := q.UpdateExpense(ctx, &after); err != nil {
			return err
		}
		if err := s.recordEdits(ctx, q, actor, ledger.RecordExpense, id, before, &after); err != nil {
			return err
		}
		updated = &after
		return s.activity(ctx, q, actor, "Update Expense", after.Category)
	})
	return updated, err
}

// editable rejects updates of deleted records, then reports validation.
func editable(rt ledger.RecordType, id string, lc ledger.Lifecycle, validation error) error {
	if lc == ledger.Deleted {
		return fmt.Errorf("%w: %s %s is deleted", ledger.ErrRecordNotActive, rt.Label(), id)
	}
	return validation
}

func (s *Service) recordEdits(ctx context.Context, q *store.Queries, actor string, rt ledger.RecordType, id string, before, after any) error {
	edits, err := ledger.Diff(rt, id, actor, s.now(), before, after)
	if err != nil {
		return err
	}
	return q.AppendEdits(ctx, edits)
}

// History lists the field edits of one record, or of every record of a
// type when id is empty.
func (s *Service) History(ctx context.Context, rt ledger.RecordType, id string) ([]ledger.EditLog, error) {
	if rt != "" {
		if _, err := ledger.ParseRecordType(string(rt)); err != nil {
			return nil, err
		}
	}
	return s.store.ListEdits(ctx, rt, id)
}

// Activity lists the newest activity first. A non-positive limit lists everything.
func (s *Service) Activity(ctx context.Context, actor string, limit int) ([]ledger.ActivityLog, error) {
	if err := s.require(ctx, actor, auth.ViewActivityLog); err != nil {
		return nil, err
	}
	return s.store.ListActivity(ctx, limit)
}
