package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/simonvc/minibooks/internal/ledger"
)

// Customers and suppliers share one row shape; suppliers are converted
// to and from ledger.Customer.

const contactColumns = `id, name, email, phone, address, lifecycle, version, created_by, created_at, updated_at`

func (q *Queries) InsertCustomer(ctx context.Context, c *ledger.Customer) error {
	return q.insertContact(ctx, "customers", c)
}

func (q *Queries) UpdateCustomer(ctx context.Context, c *ledger.Customer) error {
	return q.updateContact(ctx, "customers", c, ledger.ErrCustomerNotFound)
}

func (q *Queries) GetCustomer(ctx context.Context, id string) (*ledger.Customer, error) {
	return q.getContact(ctx, "customers", id, ledger.ErrCustomerNotFound)
}

func (q *Queries) ListCustomers(ctx context.Context, includeDeleted bool) ([]ledger.Customer, error) {
	return q.listContacts(ctx, "customers", includeDeleted)
}

func (q *Queries) InsertSupplier(ctx context.Context, s *ledger.Supplier) error {
	c := ledger.Customer(*s)
	return q.insertContact(ctx, "suppliers", &c)
}

func (q *Queries) UpdateSupplier(ctx context.Context, s *ledger.Supplier) error {
	c := ledger.Customer(*s)
	if err := q.updateContact(ctx, "suppliers", &c, ledger.ErrSupplierNotFound); err != nil {
		return err
	}
	*s = ledger.Supplier(c)
	return nil
}

func (q *Queries) GetSupplier(ctx context.Context, id string) (*ledger.Supplier, error) {
	c, err := q.getContact(ctx, "suppliers", id, ledger.ErrSupplierNotFound)
	if err != nil {
		return nil, err
	}
	s := ledger.Supplier(*c)
	return &s, nil
}

func (q *Queries) ListSuppliers(ctx context.Context, includeDeleted bool) ([]ledger.Supplier, error) {
	cs, err := q.listContacts(ctx, "suppliers", includeDeleted)
	if err != nil {
		return nil, err
	}
	out := make([]ledger.Supplier, len(cs))
	for i, c := range cs {
		out[i] = ledger.Supplier(c)
	}
	return out, nil
}

func (q *Queries) insertContact(ctx context.Context, table string, c *ledger.Customer) error {
	_, err := q.q.ExecContext(ctx,
		`INSERT INTO `+table+` (`+contactColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Email, c.Phone, c.Address, string(c.Lifecycle), c.Version,
		c.CreatedBy, formatTime(c.CreatedAt), formatTime(c.UpdatedAt),
	)
	if err != nil {
		return dbError("insert "+table, err)
	}
	return nil
}

// updateContact writes c if its Version matches the stored row, then bumps
// the version.
func (q *Queries) updateContact(ctx context.Context, table string, c *ledger.Customer, notFound error) error {
	res, err := q.q.ExecContext(ctx,
		`UPDATE `+table+` SET name = ?, email = ?, phone = ?, address = ?, version = version + 1, updated_at = ?
		 WHERE id = ? AND version = ?`,
		c.Name, c.Email, c.Phone, c.Address, formatTime(c.UpdatedAt), c.ID, c.Version,
	)
	if err != nil {
		return dbError("update "+table, err)
	}
	if err := q.checkVersioned(ctx, res, table, c.ID, c.Version, notFound); err != nil {
		return err
	}
	c.Version++
	return nil
}

func (q *Queries) getContact(ctx context.Context, table, id string, notFound error) (*ledger.Customer, error) {
	row := q.q.QueryRowContext(ctx, `SELECT `+contactColumns+` FROM `+table+` WHERE id = ?`, id)
	c, err := scanContact(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", notFound, id)
	}
	if err != nil {
		return nil, dbError("get "+table, err)
	}
	return c, nil
}

func (q *Queries) listContacts(ctx context.Context, table string, includeDeleted bool) ([]ledger.Customer, error) {
	query := `SELECT ` + contactColumns + ` FROM ` + table
	if !includeDeleted {
		query += ` WHERE lifecycle != 'deleted'`
	}
	query += ` ORDER BY name`

	rows, err := q.q.QueryContext(ctx, query)
	if err != nil {
		return nil, dbError("list "+table, err)
	}
	defer rows.Close()

	var out []ledger.Customer
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, dbError("scan "+table, err)
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("list "+table, err)
	}
	return out, nil
}

func scanContact(row scanner) (*ledger.Customer, error) {
	var c ledger.Customer
	var createdAt, updatedAt string
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.Lifecycle, &c.Version,
		&c.CreatedBy, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	c.CreatedAt = parseTime(createdAt)
	c.UpdatedAt = parseTime(updatedAt)
	return &c, nil
}

// checkVersioned turns a zero-row versioned update into NotFound or a stale
// version conflict.
func (q *Queries) checkVersioned(ctx context.Context, res sql.Result, table, id string, version int64, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return dbError("update "+table, err)
	}
	if n > 0 {
		return nil
	}
	var current int64
	err = q.q.QueryRowContext(ctx, `SELECT version FROM `+table+` WHERE id = ?`, id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", notFound, id)
	}
	if err != nil {
		return dbError("update "+table, err)
	}
	return fmt.Errorf("%w: %s is at version %d, update was based on %d", ledger.ErrStaleVersion, id, current, version)
}
