package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/simonvc/minibooks/internal/ledger"
)

const productColumns = `id, name, sku, category, unit, purchase_price, sale_price, stock, lifecycle, version, created_by, created_at, updated_at`

func (q *Queries) InsertProduct(ctx context.Context, p *ledger.Product) error {
	_, err := q.q.ExecContext(ctx,
		`INSERT INTO products (`+productColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.SKU, p.Category, p.Unit, p.PurchasePrice, p.SalePrice, p.Stock,
		string(p.Lifecycle), p.Version, p.CreatedBy, formatTime(p.CreatedAt), formatTime(p.UpdatedAt),
	)
	if err != nil {
		return dbError("insert product", err)
	}
	return nil
}

// UpdateProduct writes descriptive fields and prices. Stock is left alone;
// only AdjustStock moves it.
func (q *Queries) UpdateProduct(ctx context.Context, p *ledger.Product) error {
	res, err := q.q.ExecContext(ctx,
		`UPDATE products SET name = ?, sku = ?, category = ?, unit = ?, purchase_price = ?, sale_price = ?,
			version = version + 1, updated_at = ?
		 WHERE id = ? AND version = ?`,
		p.Name, p.SKU, p.Category, p.Unit, p.PurchasePrice, p.SalePrice, formatTime(p.UpdatedAt), p.ID, p.Version,
	)
	if err != nil {
		return dbError("update product", err)
	}
	if err := q.checkVersioned(ctx, res, "products", p.ID, p.Version, ledger.ErrProductNotFound); err != nil {
		return err
	}
	p.Version++
	return nil
}

// AdjustStock adds delta to a product's stock. The schema rejects a
// negative result.
func (q *Queries) AdjustStock(ctx context.Context, id string, delta int64) error {
	res, err := q.q.ExecContext(ctx, `UPDATE products SET stock = stock + ? WHERE id = ?`, delta, id)
	if err != nil {
		return dbError("adjust stock", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ledger.ErrProductNotFound, id)
	}
	return nil
}

func (q *Queries) GetProduct(ctx context.Context, id string) (*ledger.Product, error) {
	row := q.q.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = ?`, id)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ledger.ErrProductNotFound, id)
	}
	if err != nil {
		return nil, dbError("get product", err)
	}
	return p, nil
}

func (q *Queries) ListProducts(ctx context.Context, includeDeleted bool) ([]ledger.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products`
	if !includeDeleted {
		query += ` WHERE lifecycle != 'deleted'`
	}
	query += ` ORDER BY name`

	rows, err := q.q.QueryContext(ctx, query)
	if err != nil {
		return nil, dbError("list products", err)
	}
	defer rows.Close()

	var products []ledger.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, dbError("scan product", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("list products", err)
	}
	return products, nil
}

func scanProduct(row scanner) (*ledger.Product, error) {
	var p ledger.Product
	var createdAt, updatedAt string
	err := row.Scan(&p.ID, &p.Name, &p.SKU, &p.Category, &p.Unit, &p.PurchasePrice, &p.SalePrice, &p.Stock,
		&p.Lifecycle, &p.Version, &p.CreatedBy, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	p.CreatedAt = parseTime(createdAt)
	p.UpdatedAt = parseTime(updatedAt)
	return &p, nil
}
