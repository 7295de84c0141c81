package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/simonvc/minibooks/internal/ledger"
)

// Sales and purchases share one row shape, differing only in the
// counterparty column.

type tradeRow struct {
	ledger.Sale
	partyID string
}

type tradeTable struct {
	name     string
	partyCol string
	notFound error
}

var (
	salesTable     = tradeTable{name: "sales", partyCol: "customer_id", notFound: newNotFound("sale")}
	purchasesTable = tradeTable{name: "purchases", partyCol: "supplier_id", notFound: newNotFound("purchase")}
)

func newNotFound(what string) error {
	return fmt.Errorf("%w: %s", ledger.ErrRecordNotFound, what)
}

func (t tradeTable) columns() string {
	return `id, invoice_number, ` + t.partyCol + `, date, items, subtotal, tax_rate, tax_amount, total,
		payment_method, status, lifecycle, journal_entry_id, created_by, created_at`
}

func (q *Queries) InsertSale(ctx context.Context, s *ledger.Sale) error {
	return q.insertTrade(ctx, salesTable, tradeRow{Sale: *s, partyID: s.CustomerID})
}

func (q *Queries) GetSale(ctx context.Context, id string) (*ledger.Sale, error) {
	r, err := q.getTrade(ctx, salesTable, id)
	if err != nil {
		return nil, err
	}
	s := r.Sale
	s.CustomerID = r.partyID
	return &s, nil
}

func (q *Queries) ListSales(ctx context.Context, includeDeleted bool) ([]ledger.Sale, error) {
	rows, err := q.listTrades(ctx, salesTable, includeDeleted)
	if err != nil {
		return nil, err
	}
	out := make([]ledger.Sale, len(rows))
	for i, r := range rows {
		out[i] = r.Sale
		out[i].CustomerID = r.partyID
	}
	return out, nil
}

func (q *Queries) InsertPurchase(ctx context.Context, p *ledger.Purchase) error {
	return q.insertTrade(ctx, purchasesTable, tradeRow{Sale: purchaseAsSale(p), partyID: p.SupplierID})
}

func (q *Queries) GetPurchase(ctx context.Context, id string) (*ledger.Purchase, error) {
	r, err := q.getTrade(ctx, purchasesTable, id)
	if err != nil {
		return nil, err
	}
	p := saleAsPurchase(*r)
	return &p, nil
}

func (q *Queries) ListPurchases(ctx context.Context, includeDeleted bool) ([]ledger.Purchase, error) {
	rows, err := q.listTrades(ctx, purchasesTable, includeDeleted)
	if err != nil {
		return nil, err
	}
	out := make([]ledger.Purchase, len(rows))
	for i, r := range rows {
		out[i] = saleAsPurchase(r)
	}
	return out, nil
}

// InvoiceNumbers lists every invoice number of a record type that starts with prefix.
func (q *Queries) InvoiceNumbers(ctx context.Context, rt ledger.RecordType, prefix string) ([]string, error) {
	var t tradeTable
	switch rt {
	case ledger.RecordSale:
		t = salesTable
	case ledger.RecordPurchase:
		t = purchasesTable
	default:
		return nil, fmt.Errorf("%w: %s has no invoice numbers", ledger.ErrInvalidRecordType, rt)
	}

	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(prefix)
	rows, err := q.q.QueryContext(ctx,
		`SELECT invoice_number FROM `+t.name+` WHERE invoice_number LIKE ? ESCAPE '\'`, escaped+"%")
	if err != nil {
		return nil, dbError("list invoice numbers", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, dbError("scan invoice number", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("list invoice numbers", err)
	}
	return out, nil
}

func (q *Queries) insertTrade(ctx context.Context, t tradeTable, r tradeRow) error {
	items, err := json.Marshal(r.Items)
	if err != nil {
		return fmt.Errorf("marshal items: %w", err)
	}
	_, err = q.q.ExecContext(ctx,
		`INSERT INTO `+t.name+` (`+t.columns()+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.InvoiceNumber, r.partyID, formatDate(r.Date), string(items),
		r.Subtotal, r.TaxRate, r.TaxAmount, r.Total,
		string(r.PaymentMethod), string(r.Status), string(r.Lifecycle), r.JournalEntryID,
		r.CreatedBy, formatTime(r.CreatedAt),
	)
	if err != nil {
		err = dbError("insert "+t.name, err)
		if errors.Is(err, ledger.ErrDuplicateRecord) {
			return fmt.Errorf("%w: %s", ledger.ErrDuplicateInvoice, r.InvoiceNumber)
		}
		return err
	}
	return nil
}

func (q *Queries) getTrade(ctx context.Context, t tradeTable, id string) (*tradeRow, error) {
	row := q.q.QueryRowContext(ctx, `SELECT `+t.columns()+` FROM `+t.name+` WHERE id = ?`, id)
	r, err := scanTrade(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w %s", t.notFound, id)
	}
	if err != nil {
		return nil, dbError("get "+t.name, err)
	}
	return r, nil
}

func (q *Queries) listTrades(ctx context.Context, t tradeTable, includeDeleted bool) ([]tradeRow, error) {
	query := `SELECT ` + t.columns() + ` FROM ` + t.name
	if !includeDeleted {
		query += ` WHERE lifecycle != 'deleted'`
	}
	query += ` ORDER BY date, created_at`

	rows, err := q.q.QueryContext(ctx, query)
	if err != nil {
		return nil, dbError("list "+t.name, err)
	}
	defer rows.Close()

	var out []tradeRow
	for rows.Next() {
		r, err := scanTrade(rows)
		if err != nil {
			return nil, dbError("scan "+t.name, err)
		}
		out = append(out, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("list "+t.name, err)
	}
	return out, nil
}

func scanTrade(row scanner) (*tradeRow, error) {
	var r tradeRow
	var date, items, createdAt string
	err := row.Scan(&r.ID, &r.InvoiceNumber, &r.partyID, &date, &items,
		&r.Subtotal, &r.TaxRate, &r.TaxAmount, &r.Total,
		&r.PaymentMethod, &r.Status, &r.Lifecycle, &r.JournalEntryID, &r.CreatedBy, &createdAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(items), &r.Items); err != nil {
		return nil, fmt.Errorf("decode items of %s: %w", r.ID, err)
	}
	r.Date = parseDate(date)
	r.CreatedAt = parseTime(createdAt)
	return &r, nil
}

func purchaseAsSale(p *ledger.Purchase) ledger.Sale {
	return ledger.Sale{
		ID: p.ID, InvoiceNumber: p.InvoiceNumber, Date: p.Date, Items: p.Items,
		PaymentMethod: p.PaymentMethod, Status: p.Status, Lifecycle: p.Lifecycle,
		JournalEntryID: p.JournalEntryID, CreatedBy: p.CreatedBy, CreatedAt: p.CreatedAt,
		Totals: p.Totals,
	}
}

func saleAsPurchase(r tradeRow) ledger.Purchase {
	return ledger.Purchase{
		ID: r.ID, InvoiceNumber: r.InvoiceNumber, SupplierID: r.partyID, Date: r.Date, Items: r.Items,
		PaymentMethod: r.PaymentMethod, Status: r.Status, Lifecycle: r.Lifecycle,
		JournalEntryID: r.JournalEntryID, CreatedBy: r.CreatedBy, CreatedAt: r.CreatedAt,
		Totals: r.Totals,
	}
}
