package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/simonvc/minibooks/internal/ledger"
)

type EntryFilter struct {
	Status         ledger.Approval
	IncludeDeleted bool
	From           time.Time
	To             time.Time
	Limit          int
}

const entryColumns = `id, date, description, status, lifecycle, source_type, source_id, created_by, created_at, approved_by, approved_at`

// InsertEntry writes the entry and its lines, then seals it. The seal
// trigger re-checks the balance and sealed lines can no longer change.
func (q *Queries) InsertEntry(ctx context.Context, e *ledger.JournalEntry) error {
	_, err := q.q.ExecContext(ctx,
		`INSERT INTO journal_entries (`+entryColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, formatDate(e.Date), e.Description, string(e.Status), string(e.Lifecycle),
		string(e.SourceType), e.SourceID, e.CreatedBy, formatTime(e.CreatedAt), e.ApprovedBy, nullTime(e.ApprovedAt),
	)
	if err != nil {
		return dbError("insert journal entry", err)
	}

	for i, l := range e.Lines {
		_, err = q.q.ExecContext(ctx,
			`INSERT INTO journal_lines (entry_id, account_id, debit, credit, product_id, quantity, customer_id, supplier_id)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			e.ID, l.AccountID, l.Debit, l.Credit, l.ProductID, l.Quantity, l.CustomerID, l.SupplierID,
		)
		if err != nil {
			return dbError(fmt.Sprintf("insert journal line %d", i+1), err)
		}
	}

	if _, err := q.q.ExecContext(ctx, `UPDATE journal_entries SET sealed = 1 WHERE id = ?`, e.ID); err != nil {
		return dbError("seal journal entry", err)
	}
	return nil
}

// MarkApproved moves a pending entry to approved. It reports
// ErrAlreadyApproved when the entry was not pending.
func (q *Queries) MarkApproved(ctx context.Context, id, approver string, at time.Time) error {
	res, err := q.q.ExecContext(ctx,
		`UPDATE journal_entries SET status = 'approved', approved_by = ?, approved_at = ?
		 WHERE id = ? AND status = 'pending_approval'`,
		approver, formatTime(at), id,
	)
	if err != nil {
		return dbError("approve journal entry", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := q.GetEntry(ctx, id); err != nil {
			return err
		}
		return fmt.Errorf("%w: %s", ledger.ErrAlreadyApproved, id)
	}
	return nil
}

func (q *Queries) GetEntry(ctx context.Context, id string) (*ledger.JournalEntry, error) {
	row := q.q.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM journal_entries WHERE id = ?`, id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ledger.ErrEntryNotFound, id)
	}
	if err != nil {
		return nil, dbError("get journal entry", err)
	}

	lines, err := q.linesWhere(ctx, `l.entry_id = ?`, id)
	if err != nil {
		return nil, err
	}
	e.Lines = lines[e.ID]
	return e, nil
}

// ListEntries returns matching entries in insertion order with their lines.
func (q *Queries) ListEntries(ctx context.Context, filter EntryFilter) ([]ledger.JournalEntry, error) {
	where, args := entryWhere(filter)

	rows, err := q.q.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM journal_entries e WHERE `+where+` ORDER BY e.seq`+limitClause(filter.Limit),
		args...)
	if err != nil {
		return nil, dbError("list journal entries", err)
	}
	defer rows.Close()

	var entries []ledger.JournalEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, dbError("scan journal entry", err)
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("list journal entries", err)
	}
	if len(entries) == 0 {
		return entries, nil
	}

	lines, err := q.linesWhere(ctx, `l.entry_id IN (SELECT e.id FROM journal_entries e WHERE `+where+`)`, args...)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].Lines = lines[entries[i].ID]
	}
	return entries, nil
}

func entryWhere(f EntryFilter) (string, []any) {
	conds := []string{"1=1"}
	var args []any
	if f.Status != "" {
		conds = append(conds, "e.status = ?")
		args = append(args, string(f.Status))
	}
	if !f.IncludeDeleted {
		conds = append(conds, "e.lifecycle != 'deleted'")
	}
	if !f.From.IsZero() {
		conds = append(conds, "e.date >= ?")
		args = append(args, formatDate(f.From))
	}
	if !f.To.IsZero() {
		conds = append(conds, "e.date <= ?")
		args = append(args, formatDate(f.To))
	}
	return strings.Join(conds, " AND "), args
}

func (q *Queries) linesWhere(ctx context.Context, where string, args ...any) (map[string][]ledger.Line, error) {
	rows, err := q.q.QueryContext(ctx,
		`SELECT l.entry_id, l.account_id, l.debit, l.credit, l.product_id, l.quantity, l.customer_id, l.supplier_id
		 FROM journal_lines l WHERE `+where+` ORDER BY l.id`, args...)
	if err != nil {
		return nil, dbError("list journal lines", err)
	}
	defer rows.Close()

	lines := map[string][]ledger.Line{}
	for rows.Next() {
		var entryID string
		var l ledger.Line
		if err := rows.Scan(&entryID, &l.AccountID, &l.Debit, &l.Credit, &l.ProductID, &l.Quantity, &l.CustomerID, &l.SupplierID); err != nil {
			return nil, dbError("scan journal line", err)
		}
		lines[entryID] = append(lines[entryID], l)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("list journal lines", err)
	}
	return lines, nil
}

func scanEntry(row scanner) (*ledger.JournalEntry, error) {
	var e ledger.JournalEntry
	var date, createdAt string
	var approvedAt sql.NullString
	err := row.Scan(&e.ID, &date, &e.Description, &e.Status, &e.Lifecycle, &e.SourceType, &e.SourceID,
		&e.CreatedBy, &createdAt, &e.ApprovedBy, &approvedAt)
	if err != nil {
		return nil, err
	}
	e.Date = parseDate(date)
	e.CreatedAt = parseTime(createdAt)
	e.ApprovedAt = timePtr(approvedAt)
	return &e, nil
}
