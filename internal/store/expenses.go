package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/simonvc/minibooks/internal/ledger"
)

const expenseColumns = `id, date, category, description, amount, status, lifecycle, journal_entry_id, version, created_by, created_at, updated_at`

var errExpenseNotFound = newNotFound("expense")

func (q *Queries) InsertExpense(ctx context.Context, e *ledger.Expense) error {
	_, err := q.q.ExecContext(ctx,
		`INSERT INTO expenses (`+expenseColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, formatDate(e.Date), e.Category, e.Description, e.Amount, string(e.Status), string(e.Lifecycle),
		e.JournalEntryID, e.Version, e.CreatedBy, formatTime(e.CreatedAt), formatTime(e.UpdatedAt),
	)
	if err != nil {
		return dbError("insert expense", err)
	}
	return nil
}

// UpdateExpense writes the descriptive fields of an expense. Amount and
// category are part of its ledger footprint and never change here.
func (q *Queries) UpdateExpense(ctx context.Context, e *ledger.Expense) error {
	res, err := q.q.ExecContext(ctx,
		`UPDATE expenses SET date = ?, description = ?, version = version + 1, updated_at = ?
		 WHERE id = ? AND version = ?`,
		formatDate(e.Date), e.Description, formatTime(e.UpdatedAt), e.ID, e.Version,
	)
	if err != nil {
		return dbError("update expense", err)
	}
	if err := q.checkVersioned(ctx, res, "expenses", e.ID, e.Version, errExpenseNotFound); err != nil {
		return err
	}
	e.Version++
	return nil
}

func (q *Queries) GetExpense(ctx context.Context, id string) (*ledger.Expense, error) {
	row := q.q.QueryRowContext(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE id = ?`, id)
	e, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", errExpenseNotFound, id)
	}
	if err != nil {
		return nil, dbError("get expense", err)
	}
	return e, nil
}

func (q *Queries) ListExpenses(ctx context.Context, includeDeleted bool) ([]ledger.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses`
	if !includeDeleted {
		query += ` WHERE lifecycle != 'deleted'`
	}
	query += ` ORDER BY date, created_at`

	rows, err := q.q.QueryContext(ctx, query)
	if err != nil {
		return nil, dbError("list expenses", err)
	}
	defer rows.Close()

	var out []ledger.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, dbError("scan expense", err)
		}
		out = append(out, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("list expenses", err)
	}
	return out, nil
}

func scanExpense(row scanner) (*ledger.Expense, error) {
	var e ledger.Expense
	var date, createdAt, updatedAt string
	err := row.Scan(&e.ID, &date, &e.Category, &e.Description, &e.Amount, &e.Status, &e.Lifecycle,
		&e.JournalEntryID, &e.Version, &e.CreatedBy, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	e.Date = parseDate(date)
	e.CreatedAt = parseTime(createdAt)
	e.UpdatedAt = parseTime(updatedAt)
	return &e, nil
}
