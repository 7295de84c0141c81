package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/simonvc/minibooks/internal/ledger"
)

// tableFor maps each record type to the table that stores it.
func tableFor(rt ledger.RecordType) (string, error) {
	switch rt {
	case ledger.RecordCustomer:
		return "customers", nil
	case ledger.RecordSupplier:
		return "suppliers", nil
	case ledger.RecordProduct:
		return "products", nil
	case ledger.RecordSale:
		return "sales", nil
	case ledger.RecordPurchase:
		return "purchases", nil
	case ledger.RecordExpense:
		return "expenses", nil
	case ledger.RecordJournalEntry:
		return "journal_entries", nil
	}
	return "", fmt.Errorf("%w: %q", ledger.ErrInvalidRecordType, rt)
}

func (q *Queries) GetLifecycle(ctx context.Context, rt ledger.RecordType, id string) (ledger.Lifecycle, error) {
	table, err := tableFor(rt)
	if err != nil {
		return "", err
	}
	var lc ledger.Lifecycle
	err = q.q.QueryRowContext(ctx, `SELECT lifecycle FROM `+table+` WHERE id = ?`, id).Scan(&lc)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: %s %s", ledger.ErrRecordNotFound, rt.Label(), id)
	}
	if err != nil {
		return "", dbError("get lifecycle", err)
	}
	return lc, nil
}

// SetLifecycle moves a record from one lifecycle state to another. It
// reports ErrRecordNotActive when the record is not in the from state.
func (q *Queries) SetLifecycle(ctx context.Context, rt ledger.RecordType, id string, from, to ledger.Lifecycle) error {
	table, err := tableFor(rt)
	if err != nil {
		return err
	}
	res, err := q.q.ExecContext(ctx,
		`UPDATE `+table+` SET lifecycle = ? WHERE id = ? AND lifecycle = ?`, string(to), id, string(from))
	if err != nil {
		return dbError("set lifecycle", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		current, err := q.GetLifecycle(ctx, rt, id)
		if err != nil {
			return err
		}
		return fmt.Errorf("%w: %s %s is %s, expected %s", ledger.ErrRecordNotActive, rt.Label(), id, current, from)
	}
	return nil
}
