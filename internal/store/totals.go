package store

import (
	"context"

	"github.com/shopspring/decimal"
)

// AccountTotal is the SQL-side sum of posted lines for one account.
type AccountTotal struct {
	AccountID string
	Debit     decimal.Decimal
	Credit    decimal.Decimal
}

// AccountTotals sums approved, non-deleted lines per account in SQL. It is an
// independent cross-check of the replayed trial balance.
func (q *Queries) AccountTotals(ctx context.Context) (map[string]AccountTotal, error) {
	rows, err := q.q.QueryContext(ctx, `
		SELECT l.account_id,
			COALESCE(SUM(CAST(l.debit AS REAL)), 0),
			COALESCE(SUM(CAST(l.credit AS REAL)), 0)
		FROM journal_lines l
		JOIN journal_entries e ON e.id = l.entry_id
		WHERE e.status = 'approved' AND e.lifecycle != 'deleted'
		GROUP BY l.account_id`)
	if err != nil {
		return nil, dbError("account totals", err)
	}
	defer rows.Close()

	totals := map[string]AccountTotal{}
	for rows.Next() {
		var id string
		var debit, credit float64
		if err := rows.Scan(&id, &debit, &credit); err != nil {
			return nil, dbError("scan account total", err)
		}
		totals[id] = AccountTotal{
			AccountID: id,
			Debit:     decimal.NewFromFloat(debit).Round(2),
			Credit:    decimal.NewFromFloat(credit).Round(2),
		}
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("account totals", err)
	}
	return totals, nil
}
