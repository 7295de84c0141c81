package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/simonvc/minibooks/internal/ledger"
)

const accountColumns = `id, name, type, created_at`

func (q *Queries) InsertAccount(ctx context.Context, acct *ledger.Account) error {
	_, err := q.q.ExecContext(ctx,
		`INSERT INTO accounts (id, name, type, created_at) VALUES (?, ?, ?, ?)`,
		acct.ID, acct.Name, string(acct.Type), formatTime(acct.CreatedAt),
	)
	if err != nil {
		err = dbError("insert account", err)
		if errors.Is(err, ledger.ErrDuplicateRecord) {
			return fmt.Errorf("%w: %s", ledger.ErrDuplicateAccount, acct.ID)
		}
		return err
	}
	return nil
}

func (q *Queries) GetAccount(ctx context.Context, id string) (*ledger.Account, error) {
	row := q.q.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id)
	acct, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ledger.ErrAccountNotFound, id)
	}
	if err != nil {
		return nil, dbError("get account", err)
	}
	return acct, nil
}

// ListAccounts returns the chart in id order.
func (q *Queries) ListAccounts(ctx context.Context) ([]ledger.Account, error) {
	rows, err := q.q.QueryContext(ctx, `SELECT `+accountColumns+` FROM accounts ORDER BY id`)
	if err != nil {
		return nil, dbError("list accounts", err)
	}
	defer rows.Close()

	var accounts []ledger.Account
	for rows.Next() {
		acct, err := scanAccount(rows)
		if err != nil {
			return nil, dbError("scan account", err)
		}
		accounts = append(accounts, *acct)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("list accounts", err)
	}
	return accounts, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(row scanner) (*ledger.Account, error) {
	var acct ledger.Account
	var createdAt string
	if err := row.Scan(&acct.ID, &acct.Name, &acct.Type, &createdAt); err != nil {
		return nil, err
	}
	acct.CreatedAt = parseTime(createdAt)
	return &acct, nil
}
