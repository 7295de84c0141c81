package store

import (
	"context"

	"github.com/simonvc/minibooks/internal/ledger"
)

func (q *Queries) ListSettings(ctx context.Context) (map[string]string, error) {
	rows, err := q.q.QueryContext(ctx, `SELECT key, value FROM settings ORDER BY key`)
	if err != nil {
		return nil, dbError("list settings", err)
	}
	defer rows.Close()

	settings := map[string]string{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, dbError("scan setting", err)
		}
		settings[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("list settings", err)
	}
	return settings, nil
}

func (q *Queries) PutSetting(ctx context.Context, key, value string) error {
	_, err := q.q.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return dbError("put setting", err)
	}
	return nil
}

func (q *Queries) DeleteSetting(ctx context.Context, key string) error {
	if _, err := q.q.ExecContext(ctx, `DELETE FROM settings WHERE key = ?`, key); err != nil {
		return dbError("delete setting", err)
	}
	return nil
}

// AccountMap resolves account roles, applying any account.<role> overrides
// to the defaults.
func (q *Queries) AccountMap(ctx context.Context) (ledger.AccountMap, error) {
	m := ledger.DefaultAccountMap()
	settings, err := q.ListSettings(ctx)
	if err != nil {
		return m, err
	}
	for _, role := range ledger.AllAccountRoles {
		if v, ok := settings[role.SettingKey()]; ok {
			if err := m.Set(role, v); err != nil {
				return m, err
			}
		}
	}
	return m, nil
}
