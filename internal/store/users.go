package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/simonvc/minibooks/internal/auth"
	"github.com/simonvc/minibooks/internal/ledger"
)

const userColumns = `id, name, email, role, active, created_at`

func (q *Queries) InsertUser(ctx context.Context, u *auth.User) error {
	_, err := q.q.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		u.ID, u.Name, u.Email, string(u.Role), boolToInt(u.Active), formatTime(u.CreatedAt),
	)
	if err != nil {
		return dbError("insert user", err)
	}
	return nil
}

func (q *Queries) UpdateUser(ctx context.Context, u *auth.User) error {
	res, err := q.q.ExecContext(ctx,
		`UPDATE users SET name = ?, email = ?, role = ?, active = ? WHERE id = ?`,
		u.Name, u.Email, string(u.Role), boolToInt(u.Active), u.ID,
	)
	if err != nil {
		return dbError("update user", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ledger.ErrUserNotFound, u.ID)
	}
	return nil
}

func (q *Queries) GetUser(ctx context.Context, id string) (*auth.User, error) {
	row := q.q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ledger.ErrUserNotFound, id)
	}
	if err != nil {
		return nil, dbError("get user", err)
	}
	return u, nil
}

func (q *Queries) ListUsers(ctx context.Context) ([]auth.User, error) {
	rows, err := q.q.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY name`)
	if err != nil {
		return nil, dbError("list users", err)
	}
	defer rows.Close()

	var users []auth.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, dbError("scan user", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("list users", err)
	}
	return users, nil
}

func scanUser(row scanner) (*auth.User, error) {
	var u auth.User
	var active int
	var createdAt string
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &active, &createdAt); err != nil {
		return nil, err
	}
	u.Active = active == 1
	u.CreatedAt = parseTime(createdAt)
	return &u, nil
}
