package store

import (
	"context"

	"github.com/simonvc/minibooks/internal/ledger"
)

func (q *Queries) AppendActivity(ctx context.Context, a *ledger.ActivityLog) error {
	res, err := q.q.ExecContext(ctx,
		`INSERT INTO activity_log (timestamp, user_id, action, details) VALUES (?, ?, ?, ?)`,
		formatTime(a.Timestamp), a.UserID, a.Action, a.Details,
	)
	if err != nil {
		return dbError("append activity", err)
	}
	a.ID, _ = res.LastInsertId()
	return nil
}

// ListActivity returns the newest activity first.
func (q *Queries) ListActivity(ctx context.Context, limit int) ([]ledger.ActivityLog, error) {
	rows, err := q.q.QueryContext(ctx,
		`SELECT id, timestamp, user_id, action, details FROM activity_log ORDER BY id DESC`+limitClause(limit))
	if err != nil {
		return nil, dbError("list activity", err)
	}
	defer rows.Close()

	var out []ledger.ActivityLog
	for rows.Next() {
		var a ledger.ActivityLog
		var ts string
		if err := rows.Scan(&a.ID, &ts, &a.UserID, &a.Action, &a.Details); err != nil {
			return nil, dbError("scan activity", err)
		}
		a.Timestamp = parseTime(ts)
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("list activity", err)
	}
	return out, nil
}

func (q *Queries) AppendEdits(ctx context.Context, edits []ledger.EditLog) error {
	for _, e := range edits {
		_, err := q.q.ExecContext(ctx,
			`INSERT INTO edit_log (record_type, record_id, timestamp, user_id, field, old_value, new_value)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			string(e.RecordType), e.RecordID, formatTime(e.Timestamp), e.UserID, e.Field, e.OldValue, e.NewValue,
		)
		if err != nil {
			return dbError("append edit", err)
		}
	}
	return nil
}

// ListEdits returns edit history oldest first: of one record, of every
// record of rt when id is empty, or of everything when rt is empty too.
func (q *Queries) ListEdits(ctx context.Context, rt ledger.RecordType, id string) ([]ledger.EditLog, error) {
	query := `SELECT record_type, record_id, timestamp, user_id, field, old_value, new_value FROM edit_log`
	var args []any
	switch {
	case rt != "" && id != "":
		query += ` WHERE record_type = ? AND record_id = ?`
		args = append(args, string(rt), id)
	case rt != "":
		query += ` WHERE record_type = ?`
		args = append(args, string(rt))
	}
	query += ` ORDER BY id`

	rows, err := q.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, dbError("list edits", err)
	}
	defer rows.Close()

	var out []ledger.EditLog
	for rows.Next() {
		var e ledger.EditLog
		var ts string
		if err := rows.Scan(&e.RecordType, &e.RecordID, &ts, &e.UserID, &e.Field, &e.OldValue, &e.NewValue); err != nil {
			return nil, dbError("scan edit", err)
		}
		e.Timestamp = parseTime(ts)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("list edits", err)
	}
	return out, nil
}
