package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/simonvc/minibooks/internal/ledger"
)

const requestColumns = `id, record_type, record_id, requested_by, request_date, status, approved_by, approval_date`

// InsertRequest stores a new approval request. A second pending request for
// the same record violates the open-request index and is reported as
// ErrDeletionPending.
func (q *Queries) InsertRequest(ctx context.Context, r *ledger.ApprovalRequest) error {
	_, err := q.q.ExecContext(ctx,
		`INSERT INTO approval_requests (`+requestColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, string(r.RecordType), r.RecordID, r.RequestedBy, formatTime(r.RequestDate),
		string(r.Status), r.ApprovedBy, nullTime(r.ApprovalDate),
	)
	if err != nil {
		err = dbError("insert approval request", err)
		if errors.Is(err, ledger.ErrDuplicateRecord) && r.Status == ledger.RequestPending {
			return fmt.Errorf("%w: %s %s", ledger.ErrDeletionPending, r.RecordType.Label(), r.RecordID)
		}
		return err
	}
	return nil
}

// CloseRequest resolves a pending request. It reports ErrRequestClosed when
// the request was already resolved.
func (q *Queries) CloseRequest(ctx context.Context, id string, status ledger.RequestStatus, by string, at time.Time) error {
	res, err := q.q.ExecContext(ctx,
		`UPDATE approval_requests SET status = ?, approved_by = ?, approval_date = ?
		 WHERE id = ? AND status = 'pending'`,
		string(status), by, formatTime(at), id,
	)
	if err != nil {
		return dbError("close approval request", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		r, err := q.GetRequest(ctx, id)
		if err != nil {
			return err
		}
		return fmt.Errorf("%w: %s is %s", ledger.ErrRequestClosed, id, r.Status)
	}
	return nil
}

func (q *Queries) GetRequest(ctx context.Context, id string) (*ledger.ApprovalRequest, error) {
	row := q.q.QueryRowContext(ctx, `SELECT `+requestColumns+` FROM approval_requests WHERE id = ?`, id)
	r, err := scanRequest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ledger.ErrRequestNotFound, id)
	}
	if err != nil {
		return nil, dbError("get approval request", err)
	}
	return r, nil
}

// ListRequests returns requests newest first, optionally by status.
func (q *Queries) ListRequests(ctx context.Context, status ledger.RequestStatus) ([]ledger.ApprovalRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM approval_requests`
	var args []any
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY request_date DESC, id DESC`

	rows, err := q.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, dbError("list approval requests", err)
	}
	defer rows.Close()

	var out []ledger.ApprovalRequest
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, dbError("scan approval request", err)
		}
		out = append(out, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("list approval requests", err)
	}
	return out, nil
}

func scanRequest(row scanner) (*ledger.ApprovalRequest, error) {
	var r ledger.ApprovalRequest
	var requestDate string
	var approvalDate sql.NullString
	err := row.Scan(&r.ID, &r.RecordType, &r.RecordID, &r.RequestedBy, &requestDate, &r.Status, &r.ApprovedBy, &approvalDate)
	if err != nil {
		return nil, err
	}
	r.RequestDate = parseTime(requestDate)
	r.ApprovalDate = timePtr(approvalDate)
	return &r, nil
}
