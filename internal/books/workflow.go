package books

import (
	"context"
	"fmt"

	"github.com/simonvc/minibooks/internal/auth"
	"github.com/simonvc/minibooks/internal/ledger"
	"github.com/simonvc/minibooks/internal/store"
)

// RequestDelete opens a deletion request and marks the record pending
// deletion. Only active records can be requested, once at a time. Journal
// entries posted by a sale, purchase or expense cannot be requested directly.
func (s *Service) RequestDelete(ctx context.Context, actor string, rt ledger.RecordType, recordID string) (*ledger.ApprovalRequest, error) {
	if _, err := ledger.ParseRecordType(string(rt)); err != nil {
		return nil, err
	}
	if err := s.require(ctx, actor, auth.RequestDeletePermission(rt)); err != nil {
		return nil, err
	}

	req := &ledger.ApprovalRequest{
		ID:          s.newID(),
		RecordType:  rt,
		RecordID:    recordID,
		RequestedBy: actor,
		RequestDate: s.now(),
		Status:      ledger.RequestPending,
	}
	err := s.store.WithTx(ctx, func(q *store.Queries) error {
		lc, err := q.GetLifecycle(ctx, rt, recordID)
		if err != nil {
			return err
		}
		if rt == ledger.RecordJournalEntry {
			e, err := q.GetEntry(ctx, recordID)
			if err != nil {
				return err
			}
			if e.SourceType != "" {
				return fmt.Errorf("%w: entry %s was posted by %s %s; delete that record or post an offsetting entry",
					ledger.ErrPostedBySource, recordID, e.SourceType, e.SourceID)
			}
		}
		switch lc {
		case ledger.Active:
		case ledger.PendingDeletion:
			return fmt.Errorf("%w: %s %s", ledger.ErrDeletionPending, rt.Label(), recordID)
		case ledger.Deleted:
			return fmt.Errorf("%w: %s %s is deleted", ledger.ErrRecordNotActive, rt.Label(), recordID)
		}

		if err := q.InsertRequest(ctx, req); err != nil {
			return err
		}
		if err := q.SetLifecycle(ctx, rt, recordID, ledger.Active, ledger.PendingDeletion); err != nil {
			return err
		}
		return s.activity(ctx, q, actor, "Requested Deletion", fmt.Sprintf("%s %s", rt.Label(), recordID))
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("request_id", req.ID).
		Str("record_type", string(rt)).
		Str("record_id", recordID).
		Msg("deletion requested")
	return req, nil
}

// ApproveRequest deletes the record. Ledger entries posted by a deleted
// sale, purchase or expense are left untouched.
func (s *Service) ApproveRequest(ctx context.Context, actor, requestID string) (*ledger.ApprovalRequest, error) {
	return s.closeRequest(ctx, actor, requestID, ledger.RequestApproved)
}

// RejectRequest restores the record to active.
func (s *Service) RejectRequest(ctx context.Context, actor, requestID string) (*ledger.ApprovalRequest, error) {
	return s.closeRequest(ctx, actor, requestID, ledger.RequestRejected)
}

func (s *Service) closeRequest(ctx context.Context, actor, requestID string, outcome ledger.RequestStatus) (*ledger.ApprovalRequest, error) {
	req, err := s.store.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if err := s.require(ctx, actor, auth.ApproveDeletePermission(req.RecordType)); err != nil {
		return nil, err
	}

	target, action := ledger.Deleted, "Approved Deletion"
	if outcome == ledger.RequestRejected {
		target, action = ledger.Active, "Rejected Deletion"
	}

	at := s.now()
	err = s.store.WithTx(ctx, func(q *store.Queries) error {
		if err := q.CloseRequest(ctx, requestID, outcome, actor, at); err != nil {
			return err
		}
		if err := q.SetLifecycle(ctx, req.RecordType, req.RecordID, ledger.PendingDeletion, target); err != nil {
			return err
		}
		return s.activity(ctx, q, actor, action, fmt.Sprintf("%s %s", req.RecordType.Label(), req.RecordID))
	})
	if err != nil {
		return nil, err
	}

	req.Status, req.ApprovedBy, req.ApprovalDate = outcome, actor, &at
	s.log.Info().
		Str("request_id", requestID).
		Str("record_type", string(req.RecordType)).
		Str("record_id", req.RecordID).
		Str("outcome", string(outcome)).
		Msg("deletion request closed")
	return req, nil
}

func (s *Service) ListRequests(ctx context.Context, status ledger.RequestStatus) ([]ledger.ApprovalRequest, error) {
	return s.store.ListRequests(ctx, status)
}
