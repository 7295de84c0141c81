package books

import (
	"context"
	"fmt"
	"time"

	"github.com/simonvc/minibooks/internal/auth"
	"github.com/simonvc/minibooks/internal/ledger"
	"github.com/simonvc/minibooks/internal/posting"
	"github.com/simonvc/minibooks/internal/store"
)

// EntryDraft is a manual journal entry before posting.
type EntryDraft struct {
	Date        time.Time     `json:"date"`
	Description string        `json:"description"`
	Lines       []ledger.Line `json:"lines"`
}

// PostEntry records a manual journal entry awaiting approval.
func (s *Service) PostEntry(ctx context.Context, actor string, draft EntryDraft) (*ledger.JournalEntry, error) {
	if err := s.require(ctx, actor, auth.CreateJournalEntry); err != nil {
		return nil, err
	}

	e := &ledger.JournalEntry{
		ID:          s.newID(),
		Date:        ledger.DateOf(draft.Date),
		Description: draft.Description,
		Lines:       draft.Lines,
		Status:      ledger.PendingApproval,
		Lifecycle:   ledger.Active,
		CreatedBy:   actor,
		CreatedAt:   s.now(),
	}
	err := s.store.WithTx(ctx, func(q *store.Queries) error {
		chart, _, err := s.chart(ctx, q)
		if err != nil {
			return err
		}
		if err := s.postEntry(ctx, q, chart, e); err != nil {
			return err
		}
		return s.activity(ctx, q, actor, "Create Journal Entry", fmt.Sprintf("%s: %s", e.ID, e.Description))
	})
	if err != nil {
		return nil, err
	}

	debits, _ := e.Totals()
	s.log.Info().
		Str("entry_id", e.ID).
		Str("amount", ledger.FormatAmount(debits)).
		Str("created_by", actor).
		Msg("journal entry posted")
	return e, nil
}

// postEntry validates and writes an entry inside the caller's transaction.
func (s *Service) postEntry(ctx context.Context, q *store.Queries, chart *ledger.Chart, e *ledger.JournalEntry) error {
	if err := e.Validate(); err != nil {
		return err
	}
	if err := checkAccounts(chart, e.Lines); err != nil {
		return err
	}
	return q.InsertEntry(ctx, e)
}

// ApproveEntry moves a pending entry to approved and applies the stock
// movements its inventory lines carry. It succeeds at most once per entry.
func (s *Service) ApproveEntry(ctx context.Context, actor, id string) (*ledger.JournalEntry, error) {
	if err := s.require(ctx, actor, auth.ApproveJournalEntry); err != nil {
		return nil, err
	}

	var approved *ledger.JournalEntry
	err := s.store.WithTx(ctx, func(q *store.Queries) error {
		e, err := q.GetEntry(ctx, id)
		if err != nil {
			return err
		}
		if e.Status == ledger.Approved {
			return fmt.Errorf("%w: %s", ledger.ErrAlreadyApproved, id)
		}
		if e.Lifecycle == ledger.Deleted {
			return fmt.Errorf("%w: journal entry %s is deleted", ledger.ErrRecordNotActive, id)
		}

		accts, err := q.AccountMap(ctx)
		if err != nil {
			return err
		}
		moves := posting.InventoryMoves(e, accts.Inventory)
		if err := applyStock(ctx, q, moves); err != nil {
			return err
		}

		at := s.now()
		if err := q.MarkApproved(ctx, id, actor, at); err != nil {
			return err
		}
		e.Status, e.ApprovedBy, e.ApprovedAt = ledger.Approved, actor, &at
		approved = e
		return s.activity(ctx, q, actor, "Approve Journal Entry", e.ID)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("entry_id", id).Str("approved_by", actor).Msg("journal entry approved")
	return approved, nil
}

// applyStock checks every movement against current stock before applying
// any of them.
func applyStock(ctx context.Context, q *store.Queries, moves []posting.StockMove) error {
	net := map[string]int64{}
	var order []string
	for _, m := range moves {
		if _, seen := net[m.ProductID]; !seen {
			order = append(order, m.ProductID)
		}
		net[m.ProductID] += m.Delta
	}

	for _, id := range order {
		p, err := q.GetProduct(ctx, id)
		if err != nil {
			return err
		}
		if p.Stock+net[id] < 0 {
			return &ledger.InsufficientStockError{
				ProductID:   p.ID,
				ProductName: p.Name,
				Available:   p.Stock,
				Requested:   -net[id],
			}
		}
	}
	for _, id := range order {
		if net[id] == 0 {
			continue
		}
		if err := q.AdjustStock(ctx, id, net[id]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) GetEntry(ctx context.Context, id string) (*ledger.JournalEntry, error) {
	return s.store.GetEntry(ctx, id)
}

func (s *Service) ListEntries(ctx context.Context, filter store.EntryFilter) ([]ledger.JournalEntry, error) {
	return s.store.ListEntries(ctx, filter)
}
