package books

import (
	"context"
	"fmt"

	"github.com/simonvc/minibooks/internal/auth"
	"github.com/simonvc/minibooks/internal/store"
)

// Export returns every collection, deleted records included.
func (s *Service) Export(ctx context.Context, actor string) (*store.Snapshot, error) {
	if err := s.require(ctx, actor, auth.ManageBackup); err != nil {
		return nil, err
	}
	return s.store.Export(ctx)
}

// Restore replaces the whole book with the snapshot. Nothing changes if any
// part of it is rejected.
func (s *Service) Restore(ctx context.Context, actor string, snap *store.Snapshot) error {
	if err := s.require(ctx, actor, auth.ManageBackup); err != nil {
		return err
	}
	err := s.store.WithTx(ctx, func(q *store.Queries) error {
		if err := q.Restore(ctx, snap); err != nil {
			return err
		}
		return s.activity(ctx, q, actor, "Restore Backup",
			fmt.Sprintf("%d journal entries, %d products", len(snap.JournalEntries), len(snap.Products)))
	})
	if err != nil {
		return err
	}
	s.log.Info().
		Int("journal_entries", len(snap.JournalEntries)).
		Time("snapshot_created_at", snap.CreatedAt).
		Msg("backup restored")
	return nil
}
