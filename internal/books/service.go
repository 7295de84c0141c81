// Package books is the accounting service: it checks permissions, runs the
// posting rules and workflow transitions inside single store transactions,
// and assembles reports from the ledger.
package books

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/simonvc/minibooks/internal/auth"
	"github.com/simonvc/minibooks/internal/ledger"
	"github.com/simonvc/minibooks/internal/store"
)

type Service struct {
	store *store.Store
	authz *auth.Authorizer
	log   zerolog.Logger
	now   func() time.Time
	newID func() string

	lowStock int64
}

// DefaultLowStockThreshold is the dashboard's stock alert level when none is configured.
const DefaultLowStockThreshold = 5

type Option func(*Service)

// WithClock replaces the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDs replaces the id generator.
func WithIDs(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

// WithLowStockThreshold sets the stock level at or below which the dashboard
// flags a product. Negative values are ignored.
func WithLowStockThreshold(n int64) Option {
	return func(s *Service) {
		if n >= 0 {
			s.lowStock = n
		}
	}
}

func New(st *store.Store, log zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		store: st,
		authz: auth.NewAuthorizer(st),
		log:   log.With().Str("component", "books").Logger(),
		now:   func() time.Time { return time.Now().UTC() },
		newID: newUUID,

		lowStock: DefaultLowStockThreshold,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func newUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func (s *Service) require(ctx context.Context, actor string, p auth.Permission) error {
	return s.authz.Require(ctx, actor, p)
}

func (s *Service) activity(ctx context.Context, q *store.Queries, actor, action, details string) error {
	return q.AppendActivity(ctx, &ledger.ActivityLog{
		Timestamp: s.now(),
		UserID:    actor,
		Action:    action,
		Details:   details,
	})
}

// chart loads the accounts and role map used by posting and validation.
func (s *Service) chart(ctx context.Context, q *store.Queries) (*ledger.Chart, ledger.AccountMap, error) {
	accounts, err := q.ListAccounts(ctx)
	if err != nil {
		return nil, ledger.AccountMap{}, err
	}
	accts, err := q.AccountMap(ctx)
	if err != nil {
		return nil, ledger.AccountMap{}, err
	}
	return ledger.NewChart(accounts), accts, nil
}

// checkAccounts fails when a line names an account outside the chart.
func checkAccounts(chart *ledger.Chart, lines []ledger.Line) error {
	for i, l := range lines {
		if _, ok := chart.Get(l.AccountID); !ok {
			return fmt.Errorf("%w: line %d account %s", ledger.ErrAccountNotFound, i+1, l.AccountID)
		}
	}
	return nil
}
