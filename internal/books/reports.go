package books

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/simonvc/minibooks/internal/auth"
	"github.com/simonvc/minibooks/internal/ledger"
	"github.com/simonvc/minibooks/internal/report"
	"github.com/simonvc/minibooks/internal/store"
)

// ReportQuery selects the ledger slice a report replays. Pending entries
// are only included for previews.
type ReportQuery struct {
	Period         report.Period `json:"period"`
	IncludePending bool          `json:"include_pending"`
}

type snapshot struct {
	accounts []ledger.Account
	accts    ledger.AccountMap
	entries  []ledger.JournalEntry
}

// load reads accounts and matching entries from one consistent snapshot.
func (s *Service) load(ctx context.Context, rq ReportQuery) (*snapshot, error) {
	snap := &snapshot{}
	err := s.store.ReadTx(ctx, func(q *store.Queries) error {
		var err error
		if snap.accounts, err = q.ListAccounts(ctx); err != nil {
			return err
		}
		if snap.accts, err = q.AccountMap(ctx); err != nil {
			return err
		}
		filter := store.EntryFilter{From: rq.Period.From, To: rq.Period.To}
		if !rq.IncludePending {
			filter.Status = ledger.Approved
		}
		all, err := q.ListEntries(ctx, filter)
		if err != nil {
			return err
		}
		snap.entries = report.Filter(all, rq.Period, rq.IncludePending)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

func (s *Service) TrialBalance(ctx context.Context, actor string, rq ReportQuery) (*report.TrialBalance, error) {
	if err := s.require(ctx, actor, auth.ViewReports); err != nil {
		return nil, err
	}
	snap, err := s.load(ctx, rq)
	if err != nil {
		return nil, err
	}
	return report.BuildTrialBalance(snap.entries, snap.accounts)
}

func (s *Service) AccountLedger(ctx context.Context, actor, accountID string, rq ReportQuery) (*report.AccountLedger, error) {
	if err := s.require(ctx, actor, auth.ViewReports); err != nil {
		return nil, err
	}
	snap, err := s.load(ctx, rq)
	if err != nil {
		return nil, err
	}
	return report.BuildAccountLedger(accountID, snap.entries, snap.accounts)
}

func (s *Service) ProfitAndLoss(ctx context.Context, actor string, rq ReportQuery) (*report.ProfitAndLoss, error) {
	if err := s.require(ctx, actor, auth.ViewReports); err != nil {
		return nil, err
	}
	snap, err := s.load(ctx, rq)
	if err != nil {
		return nil, err
	}
	tb, err := report.BuildTrialBalance(snap.entries, snap.accounts)
	if err != nil {
		return nil, err
	}
	return report.BuildProfitAndLoss(tb, snap.accts.COGS), nil
}

// BalanceSheet reports the position as of rq.Period.To. The period start
// is ignored: the statement covers the whole ledger up to that date.
func (s *Service) BalanceSheet(ctx context.Context, actor string, rq ReportQuery) (*report.BalanceSheet, error) {
	if err := s.require(ctx, actor, auth.ViewReports); err != nil {
		return nil, err
	}
	rq.Period.From = time.Time{}
	snap, err := s.load(ctx, rq)
	if err != nil {
		return nil, err
	}
	tb, err := report.BuildTrialBalance(snap.entries, snap.accounts)
	if err != nil {
		return nil, err
	}
	pl := report.BuildProfitAndLoss(tb, snap.accts.COGS)
	return report.BuildBalanceSheet(tb, pl.NetProfit), nil
}

// SummaryQuery selects the ledger slice of a dashboard summary. A nil
// LowStockThreshold uses the service's configured level.
type SummaryQuery struct {
	ReportQuery
	LowStockThreshold *int64 `json:"low_stock_threshold,omitempty"`
}

// Dashboard summarises sales, purchases, expenses and profit for the period,
// with monthly sales against purchases and the products running low.
func (s *Service) Dashboard(ctx context.Context, actor string, sq SummaryQuery) (*report.Summary, error) {
	if err := s.require(ctx, actor, auth.ViewReports); err != nil {
		return nil, err
	}
	threshold := s.lowStock
	if sq.LowStockThreshold != nil {
		if *sq.LowStockThreshold < 0 {
			return nil, fmt.Errorf("%w: low stock threshold must not be negative", ledger.ErrValidation)
		}
		threshold = *sq.LowStockThreshold
	}

	snap, err := s.load(ctx, sq.ReportQuery)
	if err != nil {
		return nil, err
	}
	products, err := s.store.ListProducts(ctx, false)
	if err != nil {
		return nil, err
	}
	sum, err := report.BuildSummary(snap.entries, snap.accounts, products, snap.accts, threshold)
	if err != nil {
		return nil, err
	}
	sum.Period = sq.Period
	return sum, nil
}

// Statements builds the trial balance and P&L for the period and the
// balance sheet as of its end.
func (s *Service) Statements(ctx context.Context, actor string, rq ReportQuery) (*report.Statements, error) {
	tb, err := s.TrialBalance(ctx, actor, rq)
	if err != nil {
		return nil, err
	}
	pl, err := s.ProfitAndLoss(ctx, actor, rq)
	if err != nil {
		return nil, err
	}
	bs, err := s.BalanceSheet(ctx, actor, rq)
	if err != nil {
		return nil, err
	}
	return &report.Statements{Period: rq.Period, TrialBalance: tb, ProfitLoss: pl, BalanceSheet: bs}, nil
}

// Mismatch is an account whose replayed totals disagree with the SQL sums.
type Mismatch struct {
	AccountID    string          `json:"account_id"`
	ReplayDebit  decimal.Decimal `json:"replay_debit"`
	ReplayCredit decimal.Decimal `json:"replay_credit"`
	StoredDebit  decimal.Decimal `json:"stored_debit"`
	StoredCredit decimal.Decimal `json:"stored_credit"`
}

type IntegrityReport struct {
	Balanced   bool       `json:"balanced"`
	Mismatches []Mismatch `json:"mismatches"`
}

func (r *IntegrityReport) OK() bool {
	return r.Balanced && len(r.Mismatches) == 0
}

// CheckIntegrity replays the whole ledger and compares it, account by
// account, with totals summed independently in SQL.
func (s *Service) CheckIntegrity(ctx context.Context, actor string) (*IntegrityReport, error) {
	if err := s.require(ctx, actor, auth.ViewReports); err != nil {
		return nil, err
	}

	var (
		snap   *snapshot
		totals map[string]store.AccountTotal
	)
	err := s.store.ReadTx(ctx, func(q *store.Queries) error {
		accounts, err := q.ListAccounts(ctx)
		if err != nil {
			return err
		}
		entries, err := q.ListEntries(ctx, store.EntryFilter{Status: ledger.Approved})
		if err != nil {
			return err
		}
		snap = &snapshot{accounts: accounts, entries: report.Filter(entries, report.Period{}, false)}
		totals, err = q.AccountTotals(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	tb, err := report.BuildTrialBalance(snap.entries, snap.accounts)
	if err != nil {
		return nil, err
	}

	rep := &IntegrityReport{Balanced: tb.Balanced, Mismatches: []Mismatch{}}
	seen := map[string]bool{}
	for _, l := range tb.Lines {
		seen[l.AccountID] = true
		t, ok := totals[l.AccountID]
		if !ok {
			t = store.AccountTotal{AccountID: l.AccountID, Debit: decimal.Zero, Credit: decimal.Zero}
		}
		if !ledger.AmountsEqual(t.Debit, l.Debit) || !ledger.AmountsEqual(t.Credit, l.Credit) {
			rep.Mismatches = append(rep.Mismatches, Mismatch{
				AccountID: l.AccountID, ReplayDebit: l.Debit, ReplayCredit: l.Credit,
				StoredDebit: t.Debit, StoredCredit: t.Credit,
			})
		}
	}
	for id, t := range totals {
		if !seen[id] {
			rep.Mismatches = append(rep.Mismatches, Mismatch{
				AccountID: id, ReplayDebit: decimal.Zero, ReplayCredit: decimal.Zero,
				StoredDebit: t.Debit, StoredCredit: t.Credit,
			})
		}
	}
	sort.Slice(rep.Mismatches, func(i, j int) bool { return rep.Mismatches[i].AccountID < rep.Mismatches[j].AccountID })

	if !rep.OK() {
		s.log.Warn().Bool("balanced", rep.Balanced).Int("mismatches", len(rep.Mismatches)).Msg("ledger integrity check failed")
	}
	return rep, nil
}
