// Package report replays the journal ledger into financial statements.
// Every function is pure: the same entries and accounts always produce the
// same report, and nothing is mutated.
package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/simonvc/minibooks/internal/ledger"
)

// RetainedEarningsLabel names the synthetic equity line carrying the period's net profit.
const RetainedEarningsLabel = "Retained Earnings (Current Period)"

// Period is an inclusive date range. Zero bounds are open.
type Period struct {
	From time.Time `json:"from,omitempty"`
	To   time.Time `json:"to,omitempty"`
}

func (p Period) Contains(date time.Time) bool {
	d := ledger.DateOf(date)
	if !p.From.IsZero() && d.Before(ledger.DateOf(p.From)) {
		return false
	}
	if !p.To.IsZero() && d.After(ledger.DateOf(p.To)) {
		return false
	}
	return true
}

// Filter keeps the entries that count towards the books within the period:
// approved and not deleted. includePending also keeps entries awaiting
// approval, for previews.
func Filter(entries []ledger.JournalEntry, period Period, includePending bool) []ledger.JournalEntry {
	var out []ledger.JournalEntry
	for _, e := range entries {
		if e.Lifecycle == ledger.Deleted {
			continue
		}
		if e.Status != ledger.Approved && !includePending {
			continue
		}
		if !period.Contains(e.Date) {
			continue
		}
		out = append(out, e)
	}
	return out
}

type TrialBalanceLine struct {
	AccountID   string             `json:"account_id"`
	AccountName string             `json:"account_name"`
	AccountType ledger.AccountType `json:"account_type"`
	Debit       decimal.Decimal    `json:"debit"`
	Credit      decimal.Decimal    `json:"credit"`
}

// Net returns the balance on the account's normal side.
func (l TrialBalanceLine) Net() decimal.Decimal {
	if l.AccountType.DebitNormal() {
		return l.Debit.Sub(l.Credit)
	}
	return l.Credit.Sub(l.Debit)
}

type TrialBalance struct {
	Lines       []TrialBalanceLine `json:"lines"`
	TotalDebit  decimal.Decimal    `json:"total_debit"`
	TotalCredit decimal.Decimal    `json:"total_credit"`
	Balanced    bool               `json:"balanced"`
}

// BuildTrialBalance sums debits and credits per account across every line.
// Accounts without activity appear with zero totals. A line naming an
// account outside the chart is a data integrity error.
func BuildTrialBalance(entries []ledger.JournalEntry, accounts []ledger.Account) (*TrialBalance, error) {
	index := make(map[string]int, len(accounts))
	tb := &TrialBalance{
		Lines:       make([]TrialBalanceLine, len(accounts)),
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
	}
	for i, a := range accounts {
		index[a.ID] = i
		tb.Lines[i] = TrialBalanceLine{
			AccountID:   a.ID,
			AccountName: a.Name,
			AccountType: a.Type,
			Debit:       decimal.Zero,
			Credit:      decimal.Zero,
		}
	}

	for _, e := range entries {
		for _, l := range e.Lines {
			i, ok := index[l.AccountID]
			if !ok {
				return nil, fmt.Errorf("%w: entry %s, account %s", ledger.ErrUnknownLedgerLine, e.ID, l.AccountID)
			}
			tb.Lines[i].Debit = tb.Lines[i].Debit.Add(l.Debit)
			tb.Lines[i].Credit = tb.Lines[i].Credit.Add(l.Credit)
			tb.TotalDebit = tb.TotalDebit.Add(l.Debit)
			tb.TotalCredit = tb.TotalCredit.Add(l.Credit)
		}
	}
	tb.Balanced = ledger.AmountsEqual(tb.TotalDebit, tb.TotalCredit)
	return tb, nil
}

type LedgerRow struct {
	EntryID     string          `json:"entry_id"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Balance     decimal.Decimal `json:"balance"`
}

type AccountLedger struct {
	Account ledger.Account  `json:"account"`
	Rows    []LedgerRow     `json:"rows"`
	Balance decimal.Decimal `json:"balance"`
}

// BuildAccountLedger lists every line on one account in date order, ties kept
// in the order entries were recorded, with a running balance on the
// account's normal side.
func BuildAccountLedger(accountID string, entries []ledger.JournalEntry, accounts []ledger.Account) (*AccountLedger, error) {
	var acct *ledger.Account
	for i := range accounts {
		if accounts[i].ID == accountID {
			acct = &accounts[i]
			break
		}
	}
	if acct == nil {
		return nil, fmt.Errorf("%w: %s", ledger.ErrAccountNotFound, accountID)
	}

	var rows []LedgerRow
	for _, e := range entries {
		for _, l := range e.Lines {
			if l.AccountID != accountID {
				continue
			}
			rows = append(rows, LedgerRow{
				EntryID:     e.ID,
				Date:        e.Date,
				Description: e.Description,
				Debit:       l.Debit,
				Credit:      l.Credit,
			})
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Date.Before(rows[j].Date)
	})

	balance := decimal.Zero
	for i := range rows {
		if acct.Type.DebitNormal() {
			balance = balance.Add(rows[i].Debit).Sub(rows[i].Credit)
		} else {
			balance = balance.Add(rows[i].Credit).Sub(rows[i].Debit)
		}
		rows[i].Balance = balance
	}
	return &AccountLedger{Account: *acct, Rows: rows, Balance: balance}, nil
}

// Amount is one account's contribution to a statement section.
type Amount struct {
	AccountID   string          `json:"account_id,omitempty"`
	AccountName string          `json:"account_name"`
	Amount      decimal.Decimal `json:"amount"`
}

type ProfitAndLoss struct {
	Revenue           decimal.Decimal `json:"revenue"`
	COGS              decimal.Decimal `json:"cogs"`
	GrossProfit       decimal.Decimal `json:"gross_profit"`
	TotalExpenses     decimal.Decimal `json:"total_expenses"`
	OperatingExpenses decimal.Decimal `json:"operating_expenses"`
	NetProfit         decimal.Decimal `json:"net_profit"`
	RevenueLines      []Amount        `json:"revenue_lines"`
	ExpenseLines      []Amount        `json:"expense_lines"`
}

// BuildProfitAndLoss derives the income statement from a trial balance.
// Total expenses include COGS; operating expenses exclude it.
func BuildProfitAndLoss(tb *TrialBalance, cogsAccountID string) *ProfitAndLoss {
	pl := &ProfitAndLoss{
		Revenue:       decimal.Zero,
		COGS:          decimal.Zero,
		TotalExpenses: decimal.Zero,
		RevenueLines:  []Amount{},
		ExpenseLines:  []Amount{},
	}
	for _, l := range tb.Lines {
		switch l.AccountType {
		case ledger.Revenue:
			net := l.Credit.Sub(l.Debit)
			pl.Revenue = pl.Revenue.Add(net)
			pl.RevenueLines = append(pl.RevenueLines, Amount{AccountID: l.AccountID, AccountName: l.AccountName, Amount: net})
		case ledger.ExpenseAccount:
			net := l.Debit.Sub(l.Credit)
			pl.TotalExpenses = pl.TotalExpenses.Add(net)
			pl.ExpenseLines = append(pl.ExpenseLines, Amount{AccountID: l.AccountID, AccountName: l.AccountName, Amount: net})
			if l.AccountID == cogsAccountID {
				pl.COGS = net
			}
		}
	}
	pl.GrossProfit = pl.Revenue.Sub(pl.COGS)
	pl.OperatingExpenses = pl.TotalExpenses.Sub(pl.COGS)
	pl.NetProfit = pl.GrossProfit.Sub(pl.OperatingExpenses)
	return pl
}

type BalanceSheet struct {
	Assets                    []Amount        `json:"assets"`
	Liabilities               []Amount        `json:"liabilities"`
	Equity                    []Amount        `json:"equity"`
	TotalAssets               decimal.Decimal `json:"total_assets"`
	TotalLiabilities          decimal.Decimal `json:"total_liabilities"`
	TotalEquity               decimal.Decimal `json:"total_equity"`
	TotalLiabilitiesAndEquity decimal.Decimal `json:"total_liabilities_and_equity"`
	Balanced                  bool            `json:"balanced"`
}

// BuildBalanceSheet derives the statement of financial position from a trial
// balance, adding the period's net profit as a synthetic equity line.
func BuildBalanceSheet(tb *TrialBalance, netProfit decimal.Decimal) *BalanceSheet {
	bs := &BalanceSheet{
		Assets:           []Amount{},
		Liabilities:      []Amount{},
		Equity:           []Amount{},
		TotalAssets:      decimal.Zero,
		TotalLiabilities: decimal.Zero,
		TotalEquity:      decimal.Zero,
	}
	for _, l := range tb.Lines {
		a := Amount{AccountID: l.AccountID, AccountName: l.AccountName, Amount: l.Net()}
		switch l.AccountType {
		case ledger.Asset:
			bs.Assets = append(bs.Assets, a)
			bs.TotalAssets = bs.TotalAssets.Add(a.Amount)
		case ledger.Liability:
			bs.Liabilities = append(bs.Liabilities, a)
			bs.TotalLiabilities = bs.TotalLiabilities.Add(a.Amount)
		case ledger.Equity:
			bs.Equity = append(bs.Equity, a)
			bs.TotalEquity = bs.TotalEquity.Add(a.Amount)
		}
	}
	bs.Equity = append(bs.Equity, Amount{AccountName: RetainedEarningsLabel, Amount: netProfit})
	bs.TotalEquity = bs.TotalEquity.Add(netProfit)
	bs.TotalLiabilitiesAndEquity = bs.TotalLiabilities.Add(bs.TotalEquity)
	bs.Balanced = ledger.AmountsEqual(bs.TotalAssets, bs.TotalLiabilitiesAndEquity)
	return bs
}
