package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/simonvc/minibooks/internal/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func day(n int) time.Time { return time.Date(2024, 3, n, 0, 0, 0, 0, time.UTC) }

func chart() []ledger.Account {
	accounts := make([]ledger.Account, len(ledger.DefaultChart))
	for i, c := range ledger.DefaultChart {
		accounts[i] = ledger.Account{ID: c.ID, Name: c.Name, Type: c.Type}
	}
	return accounts
}

func je(id string, date time.Time, lines ...ledger.Line) ledger.JournalEntry {
	return ledger.JournalEntry{
		ID: id, Date: date, Description: id, Lines: lines,
		Status: ledger.Approved, Lifecycle: ledger.Active,
	}
}

// fixture: owner invests 500, buys 5 widgets at 10 on credit, sells 2 at 20
// for cash, pays 100 rent.
func fixture() []ledger.JournalEntry {
	return []ledger.JournalEntry{
		je("je-1", day(1), ledger.DebitLine("101", d("500")), ledger.CreditLine("301", d("500"))),
		je("je-2", day(2), ledger.DebitLine("103", d("50")), ledger.CreditLine("201", d("50"))),
		je("je-3", day(3),
			ledger.DebitLine("101", d("40")), ledger.CreditLine("401", d("40")),
			ledger.DebitLine("501", d("20")), ledger.CreditLine("103", d("20"))),
		je("je-4", day(4), ledger.DebitLine("502", d("100")), ledger.CreditLine("101", d("100"))),
	}
}

func line(t *testing.T, tb *TrialBalance, id string) TrialBalanceLine {
	t.Helper()
	for _, l := range tb.Lines {
		if l.AccountID == id {
			return l
		}
	}
	t.Fatalf("account %s missing from trial balance", id)
	return TrialBalanceLine{}
}

func TestBuildTrialBalance(t *testing.T) {
	tb, err := BuildTrialBalance(fixture(), chart())
	require.NoError(t, err)

	assert.True(t, tb.Balanced)
	assert.True(t, tb.TotalDebit.Equal(d("710")), tb.TotalDebit.String())
	assert.True(t, tb.TotalCredit.Equal(d("710")))
	assert.Len(t, tb.Lines, len(ledger.DefaultChart))

	cash := line(t, tb, "101")
	assert.True(t, cash.Debit.Equal(d("540")))
	assert.True(t, cash.Credit.Equal(d("100")))
	assert.True(t, cash.Net().Equal(d("440")))

	// accounts without activity still appear
	tax := line(t, tb, "202")
	assert.True(t, tax.Debit.IsZero())
	assert.True(t, tax.Credit.IsZero())
}

func TestBuildTrialBalanceIsRepeatable(t *testing.T) {
	entries := fixture()
	first, err := BuildTrialBalance(entries, chart())
	require.NoError(t, err)
	second, err := BuildTrialBalance(entries, chart())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestBuildTrialBalanceUnknownAccount(t *testing.T) {
	entries := append(fixture(), je("je-x", day(5), ledger.DebitLine("999", d("1")), ledger.CreditLine("101", d("1"))))
	_, err := BuildTrialBalance(entries, chart())
	assert.ErrorIs(t, err, ledger.ErrUnknownLedgerLine)
	assert.Equal(t, ledger.ErrDataIntegrity, ledger.Kind(err))
}

func TestFilter(t *testing.T) {
	entries := fixture()
	entries[1].Status = ledger.PendingApproval
	entries[2].Lifecycle = ledger.Deleted

	assert.Len(t, Filter(entries, Period{}, false), 2)
	assert.Len(t, Filter(entries, Period{}, true), 3)
	assert.Len(t, Filter(entries, Period{From: day(2), To: day(4)}, true), 2)
	assert.Len(t, Filter(entries, Period{To: day(1)}, false), 1)
}

func TestBuildAccountLedger(t *testing.T) {
	entries := fixture()
	// recorded out of date order
	entries = append([]ledger.JournalEntry{
		je("je-0", day(5), ledger.DebitLine("101", d("10")), ledger.CreditLine("301", d("10"))),
	}, entries...)

	al, err := BuildAccountLedger("101", entries, chart())
	require.NoError(t, err)

	require.Len(t, al.Rows, 4)
	wantIDs := []string{"je-1", "je-3", "je-4", "je-0"}
	wantBalances := []string{"500", "540", "440", "450"}
	for i, r := range al.Rows {
		assert.Equal(t, wantIDs[i], r.EntryID)
		assert.True(t, r.Balance.Equal(d(wantBalances[i])), "row %d balance %s", i, r.Balance)
	}
	assert.True(t, al.Balance.Equal(d("450")))
}

func TestBuildAccountLedgerCreditNormal(t *testing.T) {
	al, err := BuildAccountLedger("201", fixture(), chart())
	require.NoError(t, err)
	assert.True(t, al.Balance.Equal(d("50")))

	_, err = BuildAccountLedger("999", fixture(), chart())
	assert.ErrorIs(t, err, ledger.ErrAccountNotFound)
}

func TestBuildProfitAndLoss(t *testing.T) {
	tb, err := BuildTrialBalance(fixture(), chart())
	require.NoError(t, err)

	pl := BuildProfitAndLoss(tb, "501")
	assert.True(t, pl.Revenue.Equal(d("40")))
	assert.True(t, pl.COGS.Equal(d("20")))
	assert.True(t, pl.GrossProfit.Equal(d("20")))
	assert.True(t, pl.TotalExpenses.Equal(d("120")))
	assert.True(t, pl.OperatingExpenses.Equal(d("100")))
	assert.True(t, pl.NetProfit.Equal(d("-80")))
}

func TestBuildBalanceSheet(t *testing.T) {
	tb, err := BuildTrialBalance(fixture(), chart())
	require.NoError(t, err)
	pl := BuildProfitAndLoss(tb, "501")

	bs := BuildBalanceSheet(tb, pl.NetProfit)
	assert.True(t, bs.Balanced)
	// cash 440 + inventory 30
	assert.True(t, bs.TotalAssets.Equal(d("470")), bs.TotalAssets.String())
	assert.True(t, bs.TotalLiabilities.Equal(d("50")))
	assert.True(t, bs.TotalEquity.Equal(d("420")))

	last := bs.Equity[len(bs.Equity)-1]
	assert.Equal(t, RetainedEarningsLabel, last.AccountName)
	assert.True(t, last.Amount.Equal(d("-80")))
}

func TestEmptyLedger(t *testing.T) {
	tb, err := BuildTrialBalance(nil, chart())
	require.NoError(t, err)
	assert.True(t, tb.Balanced)

	pl := BuildProfitAndLoss(tb, "501")
	assert.True(t, pl.NetProfit.IsZero())
	assert.True(t, BuildBalanceSheet(tb, pl.NetProfit).Balanced)
}

func TestWriteXLSX(t *testing.T) {
	tb, err := BuildTrialBalance(fixture(), chart())
	require.NoError(t, err)
	pl := BuildProfitAndLoss(tb, "501")
	st := &Statements{TrialBalance: tb, ProfitLoss: pl, BalanceSheet: BuildBalanceSheet(tb, pl.NetProfit)}

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, st))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Trial Balance", "Profit and Loss", "Balance Sheet"}, f.GetSheetList())
	v, err := f.GetCellValue("Trial Balance", "A2")
	require.NoError(t, err)
	assert.Equal(t, "101", v)
}
