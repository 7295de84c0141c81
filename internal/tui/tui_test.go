package tui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonvc/minibooks/internal/client"
	"github.com/simonvc/minibooks/internal/ledger"
	"github.com/simonvc/minibooks/internal/report"
)

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func typeText(t *testing.T, a *App, s string) {
	t.Helper()
	for _, r := range s {
		a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func newTestApp() *App {
	a := NewApp(client.New("http://127.0.0.1:0", "admin"))
	a.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return a
}

func TestMoney(t *testing.T) {
	assert.Equal(t, "1,234.50", money(decimal.RequireFromString("1234.5")))
	assert.Equal(t, "(20.00)", money(decimal.RequireFromString("-20")))
	assert.Equal(t, "0.00", money(decimal.Zero))
	assert.Equal(t, "", blank(decimal.Zero))
}

func TestWindow(t *testing.T) {
	start, end := window(0, 3, 10)
	assert.Equal(t, 0, start)
	assert.Equal(t, 3, end)

	start, end = window(14, 20, 10)
	assert.Equal(t, 5, start)
	assert.Equal(t, 15, end)
}

func TestParseEntryLine(t *testing.T) {
	l, err := parseEntryLine("101 dr 500.00")
	require.NoError(t, err)
	assert.Equal(t, "101", l.AccountID)
	assert.True(t, l.Debit.Equal(decimal.NewFromInt(500)))
	assert.True(t, l.Credit.IsZero())

	l, err = parseEntryLine("104 CR 30 p1 3")
	require.NoError(t, err)
	assert.True(t, l.Credit.Equal(decimal.NewFromInt(30)))
	assert.Equal(t, "p1", l.ProductID)
	assert.Equal(t, int64(3), l.Quantity)

	for _, bad := range []string{"", "101 dr", "101 up 5", "101 dr abc", "101 dr 0", "104 cr 5 p1 -2"} {
		_, err := parseEntryLine(bad)
		assert.Error(t, err, bad)
	}
}

func TestTabsCycle(t *testing.T) {
	a := newTestApp()
	for _, want := range []mode{modeJournal, modeProducts, modeStatements, modeApprovals, modeAccounts} {
		a.Update(keyMsg("tab"))
		assert.Equal(t, want, a.mode)
	}
	a.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, modeApprovals, a.mode)
}

func TestLoadedDataRoutedToInactiveView(t *testing.T) {
	a := newTestApp()
	tb := &report.TrialBalance{
		Lines: []report.TrialBalanceLine{
			{AccountID: "101", AccountName: "Cash", AccountType: ledger.Asset, Debit: decimal.NewFromInt(100), Credit: decimal.Zero},
			{AccountID: "301", AccountName: "Owner's Equity", AccountType: ledger.Equity, Debit: decimal.Zero, Credit: decimal.NewFromInt(100)},
		},
		TotalDebit:  decimal.NewFromInt(100),
		TotalCredit: decimal.NewFromInt(100),
		Balanced:    true,
	}
	a.Update(keyMsg("tab"))
	a.Update(trialBalanceLoadedMsg{tb: tb})
	a.Update(entriesLoadedMsg{err: errors.New("boom")})

	assert.Equal(t, modeJournal, a.mode)
	assert.Contains(t, a.View(), "boom")

	a.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	a.Update(trialBalanceLoadedMsg{tb: tb})
	a.Update(keyMsg("down"))
	assert.Equal(t, "301", a.accounts.selectedID())
	view := a.View()
	assert.Contains(t, view, "Owner's Equity")
	assert.Contains(t, view, "Balanced")

	a.Update(keyMsg("enter"))
	assert.Equal(t, modeAccountDetail, a.mode)
	a.Update(keyMsg("esc"))
	assert.Equal(t, modeAccounts, a.mode)
}

func TestAccountWizard(t *testing.T) {
	a := newTestApp()
	a.Update(keyMsg("n"))
	require.Equal(t, modeWizard, a.mode)

	a.Update(keyMsg("down"))
	a.Update(keyMsg("enter"))
	assert.Equal(t, ledger.Liability, a.wizard.accountType())

	a.Update(keyMsg("enter"))
	assert.Error(t, a.wizard.err, "empty id is rejected")
	typeText(t, a, "203")
	a.Update(keyMsg("enter"))
	typeText(t, a, "Loans")
	a.Update(keyMsg("enter"))
	require.Equal(t, stepConfirm, a.wizard.step)

	_, cmd := a.Update(keyMsg("y"))
	assert.NotNil(t, cmd)

	a.Update(accountCreatedMsg{account: &ledger.Account{ID: "203", Name: "Loans", Type: ledger.Liability}})
	assert.Equal(t, modeAccounts, a.mode)
	assert.Contains(t, a.statusMsg, "203")
}

func TestJournalEntryForm(t *testing.T) {
	a := newTestApp()
	a.Update(keyMsg("tab"))
	a.Update(keyMsg("t"))
	require.Equal(t, modeJournalEntry, a.mode)
	a.Update(accountsForEntryMsg{accounts: []ledger.Account{
		{ID: "101", Name: "Cash", Type: ledger.Asset},
		{ID: "301", Name: "Owner's Equity", Type: ledger.Equity},
	}})

	a.Update(keyMsg("enter")) // date defaults to today
	typeText(t, a, "Capital")
	a.Update(keyMsg("enter"))
	require.Equal(t, jeStepLines, a.journalEntry.step)

	typeText(t, a, "999 dr 10")
	a.Update(keyMsg("enter"))
	assert.ErrorContains(t, a.journalEntry.err, "unknown account")
	a.journalEntry.line.SetValue("")

	typeText(t, a, "101 dr 100")
	a.Update(keyMsg("enter"))
	typeText(t, a, "301 cr 90")
	a.Update(keyMsg("enter"))
	a.Update(keyMsg("enter"))
	assert.ErrorContains(t, a.journalEntry.err, "differ")

	a.Update(tea.KeyMsg{Type: tea.KeyCtrlD})
	typeText(t, a, "301 cr 100")
	a.Update(keyMsg("enter"))
	a.Update(keyMsg("enter"))
	require.Equal(t, jeStepConfirm, a.journalEntry.step)

	d, err := a.journalEntry.draft()
	require.NoError(t, err)
	assert.Equal(t, "Capital", d.Description)
	assert.Len(t, d.Lines, 2)

	a.Update(entryPostedMsg{entry: &ledger.JournalEntry{ID: "je-1"}})
	assert.Equal(t, modeJournal, a.mode)
	assert.Contains(t, a.statusMsg, "je-1")
}

func TestEscCancelsForm(t *testing.T) {
	a := newTestApp()
	a.Update(keyMsg("n"))
	a.Update(keyMsg("esc"))
	assert.Equal(t, modeAccounts, a.mode)
	assert.Equal(t, "Account creation cancelled", a.statusMsg)
}
