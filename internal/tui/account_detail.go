package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/simonvc/minibooks/internal/books"
	"github.com/simonvc/minibooks/internal/client"
	"github.com/simonvc/minibooks/internal/ledger"
	"github.com/simonvc/minibooks/internal/report"
)

type accountLedgerLoadedMsg struct {
	ledger *report.AccountLedger
	err    error
}

type accountDetailModel struct {
	ledger  *report.AccountLedger
	cursor  int
	loading bool
	err     error
	width   int
	height  int
}

func (m *accountDetailModel) init(c *client.Client, id string, pending bool) tea.Cmd {
	m.loading = true
	m.cursor = 0
	return func() tea.Msg {
		l, err := c.AccountLedger(context.Background(), id, books.ReportQuery{IncludePending: pending})
		return accountLedgerLoadedMsg{ledger: l, err: err}
	}
}

func (m accountDetailModel) update(msg tea.Msg) (accountDetailModel, tea.Cmd) {
	switch msg := msg.(type) {
	case accountLedgerLoadedMsg:
		m.loading = false
		m.ledger = msg.ledger
		m.err = msg.err
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.ledger != nil && m.cursor < len(m.ledger.Rows)-1 {
				m.cursor++
			}
		}
	}
	return m, nil
}

// selectedEntryID is the journal entry behind the highlighted ledger row.
func (m *accountDetailModel) selectedEntryID() string {
	if m.ledger != nil && m.cursor >= 0 && m.cursor < len(m.ledger.Rows) {
		return m.ledger.Rows[m.cursor].EntryID
	}
	return ""
}

func (m *accountDetailModel) view() string {
	if m.loading {
		return "Loading account..."
	}
	if m.err != nil {
		return errorStyle.Render("Error: " + m.err.Error())
	}
	if m.ledger == nil {
		return ""
	}
	acct := m.ledger.Account

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Account %s", acct.ID)))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Name:"), acct.Name))
	b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Type:"), acct.Type))
	b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Normal side:"), ledger.NormalBalance(acct.Type)))
	b.WriteString(fmt.Sprintf("%s %s\n\n", labelStyle.Render("Balance:"), money(m.ledger.Balance)))

	if len(m.ledger.Rows) == 0 {
		b.WriteString(dimStyle.Render("  No postings."))
	} else {
		header := fmt.Sprintf("  %-10s %-30s %13s %13s %14s", "DATE", "DESCRIPTION", "DEBIT", "CREDIT", "BALANCE")
		b.WriteString(headerStyle.Render(header))
		b.WriteString("\n")

		start, end := window(m.cursor, len(m.ledger.Rows), m.height-10)
		for i := start; i < end; i++ {
			r := m.ledger.Rows[i]
			line := fmt.Sprintf("  %-10s %-30s %13s %13s %14s",
				day(r.Date), clip(r.Description, 30), blank(r.Debit), blank(r.Credit), money(r.Balance))
			switch {
			case i == m.cursor:
				b.WriteString(selectedStyle.Render("> " + line[2:]))
			case r.Debit.IsPositive():
				b.WriteString(debitStyle.Render(line))
			default:
				b.WriteString(creditStyle.Render(line))
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\n" + dimStyle.Render("  enter:open entry  esc:back"))
	return b.String()
}
