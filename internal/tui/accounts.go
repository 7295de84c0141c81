package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/simonvc/minibooks/internal/books"
	"github.com/simonvc/minibooks/internal/client"
	"github.com/simonvc/minibooks/internal/report"
)

type trialBalanceLoadedMsg struct {
	tb  *report.TrialBalance
	err error
}

// accountListModel shows the chart of accounts with trial balance totals.
type accountListModel struct {
	tb      *report.TrialBalance
	pending bool
	cursor  int
	loading bool
	err     error
	width   int
	height  int
}

func (m *accountListModel) init(c *client.Client) tea.Cmd {
	m.loading = true
	rq := books.ReportQuery{IncludePending: m.pending}
	return func() tea.Msg {
		tb, err := c.TrialBalance(context.Background(), rq)
		return trialBalanceLoadedMsg{tb: tb, err: err}
	}
}

func (m accountListModel) update(msg tea.Msg, c *client.Client) (accountListModel, tea.Cmd) {
	switch msg := msg.(type) {
	case trialBalanceLoadedMsg:
		m.loading = false
		m.tb = msg.tb
		m.err = msg.err
		if m.tb != nil && m.cursor >= len(m.tb.Lines) {
			m.cursor = 0
		}

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.tb != nil && m.cursor < len(m.tb.Lines)-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.Pending):
			m.pending = !m.pending
			return m, m.init(c)
		}
	}
	return m, nil
}

func (m *accountListModel) selectedID() string {
	if m.tb != nil && m.cursor >= 0 && m.cursor < len(m.tb.Lines) {
		return m.tb.Lines[m.cursor].AccountID
	}
	return ""
}

func (m *accountListModel) view() string {
	if m.loading {
		return "Loading accounts..."
	}
	if m.err != nil {
		return errorStyle.Render("Error: " + m.err.Error())
	}
	if m.tb == nil || len(m.tb.Lines) == 0 {
		return dimStyle.Render("No accounts. Press n to create one.")
	}

	var b strings.Builder
	title := "Chart of Accounts"
	if m.pending {
		title += " (including pending)"
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")

	header := fmt.Sprintf("  %-6s %-28s %-10s %14s %14s", "ID", "NAME", "TYPE", "DEBIT", "CREDIT")
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	start, end := window(m.cursor, len(m.tb.Lines), m.height-6)
	for i := start; i < end; i++ {
		l := m.tb.Lines[i]
		line := fmt.Sprintf("  %-6s %-28s %-10s %14s %14s",
			l.AccountID, clip(l.AccountName, 28), l.AccountType, blank(l.Debit), blank(l.Credit))
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("> " + line[2:]))
		} else {
			b.WriteString(line)
		}
		b.WriteString("\n")
	}

	b.WriteString(fmt.Sprintf("  %-6s %-28s %-10s %14s %14s\n", "", "Total", "",
		money(m.tb.TotalDebit), money(m.tb.TotalCredit)))
	if m.tb.Balanced {
		b.WriteString(successStyle.Render("  Balanced"))
	} else {
		b.WriteString(errorStyle.Render("  Out of balance"))
	}
	return b.String()
}
