package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/simonvc/minibooks/internal/client"
	"github.com/simonvc/minibooks/internal/ledger"
)

type entryDetailLoadedMsg struct {
	entry *ledger.JournalEntry
	names map[string]string
	err   error
}

type entryDetailModel struct {
	entry   *ledger.JournalEntry
	names   map[string]string
	loading bool
	err     error
	width   int
}

func (m *entryDetailModel) init(c *client.Client, id string) tea.Cmd {
	m.loading = true
	return func() tea.Msg {
		e, err := c.GetEntry(context.Background(), id)
		if err != nil {
			return entryDetailLoadedMsg{err: err}
		}
		accounts, err := c.ListAccounts(context.Background())
		names := make(map[string]string, len(accounts))
		for _, a := range accounts {
			names[a.ID] = a.Name
		}
		return entryDetailLoadedMsg{entry: e, names: names, err: err}
	}
}

func (m entryDetailModel) update(msg tea.Msg, c *client.Client) (entryDetailModel, tea.Cmd) {
	switch msg := msg.(type) {
	case entryDetailLoadedMsg:
		m.loading = false
		m.entry = msg.entry
		m.names = msg.names
		m.err = msg.err
	case entryApprovedMsg:
		if msg.err == nil && m.entry != nil && msg.entry.ID == m.entry.ID {
			m.entry = msg.entry
		}
	case tea.KeyMsg:
		if key.Matches(msg, keys.Approve) && m.entry != nil {
			return m, approveEntry(c, m.entry.ID)
		}
	}
	return m, nil
}

func (m *entryDetailModel) view() string {
	if m.loading {
		return "Loading entry..."
	}
	if m.err != nil {
		return errorStyle.Render("Error: " + m.err.Error())
	}
	e := m.entry
	if e == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Journal Entry " + e.ID))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Date:"), day(e.Date)))
	b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Description:"), e.Description))
	b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Status:"), statusLabel(e.Status)))
	if e.Lifecycle == ledger.Deleted {
		b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Lifecycle:"), errorStyle.Render("deleted")))
	}
	if e.SourceType != "" {
		b.WriteString(fmt.Sprintf("%s %s %s\n", labelStyle.Render("Source:"), e.SourceType.Label(), e.SourceID))
	}
	b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Created by:"), e.CreatedBy))
	if e.ApprovedAt != nil {
		b.WriteString(fmt.Sprintf("%s %s on %s\n", labelStyle.Render("Approved by:"), e.ApprovedBy, day(*e.ApprovedAt)))
	}
	b.WriteString("\n")

	header := fmt.Sprintf("  %-6s %-28s %13s %13s", "ACCT", "NAME", "DEBIT", "CREDIT")
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")
	for _, l := range e.Lines {
		line := fmt.Sprintf("  %-6s %-28s %13s %13s", l.AccountID, clip(m.names[l.AccountID], 28), blank(l.Debit), blank(l.Credit))
		if l.ProductID != "" {
			line += dimStyle.Render(fmt.Sprintf("  %s x%d", l.ProductID, l.Quantity))
		}
		if l.Debit.IsPositive() {
			b.WriteString(debitStyle.Render(line))
		} else {
			b.WriteString(creditStyle.Render(line))
		}
		b.WriteString("\n")
	}
	debits, credits := e.Totals()
	b.WriteString(fmt.Sprintf("  %-6s %-28s %13s %13s\n", "", "Total", money(debits), money(credits)))

	hint := "esc:back"
	if e.Status == ledger.PendingApproval {
		hint = "a:approve  " + hint
	}
	b.WriteString("\n" + dimStyle.Render("  "+hint))
	return b.String()
}
