package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/simonvc/minibooks/internal/client"
	"github.com/simonvc/minibooks/internal/ledger"
	"github.com/simonvc/minibooks/internal/store"
)

type entriesLoadedMsg struct {
	entries []ledger.JournalEntry
	err     error
}

type entryApprovedMsg struct {
	entry *ledger.JournalEntry
	err   error
}

func approveEntry(c *client.Client, id string) tea.Cmd {
	return func() tea.Msg {
		e, err := c.ApproveEntry(context.Background(), id)
		return entryApprovedMsg{entry: e, err: err}
	}
}

type journalListModel struct {
	entries []ledger.JournalEntry
	pending bool
	cursor  int
	loading bool
	err     error
	width   int
	height  int
}

func (m *journalListModel) init(c *client.Client) tea.Cmd {
	m.loading = true
	var filter store.EntryFilter
	if m.pending {
		filter.Status = ledger.PendingApproval
	}
	return func() tea.Msg {
		entries, err := c.ListEntries(context.Background(), filter)
		return entriesLoadedMsg{entries: entries, err: err}
	}
}

func (m journalListModel) update(msg tea.Msg, c *client.Client) (journalListModel, tea.Cmd) {
	switch msg := msg.(type) {
	case entriesLoadedMsg:
		m.loading = false
		m.entries = msg.entries
		m.err = msg.err
		if m.cursor >= len(m.entries) {
			m.cursor = max(len(m.entries)-1, 0)
		}

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.entries)-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.Pending):
			m.pending = !m.pending
			m.cursor = 0
			return m, m.init(c)
		case key.Matches(msg, keys.Approve):
			if id := m.selectedID(); id != "" {
				return m, approveEntry(c, id)
			}
		}
	}
	return m, nil
}

func (m *journalListModel) selectedID() string {
	if m.cursor >= 0 && m.cursor < len(m.entries) {
		return m.entries[m.cursor].ID
	}
	return ""
}

func (m *journalListModel) view() string {
	if m.loading {
		return "Loading journal..."
	}
	if m.err != nil {
		return errorStyle.Render("Error: " + m.err.Error())
	}

	var b strings.Builder
	title := "Journal"
	if m.pending {
		title += " (pending approval)"
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")

	if len(m.entries) == 0 {
		b.WriteString(dimStyle.Render("No journal entries. Press t to post one."))
		return b.String()
	}

	header := fmt.Sprintf("  %-10s %-10s %-34s %-10s %14s", "ID", "DATE", "DESCRIPTION", "SOURCE", "AMOUNT")
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	start, end := window(m.cursor, len(m.entries), m.height-6)
	for i := start; i < end; i++ {
		e := m.entries[i]
		debits, _ := e.Totals()
		source := "manual"
		if e.SourceType != "" {
			source = string(e.SourceType)
		}
		line := fmt.Sprintf("  %-10s %-10s %-34s %-10s %14s ",
			clip(e.ID, 10), day(e.Date), clip(e.Description, 34), source, money(debits))
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("> " + line[2:]))
		} else {
			b.WriteString(line)
		}
		b.WriteString(statusLabel(e.Status))
		b.WriteString("\n")
	}

	b.WriteString(fmt.Sprintf("\n  %d entries", len(m.entries)))
	return b.String()
}
