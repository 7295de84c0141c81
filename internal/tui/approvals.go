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

type requestsLoadedMsg struct {
	requests []ledger.ApprovalRequest
	err      error
}

type requestDecidedMsg struct {
	request *ledger.ApprovalRequest
	err     error
}

// approvalListModel lists deletion requests awaiting a decision.
type approvalListModel struct {
	requests []ledger.ApprovalRequest
	cursor   int
	loading  bool
	err      error
	width    int
	height   int
}

func (m *approvalListModel) init(c *client.Client) tea.Cmd {
	m.loading = true
	return func() tea.Msg {
		reqs, err := c.ListRequests(context.Background(), ledger.RequestPending)
		return requestsLoadedMsg{requests: reqs, err: err}
	}
}

func (m approvalListModel) update(msg tea.Msg, c *client.Client) (approvalListModel, tea.Cmd) {
	switch msg := msg.(type) {
	case requestsLoadedMsg:
		m.loading = false
		m.requests = msg.requests
		m.err = msg.err
		if m.cursor >= len(m.requests) {
			m.cursor = max(len(m.requests)-1, 0)
		}

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.requests)-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.Approve), key.Matches(msg, keys.Reject):
			if m.cursor >= len(m.requests) {
				return m, nil
			}
			id := m.requests[m.cursor].ID
			approve := key.Matches(msg, keys.Approve)
			return m, func() tea.Msg {
				var r *ledger.ApprovalRequest
				var err error
				if approve {
					r, err = c.ApproveRequest(context.Background(), id)
				} else {
					r, err = c.RejectRequest(context.Background(), id)
				}
				return requestDecidedMsg{request: r, err: err}
			}
		}
	}
	return m, nil
}

func (m *approvalListModel) view() string {
	if m.loading {
		return "Loading approval requests..."
	}
	if m.err != nil {
		return errorStyle.Render("Error: " + m.err.Error())
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Pending Deletion Requests"))
	b.WriteString("\n")
	if len(m.requests) == 0 {
		b.WriteString(dimStyle.Render("Nothing awaiting approval."))
		return b.String()
	}

	header := fmt.Sprintf("  %-10s %-16s %-12s %-12s %-10s", "ID", "RECORD", "RECORD ID", "REQUESTED BY", "DATE")
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	start, end := window(m.cursor, len(m.requests), m.height-6)
	for i := start; i < end; i++ {
		r := m.requests[i]
		line := fmt.Sprintf("  %-10s %-16s %-12s %-12s %-10s",
			clip(r.ID, 10), r.RecordType.Label(), clip(r.RecordID, 12), clip(r.RequestedBy, 12), day(r.RequestDate))
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("> " + line[2:]))
		} else {
			b.WriteString(line)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n" + dimStyle.Render("  a:approve  x:reject"))
	return b.String()
}
