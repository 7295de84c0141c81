package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	"github.com/simonvc/minibooks/internal/books"
	"github.com/simonvc/minibooks/internal/client"
	"github.com/simonvc/minibooks/internal/ledger"
)

type jeStep int

const (
	jeStepDate jeStep = iota
	jeStepDescription
	jeStepLines
	jeStepConfirm
)

type accountsForEntryMsg struct {
	accounts []ledger.Account
	err      error
}

type entryPostedMsg struct {
	entry *ledger.JournalEntry
	err   error
}

// journalEntryModel is the form for posting a manual journal entry.
type journalEntryModel struct {
	step        jeStep
	date        textinput.Model
	description textinput.Model
	line        textinput.Model
	lines       []ledger.Line
	accounts    []ledger.Account

	err       error
	done      bool
	cancelled bool
	statusMsg string
	width     int
}

func newJournalEntry() journalEntryModel {
	date := textinput.New()
	date.Placeholder = ledger.DateLayout
	date.SetValue(time.Now().Format(ledger.DateLayout))
	date.CharLimit = 10
	date.Focus()

	desc := textinput.New()
	desc.Placeholder = "e.g. Owner capital contribution"
	desc.CharLimit = 120
	desc.Width = 50

	line := textinput.New()
	line.Placeholder = "101 dr 500.00"
	line.CharLimit = 60
	line.Width = 40

	return journalEntryModel{date: date, description: desc, line: line}
}

func (m journalEntryModel) loadAccounts(c *client.Client) tea.Cmd {
	return func() tea.Msg {
		accounts, err := c.ListAccounts(context.Background())
		return accountsForEntryMsg{accounts: accounts, err: err}
	}
}

// parseEntryLine reads "<account> dr|cr <amount> [<product> <qty>]".
func parseEntryLine(s string) (ledger.Line, error) {
	f := strings.Fields(s)
	if len(f) != 3 && len(f) != 5 {
		return ledger.Line{}, errors.New("expected: account dr|cr amount [product qty]")
	}
	amount, err := ledger.ParseAmount(f[2])
	if err != nil {
		return ledger.Line{}, err
	}
	if !amount.IsPositive() {
		return ledger.Line{}, errors.New("amount must be positive")
	}
	var l ledger.Line
	switch strings.ToLower(f[1]) {
	case "dr", "debit":
		l = ledger.DebitLine(f[0], amount)
	case "cr", "credit":
		l = ledger.CreditLine(f[0], amount)
	default:
		return ledger.Line{}, fmt.Errorf("side must be dr or cr, got %q", f[1])
	}
	if len(f) == 5 {
		var qty int64
		if _, err := fmt.Sscanf(f[4], "%d", &qty); err != nil || qty <= 0 {
			return ledger.Line{}, fmt.Errorf("quantity must be a positive whole number, got %q", f[4])
		}
		l.ProductID, l.Quantity = f[3], qty
	}
	return l, nil
}

func (m journalEntryModel) known(id string) bool {
	if m.accounts == nil {
		return true
	}
	for _, a := range m.accounts {
		if a.ID == id {
			return true
		}
	}
	return false
}

func (m journalEntryModel) draft() (books.EntryDraft, error) {
	d, err := ledger.ParseDate(m.date.Value())
	if err != nil {
		return books.EntryDraft{}, err
	}
	return books.EntryDraft{Date: d, Description: strings.TrimSpace(m.description.Value()), Lines: m.lines}, nil
}

func (m journalEntryModel) update(msg tea.Msg, c *client.Client) (journalEntryModel, tea.Cmd) {
	switch msg := msg.(type) {
	case accountsForEntryMsg:
		m.accounts = msg.accounts
		if msg.err != nil {
			m.err = msg.err
		}
		return m, nil

	case entryPostedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.step = jeStepLines
			m.line.Focus()
			return m, nil
		}
		m.done = true
		m.statusMsg = fmt.Sprintf("Entry %s posted, awaiting approval", msg.entry.ID)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Escape) {
			m.cancelled = true
			return m, nil
		}
		switch m.step {
		case jeStepDate:
			if key.Matches(msg, keys.Enter) {
				if _, err := ledger.ParseDate(m.date.Value()); err != nil {
					m.err = err
					return m, nil
				}
				m.err = nil
				m.step = jeStepDescription
				m.date.Blur()
				m.description.Focus()
				return m, nil
			}
			var cmd tea.Cmd
			m.date, cmd = m.date.Update(msg)
			return m, cmd

		case jeStepDescription:
			if key.Matches(msg, keys.Enter) {
				if strings.TrimSpace(m.description.Value()) == "" {
					m.err = errors.New("description is required")
					return m, nil
				}
				m.err = nil
				m.step = jeStepLines
				m.description.Blur()
				m.line.Focus()
				return m, nil
			}
			var cmd tea.Cmd
			m.description, cmd = m.description.Update(msg)
			return m, cmd

		case jeStepLines:
			return m.updateLines(msg)

		case jeStepConfirm:
			switch msg.String() {
			case "y", "enter":
				d, err := m.draft()
				if err != nil {
					m.err = err
					return m, nil
				}
				return m, func() tea.Msg {
					e, err := c.PostEntry(context.Background(), d)
					return entryPostedMsg{entry: e, err: err}
				}
			case "n", "backspace":
				m.step = jeStepLines
				m.line.Focus()
			}
			return m, nil
		}
	}
	return m, nil
}

// updateLines adds one line per enter; enter on an empty input finishes.
func (m journalEntryModel) updateLines(msg tea.KeyMsg) (journalEntryModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Enter):
		val := strings.TrimSpace(m.line.Value())
		if val == "" {
			if len(m.lines) < 2 {
				m.err = errors.New("an entry needs at least two lines")
				return m, nil
			}
			debits, credits := m.totals()
			if !ledger.AmountsEqual(debits, credits) {
				m.err = fmt.Errorf("debits %s and credits %s differ", money(debits), money(credits))
				return m, nil
			}
			m.err = nil
			m.step = jeStepConfirm
			m.line.Blur()
			return m, nil
		}
		l, err := parseEntryLine(val)
		if err != nil {
			m.err = err
			return m, nil
		}
		if !m.known(l.AccountID) {
			m.err = fmt.Errorf("unknown account %s", l.AccountID)
			return m, nil
		}
		m.err = nil
		m.lines = append(m.lines, l)
		m.line.SetValue("")
		return m, nil

	case msg.String() == "ctrl+d":
		if len(m.lines) > 0 {
			m.lines = m.lines[:len(m.lines)-1]
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.line, cmd = m.line.Update(msg)
	return m, cmd
}

func (m journalEntryModel) totals() (debits, credits decimal.Decimal) {
	e := ledger.JournalEntry{Lines: m.lines}
	return e.Totals()
}

func (m journalEntryModel) view() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("New Journal Entry"))
	b.WriteString("\n")

	b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Date:"), m.date.View()))
	if m.step >= jeStepDescription {
		b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Description:"), m.description.View()))
	}

	if m.step >= jeStepLines {
		b.WriteString("\n")
		header := fmt.Sprintf("  %-6s %-24s %13s %13s", "ACCT", "NAME", "DEBIT", "CREDIT")
		b.WriteString(headerStyle.Render(header))
		b.WriteString("\n")
		for _, l := range m.lines {
			b.WriteString(fmt.Sprintf("  %-6s %-24s %13s %13s\n", l.AccountID, clip(m.accountName(l.AccountID), 24), blank(l.Debit), blank(l.Credit)))
		}
		debits, credits := m.totals()
		totals := fmt.Sprintf("  %-6s %-24s %13s %13s", "", "Total", money(debits), money(credits))
		if ledger.AmountsEqual(debits, credits) && debits.IsPositive() {
			b.WriteString(successStyle.Render(totals))
		} else {
			b.WriteString(pendingStyle.Render(totals))
		}
		b.WriteString("\n\n")
	}

	switch m.step {
	case jeStepLines:
		b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Line:"), m.line.View()))
		b.WriteString(dimStyle.Render("  enter:add line  enter on empty:finish  ctrl+d:remove last  esc:cancel"))
		b.WriteString("\n\n")
		b.WriteString(m.accountHints())
	case jeStepConfirm:
		b.WriteString(boxStyle.Render("Post this entry for approval? (y/n)"))
	default:
		b.WriteString(dimStyle.Render("  enter:next  esc:cancel"))
	}

	if m.err != nil {
		b.WriteString("\n" + errorStyle.Render("  "+m.err.Error()))
	}
	return b.String()
}

func (m journalEntryModel) accountName(id string) string {
	for _, a := range m.accounts {
		if a.ID == id {
			return a.Name
		}
	}
	return ""
}

func (m journalEntryModel) accountHints() string {
	if len(m.accounts) == 0 {
		return ""
	}
	var b strings.Builder
	for _, a := range m.accounts {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  %-6s %-28s %s", a.ID, clip(a.Name, 28), a.Type)))
		b.WriteString("\n")
	}
	return b.String()
}
