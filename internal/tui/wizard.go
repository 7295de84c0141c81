package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/simonvc/minibooks/internal/client"
	"github.com/simonvc/minibooks/internal/ledger"
)

type wizardStep int

const (
	stepType wizardStep = iota
	stepID
	stepName
	stepConfirm
)

type accountCreatedMsg struct {
	account *ledger.Account
	err     error
}

// wizardModel walks through creating a chart account.
type wizardModel struct {
	step    wizardStep
	typeIdx int
	id      textinput.Model
	name    textinput.Model

	err       error
	done      bool
	cancelled bool
	statusMsg string
	width     int
}

func newWizard() wizardModel {
	id := textinput.New()
	id.Placeholder = "e.g. 105"
	id.CharLimit = 20

	name := textinput.New()
	name.Placeholder = "e.g. Petty Cash"
	name.CharLimit = 60
	name.Width = 40

	return wizardModel{id: id, name: name}
}

func (m wizardModel) accountType() ledger.AccountType {
	return ledger.AllAccountTypes[m.typeIdx]
}

func (m wizardModel) update(msg tea.Msg, c *client.Client) (wizardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case accountCreatedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.step = stepConfirm
			return m, nil
		}
		m.done = true
		m.statusMsg = fmt.Sprintf("Account %s %s created", msg.account.ID, msg.account.Name)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Escape) {
			m.cancelled = true
			return m, nil
		}

		switch m.step {
		case stepType:
			switch {
			case key.Matches(msg, keys.Up):
				if m.typeIdx > 0 {
					m.typeIdx--
				}
			case key.Matches(msg, keys.Down):
				if m.typeIdx < len(ledger.AllAccountTypes)-1 {
					m.typeIdx++
				}
			case key.Matches(msg, keys.Enter):
				m.step = stepID
				m.id.Focus()
			}
			return m, nil

		case stepID:
			if key.Matches(msg, keys.Enter) {
				v := strings.TrimSpace(m.id.Value())
				if v == "" || strings.ContainsAny(v, " \t/") {
					m.err = errors.New("account id is required and cannot contain spaces or slashes")
					return m, nil
				}
				m.err = nil
				m.id.Blur()
				m.step = stepName
				m.name.Focus()
				return m, nil
			}
			var cmd tea.Cmd
			m.id, cmd = m.id.Update(msg)
			return m, cmd

		case stepName:
			if key.Matches(msg, keys.Enter) {
				if strings.TrimSpace(m.name.Value()) == "" {
					m.err = errors.New("name is required")
					return m, nil
				}
				m.err = nil
				m.name.Blur()
				m.step = stepConfirm
				return m, nil
			}
			var cmd tea.Cmd
			m.name, cmd = m.name.Update(msg)
			return m, cmd

		case stepConfirm:
			switch msg.String() {
			case "y", "enter":
				id, name, typ := strings.TrimSpace(m.id.Value()), strings.TrimSpace(m.name.Value()), m.accountType()
				return m, func() tea.Msg {
					a, err := c.CreateAccount(context.Background(), id, name, typ)
					return accountCreatedMsg{account: a, err: err}
				}
			case "n", "backspace":
				m.step = stepName
				m.name.Focus()
			}
		}
	}
	return m, nil
}

func (m wizardModel) view() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("New Account"))
	b.WriteString("\n")
	b.WriteString(subtitleStyle.Render(fmt.Sprintf("Step %d of 4", int(m.step)+1)))
	b.WriteString("\n\n")

	switch m.step {
	case stepType:
		b.WriteString("Account type:\n\n")
		for i, t := range ledger.AllAccountTypes {
			line := fmt.Sprintf("%-10s %s-normal", t, strings.ToLower(ledger.NormalBalance(t)))
			if i == m.typeIdx {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
	case stepID:
		b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Type:"), m.accountType()))
		b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Account ID:"), m.id.View()))
	case stepName:
		b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Type:"), m.accountType()))
		b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Account ID:"), m.id.Value()))
		b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Name:"), m.name.View()))
	case stepConfirm:
		summary := fmt.Sprintf("%s %s\n%s %s\n%s %s\n\nCreate this account? (y/n)",
			labelStyle.Render("Type:"), m.accountType(),
			labelStyle.Render("Account ID:"), m.id.Value(),
			labelStyle.Render("Name:"), m.name.Value())
		b.WriteString(boxStyle.Render(summary))
	}

	if m.err != nil {
		b.WriteString("\n" + errorStyle.Render(m.err.Error()))
	}
	b.WriteString("\n\n" + dimStyle.Render("enter:next  esc:cancel"))
	return b.String()
}
