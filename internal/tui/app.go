package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/simonvc/minibooks/internal/client"
)

type mode int

const (
	modeAccounts mode = iota
	modeAccountDetail
	modeJournal
	modeEntryDetail
	modeProducts
	modeStatements
	modeApprovals
	modeWizard
	modeJournalEntry
)

var tabModes = []mode{modeAccounts, modeJournal, modeProducts, modeStatements, modeApprovals}

func tabLabel(m mode) string {
	switch m {
	case modeAccounts:
		return "Accounts"
	case modeJournal:
		return "Journal"
	case modeProducts:
		return "Products"
	case modeStatements:
		return "Statements"
	case modeApprovals:
		return "Approvals"
	default:
		return ""
	}
}

// App is the root bubbletea model. All data goes through the HTTP client so
// the TUI works the same against an embedded or a remote server.
type App struct {
	client        *client.Client
	mode          mode
	back          mode
	tabIndex      int
	width, height int
	err           error
	statusMsg     string

	accounts      accountListModel
	accountDetail accountDetailModel
	journal       journalListModel
	entryDetail   entryDetailModel
	products      productListModel
	statements    statementsModel
	approvals     approvalListModel
	wizard        wizardModel
	journalEntry  journalEntryModel
}

func NewApp(c *client.Client) *App {
	return &App{client: c, mode: modeAccounts}
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(
		a.accounts.init(a.client),
		a.journal.init(a.client),
		a.products.init(a.client),
		a.statements.init(a.client),
		a.approvals.init(a.client),
	)
}

func (a *App) resize(w, h int) {
	a.width, a.height = w, h
	body := h - 6
	a.accounts.width, a.accounts.height = w, body
	a.accountDetail.width, a.accountDetail.height = w, body
	a.journal.width, a.journal.height = w, body
	a.entryDetail.width = w
	a.products.width, a.products.height = w, body
	a.statements.width, a.statements.height = w, body
	a.approvals.width, a.approvals.height = w, body
	a.wizard.width = w
	a.journalEntry.width = w
}

// refreshAll reloads every view that replays the ledger.
func (a *App) refreshAll() tea.Cmd {
	return tea.Batch(
		a.accounts.init(a.client),
		a.journal.init(a.client),
		a.products.init(a.client),
		a.statements.init(a.client),
	)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	// Loaded data goes to its owner whichever view is active.
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.resize(msg.Width, msg.Height)
		return a, nil
	case trialBalanceLoadedMsg:
		a.accounts, cmd = a.accounts.update(msg, a.client)
		return a, cmd
	case accountLedgerLoadedMsg:
		a.accountDetail, cmd = a.accountDetail.update(msg)
		return a, cmd
	case entriesLoadedMsg:
		a.journal, cmd = a.journal.update(msg, a.client)
		return a, cmd
	case entryDetailLoadedMsg:
		a.entryDetail, cmd = a.entryDetail.update(msg, a.client)
		return a, cmd
	case productsLoadedMsg:
		a.products, cmd = a.products.update(msg)
		return a, cmd
	case statementsLoadedMsg:
		a.statements, cmd = a.statements.update(msg, a.client)
		return a, cmd
	case requestsLoadedMsg:
		a.approvals, cmd = a.approvals.update(msg, a.client)
		return a, cmd
	case accountsForEntryMsg:
		a.journalEntry, cmd = a.journalEntry.update(msg, a.client)
		return a, cmd

	case entryApprovedMsg:
		a.err = msg.err
		if msg.err != nil {
			return a, nil
		}
		a.statusMsg = "Entry " + msg.entry.ID + " approved"
		a.entryDetail, _ = a.entryDetail.update(msg, a.client)
		return a, a.refreshAll()

	case requestDecidedMsg:
		a.err = msg.err
		if msg.err != nil {
			return a, a.approvals.init(a.client)
		}
		a.statusMsg = "Request " + msg.request.ID + " " + string(msg.request.Status)
		return a, tea.Batch(a.approvals.init(a.client), a.refreshAll())
	}

	// Modal forms take every message until they finish.
	switch a.mode {
	case modeWizard:
		a.wizard, cmd = a.wizard.update(msg, a.client)
		if a.wizard.done {
			a.mode = modeAccounts
			a.statusMsg = a.wizard.statusMsg
			return a, a.accounts.init(a.client)
		}
		if a.wizard.cancelled {
			a.mode = modeAccounts
			a.statusMsg = "Account creation cancelled"
		}
		return a, cmd

	case modeJournalEntry:
		a.journalEntry, cmd = a.journalEntry.update(msg, a.client)
		if a.journalEntry.done {
			a.setTab(modeJournal)
			a.statusMsg = a.journalEntry.statusMsg
			return a, a.journal.init(a.client)
		}
		if a.journalEntry.cancelled {
			a.setTab(modeJournal)
			a.statusMsg = "Journal entry cancelled"
		}
		return a, cmd
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		a.err = nil
		switch {
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit

		case key.Matches(msg, keys.Tab), key.Matches(msg, keys.ShiftTab):
			step := 1
			if key.Matches(msg, keys.ShiftTab) {
				step = len(tabModes) - 1
			}
			a.tabIndex = (a.tabIndex + step) % len(tabModes)
			a.mode = tabModes[a.tabIndex]
			a.statusMsg = ""
			return a, a.refreshTab()

		case key.Matches(msg, keys.Refresh):
			return a, a.refreshTab()

		case key.Matches(msg, keys.Escape):
			switch a.mode {
			case modeAccountDetail:
				a.mode = modeAccounts
			case modeEntryDetail:
				a.mode = a.back
			}
			return a, nil

		case key.Matches(msg, keys.New):
			if a.mode == modeAccounts {
				a.mode = modeWizard
				a.wizard = newWizard()
				return a, nil
			}

		case key.Matches(msg, keys.NewEntry):
			if a.mode == modeJournal || a.mode == modeAccounts {
				a.mode = modeJournalEntry
				a.journalEntry = newJournalEntry()
				return a, a.journalEntry.loadAccounts(a.client)
			}

		case key.Matches(msg, keys.Enter):
			switch a.mode {
			case modeAccounts:
				if id := a.accounts.selectedID(); id != "" {
					a.mode = modeAccountDetail
					return a, a.accountDetail.init(a.client, id, a.accounts.pending)
				}
				return a, nil
			case modeAccountDetail:
				if id := a.accountDetail.selectedEntryID(); id != "" {
					a.back, a.mode = modeAccountDetail, modeEntryDetail
					return a, a.entryDetail.init(a.client, id)
				}
				return a, nil
			case modeJournal:
				if id := a.journal.selectedID(); id != "" {
					a.back, a.mode = modeJournal, modeEntryDetail
					return a, a.entryDetail.init(a.client, id)
				}
				return a, nil
			}
		}
	}

	switch a.mode {
	case modeAccounts:
		a.accounts, cmd = a.accounts.update(msg, a.client)
	case modeAccountDetail:
		a.accountDetail, cmd = a.accountDetail.update(msg)
	case modeJournal:
		a.journal, cmd = a.journal.update(msg, a.client)
	case modeEntryDetail:
		a.entryDetail, cmd = a.entryDetail.update(msg, a.client)
	case modeProducts:
		a.products, cmd = a.products.update(msg)
	case modeStatements:
		a.statements, cmd = a.statements.update(msg, a.client)
	case modeApprovals:
		a.approvals, cmd = a.approvals.update(msg, a.client)
	}
	return a, cmd
}

func (a *App) setTab(m mode) {
	a.mode = m
	for i, t := range tabModes {
		if t == m {
			a.tabIndex = i
		}
	}
}

func (a *App) refreshTab() tea.Cmd {
	switch a.mode {
	case modeAccounts:
		return a.accounts.init(a.client)
	case modeJournal:
		return a.journal.init(a.client)
	case modeProducts:
		return a.products.init(a.client)
	case modeStatements:
		return a.statements.init(a.client)
	case modeApprovals:
		return a.approvals.init(a.client)
	}
	return nil
}

func (a *App) help() string {
	common := []key.Binding{keys.Tab, keys.Refresh, keys.Quit}
	switch a.mode {
	case modeAccounts:
		return helpLine(append([]key.Binding{keys.Enter, keys.New, keys.NewEntry, keys.Pending}, common...)...)
	case modeJournal:
		return helpLine(append([]key.Binding{keys.Enter, keys.NewEntry, keys.Approve, keys.Pending}, common...)...)
	case modeStatements:
		return helpLine(append([]key.Binding{keys.Pending}, common...)...)
	case modeApprovals:
		return helpLine(append([]key.Binding{keys.Approve, keys.Reject}, common...)...)
	case modeAccountDetail, modeEntryDetail:
		return helpLine(keys.Enter, keys.Escape, keys.Quit)
	}
	return helpLine(common...)
}

func (a *App) View() string {
	modal := a.mode == modeWizard || a.mode == modeJournalEntry
	tabs := make([]string, 0, len(tabModes))
	for i, m := range tabModes {
		if i == a.tabIndex && !modal {
			tabs = append(tabs, activeTabStyle.Render(tabLabel(m)))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(tabLabel(m)))
		}
	}
	user := dimStyle.Render("  user: " + a.client.User())

	var content string
	switch a.mode {
	case modeAccounts:
		content = a.accounts.view()
	case modeAccountDetail:
		content = a.accountDetail.view()
	case modeJournal:
		content = a.journal.view()
	case modeEntryDetail:
		content = a.entryDetail.view()
	case modeProducts:
		content = a.products.view()
	case modeStatements:
		content = a.statements.view()
	case modeApprovals:
		content = a.approvals.view()
	case modeWizard:
		content = a.wizard.view()
	case modeJournalEntry:
		content = a.journalEntry.view()
	}

	status := ""
	if a.statusMsg != "" {
		status = successStyle.Render(a.statusMsg)
	}
	if a.err != nil {
		status = errorStyle.Render(a.err.Error())
	}

	help := ""
	if !modal {
		help = dimStyle.Render(a.help())
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		strings.Join(tabs, " ")+user,
		"",
		content,
		"",
		status,
		help,
	)
}
