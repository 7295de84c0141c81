package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/simonvc/minibooks/internal/books"
	"github.com/simonvc/minibooks/internal/client"
	"github.com/simonvc/minibooks/internal/report"
)

type statementsLoadedMsg struct {
	pl  *report.ProfitAndLoss
	bs  *report.BalanceSheet
	err error
}

// statementsModel shows the profit and loss statement beside the balance sheet.
type statementsModel struct {
	pl      *report.ProfitAndLoss
	bs      *report.BalanceSheet
	pending bool
	loading bool
	err     error
	width   int
	height  int
}

func (m *statementsModel) init(c *client.Client) tea.Cmd {
	m.loading = true
	rq := books.ReportQuery{IncludePending: m.pending}
	return func() tea.Msg {
		ctx := context.Background()
		pl, err := c.ProfitAndLoss(ctx, rq)
		if err != nil {
			return statementsLoadedMsg{err: err}
		}
		bs, err := c.BalanceSheet(ctx, rq)
		return statementsLoadedMsg{pl: pl, bs: bs, err: err}
	}
}

func (m statementsModel) update(msg tea.Msg, c *client.Client) (statementsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case statementsLoadedMsg:
		m.loading = false
		m.pl, m.bs, m.err = msg.pl, msg.bs, msg.err
	case tea.KeyMsg:
		if key.Matches(msg, keys.Pending) {
			m.pending = !m.pending
			return m, m.init(c)
		}
	}
	return m, nil
}

func amountRow(label string, d decimal.Decimal) string {
	return fmt.Sprintf("  %-28s %14s\n", clip(label, 28), money(d))
}

func totalRow(label string, d decimal.Decimal) string {
	return fmt.Sprintf("  %-28s %14s\n", "", strings.Repeat("-", 14)) +
		selectedStyle.Render(fmt.Sprintf("  %-28s %14s", label, money(d))) + "\n"
}

func section(b *strings.Builder, title string, rows []report.Amount) {
	b.WriteString(headerStyle.Render("  " + title))
	b.WriteString("\n")
	if len(rows) == 0 {
		b.WriteString(dimStyle.Render("  (none)") + "\n")
	}
	for _, r := range rows {
		b.WriteString(amountRow(r.AccountName, r.Amount))
	}
}

func (m *statementsModel) profitAndLoss() string {
	pl := m.pl
	var b strings.Builder
	b.WriteString(titleStyle.Render("Profit and Loss"))
	b.WriteString("\n")
	section(&b, "Revenue", pl.RevenueLines)
	b.WriteString(totalRow("Total revenue", pl.Revenue))
	b.WriteString(amountRow("Cost of goods sold", pl.COGS))
	b.WriteString(totalRow("Gross profit", pl.GrossProfit))
	b.WriteString("\n")
	section(&b, "Expenses", pl.ExpenseLines)
	b.WriteString(amountRow("Operating expenses", pl.OperatingExpenses))
	b.WriteString("\n")
	net := fmt.Sprintf("  %-28s %14s", "Net profit", money(pl.NetProfit))
	if pl.NetProfit.IsNegative() {
		b.WriteString(errorStyle.Render(net))
	} else {
		b.WriteString(successStyle.Render(net))
	}
	return b.String()
}

func (m *statementsModel) balanceSheet() string {
	bs := m.bs
	var b strings.Builder
	b.WriteString(titleStyle.Render("Balance Sheet"))
	b.WriteString("\n")
	section(&b, "Assets", bs.Assets)
	b.WriteString(totalRow("Total assets", bs.TotalAssets))
	b.WriteString("\n")
	section(&b, "Liabilities", bs.Liabilities)
	b.WriteString(totalRow("Total liabilities", bs.TotalLiabilities))
	b.WriteString("\n")
	section(&b, "Equity", bs.Equity)
	b.WriteString(totalRow("Total equity", bs.TotalEquity))
	b.WriteString("\n")
	b.WriteString(amountRow("Liabilities + equity", bs.TotalLiabilitiesAndEquity))
	if bs.Balanced {
		b.WriteString(successStyle.Render("  Balanced"))
	} else {
		b.WriteString(errorStyle.Render("  Out of balance"))
	}
	return b.String()
}

func (m *statementsModel) view() string {
	if m.loading {
		return "Loading statements..."
	}
	if m.err != nil {
		return errorStyle.Render("Error: " + m.err.Error())
	}
	if m.pl == nil || m.bs == nil {
		return ""
	}

	left := boxStyle.Render(m.profitAndLoss())
	right := boxStyle.Render(m.balanceSheet())
	var body string
	if m.width > 0 && lipgloss.Width(left)+lipgloss.Width(right) > m.width {
		body = lipgloss.JoinVertical(lipgloss.Left, left, right)
	} else {
		body = lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right)
	}
	if m.pending {
		body = pendingStyle.Render("Including entries pending approval") + "\n" + body
	}
	return body
}
