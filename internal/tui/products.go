package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	"github.com/simonvc/minibooks/internal/client"
	"github.com/simonvc/minibooks/internal/ledger"
)

type productsLoadedMsg struct {
	products []ledger.Product
	err      error
}

type productListModel struct {
	products []ledger.Product
	cursor   int
	loading  bool
	err      error
	width    int
	height   int
}

func (m *productListModel) init(c *client.Client) tea.Cmd {
	m.loading = true
	return func() tea.Msg {
		products, err := c.ListProducts(context.Background(), false)
		return productsLoadedMsg{products: products, err: err}
	}
}

func (m productListModel) update(msg tea.Msg) (productListModel, tea.Cmd) {
	switch msg := msg.(type) {
	case productsLoadedMsg:
		m.loading = false
		m.products = msg.products
		m.err = msg.err
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.products)-1 {
				m.cursor++
			}
		}
	}
	return m, nil
}

func (m *productListModel) view() string {
	if m.loading {
		return "Loading products..."
	}
	if m.err != nil {
		return errorStyle.Render("Error: " + m.err.Error())
	}
	if len(m.products) == 0 {
		return dimStyle.Render("No products. Create one with `minibooks product create`.")
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Products"))
	b.WriteString("\n")
	header := fmt.Sprintf("  %-10s %-24s %-10s %12s %12s %8s %-6s", "SKU", "NAME", "CATEGORY", "COST", "PRICE", "STOCK", "UNIT")
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	value := decimal.Zero
	start, end := window(m.cursor, len(m.products), m.height-6)
	for i, p := range m.products {
		value = value.Add(p.PurchasePrice.Mul(decimal.NewFromInt(p.Stock)))
		if i < start || i >= end {
			continue
		}
		line := fmt.Sprintf("  %-10s %-24s %-10s %12s %12s %8d %-6s",
			clip(p.SKU, 10), clip(p.Name, 24), clip(p.Category, 10), money(p.PurchasePrice), money(p.SalePrice), p.Stock, p.Unit)
		switch {
		case i == m.cursor:
			b.WriteString(selectedStyle.Render("> " + line[2:]))
		case p.Stock <= 0:
			b.WriteString(dimStyle.Render(line))
		default:
			b.WriteString(line)
		}
		b.WriteString("\n")
	}
	b.WriteString(fmt.Sprintf("\n  %d products, stock at cost %s", len(m.products), money(value)))
	return b.String()
}
