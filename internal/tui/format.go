package tui

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/simonvc/minibooks/internal/ledger"
)

var printer = message.NewPrinter(language.English)

// money renders d to the cent with grouped thousands, negatives in parentheses.
func money(d decimal.Decimal) string {
	r := ledger.Round(d)
	whole, frac, _ := strings.Cut(r.Abs().StringFixed(2), ".")
	s := whole + "." + frac
	if n := r.Abs().Truncate(0); n.LessThan(decimal.New(1, 18)) {
		s = printer.Sprintf("%d", n.IntPart()) + "." + frac
	}
	if r.IsNegative() {
		return "(" + s + ")"
	}
	return s
}

// blank renders a zero amount as an empty column.
func blank(d decimal.Decimal) string {
	if d.IsZero() {
		return ""
	}
	return money(d)
}

func day(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(ledger.DateLayout)
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-2] + ".."
}

// window returns the visible [start, end) slice for a cursor in a list of n rows.
func window(cursor, n, rows int) (int, int) {
	if rows < 1 {
		rows = 10
	}
	start := 0
	if cursor >= rows {
		start = cursor - rows + 1
	}
	end := start + rows
	if end > n {
		end = n
	}
	return start, end
}

func statusLabel(s ledger.Approval) string {
	if s == ledger.Approved {
		return successStyle.Render("approved")
	}
	return pendingStyle.Render("pending")
}
