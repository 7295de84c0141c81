package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/simonvc/minibooks/internal/books"
	"github.com/simonvc/minibooks/internal/ledger"
	"github.com/simonvc/minibooks/internal/report"
)

var printer = message.NewPrinter(language.English)

// money renders d with thousands separators and two decimals, negatives in
// parentheses.
func money(d decimal.Decimal) string {
	fixed := ledger.Round(d).Abs().StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")
	n, err := decimal.NewFromString(whole)
	var s string
	if err == nil && n.IsInteger() && n.LessThan(decimal.New(1, 18)) {
		s = printer.Sprintf("%d", n.IntPart()) + "." + frac
	} else {
		s = fixed
	}
	if d.IsNegative() && !ledger.Round(d).IsZero() {
		return "(" + s + ")"
	}
	return s
}

func center(s string, width int) string {
	if len(s) >= width {
		return s
	}
	pad := (width - len(s)) / 2
	return strings.Repeat(" ", pad) + s
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-2] + ".."
}

func date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(ledger.DateLayout)
}

// parseDate reads a --date flag, defaulting to today.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return ledger.DateOf(time.Now()), nil
	}
	return ledger.ParseDate(s)
}

// period flags shared by the report commands
var (
	flagFrom    string
	flagTo      string
	flagPending bool
)

func reportQuery() (books.ReportQuery, error) {
	var rq books.ReportQuery
	var err error
	if flagFrom != "" {
		if rq.Period.From, err = ledger.ParseDate(flagFrom); err != nil {
			return rq, err
		}
	}
	if flagTo != "" {
		if rq.Period.To, err = ledger.ParseDate(flagTo); err != nil {
			return rq, err
		}
	}
	rq.IncludePending = flagPending
	return rq, nil
}

func periodLabel(p report.Period) string {
	switch {
	case p.From.IsZero() && p.To.IsZero():
		return "All dates"
	case p.From.IsZero():
		return "As of " + date(p.To)
	case p.To.IsZero():
		return "From " + date(p.From)
	}
	return fmt.Sprintf("%s to %s", date(p.From), date(p.To))
}
