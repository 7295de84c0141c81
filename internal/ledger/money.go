package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Amounts are compared at cent precision.
const amountPlaces = 2

var tolerance = decimal.New(5, -3)

// Round rounds an amount to cents.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(amountPlaces)
}

// AmountsEqual compares two amounts rounded to cents, within half a cent.
func AmountsEqual(a, b decimal.Decimal) bool {
	return Round(a).Sub(Round(b)).Abs().LessThan(tolerance)
}

// ParseAmount parses a non-negative decimal amount such as "10.50".
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: %s is negative", ErrInvalidAmount, s)
	}
	return d, nil
}

// FormatAmount renders an amount with two decimals.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(amountPlaces)
}

// DateLayout is the calendar-date format used for entry and record dates.
const DateLayout = "2006-01-02"

// ParseDate parses a calendar date in DateLayout.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q must be YYYY-MM-DD", ErrMissingField, s)
	}
	return t, nil
}

// DateOf truncates t to its calendar date in UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
