// Package invoice generates sequential invoice numbers of the form
// INV-ACM-0001 for sales and PINV-ACM-0001 for purchases.
package invoice

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/simonvc/minibooks/internal/ledger"
)

const (
	SalePrefix     = "INV"
	PurchasePrefix = "PINV"

	initialsLen = 3
	seqDigits   = 4
)

// Prefix returns the invoice prefix for a record type. Only sales and
// purchases carry invoice numbers.
func Prefix(rt ledger.RecordType) (string, error) {
	switch rt {
	case ledger.RecordSale:
		return SalePrefix, nil
	case ledger.RecordPurchase:
		return PurchasePrefix, nil
	case ledger.RecordCustomer, ledger.RecordSupplier, ledger.RecordProduct,
		ledger.RecordExpense, ledger.RecordJournalEntry:
		return "", fmt.Errorf("%w: %s has no invoice numbers", ledger.ErrInvalidRecordType, rt)
	}
	return "", fmt.Errorf("%w: %q", ledger.ErrInvalidRecordType, rt)
}

// Initials takes the first three letters or digits of a counterparty name,
// uppercased and padded with X.
func Initials(name string) string {
	var b strings.Builder
	for _, r := range name {
		if b.Len() == initialsLen {
			break
		}
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	for b.Len() < initialsLen {
		b.WriteByte('X')
	}
	return b.String()
}

// Stem is the part of the number before the sequence, e.g. "INV-ACM-".
func Stem(rt ledger.RecordType, counterparty string) (string, error) {
	prefix, err := Prefix(rt)
	if err != nil {
		return "", err
	}
	return prefix + "-" + Initials(counterparty) + "-", nil
}

// Next returns the number following the highest sequence among existing
// numbers sharing the stem. Numbers that do not parse are ignored.
func Next(stem string, existing []string) string {
	highest := 0
	for _, n := range existing {
		rest, ok := strings.CutPrefix(n, stem)
		if !ok {
			continue
		}
		seq, err := strconv.Atoi(rest)
		if err != nil || seq < 0 {
			continue
		}
		highest = max(highest, seq)
	}
	return fmt.Sprintf("%s%0*d", stem, seqDigits, highest+1)
}
