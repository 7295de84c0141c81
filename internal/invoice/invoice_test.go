package invoice

import (
	"testing"

	"github.com/simonvc/minibooks/internal/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitials(t *testing.T) {
	tests := map[string]string{
		"Acme Corp":    "ACM",
		"a.b-c d":      "ABC",
		"Jo":           "JOX",
		"":             "XXX",
		"7-Eleven":     "7EL",
		"Łódź Traders": "DTR",
	}
	for name, want := range tests {
		assert.Equal(t, want, Initials(name), name)
	}
}

func TestStem(t *testing.T) {
	stem, err := Stem(ledger.RecordSale, "Acme")
	require.NoError(t, err)
	assert.Equal(t, "INV-ACM-", stem)

	stem, err = Stem(ledger.RecordPurchase, "Acme")
	require.NoError(t, err)
	assert.Equal(t, "PINV-ACM-", stem)

	_, err = Stem(ledger.RecordExpense, "Acme")
	assert.ErrorIs(t, err, ledger.ErrInvalidRecordType)
}

func TestNext(t *testing.T) {
	assert.Equal(t, "INV-ACM-0001", Next("INV-ACM-", nil))

	existing := []string{"INV-ACM-0001", "INV-ACM-0007", "INV-ACM-bad", "INV-ACX-0042", "INV-ACM-0003"}
	assert.Equal(t, "INV-ACM-0008", Next("INV-ACM-", existing))

	assert.Equal(t, "INV-ACM-10000", Next("INV-ACM-", []string{"INV-ACM-9999"}))
}

func TestNamesSharingInitialsShareSequence(t *testing.T) {
	corp, err := Stem(ledger.RecordSale, "Acme Corp")
	require.NoError(t, err)
	ltd, err := Stem(ledger.RecordSale, "Acme Ltd")
	require.NoError(t, err)
	require.Equal(t, corp, ltd)

	issued := []string{Next(corp, nil)}
	assert.Equal(t, "INV-ACM-0002", Next(ltd, issued))

	blank, err := Stem(ledger.RecordPurchase, "")
	require.NoError(t, err)
	assert.Equal(t, "PINV-XXX-0001", Next(blank, nil))
}
