package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAccountType(t *testing.T) {
	tests := []struct {
		in          string
		want        AccountType
		debitNormal bool
	}{
		{"asset", Asset, true},
		{"Liability", Liability, false},
		{"EQUITY", Equity, false},
		{"revenue", Revenue, false},
		{"expense", ExpenseAccount, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAccountType(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.debitNormal, got.DebitNormal())
		})
	}

	_, err := ParseAccountType("Income")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDefaultChartExpenseAccounts(t *testing.T) {
	var ids []string
	for _, c := range DefaultChart {
		if c.Type == ExpenseAccount {
			ids = append(ids, c.ID)
		}
	}
	assert.Equal(t, []string{"501", "502", "503"}, ids)
	assert.Equal(t, "Debit", NormalBalance(ExpenseAccount))
}
