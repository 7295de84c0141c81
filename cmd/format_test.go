package cmd

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/simonvc/minibooks/internal/report"
)

func TestMoney(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "0.00"},
		{"12.5", "12.50"},
		{"1234567.891", "1,234,567.89"},
		{"-2500", "(2,500.00)"},
		{"-0.001", "0.00"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, money(decimal.RequireFromString(tt.in)))
		})
	}
}

func TestParseLine(t *testing.T) {
	l, err := parseLine("101:dr:250.50")
	assert.NoError(t, err)
	assert.Equal(t, "101", l.AccountID)
	assert.Equal(t, "250.5", l.Debit.String())
	assert.True(t, l.Credit.IsZero())

	l, err = parseLine("103:cr:20:p-1:2")
	assert.NoError(t, err)
	assert.Equal(t, "p-1", l.ProductID)
	assert.EqualValues(t, 2, l.Quantity)

	for _, bad := range []string{"101", "101:xx:5", "101:dr:abc", "103:cr:20:p-1:two"} {
		_, err := parseLine(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseItem(t *testing.T) {
	it, err := parseItem("p-1:3:19.99")
	assert.NoError(t, err)
	assert.Equal(t, "p-1", it.ProductID)
	assert.EqualValues(t, 3, it.Quantity)
	assert.Equal(t, "19.99", it.Price.String())

	_, err = parseItem("p-1:x:1")
	assert.Error(t, err)
}

func TestPeriodLabel(t *testing.T) {
	assert.Equal(t, "All dates", periodLabel(report.Period{}))
}
