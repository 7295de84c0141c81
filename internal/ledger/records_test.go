package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeTotals(t *testing.T) {
	items := []Item{
		{ProductID: "p1", Quantity: 2, Price: d("20")},
		{ProductID: "p2", Quantity: 3, Price: d("1.15")},
	}

	totals := ComputeTotals(items, d("10"))
	assert.True(t, totals.Subtotal.Equal(d("43.45")), totals.Subtotal.String())
	assert.True(t, totals.TaxAmount.Equal(d("4.35")), totals.TaxAmount.String())
	assert.True(t, totals.Total.Equal(d("47.80")), totals.Total.String())
}

func TestComputeTotalsNoTax(t *testing.T) {
	totals := ComputeTotals([]Item{{ProductID: "p1", Quantity: 2, Price: d("20")}}, d("0"))
	assert.True(t, totals.TaxAmount.IsZero())
	assert.True(t, totals.Total.Equal(d("40")))
}

func TestSaleValidate(t *testing.T) {
	valid := func() *Sale {
		return &Sale{
			InvoiceNumber: "INV-ACM-0001",
			CustomerID:    "c1",
			Date:          time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			Items:         []Item{{ProductID: "p1", Quantity: 1, Price: d("5")}},
			PaymentMethod: PaymentCash,
		}
	}
	require.NoError(t, valid().Validate())

	s := valid()
	s.Items = nil
	assert.ErrorIs(t, s.Validate(), ErrMissingField)

	s = valid()
	s.Items[0].Quantity = 0
	assert.ErrorIs(t, s.Validate(), ErrInvalidAmount)

	s = valid()
	s.PaymentMethod = "Barter"
	assert.ErrorIs(t, s.Validate(), ErrInvalidPaymentMethod)
}

func TestParsePaymentMethod(t *testing.T) {
	m, err := ParsePaymentMethod("credit")
	require.NoError(t, err)
	assert.Equal(t, PaymentCredit, m)

	_, err = ParsePaymentMethod("cheque")
	assert.Equal(t, ErrValidation, Kind(err))
}

func TestExpenseValidate(t *testing.T) {
	e := &Expense{Category: "Rent", Date: time.Now(), Amount: d("0.001")}
	assert.ErrorIs(t, e.Validate(), ErrInvalidAmount)

	e.Amount = d("1200")
	assert.NoError(t, e.Validate())
}

func TestRecordTypeLabel(t *testing.T) {
	for _, rt := range AllRecordTypes {
		assert.NotEqual(t, string(rt), rt.Label(), "record type %s has no label", rt)
	}
	_, err := ParseRecordType("invoice")
	assert.ErrorIs(t, err, ErrInvalidRecordType)
}
