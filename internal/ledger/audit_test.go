package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiff(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	before := Customer{ID: "c1", Name: "Acme", Email: "old@acme.test", Version: 1, UpdatedAt: at.Add(-time.Hour)}
	after := before
	after.Email = "new@acme.test"
	after.Phone = "555-0100"
	after.Version = 2
	after.UpdatedAt = at

	logs, err := Diff(RecordCustomer, "c1", "u1", at, before, after)
	require.NoError(t, err)
	require.Len(t, logs, 2)

	assert.Equal(t, "email", logs[0].Field)
	assert.Equal(t, "old@acme.test", logs[0].OldValue)
	assert.Equal(t, "new@acme.test", logs[0].NewValue)
	assert.Equal(t, "phone", logs[1].Field)
	assert.Equal(t, "", logs[1].OldValue)
	assert.Equal(t, RecordCustomer, logs[1].RecordType)
	assert.Equal(t, "u1", logs[1].UserID)
	assert.Equal(t, at, logs[1].Timestamp)
}

func TestDiffNoChanges(t *testing.T) {
	p := Product{ID: "p1", Name: "Widget", PurchasePrice: d("10"), SalePrice: d("20")}
	logs, err := Diff(RecordProduct, "p1", "u1", time.Now(), p, p)
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestDiffNumericValues(t *testing.T) {
	before := Product{ID: "p1", Name: "Widget", PurchasePrice: d("10"), SalePrice: d("20")}
	after := before
	after.SalePrice = d("25")

	logs, err := Diff(RecordProduct, "p1", "u1", time.Now(), before, after)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "sale_price", logs[0].Field)
	assert.Equal(t, "20", logs[0].OldValue)
	assert.Equal(t, "25", logs[0].NewValue)
}
