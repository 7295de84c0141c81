package ledger

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func entry(lines ...Line) *JournalEntry {
	return &JournalEntry{
		ID:          "je-1",
		Date:        time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Description: "test entry",
		Lines:       lines,
	}
}

func TestJournalEntryValidate(t *testing.T) {
	tests := []struct {
		name    string
		entry   *JournalEntry
		wantErr error
	}{
		{
			name:  "balanced",
			entry: entry(DebitLine("101", d("100")), CreditLine("401", d("100"))),
		},
		{
			name:  "balanced within half a cent",
			entry: entry(DebitLine("101", d("10.001")), CreditLine("401", d("10.00"))),
		},
		{
			name:    "unbalanced",
			entry:   entry(DebitLine("101", d("100")), CreditLine("401", d("99"))),
			wantErr: ErrUnbalancedEntry,
		},
		{
			name:    "single line",
			entry:   entry(DebitLine("101", d("100"))),
			wantErr: ErrTooFewLines,
		},
		{
			name:    "both sides on one line",
			entry:   entry(Line{AccountID: "101", Debit: d("5"), Credit: d("5")}, CreditLine("401", d("0"))),
			wantErr: ErrInvalidLine,
		},
		{
			name:    "negative amount",
			entry:   entry(DebitLine("101", d("-5")), CreditLine("401", d("-5"))),
			wantErr: ErrInvalidLine,
		},
		{
			name:    "missing account",
			entry:   entry(DebitLine("", d("5")), CreditLine("401", d("5"))),
			wantErr: ErrInvalidLine,
		},
		{
			name:    "zero totals after rounding",
			entry:   entry(DebitLine("101", d("0.001")), CreditLine("401", d("0.001"))),
			wantErr: ErrZeroEntry,
		},
		{
			name: "quantity without product",
			entry: entry(
				Line{AccountID: "103", Debit: d("5"), Credit: decimal.Zero, Quantity: 1},
				CreditLine("101", d("5")),
			),
			wantErr: ErrInvalidLine,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.entry.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, ErrValidation, Kind(err))
		})
	}
}

func TestJournalEntryValidateMissingDescription(t *testing.T) {
	e := entry(DebitLine("101", d("1")), CreditLine("401", d("1")))
	e.Description = "  "
	assert.ErrorIs(t, e.Validate(), ErrEmptyDescription)

	e.Description = "ok"
	e.Date = time.Time{}
	assert.ErrorIs(t, e.Validate(), ErrMissingField)
}

func TestUnbalancedErrorReportsDifference(t *testing.T) {
	err := entry(DebitLine("101", d("100")), CreditLine("401", d("99"))).Validate()

	var ue *UnbalancedError
	require.True(t, errors.As(err, &ue))
	assert.True(t, ue.Difference().Equal(d("1")))
	assert.Contains(t, err.Error(), "difference 1.00")
}

func TestPosted(t *testing.T) {
	e := entry()
	e.Status, e.Lifecycle = PendingApproval, Active
	assert.False(t, e.Posted())

	e.Status = Approved
	assert.True(t, e.Posted())

	e.Lifecycle = Deleted
	assert.False(t, e.Posted())
}

func TestKind(t *testing.T) {
	tests := []struct {
		err  error
		kind error
	}{
		{ErrAccountNotFound, ErrNotFound},
		{ErrAlreadyApproved, ErrConflict},
		{ErrStaleVersion, ErrConflict},
		{ErrUnknownLedgerLine, ErrDataIntegrity},
		{&InsufficientStockError{ProductName: "Widget", Available: 1}, ErrValidation},
		{errors.New("plain"), nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.kind, Kind(tt.err), tt.err.Error())
	}
}

func TestInsufficientStockMessage(t *testing.T) {
	err := &InsufficientStockError{ProductID: "p1", ProductName: "Widget", Available: 3, Requested: 5}
	assert.Equal(t, "Insufficient stock for Widget. Available: 3", err.Error())
	assert.ErrorIs(t, err, ErrInsufficientStock)
}
