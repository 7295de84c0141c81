package books

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/simonvc/minibooks/internal/auth"
	"github.com/simonvc/minibooks/internal/ledger"
	"github.com/simonvc/minibooks/internal/report"
	"github.com/simonvc/minibooks/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const admin = "admin"

var (
	ctx     = context.Background()
	testDay = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newTestService(t *testing.T) (*Service, *store.Store) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "books.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	seq := 0
	svc := New(st, zerolog.Nop(),
		WithClock(func() time.Time { return testDay.Add(9 * time.Hour) }),
		WithIDs(func() string { seq++; return fmt.Sprintf("id-%03d", seq) }),
	)
	return svc, st
}

type fixture struct {
	customer *ledger.Customer
	supplier *ledger.Supplier
	product  *ledger.Product
}

// stocked creates a customer, a supplier and product P1 (cost 10, price 20)
// with 5 units bought on credit.
func stocked(t *testing.T, svc *Service) fixture {
	t.Helper()
	c, err := svc.CreateCustomer(ctx, admin, ContactInput{Name: "Acme Corp"})
	require.NoError(t, err)
	s, err := svc.CreateSupplier(ctx, admin, ContactInput{Name: "Widget Works"})
	require.NoError(t, err)
	p, err := svc.CreateProduct(ctx, admin, ProductInput{Name: "Widget", PurchasePrice: d("10"), SalePrice: d("20")})
	require.NoError(t, err)

	_, err = svc.RecordPurchase(ctx, admin, TradeDraft{
		CounterpartyID: s.ID,
		Date:           testDay,
		Items:          []ledger.Item{{ProductID: p.ID, Quantity: 5, Price: d("10")}},
		PaymentMethod:  ledger.PaymentCredit,
	})
	require.NoError(t, err)
	return fixture{customer: c, supplier: s, product: p}
}

func stock(t *testing.T, svc *Service, id string) int64 {
	t.Helper()
	p, err := svc.GetProduct(ctx, id)
	require.NoError(t, err)
	return p.Stock
}

func TestRecordSaleEndToEnd(t *testing.T) {
	svc, _ := newTestService(t)
	f := stocked(t, svc)

	sale, err := svc.RecordSale(ctx, admin, TradeDraft{
		CounterpartyID: f.customer.ID,
		Date:           testDay,
		Items:          []ledger.Item{{ProductID: f.product.ID, Quantity: 2, Price: d("20")}},
		PaymentMethod:  ledger.PaymentCash,
	})
	require.NoError(t, err)

	assert.Equal(t, "INV-ACM-0001", sale.InvoiceNumber)
	assert.True(t, sale.Total.Equal(d("40")))
	assert.Equal(t, int64(3), stock(t, svc, f.product.ID))

	entry, err := svc.GetEntry(ctx, sale.JournalEntryID)
	require.NoError(t, err)
	assert.Equal(t, ledger.Approved, entry.Status)
	assert.Equal(t, ledger.RecordSale, entry.SourceType)
	debits, credits := entry.Totals()
	assert.True(t, debits.Equal(d("60")))
	assert.True(t, credits.Equal(d("60")))

	pl, err := svc.ProfitAndLoss(ctx, admin, ReportQuery{})
	require.NoError(t, err)
	assert.True(t, pl.Revenue.Equal(d("40")))
	assert.True(t, pl.COGS.Equal(d("20")))
	assert.True(t, pl.GrossProfit.Equal(d("20")))

	bs, err := svc.BalanceSheet(ctx, admin, ReportQuery{})
	require.NoError(t, err)
	assert.True(t, bs.Balanced)

	next, err := svc.NextInvoiceNumber(ctx, ledger.RecordSale, "Acme Corp")
	require.NoError(t, err)
	assert.Equal(t, "INV-ACM-0002", next)
}

func TestRecordSaleInsufficientStockWritesNothing(t *testing.T) {
	svc, st := newTestService(t)
	f := stocked(t, svc)

	before, err := st.ListEntries(ctx, store.EntryFilter{})
	require.NoError(t, err)

	_, err = svc.RecordSale(ctx, admin, TradeDraft{
		CounterpartyID: f.customer.ID,
		Date:           testDay,
		Items:          []ledger.Item{{ProductID: f.product.ID, Quantity: 6, Price: d("20")}},
		PaymentMethod:  ledger.PaymentCash,
	})
	var se *ledger.InsufficientStockError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "Insufficient stock for Widget. Available: 5", err.Error())

	after, err := st.ListEntries(ctx, store.EntryFilter{})
	require.NoError(t, err)
	assert.Len(t, after, len(before))
	assert.Equal(t, int64(5), stock(t, svc, f.product.ID))
	sales, err := svc.ListSales(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, sales)
}

func TestRecordSaleDuplicateInvoice(t *testing.T) {
	svc, _ := newTestService(t)
	f := stocked(t, svc)

	draft := TradeDraft{
		InvoiceNumber:  "INV-ACM-0042",
		CounterpartyID: f.customer.ID,
		Date:           testDay,
		Items:          []ledger.Item{{ProductID: f.product.ID, Quantity: 1, Price: d("20")}},
		PaymentMethod:  ledger.PaymentCredit,
	}
	_, err := svc.RecordSale(ctx, admin, draft)
	require.NoError(t, err)

	_, err = svc.RecordSale(ctx, admin, draft)
	assert.ErrorIs(t, err, ledger.ErrDuplicateInvoice)
	assert.Equal(t, int64(4), stock(t, svc, f.product.ID))
}

func TestRecordExpense(t *testing.T) {
	svc, _ := newTestService(t)

	rent, err := svc.RecordExpense(ctx, admin, ExpenseDraft{Date: testDay, Category: "rent", Amount: d("1200")})
	require.NoError(t, err)
	entry, err := svc.GetEntry(ctx, rent.JournalEntryID)
	require.NoError(t, err)
	assert.Equal(t, "502", entry.Lines[0].AccountID)

	misc, err := svc.RecordExpense(ctx, admin, ExpenseDraft{Date: testDay, Category: "Stationery", Amount: d("15")})
	require.NoError(t, err)
	entry, err = svc.GetEntry(ctx, misc.JournalEntryID)
	require.NoError(t, err)
	assert.Equal(t, "503", entry.Lines[0].AccountID)

	_, err = svc.RecordExpense(ctx, admin, ExpenseDraft{Date: testDay, Category: "rent", Amount: d("0")})
	assert.ErrorIs(t, err, ledger.ErrInvalidAmount)
}

func TestUnresolvedExpenseAccount(t *testing.T) {
	svc, st := newTestService(t)
	require.NoError(t, st.PutSetting(ctx, ledger.RoleDefaultExpense.SettingKey(), ""))

	_, err := svc.RecordExpense(ctx, admin, ExpenseDraft{Date: testDay, Category: "Stationery", Amount: d("15")})
	assert.ErrorIs(t, err, ledger.ErrUnresolvedExpenseAccount)
}

func TestPostAndApproveEntry(t *testing.T) {
	svc, _ := newTestService(t)
	f := stocked(t, svc)

	// write off one unit of stock
	e, err := svc.PostEntry(ctx, admin, EntryDraft{
		Date:        testDay,
		Description: "Damaged widget",
		Lines: []ledger.Line{
			ledger.DebitLine("503", d("10")),
			{AccountID: "103", Debit: decimal.Zero, Credit: d("10"), ProductID: f.product.ID, Quantity: 1},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, ledger.PendingApproval, e.Status)
	assert.Equal(t, int64(5), stock(t, svc, f.product.ID))

	tb, err := svc.TrialBalance(ctx, admin, ReportQuery{})
	require.NoError(t, err)
	preview, err := svc.TrialBalance(ctx, admin, ReportQuery{IncludePending: true})
	require.NoError(t, err)
	assert.True(t, preview.TotalDebit.Sub(tb.TotalDebit).Equal(d("10")))

	approved, err := svc.ApproveEntry(ctx, admin, e.ID)
	require.NoError(t, err)
	assert.Equal(t, ledger.Approved, approved.Status)
	assert.Equal(t, int64(4), stock(t, svc, f.product.ID))

	_, err = svc.ApproveEntry(ctx, admin, e.ID)
	assert.ErrorIs(t, err, ledger.ErrAlreadyApproved)
	assert.Equal(t, int64(4), stock(t, svc, f.product.ID))

	_, err = svc.ApproveEntry(ctx, admin, "missing")
	assert.ErrorIs(t, err, ledger.ErrEntryNotFound)
}

func TestApproveEntryRejectsNegativeStock(t *testing.T) {
	svc, _ := newTestService(t)
	f := stocked(t, svc)

	e, err := svc.PostEntry(ctx, admin, EntryDraft{
		Date:        testDay,
		Description: "Write off too much",
		Lines: []ledger.Line{
			ledger.DebitLine("503", d("60")),
			{AccountID: "103", Debit: decimal.Zero, Credit: d("60"), ProductID: f.product.ID, Quantity: 6},
		},
	})
	require.NoError(t, err)

	_, err = svc.ApproveEntry(ctx, admin, e.ID)
	assert.ErrorIs(t, err, ledger.ErrInsufficientStock)

	got, err := svc.GetEntry(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, ledger.PendingApproval, got.Status)
	assert.Equal(t, int64(5), stock(t, svc, f.product.ID))
}

func TestPostEntryValidation(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.PostEntry(ctx, admin, EntryDraft{
		Date:        testDay,
		Description: "Unbalanced",
		Lines:       []ledger.Line{ledger.DebitLine("101", d("100")), ledger.CreditLine("401", d("99"))},
	})
	var ue *ledger.UnbalancedError
	require.True(t, errors.As(err, &ue))
	assert.True(t, ue.Difference().Equal(d("1")))

	_, err = svc.PostEntry(ctx, admin, EntryDraft{
		Date:        testDay,
		Description: "Unknown account",
		Lines:       []ledger.Line{ledger.DebitLine("999", d("5")), ledger.CreditLine("401", d("5"))},
	})
	assert.ErrorIs(t, err, ledger.ErrAccountNotFound)

	entries, err := svc.ListEntries(ctx, store.EntryFilter{})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDeletionWorkflow(t *testing.T) {
	svc, _ := newTestService(t)
	c, err := svc.CreateCustomer(ctx, admin, ContactInput{Name: "Acme"})
	require.NoError(t, err)

	req, err := svc.RequestDelete(ctx, admin, ledger.RecordCustomer, c.ID)
	require.NoError(t, err)
	assert.Equal(t, ledger.RequestPending, req.Status)

	_, err = svc.RequestDelete(ctx, admin, ledger.RecordCustomer, c.ID)
	assert.ErrorIs(t, err, ledger.ErrDeletionPending)

	_, err = svc.RejectRequest(ctx, admin, req.ID)
	require.NoError(t, err)
	got, err := svc.GetCustomer(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, ledger.Active, got.Lifecycle)

	_, err = svc.ApproveRequest(ctx, admin, req.ID)
	assert.ErrorIs(t, err, ledger.ErrRequestClosed)

	req2, err := svc.RequestDelete(ctx, admin, ledger.RecordCustomer, c.ID)
	require.NoError(t, err)
	closed, err := svc.ApproveRequest(ctx, admin, req2.ID)
	require.NoError(t, err)
	assert.Equal(t, ledger.RequestApproved, closed.Status)

	got, err = svc.GetCustomer(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, ledger.Deleted, got.Lifecycle)

	_, err = svc.RequestDelete(ctx, admin, ledger.RecordCustomer, c.ID)
	assert.ErrorIs(t, err, ledger.ErrRecordNotActive)
	_, err = svc.RequestDelete(ctx, admin, ledger.RecordCustomer, "missing")
	assert.ErrorIs(t, err, ledger.ErrNotFound)

	list, err := svc.ListCustomers(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, list)

	acts, err := svc.Activity(ctx, admin, 0)
	require.NoError(t, err)
	assert.Equal(t, "Approved Deletion", acts[0].Action)
}

func TestDeletingSaleKeepsLedger(t *testing.T) {
	svc, _ := newTestService(t)
	f := stocked(t, svc)

	sale, err := svc.RecordSale(ctx, admin, TradeDraft{
		CounterpartyID: f.customer.ID,
		Date:           testDay,
		Items:          []ledger.Item{{ProductID: f.product.ID, Quantity: 2, Price: d("20")}},
		PaymentMethod:  ledger.PaymentCash,
	})
	require.NoError(t, err)
	before, err := svc.TrialBalance(ctx, admin, ReportQuery{})
	require.NoError(t, err)

	req, err := svc.RequestDelete(ctx, admin, ledger.RecordSale, sale.ID)
	require.NoError(t, err)
	_, err = svc.ApproveRequest(ctx, admin, req.ID)
	require.NoError(t, err)

	after, err := svc.TrialBalance(ctx, admin, ReportQuery{})
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestDeletingJournalEntryDropsItFromReports(t *testing.T) {
	svc, _ := newTestService(t)
	e, err := svc.PostEntry(ctx, admin, EntryDraft{
		Date:        testDay,
		Description: "Owner investment",
		Lines:       []ledger.Line{ledger.DebitLine("101", d("500")), ledger.CreditLine("301", d("500"))},
	})
	require.NoError(t, err)
	_, err = svc.ApproveEntry(ctx, admin, e.ID)
	require.NoError(t, err)

	req, err := svc.RequestDelete(ctx, admin, ledger.RecordJournalEntry, e.ID)
	require.NoError(t, err)
	_, err = svc.ApproveRequest(ctx, admin, req.ID)
	require.NoError(t, err)

	tb, err := svc.TrialBalance(ctx, admin, ReportQuery{})
	require.NoError(t, err)
	assert.True(t, tb.TotalDebit.IsZero())
}

func TestSourcePostedEntryCannotBeDeletedDirectly(t *testing.T) {
	svc, _ := newTestService(t)
	f := stocked(t, svc)

	sale, err := svc.RecordSale(ctx, admin, TradeDraft{
		CounterpartyID: f.customer.ID,
		Date:           testDay,
		Items:          []ledger.Item{{ProductID: f.product.ID, Quantity: 1, Price: d("20")}},
		PaymentMethod:  ledger.PaymentCash,
	})
	require.NoError(t, err)

	_, err = svc.RequestDelete(ctx, admin, ledger.RecordJournalEntry, sale.JournalEntryID)
	assert.ErrorIs(t, err, ledger.ErrPostedBySource)
	assert.ErrorIs(t, err, ledger.ErrConflict)

	entry, err := svc.GetEntry(ctx, sale.JournalEntryID)
	require.NoError(t, err)
	assert.Equal(t, ledger.Active, entry.Lifecycle)

	pending, err := svc.ListRequests(ctx, ledger.RequestPending)
	require.NoError(t, err)
	assert.Empty(t, pending)

	_, err = svc.RequestDelete(ctx, admin, ledger.RecordSale, sale.ID)
	assert.NoError(t, err)
}

func TestDashboard(t *testing.T) {
	svc, _ := newTestService(t)
	f := stocked(t, svc)

	_, err := svc.RecordSale(ctx, admin, TradeDraft{
		CounterpartyID: f.customer.ID,
		Date:           testDay,
		Items:          []ledger.Item{{ProductID: f.product.ID, Quantity: 2, Price: d("20")}},
		PaymentMethod:  ledger.PaymentCash,
	})
	require.NoError(t, err)
	_, err = svc.RecordExpense(ctx, admin, ExpenseDraft{Date: testDay, Category: "Rent", Amount: d("100")})
	require.NoError(t, err)

	sum, err := svc.Dashboard(ctx, admin, SummaryQuery{})
	require.NoError(t, err)
	assert.True(t, sum.TotalSales.Equal(d("40")), sum.TotalSales.String())
	assert.True(t, sum.TotalPurchases.Equal(d("50")), sum.TotalPurchases.String())
	assert.True(t, sum.TotalExpenses.Equal(d("100")), sum.TotalExpenses.String())
	assert.True(t, sum.GrossProfit.Equal(d("20")), sum.GrossProfit.String())
	assert.True(t, sum.NetProfit.Equal(d("-80")), sum.NetProfit.String())
	assert.Equal(t, 1, sum.ProductCount)
	assert.Equal(t, int64(DefaultLowStockThreshold), sum.LowStockThreshold)
	require.Len(t, sum.LowStock, 1)
	assert.Equal(t, int64(3), sum.LowStock[0].Stock)
	require.Len(t, sum.Monthly, 1)
	assert.Equal(t, "2024-03", sum.Monthly[0].Month)

	two := int64(2)
	sum, err = svc.Dashboard(ctx, admin, SummaryQuery{LowStockThreshold: &two})
	require.NoError(t, err)
	assert.Empty(t, sum.LowStock)

	negative := int64(-1)
	_, err = svc.Dashboard(ctx, admin, SummaryQuery{LowStockThreshold: &negative})
	assert.ErrorIs(t, err, ledger.ErrValidation)

	_, err = svc.Dashboard(ctx, "stranger", SummaryQuery{})
	assert.ErrorIs(t, err, ledger.ErrForbidden)
}

func TestUpdateCustomerRecordsEdits(t *testing.T) {
	svc, _ := newTestService(t)
	c, err := svc.CreateCustomer(ctx, admin, ContactInput{Name: "Acme", Email: "old@acme.test"})
	require.NoError(t, err)

	updated, err := svc.UpdateCustomer(ctx, admin, c.ID, c.Version, ContactInput{Name: "Acme", Email: "new@acme.test"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated.Version)

	_, err = svc.UpdateCustomer(ctx, admin, c.ID, c.Version, ContactInput{Name: "Acme Ltd"})
	assert.ErrorIs(t, err, ledger.ErrStaleVersion)

	history, err := svc.History(ctx, ledger.RecordCustomer, c.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "email", history[0].Field)
	assert.Equal(t, "old@acme.test", history[0].OldValue)
	assert.Equal(t, "new@acme.test", history[0].NewValue)
}

func TestUpdateProductLeavesStock(t *testing.T) {
	svc, _ := newTestService(t)
	f := stocked(t, svc)

	p, err := svc.GetProduct(ctx, f.product.ID)
	require.NoError(t, err)
	updated, err := svc.UpdateProduct(ctx, admin, p.ID, p.Version, ProductInput{
		Name: "Widget", PurchasePrice: d("10"), SalePrice: d("25"),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), updated.Stock)
	assert.True(t, updated.SalePrice.Equal(d("25")))
}

func TestUpdateExpense(t *testing.T) {
	svc, _ := newTestService(t)
	e, err := svc.RecordExpense(ctx, admin, ExpenseDraft{Date: testDay, Category: "Rent", Amount: d("1200")})
	require.NoError(t, err)

	desc := "March rent"
	updated, err := svc.UpdateExpense(ctx, admin, e.ID, e.Version, ExpenseUpdate{Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, desc, updated.Description)

	amount := d("1300")
	_, err = svc.UpdateExpense(ctx, admin, e.ID, updated.Version, ExpenseUpdate{Amount: &amount})
	assert.ErrorIs(t, err, ledger.ErrImmutableField)

	same := d("1200.00")
	updated, err = svc.UpdateExpense(ctx, admin, e.ID, updated.Version, ExpenseUpdate{Amount: &same, Description: &desc})
	require.NoError(t, err)

	sameDay := testDay.Add(15 * time.Hour)
	updated, err = svc.UpdateExpense(ctx, admin, e.ID, updated.Version, ExpenseUpdate{Date: &sameDay})
	require.NoError(t, err)
	assert.True(t, updated.Date.Equal(testDay))
}

func TestUpdateExpenseKeepsEntryDate(t *testing.T) {
	svc, _ := newTestService(t)
	e, err := svc.RecordExpense(ctx, admin, ExpenseDraft{Date: testDay, Category: "Rent", Amount: d("1200")})
	require.NoError(t, err)

	moved := testDay.AddDate(0, 1, 0)
	_, err = svc.UpdateExpense(ctx, admin, e.ID, e.Version, ExpenseUpdate{Date: &moved})
	assert.ErrorIs(t, err, ledger.ErrImmutableField)

	got, err := svc.GetExpense(ctx, e.ID)
	require.NoError(t, err)
	assert.True(t, got.Date.Equal(testDay))
	assert.Equal(t, e.Version, got.Version)

	entry, err := svc.GetEntry(ctx, e.JournalEntryID)
	require.NoError(t, err)
	assert.True(t, entry.Date.Equal(got.Date))
}

func TestPermissions(t *testing.T) {
	svc, _ := newTestService(t)
	clerk, err := svc.CreateUser(ctx, admin, UserInput{ID: "clerk", Name: "Clerk", Role: auth.RoleSalesStaff, Active: true})
	require.NoError(t, err)

	_, err = svc.RecordExpense(ctx, clerk.ID, ExpenseDraft{Date: testDay, Category: "Rent", Amount: d("1")})
	assert.ErrorIs(t, err, ledger.ErrForbidden)

	_, err = svc.PostEntry(ctx, "stranger", EntryDraft{})
	assert.ErrorIs(t, err, ledger.ErrForbidden)

	_, err = svc.UpdateUser(ctx, admin, clerk.ID, UserInput{Name: "Clerk", Role: auth.RoleSalesStaff, Active: false})
	require.NoError(t, err)
	_, err = svc.CreateCustomer(ctx, clerk.ID, ContactInput{Name: "Acme"})
	assert.ErrorIs(t, err, ledger.ErrForbidden)
}

func TestSetAccountRole(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.CreateAccount(ctx, admin, ledger.Account{ID: "504", Name: "Office Supplies", Type: ledger.ExpenseAccount})
	require.NoError(t, err)
	require.NoError(t, svc.SetAccountRole(ctx, admin, ledger.RoleDefaultExpense, "504"))

	err = svc.SetAccountRole(ctx, admin, ledger.RoleDefaultExpense, "101")
	assert.ErrorIs(t, err, ledger.ErrInvalidAccountType)

	e, err := svc.RecordExpense(ctx, admin, ExpenseDraft{Date: testDay, Category: "Stationery", Amount: d("15")})
	require.NoError(t, err)
	entry, err := svc.GetEntry(ctx, e.JournalEntryID)
	require.NoError(t, err)
	assert.Equal(t, "504", entry.Lines[0].AccountID)

	_, err = svc.CreateAccount(ctx, admin, ledger.Account{ID: "504", Name: "Again", Type: ledger.ExpenseAccount})
	assert.ErrorIs(t, err, ledger.ErrConflict)
}

func TestReportsByPeriod(t *testing.T) {
	svc, _ := newTestService(t)
	for i, amount := range []string{"100", "200", "300"} {
		_, err := svc.RecordExpense(ctx, admin, ExpenseDraft{
			Date: testDay.AddDate(0, i, 0), Category: "Rent", Amount: d(amount),
		})
		require.NoError(t, err)
	}

	april := report.Period{From: testDay.AddDate(0, 1, 0), To: testDay.AddDate(0, 2, -1)}
	pl, err := svc.ProfitAndLoss(ctx, admin, ReportQuery{Period: april})
	require.NoError(t, err)
	assert.True(t, pl.OperatingExpenses.Equal(d("200")))

	// the balance sheet covers everything up to the period end
	bs, err := svc.BalanceSheet(ctx, admin, ReportQuery{Period: april})
	require.NoError(t, err)
	assert.True(t, bs.Balanced)
	assert.True(t, bs.TotalAssets.Equal(d("-300")), bs.TotalAssets.String())

	ledgerRep, err := svc.AccountLedger(ctx, admin, "502", ReportQuery{})
	require.NoError(t, err)
	assert.Len(t, ledgerRep.Rows, 3)
	assert.True(t, ledgerRep.Balance.Equal(d("600")))
}

func TestCheckIntegrity(t *testing.T) {
	svc, _ := newTestService(t)
	stocked(t, svc)

	rep, err := svc.CheckIntegrity(ctx, admin)
	require.NoError(t, err)
	assert.True(t, rep.OK())
}

func TestBackupRoundTrip(t *testing.T) {
	svc, _ := newTestService(t)
	f := stocked(t, svc)

	snap, err := svc.Export(ctx, admin)
	require.NoError(t, err)

	fresh, _ := newTestService(t)
	require.NoError(t, fresh.Restore(ctx, admin, snap))

	assert.Equal(t, int64(5), stock(t, fresh, f.product.ID))
	tb, err := fresh.TrialBalance(ctx, admin, ReportQuery{})
	require.NoError(t, err)
	assert.True(t, tb.TotalDebit.Equal(d("50")))
}
