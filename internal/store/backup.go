package store

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/simonvc/minibooks/internal/auth"
	"github.com/simonvc/minibooks/internal/ledger"
)

// SnapshotVersion is bumped whenever the snapshot layout changes.
const SnapshotVersion = 1

// Snapshot is a full export of every collection as plain JSON.
type Snapshot struct {
	Version          int                      `json:"version"`
	CreatedAt        time.Time                `json:"created_at"`
	Accounts         []ledger.Account         `json:"accounts"`
	Users            []auth.User              `json:"users"`
	Settings         map[string]string        `json:"settings"`
	Customers        []ledger.Customer        `json:"customers"`
	Suppliers        []ledger.Supplier        `json:"suppliers"`
	Products         []ledger.Product         `json:"products"`
	Sales            []ledger.Sale            `json:"sales"`
	Purchases        []ledger.Purchase        `json:"purchases"`
	Expenses         []ledger.Expense         `json:"expenses"`
	JournalEntries   []ledger.JournalEntry    `json:"journal_entries"`
	ApprovalRequests []ledger.ApprovalRequest `json:"approval_requests"`
	ActivityLog      []ledger.ActivityLog     `json:"activity_log"`
	EditLog          []ledger.EditLog         `json:"edit_log"`
}

// Export reads every collection, deleted records included, from one
// consistent snapshot.
func (s *Store) Export(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{Version: SnapshotVersion, CreatedAt: time.Now().UTC()}
	err := s.ReadTx(ctx, func(q *Queries) error {
		var err error
		if snap.Accounts, err = q.ListAccounts(ctx); err != nil {
			return err
		}
		if snap.Users, err = q.ListUsers(ctx); err != nil {
			return err
		}
		if snap.Settings, err = q.ListSettings(ctx); err != nil {
			return err
		}
		if snap.Customers, err = q.ListCustomers(ctx, true); err != nil {
			return err
		}
		if snap.Suppliers, err = q.ListSuppliers(ctx, true); err != nil {
			return err
		}
		if snap.Products, err = q.ListProducts(ctx, true); err != nil {
			return err
		}
		if snap.Sales, err = q.ListSales(ctx, true); err != nil {
			return err
		}
		if snap.Purchases, err = q.ListPurchases(ctx, true); err != nil {
			return err
		}
		if snap.Expenses, err = q.ListExpenses(ctx, true); err != nil {
			return err
		}
		if snap.JournalEntries, err = q.ListEntries(ctx, EntryFilter{IncludeDeleted: true}); err != nil {
			return err
		}
		if snap.ApprovalRequests, err = q.ListRequests(ctx, ""); err != nil {
			return err
		}
		if snap.ActivityLog, err = q.ListActivity(ctx, 0); err != nil {
			return err
		}
		slices.Reverse(snap.ActivityLog)
		if snap.EditLog, err = q.ListEdits(ctx, "", ""); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// Restore replaces the contents of every collection with the snapshot in one
// transaction. Journal entries are resealed, so an unbalanced entry in the
// snapshot aborts the whole restore.
func (q *Queries) Restore(ctx context.Context, snap *Snapshot) error {
	if snap.Version != SnapshotVersion {
		return fmt.Errorf("%w: snapshot version %d, expected %d", ledger.ErrValidation, snap.Version, SnapshotVersion)
	}

	wipe := []string{
		`DELETE FROM edit_log`,
		`DELETE FROM activity_log`,
		`DELETE FROM approval_requests`,
		`DELETE FROM sales`,
		`DELETE FROM purchases`,
		`DELETE FROM expenses`,
		`UPDATE journal_entries SET sealed = 0`,
		`DELETE FROM journal_lines`,
		`DELETE FROM journal_entries`,
		`DELETE FROM products`,
		`DELETE FROM customers`,
		`DELETE FROM suppliers`,
		`DELETE FROM settings`,
		`DELETE FROM users`,
		`DELETE FROM accounts`,
	}
	for _, stmt := range wipe {
		if _, err := q.q.ExecContext(ctx, stmt); err != nil {
			return dbError("restore: "+stmt, err)
		}
	}

	for i := range snap.Accounts {
		if err := q.InsertAccount(ctx, &snap.Accounts[i]); err != nil {
			return err
		}
	}
	for i := range snap.Users {
		if err := q.InsertUser(ctx, &snap.Users[i]); err != nil {
			return err
		}
	}
	for k, v := range snap.Settings {
		if err := q.PutSetting(ctx, k, v); err != nil {
			return err
		}
	}
	for i := range snap.Customers {
		if err := q.InsertCustomer(ctx, &snap.Customers[i]); err != nil {
			return err
		}
	}
	for i := range snap.Suppliers {
		if err := q.InsertSupplier(ctx, &snap.Suppliers[i]); err != nil {
			return err
		}
	}
	for i := range snap.Products {
		if err := q.InsertProduct(ctx, &snap.Products[i]); err != nil {
			return err
		}
	}
	for i := range snap.JournalEntries {
		if err := q.InsertEntry(ctx, &snap.JournalEntries[i]); err != nil {
			return err
		}
	}
	for i := range snap.Sales {
		if err := q.InsertSale(ctx, &snap.Sales[i]); err != nil {
			return err
		}
	}
	for i := range snap.Purchases {
		if err := q.InsertPurchase(ctx, &snap.Purchases[i]); err != nil {
			return err
		}
	}
	for i := range snap.Expenses {
		if err := q.InsertExpense(ctx, &snap.Expenses[i]); err != nil {
			return err
		}
	}
	for i := range snap.ApprovalRequests {
		if err := q.InsertRequest(ctx, &snap.ApprovalRequests[i]); err != nil {
			return err
		}
	}
	for i := range snap.ActivityLog {
		if err := q.AppendActivity(ctx, &snap.ActivityLog[i]); err != nil {
			return err
		}
	}
	return q.AppendEdits(ctx, snap.EditLog)
}
