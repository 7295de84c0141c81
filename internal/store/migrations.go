package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/simonvc/minibooks/internal/auth"
	"github.com/simonvc/minibooks/internal/ledger"
)

func (s *Store) migrate(ctx context.Context) error {
	tx, err := s.writer.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Create schema version table
	if _, err := tx.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		)
	`); err != nil {
		return fmt.Errorf("create schema_version: %w", err)
	}

	var version int
	err = tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&version)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	if version < 1 {
		if err := migrateV1(ctx, tx); err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
	}

	return tx.Commit()
}

func migrateV1(ctx context.Context, tx *sql.Tx) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS accounts (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			type       TEXT NOT NULL CHECK (type IN ('Asset','Liability','Equity','Revenue','Expense')),
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
		)`,

		// Trigger: account type is fixed once created
		`CREATE TRIGGER IF NOT EXISTS trg_account_type_immutable
		BEFORE UPDATE OF type ON accounts
		WHEN NEW.type != OLD.type
		BEGIN
			SELECT RAISE(ABORT, 'account type cannot change');
		END`,

		`CREATE TABLE IF NOT EXISTS users (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			email      TEXT NOT NULL,
			role       TEXT NOT NULL,
			active     INTEGER NOT NULL DEFAULT 1,
			created_at TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS settings (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS customers (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			email      TEXT NOT NULL DEFAULT '',
			phone      TEXT NOT NULL DEFAULT '',
			address    TEXT NOT NULL DEFAULT '',
			lifecycle  TEXT NOT NULL DEFAULT 'active' CHECK (lifecycle IN ('active','pending_deletion','deleted')),
			version    INTEGER NOT NULL DEFAULT 1,
			created_by TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS suppliers (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			email      TEXT NOT NULL DEFAULT '',
			phone      TEXT NOT NULL DEFAULT '',
			address    TEXT NOT NULL DEFAULT '',
			lifecycle  TEXT NOT NULL DEFAULT 'active' CHECK (lifecycle IN ('active','pending_deletion','deleted')),
			version    INTEGER NOT NULL DEFAULT 1,
			created_by TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS products (
			id             TEXT PRIMARY KEY,
			name           TEXT NOT NULL,
			sku            TEXT NOT NULL DEFAULT '',
			category       TEXT NOT NULL DEFAULT '',
			unit           TEXT NOT NULL DEFAULT '',
			purchase_price TEXT NOT NULL,
			sale_price     TEXT NOT NULL,
			stock          INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
			lifecycle      TEXT NOT NULL DEFAULT 'active' CHECK (lifecycle IN ('active','pending_deletion','deleted')),
			version        INTEGER NOT NULL DEFAULT 1,
			created_by     TEXT NOT NULL,
			created_at     TEXT NOT NULL,
			updated_at     TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS journal_entries (
			seq         INTEGER PRIMARY KEY AUTOINCREMENT,
			id          TEXT NOT NULL UNIQUE,
			date        TEXT NOT NULL,
			description TEXT NOT NULL,
			status      TEXT NOT NULL CHECK (status IN ('pending_approval','approved')),
			lifecycle   TEXT NOT NULL DEFAULT 'active' CHECK (lifecycle IN ('active','pending_deletion','deleted')),
			source_type TEXT NOT NULL DEFAULT '',
			source_id   TEXT NOT NULL DEFAULT '',
			created_by  TEXT NOT NULL,
			created_at  TEXT NOT NULL,
			approved_by TEXT NOT NULL DEFAULT '',
			approved_at TEXT,
			sealed      INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_journal_entries_date ON journal_entries(date)`,

		`CREATE TABLE IF NOT EXISTS journal_lines (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			entry_id    TEXT NOT NULL REFERENCES journal_entries(id),
			account_id  TEXT NOT NULL REFERENCES accounts(id),
			debit       TEXT NOT NULL,
			credit      TEXT NOT NULL,
			product_id  TEXT NOT NULL DEFAULT '',
			quantity    INTEGER NOT NULL DEFAULT 0,
			customer_id TEXT NOT NULL DEFAULT '',
			supplier_id TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_journal_lines_entry ON journal_lines(entry_id)`,
		`CREATE INDEX IF NOT EXISTS idx_journal_lines_account ON journal_lines(account_id)`,

		// Trigger: prevent sealing an unbalanced entry
		`CREATE TRIGGER IF NOT EXISTS trg_check_balance
		BEFORE UPDATE OF sealed ON journal_entries
		WHEN NEW.sealed = 1
		BEGIN
			SELECT CASE
				WHEN (
					SELECT COUNT(*) < 2
						OR ABS(SUM(CAST(debit AS REAL)) - SUM(CAST(credit AS REAL))) >= 0.005
					FROM journal_lines
					WHERE entry_id = NEW.id
				)
				THEN RAISE(ABORT, 'journal entry lines do not balance')
			END;
		END`,

		// Trigger: prevent adding lines to sealed entries
		`CREATE TRIGGER IF NOT EXISTS trg_immutable_lines_insert
		BEFORE INSERT ON journal_lines
		WHEN (SELECT sealed FROM journal_entries WHERE id = NEW.entry_id) = 1
		BEGIN
			SELECT RAISE(ABORT, 'cannot add lines to a sealed journal entry');
		END`,

		// Trigger: prevent deleting lines from sealed entries
		`CREATE TRIGGER IF NOT EXISTS trg_immutable_lines_delete
		BEFORE DELETE ON journal_lines
		WHEN (SELECT sealed FROM journal_entries WHERE id = OLD.entry_id) = 1
		BEGIN
			SELECT RAISE(ABORT, 'cannot remove lines from a sealed journal entry');
		END`,

		// Trigger: prevent updating lines on sealed entries
		`CREATE TRIGGER IF NOT EXISTS trg_immutable_lines_update
		BEFORE UPDATE ON journal_lines
		WHEN (SELECT sealed FROM journal_entries WHERE id = OLD.entry_id) = 1
		BEGIN
			SELECT RAISE(ABORT, 'cannot modify lines of a sealed journal entry');
		END`,

		// Trigger: approval is one-way
		`CREATE TRIGGER IF NOT EXISTS trg_approval_one_way
		BEFORE UPDATE OF status ON journal_entries
		WHEN OLD.status = 'approved' AND NEW.status != 'approved'
		BEGIN
			SELECT RAISE(ABORT, 'an approved journal entry cannot return to pending');
		END`,

		`CREATE TABLE IF NOT EXISTS sales (
			id               TEXT PRIMARY KEY,
			invoice_number   TEXT NOT NULL UNIQUE,
			customer_id      TEXT NOT NULL,
			date             TEXT NOT NULL,
			items            TEXT NOT NULL,
			subtotal         TEXT NOT NULL,
			tax_rate         TEXT NOT NULL,
			tax_amount       TEXT NOT NULL,
			total            TEXT NOT NULL,
			payment_method   TEXT NOT NULL CHECK (payment_method IN ('Cash','Credit')),
			status           TEXT NOT NULL,
			lifecycle        TEXT NOT NULL DEFAULT 'active' CHECK (lifecycle IN ('active','pending_deletion','deleted')),
			journal_entry_id TEXT NOT NULL,
			created_by       TEXT NOT NULL,
			created_at       TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS purchases (
			id               TEXT PRIMARY KEY,
			invoice_number   TEXT NOT NULL UNIQUE,
			supplier_id      TEXT NOT NULL,
			date             TEXT NOT NULL,
			items            TEXT NOT NULL,
			subtotal         TEXT NOT NULL,
			tax_rate         TEXT NOT NULL,
			tax_amount       TEXT NOT NULL,
			total            TEXT NOT NULL,
			payment_method   TEXT NOT NULL CHECK (payment_method IN ('Cash','Credit')),
			status           TEXT NOT NULL,
			lifecycle        TEXT NOT NULL DEFAULT 'active' CHECK (lifecycle IN ('active','pending_deletion','deleted')),
			journal_entry_id TEXT NOT NULL,
			created_by       TEXT NOT NULL,
			created_at       TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS expenses (
			id               TEXT PRIMARY KEY,
			date             TEXT NOT NULL,
			category         TEXT NOT NULL,
			description      TEXT NOT NULL DEFAULT '',
			amount           TEXT NOT NULL,
			status           TEXT NOT NULL,
			lifecycle        TEXT NOT NULL DEFAULT 'active' CHECK (lifecycle IN ('active','pending_deletion','deleted')),
			journal_entry_id TEXT NOT NULL,
			version          INTEGER NOT NULL DEFAULT 1,
			created_by       TEXT NOT NULL,
			created_at       TEXT NOT NULL,
			updated_at       TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS approval_requests (
			id            TEXT PRIMARY KEY,
			record_type   TEXT NOT NULL,
			record_id     TEXT NOT NULL,
			requested_by  TEXT NOT NULL,
			request_date  TEXT NOT NULL,
			status        TEXT NOT NULL CHECK (status IN ('pending','approved','rejected')),
			approved_by   TEXT NOT NULL DEFAULT '',
			approval_date TEXT
		)`,
		// At most one open request per record
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_approval_requests_open
			ON approval_requests(record_type, record_id) WHERE status = 'pending'`,

		`CREATE TABLE IF NOT EXISTS activity_log (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp TEXT NOT NULL,
			user_id   TEXT NOT NULL,
			action    TEXT NOT NULL,
			details   TEXT NOT NULL DEFAULT ''
		)`,

		`CREATE TABLE IF NOT EXISTS edit_log (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			record_type TEXT NOT NULL,
			record_id   TEXT NOT NULL,
			timestamp   TEXT NOT NULL,
			user_id     TEXT NOT NULL,
			field       TEXT NOT NULL,
			old_value   TEXT NOT NULL,
			new_value   TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_edit_log_record ON edit_log(record_type, record_id)`,

		// Record schema version
		`INSERT INTO schema_version (version) VALUES (1)`,
	}

	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}

	// Seed the default chart and the administrator
	for _, ce := range ledger.DefaultChart {
		_, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO accounts (id, name, type) VALUES (?, ?, ?)`,
			ce.ID, ce.Name, string(ce.Type),
		)
		if err != nil {
			return fmt.Errorf("seed account %s: %w", ce.ID, err)
		}
	}

	u := auth.SystemUser
	_, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO users (id, name, email, role, active, created_at) VALUES (?, ?, ?, ?, 1, strftime('%Y-%m-%dT%H:%M:%fZ','now'))`,
		u.ID, u.Name, u.Email, string(u.Role),
	)
	if err != nil {
		return fmt.Errorf("seed user %s: %w", u.ID, err)
	}

	return nil
}
