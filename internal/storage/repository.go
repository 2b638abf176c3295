package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"zenfin/internal/core"

	_ "modernc.org/sqlite"
)

// Sync states mirrored to the transactions table.
const (
	SyncPending = "PENDING"
	SyncDone    = "SYNCED"
	SyncError   = "ERROR"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// List implements store.TransactionStore. Rows come back date-desc, then
// insertion-desc within the same day, so the reconciler sees a stable
// newest-first order.
func (r *SQLiteRepository) List(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, description, amount_cents, date, kind, category, payment_method, recurrence, is_paid
		FROM transactions
		ORDER BY date DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Insert implements store.TransactionStore.
func (r *SQLiteRepository) Insert(ctx context.Context, draft core.TransactionDraft, paid bool) (core.Transaction, error) {
	if err := draft.Validate(); err != nil {
		return core.Transaction{}, err
	}

	t := core.Transaction{
		ID:            uuid.NewString(),
		Description:   draft.Description,
		Amount:        draft.Amount,
		Date:          draft.Date,
		Kind:          draft.Kind,
		Category:      draft.Category,
		PaymentMethod: draft.PaymentMethod,
		Recurrence:    draft.Recurrence,
		IsPaid:        paid,
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (id, description, amount_cents, date, kind, category, payment_method, recurrence, is_paid, sync_status, version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1)`,
		t.ID, t.Description, t.Amount.Cents, t.Date.UTC().Format(time.RFC3339),
		string(t.Kind), string(t.Category), t.PaymentMethod, string(t.Recurrence),
		boolToInt(t.IsPaid), SyncPending)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", t.ID,
		"amount_cents", t.Amount.Cents,
		"category", t.Category,
		"kind", t.Kind)

	return t, nil
}

// SetPaid implements store.TransactionStore. Every flip bumps the row version
// so the sync worker can tell stale mirror messages apart.
func (r *SQLiteRepository) SetPaid(ctx context.Context, id string, paid bool) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE transactions
		SET is_paid = ?, sync_status = ?, version = version + 1
		WHERE id = ?`,
		boolToInt(paid), SyncPending, id)
	if err != nil {
		return fmt.Errorf("set paid: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set paid rows affected: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// GetTransaction loads a single transaction by id for the sync worker.
func (r *SQLiteRepository) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, description, amount_cents, date, kind, category, payment_method, recurrence, is_paid
		FROM transactions WHERE id = ?`, id)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.ErrNotFound
	}
	return t, err
}

// ListPendingSync returns up to limit transactions that still owe the mirror
// an update, oldest first. Rows marked ERROR are retried too.
func (r *SQLiteRepository) ListPendingSync(ctx context.Context, limit int) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, description, amount_cents, date, kind, category, payment_method, recurrence, is_paid
		FROM transactions
		WHERE sync_status IN (?, ?)
		ORDER BY rowid ASC
		LIMIT ?`, SyncPending, SyncError, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending sync: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// MarkSynced records that the remote mirror accepted the transaction.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET sync_status = ? WHERE id = ?`, SyncDone, id)
	if err != nil {
		return fmt.Errorf("mark synced: %w", err)
	}
	slog.InfoContext(ctx, "Transaction marked as synced", "id", id)
	return nil
}

// MarkSyncError records a mirror failure without touching the snapshot.
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET sync_status = ? WHERE id = ?`, SyncError, id)
	if err != nil {
		return fmt.Errorf("mark sync error: %w", err)
	}
	slog.WarnContext(ctx, "Transaction marked with sync error", "id", id)
	return nil
}

// ListTemplates implements store.TemplateStore in seed order.
func (r *SQLiteRepository) ListTemplates(ctx context.Context) ([]core.RecurringTemplate, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT category, is_active, default_amount_cents
		FROM recurring_templates ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var out []core.RecurringTemplate
	for rows.Next() {
		var (
			cat    string
			active int
			cents  int64
		)
		if err := rows.Scan(&cat, &active, &cents); err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		out = append(out, core.RecurringTemplate{
			Category:      core.Category(cat),
			IsActive:      active != 0,
			DefaultAmount: core.Money{Cents: cents},
		})
	}
	return out, rows.Err()
}

// SaveTemplate implements store.TemplateStore. Upserts by category keeping the
// existing position; new categories go to the end of the checklist.
func (r *SQLiteRepository) SaveTemplate(ctx context.Context, t core.RecurringTemplate) error {
	if err := t.Validate(); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO recurring_templates (category, is_active, default_amount_cents, position)
		VALUES (?, ?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM recurring_templates))
		ON CONFLICT(category) DO UPDATE SET
			is_active = excluded.is_active,
			default_amount_cents = excluded.default_amount_cents`,
		string(t.Category), boolToInt(t.IsActive), t.DefaultAmount.Cents)
	if err != nil {
		return fmt.Errorf("save template: %w", err)
	}
	return nil
}

// ListLimits implements store.LimitStore.
func (r *SQLiteRepository) ListLimits(ctx context.Context) ([]core.SpendingLimit, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, category, limit_cents FROM spending_limits ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("list limits: %w", err)
	}
	defer rows.Close()

	var out []core.SpendingLimit
	for rows.Next() {
		var (
			id, cat string
			cents   int64
		)
		if err := rows.Scan(&id, &cat, &cents); err != nil {
			return nil, fmt.Errorf("scan limit: %w", err)
		}
		out = append(out, core.SpendingLimit{
			ID:       id,
			Category: core.Category(cat),
			Limit:    core.Money{Cents: cents},
		})
	}
	return out, rows.Err()
}

// SaveLimit implements store.LimitStore.
func (r *SQLiteRepository) SaveLimit(ctx context.Context, l core.SpendingLimit) (core.SpendingLimit, error) {
	if err := l.Validate(); err != nil {
		return core.SpendingLimit{}, err
	}
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO spending_limits (id, category, limit_cents)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			category = excluded.category,
			limit_cents = excluded.limit_cents`,
		l.ID, string(l.Category), l.Limit.Cents)
	if err != nil {
		return core.SpendingLimit{}, fmt.Errorf("save limit: %w", err)
	}
	return l, nil
}

// DeleteLimit implements store.LimitStore.
func (r *SQLiteRepository) DeleteLimit(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM spending_limits WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete limit: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete limit rows affected: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		t          core.Transaction
		date       string
		kind       string
		category   string
		recurrence string
		paid       int
	)
	err := row.Scan(&t.ID, &t.Description, &t.Amount.Cents, &date, &kind, &category, &t.PaymentMethod, &recurrence, &paid)
	if err != nil {
		return core.Transaction{}, err
	}
	parsed, err := time.Parse(time.RFC3339, date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse stored date %q: %w", date, err)
	}
	t.Date = parsed
	t.Kind = core.Kind(kind)
	t.Category = core.Category(category)
	t.Recurrence = core.Recurrence(recurrence)
	t.IsPaid = paid != 0
	return t, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
