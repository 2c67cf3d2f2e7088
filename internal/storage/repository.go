package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"budgetvs/internal/aggregate"
	"budgetvs/internal/core"
	"budgetvs/internal/ledger"

	_ "modernc.org/sqlite"
)

// SQLiteRepository stores workspaces in a private in-memory SQLite
// database. Rows are partitioned by session ID and disappear when the
// repository is closed.
type SQLiteRepository struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// MemoryDSN returns a DSN for a named in-memory database shared by all
// connections of this process.
func MemoryDSN(name string) string {
	return fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
}

// NewSQLiteRepository opens a fresh in-memory database and applies the
// schema. Sessions idle for longer than ttl are removed by CleanExpired.
func NewSQLiteRepository(ttl time.Duration) (*SQLiteRepository, error) {
	dsn := MemoryDSN("budgetvs-" + uuid.NewString())

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One long-lived connection keeps the in-memory database alive and
	// serializes writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, ttl: ttl, now: time.Now}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// stampLayout has a fixed width so stamps order correctly as text.
const stampLayout = "2006-01-02T15:04:05.000000000Z"

func (r *SQLiteRepository) stamp() string {
	return r.now().UTC().Format(stampLayout)
}

func (r *SQLiteRepository) CreateSession(ctx context.Context) (string, error) {
	id := uuid.NewString()
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (id, version, last_seen) VALUES (?, 0, ?)`, id, r.stamp()); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	slog.DebugContext(ctx, "Session created in SQLite", "session_id", id)
	return id, nil
}

// touch refreshes the session's last use and fails with ErrNotFound for
// unknown or expired sessions.
func touch(ctx context.Context, q execer, id, stamp string) error {
	res, err := q.ExecContext(ctx, `UPDATE sessions SET last_seen = ? WHERE id = ?`, stamp, id)
	if err != nil {
		return fmt.Errorf("touch session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("touch session: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: session %q", core.ErrNotFound, id)
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// write runs fn inside a transaction that also bumps the session version.
func (r *SQLiteRepository) write(ctx context.Context, id string, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := touch(ctx, tx, id, r.stamp()); err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE sessions SET version = version + 1 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("bump version: %w", err)
	}
	return tx.Commit()
}

func (r *SQLiteRepository) AddCategory(ctx context.Context, id, name string) error {
	name, err := core.NormalizeCategory(name)
	if err != nil {
		return err
	}
	return r.write(ctx, id, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM categories WHERE session_id = ? AND name = ?`, id, name).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check category: %w", err)
		}
		if exists > 0 {
			return fmt.Errorf("%w: %q", core.ErrDuplicateCategory, name)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO categories (session_id, name) VALUES (?, ?)`, id, name); err != nil {
			return fmt.Errorf("insert category: %w", err)
		}
		return nil
	})
}

func (r *SQLiteRepository) ResetCategories(ctx context.Context, id string) error {
	return r.write(ctx, id, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE session_id = ?`, id); err != nil {
			return fmt.Errorf("reset categories: %w", err)
		}
		return nil
	})
}

func (r *SQLiteRepository) Categories(ctx context.Context, id string) ([]string, error) {
	if err := touch(ctx, r.db, id, r.stamp()); err != nil {
		return nil, err
	}
	return queryStrings(ctx, r.db, `SELECT name FROM categories WHERE session_id = ? ORDER BY id`, id)
}

func (r *SQLiteRepository) SetBudget(ctx context.Context, id, category string, amount float64) error {
	category, err := ledger.ValidateBudget(category, amount)
	if err != nil {
		return err
	}
	return r.write(ctx, id, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO budgets (session_id, category, amount) VALUES (?, ?, ?)
			ON CONFLICT (session_id, category) DO UPDATE SET amount = excluded.amount`,
			id, category, amount)
		if err != nil {
			return fmt.Errorf("upsert budget: %w", err)
		}
		return nil
	})
}

func (r *SQLiteRepository) LogExpense(ctx context.Context, id string, rec core.ExpenseRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	rec.Date = rec.Date.Normalize()
	return r.write(ctx, id, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO expenses (session_id, category, amount, occurred_at) VALUES (?, ?, ?, ?)`,
			id, rec.Category, rec.Amount, rec.Date.Format(time.RFC3339Nano))
		if err != nil {
			return fmt.Errorf("insert expense: %w", err)
		}
		return nil
	})
}

func (r *SQLiteRepository) Expenses(ctx context.Context, id string) ([]core.ExpenseRecord, error) {
	if err := touch(ctx, r.db, id, r.stamp()); err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT category, amount, occurred_at FROM expenses WHERE session_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	var out []core.ExpenseRecord
	for rows.Next() {
		var (
			rec        core.ExpenseRecord
			occurredAt string
		)
		if err := rows.Scan(&rec.Category, &rec.Amount, &occurredAt); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		t, err := time.Parse(time.RFC3339Nano, occurredAt)
		if err != nil {
			return nil, fmt.Errorf("parse expense date %q: %w", occurredAt, err)
		}
		rec.Date = core.Date{Time: t.UTC()}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) Entries(ctx context.Context, id string) ([]aggregate.Entry, error) {
	registered, err := r.Categories(ctx, id)
	if err != nil {
		return nil, err
	}

	join := ledger.Join{
		Registered: registered,
		Budgets:    make(map[string]float64),
		Sums:       make(map[string]float64),
	}

	budgets, err := r.db.QueryContext(ctx,
		`SELECT category, amount FROM budgets WHERE session_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("query budgets: %w", err)
	}
	defer budgets.Close()
	for budgets.Next() {
		var (
			name   string
			amount float64
		)
		if err := budgets.Scan(&name, &amount); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		join.Planned = append(join.Planned, name)
		join.Budgets[name] = amount
	}
	if err := budgets.Err(); err != nil {
		return nil, err
	}

	sums, err := r.db.QueryContext(ctx, `
		SELECT category, SUM(amount) FROM expenses
		WHERE session_id = ?
		GROUP BY category
		ORDER BY MIN(id)`, id)
	if err != nil {
		return nil, fmt.Errorf("query expense sums: %w", err)
	}
	defer sums.Close()
	for sums.Next() {
		var (
			name  string
			total float64
		)
		if err := sums.Scan(&name, &total); err != nil {
			return nil, fmt.Errorf("scan expense sum: %w", err)
		}
		join.Spent = append(join.Spent, name)
		join.Sums[name] = total
	}
	if err := sums.Err(); err != nil {
		return nil, err
	}

	return join.Entries(), nil
}

func (r *SQLiteRepository) Series(ctx context.Context, id, category string) ([]core.Point, error) {
	expenses, err := r.Expenses(ctx, id)
	if err != nil {
		return nil, err
	}
	var out []core.Point
	for _, e := range expenses {
		if core.SameCategory(e.Category, category) {
			out = append(out, core.Point{Date: e.Date, Actual: e.Amount})
		}
	}
	return out, nil
}

func (r *SQLiteRepository) Version(ctx context.Context, id string) (uint64, error) {
	var v int64
	err := r.db.QueryRowContext(ctx, `SELECT version FROM sessions WHERE id = ?`, id).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: session %q", core.ErrNotFound, id)
	}
	if err != nil {
		return 0, fmt.Errorf("get version: %w", err)
	}
	return uint64(v), nil
}

// CleanExpired implements cache.Cleaner by dropping sessions idle for
// longer than the repository TTL, together with their rows.
func (r *SQLiteRepository) CleanExpired() int {
	if r.ttl <= 0 {
		return 0
	}
	ctx := context.Background()
	cutoff := r.now().Add(-r.ttl).UTC().Format(stampLayout)

	ids, err := queryStrings(ctx, r.db, `SELECT id FROM sessions WHERE last_seen < ?`, cutoff)
	if err != nil {
		slog.Error("List expired sessions failed", "error", err)
		return 0
	}
	removed := 0
	for _, id := range ids {
		if err := r.deleteSession(ctx, id); err != nil {
			slog.Error("Delete expired session failed", "session_id", id, "error", err)
			continue
		}
		removed++
	}
	return removed
}

func (r *SQLiteRepository) deleteSession(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, table := range []string{"expenses", "budgets", "categories"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE session_id = ?", id); err != nil {
			return fmt.Errorf("delete %s: %w", table, err)
		}
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return tx.Commit()
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func queryStrings(ctx context.Context, q querier, query string, args ...any) ([]string, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", strings.Fields(query)[1], err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
