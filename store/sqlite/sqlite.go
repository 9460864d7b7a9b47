/*
Package sqlite provides a SQLite-backed implementation of finance.Store.

PURPOSE:
  Persists the salary rule, recurring expenses, transactions and savings
  goal so the API and scheduler can feed the projection engine.

APPEND-ONLY TRANSACTIONS:
  - No UPDATE or DELETE statements on the transactions table
  - Duplicate IDs surface as generic.ErrDuplicateTransaction

KEY TABLES:
  salary:             single row (id = 1)
  recurring_expenses: one row per expense, replaced wholesale
  transactions:       immutable income/expense records
  savings_goal:       single row (id = 1)

MONEY AND DATES:
  Amounts are stored as decimal strings, dates as YYYY-MM-DD text so that
  range queries compare lexicographically.

MIGRATION:
  Schema is versioned under migrations/ and applied with golang-migrate on
  New(). The migrations are embedded in the binary.

CONCURRENCY:
  Uses sync.RWMutex and a single open connection. ":memory:" databases are
  per-connection in SQLite, so one connection keeps tests on one database.

USAGE:
  store, err := sqlite.New("./data/finance.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  state, err := finance.LoadState(ctx, store)

SEE ALSO:
  - finance/store.go: Interface definition
  - finance/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/finance-engine/finance"
	"github.com/warp/finance-engine/generic"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store implements finance.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ finance.Store = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	dsn := dbPath + "?_foreign_keys=on"
	if dbPath != ":memory:" {
		dsn += "&_journal_mode=WAL"
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate applies the embedded migrations. The migrate instance is not
// closed because that would close the shared *sql.DB.
func (s *Store) migrate() error {
	driver, err := migratesqlite.WithInstance(s.db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("create sqlite driver: %w", err)
	}

	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// =============================================================================
// SALARY
// =============================================================================

func (s *Store) Salary(ctx context.Context) (*finance.SalaryRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		amount, frequency, description string
		anchorDay, anchorMonth         int
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT amount, frequency, anchor_day, anchor_month, description FROM salary WHERE id = 1`,
	).Scan(&amount, &frequency, &anchorDay, &anchorMonth, &description)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get salary: %w", err)
	}

	rule, err := scanRule(amount, frequency, anchorDay, anchorMonth, description)
	if err != nil {
		return nil, err
	}
	return &finance.SalaryRule{RecurrenceRule: rule}, nil
}

func (s *Store) SetSalary(ctx context.Context, salary finance.SalaryRule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO salary (id, amount, frequency, anchor_day, anchor_month, description, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			amount = excluded.amount,
			frequency = excluded.frequency,
			anchor_day = excluded.anchor_day,
			anchor_month = excluded.anchor_month,
			description = excluded.description,
			updated_at = excluded.updated_at
	`
	_, err := s.db.ExecContext(ctx, query,
		salary.Amount.String(),
		salary.Frequency.String(),
		salary.AnchorDay,
		int(salary.AnchorMonth),
		salary.Description,
		now(),
	)
	if err != nil {
		return fmt.Errorf("failed to save salary: %w", err)
	}
	return nil
}

func (s *Store) ClearSalary(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, "DELETE FROM salary"); err != nil {
		return fmt.Errorf("failed to clear salary: %w", err)
	}
	return nil
}

// =============================================================================
// RECURRING EXPENSES
// =============================================================================

func (s *Store) RecurringExpenses(ctx context.Context) ([]finance.RecurringExpense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, amount, frequency, anchor_day, anchor_month, description, category
		FROM recurring_expenses
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query recurring expenses: %w", err)
	}
	defer rows.Close()

	var expenses []finance.RecurringExpense
	for rows.Next() {
		var (
			id, amount, frequency, description, category string
			anchorDay, anchorMonth                       int
		)
		if err := rows.Scan(&id, &amount, &frequency, &anchorDay, &anchorMonth, &description, &category); err != nil {
			return nil, fmt.Errorf("failed to scan recurring expense: %w", err)
		}
		rule, err := scanRule(amount, frequency, anchorDay, anchorMonth, description)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, finance.RecurringExpense{
			RecurrenceRule: rule,
			ID:             finance.ExpenseID(id),
			Category:       category,
		})
	}
	return expenses, rows.Err()
}

func (s *Store) PutRecurringExpense(ctx context.Context, e finance.RecurringExpense) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ts := now()
	query := `
		INSERT INTO recurring_expenses
		(id, amount, frequency, anchor_day, anchor_month, description, category, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			amount = excluded.amount,
			frequency = excluded.frequency,
			anchor_day = excluded.anchor_day,
			anchor_month = excluded.anchor_month,
			description = excluded.description,
			category = excluded.category,
			updated_at = excluded.updated_at
	`
	_, err := s.db.ExecContext(ctx, query,
		string(e.ID),
		e.Amount.String(),
		e.Frequency.String(),
		e.AnchorDay,
		int(e.AnchorMonth),
		e.Description,
		e.Category,
		ts, ts,
	)
	if err != nil {
		return fmt.Errorf("failed to save recurring expense: %w", err)
	}
	return nil
}

func (s *Store) RemoveRecurringExpense(ctx context.Context, id finance.ExpenseID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM recurring_expenses WHERE id = ?", string(id))
	if err != nil {
		return fmt.Errorf("failed to delete recurring expense: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete recurring expense: %w", err)
	}
	if n == 0 {
		return generic.ErrExpenseNotFound
	}
	return nil
}

// =============================================================================
// TRANSACTIONS (append-only)
// =============================================================================

// AppendTransaction adds a transaction. There is no update or delete.
func (s *Store) AppendTransaction(ctx context.Context, tx finance.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO transactions (id, kind, amount, date, description, category, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		string(tx.ID),
		string(tx.Kind),
		tx.Amount.String(),
		tx.Date.String(),
		tx.Description,
		tx.Category,
		now(),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return generic.ErrDuplicateTransaction
		}
		return fmt.Errorf("failed to append transaction: %w", err)
	}
	return nil
}

func (s *Store) Transactions(ctx context.Context) ([]finance.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryTransactions(ctx, `
		SELECT id, kind, amount, date, description, category
		FROM transactions
		ORDER BY date ASC, created_at ASC, rowid ASC
	`)
}

func (s *Store) TransactionsInRange(ctx context.Context, from, to generic.Date) ([]finance.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryTransactions(ctx, `
		SELECT id, kind, amount, date, description, category
		FROM transactions
		WHERE date >= ? AND date <= ?
		ORDER BY date ASC, created_at ASC, rowid ASC
	`, from.String(), to.String())
}

func (s *Store) queryTransactions(ctx context.Context, query string, args ...any) ([]finance.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var transactions []finance.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, tx)
	}
	return transactions, rows.Err()
}

func scanTransaction(rows *sql.Rows) (finance.Transaction, error) {
	var (
		tx                     finance.Transaction
		id, kind, amount, date string
		description, category  string
	)
	if err := rows.Scan(&id, &kind, &amount, &date, &description, &category); err != nil {
		return tx, fmt.Errorf("failed to scan transaction: %w", err)
	}

	value, err := decimal.NewFromString(amount)
	if err != nil {
		return tx, fmt.Errorf("transaction %s: bad amount %q: %w", id, amount, err)
	}
	day, err := generic.ParseDate(date)
	if err != nil {
		return tx, fmt.Errorf("transaction %s: bad date %q: %w", id, date, err)
	}

	tx.ID = finance.TransactionID(id)
	tx.Kind = finance.TransactionKind(kind)
	tx.Amount = value
	tx.Date = day
	tx.Description = description
	tx.Category = category
	return tx, nil
}

// =============================================================================
// SAVINGS GOAL
// =============================================================================

func (s *Store) SavingsGoal(ctx context.Context) (*finance.SavingsGoal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var target, deadline, saved string
	err := s.db.QueryRowContext(ctx,
		`SELECT target_amount, deadline, current_saved FROM savings_goal WHERE id = 1`,
	).Scan(&target, &deadline, &saved)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get savings goal: %w", err)
	}

	goal := &finance.SavingsGoal{}
	if goal.TargetAmount, err = decimal.NewFromString(target); err != nil {
		return nil, fmt.Errorf("savings goal: bad target %q: %w", target, err)
	}
	if goal.CurrentSaved, err = decimal.NewFromString(saved); err != nil {
		return nil, fmt.Errorf("savings goal: bad current_saved %q: %w", saved, err)
	}
	if goal.Deadline, err = generic.ParseDate(deadline); err != nil {
		return nil, fmt.Errorf("savings goal: bad deadline %q: %w", deadline, err)
	}
	return goal, nil
}

func (s *Store) SetSavingsGoal(ctx context.Context, goal finance.SavingsGoal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO savings_goal (id, target_amount, deadline, current_saved, updated_at)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			target_amount = excluded.target_amount,
			deadline = excluded.deadline,
			current_saved = excluded.current_saved,
			updated_at = excluded.updated_at
	`
	_, err := s.db.ExecContext(ctx, query,
		goal.TargetAmount.String(),
		goal.Deadline.String(),
		goal.CurrentSaved.String(),
		now(),
	)
	if err != nil {
		return fmt.Errorf("failed to save savings goal: %w", err)
	}
	return nil
}

func (s *Store) UpdateSavings(ctx context.Context, currentSaved decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"UPDATE savings_goal SET current_saved = ?, updated_at = ? WHERE id = 1",
		currentSaved.String(), now(),
	)
	if err != nil {
		return fmt.Errorf("failed to update savings: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update savings: %w", err)
	}
	if n == 0 {
		return generic.ErrNoSavingsGoal
	}
	return nil
}

// =============================================================================
// ADMIN
// =============================================================================

// Reset clears all data (for development/testing).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"transactions", "recurring_expenses", "salary", "savings_goal"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return nil
}

// Helper functions

func scanRule(amount, frequency string, anchorDay, anchorMonth int, description string) (finance.RecurrenceRule, error) {
	value, err := decimal.NewFromString(amount)
	if err != nil {
		return finance.RecurrenceRule{}, fmt.Errorf("bad amount %q: %w", amount, err)
	}
	freq, err := finance.ParseFrequency(frequency)
	if err != nil {
		return finance.RecurrenceRule{}, err
	}
	return finance.RecurrenceRule{
		Amount:      value,
		Frequency:   freq,
		AnchorDay:   anchorDay,
		AnchorMonth: time.Month(anchorMonth),
		Description: description,
	}, nil
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func isUniqueConstraintError(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "PRIMARY KEY"))
}
