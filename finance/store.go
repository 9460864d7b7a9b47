/*
store.go - Persistence contract for the finance state

PURPOSE:
  The engine itself is pure; this interface is how the outer layers (API,
  scheduler, CLI) fetch the plain data the engine consumes. Different
  implementations can use SQLite or in-memory storage.

CONTRACT:
  Salary:             at most one rule; SetSalary replaces it
  Recurring expenses: keyed by stable ID; Put creates or fully replaces
  Transactions:       APPEND-ONLY, duplicate ID -> ErrDuplicateTransaction
  Savings goal:       SetSavingsGoal replaces; UpdateSavings only touches
                      CurrentSaved

IMPLEMENTATIONS:
  - finance/store/memory.go: In-memory for testing/dev
  - store/sqlite/sqlite.go:  SQLite with versioned migrations

SEE ALSO:
  - LoadState below: one-shot snapshot for engine calls
*/
package finance

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/finance-engine/generic"
)

// Store persists the user's finance state.
type Store interface {
	// Salary returns the active salary rule, or nil when none is configured.
	Salary(ctx context.Context) (*SalaryRule, error)
	SetSalary(ctx context.Context, salary SalaryRule) error
	ClearSalary(ctx context.Context) error

	RecurringExpenses(ctx context.Context) ([]RecurringExpense, error)
	// PutRecurringExpense creates the expense or replaces it wholesale.
	PutRecurringExpense(ctx context.Context, expense RecurringExpense) error
	// RemoveRecurringExpense returns ErrExpenseNotFound for unknown IDs.
	RemoveRecurringExpense(ctx context.Context, id ExpenseID) error

	// AppendTransaction is the only write for transactions.
	AppendTransaction(ctx context.Context, tx Transaction) error
	// Transactions returns all transactions ordered by date.
	Transactions(ctx context.Context) ([]Transaction, error)
	// TransactionsInRange returns transactions dated in [from, to].
	TransactionsInRange(ctx context.Context, from, to generic.Date) ([]Transaction, error)

	// SavingsGoal returns the goal, or nil when none is configured.
	SavingsGoal(ctx context.Context) (*SavingsGoal, error)
	SetSavingsGoal(ctx context.Context, goal SavingsGoal) error
	// UpdateSavings sets CurrentSaved; ErrNoSavingsGoal without a goal.
	UpdateSavings(ctx context.Context, currentSaved decimal.Decimal) error

	// Reset clears all data (for development/demo scenarios).
	Reset(ctx context.Context) error
}

// State is a consistent snapshot of everything the engine consumes.
type State struct {
	Salary       *SalaryRule
	Expenses     []RecurringExpense
	Transactions []Transaction
	Goal         *SavingsGoal
}

// Rules returns the recurrence rules of the snapshot.
func (s State) Rules() Rules {
	return Rules{Salary: s.Salary, Expenses: s.Expenses}
}

// LoadState reads the full state from store.
func LoadState(ctx context.Context, store Store) (State, error) {
	salary, err := store.Salary(ctx)
	if err != nil {
		return State{}, fmt.Errorf("load salary: %w", err)
	}
	expenses, err := store.RecurringExpenses(ctx)
	if err != nil {
		return State{}, fmt.Errorf("load recurring expenses: %w", err)
	}
	txs, err := store.Transactions(ctx)
	if err != nil {
		return State{}, fmt.Errorf("load transactions: %w", err)
	}
	goal, err := store.SavingsGoal(ctx)
	if err != nil {
		return State{}, fmt.Errorf("load savings goal: %w", err)
	}
	return State{Salary: salary, Expenses: expenses, Transactions: txs, Goal: goal}, nil
}
