// Package store provides in-memory finance.Store implementations.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/warp/finance-engine/finance"
	"github.com/warp/finance-engine/generic"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu           sync.RWMutex
	salary       *finance.SalaryRule
	expenses     map[finance.ExpenseID]finance.RecurringExpense
	transactions []finance.Transaction
	txIDs        map[finance.TransactionID]bool
	goal         *finance.SavingsGoal
}

var _ finance.Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		expenses: make(map[finance.ExpenseID]finance.RecurringExpense),
		txIDs:    make(map[finance.TransactionID]bool),
	}
}

func (m *Memory) Salary(_ context.Context) (*finance.SalaryRule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.salary == nil {
		return nil, nil
	}
	s := *m.salary
	return &s, nil
}

func (m *Memory) SetSalary(_ context.Context, salary finance.SalaryRule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.salary = &salary
	return nil
}

func (m *Memory) ClearSalary(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.salary = nil
	return nil
}

// RecurringExpenses returns expenses ordered by ID for stable output.
func (m *Memory) RecurringExpenses(_ context.Context) ([]finance.RecurringExpense, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]finance.RecurringExpense, 0, len(m.expenses))
	for _, e := range m.expenses {
		result = append(result, e)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *Memory) PutRecurringExpense(_ context.Context, expense finance.RecurringExpense) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expenses[expense.ID] = expense
	return nil
}

func (m *Memory) RemoveRecurringExpense(_ context.Context, id finance.ExpenseID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.expenses[id]; !ok {
		return generic.ErrExpenseNotFound
	}
	delete(m.expenses, id)
	return nil
}

// AppendTransaction inserts in date order. Append-only.
func (m *Memory) AppendTransaction(_ context.Context, tx finance.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.txIDs[tx.ID] {
		return generic.ErrDuplicateTransaction
	}

	// Binary search keeps same-day transactions in insertion order
	i := sort.Search(len(m.transactions), func(i int) bool {
		return m.transactions[i].Date.After(tx.Date)
	})
	m.transactions = append(m.transactions, finance.Transaction{})
	copy(m.transactions[i+1:], m.transactions[i:])
	m.transactions[i] = tx
	m.txIDs[tx.ID] = true
	return nil
}

func (m *Memory) Transactions(_ context.Context) ([]finance.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]finance.Transaction, len(m.transactions))
	copy(result, m.transactions)
	return result, nil
}

func (m *Memory) TransactionsInRange(_ context.Context, from, to generic.Date) ([]finance.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	period := generic.Period{Start: from, End: to}
	var result []finance.Transaction
	for _, tx := range m.transactions {
		if period.Contains(tx.Date) {
			result = append(result, tx)
		}
	}
	return result, nil
}

func (m *Memory) SavingsGoal(_ context.Context) (*finance.SavingsGoal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.goal == nil {
		return nil, nil
	}
	g := *m.goal
	return &g, nil
}

func (m *Memory) SetSavingsGoal(_ context.Context, goal finance.SavingsGoal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.goal = &goal
	return nil
}

func (m *Memory) UpdateSavings(_ context.Context, currentSaved decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.goal == nil {
		return generic.ErrNoSavingsGoal
	}
	m.goal.CurrentSaved = currentSaved
	return nil
}

func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.salary = nil
	m.expenses = make(map[finance.ExpenseID]finance.RecurringExpense)
	m.transactions = nil
	m.txIDs = make(map[finance.TransactionID]bool)
	m.goal = nil
	return nil
}
