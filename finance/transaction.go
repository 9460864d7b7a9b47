package finance

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/finance-engine/generic"
)

// =============================================================================
// TRANSACTION - Immutable income or expense record
// =============================================================================

type TransactionKind string

const (
	KindIncome  TransactionKind = "income"
	KindExpense TransactionKind = "expense"
)

func (k TransactionKind) Sign() generic.Sign {
	if k == KindExpense {
		return generic.Outflow
	}
	return generic.Inflow
}

type TransactionID string

// Transaction is a literal, already-recorded income or expense.
// Amount is always non-negative; Kind carries the direction.
type Transaction struct {
	ID          TransactionID
	Kind        TransactionKind
	Amount      decimal.Decimal
	Date        generic.Date
	Description string
	Category    string
}

// Signed returns the amount with its direction applied.
func (t Transaction) Signed() decimal.Decimal {
	return t.Kind.Sign().Apply(t.Amount)
}

func (t Transaction) Validate() error {
	switch t.Kind {
	case KindIncome, KindExpense:
	default:
		return fmt.Errorf("%w: unknown kind %q", generic.ErrInvalidTransaction, t.Kind)
	}
	if t.Amount.IsNegative() {
		return fmt.Errorf("%w: amount must not be negative", generic.ErrInvalidTransaction)
	}
	if t.Date.IsZero() {
		return fmt.Errorf("%w: date is required", generic.ErrInvalidTransaction)
	}
	return nil
}

// RunningBalance is the signed sum over all transactions.
func RunningBalance(txs []Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		total = total.Add(tx.Signed())
	}
	return total
}

// BalanceBefore is the signed sum of transactions dated strictly before day.
func BalanceBefore(txs []Transaction, day generic.Date) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		if tx.Date.Before(day) {
			total = total.Add(tx.Signed())
		}
	}
	return total
}

// =============================================================================
// SAVINGS GOAL
// =============================================================================

// SavingsGoal is replaced by the user as a whole; CurrentSaved moves on its own.
type SavingsGoal struct {
	TargetAmount decimal.Decimal
	Deadline     generic.Date
	CurrentSaved decimal.Decimal
}
