package finance

import (
	"github.com/shopspring/decimal"
	"github.com/warp/finance-engine/generic"
)

// =============================================================================
// MONTHLY EQUIVALENTS
// =============================================================================

var (
	daysPerMonth  = decimal.NewFromInt(30)
	weeksPerMonth = decimal.RequireFromString("4.33")
	monthsPerYear = decimal.NewFromInt(12)
)

// MonthlyEquivalent converts a rule's amount to an average monthly amount.
// Weekly uses 4.33 weeks per month, daily 30 days.
func MonthlyEquivalent(rule RecurrenceRule) (decimal.Decimal, error) {
	if err := rule.Validate(); err != nil {
		return decimal.Zero, err
	}
	switch rule.Frequency {
	case Daily:
		return rule.Amount.Mul(daysPerMonth), nil
	case Weekly:
		return rule.Amount.Mul(weeksPerMonth), nil
	case Biweekly:
		return rule.Amount.Mul(decimal.NewFromInt(2)), nil
	case Monthly:
		return rule.Amount, nil
	case Yearly:
		return rule.Amount.Div(monthsPerYear), nil
	default:
		return decimal.Zero, &generic.InvalidRuleError{Frequency: rule.Frequency.String(), Reason: "unknown frequency"}
	}
}

// MonthlyBudget is the average month implied by the recurring rules.
type MonthlyBudget struct {
	Income    decimal.Decimal
	Expenses  decimal.Decimal
	Potential decimal.Decimal // max(0, Income - Expenses)
}

// PotentialMonthlySavings sums monthly equivalents of salary and expenses.
func PotentialMonthlySavings(rules Rules) (MonthlyBudget, error) {
	var b MonthlyBudget
	if rules.Salary != nil {
		income, err := MonthlyEquivalent(rules.Salary.RecurrenceRule)
		if err != nil {
			return MonthlyBudget{}, err
		}
		b.Income = income
	}
	for _, e := range rules.Expenses {
		amount, err := MonthlyEquivalent(e.RecurrenceRule)
		if err != nil {
			return MonthlyBudget{}, err
		}
		b.Expenses = b.Expenses.Add(amount)
	}
	b.Potential = decimal.Max(decimal.Zero, b.Income.Sub(b.Expenses))
	return b, nil
}

// =============================================================================
// HISTORY AGGREGATES
// =============================================================================

// CategoryTotals sums transaction amounts of one kind per category.
func CategoryTotals(txs []Transaction, kind TransactionKind) map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal)
	for _, tx := range txs {
		if tx.Kind != kind {
			continue
		}
		totals[tx.Category] = totals[tx.Category].Add(tx.Amount)
	}
	return totals
}

// PeriodTotals is income, expense and net over a period.
type PeriodTotals struct {
	Period  generic.Period
	Income  decimal.Decimal
	Expense decimal.Decimal
	Net     decimal.Decimal
}

// Totals sums literal transactions dated inside period.
func Totals(txs []Transaction, period generic.Period) PeriodTotals {
	t := PeriodTotals{Period: period}
	for _, tx := range txs {
		if !period.Contains(tx.Date) {
			continue
		}
		switch tx.Kind {
		case KindIncome:
			t.Income = t.Income.Add(tx.Amount)
		case KindExpense:
			t.Expense = t.Expense.Add(tx.Amount)
		}
	}
	t.Net = t.Income.Sub(t.Expense)
	return t
}
