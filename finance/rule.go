/*
Package finance is the recurring finance event projection engine.

PURPOSE:
  Turns a salary schedule, recurring expenses and transaction history into
  concrete occurrence dates, a projected balance and a savings-goal
  simulation. Every function is pure: callers pass "today" explicitly and
  no state survives between calls.

KEY CONCEPTS IN THIS FILE (rule.go):
  - Frequency: closed enum of recurrence frequencies
  - RecurrenceRule: amount + frequency + anchor day
  - SalaryRule / RecurringExpense: income and outflow specialisations

ANCHOR DOMAINS:
  Daily:    anchor ignored
  Weekly:   weekday 0-6 (0 = Sunday)
  Biweekly: day-of-month 1-31, second payment 15 days later
  Monthly:  day-of-month 1-31
  Yearly:   AnchorMonth 1-12 and AnchorDay valid for that month (Feb 29 ok)

  Out-of-range anchors are rejected with generic.InvalidRuleError; they are
  never clamped at validation time. Clamping to month end only happens when
  an occurrence is placed in a shorter month.

SEE ALSO:
  - due.go: DueDateCalculator
  - projection.go: EventProjector
  - savings.go: SavingsSimulator
*/
package finance

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/finance-engine/generic"
)

// =============================================================================
// FREQUENCY
// =============================================================================

// Frequency is a closed set; every switch over it must handle all cases.
type Frequency int

const (
	Daily Frequency = iota + 1
	Weekly
	Biweekly
	Monthly
	Yearly
)

var frequencyNames = map[Frequency]string{
	Daily:    "daily",
	Weekly:   "weekly",
	Biweekly: "biweekly",
	Monthly:  "monthly",
	Yearly:   "yearly",
}

func (f Frequency) String() string {
	if name, ok := frequencyNames[f]; ok {
		return name
	}
	return fmt.Sprintf("frequency(%d)", int(f))
}

func (f Frequency) Valid() bool {
	_, ok := frequencyNames[f]
	return ok
}

// ParseFrequency maps a frequency name to its Frequency.
func ParseFrequency(s string) (Frequency, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for f, n := range frequencyNames {
		if n == name {
			return f, nil
		}
	}
	return 0, &generic.InvalidRuleError{Frequency: s, Reason: "unknown frequency"}
}

func (f Frequency) MarshalText() ([]byte, error) {
	if !f.Valid() {
		return nil, &generic.InvalidRuleError{Frequency: f.String(), Reason: "unknown frequency"}
	}
	return []byte(f.String()), nil
}

func (f *Frequency) UnmarshalText(b []byte) error {
	parsed, err := ParseFrequency(string(b))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// =============================================================================
// RECURRENCE RULE
// =============================================================================

// RecurrenceRule is "amount X, recurring with frequency F, anchored at day D".
type RecurrenceRule struct {
	Amount      decimal.Decimal
	Frequency   Frequency
	AnchorDay   int
	AnchorMonth time.Month // Yearly only
	Description string
}

// Validate checks the amount and that the anchor lies in its frequency's domain.
func (r RecurrenceRule) Validate() error {
	if r.Amount.IsNegative() {
		return &generic.InvalidRuleError{Frequency: r.Frequency.String(), Reason: "amount must not be negative"}
	}

	switch r.Frequency {
	case Daily:
		return nil
	case Weekly:
		return r.checkRange("anchor_day", r.AnchorDay, 0, 6)
	case Biweekly, Monthly:
		return r.checkRange("anchor_day", r.AnchorDay, 1, 31)
	case Yearly:
		if err := r.checkRange("anchor_month", int(r.AnchorMonth), 1, 12); err != nil {
			return err
		}
		// 2000 is a leap year, so Feb 29 is accepted as an anchor.
		return r.checkRange("anchor_day", r.AnchorDay, 1, generic.DaysIn(2000, r.AnchorMonth))
	default:
		return &generic.InvalidRuleError{Frequency: r.Frequency.String(), Reason: "unknown frequency"}
	}
}

func (r RecurrenceRule) checkRange(field string, v, lo, hi int) error {
	if v < lo || v > hi {
		return &generic.InvalidRuleError{
			Frequency: r.Frequency.String(),
			Field:     field,
			Value:     v,
			Reason:    fmt.Sprintf("must be within %d-%d", lo, hi),
		}
	}
	return nil
}

// =============================================================================
// SALARY AND RECURRING EXPENSES
// =============================================================================

// SalaryRule is the single active income schedule.
type SalaryRule struct {
	RecurrenceRule
}

// ExpenseID identifies a recurring expense for its whole lifetime.
type ExpenseID string

// RecurringExpense is an outflow schedule. It is replaced wholesale, never
// edited in place.
type RecurringExpense struct {
	RecurrenceRule
	ID       ExpenseID
	Category string
}

// Rules groups everything the projector walks over.
type Rules struct {
	Salary   *SalaryRule
	Expenses []RecurringExpense
}

// Validate checks the salary and every expense.
func (rs Rules) Validate() error {
	if rs.Salary != nil {
		if err := rs.Salary.Validate(); err != nil {
			return fmt.Errorf("salary: %w", err)
		}
	}
	for _, e := range rs.Expenses {
		if err := e.Validate(); err != nil {
			return fmt.Errorf("recurring expense %s: %w", e.ID, err)
		}
	}
	return nil
}
