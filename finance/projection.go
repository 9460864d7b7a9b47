/*
projection.go - Forward-looking balance projection

PURPOSE:
  Answers "how much will my balance move between today and date X?" and
  "does anything happen on day Y?" by walking the calendar one day at a time.

ALGORITHM:
  For every day in [max(rangeStart, today), rangeEnd]:
    + salary amount          if the salary rule occurs that day
    - expense amount         for every recurring expense occurring that day
    +/- transaction amount   for every literal transaction dated that day

  The walk is O(days). Mixed frequencies with month-end clamping make a
  closed-form "next N occurrences" formula easy to get wrong; a few hundred
  iterations are cheap and trivially testable.

LENGTH LIMIT:
  A walk covers at most MaxDays days (DefaultMaxProjectionDays when unset).
  Longer ranges are rejected with ErrProjectionTooLong.

NO LOOKBACK:
  Projections only look forward. A range ending before today has no
  projection at all: ProjectBalance returns UndefinedProjectionError and the
  caller shows "no projection available", not zero.

ADDITIVITY:
  For today <= start <= mid < end:
    ProjectBalance(start, end) == ProjectBalance(start, mid) + ProjectBalance(mid+1, end)

SEE ALSO:
  - due.go: OccursOn semantics
  - savings.go: Goal simulation (independent of this file)
*/
package finance

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/finance-engine/generic"
)

// =============================================================================
// EVENTS
// =============================================================================

// EventSource tells where an event on a day comes from.
type EventSource string

const (
	SourceSalary           EventSource = "salary"
	SourceRecurringExpense EventSource = "recurring_expense"
	SourceTransaction      EventSource = "transaction"
)

// Event is one income or outflow on a given day.
// Projected events come from rules; literal ones from recorded transactions.
type Event struct {
	Date        generic.Date
	Kind        TransactionKind
	Source      EventSource
	Amount      decimal.Decimal
	Description string
	Category    string
	Projected   bool
	Ref         string
}

// Signed returns the event amount with its direction applied.
func (e Event) Signed() decimal.Decimal {
	return e.Kind.Sign().Apply(e.Amount)
}

// DayProjection is the projected movement for one day.
type DayProjection struct {
	Date       generic.Date
	Events     []Event
	Delta      decimal.Decimal
	Cumulative decimal.Decimal
}

// DayFlag marks whether a calendar cell has any event.
type DayFlag struct {
	Date     generic.Date
	HasEvent bool
}

// =============================================================================
// EVENT PROJECTOR
// =============================================================================

// DefaultMaxProjectionDays bounds a single walk to roughly five years.
const DefaultMaxProjectionDays = 5*365 + 1

// EventProjector projects balances and day events from rules and transactions.
// It holds no state; the zero value is ready to use.
type EventProjector struct {
	Due DueDateCalculator

	// MaxDays caps the number of days one projection walks.
	MaxDays int
}

// ProjectBalance returns the projected balance delta over [rangeStart, rangeEnd],
// never looking at days before today.
func (p EventProjector) ProjectBalance(
	rules Rules,
	txs []Transaction,
	rangeStart, rangeEnd generic.Date,
	today generic.Date,
) (decimal.Decimal, error) {
	period, err := p.forwardPeriod(rules, rangeStart, rangeEnd, today)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	period.Each(func(d generic.Date) bool {
		total = total.Add(recurringDelta(rules, d))
		return true
	})

	for _, tx := range txs {
		if period.Contains(tx.Date) {
			total = total.Add(tx.Signed())
		}
	}
	return total, nil
}

// ProjectedBalanceAt is the balance expected at the end of day at: everything
// recorded before today plus the projection over [today, at].
func (p EventProjector) ProjectedBalanceAt(
	rules Rules,
	txs []Transaction,
	at, today generic.Date,
) (decimal.Decimal, error) {
	delta, err := p.ProjectBalance(rules, txs, today, at, today)
	if err != nil {
		return decimal.Zero, err
	}
	return BalanceBefore(txs, today).Add(delta), nil
}

// Timeline returns the per-day projection over the same range ProjectBalance
// walks. Days without events are included with a zero delta.
func (p EventProjector) Timeline(
	rules Rules,
	txs []Transaction,
	rangeStart, rangeEnd generic.Date,
	today generic.Date,
) ([]DayProjection, error) {
	period, err := p.forwardPeriod(rules, rangeStart, rangeEnd, today)
	if err != nil {
		return nil, err
	}

	byDay := groupByDay(txs)
	out := make([]DayProjection, 0, period.Len())
	cumulative := decimal.Zero

	period.Each(func(d generic.Date) bool {
		events := dayEvents(rules, byDay[d], d)
		delta := decimal.Zero
		for _, e := range events {
			delta = delta.Add(e.Signed())
		}
		cumulative = cumulative.Add(delta)
		out = append(out, DayProjection{Date: d, Events: events, Delta: delta, Cumulative: cumulative})
		return true
	})
	return out, nil
}

// DayHasEvent reports whether any recurring rule fires on day or any literal
// income/expense is recorded on it.
func (p EventProjector) DayHasEvent(rules Rules, txs []Transaction, day generic.Date) (bool, error) {
	if err := rules.Validate(); err != nil {
		return false, err
	}
	for _, tx := range txs {
		if tx.Date.Equal(day) {
			return true, nil
		}
	}
	return hasRecurring(rules, day), nil
}

// DayEvents returns everything that happens on day, incomes first.
func (p EventProjector) DayEvents(rules Rules, txs []Transaction, day generic.Date) ([]Event, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	var literal []Transaction
	for _, tx := range txs {
		if tx.Date.Equal(day) {
			literal = append(literal, tx)
		}
	}
	return dayEvents(rules, literal, day), nil
}

// MonthEvents returns the has-event flag for every day of a month.
func (p EventProjector) MonthEvents(rules Rules, txs []Transaction, year int, month time.Month) ([]DayFlag, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	period := generic.MonthPeriod(year, month)
	byDay := groupByDay(txs)

	flags := make([]DayFlag, 0, period.Len())
	period.Each(func(d generic.Date) bool {
		flags = append(flags, DayFlag{Date: d, HasEvent: len(byDay[d]) > 0 || hasRecurring(rules, d)})
		return true
	})
	return flags, nil
}

// forwardPeriod validates the inputs and clips the range to start at today.
func (p EventProjector) forwardPeriod(rules Rules, rangeStart, rangeEnd, today generic.Date) (generic.Period, error) {
	if err := rules.Validate(); err != nil {
		return generic.Period{}, err
	}
	if rangeEnd.Before(rangeStart) {
		return generic.Period{}, generic.ErrInvalidPeriod
	}
	if rangeEnd.Before(today) {
		return generic.Period{}, &generic.UndefinedProjectionError{RangeEnd: rangeEnd, Today: today}
	}
	start := rangeStart
	if start.Before(today) {
		start = today
	}
	period := generic.Period{Start: start, End: rangeEnd}

	limit := p.MaxDays
	if limit <= 0 {
		limit = DefaultMaxProjectionDays
	}
	if period.Len() > limit {
		return generic.Period{}, fmt.Errorf("%w: %s spans %d days, limit is %d", generic.ErrProjectionTooLong, period, period.Len(), limit)
	}
	return period, nil
}

// =============================================================================
// HELPERS (rules are validated by the caller)
// =============================================================================

func recurringDelta(rules Rules, d generic.Date) decimal.Decimal {
	delta := decimal.Zero
	if rules.Salary != nil && occursOn(rules.Salary.RecurrenceRule, d) {
		delta = delta.Add(rules.Salary.Amount)
	}
	for _, e := range rules.Expenses {
		if occursOn(e.RecurrenceRule, d) {
			delta = delta.Sub(e.Amount)
		}
	}
	return delta
}

func hasRecurring(rules Rules, d generic.Date) bool {
	if rules.Salary != nil && occursOn(rules.Salary.RecurrenceRule, d) {
		return true
	}
	for _, e := range rules.Expenses {
		if occursOn(e.RecurrenceRule, d) {
			return true
		}
	}
	return false
}

func dayEvents(rules Rules, literal []Transaction, d generic.Date) []Event {
	var events []Event
	for _, tx := range literal {
		events = append(events, Event{
			Date:        d,
			Kind:        tx.Kind,
			Source:      SourceTransaction,
			Amount:      tx.Amount,
			Description: tx.Description,
			Category:    tx.Category,
			Ref:         string(tx.ID),
		})
	}

	if rules.Salary != nil && occursOn(rules.Salary.RecurrenceRule, d) {
		events = append(events, Event{
			Date:        d,
			Kind:        KindIncome,
			Source:      SourceSalary,
			Amount:      rules.Salary.Amount,
			Description: rules.Salary.Description,
			Category:    "salary",
			Projected:   true,
		})
	}
	for _, e := range rules.Expenses {
		if occursOn(e.RecurrenceRule, d) {
			events = append(events, Event{
				Date:        d,
				Kind:        KindExpense,
				Source:      SourceRecurringExpense,
				Amount:      e.Amount,
				Description: e.Description,
				Category:    e.Category,
				Projected:   true,
				Ref:         string(e.ID),
			})
		}
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Kind == KindIncome && events[j].Kind != KindIncome
	})
	return events
}

func groupByDay(txs []Transaction) map[generic.Date][]Transaction {
	byDay := make(map[generic.Date][]Transaction)
	for _, tx := range txs {
		byDay[tx.Date] = append(byDay[tx.Date], tx)
	}
	return byDay
}
