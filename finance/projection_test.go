package finance_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/finance-engine/finance"
	"github.com/warp/finance-engine/generic"
)

// =============================================================================
// TEST FIXTURES
// =============================================================================

// Salary 3000 on the 25th, rent 1200 on the 1st, streaming 15.99 on the 12th.
func householdRules() finance.Rules {
	return finance.Rules{
		Salary: &finance.SalaryRule{RecurrenceRule: finance.RecurrenceRule{
			Amount: money("3000"), Frequency: finance.Monthly, AnchorDay: 25, Description: "Salary",
		}},
		Expenses: []finance.RecurringExpense{
			{ID: "rent", Category: "housing", RecurrenceRule: finance.RecurrenceRule{
				Amount: money("1200"), Frequency: finance.Monthly, AnchorDay: 1, Description: "Rent",
			}},
			{ID: "streaming", Category: "subscriptions", RecurrenceRule: finance.RecurrenceRule{
				Amount: money("15.99"), Frequency: finance.Monthly, AnchorDay: 12, Description: "Streaming",
			}},
		},
	}
}

func tx(id string, kind finance.TransactionKind, amount, date string) finance.Transaction {
	return finance.Transaction{ID: finance.TransactionID(id), Kind: kind, Amount: money(amount), Date: d(date)}
}

var projector finance.EventProjector

// =============================================================================
// PROJECT BALANCE
// =============================================================================

func TestProjectBalance_SalaryMinusExpense(t *testing.T) {
	// GIVEN: Salary 1000 on the 1st and one expense of 200 on the 15th
	rules := finance.Rules{
		Salary: &finance.SalaryRule{RecurrenceRule: finance.RecurrenceRule{
			Amount: money("1000"), Frequency: finance.Monthly, AnchorDay: 1,
		}},
		Expenses: []finance.RecurringExpense{
			{ID: "e1", RecurrenceRule: finance.RecurrenceRule{Amount: money("200"), Frequency: finance.Monthly, AnchorDay: 15}},
		},
	}
	today := d("2024-01-01")

	// WHEN: Projecting January
	delta, err := projector.ProjectBalance(rules, nil, today, d("2024-01-31"), today)

	// THEN: +1000 - 200
	require.NoError(t, err)
	assertDecimal(t, "800", delta)
}

func TestProjectBalance_IncludesFutureTransactionsOnly(t *testing.T) {
	// GIVEN: One transaction before today and one inside the range
	today := d("2025-06-10")
	txs := []finance.Transaction{
		tx("old", finance.KindIncome, "500", "2025-06-05"),
		tx("dinner", finance.KindExpense, "100", "2025-06-15"),
		tx("later", finance.KindIncome, "999", "2025-08-01"),
	}

	// WHEN: Projecting one month ahead
	delta, err := projector.ProjectBalance(householdRules(), txs, today, d("2025-07-10"), today)

	// THEN: -15.99 (Jun 12) +3000 (Jun 25) -1200 (Jul 1) -100 (dinner)
	require.NoError(t, err)
	assertDecimal(t, "1684.01", delta)
}

func TestProjectBalance_TodayOnlyHasNoLookback(t *testing.T) {
	rules := householdRules()

	delta, err := projector.ProjectBalance(rules, nil, d("2025-06-12"), d("2025-06-12"), d("2025-06-12"))
	require.NoError(t, err)
	assertDecimal(t, "-15.99", delta)

	delta, err = projector.ProjectBalance(rules, nil, d("2025-06-13"), d("2025-06-13"), d("2025-06-13"))
	require.NoError(t, err)
	assert.True(t, delta.IsZero())
}

func TestProjectBalance_ClipsRangeStartToToday(t *testing.T) {
	// GIVEN: A range that starts before today
	today := d("2025-06-10")

	// WHEN: Projecting from May 1
	clipped, err := projector.ProjectBalance(householdRules(), nil, d("2025-05-01"), d("2025-06-30"), today)
	require.NoError(t, err)
	fromToday, err := projector.ProjectBalance(householdRules(), nil, today, d("2025-06-30"), today)
	require.NoError(t, err)

	// THEN: Days before today contribute nothing
	assert.True(t, clipped.Equal(fromToday))
	assertDecimal(t, "2984.01", clipped)
}

func TestProjectBalance_PastRangeIsUndefined(t *testing.T) {
	// GIVEN: A range ending yesterday
	today := d("2025-06-10")

	// WHEN: Projecting it
	_, err := projector.ProjectBalance(householdRules(), nil, d("2025-06-01"), d("2025-06-09"), today)

	// THEN: No projection is available, which is not the same as zero
	var undefined *generic.UndefinedProjectionError
	require.ErrorAs(t, err, &undefined)
	assert.Equal(t, d("2025-06-09"), undefined.RangeEnd)
	assert.Equal(t, today, undefined.Today)
	assert.True(t, errors.Is(err, generic.ErrUndefinedProjection))
}

func TestProjectBalance_EndBeforeStart(t *testing.T) {
	today := d("2025-06-10")

	_, err := projector.ProjectBalance(householdRules(), nil, d("2025-06-20"), d("2025-06-15"), today)
	assert.True(t, errors.Is(err, generic.ErrInvalidPeriod))
}

func TestProjectBalance_InvalidRule(t *testing.T) {
	rules := householdRules()
	rules.Salary.AnchorDay = 40

	_, err := projector.ProjectBalance(rules, nil, d("2025-06-10"), d("2025-06-30"), d("2025-06-10"))
	assert.True(t, errors.Is(err, generic.ErrInvalidRule))
}

func TestProjectBalance_IsAdditive(t *testing.T) {
	// GIVEN: Mixed frequencies and a few future transactions
	rules := householdRules()
	rules.Expenses = append(rules.Expenses,
		finance.RecurringExpense{ID: "groceries", RecurrenceRule: finance.RecurrenceRule{
			Amount: money("87.30"), Frequency: finance.Weekly, AnchorDay: int(time.Saturday),
		}},
		finance.RecurringExpense{ID: "insurance", RecurrenceRule: finance.RecurrenceRule{
			Amount: money("960"), Frequency: finance.Yearly, AnchorMonth: time.August, AnchorDay: 31,
		}},
		finance.RecurringExpense{ID: "coffee", RecurrenceRule: finance.RecurrenceRule{
			Amount: money("3.50"), Frequency: finance.Daily,
		}},
	)
	txs := []finance.Transaction{
		tx("a", finance.KindExpense, "40", "2025-06-20"),
		tx("b", finance.KindIncome, "250", "2025-07-31"),
		tx("c", finance.KindExpense, "12.75", "2025-09-30"),
	}
	today := d("2025-06-10")
	start, end := today, d("2025-09-30")

	whole, err := projector.ProjectBalance(rules, txs, start, end, today)
	require.NoError(t, err)

	// WHEN/THEN: Splitting at every day gives the same total
	period := generic.Period{Start: start, End: end}
	for mid := start; mid.Before(end); mid = mid.AddDays(1) {
		lp, rp := period.Split(mid)
		left, err := projector.ProjectBalance(rules, txs, lp.Start, lp.End, today)
		require.NoError(t, err)
		right, err := projector.ProjectBalance(rules, txs, rp.Start, rp.End, today)
		require.NoError(t, err)

		require.True(t, whole.Equal(left.Add(right)), "split at %s: %s != %s + %s", mid, whole, left, right)
	}
}

func TestProjectBalance_EmptyRules(t *testing.T) {
	delta, err := projector.ProjectBalance(finance.Rules{}, nil, d("2025-06-10"), d("2026-06-10"), d("2025-06-10"))
	require.NoError(t, err)
	assert.True(t, delta.IsZero())
}

func TestProjectBalance_RejectsRangesLongerThanLimit(t *testing.T) {
	today := d("2025-06-10")

	// GIVEN: A projector limited to 31 days
	limited := finance.EventProjector{MaxDays: 31}

	// WHEN/THEN: 31 days pass, 32 are a client error
	_, err := limited.ProjectBalance(householdRules(), nil, today, d("2025-07-10"), today)
	require.NoError(t, err)
	_, err = limited.ProjectBalance(householdRules(), nil, today, d("2025-07-11"), today)
	assert.True(t, errors.Is(err, generic.ErrProjectionTooLong))
	assert.True(t, generic.IsClientError(err))

	// The limit applies to the clipped range, not the requested one
	_, err = limited.ProjectBalance(householdRules(), nil, d("2020-01-01"), d("2025-07-10"), today)
	assert.NoError(t, err)

	_, err = limited.Timeline(householdRules(), nil, today, d("2025-08-01"), today)
	assert.True(t, errors.Is(err, generic.ErrInvalidPeriod))

	// The zero value falls back to the default limit
	_, err = projector.Timeline(householdRules(), nil, today, d("9999-12-31"), today)
	assert.True(t, errors.Is(err, generic.ErrProjectionTooLong))
	_, err = projector.ProjectBalance(householdRules(), nil, today, today.AddDays(finance.DefaultMaxProjectionDays-1), today)
	assert.NoError(t, err)
}

// =============================================================================
// PROJECTED BALANCE
// =============================================================================

func TestProjectedBalanceAt_CountsFromToday(t *testing.T) {
	// GIVEN: 500 recorded before today and a future expense
	today := d("2025-06-10")
	txs := []finance.Transaction{
		tx("opening", finance.KindIncome, "500", "2025-06-01"),
		tx("dinner", finance.KindExpense, "100", "2025-06-15"),
	}

	// WHEN: Asking for the balance at July 10th
	at, err := projector.ProjectedBalanceAt(householdRules(), txs, d("2025-07-10"), today)
	require.NoError(t, err)

	// THEN: 500 - 15.99 - 100 + 3000 - 1200
	assertDecimal(t, "2184.01", at)

	// A window starting later only changes the delta, not the balance at its end
	delta, err := projector.ProjectBalance(householdRules(), txs, d("2025-07-01"), d("2025-07-10"), today)
	require.NoError(t, err)
	assertDecimal(t, "-1200", delta)

	_, err = projector.ProjectedBalanceAt(householdRules(), txs, d("2025-06-09"), today)
	assert.True(t, errors.Is(err, generic.ErrUndefinedProjection))
}

func TestBalanceBefore(t *testing.T) {
	txs := []finance.Transaction{
		tx("a", finance.KindIncome, "100", "2025-06-01"),
		tx("b", finance.KindExpense, "30", "2025-06-09"),
		tx("c", finance.KindExpense, "50", "2025-06-10"),
	}
	assertDecimal(t, "70", finance.BalanceBefore(txs, d("2025-06-10")))
	assertDecimal(t, "0", finance.BalanceBefore(txs, d("2025-06-01")))
}

// =============================================================================
// TIMELINE
// =============================================================================

func TestTimeline_MatchesProjectBalance(t *testing.T) {
	// GIVEN: The household rules and a future expense
	today := d("2025-06-10")
	end := d("2025-07-10")
	txs := []finance.Transaction{tx("dinner", finance.KindExpense, "100", "2025-06-15")}

	// WHEN: Building the timeline
	days, err := projector.Timeline(householdRules(), txs, today, end, today)
	require.NoError(t, err)

	// THEN: One entry per day, cumulative ends at the projected delta
	assert.Len(t, days, 31)
	total, err := projector.ProjectBalance(householdRules(), txs, today, end, today)
	require.NoError(t, err)
	assert.True(t, days[len(days)-1].Cumulative.Equal(total))

	for _, day := range days {
		if day.Date.Equal(d("2025-06-25")) {
			require.Len(t, day.Events, 1)
			assert.Equal(t, finance.SourceSalary, day.Events[0].Source)
			assertDecimal(t, "3000", day.Delta)
		}
		if day.Date.Equal(d("2025-06-20")) {
			assert.Empty(t, day.Events)
			assert.True(t, day.Delta.IsZero())
		}
	}
}

// =============================================================================
// DAY EVENTS
// =============================================================================

func TestDayHasEvent(t *testing.T) {
	// GIVEN: A weekly rule on Wednesday
	rules := finance.Rules{Expenses: []finance.RecurringExpense{
		{ID: "cleaning", RecurrenceRule: finance.RecurrenceRule{Amount: money("40"), Frequency: finance.Weekly, AnchorDay: int(time.Wednesday)}},
	}}

	ok, err := projector.DayHasEvent(rules, nil, d("2025-06-11"))
	require.NoError(t, err)
	assert.True(t, ok, "recurring occurrence")

	ok, err = projector.DayHasEvent(rules, nil, d("2025-06-12"))
	require.NoError(t, err)
	assert.False(t, ok)

	// WHEN: A literal expense is recorded on an otherwise empty day
	txs := []finance.Transaction{tx("taxi", finance.KindExpense, "23", "2025-06-12")}

	// THEN: The day is flagged
	ok, err = projector.DayHasEvent(rules, txs, d("2025-06-12"))
	require.NoError(t, err)
	assert.True(t, ok, "literal transaction")
}

func TestDayEvents_IncomesFirst(t *testing.T) {
	// GIVEN: A literal expense recorded on payday
	txs := []finance.Transaction{
		{ID: "dinner", Kind: finance.KindExpense, Amount: money("40"), Date: d("2025-06-25"), Description: "Dinner", Category: "food"},
	}

	// WHEN: Listing the day's events
	events, err := projector.DayEvents(householdRules(), txs, d("2025-06-25"))
	require.NoError(t, err)

	// THEN: The salary comes before the expense
	require.Len(t, events, 2)
	assert.Equal(t, finance.SourceSalary, events[0].Source)
	assert.True(t, events[0].Projected)
	assert.Equal(t, finance.SourceTransaction, events[1].Source)
	assert.Equal(t, "dinner", events[1].Ref)
	assertDecimal(t, "-40", events[1].Signed())
}

func TestMonthEvents_ClampedAnchor(t *testing.T) {
	// GIVEN: A monthly rule on the 31st
	rules := finance.Rules{Expenses: []finance.RecurringExpense{
		{ID: "loan", RecurrenceRule: finance.RecurrenceRule{Amount: money("300"), Frequency: finance.Monthly, AnchorDay: 31}},
	}}

	// WHEN: Building the February calendar
	flags, err := projector.MonthEvents(rules, nil, 2025, time.February)
	require.NoError(t, err)

	// THEN: Only the last day is flagged
	require.Len(t, flags, 28)
	for _, f := range flags {
		assert.Equal(t, f.Date.Day() == 28, f.HasEvent, "day %s", f.Date)
	}
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

func TestRunningBalance(t *testing.T) {
	txs := []finance.Transaction{
		tx("1", finance.KindIncome, "1000", "2025-01-01"),
		tx("2", finance.KindExpense, "250.50", "2025-01-02"),
		tx("3", finance.KindExpense, "49.50", "2025-01-03"),
	}
	assertDecimal(t, "700", finance.RunningBalance(txs))
	assert.True(t, finance.RunningBalance(nil).IsZero())
}

func TestTransaction_Validate(t *testing.T) {
	ok := tx("1", finance.KindIncome, "10", "2025-01-01")
	assert.NoError(t, ok.Validate())

	negative := tx("2", finance.KindExpense, "-10", "2025-01-01")
	assert.True(t, errors.Is(negative.Validate(), generic.ErrInvalidTransaction))

	noDate := finance.Transaction{ID: "3", Kind: finance.KindIncome, Amount: money("1")}
	assert.True(t, errors.Is(noDate.Validate(), generic.ErrInvalidTransaction))

	badKind := tx("4", "refund", "10", "2025-01-01")
	assert.True(t, errors.Is(badKind.Validate(), generic.ErrInvalidTransaction))
}
