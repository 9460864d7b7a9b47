package generic_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/finance-engine/generic"
)

// =============================================================================
// DATE ARITHMETIC
// =============================================================================

func TestDate_AddMonthsClampsToMonthEnd(t *testing.T) {
	tests := []struct {
		name   string
		from   string
		months int
		want   string
	}{
		{"jan 31 to feb (non-leap)", "2025-01-31", 1, "2025-02-28"},
		{"jan 31 to feb (leap)", "2024-01-31", 1, "2024-02-29"},
		{"mar 31 to apr", "2025-03-31", 1, "2025-04-30"},
		{"mid-month unchanged", "2025-01-15", 1, "2025-02-15"},
		{"across year", "2025-11-30", 3, "2026-02-28"},
		{"backwards", "2025-03-31", -1, "2025-02-28"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := generic.MustParseDate(tt.from).AddMonths(tt.months)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestDate_AddYearsLeapDay(t *testing.T) {
	leap := generic.NewDate(2024, time.February, 29)

	assert.Equal(t, "2025-02-28", leap.AddYears(1).String())
	assert.Equal(t, "2028-02-29", leap.AddYears(4).String())
}

func TestDateOf_DropsTimeOfDay(t *testing.T) {
	morning := time.Date(2025, time.June, 3, 7, 30, 0, 0, time.UTC)
	evening := time.Date(2025, time.June, 3, 23, 59, 59, 0, time.UTC)

	assert.True(t, generic.DateOf(morning).Equal(generic.DateOf(evening)))
	assert.Equal(t, generic.DateOf(morning), generic.DateOf(evening), "dates are usable as map keys")
}

func TestParseDate_RejectsGarbage(t *testing.T) {
	_, err := generic.ParseDate("2025-13-01")
	assert.Error(t, err)

	_, err = generic.ParseDate("not a date")
	assert.Error(t, err)
}

func TestDate_TextRoundTrip(t *testing.T) {
	d := generic.NewDate(2025, time.March, 9)

	b, err := d.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "2025-03-09", string(b))

	var back generic.Date
	require.NoError(t, back.UnmarshalText(b))
	assert.True(t, back.Equal(d))

	var empty generic.Date
	require.NoError(t, empty.UnmarshalText(nil))
	assert.True(t, empty.IsZero())
}

// =============================================================================
// CALENDAR UTILITIES
// =============================================================================

func TestClampedDate(t *testing.T) {
	assert.Equal(t, "2025-02-28", generic.ClampedDate(2025, time.February, 31).String())
	assert.Equal(t, "2024-02-29", generic.ClampedDate(2024, time.February, 30).String())
	assert.Equal(t, "2025-04-30", generic.ClampedDate(2025, time.April, 31).String())
	assert.Equal(t, "2025-04-01", generic.ClampedDate(2025, time.April, 0).String())
}

func TestDaysIn_LeapYears(t *testing.T) {
	assert.Equal(t, 29, generic.DaysIn(2024, time.February))
	assert.Equal(t, 29, generic.DaysIn(2000, time.February))
	assert.Equal(t, 28, generic.DaysIn(1900, time.February))
	assert.Equal(t, 28, generic.DaysIn(2025, time.February))
}

func TestDaysBetween(t *testing.T) {
	a := generic.MustParseDate("2025-02-27")
	b := generic.MustParseDate("2025-03-02")

	assert.Equal(t, 3, generic.DaysBetween(a, b))
	assert.Equal(t, -3, generic.DaysBetween(b, a))
	assert.Equal(t, 0, generic.DaysBetween(a, a))
}

func TestWholeMonthsBetween(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"2025-01-15", "2025-07-15", 6},
		{"2025-01-15", "2025-07-14", 5},
		{"2025-01-31", "2025-02-28", 1},
		{"2024-01-31", "2024-02-28", 0},
		{"2024-01-31", "2024-02-29", 1},
		{"2025-01-01", "2025-01-31", 0},
		{"2025-03-10", "2026-03-10", 12},
		{"2025-07-15", "2025-01-15", -6},
	}

	for _, tt := range tests {
		t.Run(tt.a+"->"+tt.b, func(t *testing.T) {
			got := generic.WholeMonthsBetween(generic.MustParseDate(tt.a), generic.MustParseDate(tt.b))
			assert.Equal(t, tt.want, got)
		})
	}
}

// =============================================================================
// PERIOD
// =============================================================================

func TestNewPeriod_RejectsEndBeforeStart(t *testing.T) {
	_, err := generic.NewPeriod(generic.MustParseDate("2025-02-02"), generic.MustParseDate("2025-02-01"))
	assert.True(t, errors.Is(err, generic.ErrInvalidPeriod))

	p, err := generic.NewPeriod(generic.MustParseDate("2025-02-01"), generic.MustParseDate("2025-02-01"))
	require.NoError(t, err)
	assert.Equal(t, 1, p.Len())
}

func TestPeriod_LenAndContains(t *testing.T) {
	p := generic.MonthPeriod(2024, time.February)

	assert.Equal(t, 29, p.Len())
	assert.Equal(t, "2024-02-01", p.Start.String())
	assert.Equal(t, "2024-02-29", p.End.String())

	assert.True(t, p.Contains(generic.MustParseDate("2024-02-29")))
	assert.False(t, p.Contains(generic.MustParseDate("2024-03-01")))
}

func TestPeriod_EachStopsEarly(t *testing.T) {
	p := generic.MonthPeriod(2025, time.January)

	visited := 0
	p.Each(func(d generic.Date) bool {
		visited++
		return d.Day() < 5
	})
	assert.Equal(t, 5, visited)
}

func TestPeriod_Split(t *testing.T) {
	p := generic.MonthPeriod(2025, time.January)

	left, right := p.Split(generic.MustParseDate("2025-01-10"))
	assert.Equal(t, 10, left.Len())
	assert.Equal(t, 21, right.Len())
	assert.Equal(t, p.Len(), left.Len()+right.Len())
}

// =============================================================================
// MONEY AND ERRORS
// =============================================================================

func TestParseDecimal(t *testing.T) {
	d, err := generic.ParseDecimal("1000.50")
	require.NoError(t, err)
	assert.Equal(t, "1000.5", d.String())

	_, err = generic.ParseDecimal("12,50")
	assert.Error(t, err)
}

func TestRoundMoney(t *testing.T) {
	assert.Equal(t, "0.33", generic.RoundMoney(generic.MustParseDecimal("1").Div(generic.MustParseDecimal("3"))).StringFixed(2))
	assert.Equal(t, "2.68", generic.RoundMoney(generic.MustParseDecimal("2.675")).StringFixed(2))
}

func TestSign_Apply(t *testing.T) {
	amount := generic.MustParseDecimal("10")
	assert.True(t, generic.Inflow.Apply(amount).Equal(amount))
	assert.True(t, generic.Outflow.Apply(amount).Equal(amount.Neg()))
}

func TestErrorClassification(t *testing.T) {
	ruleErr := &generic.InvalidRuleError{Frequency: "weekly", Field: "anchor_day", Value: 7, Reason: "must be within 0-6"}
	goalErr := &generic.InvalidGoalError{Field: "deadline", Reason: "must be after today"}
	projErr := &generic.UndefinedProjectionError{RangeEnd: generic.MustParseDate("2025-01-01"), Today: generic.MustParseDate("2025-02-01")}

	assert.True(t, errors.Is(ruleErr, generic.ErrInvalidRule))
	assert.True(t, generic.IsClientError(ruleErr))
	assert.True(t, generic.IsClientError(goalErr))
	assert.False(t, generic.IsClientError(projErr), "undefined projection is not an input error")
	assert.True(t, errors.Is(projErr, generic.ErrUndefinedProjection))

	assert.True(t, generic.IsNotFound(generic.ErrNoSalary))
	assert.True(t, generic.IsConflict(generic.ErrDuplicateTransaction))
	assert.Contains(t, ruleErr.Error(), "anchor_day=7")
}
