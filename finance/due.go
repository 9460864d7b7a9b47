/*
due.go - Occurrence dates for recurrence rules

PURPOSE:
  The single place that knows when a rule fires. Calendars, reminders and
  balance projections all go through DueDateCalculator instead of re-deriving
  the frequency rules.

TWO QUESTIONS, TWO CALLERS:
  OccursOn(rule, day)       calendar highlighting, includes the day itself
  NextOccurrence(rule, from) reminders, always strictly after from

  A weekly rule anchored on Monday, asked on a Monday:
    OccursOn        -> true
    NextOccurrence  -> the following Monday (+7 days)

MONTH-END CLAMPING:
  Monthly anchor 31:   Feb 28/29, Apr 30, ...
  Biweekly anchor 20:  20th and 35th -> Feb 20 and Feb 28
  Yearly Feb 29:       Feb 28 in non-leap years

SEE ALSO:
  - rule.go: RecurrenceRule and anchor domains
  - projection.go: Walks days with OccursOn
*/
package finance

import (
	"github.com/warp/finance-engine/generic"
)

// biweeklyGap is the distance in days between the two payments of a
// biweekly rule within a month.
const biweeklyGap = 15

// DueDateCalculator answers occurrence questions for a RecurrenceRule.
// The zero value is ready to use and safe for concurrent use.
type DueDateCalculator struct{}

// NextOccurrence returns the first occurrence strictly after from.
func (DueDateCalculator) NextOccurrence(rule RecurrenceRule, from generic.Date) (generic.Date, error) {
	if err := rule.Validate(); err != nil {
		return generic.Date{}, err
	}

	switch rule.Frequency {
	case Daily:
		return from.AddDays(1), nil

	case Weekly:
		ahead := (rule.AnchorDay - int(from.Weekday()) + 7) % 7
		if ahead == 0 {
			ahead = 7
		}
		return from.AddDays(ahead), nil

	case Biweekly:
		first, second := biweeklyDays(rule, from)
		switch {
		case from.Before(first):
			return first, nil
		case from.Before(second):
			return second, nil
		default:
			next, _ := biweeklyDays(rule, generic.StartOfMonth(from.Year(), from.Month()).AddMonths(1))
			return next, nil
		}

	case Monthly:
		thisMonth := generic.ClampedDate(from.Year(), from.Month(), rule.AnchorDay)
		if from.Before(thisMonth) {
			return thisMonth, nil
		}
		next := generic.StartOfMonth(from.Year(), from.Month()).AddMonths(1)
		return generic.ClampedDate(next.Year(), next.Month(), rule.AnchorDay), nil

	case Yearly:
		thisYear := generic.ClampedDate(from.Year(), rule.AnchorMonth, rule.AnchorDay)
		if from.Before(thisYear) {
			return thisYear, nil
		}
		return generic.ClampedDate(from.Year()+1, rule.AnchorMonth, rule.AnchorDay), nil

	default:
		return generic.Date{}, &generic.InvalidRuleError{Frequency: rule.Frequency.String(), Reason: "unknown frequency"}
	}
}

// OccursOn reports whether the rule fires on day.
func (DueDateCalculator) OccursOn(rule RecurrenceRule, day generic.Date) (bool, error) {
	if err := rule.Validate(); err != nil {
		return false, err
	}
	return occursOn(rule, day), nil
}

// Occurrences returns every day in period on which the rule fires.
func (c DueDateCalculator) Occurrences(rule RecurrenceRule, period generic.Period) ([]generic.Date, error) {
	if err := rule.Validate(); err != nil {
		return nil, err
	}
	if period.End.Before(period.Start) {
		return nil, generic.ErrInvalidPeriod
	}

	var dates []generic.Date
	period.Each(func(d generic.Date) bool {
		if occursOn(rule, d) {
			dates = append(dates, d)
		}
		return true
	})
	return dates, nil
}

// occursOn assumes rule has been validated.
func occursOn(rule RecurrenceRule, day generic.Date) bool {
	switch rule.Frequency {
	case Daily:
		return true
	case Weekly:
		return int(day.Weekday()) == rule.AnchorDay
	case Biweekly:
		first, second := biweeklyDays(rule, day)
		return day.Equal(first) || day.Equal(second)
	case Monthly:
		return day.Equal(generic.ClampedDate(day.Year(), day.Month(), rule.AnchorDay))
	case Yearly:
		return day.Equal(generic.ClampedDate(day.Year(), rule.AnchorMonth, rule.AnchorDay))
	default:
		return false
	}
}

// biweeklyDays returns the two payment days in the month containing d.
// Both are clamped to the month's last day, so they may coincide.
func biweeklyDays(rule RecurrenceRule, d generic.Date) (generic.Date, generic.Date) {
	first := generic.ClampedDate(d.Year(), d.Month(), rule.AnchorDay)
	second := generic.ClampedDate(d.Year(), d.Month(), rule.AnchorDay+biweeklyGap)
	return first, second
}
