package finance

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/warp/finance-engine/generic"
)

// DefaultReminderWindow is how many days ahead upcoming payments are reported.
const DefaultReminderWindow = 3

// UpcomingPayment is a recurring expense coming due soon.
type UpcomingPayment struct {
	Expense RecurringExpense
	DueDate generic.Date
	InDays  int
}

// UpcomingPayments returns expenses whose next occurrence after today falls
// within windowDays, soonest first. Delivery of the reminder is up to the caller.
func UpcomingPayments(expenses []RecurringExpense, today generic.Date, windowDays int) ([]UpcomingPayment, error) {
	if windowDays < 0 {
		return nil, generic.ErrInvalidPeriod
	}
	limit := today.AddDays(windowDays)

	var calc DueDateCalculator
	var upcoming []UpcomingPayment
	for _, e := range expenses {
		next, err := calc.NextOccurrence(e.RecurrenceRule, today)
		if err != nil {
			return nil, err
		}
		if next.After(limit) {
			continue
		}
		upcoming = append(upcoming, UpcomingPayment{
			Expense: e,
			DueDate: next,
			InDays:  generic.DaysBetween(today, next),
		})
	}

	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].DueDate.Before(upcoming[j].DueDate)
	})
	return upcoming, nil
}

// IsPayday reports whether a non-zero salary is paid on today.
func IsPayday(salary *SalaryRule, today generic.Date) (bool, error) {
	if salary == nil || salary.Amount.LessThanOrEqual(decimal.Zero) {
		return false, nil
	}
	return DueDateCalculator{}.OccursOn(salary.RecurrenceRule, today)
}
