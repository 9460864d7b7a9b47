/*
statistics.go - Income vs expense series over a week, month or year

PURPOSE:
  Groups recorded transactions into buckets for charting and sums them per
  category over the whole window.

VIEWS:
  week:  Monday-Sunday week containing today, one bucket per day
  month: calendar month of today, 7-day buckets from the 1st
         (the last bucket holds the remaining 1-3 days)
  year:  calendar year of today, one bucket per month

  Only literal transactions are counted; recurring rules are projections, not
  history.

SEE ALSO:
  - budget.go: Totals, CategoryTotals
*/
package finance

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/finance-engine/generic"
)

// StatsView selects the window and bucket size of a statistics series.
type StatsView string

const (
	ViewWeek  StatsView = "week"
	ViewMonth StatsView = "month"
	ViewYear  StatsView = "year"
)

// Bucket is the size of one step in a series.
type Bucket int

const (
	BucketDay Bucket = iota
	BucketWeek
	BucketMonth
)

// ParseStatsView parses week, month or year.
func ParseStatsView(s string) (StatsView, error) {
	switch v := StatsView(strings.ToLower(strings.TrimSpace(s))); v {
	case ViewWeek, ViewMonth, ViewYear:
		return v, nil
	default:
		return "", fmt.Errorf("%w: unknown statistics period %q (use week, month or year)", generic.ErrInvalidPeriod, s)
	}
}

// Window returns the period a view covers around today and its bucket size.
func (v StatsView) Window(today generic.Date) (generic.Period, Bucket) {
	switch v {
	case ViewWeek:
		monday := today.AddDays(-((int(today.Weekday()) + 6) % 7))
		return generic.Period{Start: monday, End: monday.AddDays(6)}, BucketDay
	case ViewYear:
		return generic.Period{
			Start: generic.StartOfMonth(today.Year(), time.January),
			End:   generic.EndOfMonth(today.Year(), time.December),
		}, BucketMonth
	default:
		return generic.MonthPeriod(today.Year(), today.Month()), BucketWeek
	}
}

// PeriodSeries cuts period into consecutive buckets and totals each one.
// Buckets cover the period exactly; the last may be shorter.
func PeriodSeries(txs []Transaction, period generic.Period, bucket Bucket) []PeriodTotals {
	var series []PeriodTotals
	rest := period
	for rest.Len() > 0 {
		end := bucketEnd(rest.Start, bucket)
		if !end.Before(rest.End) {
			series = append(series, Totals(txs, rest))
			break
		}
		head, tail := rest.Split(end)
		series = append(series, Totals(txs, head))
		rest = tail
	}
	return series
}

func bucketEnd(start generic.Date, bucket Bucket) generic.Date {
	switch bucket {
	case BucketWeek:
		return start.AddDays(6)
	case BucketMonth:
		return generic.EndOfMonth(start.Year(), start.Month())
	default:
		return start
	}
}

// Statistics is the income vs expense picture of one view.
type Statistics struct {
	View              StatsView
	Bucket            Bucket
	Total             PeriodTotals
	Series            []PeriodTotals
	ExpenseByCategory map[string]decimal.Decimal
	IncomeByCategory  map[string]decimal.Decimal
}

// BuildStatistics computes the series and category breakdown of a view.
func BuildStatistics(txs []Transaction, view StatsView, today generic.Date) Statistics {
	period, bucket := view.Window(today)

	var inPeriod []Transaction
	for _, tx := range txs {
		if period.Contains(tx.Date) {
			inPeriod = append(inPeriod, tx)
		}
	}

	return Statistics{
		View:              view,
		Bucket:            bucket,
		Total:             Totals(inPeriod, period),
		Series:            PeriodSeries(inPeriod, period, bucket),
		ExpenseByCategory: CategoryTotals(inPeriod, KindExpense),
		IncomeByCategory:  CategoryTotals(inPeriod, KindIncome),
	}
}
