package generic

import "time"

// =============================================================================
// PERIOD - Inclusive date range
// =============================================================================

// Period is an inclusive range of days [Start, End].
//
// Examples:
//   - January 2024: Jan 1 - Jan 31
//   - Reminder window: today - today+3
type Period struct {
	Start Date
	End   Date
}

// NewPeriod validates that end is not before start.
func NewPeriod(start, end Date) (Period, error) {
	if end.Before(start) {
		return Period{}, ErrInvalidPeriod
	}
	return Period{Start: start, End: end}, nil
}

// MonthPeriod returns the period covering a whole calendar month.
func MonthPeriod(year int, month time.Month) Period {
	return Period{Start: StartOfMonth(year, month), End: EndOfMonth(year, month)}
}

// Contains returns true if the day is within the period [Start, End]
func (p Period) Contains(d Date) bool {
	return d.AfterOrEqual(p.Start) && d.BeforeOrEqual(p.End)
}

// Len is the number of days in the period, both ends included.
func (p Period) Len() int {
	if p.End.Before(p.Start) {
		return 0
	}
	return DaysBetween(p.Start, p.End) + 1
}

// Each calls fn for every day in order until fn returns false.
func (p Period) Each(fn func(Date) bool) {
	for current := p.Start; current.BeforeOrEqual(p.End); current = current.AddDays(1) {
		if !fn(current) {
			return
		}
	}
}

// Split cuts the period after mid, returning [Start, mid] and [mid+1, End].
func (p Period) Split(mid Date) (Period, Period) {
	return Period{Start: p.Start, End: mid}, Period{Start: mid.AddDays(1), End: p.End}
}

// String returns a string representation of the period.
func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}
