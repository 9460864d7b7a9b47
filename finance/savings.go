/*
savings.go - Month-by-month savings goal simulation

PURPOSE:
  Given a goal (target, deadline, already saved) and a monthly contribution,
  answers "how much do I need per month?", "is my contribution enough?" and
  "what does my savings curve look like until the deadline?".

ALGORITHM:
  months   = WholeMonthsBetween(today, deadline)       (must be >= 1)
  required = target / months
  feasible = contribution >= required
  series   = currentSaved + i*contribution  for i in 0..months (months+1 points)

  FinalSavings is the last point of the series: the level reached at the
  deadline, without the extra increment the month loop adds after the last
  point. GoalReached compares that same point against the target.

EXAMPLE:
  target 1200, deadline in 6 months, saved 0, contribution 200
    required 200, feasible, series 0,200,...,1200, goal reached

  same goal, contribution 100
    not feasible, series ends at 600, final savings 600, goal not reached
*/
package finance

import (
	"github.com/shopspring/decimal"
	"github.com/warp/finance-engine/generic"
)

// ProjectionPoint is one month of the savings curve.
type ProjectionPoint struct {
	Month         int
	Date          generic.Date
	Label         string
	Cumulative    decimal.Decimal
	PercentOfGoal decimal.Decimal
}

// SimulationResult is what the savings screen and its chart consume.
type SimulationResult struct {
	MonthsRemaining int
	RequiredMonthly decimal.Decimal
	Feasible        bool
	Series          []ProjectionPoint
	FinalSavings    decimal.Decimal
	GoalReached     bool
}

// SavingsSimulator runs goal simulations. The zero value is ready to use.
type SavingsSimulator struct{}

// Simulate projects the goal month by month from today to the deadline.
func (SavingsSimulator) Simulate(goal SavingsGoal, monthlyContribution decimal.Decimal, today generic.Date) (SimulationResult, error) {
	if !goal.TargetAmount.IsPositive() {
		return SimulationResult{}, &generic.InvalidGoalError{Field: "target_amount", Reason: "must be greater than zero"}
	}
	if goal.CurrentSaved.IsNegative() {
		return SimulationResult{}, &generic.InvalidGoalError{Field: "current_saved", Reason: "must not be negative"}
	}
	if monthlyContribution.IsNegative() {
		return SimulationResult{}, &generic.InvalidGoalError{Field: "monthly_contribution", Reason: "must not be negative"}
	}
	if !goal.Deadline.After(today) {
		return SimulationResult{}, &generic.InvalidGoalError{Field: "deadline", Reason: "must be after today"}
	}

	months := generic.WholeMonthsBetween(today, goal.Deadline)
	if months < 1 {
		return SimulationResult{}, &generic.InvalidGoalError{Field: "deadline", Reason: "must be at least one whole month away"}
	}

	required := goal.TargetAmount.Div(decimal.NewFromInt(int64(months)))

	series := make([]ProjectionPoint, 0, months+1)
	saved := goal.CurrentSaved
	for i := 0; i <= months; i++ {
		at := today.AddMonths(i)
		series = append(series, ProjectionPoint{
			Month:         i,
			Date:          at,
			Label:         at.Time().Format("Jan 2006"),
			Cumulative:    saved,
			PercentOfGoal: generic.Percent(saved, goal.TargetAmount),
		})
		saved = saved.Add(monthlyContribution)
	}

	last := series[len(series)-1].Cumulative
	return SimulationResult{
		MonthsRemaining: months,
		RequiredMonthly: required,
		Feasible:        monthlyContribution.GreaterThanOrEqual(required),
		Series:          series,
		FinalSavings:    last,
		GoalReached:     last.GreaterThanOrEqual(goal.TargetAmount),
	}, nil
}
