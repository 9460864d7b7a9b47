/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the engine's model (decimal.Decimal, generic.Date) from the external API
  contract: money travels as decimal strings and dates as YYYY-MM-DD.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

TYPES:
  Rules:
    RuleDTO (wraps factory.RuleJSON), NextOccurrenceDTO

  Transactions:
    TransactionDTO, CreateTransactionRequest, BalanceDTO

  Calendar:
    CalendarMonthDTO, CalendarDayDTO, DayEventsDTO, EventDTO

  Projection:
    ProjectionDTO, TimelineDayDTO

  Savings:
    GoalDTO, UpdateSavingsRequest, SimulateRequest, SimulationDTO

  Reminders / budget / statistics:
    RemindersDTO, UpcomingPaymentDTO, BudgetDTO, StatisticsDTO, StatsBucketDTO

VALIDATION:
  Validation is done in handlers and the factory, not in DTOs.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/rule.go: RuleJSON type
*/
package api

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/finance-engine/factory"
	"github.com/warp/finance-engine/finance"
	"github.com/warp/finance-engine/generic"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// RuleDTO is a salary or recurring expense with derived fields.
type RuleDTO struct {
	factory.RuleJSON
	NextOccurrence    string `json:"next_occurrence,omitempty"`
	MonthlyEquivalent string `json:"monthly_equivalent"`
}

// NextOccurrenceDTO answers "when is this rule due next?".
type NextOccurrenceDTO struct {
	ExpenseID string `json:"expense_id"`
	From      string `json:"from"`
	Next      string `json:"next"`
}

// TransactionDTO is a recorded transaction with the running balance after it.
type TransactionDTO struct {
	factory.TransactionJSON
	BalanceAfter string `json:"balance_after,omitempty"`
}

// CreateTransactionRequest records an income or expense. Kind comes from the route.
type CreateTransactionRequest struct {
	ID          string `json:"id,omitempty"`
	Amount      string `json:"amount"`
	Date        string `json:"date,omitempty"` // defaults to today
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
}

// BalanceDTO is the recorded balance as of today.
type BalanceDTO struct {
	AsOf         string `json:"as_of"`
	Balance      string `json:"balance"`
	MonthIncome  string `json:"month_income"`
	MonthExpense string `json:"month_expense"`
	MonthNet     string `json:"month_net"`
}

// CalendarDayDTO marks one calendar cell.
type CalendarDayDTO struct {
	Date     string `json:"date"`
	HasEvent bool   `json:"has_event"`
}

// CalendarMonthDTO is the month view.
type CalendarMonthDTO struct {
	Month string           `json:"month"`
	Days  []CalendarDayDTO `json:"days"`
}

// EventDTO is one income or outflow on a day.
type EventDTO struct {
	Date        string `json:"date"`
	Kind        string `json:"kind"`
	Source      string `json:"source"`
	Amount      string `json:"amount"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	Projected   bool   `json:"projected"`
	Ref         string `json:"ref,omitempty"`
}

// DayEventsDTO lists a day's events, incomes first.
type DayEventsDTO struct {
	Date   string     `json:"date"`
	Events []EventDTO `json:"events"`
	Net    string     `json:"net"`
}

// TimelineDayDTO is one day of a detailed projection.
type TimelineDayDTO struct {
	Date       string     `json:"date"`
	Delta      string     `json:"delta"`
	Cumulative string     `json:"cumulative"`
	Events     []EventDTO `json:"events,omitempty"`
}

// ProjectionDTO is the balance projection for a range.
type ProjectionDTO struct {
	From                string           `json:"from"`
	To                  string           `json:"to"`
	Today               string           `json:"today"`
	ProjectionAvailable bool             `json:"projection_available"`
	CurrentBalance      string           `json:"current_balance"`
	Delta               string           `json:"delta"`
	ProjectedBalance    string           `json:"projected_balance"`
	Timeline            []TimelineDayDTO `json:"timeline,omitempty"`
}

// GoalDTO is the savings goal.
type GoalDTO = factory.GoalJSON

// UpdateSavingsRequest sets how much has been saved so far.
type UpdateSavingsRequest struct {
	CurrentSaved string `json:"current_saved"`
}

// SimulateRequest runs a simulation. Goal fields override the stored goal.
type SimulateRequest struct {
	MonthlyContribution string `json:"monthly_contribution"`
	TargetAmount        string `json:"target_amount,omitempty"`
	Deadline            string `json:"deadline,omitempty"`
	CurrentSaved        string `json:"current_saved,omitempty"`
}

// ProjectionPointDTO is one month of the savings curve.
type ProjectionPointDTO struct {
	Month         int    `json:"month"`
	Date          string `json:"date"`
	Label         string `json:"label"`
	Cumulative    string `json:"cumulative"`
	PercentOfGoal string `json:"percent_of_goal"`
}

// SimulationDTO is the savings simulation result.
type SimulationDTO struct {
	Goal                GoalDTO              `json:"goal"`
	MonthlyContribution string               `json:"monthly_contribution"`
	MonthsRemaining     int                  `json:"months_remaining"`
	RequiredMonthly     string               `json:"required_monthly"`
	Feasible            bool                 `json:"feasible"`
	FinalSavings        string               `json:"final_savings"`
	GoalReached         bool                 `json:"goal_reached"`
	Series              []ProjectionPointDTO `json:"series"`
}

// UpcomingPaymentDTO is a recurring expense coming due soon.
type UpcomingPaymentDTO struct {
	ExpenseID   string `json:"expense_id"`
	Description string `json:"description"`
	Category    string `json:"category,omitempty"`
	Amount      string `json:"amount"`
	DueDate     string `json:"due_date"`
	InDays      int    `json:"in_days"`
}

// RemindersDTO lists upcoming payments and whether today is payday.
type RemindersDTO struct {
	Today      string               `json:"today"`
	WindowDays int                  `json:"window_days"`
	IsPayday   bool                 `json:"is_payday"`
	Upcoming   []UpcomingPaymentDTO `json:"upcoming"`
}

// BudgetDTO is the average month implied by the rules plus this month's history.
type BudgetDTO struct {
	MonthlyIncome     string            `json:"monthly_income"`
	MonthlyExpenses   string            `json:"monthly_expenses"`
	PotentialSavings  string            `json:"potential_savings"`
	ExpenseByCategory map[string]string `json:"expense_by_category"`
	IncomeByCategory  map[string]string `json:"income_by_category"`
	RecordedThisMonth string            `json:"recorded_this_month"`
}

// StatsBucketDTO is one step of a statistics series.
type StatsBucketDTO struct {
	Label   string `json:"label"`
	From    string `json:"from"`
	To      string `json:"to"`
	Income  string `json:"income"`
	Expense string `json:"expense"`
	Net     string `json:"net"`
}

// StatisticsDTO is income vs expense for a week, month or year.
type StatisticsDTO struct {
	Period            string            `json:"period"`
	From              string            `json:"from"`
	To                string            `json:"to"`
	Income            string            `json:"income"`
	Expense           string            `json:"expense"`
	Net               string            `json:"net"`
	Series            []StatsBucketDTO  `json:"series"`
	ExpenseByCategory map[string]string `json:"expense_by_category"`
	IncomeByCategory  map[string]string `json:"income_by_category"`
}

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error               string `json:"error"`
	Code                string `json:"code,omitempty"`
	Details             any    `json:"details,omitempty"`
	ProjectionAvailable *bool  `json:"projection_available,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func money(d decimal.Decimal) string {
	return generic.RoundMoney(d).StringFixed(generic.CurrencyPlaces)
}

func toEventDTO(e finance.Event) EventDTO {
	return EventDTO{
		Date:        e.Date.String(),
		Kind:        string(e.Kind),
		Source:      string(e.Source),
		Amount:      money(e.Amount),
		Description: e.Description,
		Category:    e.Category,
		Projected:   e.Projected,
		Ref:         e.Ref,
	}
}

func toEventDTOs(events []finance.Event) []EventDTO {
	dtos := make([]EventDTO, len(events))
	for i, e := range events {
		dtos[i] = toEventDTO(e)
	}
	return dtos
}

func toUpcomingPaymentDTO(p finance.UpcomingPayment) UpcomingPaymentDTO {
	return UpcomingPaymentDTO{
		ExpenseID:   string(p.Expense.ID),
		Description: p.Expense.Description,
		Category:    p.Expense.Category,
		Amount:      money(p.Expense.Amount),
		DueDate:     p.DueDate.String(),
		InDays:      p.InDays,
	}
}

func toSimulationDTO(goal finance.SavingsGoal, contribution decimal.Decimal, res finance.SimulationResult) SimulationDTO {
	series := make([]ProjectionPointDTO, len(res.Series))
	for i, p := range res.Series {
		series[i] = ProjectionPointDTO{
			Month:         p.Month,
			Date:          p.Date.String(),
			Label:         p.Label,
			Cumulative:    money(p.Cumulative),
			PercentOfGoal: p.PercentOfGoal.StringFixed(1),
		}
	}
	return SimulationDTO{
		Goal:                factory.GoalToJSON(goal),
		MonthlyContribution: money(contribution),
		MonthsRemaining:     res.MonthsRemaining,
		RequiredMonthly:     money(res.RequiredMonthly),
		Feasible:            res.Feasible,
		FinalSavings:        money(res.FinalSavings),
		GoalReached:         res.GoalReached,
		Series:              series,
	}
}

func toStatisticsDTO(st finance.Statistics) StatisticsDTO {
	series := make([]StatsBucketDTO, len(st.Series))
	for i, b := range st.Series {
		series[i] = StatsBucketDTO{
			Label:   bucketLabel(st.Bucket, i, b.Period),
			From:    b.Period.Start.String(),
			To:      b.Period.End.String(),
			Income:  money(b.Income),
			Expense: money(b.Expense),
			Net:     money(b.Net),
		}
	}
	return StatisticsDTO{
		Period:            string(st.View),
		From:              st.Total.Period.Start.String(),
		To:                st.Total.Period.End.String(),
		Income:            money(st.Total.Income),
		Expense:           money(st.Total.Expense),
		Net:               money(st.Total.Net),
		Series:            series,
		ExpenseByCategory: moneyMap(st.ExpenseByCategory),
		IncomeByCategory:  moneyMap(st.IncomeByCategory),
	}
}

func bucketLabel(bucket finance.Bucket, i int, p generic.Period) string {
	switch bucket {
	case finance.BucketDay:
		return p.Start.Time().Format("Mon")
	case finance.BucketMonth:
		return p.Start.Time().Format("Jan")
	default:
		return fmt.Sprintf("Week %d", i+1)
	}
}

func moneyMap(m map[string]decimal.Decimal) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		if k == "" {
			k = "uncategorized"
		}
		out[k] = money(v)
	}
	return out
}
