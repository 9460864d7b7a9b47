/*
handlers.go - HTTP API handlers for the finance projection engine

PURPOSE:
  Exposes the projection engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to the finance package. Handlers load a
  fresh snapshot from the store on every call; the engine keeps no state.

ENDPOINTS:
  Salary:
    GET    /api/salary                         Active salary rule
    PUT    /api/salary                         Replace salary rule
    DELETE /api/salary                         Remove salary rule

  Recurring expenses:
    GET    /api/recurring-expenses             List with next due dates
    POST   /api/recurring-expenses             Create
    PUT    /api/recurring-expenses/{id}        Replace wholesale
    DELETE /api/recurring-expenses/{id}        Remove
    GET    /api/recurring-expenses/{id}/next   Next due date after ?from=

  Transactions:
    POST   /api/incomes, /api/expenses         Record (append-only)
    GET    /api/transactions?from=&to=         History with running balance
    GET    /api/balance                        Recorded balance as of today

  Calendar / projection:
    GET    /api/calendar?month=YYYY-MM         Day flags for a month
    GET    /api/calendar/{date}                Events on one day
    GET    /api/projection?to=&from=&detail=   Projected balance

  Savings:
    GET    /api/savings-goal                   Stored goal
    PUT    /api/savings-goal                   Replace goal
    PUT    /api/savings-goal/current           Update amount saved
    POST   /api/savings-goal/simulate          Run simulation

  Other:
    GET    /api/reminders?days=N               Upcoming payments, payday flag
    GET    /api/budget                         Monthly equivalents, categories
    GET    /api/statistics?period=week|month|year  Income vs expense series

REFERENCE DATE:
  Every endpoint accepts ?today=YYYY-MM-DD. Otherwise today comes from
  Handler.Now, which tests replace with a fixed clock.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Invalid rule, goal, period or transaction
  - 404: Unknown expense, no salary, no goal
  - 409: Duplicate transaction or expense ID
  - 422: Projection range ends before today (projection_available=false)
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/warp/finance-engine/factory"
	"github.com/warp/finance-engine/finance"
	"github.com/warp/finance-engine/generic"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store     finance.Store
	Logger    *logrus.Logger
	Rules     *factory.RuleFactory
	Projector finance.EventProjector
	Simulator finance.SavingsSimulator

	// Now is the clock; the engine itself never reads it.
	Now func() time.Time
	// NewID generates IDs for records created without one.
	NewID func() string

	// ReminderWindow is the default for /api/reminders.
	ReminderWindow int

	mu              sync.Mutex
	currentScenario string
}

// NewHandler creates a new handler with the given store.
func NewHandler(store finance.Store, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
	}
	return &Handler{
		Store:          store,
		Logger:         logger,
		Rules:          factory.NewRuleFactory(),
		Now:            time.Now,
		NewID:          uuid.NewString,
		ReminderWindow: finance.DefaultReminderWindow,
	}
}

// today returns ?today= when present, otherwise the handler clock's date.
func (h *Handler) today(r *http.Request) (generic.Date, error) {
	if s := r.URL.Query().Get("today"); s != "" {
		d, err := generic.ParseDate(s)
		if err != nil {
			return generic.Date{}, fmt.Errorf("%w: today: %v", generic.ErrInvalidPeriod, err)
		}
		return d, nil
	}
	return generic.DateOf(h.Now()), nil
}

// dateParam parses an optional query date, falling back to def.
func dateParam(r *http.Request, name string, def generic.Date) (generic.Date, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return def, nil
	}
	d, err := generic.ParseDate(s)
	if err != nil {
		return generic.Date{}, fmt.Errorf("%w: %s: %v", generic.ErrInvalidPeriod, name, err)
	}
	return d, nil
}

// =============================================================================
// SALARY HANDLERS
// =============================================================================

// GetSalary returns the active salary rule with its next payday.
func (h *Handler) GetSalary(w http.ResponseWriter, r *http.Request) {
	today, err := h.today(r)
	if err != nil {
		h.writeDomainError(w, r, "Invalid date", err)
		return
	}

	salary, err := h.Store.Salary(r.Context())
	if err != nil {
		h.writeDomainError(w, r, "Failed to get salary", err)
		return
	}
	if salary == nil {
		h.writeDomainError(w, r, "Salary not configured", generic.ErrNoSalary)
		return
	}

	dto, err := h.toRuleDTO(h.Rules.ToJSON(salary.RecurrenceRule), salary.RecurrenceRule, today)
	if err != nil {
		h.writeDomainError(w, r, "Failed to describe salary", err)
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

// PutSalary replaces the salary rule.
func (h *Handler) PutSalary(w http.ResponseWriter, r *http.Request) {
	var req factory.RuleJSON
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	salary, err := h.Rules.SalaryFromJSON(req)
	if err != nil {
		h.writeDomainError(w, r, "Invalid salary rule", err)
		return
	}
	if err := h.Store.SetSalary(r.Context(), salary); err != nil {
		h.writeDomainError(w, r, "Failed to save salary", err)
		return
	}

	h.Logger.WithFields(logrus.Fields{
		"frequency":  salary.Frequency.String(),
		"anchor_day": salary.AnchorDay,
	}).Info("salary updated")

	writeJSON(w, http.StatusOK, h.Rules.ToJSON(salary.RecurrenceRule))
}

// DeleteSalary removes the salary rule.
func (h *Handler) DeleteSalary(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.ClearSalary(r.Context()); err != nil {
		h.writeDomainError(w, r, "Failed to clear salary", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// RECURRING EXPENSE HANDLERS
// =============================================================================

// ListRecurringExpenses returns all recurring expenses with next due dates.
func (h *Handler) ListRecurringExpenses(w http.ResponseWriter, r *http.Request) {
	today, err := h.today(r)
	if err != nil {
		h.writeDomainError(w, r, "Invalid date", err)
		return
	}

	expenses, err := h.Store.RecurringExpenses(r.Context())
	if err != nil {
		h.writeDomainError(w, r, "Failed to list recurring expenses", err)
		return
	}

	dtos := make([]RuleDTO, 0, len(expenses))
	for _, e := range expenses {
		dto, err := h.toRuleDTO(h.Rules.ExpenseToJSON(e), e.RecurrenceRule, today)
		if err != nil {
			h.writeDomainError(w, r, "Failed to describe recurring expense", err)
			return
		}
		dtos = append(dtos, dto)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateRecurringExpense adds a recurring expense. A missing ID is generated.
func (h *Handler) CreateRecurringExpense(w http.ResponseWriter, r *http.Request) {
	var req factory.RuleJSON
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	expense, err := h.Rules.ExpenseFromJSON(req)
	if err != nil {
		h.writeDomainError(w, r, "Invalid recurring expense", err)
		return
	}
	if expense.ID == "" {
		expense.ID = finance.ExpenseID(h.NewID())
	}

	ctx := r.Context()
	existing, err := h.findExpense(r, expense.ID)
	if err != nil && !errors.Is(err, generic.ErrExpenseNotFound) {
		h.writeDomainError(w, r, "Failed to check recurring expense", err)
		return
	}
	if existing != nil {
		writeError(w, http.StatusConflict, "Recurring expense already exists", nil)
		return
	}

	if err := h.Store.PutRecurringExpense(ctx, expense); err != nil {
		h.writeDomainError(w, r, "Failed to save recurring expense", err)
		return
	}

	h.Logger.WithFields(logrus.Fields{
		"expense_id": expense.ID,
		"frequency":  expense.Frequency.String(),
	}).Info("recurring expense created")

	writeJSON(w, http.StatusCreated, h.Rules.ExpenseToJSON(expense))
}

// UpdateRecurringExpense replaces an existing recurring expense wholesale.
func (h *Handler) UpdateRecurringExpense(w http.ResponseWriter, r *http.Request) {
	id := finance.ExpenseID(chi.URLParam(r, "id"))

	var req factory.RuleJSON
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	req.ID = string(id)

	expense, err := h.Rules.ExpenseFromJSON(req)
	if err != nil {
		h.writeDomainError(w, r, "Invalid recurring expense", err)
		return
	}
	if _, err := h.findExpense(r, id); err != nil {
		h.writeDomainError(w, r, "Recurring expense not found", err)
		return
	}

	if err := h.Store.PutRecurringExpense(r.Context(), expense); err != nil {
		h.writeDomainError(w, r, "Failed to save recurring expense", err)
		return
	}
	writeJSON(w, http.StatusOK, h.Rules.ExpenseToJSON(expense))
}

// DeleteRecurringExpense removes a recurring expense.
func (h *Handler) DeleteRecurringExpense(w http.ResponseWriter, r *http.Request) {
	id := finance.ExpenseID(chi.URLParam(r, "id"))
	if err := h.Store.RemoveRecurringExpense(r.Context(), id); err != nil {
		h.writeDomainError(w, r, "Failed to delete recurring expense", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// NextOccurrence returns the first due date strictly after ?from= (default today).
func (h *Handler) NextOccurrence(w http.ResponseWriter, r *http.Request) {
	today, err := h.today(r)
	if err != nil {
		h.writeDomainError(w, r, "Invalid date", err)
		return
	}
	from, err := dateParam(r, "from", today)
	if err != nil {
		h.writeDomainError(w, r, "Invalid from date", err)
		return
	}

	expense, err := h.findExpense(r, finance.ExpenseID(chi.URLParam(r, "id")))
	if err != nil {
		h.writeDomainError(w, r, "Recurring expense not found", err)
		return
	}

	next, err := h.Projector.Due.NextOccurrence(expense.RecurrenceRule, from)
	if err != nil {
		h.writeDomainError(w, r, "Failed to compute next occurrence", err)
		return
	}
	writeJSON(w, http.StatusOK, NextOccurrenceDTO{
		ExpenseID: string(expense.ID),
		From:      from.String(),
		Next:      next.String(),
	})
}

func (h *Handler) findExpense(r *http.Request, id finance.ExpenseID) (*finance.RecurringExpense, error) {
	expenses, err := h.Store.RecurringExpenses(r.Context())
	if err != nil {
		return nil, err
	}
	for i := range expenses {
		if expenses[i].ID == id {
			return &expenses[i], nil
		}
	}
	return nil, generic.ErrExpenseNotFound
}

func (h *Handler) toRuleDTO(rj factory.RuleJSON, rule finance.RecurrenceRule, today generic.Date) (RuleDTO, error) {
	monthly, err := finance.MonthlyEquivalent(rule)
	if err != nil {
		return RuleDTO{}, err
	}
	dto := RuleDTO{RuleJSON: rj, MonthlyEquivalent: money(monthly)}
	if rule.Amount.IsPositive() {
		next, err := h.Projector.Due.NextOccurrence(rule, today)
		if err != nil {
			return RuleDTO{}, err
		}
		dto.NextOccurrence = next.String()
	}
	return dto, nil
}

// =============================================================================
// TRANSACTION HANDLERS
// =============================================================================

// CreateIncome records an income transaction.
func (h *Handler) CreateIncome(w http.ResponseWriter, r *http.Request) {
	h.createTransaction(w, r, finance.KindIncome)
}

// CreateExpense records an expense transaction.
func (h *Handler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	h.createTransaction(w, r, finance.KindExpense)
}

func (h *Handler) createTransaction(w http.ResponseWriter, r *http.Request, kind finance.TransactionKind) {
	today, err := h.today(r)
	if err != nil {
		h.writeDomainError(w, r, "Invalid date", err)
		return
	}

	var req CreateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Date == "" {
		req.Date = today.String()
	}
	if req.ID == "" {
		req.ID = h.NewID()
	}

	tx, err := h.Rules.TransactionFromJSON(factory.TransactionJSON{
		ID:          req.ID,
		Kind:        string(kind),
		Amount:      req.Amount,
		Date:        req.Date,
		Description: req.Description,
		Category:    req.Category,
	})
	if err != nil {
		h.writeDomainError(w, r, "Invalid transaction", err)
		return
	}

	if err := h.Store.AppendTransaction(r.Context(), tx); err != nil {
		h.writeDomainError(w, r, "Failed to record transaction", err)
		return
	}

	h.Logger.WithFields(logrus.Fields{
		"tx_id":  tx.ID,
		"kind":   tx.Kind,
		"amount": tx.Amount.String(),
		"date":   tx.Date.String(),
	}).Info("transaction recorded")

	writeJSON(w, http.StatusCreated, TransactionDTO{TransactionJSON: factory.TransactionToJSON(tx)})
}

// ListTransactions returns recorded transactions with the running balance
// after each one. ?from= and ?to= narrow the listing, not the balance.
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	all, err := h.Store.Transactions(r.Context())
	if err != nil {
		h.writeDomainError(w, r, "Failed to list transactions", err)
		return
	}

	q := r.URL.Query()
	var period *generic.Period
	if q.Get("from") != "" || q.Get("to") != "" {
		from, err := dateParam(r, "from", generic.NewDate(1, time.January, 1))
		if err != nil {
			h.writeDomainError(w, r, "Invalid from date", err)
			return
		}
		to, err := dateParam(r, "to", generic.NewDate(9999, time.December, 31))
		if err != nil {
			h.writeDomainError(w, r, "Invalid to date", err)
			return
		}
		p, err := generic.NewPeriod(from, to)
		if err != nil {
			h.writeDomainError(w, r, "Invalid range", err)
			return
		}
		period = &p
	}

	dtos := []TransactionDTO{}
	balance := decimal.Zero
	for _, tx := range all {
		balance = balance.Add(tx.Signed())
		if period != nil && !period.Contains(tx.Date) {
			continue
		}
		dtos = append(dtos, TransactionDTO{
			TransactionJSON: factory.TransactionToJSON(tx),
			BalanceAfter:    money(balance),
		})
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetBalance returns the recorded balance up to and including today.
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	today, err := h.today(r)
	if err != nil {
		h.writeDomainError(w, r, "Invalid date", err)
		return
	}

	txs, err := h.Store.TransactionsInRange(r.Context(), generic.NewDate(1, time.January, 1), today)
	if err != nil {
		h.writeDomainError(w, r, "Failed to load transactions", err)
		return
	}

	month := generic.MonthPeriod(today.Year(), today.Month())
	totals := finance.Totals(txs, month)
	writeJSON(w, http.StatusOK, BalanceDTO{
		AsOf:         today.String(),
		Balance:      money(finance.RunningBalance(txs)),
		MonthIncome:  money(totals.Income),
		MonthExpense: money(totals.Expense),
		MonthNet:     money(totals.Net),
	})
}

// =============================================================================
// CALENDAR AND PROJECTION HANDLERS
// =============================================================================

// GetCalendarMonth flags every day of ?month=YYYY-MM (default: today's month).
func (h *Handler) GetCalendarMonth(w http.ResponseWriter, r *http.Request) {
	today, err := h.today(r)
	if err != nil {
		h.writeDomainError(w, r, "Invalid date", err)
		return
	}

	year, month := today.Year(), today.Month()
	if s := r.URL.Query().Get("month"); s != "" {
		t, err := time.Parse("2006-01", s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid month format (use YYYY-MM)", err)
			return
		}
		year, month = t.Year(), t.Month()
	}

	state, err := finance.LoadState(r.Context(), h.Store)
	if err != nil {
		h.writeDomainError(w, r, "Failed to load state", err)
		return
	}

	flags, err := h.Projector.MonthEvents(state.Rules(), state.Transactions, year, month)
	if err != nil {
		h.writeDomainError(w, r, "Failed to build calendar", err)
		return
	}

	days := make([]CalendarDayDTO, len(flags))
	for i, f := range flags {
		days[i] = CalendarDayDTO{Date: f.Date.String(), HasEvent: f.HasEvent}
	}
	writeJSON(w, http.StatusOK, CalendarMonthDTO{
		Month: fmt.Sprintf("%04d-%02d", year, int(month)),
		Days:  days,
	})
}

// GetCalendarDay lists the events on one day, incomes first.
func (h *Handler) GetCalendarDay(w http.ResponseWriter, r *http.Request) {
	day, err := generic.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	state, err := finance.LoadState(r.Context(), h.Store)
	if err != nil {
		h.writeDomainError(w, r, "Failed to load state", err)
		return
	}

	events, err := h.Projector.DayEvents(state.Rules(), state.Transactions, day)
	if err != nil {
		h.writeDomainError(w, r, "Failed to list events", err)
		return
	}

	net := decimal.Zero
	for _, e := range events {
		net = net.Add(e.Signed())
	}
	writeJSON(w, http.StatusOK, DayEventsDTO{
		Date:   day.String(),
		Events: toEventDTOs(events),
		Net:    money(net),
	})
}

// GetProjection projects the balance over [from, to]. from defaults to today.
// delta covers [from, to]; projected_balance is the balance at the end of to,
// counted from today whatever from is. A range that ends before today answers
// 422 with projection_available=false; one longer than the projector's limit 400.
func (h *Handler) GetProjection(w http.ResponseWriter, r *http.Request) {
	today, err := h.today(r)
	if err != nil {
		h.writeDomainError(w, r, "Invalid date", err)
		return
	}
	if r.URL.Query().Get("to") == "" {
		writeError(w, http.StatusBadRequest, "Missing to date", nil)
		return
	}
	to, err := dateParam(r, "to", today)
	if err != nil {
		h.writeDomainError(w, r, "Invalid to date", err)
		return
	}
	from, err := dateParam(r, "from", today)
	if err != nil {
		h.writeDomainError(w, r, "Invalid from date", err)
		return
	}

	state, err := finance.LoadState(r.Context(), h.Store)
	if err != nil {
		h.writeDomainError(w, r, "Failed to load state", err)
		return
	}
	rules := state.Rules()

	delta, err := h.Projector.ProjectBalance(rules, state.Transactions, from, to, today)
	if err != nil {
		h.writeDomainError(w, r, "No projection available", err)
		return
	}

	projected, err := h.Projector.ProjectedBalanceAt(rules, state.Transactions, to, today)
	if err != nil {
		h.writeDomainError(w, r, "No projection available", err)
		return
	}

	dto := ProjectionDTO{
		From:                from.String(),
		To:                  to.String(),
		Today:               today.String(),
		ProjectionAvailable: true,
		CurrentBalance:      money(finance.BalanceBefore(state.Transactions, today)),
		Delta:               money(delta),
		ProjectedBalance:    money(projected),
	}

	if detail, _ := strconv.ParseBool(r.URL.Query().Get("detail")); detail {
		timeline, err := h.Projector.Timeline(rules, state.Transactions, from, to, today)
		if err != nil {
			h.writeDomainError(w, r, "Failed to build timeline", err)
			return
		}
		for _, day := range timeline {
			if len(day.Events) == 0 {
				continue
			}
			dto.Timeline = append(dto.Timeline, TimelineDayDTO{
				Date:       day.Date.String(),
				Delta:      money(day.Delta),
				Cumulative: money(day.Cumulative),
				Events:     toEventDTOs(day.Events),
			})
		}
	}

	writeJSON(w, http.StatusOK, dto)
}

// =============================================================================
// SAVINGS GOAL HANDLERS
// =============================================================================

// GetSavingsGoal returns the stored goal.
func (h *Handler) GetSavingsGoal(w http.ResponseWriter, r *http.Request) {
	goal, err := h.Store.SavingsGoal(r.Context())
	if err != nil {
		h.writeDomainError(w, r, "Failed to get savings goal", err)
		return
	}
	if goal == nil {
		h.writeDomainError(w, r, "Savings goal not configured", generic.ErrNoSavingsGoal)
		return
	}
	writeJSON(w, http.StatusOK, factory.GoalToJSON(*goal))
}

// PutSavingsGoal replaces the goal.
func (h *Handler) PutSavingsGoal(w http.ResponseWriter, r *http.Request) {
	var req GoalDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	goal, err := h.Rules.GoalFromJSON(req)
	if err != nil {
		h.writeDomainError(w, r, "Invalid savings goal", err)
		return
	}
	if !goal.TargetAmount.IsPositive() {
		h.writeDomainError(w, r, "Invalid savings goal",
			&generic.InvalidGoalError{Field: "target_amount", Reason: "must be greater than zero"})
		return
	}
	if goal.CurrentSaved.IsNegative() {
		h.writeDomainError(w, r, "Invalid savings goal",
			&generic.InvalidGoalError{Field: "current_saved", Reason: "must not be negative"})
		return
	}

	if err := h.Store.SetSavingsGoal(r.Context(), goal); err != nil {
		h.writeDomainError(w, r, "Failed to save savings goal", err)
		return
	}
	writeJSON(w, http.StatusOK, factory.GoalToJSON(goal))
}

// UpdateCurrentSavings sets the amount saved so far.
func (h *Handler) UpdateCurrentSavings(w http.ResponseWriter, r *http.Request) {
	var req UpdateSavingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	saved, err := generic.ParseDecimal(req.CurrentSaved)
	if err != nil || saved.IsNegative() {
		h.writeDomainError(w, r, "Invalid current savings",
			&generic.InvalidGoalError{Field: "current_saved", Reason: "must be a non-negative amount"})
		return
	}

	if err := h.Store.UpdateSavings(r.Context(), saved); err != nil {
		h.writeDomainError(w, r, "Failed to update savings", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"current_saved": money(saved)})
}

// SimulateSavings runs the goal simulation. Body fields override the stored
// goal; with no stored goal all three goal fields are required.
func (h *Handler) SimulateSavings(w http.ResponseWriter, r *http.Request) {
	today, err := h.today(r)
	if err != nil {
		h.writeDomainError(w, r, "Invalid date", err)
		return
	}

	var req SimulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	stored, err := h.Store.SavingsGoal(r.Context())
	if err != nil {
		h.writeDomainError(w, r, "Failed to get savings goal", err)
		return
	}
	gj := GoalDTO{TargetAmount: req.TargetAmount, Deadline: req.Deadline, CurrentSaved: req.CurrentSaved}
	if stored != nil {
		base := factory.GoalToJSON(*stored)
		if gj.TargetAmount == "" {
			gj.TargetAmount = base.TargetAmount
		}
		if gj.Deadline == "" {
			gj.Deadline = base.Deadline
		}
		if gj.CurrentSaved == "" {
			gj.CurrentSaved = base.CurrentSaved
		}
	} else if gj.TargetAmount == "" || gj.Deadline == "" {
		h.writeDomainError(w, r, "Savings goal not configured", generic.ErrNoSavingsGoal)
		return
	}

	goal, err := h.Rules.GoalFromJSON(gj)
	if err != nil {
		h.writeDomainError(w, r, "Invalid savings goal", err)
		return
	}

	contribution, err := generic.ParseDecimal(req.MonthlyContribution)
	if err != nil {
		h.writeDomainError(w, r, "Invalid monthly contribution",
			&generic.InvalidGoalError{Field: "monthly_contribution", Reason: err.Error()})
		return
	}

	res, err := h.Simulator.Simulate(goal, contribution, today)
	if err != nil {
		h.writeDomainError(w, r, "Simulation failed", err)
		return
	}
	writeJSON(w, http.StatusOK, toSimulationDTO(goal, contribution, res))
}

// =============================================================================
// REMINDER AND BUDGET HANDLERS
// =============================================================================

// GetReminders lists recurring expenses due within ?days= (default 3).
func (h *Handler) GetReminders(w http.ResponseWriter, r *http.Request) {
	today, err := h.today(r)
	if err != nil {
		h.writeDomainError(w, r, "Invalid date", err)
		return
	}

	window := h.ReminderWindow
	if s := r.URL.Query().Get("days"); s != "" {
		if window, err = strconv.Atoi(s); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid days", err)
			return
		}
	}

	ctx := r.Context()
	expenses, err := h.Store.RecurringExpenses(ctx)
	if err != nil {
		h.writeDomainError(w, r, "Failed to list recurring expenses", err)
		return
	}
	salary, err := h.Store.Salary(ctx)
	if err != nil {
		h.writeDomainError(w, r, "Failed to get salary", err)
		return
	}

	upcoming, err := finance.UpcomingPayments(expenses, today, window)
	if err != nil {
		h.writeDomainError(w, r, "Failed to compute reminders", err)
		return
	}
	payday, err := finance.IsPayday(salary, today)
	if err != nil {
		h.writeDomainError(w, r, "Failed to check payday", err)
		return
	}

	dtos := make([]UpcomingPaymentDTO, len(upcoming))
	for i, p := range upcoming {
		dtos[i] = toUpcomingPaymentDTO(p)
	}
	writeJSON(w, http.StatusOK, RemindersDTO{
		Today:      today.String(),
		WindowDays: window,
		IsPayday:   payday,
		Upcoming:   dtos,
	})
}

// GetBudget returns monthly equivalents of the rules and this month's
// recorded totals per category.
func (h *Handler) GetBudget(w http.ResponseWriter, r *http.Request) {
	today, err := h.today(r)
	if err != nil {
		h.writeDomainError(w, r, "Invalid date", err)
		return
	}

	state, err := finance.LoadState(r.Context(), h.Store)
	if err != nil {
		h.writeDomainError(w, r, "Failed to load state", err)
		return
	}

	budget, err := finance.PotentialMonthlySavings(state.Rules())
	if err != nil {
		h.writeDomainError(w, r, "Failed to compute budget", err)
		return
	}

	month := generic.MonthPeriod(today.Year(), today.Month())
	var inMonth []finance.Transaction
	for _, tx := range state.Transactions {
		if month.Contains(tx.Date) {
			inMonth = append(inMonth, tx)
		}
	}

	writeJSON(w, http.StatusOK, BudgetDTO{
		MonthlyIncome:     money(budget.Income),
		MonthlyExpenses:   money(budget.Expenses),
		PotentialSavings:  money(budget.Potential),
		ExpenseByCategory: moneyMap(finance.CategoryTotals(inMonth, finance.KindExpense)),
		IncomeByCategory:  moneyMap(finance.CategoryTotals(inMonth, finance.KindIncome)),
		RecordedThisMonth: money(finance.Totals(inMonth, month).Net),
	})
}

// GetStatistics returns income vs expense per day of the current week, per
// week of the current month or per month of the current year (?period=,
// default month), with the period's category breakdown.
func (h *Handler) GetStatistics(w http.ResponseWriter, r *http.Request) {
	today, err := h.today(r)
	if err != nil {
		h.writeDomainError(w, r, "Invalid date", err)
		return
	}

	view := finance.ViewMonth
	if s := r.URL.Query().Get("period"); s != "" {
		if view, err = finance.ParseStatsView(s); err != nil {
			h.writeDomainError(w, r, "Invalid period", err)
			return
		}
	}

	txs, err := h.Store.Transactions(r.Context())
	if err != nil {
		h.writeDomainError(w, r, "Failed to list transactions", err)
		return
	}
	writeJSON(w, http.StatusOK, toStatisticsDTO(finance.BuildStatistics(txs, view, today)))
}

// ResetDatabase clears all data.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}

	h.mu.Lock()
	h.currentScenario = ""
	h.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps engine and store errors to HTTP statuses.
func (h *Handler) writeDomainError(w http.ResponseWriter, r *http.Request, message string, err error) {
	var undefined *generic.UndefinedProjectionError
	switch {
	case errors.As(err, &undefined):
		available := false
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:               message,
			Code:                "undefined_projection",
			Details:             err.Error(),
			ProjectionAvailable: &available,
		})
	case generic.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case generic.IsConflict(err):
		writeError(w, http.StatusConflict, message, err)
	case generic.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		h.Logger.WithFields(logrus.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).WithError(err).Error(message)
		writeError(w, http.StatusInternalServerError, message, err)
	}
}
