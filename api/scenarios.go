/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the store with realistic data
	for demos. Each scenario sets a salary, recurring expenses, a few recorded
	transactions and a savings goal that exercise specific engine features.

AVAILABLE SCENARIOS:

	monthly-salary:  Salary on the 25th, rent and subscriptions, feasible goal
	biweekly-tight:  Biweekly pay, weekly groceries, yearly insurance, goal out of reach
	month-end:       Anchors on the 29th-31st and Feb 29 to show month-end clamping

HOW SCENARIOS WORK:
 1. Reset the store (clear all data)
 2. Create rules via factory presets
 3. Record transactions relative to today
 4. Set a savings goal

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "monthly-salary"}

NOTE:

	Scenarios reset the store. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: ResetDatabase handler
  - factory/presets.go: Rule JSON presets
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/warp/finance-engine/factory"
	"github.com/warp/finance-engine/finance"
	"github.com/warp/finance-engine/generic"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "monthly-salary",
		Name:        "Monthly Salary",
		Description: "Salary on the 25th, rent on the 1st, two subscriptions and a reachable goal",
	},
	{
		ID:          "biweekly-tight",
		Name:        "Biweekly Tight Budget",
		Description: "Biweekly pay, weekly groceries, yearly insurance and a goal that needs more than is left",
	},
	{
		ID:          "month-end",
		Name:        "Month-End Anchors",
		Description: "Rules anchored on the 29th-31st and Feb 29, clamped in short months",
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	current := h.currentScenario
	h.mu.Unlock()

	if current == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, ScenarioDTO{ID: current, Name: current})
}

// LoadScenario loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ScenarioID string `json:"scenario_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	var load func(context.Context, generic.Date) error
	switch req.ScenarioID {
	case "monthly-salary":
		load = h.loadMonthlySalaryScenario
	case "biweekly-tight":
		load = h.loadBiweeklyTightScenario
	case "month-end":
		load = h.loadMonthEndScenario
	default:
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	today, err := h.today(r)
	if err != nil {
		h.writeDomainError(w, r, "Invalid date", err)
		return
	}

	ctx := r.Context()
	if err := h.Store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}

	h.mu.Lock()
	h.currentScenario = ""
	h.mu.Unlock()

	if err := load(ctx, today); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}

	h.mu.Lock()
	h.currentScenario = req.ScenarioID
	h.mu.Unlock()

	h.Logger.WithField("scenario", req.ScenarioID).Info("scenario loaded")
	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func (h *Handler) loadMonthlySalaryScenario(ctx context.Context, today generic.Date) error {
	// 3000 on the 25th; 1200 rent on the 1st; potential savings 1755.01/month
	if err := h.setSalaryFromJSON(ctx, factory.MonthlySalaryJSON("3000", 25)); err != nil {
		return err
	}
	for _, js := range []string{
		factory.RentJSON("rent", "1200", 1),
		factory.SubscriptionJSON("streaming", "Streaming", "15.99", 12),
		factory.SubscriptionJSON("phone", "Phone plan", "29", 18),
	} {
		if err := h.putExpenseFromJSON(ctx, js); err != nil {
			return err
		}
	}

	txs := []finance.Transaction{
		{ID: "ms-groceries-1", Kind: finance.KindExpense, Amount: generic.MustParseDecimal("86.40"), Date: today.AddDays(-6), Description: "Groceries", Category: "food"},
		{ID: "ms-freelance", Kind: finance.KindIncome, Amount: generic.MustParseDecimal("250"), Date: today.AddDays(-3), Description: "Freelance invoice", Category: "side"},
		{ID: "ms-dinner", Kind: finance.KindExpense, Amount: generic.MustParseDecimal("42.50"), Date: today.AddDays(-1), Description: "Dinner", Category: "food"},
	}
	if err := h.appendAll(ctx, txs); err != nil {
		return err
	}

	return h.Store.SetSavingsGoal(ctx, finance.SavingsGoal{
		TargetAmount: generic.MustParseDecimal("6000"),
		Deadline:     today.AddMonths(6),
		CurrentSaved: generic.MustParseDecimal("1500"),
	})
}

func (h *Handler) loadBiweeklyTightScenario(ctx context.Context, today generic.Date) error {
	// Paid on the 1st and 16th; monthly equivalent 2800 against 2249.60 of expenses
	if err := h.setSalaryFromJSON(ctx, factory.BiweeklySalaryJSON("1400", 1)); err != nil {
		return err
	}

	groceries, err := json.Marshal(factory.RuleJSON{
		ID: "groceries", Amount: "120", Frequency: "weekly", AnchorDay: 6,
		Description: "Weekly groceries", Category: "food",
	})
	if err != nil {
		return err
	}
	for _, js := range []string{
		factory.RentJSON("rent", "1650", 1),
		string(groceries),
		factory.AnnualFeeJSON("insurance", "Car insurance", "960", 3, 15),
	} {
		if err := h.putExpenseFromJSON(ctx, js); err != nil {
			return err
		}
	}

	txs := []finance.Transaction{
		{ID: "bw-repair", Kind: finance.KindExpense, Amount: generic.MustParseDecimal("310"), Date: today.AddDays(-2), Description: "Bike repair", Category: "transport"},
	}
	if err := h.appendAll(ctx, txs); err != nil {
		return err
	}

	return h.Store.SetSavingsGoal(ctx, finance.SavingsGoal{
		TargetAmount: generic.MustParseDecimal("6000"),
		Deadline:     today.AddMonths(8),
		CurrentSaved: generic.MustParseDecimal("200"),
	})
}

func (h *Handler) loadMonthEndScenario(ctx context.Context, today generic.Date) error {
	// Salary anchored on the 31st lands on the 30th in 30-day months and on
	// Feb 28/29 in February
	if err := h.setSalaryFromJSON(ctx, factory.MonthlySalaryJSON("2800", 31)); err != nil {
		return err
	}
	for _, js := range []string{
		factory.RentJSON("rent", "1100", 30),
		factory.SubscriptionJSON("gym", "Gym", "35", 29),
		factory.AnnualFeeJSON("domain", "Domain renewal", "24", 2, 29),
	} {
		if err := h.putExpenseFromJSON(ctx, js); err != nil {
			return err
		}
	}

	return h.Store.SetSavingsGoal(ctx, finance.SavingsGoal{
		TargetAmount: generic.MustParseDecimal("1200"),
		Deadline:     today.AddMonths(6),
	})
}

func (h *Handler) setSalaryFromJSON(ctx context.Context, jsonStr string) error {
	salary, err := h.Rules.ParseSalary(jsonStr)
	if err != nil {
		return err
	}
	return h.Store.SetSalary(ctx, salary)
}

func (h *Handler) putExpenseFromJSON(ctx context.Context, jsonStr string) error {
	expense, err := h.Rules.ParseExpense(jsonStr)
	if err != nil {
		return err
	}
	return h.Store.PutRecurringExpense(ctx, expense)
}

func (h *Handler) appendAll(ctx context.Context, txs []finance.Transaction) error {
	for _, tx := range txs {
		if err := h.Store.AppendTransaction(ctx, tx); err != nil {
			return fmt.Errorf("transaction %s: %w", tx.ID, err)
		}
	}
	return nil
}
