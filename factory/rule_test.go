package factory

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/finance-engine/finance"
	"github.com/warp/finance-engine/generic"
)

// =============================================================================
// RULE PARSING
// =============================================================================

func TestParseSalary_Presets(t *testing.T) {
	f := NewRuleFactory()

	tests := []struct {
		name   string
		json   string
		freq   finance.Frequency
		anchor int
		amount string
	}{
		{"monthly", MonthlySalaryJSON("3000", 25), finance.Monthly, 25, "3000"},
		{"biweekly", BiweeklySalaryJSON("1400.50", 1), finance.Biweekly, 1, "1400.50"},
		{"weekly", WeeklySalaryJSON("700", 5), finance.Weekly, 5, "700"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			salary, err := f.ParseSalary(tt.json)
			require.NoError(t, err)
			assert.Equal(t, tt.freq, salary.Frequency)
			assert.Equal(t, tt.anchor, salary.AnchorDay)
			assert.True(t, salary.Amount.Equal(generic.MustParseDecimal(tt.amount)))
		})
	}
}

func TestParseExpense_Presets(t *testing.T) {
	f := NewRuleFactory()

	rent, err := f.ParseExpense(RentJSON("rent", "1200", 1))
	require.NoError(t, err)
	assert.Equal(t, finance.ExpenseID("rent"), rent.ID)
	assert.Equal(t, "housing", rent.Category)
	assert.Equal(t, finance.Monthly, rent.Frequency)

	sub, err := f.ParseExpense(SubscriptionJSON("music", "Music", "9.99", 31))
	require.NoError(t, err)
	assert.Equal(t, "Music", sub.Description)
	assert.Equal(t, 31, sub.AnchorDay)

	fee, err := f.ParseExpense(AnnualFeeJSON("domain", "Domain", "24", 2, 29))
	require.NoError(t, err)
	assert.Equal(t, finance.Yearly, fee.Frequency)
	assert.Equal(t, time.February, fee.AnchorMonth)
	assert.Equal(t, 29, fee.AnchorDay)
}

func TestParseRule_Rejections(t *testing.T) {
	f := NewRuleFactory()

	tests := []struct {
		name string
		json string
	}{
		{"unknown frequency", `{"amount": "10", "frequency": "hourly", "anchor_day": 1}`},
		{"weekly anchor out of range", `{"amount": "10", "frequency": "weekly", "anchor_day": 7}`},
		{"monthly anchor zero", `{"amount": "10", "frequency": "monthly", "anchor_day": 0}`},
		{"yearly without month", `{"amount": "10", "frequency": "yearly", "anchor_day": 3}`},
		{"yearly april 31", `{"amount": "10", "frequency": "yearly", "anchor_day": 31, "anchor_month": 4}`},
		{"negative amount", `{"amount": "-10", "frequency": "daily"}`},
		{"amount not a number", `{"amount": "ten", "frequency": "daily"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.ParseRule(tt.json)
			require.Error(t, err)
			assert.True(t, errors.Is(err, generic.ErrInvalidRule), "got %v", err)
		})
	}

	_, err := f.ParseRule(`{not json`)
	assert.Error(t, err)
	assert.False(t, errors.Is(err, generic.ErrInvalidRule), "syntax errors are not rule errors")
}

func TestToJSON_RoundTrip(t *testing.T) {
	f := NewRuleFactory()

	for _, js := range []string{
		RentJSON("rent", "1200.50", 31),
		AnnualFeeJSON("insurance", "Insurance", "960", 3, 15),
		SubscriptionJSON("gym", "Gym", "35", 1),
	} {
		e, err := f.ParseExpense(js)
		require.NoError(t, err)

		back, err := f.ExpenseFromJSON(f.ExpenseToJSON(e))
		require.NoError(t, err)
		assert.Equal(t, e.ID, back.ID)
		assert.Equal(t, e.Frequency, back.Frequency)
		assert.Equal(t, e.AnchorDay, back.AnchorDay)
		assert.Equal(t, e.AnchorMonth, back.AnchorMonth)
		assert.True(t, e.Amount.Equal(back.Amount))
	}

	// Anchor month is only written for yearly rules
	monthly := f.ToJSON(finance.RecurrenceRule{Amount: generic.MustParseDecimal("1"), Frequency: finance.Monthly, AnchorDay: 5, AnchorMonth: time.May})
	assert.Zero(t, monthly.AnchorMonth)
}

// =============================================================================
// STATE FILES
// =============================================================================

const exampleStateTOML = `
[salary]
amount = "3000"
frequency = "monthly"
anchor_day = 25
description = "Salary"

[[recurring_expenses]]
id = "rent"
amount = "1200"
frequency = "monthly"
anchor_day = 1
category = "housing"

[[recurring_expenses]]
amount = "960"
frequency = "yearly"
anchor_day = 15
anchor_month = 3

[[transactions]]
kind = "income"
amount = "250"
date = "2025-06-03"
description = "Freelance"

[savings_goal]
target_amount = "5000"
deadline = "2025-12-31"
`

func TestLoadStateFile(t *testing.T) {
	// GIVEN: A state file on disk
	path := filepath.Join(t.TempDir(), "state.toml")
	require.NoError(t, os.WriteFile(path, []byte(exampleStateTOML), 0o600))

	// WHEN: Loading it
	state, err := LoadStateFile(path)
	require.NoError(t, err)

	// THEN: Everything is parsed and missing IDs are generated
	require.NotNil(t, state.Salary)
	assert.Equal(t, 25, state.Salary.AnchorDay)

	require.Len(t, state.Expenses, 2)
	assert.Equal(t, finance.ExpenseID("rent"), state.Expenses[0].ID)
	assert.Equal(t, finance.ExpenseID("expense-2"), state.Expenses[1].ID)
	assert.Equal(t, time.March, state.Expenses[1].AnchorMonth)

	require.Len(t, state.Transactions, 1)
	assert.Equal(t, finance.TransactionID("tx-1"), state.Transactions[0].ID)
	assert.Equal(t, finance.KindIncome, state.Transactions[0].Kind)

	require.NotNil(t, state.Goal)
	assert.True(t, state.Goal.CurrentSaved.IsZero(), "missing current_saved means nothing saved")
	assert.Equal(t, "2025-12-31", state.Goal.Deadline.String())
}

func TestSaveStateFile_RoundTrip(t *testing.T) {
	f := NewRuleFactory()
	salary, err := f.ParseSalary(BiweeklySalaryJSON("1400", 1))
	require.NoError(t, err)
	rent, err := f.ParseExpense(RentJSON("rent", "1650.25", 1))
	require.NoError(t, err)

	state := finance.State{
		Salary:   &salary,
		Expenses: []finance.RecurringExpense{rent},
		Transactions: []finance.Transaction{
			{ID: "t1", Kind: finance.KindExpense, Amount: generic.MustParseDecimal("42.10"), Date: generic.MustParseDate("2025-06-05"), Category: "food"},
		},
		Goal: &finance.SavingsGoal{
			TargetAmount: generic.MustParseDecimal("6000"),
			Deadline:     generic.MustParseDate("2026-02-28"),
			CurrentSaved: generic.MustParseDecimal("200"),
		},
	}

	path := filepath.Join(t.TempDir(), "nested", "state.toml")
	require.NoError(t, SaveStateFile(path, state))

	loaded, err := LoadStateFile(path)
	require.NoError(t, err)
	assert.Equal(t, finance.Biweekly, loaded.Salary.Frequency)
	require.Len(t, loaded.Expenses, 1)
	assert.True(t, loaded.Expenses[0].Amount.Equal(rent.Amount))
	require.Len(t, loaded.Transactions, 1)
	assert.Equal(t, "food", loaded.Transactions[0].Category)
	assert.True(t, loaded.Goal.CurrentSaved.Equal(generic.MustParseDecimal("200")))
	assert.Equal(t, state.Goal.Deadline, loaded.Goal.Deadline)
}

func TestStateFromFile_Rejections(t *testing.T) {
	f := NewRuleFactory()

	_, err := f.StateFromFile(StateFile{Expenses: []RuleJSON{
		{ID: "a", Amount: "1", Frequency: "daily"},
		{ID: "a", Amount: "2", Frequency: "daily"},
	}})
	assert.ErrorContains(t, err, "duplicate id")

	_, err = f.StateFromFile(StateFile{Transactions: []TransactionJSON{
		{Kind: "income", Amount: "10", Date: "2025-02-30"},
	}})
	assert.True(t, errors.Is(err, generic.ErrInvalidTransaction))

	_, err = f.StateFromFile(StateFile{Transactions: []TransactionJSON{
		{Kind: "transfer", Amount: "10", Date: "2025-02-03"},
	}})
	assert.True(t, errors.Is(err, generic.ErrInvalidTransaction))

	_, err = f.StateFromFile(StateFile{Goal: &GoalJSON{TargetAmount: "5000", Deadline: "soon"}})
	var goalErr *generic.InvalidGoalError
	require.ErrorAs(t, err, &goalErr)
	assert.Equal(t, "deadline", goalErr.Field)
}

func TestLoadStateFile_Missing(t *testing.T) {
	_, err := LoadStateFile(filepath.Join(t.TempDir(), "nope.toml"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
