package factory

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/shopspring/decimal"
	"github.com/warp/finance-engine/finance"
	"github.com/warp/finance-engine/generic"
)

// =============================================================================
// STATE FILE - TOML snapshot of salary, expenses, transactions and goal
// =============================================================================
//
//   [salary]
//   amount = "3000"
//   frequency = "monthly"
//   anchor_day = 25
//
//   [[recurring_expenses]]
//   id = "rent"
//   amount = "1200"
//   frequency = "monthly"
//   anchor_day = 1
//   category = "housing"
//
//   [[transactions]]
//   id = "t1"
//   kind = "expense"
//   amount = "42.50"
//   date = "2024-03-02"
//
//   [savings_goal]
//   target_amount = "5000"
//   deadline = "2024-12-31"
//   current_saved = "1000"

// StateFile is the on-disk TOML layout.
type StateFile struct {
	Salary       *RuleJSON         `toml:"salary,omitempty"`
	Expenses     []RuleJSON        `toml:"recurring_expenses,omitempty"`
	Transactions []TransactionJSON `toml:"transactions,omitempty"`
	Goal         *GoalJSON         `toml:"savings_goal,omitempty"`
}

// TransactionJSON is the flat representation of a transaction.
type TransactionJSON struct {
	ID          string `json:"id" toml:"id"`
	Kind        string `json:"kind" toml:"kind"`
	Amount      string `json:"amount" toml:"amount"`
	Date        string `json:"date" toml:"date"`
	Description string `json:"description,omitempty" toml:"description,omitempty"`
	Category    string `json:"category,omitempty" toml:"category,omitempty"`
}

// GoalJSON is the flat representation of a savings goal.
type GoalJSON struct {
	TargetAmount string `json:"target_amount" toml:"target_amount"`
	Deadline     string `json:"deadline" toml:"deadline"`
	CurrentSaved string `json:"current_saved" toml:"current_saved"`
}

// LoadStateFile reads and validates a TOML state file.
func LoadStateFile(path string) (finance.State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return finance.State{}, fmt.Errorf("reading state file: %w", err)
	}

	var sf StateFile
	if err := toml.Unmarshal(data, &sf); err != nil {
		return finance.State{}, fmt.Errorf("parsing state file: %w", err)
	}
	return NewRuleFactory().StateFromFile(sf)
}

// SaveStateFile writes state to path, creating parent directories.
func SaveStateFile(path string, state finance.State) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating state dir: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating state file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(NewRuleFactory().StateToFile(state))
}

// StateFromFile converts a decoded StateFile into a validated finance.State.
func (f *RuleFactory) StateFromFile(sf StateFile) (finance.State, error) {
	var state finance.State

	if sf.Salary != nil {
		salary, err := f.SalaryFromJSON(*sf.Salary)
		if err != nil {
			return finance.State{}, fmt.Errorf("salary: %w", err)
		}
		state.Salary = &salary
	}

	seen := make(map[finance.ExpenseID]bool)
	for i, rj := range sf.Expenses {
		e, err := f.ExpenseFromJSON(rj)
		if err != nil {
			return finance.State{}, fmt.Errorf("recurring expense %d: %w", i, err)
		}
		if e.ID == "" {
			e.ID = finance.ExpenseID(fmt.Sprintf("expense-%d", i+1))
		}
		if seen[e.ID] {
			return finance.State{}, fmt.Errorf("recurring expense %s: duplicate id", e.ID)
		}
		seen[e.ID] = true
		state.Expenses = append(state.Expenses, e)
	}

	for i, tj := range sf.Transactions {
		tx, err := f.TransactionFromJSON(tj)
		if err != nil {
			return finance.State{}, fmt.Errorf("transaction %d: %w", i, err)
		}
		if tx.ID == "" {
			tx.ID = finance.TransactionID(fmt.Sprintf("tx-%d", i+1))
		}
		state.Transactions = append(state.Transactions, tx)
	}

	if sf.Goal != nil {
		goal, err := f.GoalFromJSON(*sf.Goal)
		if err != nil {
			return finance.State{}, fmt.Errorf("savings goal: %w", err)
		}
		state.Goal = &goal
	}

	return state, nil
}

// StateToFile is the inverse of StateFromFile.
func (f *RuleFactory) StateToFile(state finance.State) StateFile {
	var sf StateFile
	if state.Salary != nil {
		rj := f.ToJSON(state.Salary.RecurrenceRule)
		sf.Salary = &rj
	}
	for _, e := range state.Expenses {
		sf.Expenses = append(sf.Expenses, f.ExpenseToJSON(e))
	}
	for _, tx := range state.Transactions {
		sf.Transactions = append(sf.Transactions, TransactionToJSON(tx))
	}
	if state.Goal != nil {
		gj := GoalToJSON(*state.Goal)
		sf.Goal = &gj
	}
	return sf
}

// TransactionFromJSON converts and validates a transaction record.
func (f *RuleFactory) TransactionFromJSON(tj TransactionJSON) (finance.Transaction, error) {
	amount, err := generic.ParseDecimal(tj.Amount)
	if err != nil {
		return finance.Transaction{}, fmt.Errorf("%w: %v", generic.ErrInvalidTransaction, err)
	}
	date, err := generic.ParseDate(tj.Date)
	if err != nil {
		return finance.Transaction{}, fmt.Errorf("%w: %v", generic.ErrInvalidTransaction, err)
	}

	tx := finance.Transaction{
		ID:          finance.TransactionID(tj.ID),
		Kind:        finance.TransactionKind(tj.Kind),
		Amount:      amount,
		Date:        date,
		Description: tj.Description,
		Category:    tj.Category,
	}
	if err := tx.Validate(); err != nil {
		return finance.Transaction{}, err
	}
	return tx, nil
}

// GoalFromJSON converts a goal record. Amount and deadline checks belong to
// the simulator; only syntax is checked here.
func (f *RuleFactory) GoalFromJSON(gj GoalJSON) (finance.SavingsGoal, error) {
	target, err := generic.ParseDecimal(gj.TargetAmount)
	if err != nil {
		return finance.SavingsGoal{}, &generic.InvalidGoalError{Field: "target_amount", Reason: err.Error()}
	}
	var saved decimal.Decimal
	if gj.CurrentSaved != "" {
		if saved, err = generic.ParseDecimal(gj.CurrentSaved); err != nil {
			return finance.SavingsGoal{}, &generic.InvalidGoalError{Field: "current_saved", Reason: err.Error()}
		}
	}
	deadline, err := generic.ParseDate(gj.Deadline)
	if err != nil {
		return finance.SavingsGoal{}, &generic.InvalidGoalError{Field: "deadline", Reason: err.Error()}
	}
	return finance.SavingsGoal{TargetAmount: target, Deadline: deadline, CurrentSaved: saved}, nil
}

// TransactionToJSON converts a transaction to its flat record.
func TransactionToJSON(tx finance.Transaction) TransactionJSON {
	return TransactionJSON{
		ID:          string(tx.ID),
		Kind:        string(tx.Kind),
		Amount:      tx.Amount.String(),
		Date:        tx.Date.String(),
		Description: tx.Description,
		Category:    tx.Category,
	}
}

// GoalToJSON converts a savings goal to its flat record.
func GoalToJSON(g finance.SavingsGoal) GoalJSON {
	return GoalJSON{
		TargetAmount: g.TargetAmount.String(),
		Deadline:     g.Deadline.String(),
		CurrentSaved: g.CurrentSaved.String(),
	}
}
