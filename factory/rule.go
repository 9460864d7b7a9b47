/*
Package factory converts external rule definitions into finance rules.

PURPOSE:
  Salary schedules and recurring expenses arrive as JSON from the API or as
  TOML tables from a state file. The factory parses those flat records into
  finance.RecurrenceRule values and validates them, so outer layers never
  build rules by hand.

JSON SCHEMA:
  {
    "id": "rent",                 // recurring expenses only
    "amount": "1200.00",          // decimal string, never a float
    "frequency": "monthly",       // daily, weekly, biweekly, monthly, yearly
    "anchor_day": 1,              // weekday 0-6 for weekly, day 1-31 otherwise
    "anchor_month": 0,            // yearly only, 1-12
    "description": "Rent",
    "category": "housing"         // recurring expenses only
  }

KEY FEATURES:
  - Amounts are decimal strings so cents never drift
  - Out-of-range anchors are rejected, never clamped
  - ToJSON is the inverse of FromJSON for valid rules

USAGE:
  f := factory.NewRuleFactory()

  salary, err := f.ParseSalary(factory.MonthlySalaryJSON("3000", 25))
  rent, err := f.ParseExpense(factory.RentJSON("rent", "1200", 1))

SEE ALSO:
  - finance/rule.go: RecurrenceRule and anchor domains
  - factory/statefile.go: TOML state files built from the same records
  - factory/presets.go: Common rule presets
*/
package factory

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/warp/finance-engine/finance"
	"github.com/warp/finance-engine/generic"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// RuleJSON is the flat JSON/TOML representation of a recurrence rule.
type RuleJSON struct {
	ID          string `json:"id,omitempty" toml:"id,omitempty"`
	Amount      string `json:"amount" toml:"amount"`
	Frequency   string `json:"frequency" toml:"frequency"`
	AnchorDay   int    `json:"anchor_day" toml:"anchor_day"`
	AnchorMonth int    `json:"anchor_month,omitempty" toml:"anchor_month,omitempty"` // Month 1-12, yearly only
	Description string `json:"description,omitempty" toml:"description,omitempty"`
	Category    string `json:"category,omitempty" toml:"category,omitempty"`
}

// =============================================================================
// RULE FACTORY
// =============================================================================

// RuleFactory converts RuleJSON records to finance rules.
type RuleFactory struct{}

// NewRuleFactory creates a new rule factory.
func NewRuleFactory() *RuleFactory {
	return &RuleFactory{}
}

// ParseRule parses a JSON string into a validated RecurrenceRule.
func (f *RuleFactory) ParseRule(jsonStr string) (finance.RecurrenceRule, error) {
	rj, err := decodeRule(jsonStr)
	if err != nil {
		return finance.RecurrenceRule{}, err
	}
	return f.FromJSON(rj)
}

// ParseSalary parses a JSON string into a SalaryRule.
func (f *RuleFactory) ParseSalary(jsonStr string) (finance.SalaryRule, error) {
	rj, err := decodeRule(jsonStr)
	if err != nil {
		return finance.SalaryRule{}, err
	}
	return f.SalaryFromJSON(rj)
}

// ParseExpense parses a JSON string into a RecurringExpense.
func (f *RuleFactory) ParseExpense(jsonStr string) (finance.RecurringExpense, error) {
	rj, err := decodeRule(jsonStr)
	if err != nil {
		return finance.RecurringExpense{}, err
	}
	return f.ExpenseFromJSON(rj)
}

// FromJSON converts RuleJSON to a validated RecurrenceRule.
func (f *RuleFactory) FromJSON(rj RuleJSON) (finance.RecurrenceRule, error) {
	amount, err := generic.ParseDecimal(rj.Amount)
	if err != nil {
		return finance.RecurrenceRule{}, fmt.Errorf("%w: %v", generic.ErrInvalidRule, err)
	}
	freq, err := finance.ParseFrequency(rj.Frequency)
	if err != nil {
		return finance.RecurrenceRule{}, err
	}

	rule := finance.RecurrenceRule{
		Amount:      amount,
		Frequency:   freq,
		AnchorDay:   rj.AnchorDay,
		AnchorMonth: time.Month(rj.AnchorMonth),
		Description: rj.Description,
	}
	if err := rule.Validate(); err != nil {
		return finance.RecurrenceRule{}, err
	}
	return rule, nil
}

// SalaryFromJSON converts RuleJSON to a SalaryRule. ID and category are ignored.
func (f *RuleFactory) SalaryFromJSON(rj RuleJSON) (finance.SalaryRule, error) {
	rule, err := f.FromJSON(rj)
	if err != nil {
		return finance.SalaryRule{}, err
	}
	return finance.SalaryRule{RecurrenceRule: rule}, nil
}

// ExpenseFromJSON converts RuleJSON to a RecurringExpense. An empty ID is
// left empty for the caller to assign.
func (f *RuleFactory) ExpenseFromJSON(rj RuleJSON) (finance.RecurringExpense, error) {
	rule, err := f.FromJSON(rj)
	if err != nil {
		return finance.RecurringExpense{}, err
	}
	return finance.RecurringExpense{
		RecurrenceRule: rule,
		ID:             finance.ExpenseID(rj.ID),
		Category:       rj.Category,
	}, nil
}

// ToJSON converts a RecurrenceRule to RuleJSON.
func (f *RuleFactory) ToJSON(rule finance.RecurrenceRule) RuleJSON {
	rj := RuleJSON{
		Amount:      rule.Amount.String(),
		Frequency:   rule.Frequency.String(),
		AnchorDay:   rule.AnchorDay,
		Description: rule.Description,
	}
	if rule.Frequency == finance.Yearly {
		rj.AnchorMonth = int(rule.AnchorMonth)
	}
	return rj
}

// ExpenseToJSON converts a RecurringExpense to RuleJSON.
func (f *RuleFactory) ExpenseToJSON(e finance.RecurringExpense) RuleJSON {
	rj := f.ToJSON(e.RecurrenceRule)
	rj.ID = string(e.ID)
	rj.Category = e.Category
	return rj
}

// =============================================================================
// PARSING HELPERS
// =============================================================================

func decodeRule(jsonStr string) (RuleJSON, error) {
	var rj RuleJSON
	if err := json.Unmarshal([]byte(jsonStr), &rj); err != nil {
		return RuleJSON{}, fmt.Errorf("failed to parse rule JSON: %w", err)
	}
	return rj, nil
}
