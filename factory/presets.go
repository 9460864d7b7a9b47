package factory

import (
	"encoding/json"
)

// =============================================================================
// PRESET RULES
// =============================================================================
//
// Presets build JSON strings so they round-trip through the same parser the
// API uses.

// MonthlySalaryJSON returns JSON for a salary paid on the same day every month.
func MonthlySalaryJSON(amount string, payday int) string {
	return presetJSON(RuleJSON{
		Amount:      amount,
		Frequency:   "monthly",
		AnchorDay:   payday,
		Description: "Salary",
	})
}

// BiweeklySalaryJSON returns JSON for a salary paid on firstPayday and 15
// days later each month.
func BiweeklySalaryJSON(amount string, firstPayday int) string {
	return presetJSON(RuleJSON{
		Amount:      amount,
		Frequency:   "biweekly",
		AnchorDay:   firstPayday,
		Description: "Salary",
	})
}

// WeeklySalaryJSON returns JSON for a salary paid every week on weekday
// (0 = Sunday).
func WeeklySalaryJSON(amount string, weekday int) string {
	return presetJSON(RuleJSON{
		Amount:      amount,
		Frequency:   "weekly",
		AnchorDay:   weekday,
		Description: "Salary",
	})
}

// RentJSON returns JSON for a monthly housing expense.
func RentJSON(id, amount string, dueDay int) string {
	return presetJSON(RuleJSON{
		ID:          id,
		Amount:      amount,
		Frequency:   "monthly",
		AnchorDay:   dueDay,
		Description: "Rent",
		Category:    "housing",
	})
}

// SubscriptionJSON returns JSON for a monthly subscription.
func SubscriptionJSON(id, name, amount string, dueDay int) string {
	return presetJSON(RuleJSON{
		ID:          id,
		Amount:      amount,
		Frequency:   "monthly",
		AnchorDay:   dueDay,
		Description: name,
		Category:    "subscriptions",
	})
}

// AnnualFeeJSON returns JSON for an expense charged once a year.
func AnnualFeeJSON(id, name, amount string, month, day int) string {
	return presetJSON(RuleJSON{
		ID:          id,
		Amount:      amount,
		Frequency:   "yearly",
		AnchorDay:   day,
		AnchorMonth: month,
		Description: name,
		Category:    "fees",
	})
}

func presetJSON(rj RuleJSON) string {
	b, _ := json.MarshalIndent(rj, "", "  ")
	return string(b)
}
