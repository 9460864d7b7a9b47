/*
errors.go - Centralized error types for the engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Outer layers (api, store, cmd) wrap these with fmt.Errorf("...: %w").

ERROR CATEGORIES:
  1. Rule errors - Recurrence rule outside its frequency's domain
  2. Goal errors - Savings goal that cannot be simulated
  3. Projection errors - Projection requested for the past
  4. Store errors - Missing or duplicate records

USAGE:
  if errors.Is(err, generic.ErrUndefinedProjection) {
      // no projection available, not zero
  }

  var ruleErr *generic.InvalidRuleError
  if errors.As(err, &ruleErr) {
      fmt.Println(ruleErr.Field)
  }

SEE ALSO:
  - finance/due.go: Returns InvalidRuleError
  - finance/savings.go: Returns InvalidGoalError
  - finance/projection.go: Returns UndefinedProjectionError
*/
package generic

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidRule is returned for an unknown frequency or an anchor day
	// outside its frequency's domain.
	ErrInvalidRule = errors.New("invalid recurrence rule")

	// ErrInvalidGoal is returned when a savings goal cannot be simulated.
	ErrInvalidGoal = errors.New("invalid savings goal")

	// ErrUndefinedProjection is returned when a projection ends before today.
	// Callers treat it as "no projection available", never as zero.
	ErrUndefinedProjection = errors.New("projection undefined for past range")

	// ErrInvalidPeriod is returned when a period is malformed (end before start).
	ErrInvalidPeriod = errors.New("invalid period: end before start")

	// ErrProjectionTooLong is returned when a projection would walk more days
	// than allowed. It is an ErrInvalidPeriod.
	ErrProjectionTooLong = fmt.Errorf("projection range too long: %w", ErrInvalidPeriod)

	// ErrInvalidTransaction is returned for a transaction with a negative
	// amount, no date or an unknown kind.
	ErrInvalidTransaction = errors.New("invalid transaction")

	// ErrDuplicateTransaction is returned when a transaction ID already exists.
	ErrDuplicateTransaction = errors.New("duplicate transaction id")

	// ErrExpenseNotFound is returned when a recurring expense ID is unknown.
	ErrExpenseNotFound = errors.New("recurring expense not found")

	// ErrNoSalary is returned when no salary rule is configured.
	ErrNoSalary = errors.New("no salary configured")

	// ErrNoSavingsGoal is returned when no savings goal is configured.
	ErrNoSavingsGoal = errors.New("no savings goal configured")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidRuleError describes which part of a recurrence rule is wrong.
type InvalidRuleError struct {
	Frequency string
	Field     string
	Value     int
	Reason    string
}

func (e *InvalidRuleError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid recurrence rule (%s): %s", e.Frequency, e.Reason)
	}
	return fmt.Sprintf("invalid recurrence rule (%s): %s=%d %s", e.Frequency, e.Field, e.Value, e.Reason)
}

func (e *InvalidRuleError) Unwrap() error {
	return ErrInvalidRule
}

// InvalidGoalError describes why a savings goal cannot be simulated.
type InvalidGoalError struct {
	Field  string
	Reason string
}

func (e *InvalidGoalError) Error() string {
	return fmt.Sprintf("invalid savings goal: %s %s", e.Field, e.Reason)
}

func (e *InvalidGoalError) Unwrap() error {
	return ErrInvalidGoal
}

// UndefinedProjectionError reports a projection whose range ends before today.
type UndefinedProjectionError struct {
	RangeEnd Date
	Today    Date
}

func (e *UndefinedProjectionError) Error() string {
	return fmt.Sprintf("projection undefined: range ends %s, before today %s", e.RangeEnd, e.Today)
}

func (e *UndefinedProjectionError) Unwrap() error {
	return ErrUndefinedProjection
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidRule) ||
		errors.Is(err, ErrInvalidGoal) ||
		errors.Is(err, ErrInvalidPeriod) ||
		errors.Is(err, ErrInvalidTransaction)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrExpenseNotFound) ||
		errors.Is(err, ErrNoSalary) ||
		errors.Is(err, ErrNoSavingsGoal)
}

// IsConflict returns true if the error indicates a duplicate write.
func IsConflict(err error) bool {
	return errors.Is(err, ErrDuplicateTransaction)
}
