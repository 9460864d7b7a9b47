/*
Package generic provides the domain-agnostic building blocks of the finance
engine.

PURPOSE:
  Calendar dates, inclusive periods, money helpers and the shared error
  vocabulary. Nothing here knows about salaries, expenses or goals; the
  finance package composes these primitives into the projection engine.

KEY CONCEPTS IN THIS FILE (types.go):
  - Money helpers: decimal parsing and rounding for currency amounts
  - Sign: whether an amount flows in or out of the account

DESIGN PRINCIPLES:
  1. Precision: all money is decimal.Decimal, never float64
  2. Day granularity: every date is a Date, time-of-day is dropped
  3. Determinism: nothing in this package reads the wall clock

USAGE:
  amount := generic.MustParseDecimal("1000.50")
  d := generic.NewDate(2024, time.February, 29)
  next := d.AddYears(1) // 2025-02-28

SEE ALSO:
  - time.go: Date and calendar utilities
  - period.go: Inclusive date ranges
  - errors.go: Sentinel and structured errors
*/
package generic

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY
// =============================================================================

// CurrencyPlaces is the number of decimal places kept when rounding money.
const CurrencyPlaces = 2

func ParseDecimal(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return d, nil
}

func MustParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// RoundMoney rounds half away from zero to CurrencyPlaces.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(CurrencyPlaces)
}

// Percent returns part / whole * 100, or zero when whole is zero.
func Percent(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(decimal.NewFromInt(100))
}

// =============================================================================
// SIGN
// =============================================================================

// Sign tells whether an amount adds to or subtracts from a balance.
type Sign int

const (
	Inflow  Sign = 1
	Outflow Sign = -1
)

// Apply returns amount with the sign applied.
func (s Sign) Apply(amount decimal.Decimal) decimal.Decimal {
	if s == Outflow {
		return amount.Neg()
	}
	return amount
}
