// Package types provides common type aliases and the rounding policy.
package types

import (
	"github.com/shopspring/decimal"
)

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors.
type Money = decimal.Decimal

// Quantity represents a stock quantity. Quantities may be fractional
// (e.g. 2.5 KG purchased as 2500 GR) so they share the decimal representation.
type Quantity = decimal.Decimal

// Rounding policy. Currency amounts round to 2 places for presentation and
// document totals; unit costs keep extra precision so repeated weighted-average
// recomputation does not drift; quantities round to 4 places to match
// NUMERIC(15,4) storage.
const (
	MoneyPlaces    int32 = 2
	UnitCostPlaces int32 = 6
	QuantityPlaces int32 = 4
)

// NewMoney creates a Money value from a float.
// WARNING: Use NewMoneyFromString for precise values.
func NewMoney(f float64) Money {
	return decimal.NewFromFloat(f)
}

// NewMoneyFromString creates a Money value from a string.
// This is the preferred method for monetary values.
func NewMoneyFromString(s string) (Money, error) {
	return decimal.NewFromString(s)
}

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants and tests.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Zero returns zero Money value.
func Zero() Money {
	return decimal.Zero
}

// RoundMoney rounds to currency precision (2 places).
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

// RoundUnitCost rounds to unit cost precision (6 places).
func RoundUnitCost(d decimal.Decimal) decimal.Decimal {
	return d.Round(UnitCostPlaces)
}

// RoundQuantity rounds to quantity precision (4 places).
func RoundQuantity(d decimal.Decimal) decimal.Decimal {
	return d.Round(QuantityPlaces)
}
