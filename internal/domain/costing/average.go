// Package costing implements the weighted-average cost model used to value
// inventory after each goods receipt.
package costing

import (
	"github.com/shopspring/decimal"

	"almacen/internal/core/types"
)

var one = decimal.NewFromInt(1)

// Engine derives unit costs and tax splits from document prices. The tax
// rate divides header totals into net and tax; line unit costs carry the
// price actually paid, converted to the base currency with the tax embedded.
type Engine struct {
	taxRate decimal.Decimal // percentage, e.g. 18 for IGV
}

// NewEngine creates a costing engine with the given tax rate percentage.
func NewEngine(taxRate decimal.Decimal) *Engine {
	return &Engine{taxRate: taxRate}
}

// NetOfTax strips the embedded tax from a gross amount: net = gross / (1 + rate/100).
// Used for the header totals split only; line costs are never de-taxed.
func (e *Engine) NetOfTax(gross decimal.Decimal) decimal.Decimal {
	divisor := one.Add(e.taxRate.Div(decimal.NewFromInt(100)))
	return gross.Div(divisor)
}

// NormalizeUnitCost converts a unit price in the document currency into the
// base-currency unit cost fed into the average.
func (e *Engine) NormalizeUnitCost(price, exchangeRate decimal.Decimal) decimal.Decimal {
	return types.RoundUnitCost(price.Mul(exchangeRate))
}

// WeightedAverage recomputes the average cost after receiving incomingQty
// units at incomingCost on top of currentQty units carried at currentCost.
//
//	newCost = (currentQty*currentCost + incomingQty*incomingCost) / (currentQty + incomingQty)
//
// When the resulting total quantity is not positive there is nothing to
// average over and the incoming cost becomes the new cost.
func WeightedAverage(currentQty, currentCost, incomingQty, incomingCost decimal.Decimal) decimal.Decimal {
	totalQty := currentQty.Add(incomingQty)
	if !totalQty.IsPositive() {
		return types.RoundUnitCost(incomingCost)
	}

	totalValue := currentQty.Mul(currentCost).Add(incomingQty.Mul(incomingCost))
	return types.RoundUnitCost(totalValue.Div(totalQty))
}
