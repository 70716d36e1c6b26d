package costing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestWeightedAverage(t *testing.T) {
	tests := []struct {
		name                       string
		curQty, curCost            string
		inQty, inCost              string
		want                       string
	}{
		{"blend of equal lots", "10", "100", "10", "150", "125"},
		{"first receipt on empty stock", "0", "0", "5", "80", "80"},
		{"small incoming lot barely moves the average", "1000", "10", "1", "20", "10.00999"},
		{"negative carried stock collapses to incoming cost", "-3", "50", "2", "90", "90"},
		{"zero total quantity collapses to incoming cost", "-5", "40", "5", "70", "70"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WeightedAverage(d(tt.curQty), d(tt.curCost), d(tt.inQty), d(tt.inCost))
			assert.True(t, got.Equal(d(tt.want)), "got %s want %s", got, tt.want)
		})
	}
}

func TestWeightedAverage_Rounding(t *testing.T) {
	// (3*10 + 7*11.333333) / 10 = 10.9333331
	got := WeightedAverage(d("3"), d("10"), d("7"), d("11.333333"))
	assert.True(t, got.Equal(d("10.933333")), "got %s", got)
}

func TestEngine_NetOfTax(t *testing.T) {
	e := NewEngine(d("18"))

	got := e.NetOfTax(d("118"))
	assert.True(t, got.Equal(d("100")), "got %s", got)

	zero := NewEngine(decimal.Zero)
	assert.True(t, zero.NetOfTax(d("59")).Equal(d("59")))
}

func TestEngine_NormalizeUnitCost(t *testing.T) {
	e := NewEngine(d("18"))

	// 118 USD at 3.75 -> 442.5 PEN. The tax split never touches line costs.
	got := e.NormalizeUnitCost(d("118"), d("3.75"))
	assert.True(t, got.Equal(d("442.5")), "got %s", got)

	// Base-currency documents pass a rate of 1.
	got = e.NormalizeUnitCost(d("11.8"), decimal.NewFromInt(1))
	assert.True(t, got.Equal(d("11.8")), "got %s", got)
}
