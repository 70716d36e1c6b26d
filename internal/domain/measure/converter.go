// Package measure provides unit-of-measure conversion between compatible
// units of the same physical family (volume, mass, length).
package measure

import (
	"context"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"almacen/pkg/logger"
)

// Family identifies a physical unit family.
type Family string

const (
	FamilyVolume Family = "VOLUMEN"
	FamilyMass   Family = "MASA"
	FamilyLength Family = "LONGITUD"
	// FamilyCount covers discrete units (UND, CAJA...) and any unknown unit.
	// Units in this family never convert; the factor is always 1.
	FamilyCount Family = "UNIDAD"
)

// factor is the multiplier from a unit to its family base unit.
// e.g. 1 ML = 0.001 LITRO.
var families = map[Family]map[string]decimal.Decimal{
	FamilyVolume: {
		"LITRO": decimal.NewFromInt(1),
		"ML":    decimal.RequireFromString("0.001"),
		"GLN":   decimal.RequireFromString("3.785411784"), // US gallon
		"M3":    decimal.NewFromInt(1000),
	},
	FamilyMass: {
		"KG":  decimal.NewFromInt(1),
		"GR":  decimal.RequireFromString("0.001"),
		"TON": decimal.NewFromInt(1000),
		"LB":  decimal.RequireFromString("0.45359237"),
	},
	FamilyLength: {
		"METRO": decimal.NewFromInt(1),
		"CM":    decimal.RequireFromString("0.01"),
		"MM":    decimal.RequireFromString("0.001"),
	},
	FamilyCount: {
		"UND":   decimal.NewFromInt(1),
		"CAJA":  decimal.NewFromInt(1),
		"BOLSA": decimal.NewFromInt(1),
		"LATA":  decimal.NewFromInt(1),
	},
}

// Converter resolves unit families and converts quantities between them.
// The zero value is not usable; construct with NewConverter.
type Converter struct {
	families map[Family]map[string]decimal.Decimal
}

// NewConverter creates a converter with the built-in unit families.
func NewConverter() *Converter {
	return &Converter{families: families}
}

// normalize canonicalizes a unit code for lookup.
func normalize(unit string) string {
	return strings.ToUpper(strings.TrimSpace(unit))
}

// FamilyOf returns the family a unit belongs to.
// Unknown units are treated as discrete (FamilyCount).
func (c *Converter) FamilyOf(unit string) Family {
	u := normalize(unit)
	for family, units := range c.families {
		if _, ok := units[u]; ok {
			return family
		}
	}
	return FamilyCount
}

// Compatible reports whether two units belong to the same family.
func (c *Converter) Compatible(unitA, unitB string) bool {
	return c.FamilyOf(unitA) == c.FamilyOf(unitB)
}

// Factor returns the conversion factor from one unit to another:
// qtyTo = qtyFrom * factor. Incompatible units yield 1 and a warning;
// the quantity passes through as if already in the target unit.
func (c *Converter) Factor(ctx context.Context, fromUnit, toUnit string) decimal.Decimal {
	from := normalize(fromUnit)
	to := normalize(toUnit)

	if from == to {
		return decimal.NewFromInt(1)
	}

	fromFamily := c.FamilyOf(from)
	if fromFamily != c.FamilyOf(to) {
		logger.Warn(ctx, "incompatible unit conversion, quantity passed through",
			"from", from, "to", to)
		return decimal.NewFromInt(1)
	}

	units := c.families[fromFamily]
	fromFactor, ok := units[from]
	if !ok {
		fromFactor = decimal.NewFromInt(1)
	}
	toFactor, ok := units[to]
	if !ok {
		toFactor = decimal.NewFromInt(1)
	}

	return fromFactor.Div(toFactor)
}

// Convert converts a quantity between units of the same family.
// For incompatible units the quantity is returned unchanged.
func (c *Converter) Convert(ctx context.Context, qty decimal.Decimal, fromUnit, toUnit string) decimal.Decimal {
	return qty.Mul(c.Factor(ctx, fromUnit, toUnit))
}

// CompatibleUnits returns the units sharing a family with the given base unit,
// sorted for stable presentation. Unknown units return only themselves.
func (c *Converter) CompatibleUnits(baseUnit string) []string {
	u := normalize(baseUnit)
	family := c.FamilyOf(u)

	units, ok := c.families[family]
	if !ok {
		return []string{u}
	}
	if family == FamilyCount {
		if _, known := units[u]; !known {
			return []string{u}
		}
	}

	result := make([]string, 0, len(units))
	for code := range units {
		result = append(result, code)
	}
	sort.Strings(result)
	return result
}
