package measure

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"almacen/pkg/logger"
)

func TestConverter_Convert_Volume(t *testing.T) {
	c := NewConverter()

	got := c.Convert(context.Background(), decimal.NewFromInt(500), "ML", "LITRO")
	assert.True(t, got.Equal(decimal.RequireFromString("0.5")), "got %s", got)

	got = c.Convert(context.Background(), decimal.NewFromInt(2), "GLN", "LITRO")
	assert.True(t, got.Equal(decimal.RequireFromString("7.570823568")), "got %s", got)

	got = c.Convert(context.Background(), decimal.NewFromInt(1), "M3", "LITRO")
	assert.True(t, got.Equal(decimal.NewFromInt(1000)), "got %s", got)
}

func TestConverter_Convert_Mass(t *testing.T) {
	c := NewConverter()

	got := c.Convert(context.Background(), decimal.NewFromInt(1500), "GR", "KG")
	assert.True(t, got.Equal(decimal.RequireFromString("1.5")), "got %s", got)

	got = c.Convert(context.Background(), decimal.NewFromInt(10), "LB", "KG")
	assert.True(t, got.Equal(decimal.RequireFromString("4.5359237")), "got %s", got)
}

func TestConverter_Convert_RoundTrip(t *testing.T) {
	c := NewConverter()

	ctx := context.Background()
	qty := decimal.RequireFromString("3.25")
	back := c.Convert(ctx, c.Convert(ctx, qty, "KG", "GR"), "GR", "KG")
	assert.True(t, back.Equal(qty), "got %s", back)
}

func TestConverter_Convert_SameUnit(t *testing.T) {
	c := NewConverter()

	qty := decimal.RequireFromString("12.34")
	assert.True(t, c.Convert(context.Background(), qty, "KG", "KG").Equal(qty))
	assert.True(t, c.Convert(context.Background(), qty, "litro", "LITRO").Equal(qty))
}

func TestConverter_Convert_Incompatible(t *testing.T) {
	c := NewConverter()

	// Units from different families pass through unchanged.
	qty := decimal.NewFromInt(7)
	got := c.Convert(context.Background(), qty, "KG", "LITRO")
	assert.True(t, got.Equal(qty), "got %s", got)

	require.True(t, c.Factor(context.Background(), "UND", "KG").Equal(decimal.NewFromInt(1)))
}

func TestConverter_Convert_IncompatibleIsLogged(t *testing.T) {
	c := NewConverter()

	core, logs := observer.New(zapcore.WarnLevel)
	ctx := logger.WithLogger(context.Background(), &logger.Logger{SugaredLogger: zap.New(core).Sugar()})

	c.Convert(ctx, decimal.NewFromInt(7), "KG", "LITRO")

	entries := logs.FilterMessage("incompatible unit conversion, quantity passed through").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "KG", fields["from"])
	assert.Equal(t, "LITRO", fields["to"])
}

func TestConverter_Compatible(t *testing.T) {
	c := NewConverter()

	assert.True(t, c.Compatible("ML", "GLN"))
	assert.True(t, c.Compatible("kg", "TON"))
	assert.False(t, c.Compatible("KG", "ML"))
	// Unknown units collapse into the discrete family.
	assert.True(t, c.Compatible("DOCENA", "UND"))
}

func TestConverter_FamilyOf(t *testing.T) {
	c := NewConverter()

	assert.Equal(t, FamilyVolume, c.FamilyOf("gln"))
	assert.Equal(t, FamilyMass, c.FamilyOf("TON"))
	assert.Equal(t, FamilyLength, c.FamilyOf("MM"))
	assert.Equal(t, FamilyCount, c.FamilyOf("CAJA"))
	assert.Equal(t, FamilyCount, c.FamilyOf("whatever"))
}

func TestConverter_CompatibleUnits(t *testing.T) {
	c := NewConverter()

	assert.Equal(t, []string{"GLN", "LITRO", "M3", "ML"}, c.CompatibleUnits("LITRO"))
	assert.Equal(t, []string{"XYZ"}, c.CompatibleUnits("xyz"))
}
