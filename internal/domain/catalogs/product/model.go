// Package product provides the Product catalog. Products carry the
// denormalized stock total and the weighted-average cost maintained by the
// inventory documents.
package product

import (
	"context"

	"github.com/shopspring/decimal"

	"almacen/internal/core/apperror"
	"almacen/internal/core/entity"
)

// Product represents an item tracked in inventory.
type Product struct {
	entity.Catalog

	// Description is optional free text
	Description *string `db:"description" json:"description,omitempty"`

	// Category groups products for reporting
	Category *string `db:"category" json:"category,omitempty"`

	// Unit is the base unit of measure (e.g. UND, KG, LITRO)
	Unit string `db:"unit" json:"unit"`

	// Currency of the reference purchase price
	Currency string `db:"currency" json:"currency"`

	// PurchasePrice is the reference gross purchase price
	PurchasePrice decimal.Decimal `db:"purchase_price" json:"purchasePrice"`

	// SalePrice is the reference sale price
	SalePrice decimal.Decimal `db:"sale_price" json:"salePrice"`

	// Stock is the denormalized total quantity across all warehouses,
	// in the base unit. Maintained by the stock ledger.
	Stock decimal.Decimal `db:"stock" json:"stock"`

	// MinStock is the reorder threshold for low-stock alerts
	MinStock decimal.Decimal `db:"min_stock" json:"minStock"`

	// AverageCost is the weighted-average unit cost in the base currency,
	// net of tax. Maintained by the costing engine.
	AverageCost decimal.Decimal `db:"average_cost" json:"averageCost"`
}

// New creates a new Product with required fields.
func New(code, name, unit string) *Product {
	return &Product{
		Catalog: entity.NewCatalog(code, name),
		Unit:    unit,
	}
}

// Validate implements entity.Validatable interface.
func (p *Product) Validate(ctx context.Context) error {
	if err := p.Catalog.Validate(ctx); err != nil {
		return err
	}

	if p.Unit == "" {
		return apperror.NewValidation("unit is required").
			WithDetail("field", "unit")
	}
	if p.PurchasePrice.IsNegative() {
		return apperror.NewValidation("purchase price cannot be negative").
			WithDetail("field", "purchasePrice").
			WithDetail("value", p.PurchasePrice.String())
	}
	if p.SalePrice.IsNegative() {
		return apperror.NewValidation("sale price cannot be negative").
			WithDetail("field", "salePrice").
			WithDetail("value", p.SalePrice.String())
	}
	if p.MinStock.IsNegative() {
		return apperror.NewValidation("minimum stock cannot be negative").
			WithDetail("field", "minStock").
			WithDetail("value", p.MinStock.String())
	}

	return nil
}

// BelowMinimum reports whether current stock is at or under the reorder threshold.
func (p *Product) BelowMinimum() bool {
	return p.MinStock.IsPositive() && p.Stock.LessThanOrEqual(p.MinStock)
}
