// Package warehouse provides the Warehouse catalog. Warehouses are the
// physical locations stock is received into, issued from and moved between.
package warehouse

import (
	"context"

	"almacen/internal/core/entity"
)

// Warehouse represents a storage location for goods.
type Warehouse struct {
	entity.Catalog

	// Address is the physical address
	Address *string `db:"address" json:"address,omitempty"`

	// IsDefault marks the warehouse purchases land in when the document
	// does not name one
	IsDefault bool `db:"is_default" json:"isDefault"`
}

// New creates a new Warehouse with required fields.
func New(code, name string) *Warehouse {
	return &Warehouse{
		Catalog: entity.NewCatalog(code, name),
	}
}

// Validate implements entity.Validatable interface.
func (w *Warehouse) Validate(ctx context.Context) error {
	return w.Catalog.Validate(ctx)
}

// CanHoldStock reports whether the warehouse accepts movements.
func (w *Warehouse) CanHoldStock() bool {
	return w.IsActive
}
