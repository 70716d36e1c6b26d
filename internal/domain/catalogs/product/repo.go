package product

import (
	"context"

	"github.com/shopspring/decimal"

	"almacen/internal/core/id"
	"almacen/internal/domain"
)

// Repository defines the interface for Product persistence.
type Repository interface {
	domain.CatalogRepository[*Product]

	// GetForUpdate retrieves a product with a row lock. Costing updates
	// read-modify-write the average cost and must serialize on the row.
	GetForUpdate(ctx context.Context, id id.ID) (*Product, error)

	// UpdateAverageCost persists a recalculated average cost. The
	// denormalized stock total on the product row is maintained by the
	// stock ledger, not here.
	UpdateAverageCost(ctx context.Context, id id.ID, averageCost decimal.Decimal) error

	// ListBelowMinimum returns active products whose stock is at or under
	// their reorder threshold.
	ListBelowMinimum(ctx context.Context) ([]*Product, error)
}
