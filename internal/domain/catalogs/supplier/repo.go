package supplier

import (
	"context"

	"almacen/internal/domain"
)

// Repository defines the interface for Supplier persistence.
type Repository interface {
	domain.CatalogRepository[*Supplier]

	// GetByTaxID retrieves a supplier by fiscal identifier.
	GetByTaxID(ctx context.Context, taxID string) (*Supplier, error)
}
