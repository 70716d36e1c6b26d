package purchase

import (
	"context"
	"time"

	"almacen/internal/core/id"
	"almacen/internal/domain"
)

// Repository defines operations for purchase documents. Registered documents
// are immutable; there is no update or delete.
type Repository interface {
	Create(ctx context.Context, doc *Purchase) error
	GetByID(ctx context.Context, docID id.ID) (*Purchase, error)

	// Line operations
	GetLines(ctx context.Context, docID id.ID) ([]Line, error)
	SaveLines(ctx context.Context, docID id.ID, lines []Line) error

	// ExistsBySupplierDoc reports whether the supplier invoice
	// (supplier, series, number) is already registered.
	ExistsBySupplierDoc(ctx context.Context, supplierID id.ID, series, number string) (bool, error)

	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Purchase], error)
}

// ListFilter for filtering purchases.
type ListFilter struct {
	domain.ListFilter

	SupplierID  *id.ID
	WarehouseID *id.ID
	ProductID   *id.ID
	DateFrom    *time.Time
	DateTo      *time.Time
}
