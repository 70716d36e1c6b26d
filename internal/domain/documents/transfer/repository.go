package transfer

import (
	"context"
	"time"

	"almacen/internal/core/id"
	"almacen/internal/domain"
)

// Repository defines operations for transfer documents. Registered documents
// are immutable.
type Repository interface {
	Create(ctx context.Context, doc *Transfer) error
	GetByID(ctx context.Context, docID id.ID) (*Transfer, error)

	// Line operations
	GetLines(ctx context.Context, docID id.ID) ([]Line, error)
	SaveLines(ctx context.Context, docID id.ID, lines []Line) error

	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Transfer], error)
}

// ListFilter for filtering transfers.
type ListFilter struct {
	domain.ListFilter

	WarehouseID *id.ID // matches either side of the movement
	ProductID   *id.ID
	DateFrom    *time.Time
	DateTo      *time.Time
}
