package exit

import (
	"context"
	"time"

	"almacen/internal/core/id"
	"almacen/internal/domain"
)

// Repository defines operations for exit documents. Registered documents
// are immutable.
type Repository interface {
	Create(ctx context.Context, doc *Exit) error
	GetByID(ctx context.Context, docID id.ID) (*Exit, error)

	// Line operations
	GetLines(ctx context.Context, docID id.ID) ([]Line, error)
	SaveLines(ctx context.Context, docID id.ID, lines []Line) error

	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Exit], error)
}

// ListFilter for filtering exits.
type ListFilter struct {
	domain.ListFilter

	WarehouseID *id.ID
	ProductID   *id.ID
	DateFrom    *time.Time
	DateTo      *time.Time
}
