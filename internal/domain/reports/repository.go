package reports

import (
	"context"

	"almacen/internal/core/id"
)

// Repository defines report data access. Implementations read the document
// history and current balances; queries run inside the repeatable-read
// snapshot opened by the service.
type Repository interface {
	// Movements returns the full movement history of a product, oldest
	// first, optionally restricted to one warehouse. Transfers contribute
	// two rows: an outbound row for the source and an inbound row for the
	// destination.
	Movements(ctx context.Context, productID id.ID, warehouseID *id.ID) ([]Movement, error)

	// AllMovements returns the movements of every product in the window,
	// newest first, joined with product identity.
	AllMovements(ctx context.Context, filter GlobalKardexFilter) ([]GlobalMovement, error)

	// Snapshot returns current positions joined with product and
	// warehouse names.
	Snapshot(ctx context.Context, filter SnapshotFilter) ([]SnapshotRow, error)

	// PurchaseTotalsBySupplier aggregates registered purchases per
	// supplier for a period.
	PurchaseTotalsBySupplier(ctx context.Context, filter PurchaseTotalsFilter) ([]SupplierTotal, error)
}
