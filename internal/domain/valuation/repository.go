// Package valuation reconstructs FIFO inventory values from document
// history. Stock is carried at weighted-average cost; FIFO figures are a
// reporting view computed by replaying purchases against consumptions, not
// a second stored costing model.
package valuation

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"almacen/internal/core/id"
)

// Batch is one purchase line seen as a FIFO layer: quantity in the product's
// base unit at the net base-currency unit cost recorded on the document.
type Batch struct {
	DocumentID id.ID           `db:"document_id" json:"documentId"`
	Date       time.Time       `db:"date" json:"date"`
	Quantity   decimal.Decimal `db:"quantity" json:"quantity"`
	UnitCost   decimal.Decimal `db:"unit_cost" json:"unitCost"`
}

// ConsumptionKind distinguishes what took stock out of circulation.
type ConsumptionKind string

const (
	KindExit        ConsumptionKind = "exit"
	KindTransferOut ConsumptionKind = "transfer_out"
)

// Consumption is one outbound event in the replay: an exit line or the
// outbound leg of a transfer line.
type Consumption struct {
	DocumentID id.ID           `db:"document_id" json:"documentId"`
	Date       time.Time       `db:"date" json:"date"`
	Kind       ConsumptionKind `db:"kind" json:"kind"`
	Quantity   decimal.Decimal `db:"quantity" json:"quantity"`
}

// Repository streams the full document history of a product in
// chronological order. Implementations run the queries inside the
// repeatable-read snapshot opened by the service.
type Repository interface {
	// Batches returns all purchase layers for a product, oldest first.
	Batches(ctx context.Context, productID id.ID) ([]Batch, error)

	// Consumptions returns all outbound events for a product, oldest first.
	Consumptions(ctx context.Context, productID id.ID) ([]Consumption, error)

	// StockedProductIDs returns the ids of products with a non-zero total
	// stock, in name order.
	StockedProductIDs(ctx context.Context) ([]id.ID, error)
}
