// Package exit provides the Exit document: goods leaving a warehouse for
// consumption, sale or disposal. Exits are valued at the product's
// weighted-average cost at the moment of registration.
package exit

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"almacen/internal/core/apperror"
	"almacen/internal/core/entity"
	"almacen/internal/core/id"
)

// Exit represents an outbound stock document.
type Exit struct {
	entity.Document

	// WarehouseID is the default warehouse for lines that do not name
	// their own
	WarehouseID id.ID `db:"warehouse_id" json:"warehouseId"`

	// Reason for the exit (consumption, sale, damage...)
	Reason string `db:"reason" json:"reason"`

	// Recipient is who received the goods
	Recipient *string `db:"recipient" json:"recipient,omitempty"`

	// TotalCost is the summed cost of all lines, base currency
	TotalCost decimal.Decimal `db:"total_cost" json:"totalCost"`

	// Table part: issued goods
	Lines []Line `db:"-" json:"lines"`
}

// Line represents a line in the exit document.
type Line struct {
	LineID id.ID `db:"line_id" json:"lineId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	// Product reference
	ProductID id.ID `db:"product_id" json:"productId"`

	// Warehouse this line issues from. One exit may span warehouses.
	WarehouseID id.ID `db:"warehouse_id" json:"warehouseId"`

	// Unit the quantity was entered in
	Unit     string          `db:"unit" json:"unit"`
	Quantity decimal.Decimal `db:"quantity" json:"quantity"`

	// BaseQuantity is Quantity converted to the product's base unit
	BaseQuantity decimal.Decimal `db:"base_quantity" json:"baseQuantity"`

	// UnitCost is the average cost per base unit captured at registration
	UnitCost decimal.Decimal `db:"unit_cost" json:"unitCost"`

	// Cost is BaseQuantity * UnitCost, base currency
	Cost decimal.Decimal `db:"cost" json:"cost"`
}

// New creates a new exit document.
func New(date time.Time, warehouseID id.ID, reason string) *Exit {
	return &Exit{
		Document:    entity.NewDocument(date),
		WarehouseID: warehouseID,
		Reason:      reason,
		Lines:       make([]Line, 0),
	}
}

// AddLine adds a line issued from the given warehouse. A nil warehouse
// falls back to the document's default.
func (e *Exit) AddLine(productID, warehouseID id.ID, unit string, quantity decimal.Decimal) {
	if id.IsNil(warehouseID) {
		warehouseID = e.WarehouseID
	}
	e.Lines = append(e.Lines, Line{
		LineID:      id.New(),
		LineNo:      len(e.Lines) + 1,
		ProductID:   productID,
		WarehouseID: warehouseID,
		Unit:        unit,
		Quantity:    quantity,
	})
}

// Validate implements entity.Validatable.
func (e *Exit) Validate(ctx context.Context) error {
	if err := e.Document.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(e.WarehouseID) {
		return apperror.NewValidation("warehouse is required").
			WithDetail("field", "warehouseId")
	}
	if e.Reason == "" {
		return apperror.NewValidation("reason is required").
			WithDetail("field", "reason")
	}
	if len(e.Lines) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}

	for _, line := range e.Lines {
		if id.IsNil(line.ProductID) {
			return apperror.NewValidation("product is required").
				WithDetail("field", "lines").
				WithDetail("lineNo", line.LineNo)
		}
		if id.IsNil(line.WarehouseID) {
			return apperror.NewValidation("warehouse is required").
				WithDetail("field", "lines").
				WithDetail("lineNo", line.LineNo)
		}
		if !line.Quantity.IsPositive() {
			return apperror.NewValidation("quantity must be positive").
				WithDetail("field", "lines").
				WithDetail("lineNo", line.LineNo)
		}
	}

	return nil
}
