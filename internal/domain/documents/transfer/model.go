// Package transfer provides the Transfer document: goods moved between two
// warehouses. A transfer never changes the global stock of a product or its
// average cost; it only moves the per-warehouse split.
package transfer

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"almacen/internal/core/apperror"
	"almacen/internal/core/entity"
	"almacen/internal/core/id"
)

// Transfer represents an inter-warehouse stock movement.
type Transfer struct {
	entity.Document

	// FromWarehouseID is the source warehouse
	FromWarehouseID id.ID `db:"from_warehouse_id" json:"fromWarehouseId"`

	// ToWarehouseID is the destination warehouse
	ToWarehouseID id.ID `db:"to_warehouse_id" json:"toWarehouseId"`

	// TotalCost is the summed value of the moved goods, base currency
	TotalCost decimal.Decimal `db:"total_cost" json:"totalCost"`

	// Table part: moved goods
	Lines []Line `db:"-" json:"lines"`
}

// Line represents a line in the transfer document.
type Line struct {
	LineID id.ID `db:"line_id" json:"lineId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	// Product reference
	ProductID id.ID `db:"product_id" json:"productId"`

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

// New creates a new transfer document.
func New(date time.Time, fromWarehouseID, toWarehouseID id.ID) *Transfer {
	return &Transfer{
		Document:        entity.NewDocument(date),
		FromWarehouseID: fromWarehouseID,
		ToWarehouseID:   toWarehouseID,
		Lines:           make([]Line, 0),
	}
}

// AddLine adds a line to the transfer.
func (t *Transfer) AddLine(productID id.ID, unit string, quantity decimal.Decimal) {
	t.Lines = append(t.Lines, Line{
		LineID:    id.New(),
		LineNo:    len(t.Lines) + 1,
		ProductID: productID,
		Unit:      unit,
		Quantity:  quantity,
	})
}

// Validate implements entity.Validatable.
func (t *Transfer) Validate(ctx context.Context) error {
	if err := t.Document.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(t.FromWarehouseID) {
		return apperror.NewValidation("source warehouse is required").
			WithDetail("field", "fromWarehouseId")
	}
	if id.IsNil(t.ToWarehouseID) {
		return apperror.NewValidation("destination warehouse is required").
			WithDetail("field", "toWarehouseId")
	}
	if t.FromWarehouseID == t.ToWarehouseID {
		return apperror.NewValidation("source and destination warehouse must differ").
			WithDetail("field", "toWarehouseId")
	}
	if len(t.Lines) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}

	for _, line := range t.Lines {
		if id.IsNil(line.ProductID) {
			return apperror.NewValidation("product is required").
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
