// Package purchase provides the Purchase document: goods received from a
// supplier against an invoice. Registering a purchase raises stock and
// recalculates the weighted-average cost of every product on the document.
package purchase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"almacen/internal/core/apperror"
	"almacen/internal/core/entity"
	"almacen/internal/core/id"
	"almacen/internal/core/types"
)

// Purchase represents a supplier invoice entering goods into a warehouse.
type Purchase struct {
	entity.Document

	// Supplier reference
	SupplierID id.ID `db:"supplier_id" json:"supplierId"`

	// Warehouse where goods are received
	WarehouseID id.ID `db:"warehouse_id" json:"warehouseId"`

	// Supplier's invoice identification. (supplier, series, number) is
	// unique: the same invoice cannot be registered twice.
	Series string `db:"series" json:"series"`
	Number string `db:"number" json:"number"`

	// Currency of the invoice amounts
	Currency string `db:"currency" json:"currency"`

	// ExchangeRate to the base currency recorded at registration time.
	// Replays of history reuse this rate, never a current one.
	ExchangeRate decimal.Decimal `db:"exchange_rate" json:"exchangeRate"`

	// Totals in the invoice currency, gross and split net/tax
	TotalAmount decimal.Decimal `db:"total_amount" json:"totalAmount"`
	TotalNet    decimal.Decimal `db:"total_net" json:"totalNet"`
	TotalTax    decimal.Decimal `db:"total_tax" json:"totalTax"`

	// Table part: received goods
	Lines []Line `db:"-" json:"lines"`
}

// Line represents a line in the purchase document.
type Line struct {
	LineID id.ID `db:"line_id" json:"lineId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	// Product reference
	ProductID id.ID `db:"product_id" json:"productId"`

	// Unit the quantity was entered in (may differ from the product's base unit)
	Unit     string          `db:"unit" json:"unit"`
	Quantity decimal.Decimal `db:"quantity" json:"quantity"`

	// BaseQuantity is Quantity converted to the product's base unit
	BaseQuantity decimal.Decimal `db:"base_quantity" json:"baseQuantity"`

	// UnitPrice is the gross price per entered unit, in the invoice currency
	UnitPrice decimal.Decimal `db:"unit_price" json:"unitPrice"`

	// Amount is Quantity * UnitPrice, gross, in the invoice currency
	Amount decimal.Decimal `db:"amount" json:"amount"`

	// UnitCost is the cost per base unit in the base currency,
	// derived at registration and fed into the average
	UnitCost decimal.Decimal `db:"unit_cost" json:"unitCost"`

	// CostBefore snapshots the product's average cost just before this
	// line was applied. Audit trail for the cost trend.
	CostBefore decimal.Decimal `db:"cost_before" json:"costBefore"`
}

// New creates a new purchase document.
func New(date time.Time, supplierID, warehouseID id.ID, series, number, currency string) *Purchase {
	return &Purchase{
		Document:    entity.NewDocument(date),
		SupplierID:  supplierID,
		WarehouseID: warehouseID,
		Series:      series,
		Number:      number,
		Currency:    currency,
		Lines:       make([]Line, 0),
	}
}

// AddLine adds a line and recalculates the gross total.
func (p *Purchase) AddLine(productID id.ID, unit string, quantity, unitPrice decimal.Decimal) {
	line := Line{
		LineID:    id.New(),
		LineNo:    len(p.Lines) + 1,
		ProductID: productID,
		Unit:      unit,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		Amount:    types.RoundMoney(quantity.Mul(unitPrice)),
	}

	p.Lines = append(p.Lines, line)
	p.recalculateTotal()
}

func (p *Purchase) recalculateTotal() {
	total := decimal.Zero
	for _, line := range p.Lines {
		total = total.Add(line.Amount)
	}
	p.TotalAmount = total
}

// Validate implements entity.Validatable.
func (p *Purchase) Validate(ctx context.Context) error {
	if err := p.Document.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(p.SupplierID) {
		return apperror.NewValidation("supplier is required").
			WithDetail("field", "supplierId")
	}
	if id.IsNil(p.WarehouseID) {
		return apperror.NewValidation("warehouse is required").
			WithDetail("field", "warehouseId")
	}
	if p.Series == "" || p.Number == "" {
		return apperror.NewValidation("invoice series and number are required").
			WithDetail("field", "series/number")
	}
	if p.Currency == "" {
		return apperror.NewValidation("currency is required").
			WithDetail("field", "currency")
	}
	if len(p.Lines) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}

	for _, line := range p.Lines {
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
		if line.UnitPrice.IsNegative() {
			return apperror.NewValidation("unit price cannot be negative").
				WithDetail("field", "lines").
				WithDetail("lineNo", line.LineNo)
		}
	}

	return nil
}
