package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"almacen/internal/core/apperror"
	"almacen/internal/core/id"
	"almacen/internal/domain/documents/exit"
	"almacen/internal/domain/documents/purchase"
	"almacen/internal/domain/documents/transfer"
)

// --- Purchase ---

// PurchaseLineRequest is one line of a purchase registration.
type PurchaseLineRequest struct {
	ProductID string          `json:"productId" binding:"required"`
	Unit      string          `json:"unit"`
	Quantity  decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// RegisterPurchaseRequest registers a supplier invoice. ExchangeRate is
// optional: when absent or non-positive the rate provider resolves it.
type RegisterPurchaseRequest struct {
	Date         time.Time             `json:"date"`
	SupplierID   string                `json:"supplierId" binding:"required"`
	WarehouseID  string                `json:"warehouseId" binding:"required"`
	Series       string                `json:"series" binding:"required"`
	Number       string                `json:"number" binding:"required"`
	Currency     string                `json:"currency" binding:"required"`
	ExchangeRate decimal.Decimal       `json:"exchangeRate"`
	Notes        string                `json:"notes"`
	Lines        []PurchaseLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// ToEntity maps the request to a domain purchase.
func (r RegisterPurchaseRequest) ToEntity() (*purchase.Purchase, error) {
	supplierID, err := id.Parse(r.SupplierID)
	if err != nil {
		return nil, apperror.NewValidation("invalid supplier id").
			WithDetail("field", "supplierId")
	}
	warehouseID, err := id.Parse(r.WarehouseID)
	if err != nil {
		return nil, apperror.NewValidation("invalid warehouse id").
			WithDetail("field", "warehouseId")
	}

	doc := purchase.New(r.Date, supplierID, warehouseID, r.Series, r.Number, r.Currency)
	doc.ExchangeRate = r.ExchangeRate
	doc.Notes = r.Notes

	for _, line := range r.Lines {
		productID, err := id.Parse(line.ProductID)
		if err != nil {
			return nil, apperror.NewValidation("invalid product id").
				WithDetail("field", "lines").
				WithDetail("productId", line.ProductID)
		}
		doc.AddLine(productID, line.Unit, line.Quantity, line.UnitPrice)
	}

	return doc, nil
}

// --- Exit ---

// MovementLineRequest is one line of a transfer registration.
type MovementLineRequest struct {
	ProductID string          `json:"productId" binding:"required"`
	Unit      string          `json:"unit"`
	Quantity  decimal.Decimal `json:"quantity" binding:"required"`
}

// ExitLineRequest is one line of an exit registration. WarehouseID is
// optional and overrides the document warehouse for that line.
type ExitLineRequest struct {
	ProductID   string          `json:"productId" binding:"required"`
	WarehouseID string          `json:"warehouseId"`
	Unit        string          `json:"unit"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
}

// RegisterExitRequest registers an outbound stock document.
type RegisterExitRequest struct {
	Date        time.Time         `json:"date"`
	WarehouseID string            `json:"warehouseId" binding:"required"`
	Reason      string            `json:"reason" binding:"required"`
	Recipient   *string           `json:"recipient"`
	Notes       string            `json:"notes"`
	Lines       []ExitLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// ToEntity maps the request to a domain exit.
func (r RegisterExitRequest) ToEntity() (*exit.Exit, error) {
	warehouseID, err := id.Parse(r.WarehouseID)
	if err != nil {
		return nil, apperror.NewValidation("invalid warehouse id").
			WithDetail("field", "warehouseId")
	}

	doc := exit.New(r.Date, warehouseID, r.Reason)
	doc.Recipient = r.Recipient
	doc.Notes = r.Notes

	for _, line := range r.Lines {
		productID, err := id.Parse(line.ProductID)
		if err != nil {
			return nil, apperror.NewValidation("invalid product id").
				WithDetail("field", "lines").
				WithDetail("productId", line.ProductID)
		}

		lineWarehouseID := id.Nil()
		if line.WarehouseID != "" {
			lineWarehouseID, err = id.Parse(line.WarehouseID)
			if err != nil {
				return nil, apperror.NewValidation("invalid warehouse id").
					WithDetail("field", "lines").
					WithDetail("warehouseId", line.WarehouseID)
			}
		}

		doc.AddLine(productID, lineWarehouseID, line.Unit, line.Quantity)
	}

	return doc, nil
}

// --- Transfer ---

// RegisterTransferRequest registers an inter-warehouse movement.
type RegisterTransferRequest struct {
	Date            time.Time             `json:"date"`
	FromWarehouseID string                `json:"fromWarehouseId" binding:"required"`
	ToWarehouseID   string                `json:"toWarehouseId" binding:"required"`
	Notes           string                `json:"notes"`
	Lines           []MovementLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// ToEntity maps the request to a domain transfer.
func (r RegisterTransferRequest) ToEntity() (*transfer.Transfer, error) {
	fromID, err := id.Parse(r.FromWarehouseID)
	if err != nil {
		return nil, apperror.NewValidation("invalid source warehouse id").
			WithDetail("field", "fromWarehouseId")
	}
	toID, err := id.Parse(r.ToWarehouseID)
	if err != nil {
		return nil, apperror.NewValidation("invalid destination warehouse id").
			WithDetail("field", "toWarehouseId")
	}

	doc := transfer.New(r.Date, fromID, toID)
	doc.Notes = r.Notes

	for _, line := range r.Lines {
		productID, err := id.Parse(line.ProductID)
		if err != nil {
			return nil, apperror.NewValidation("invalid product id").
				WithDetail("field", "lines").
				WithDetail("productId", line.ProductID)
		}
		doc.AddLine(productID, line.Unit, line.Quantity)
	}

	return doc, nil
}
