package dto

import (
	"github.com/shopspring/decimal"

	"almacen/internal/domain/catalogs/product"
	"almacen/internal/domain/catalogs/supplier"
	"almacen/internal/domain/catalogs/warehouse"
)

// --- Product ---

// CreateProductRequest creates a new product.
type CreateProductRequest struct {
	Code          string          `json:"code" binding:"required"`
	Name          string          `json:"name" binding:"required"`
	Description   *string         `json:"description"`
	Category      *string         `json:"category"`
	Unit          string          `json:"unit" binding:"required"`
	Currency      string          `json:"currency"`
	PurchasePrice decimal.Decimal `json:"purchasePrice"`
	SalePrice     decimal.Decimal `json:"salePrice"`
	MinStock      decimal.Decimal `json:"minStock"`
}

// ToEntity maps the request to a domain product.
func (r CreateProductRequest) ToEntity() *product.Product {
	p := product.New(r.Code, r.Name, r.Unit)
	p.Description = r.Description
	p.Category = r.Category
	p.Currency = r.Currency
	p.PurchasePrice = r.PurchasePrice
	p.SalePrice = r.SalePrice
	p.MinStock = r.MinStock
	return p
}

// UpdateProductRequest updates an existing product. The base unit is fixed
// at creation: movement history is recorded in it.
type UpdateProductRequest struct {
	Name          string          `json:"name" binding:"required"`
	Description   *string         `json:"description"`
	Category      *string         `json:"category"`
	Currency      string          `json:"currency"`
	PurchasePrice decimal.Decimal `json:"purchasePrice"`
	SalePrice     decimal.Decimal `json:"salePrice"`
	MinStock      decimal.Decimal `json:"minStock"`
}

// ApplyTo copies updatable fields onto the existing product.
func (r UpdateProductRequest) ApplyTo(p *product.Product) {
	p.Name = r.Name
	p.Description = r.Description
	p.Category = r.Category
	p.Currency = r.Currency
	p.PurchasePrice = r.PurchasePrice
	p.SalePrice = r.SalePrice
	p.MinStock = r.MinStock
}

// --- Warehouse ---

// CreateWarehouseRequest creates a new warehouse.
type CreateWarehouseRequest struct {
	Code      string  `json:"code" binding:"required"`
	Name      string  `json:"name" binding:"required"`
	Address   *string `json:"address"`
	IsDefault bool    `json:"isDefault"`
}

// ToEntity maps the request to a domain warehouse.
func (r CreateWarehouseRequest) ToEntity() *warehouse.Warehouse {
	w := warehouse.New(r.Code, r.Name)
	w.Address = r.Address
	w.IsDefault = r.IsDefault
	return w
}

// UpdateWarehouseRequest updates an existing warehouse.
type UpdateWarehouseRequest struct {
	Name      string  `json:"name" binding:"required"`
	Address   *string `json:"address"`
	IsDefault bool    `json:"isDefault"`
}

// ApplyTo copies updatable fields onto the existing warehouse.
func (r UpdateWarehouseRequest) ApplyTo(w *warehouse.Warehouse) {
	w.Name = r.Name
	w.Address = r.Address
	w.IsDefault = r.IsDefault
}

// --- Supplier ---

// CreateSupplierRequest creates a new supplier.
type CreateSupplierRequest struct {
	Code    string  `json:"code" binding:"required"`
	Name    string  `json:"name" binding:"required"`
	TaxID   string  `json:"taxId" binding:"required"`
	Address *string `json:"address"`
	Phone   *string `json:"phone"`
	Email   *string `json:"email"`
}

// ToEntity maps the request to a domain supplier.
func (r CreateSupplierRequest) ToEntity() *supplier.Supplier {
	s := supplier.New(r.Code, r.Name, r.TaxID)
	s.Address = r.Address
	s.Phone = r.Phone
	s.Email = r.Email
	return s
}

// UpdateSupplierRequest updates an existing supplier.
type UpdateSupplierRequest struct {
	Name    string  `json:"name" binding:"required"`
	TaxID   string  `json:"taxId" binding:"required"`
	Address *string `json:"address"`
	Phone   *string `json:"phone"`
	Email   *string `json:"email"`
}

// ApplyTo copies updatable fields onto the existing supplier.
func (r UpdateSupplierRequest) ApplyTo(s *supplier.Supplier) {
	s.Name = r.Name
	s.TaxID = r.TaxID
	s.Address = r.Address
	s.Phone = r.Phone
	s.Email = r.Email
}
