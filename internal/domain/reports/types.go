// Package reports provides read-side reporting: the kardex movement
// history, inventory snapshots, low-stock alerts and purchase totals.
package reports

import (
	"time"

	"github.com/shopspring/decimal"

	"almacen/internal/core/id"
)

// --- Kardex ---

// MovementType classifies a kardex row.
type MovementType string

const (
	MovementPurchase    MovementType = "purchase"
	MovementExit        MovementType = "exit"
	MovementTransferIn  MovementType = "transfer_in"
	MovementTransferOut MovementType = "transfer_out"
)

// Inbound reports whether the movement raises stock.
func (t MovementType) Inbound() bool {
	return t == MovementPurchase || t == MovementTransferIn
}

// Movement is one raw kardex row as read from the document history,
// quantity always positive and in the product's base unit.
type Movement struct {
	Date       time.Time       `db:"date" json:"date"`
	DocumentID id.ID           `db:"document_id" json:"documentId"`
	Type       MovementType    `db:"movement_type" json:"type"`

	// Detail describes the counterpart: supplier invoice for purchases,
	// reason for exits, the other warehouse for transfers.
	Detail string `db:"detail" json:"detail"`

	WarehouseID id.ID           `db:"warehouse_id" json:"warehouseId"`
	Quantity    decimal.Decimal `db:"quantity" json:"quantity"`
	UnitCost    decimal.Decimal `db:"unit_cost" json:"unitCost"`
}

// KardexEntry is a movement with the running balance after it.
type KardexEntry struct {
	Movement

	In      decimal.Decimal `json:"in"`
	Out     decimal.Decimal `json:"out"`
	Value   decimal.Decimal `json:"value"`
	Balance decimal.Decimal `json:"balance"`
}

// KardexFilter selects the product and window for a kardex report.
type KardexFilter struct {
	ProductID   id.ID
	WarehouseID *id.ID
	From        *time.Time
	To          *time.Time
}

// KardexReport is the movement history of one product, newest entry first,
// with the running balance computed over the full history so the opening
// balance of the window is exact.
type KardexReport struct {
	ProductID      id.ID           `json:"productId"`
	From           *time.Time      `json:"from,omitempty"`
	To             *time.Time      `json:"to,omitempty"`
	OpeningBalance decimal.Decimal `json:"openingBalance"`
	ClosingBalance decimal.Decimal `json:"closingBalance"`
	Entries        []KardexEntry   `json:"entries"`
}

// GlobalMovement is a kardex row across all products, carrying the product
// identity alongside the movement.
type GlobalMovement struct {
	Movement

	ProductID   id.ID  `db:"product_id" json:"productId"`
	ProductCode string `db:"product_code" json:"productCode"`
	ProductName string `db:"product_name" json:"productName"`
}

// GlobalKardexFilter selects the window for a movement listing across
// products.
type GlobalKardexFilter struct {
	WarehouseID *id.ID
	From        *time.Time
	To          *time.Time
}

// GlobalKardex lists the movements of all products in a window, newest
// first. Running balances are a per-product notion, so only the in/out
// totals are aggregated here.
type GlobalKardex struct {
	From     *time.Time       `json:"from,omitempty"`
	To       *time.Time       `json:"to,omitempty"`
	TotalIn  decimal.Decimal  `json:"totalIn"`
	TotalOut decimal.Decimal  `json:"totalOut"`
	Entries  []GlobalMovement `json:"entries"`
}

// --- Inventory snapshot ---

// SnapshotRow is one product/warehouse position valued at average cost.
type SnapshotRow struct {
	ProductID     id.ID           `db:"product_id" json:"productId"`
	ProductCode   string          `db:"product_code" json:"productCode"`
	ProductName   string          `db:"product_name" json:"productName"`
	Unit          string          `db:"unit" json:"unit"`
	WarehouseID   id.ID           `db:"warehouse_id" json:"warehouseId"`
	WarehouseName string          `db:"warehouse_name" json:"warehouseName"`
	Quantity      decimal.Decimal `db:"quantity" json:"quantity"`
	AverageCost   decimal.Decimal `db:"average_cost" json:"averageCost"`
	Value         decimal.Decimal `db:"value" json:"value"`
}

// SnapshotFilter selects the scope of an inventory snapshot.
type SnapshotFilter struct {
	WarehouseID *id.ID
	ProductIDs  []id.ID
	ExcludeZero bool
}

// InventorySnapshot is the current inventory valued at average cost.
type InventorySnapshot struct {
	Rows       []SnapshotRow   `json:"rows"`
	TotalValue decimal.Decimal `json:"totalValue"`
}

// --- Purchase totals ---

// PurchaseTotalsFilter selects the period and optional supplier.
type PurchaseTotalsFilter struct {
	From       time.Time
	To         time.Time
	SupplierID *id.ID
}

// SupplierTotal aggregates the purchases of one supplier in the period,
// amounts converted to the base currency at each document's recorded rate.
type SupplierTotal struct {
	SupplierID    id.ID           `db:"supplier_id" json:"supplierId"`
	SupplierName  string          `db:"supplier_name" json:"supplierName"`
	DocumentCount int64           `db:"document_count" json:"documentCount"`
	TotalNet      decimal.Decimal `db:"total_net" json:"totalNet"`
	TotalTax      decimal.Decimal `db:"total_tax" json:"totalTax"`
	TotalAmount   decimal.Decimal `db:"total_amount" json:"totalAmount"`
}

// PurchaseTotals is the period aggregation across suppliers.
type PurchaseTotals struct {
	From      time.Time       `json:"from"`
	To        time.Time       `json:"to"`
	Suppliers []SupplierTotal `json:"suppliers"`
	Total     decimal.Decimal `json:"total"`
}
