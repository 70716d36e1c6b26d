// Package ledger provides the per-warehouse stock register. It is the single
// authority over stock quantities: every document mutates stock through it.
package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"almacen/internal/core/id"
)

// Balance is the current quantity of a product in one warehouse.
type Balance struct {
	WarehouseID id.ID           `db:"warehouse_id" json:"warehouseId"`
	ProductID   id.ID           `db:"product_id" json:"productId"`
	Quantity    decimal.Decimal `db:"quantity" json:"quantity"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updatedAt"`
}

// BalanceFilter for filtering balance queries.
type BalanceFilter struct {
	ProductIDs  []id.ID
	ExcludeZero bool
}

// Repository defines operations on the stock register. Mutating operations
// are expected to run inside a caller-managed transaction; implementations
// also maintain the denormalized total on the product row so both views of
// stock change atomically.
type Repository interface {
	// GetBalance returns the current balance for warehouse+product.
	// A missing row reads as zero quantity.
	GetBalance(ctx context.Context, warehouseID, productID id.ID) (Balance, error)

	// GetBalanceForUpdate returns the balance with a row lock, inserting a
	// zero row first when none exists so there is always a row to lock.
	GetBalanceForUpdate(ctx context.Context, warehouseID, productID id.ID) (Balance, error)

	// AddQuantity increases the balance (creating the row if needed) and
	// the product total by qty.
	AddQuantity(ctx context.Context, warehouseID, productID id.ID, qty decimal.Decimal) error

	// SubtractQuantity decreases the balance and the product total by qty.
	// Callers must hold the row lock taken by GetBalanceForUpdate.
	SubtractQuantity(ctx context.Context, warehouseID, productID id.ID, qty decimal.Decimal) error

	// GetBalancesByWarehouse returns balances for a warehouse.
	GetBalancesByWarehouse(ctx context.Context, warehouseID id.ID, filter BalanceFilter) ([]Balance, error)

	// GetBalancesByProduct returns balances across all warehouses for a product.
	GetBalancesByProduct(ctx context.Context, productID id.ID) ([]Balance, error)
}
