package ledger

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"almacen/internal/core/apperror"
	"almacen/internal/core/id"
	"almacen/pkg/logger"
)

// Service enforces the stock invariants over the register. All mutating
// methods must run inside the document transaction; the repository carries
// the transaction through the context.
type Service struct {
	repo Repository
}

// NewService creates a new stock ledger service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Increase adds qty to the warehouse balance. Used by receipts and by the
// inbound leg of transfers.
func (s *Service) Increase(ctx context.Context, warehouseID, productID id.ID, qty decimal.Decimal) error {
	if !qty.IsPositive() {
		return apperror.NewValidation("quantity must be positive").
			WithDetail("quantity", qty.String())
	}

	if err := s.repo.AddQuantity(ctx, warehouseID, productID, qty); err != nil {
		return fmt.Errorf("add quantity: %w", err)
	}

	return nil
}

// Decrease removes qty from the warehouse balance after checking
// availability under a row lock. The balance never goes negative: a short
// balance fails the whole document transaction.
func (s *Service) Decrease(ctx context.Context, warehouseID, productID id.ID, qty decimal.Decimal) error {
	if !qty.IsPositive() {
		return apperror.NewValidation("quantity must be positive").
			WithDetail("quantity", qty.String())
	}

	balance, err := s.repo.GetBalanceForUpdate(ctx, warehouseID, productID)
	if err != nil {
		return fmt.Errorf("lock balance for %s: %w", productID, err)
	}

	if balance.Quantity.LessThan(qty) {
		return apperror.NewInsufficientStock(
			productID.String(), warehouseID.String(), balance.Quantity, qty)
	}

	if err := s.repo.SubtractQuantity(ctx, warehouseID, productID, qty); err != nil {
		return fmt.Errorf("subtract quantity: %w", err)
	}

	return nil
}

// Demand is one requested quantity for availability checking.
type Demand struct {
	WarehouseID id.ID
	ProductID   id.ID
	Quantity    decimal.Decimal
}

// CheckAvailability verifies every demand against the current balances
// before anything is decremented, so a multi-line document fails without
// touching any row. Demands on the same (warehouse, product) accumulate.
// Decrease still re-checks each balance under its row lock.
func (s *Service) CheckAvailability(ctx context.Context, demands []Demand) error {
	type key struct {
		warehouseID id.ID
		productID   id.ID
	}

	need := make(map[key]decimal.Decimal, len(demands))
	order := make([]key, 0, len(demands))
	for _, dm := range demands {
		k := key{dm.WarehouseID, dm.ProductID}
		if _, ok := need[k]; !ok {
			order = append(order, k)
		}
		need[k] = need[k].Add(dm.Quantity)
	}

	for _, k := range order {
		balance, err := s.repo.GetBalance(ctx, k.warehouseID, k.productID)
		if err != nil {
			return fmt.Errorf("get balance for %s: %w", k.productID, err)
		}
		if balance.Quantity.LessThan(need[k]) {
			return apperror.NewInsufficientStock(
				k.productID.String(), k.warehouseID.String(), balance.Quantity, need[k])
		}
	}

	return nil
}

// Move shifts qty between two warehouses of the same product. The global
// product total is unchanged; only the per-warehouse split moves.
func (s *Service) Move(ctx context.Context, fromWarehouseID, toWarehouseID, productID id.ID, qty decimal.Decimal) error {
	if fromWarehouseID == toWarehouseID {
		return apperror.NewValidation("source and destination warehouse must differ").
			WithDetail("warehouseId", fromWarehouseID.String())
	}

	if err := s.Decrease(ctx, fromWarehouseID, productID, qty); err != nil {
		return err
	}
	if err := s.Increase(ctx, toWarehouseID, productID, qty); err != nil {
		return err
	}

	logger.Debug(ctx, "stock moved",
		"product_id", productID,
		"from", fromWarehouseID,
		"to", toWarehouseID,
		"quantity", qty,
	)

	return nil
}

// Availability returns the quantity held for a product in one warehouse.
func (s *Service) Availability(ctx context.Context, warehouseID, productID id.ID) (decimal.Decimal, error) {
	balance, err := s.repo.GetBalance(ctx, warehouseID, productID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("get balance: %w", err)
	}
	return balance.Quantity, nil
}

// TotalAvailability returns the quantity held across all warehouses.
func (s *Service) TotalAvailability(ctx context.Context, productID id.ID) (decimal.Decimal, error) {
	balances, err := s.repo.GetBalancesByProduct(ctx, productID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("get balances: %w", err)
	}

	total := decimal.Zero
	for _, b := range balances {
		total = total.Add(b.Quantity)
	}
	return total, nil
}

// ProductStock returns the per-warehouse split of a product.
func (s *Service) ProductStock(ctx context.Context, productID id.ID) ([]Balance, error) {
	return s.repo.GetBalancesByProduct(ctx, productID)
}

// WarehouseStock returns all non-zero balances in a warehouse.
func (s *Service) WarehouseStock(ctx context.Context, warehouseID id.ID) ([]Balance, error) {
	return s.repo.GetBalancesByWarehouse(ctx, warehouseID, BalanceFilter{ExcludeZero: true})
}
