package valuation

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"almacen/internal/core/apperror"
	"almacen/internal/core/id"
	"almacen/internal/core/tx"
	"almacen/internal/core/types"
	"almacen/internal/domain/catalogs/product"
	"almacen/pkg/logger"
)

// Layer is a surviving FIFO layer in a stock valuation.
type Layer struct {
	DocumentID id.ID           `json:"documentId,omitempty"`
	Date       time.Time       `json:"date"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitCost   decimal.Decimal `json:"unitCost"`
	Value      decimal.Decimal `json:"value"`
}

// StockValuation is the FIFO value of a product's current stock.
type StockValuation struct {
	ProductID id.ID   `json:"productId"`
	Layers    []Layer `json:"layers"`

	// Quantity is the stock being valued (the product's current total)
	Quantity decimal.Decimal `json:"quantity"`

	// UncoveredQuantity is stock with no surviving purchase layer
	// (opening balances, history gaps), valued at the average cost
	UncoveredQuantity decimal.Decimal `json:"uncoveredQuantity"`

	Value decimal.Decimal `json:"value"`
}

// ProductValue is one product's line in the inventory-wide valuation.
type ProductValue struct {
	ProductID id.ID           `json:"productId"`
	Stock     decimal.Decimal `json:"stock"`
	Value     decimal.Decimal `json:"value"`
}

// InventoryValuation is the FIFO value of every product holding stock.
type InventoryValuation struct {
	Products   []ProductValue  `json:"products"`
	TotalValue decimal.Decimal `json:"totalValue"`
}

// PeriodExitValue is the FIFO value of the exits registered in a period.
type PeriodExitValue struct {
	ProductID id.ID           `json:"productId"`
	From      time.Time       `json:"from"`
	To        time.Time       `json:"to"`
	ExitCount int             `json:"exitCount"`
	Quantity  decimal.Decimal `json:"quantity"`
	Value     decimal.Decimal `json:"value"`
}

// Service reconstructs FIFO values by replaying a product's history.
// Every reconstruction runs inside one repeatable-read transaction so the
// batches and consumptions it replays belong to the same snapshot.
type Service struct {
	repo     Repository
	products product.Repository
	txm      tx.ReadOnlyManager
}

// NewService creates a new valuation service.
func NewService(repo Repository, products product.Repository, txm tx.ReadOnlyManager) *Service {
	return &Service{repo: repo, products: products, txm: txm}
}

// Valuations are best-effort analytics: internal read failures degrade to
// an empty result instead of an error, business errors still propagate.
func degraded(ctx context.Context, err error, report string) bool {
	if err == nil || apperror.IsAppError(err) {
		return false
	}
	logger.Warn(ctx, "valuation query failed, returning empty result",
		"report", report, "error", err)
	return true
}

// StockValue values the product's current stock under FIFO: total consumed
// quantity (exits plus transfer-outs) is drained from the oldest layers,
// what survives is valued at its recorded purchase cost, and any stock the
// layers cannot explain is valued at the current average cost.
func (s *Service) StockValue(ctx context.Context, productID id.ID) (*StockValuation, error) {
	var result *StockValuation

	err := s.txm.ReadOnly(ctx, func(ctx context.Context) error {
		prod, err := s.products.GetByID(ctx, productID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return apperror.NewNotFound("product", productID.String())
			}
			return err
		}

		result, err = s.replayStock(ctx, prod)
		return err
	})
	if err != nil {
		if degraded(ctx, err, "stock_value") {
			return &StockValuation{
				ProductID: productID,
				Quantity:  decimal.Zero,
				Value:     decimal.Zero,
			}, nil
		}
		return nil, err
	}

	return result, nil
}

// Valuation values every product holding stock. All replays share one
// snapshot so the total is internally consistent.
func (s *Service) Valuation(ctx context.Context) (*InventoryValuation, error) {
	result := &InventoryValuation{TotalValue: decimal.Zero}

	err := s.txm.ReadOnly(ctx, func(ctx context.Context) error {
		ids, err := s.repo.StockedProductIDs(ctx)
		if err != nil {
			return fmt.Errorf("list stocked products: %w", err)
		}

		for _, productID := range ids {
			prod, err := s.products.GetByID(ctx, productID)
			if err != nil {
				return err
			}

			v, err := s.replayStock(ctx, prod)
			if err != nil {
				return err
			}

			result.Products = append(result.Products, ProductValue{
				ProductID: productID,
				Stock:     v.Quantity,
				Value:     v.Value,
			})
			result.TotalValue = result.TotalValue.Add(v.Value)
		}

		return nil
	})
	if err != nil {
		if degraded(ctx, err, "inventory_valuation") {
			return &InventoryValuation{TotalValue: decimal.Zero}, nil
		}
		return nil, err
	}

	return result, nil
}

// replayStock drains the historical consumption from the purchase layers
// and values what survives. Must run inside the caller's transaction.
func (s *Service) replayStock(ctx context.Context, prod *product.Product) (*StockValuation, error) {
	batches, err := s.repo.Batches(ctx, prod.ID)
	if err != nil {
		return nil, fmt.Errorf("load batches: %w", err)
	}
	consumptions, err := s.repo.Consumptions(ctx, prod.ID)
	if err != nil {
		return nil, fmt.Errorf("load consumptions: %w", err)
	}

	totalConsumed := decimal.Zero
	for _, c := range consumptions {
		totalConsumed = totalConsumed.Add(c.Quantity)
	}

	v := &StockValuation{
		ProductID: prod.ID,
		Quantity:  prod.Stock,
		Value:     decimal.Zero,
	}

	covered := decimal.Zero
	for _, b := range batches {
		remaining := b.Quantity
		if totalConsumed.IsPositive() {
			eaten := decimal.Min(remaining, totalConsumed)
			remaining = remaining.Sub(eaten)
			totalConsumed = totalConsumed.Sub(eaten)
		}
		if !remaining.IsPositive() {
			continue
		}

		value := types.RoundMoney(remaining.Mul(b.UnitCost))
		v.Layers = append(v.Layers, Layer{
			DocumentID: b.DocumentID,
			Date:       b.Date,
			Quantity:   remaining,
			UnitCost:   b.UnitCost,
			Value:      value,
		})
		covered = covered.Add(remaining)
		v.Value = v.Value.Add(value)
	}

	if uncovered := prod.Stock.Sub(covered); uncovered.IsPositive() {
		value := types.RoundMoney(uncovered.Mul(prod.AverageCost))
		v.UncoveredQuantity = uncovered
		v.Layers = append(v.Layers, Layer{
			Quantity: uncovered,
			UnitCost: prod.AverageCost,
			Value:    value,
		})
		v.Value = v.Value.Add(value)
	}

	return v, nil
}

// ExitValueForPeriod replays the full consumption history against the FIFO
// layers and sums the value of the exits dated inside [from, to]. The replay
// always starts at the beginning of history: which layers a March exit
// consumed depends on every movement before March, so a partial replay would
// misprice it. Transfer-outs consume layers during the replay but are never
// added to the period total.
func (s *Service) ExitValueForPeriod(ctx context.Context, productID id.ID, from, to time.Time) (*PeriodExitValue, error) {
	var result *PeriodExitValue

	err := s.txm.ReadOnly(ctx, func(ctx context.Context) error {
		prod, err := s.products.GetByID(ctx, productID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return apperror.NewNotFound("product", productID.String())
			}
			return err
		}

		batches, err := s.repo.Batches(ctx, productID)
		if err != nil {
			return fmt.Errorf("load batches: %w", err)
		}
		consumptions, err := s.repo.Consumptions(ctx, productID)
		if err != nil {
			return fmt.Errorf("load consumptions: %w", err)
		}

		v := &PeriodExitValue{
			ProductID: productID,
			From:      from,
			To:        to,
			Quantity:  decimal.Zero,
			Value:     decimal.Zero,
		}

		head := 0
		for _, c := range consumptions {
			value := decimal.Zero
			pending := c.Quantity

			for pending.IsPositive() && head < len(batches) {
				b := &batches[head]
				if !b.Quantity.IsPositive() {
					head++
					continue
				}
				eaten := decimal.Min(b.Quantity, pending)
				b.Quantity = b.Quantity.Sub(eaten)
				pending = pending.Sub(eaten)
				value = value.Add(eaten.Mul(b.UnitCost))
			}

			// Consumption beyond recorded layers prices at average cost.
			if pending.IsPositive() {
				value = value.Add(pending.Mul(prod.AverageCost))
			}

			if c.Kind == KindExit && !c.Date.Before(from) && !c.Date.After(to) {
				v.ExitCount++
				v.Quantity = v.Quantity.Add(c.Quantity)
				v.Value = v.Value.Add(types.RoundMoney(value))
			}
		}

		result = v
		return nil
	})
	if err != nil {
		if degraded(ctx, err, "exit_value") {
			return &PeriodExitValue{
				ProductID: productID,
				From:      from,
				To:        to,
				Quantity:  decimal.Zero,
				Value:     decimal.Zero,
			}, nil
		}
		return nil, err
	}

	return result, nil
}
