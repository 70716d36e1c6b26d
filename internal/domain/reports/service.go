package reports

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"almacen/internal/core/apperror"
	"almacen/internal/core/id"
	"almacen/internal/core/tx"
	"almacen/internal/core/types"
	"almacen/internal/domain/catalogs/product"
	"almacen/pkg/logger"
)

// Service generates reports over the document history.
//
// Reports are best-effort analytics: when the history cannot be read the
// service logs the failure and returns an empty report instead of an error.
// Business errors (unknown product, bad window) still propagate.
type Service struct {
	repo     Repository
	products product.Repository
	txm      tx.ReadOnlyManager
}

// NewService creates a new reports service.
func NewService(repo Repository, products product.Repository, txm tx.ReadOnlyManager) *Service {
	return &Service{repo: repo, products: products, txm: txm}
}

// degraded reports whether err is an internal failure the report should
// absorb rather than surface.
func degraded(ctx context.Context, err error, report string) bool {
	if err == nil || apperror.IsAppError(err) {
		return false
	}
	logger.Warn(ctx, "report query failed, returning empty result",
		"report", report, "error", err)
	return true
}

// Kardex builds the movement history of a product. The running balance is
// accumulated over the whole history in chronological order; the requested
// window is then cut out and returned newest first, with the balance just
// before the window as the opening balance.
func (s *Service) Kardex(ctx context.Context, filter KardexFilter) (*KardexReport, error) {
	if id.IsNil(filter.ProductID) {
		return nil, apperror.NewValidation("product is required").
			WithDetail("field", "productId")
	}
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return nil, apperror.NewValidation("from must not be after to").
			WithDetail("field", "from/to")
	}

	var report *KardexReport

	err := s.txm.ReadOnly(ctx, func(ctx context.Context) error {
		exists, err := s.products.Exists(ctx, filter.ProductID)
		if err != nil {
			return err
		}
		if !exists {
			return apperror.NewNotFound("product", filter.ProductID.String())
		}

		movements, err := s.repo.Movements(ctx, filter.ProductID, filter.WarehouseID)
		if err != nil {
			return fmt.Errorf("load movements: %w", err)
		}

		r := &KardexReport{
			ProductID:      filter.ProductID,
			From:           filter.From,
			To:             filter.To,
			OpeningBalance: decimal.Zero,
		}

		balance := decimal.Zero
		var window []KardexEntry
		for _, m := range movements {
			entry := KardexEntry{Movement: m}
			if m.Type.Inbound() {
				entry.In = m.Quantity
				balance = balance.Add(m.Quantity)
			} else {
				entry.Out = m.Quantity
				balance = balance.Sub(m.Quantity)
			}
			entry.Value = types.RoundMoney(m.Quantity.Mul(m.UnitCost))
			entry.Balance = balance

			if filter.From != nil && m.Date.Before(*filter.From) {
				r.OpeningBalance = balance
				continue
			}
			if filter.To != nil && m.Date.After(*filter.To) {
				continue
			}
			window = append(window, entry)
		}
		r.ClosingBalance = balance

		// Newest first for display.
		for i, j := 0, len(window)-1; i < j; i, j = i+1, j-1 {
			window[i], window[j] = window[j], window[i]
		}
		r.Entries = window

		report = r
		return nil
	})
	if err != nil {
		if degraded(ctx, err, "kardex") {
			return &KardexReport{
				ProductID:      filter.ProductID,
				From:           filter.From,
				To:             filter.To,
				OpeningBalance: decimal.Zero,
				ClosingBalance: decimal.Zero,
			}, nil
		}
		return nil, err
	}

	return report, nil
}

// KardexAll lists the movements of every product in a window, newest
// first, with aggregate in/out quantities.
func (s *Service) KardexAll(ctx context.Context, filter GlobalKardexFilter) (*GlobalKardex, error) {
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return nil, apperror.NewValidation("from must not be after to").
			WithDetail("field", "from/to")
	}

	var report *GlobalKardex

	err := s.txm.ReadOnly(ctx, func(ctx context.Context) error {
		movements, err := s.repo.AllMovements(ctx, filter)
		if err != nil {
			return fmt.Errorf("load movements: %w", err)
		}

		r := &GlobalKardex{
			From:     filter.From,
			To:       filter.To,
			TotalIn:  decimal.Zero,
			TotalOut: decimal.Zero,
			Entries:  movements,
		}
		for _, m := range movements {
			if m.Type.Inbound() {
				r.TotalIn = r.TotalIn.Add(m.Quantity)
			} else {
				r.TotalOut = r.TotalOut.Add(m.Quantity)
			}
		}

		report = r
		return nil
	})
	if err != nil {
		if degraded(ctx, err, "kardex_all") {
			return &GlobalKardex{
				From:     filter.From,
				To:       filter.To,
				TotalIn:  decimal.Zero,
				TotalOut: decimal.Zero,
			}, nil
		}
		return nil, err
	}

	return report, nil
}

// Snapshot values the current inventory at average cost.
func (s *Service) Snapshot(ctx context.Context, filter SnapshotFilter) (*InventorySnapshot, error) {
	var snapshot *InventorySnapshot

	err := s.txm.ReadOnly(ctx, func(ctx context.Context) error {
		rows, err := s.repo.Snapshot(ctx, filter)
		if err != nil {
			return fmt.Errorf("load snapshot: %w", err)
		}

		total := decimal.Zero
		for i := range rows {
			rows[i].Value = types.RoundMoney(rows[i].Quantity.Mul(rows[i].AverageCost))
			total = total.Add(rows[i].Value)
		}

		snapshot = &InventorySnapshot{Rows: rows, TotalValue: total}
		return nil
	})
	if err != nil {
		if degraded(ctx, err, "snapshot") {
			return &InventorySnapshot{TotalValue: decimal.Zero}, nil
		}
		return nil, err
	}

	return snapshot, nil
}

// StockAlerts returns active products at or under their reorder threshold.
func (s *Service) StockAlerts(ctx context.Context) ([]*product.Product, error) {
	alerts, err := s.products.ListBelowMinimum(ctx)
	if err != nil {
		if degraded(ctx, err, "stock_alerts") {
			return nil, nil
		}
		return nil, err
	}
	return alerts, nil
}

// PurchaseTotals aggregates registered purchases per supplier for a period.
func (s *Service) PurchaseTotals(ctx context.Context, filter PurchaseTotalsFilter) (*PurchaseTotals, error) {
	if filter.From.IsZero() || filter.To.IsZero() {
		return nil, apperror.NewValidation("from and to are required").
			WithDetail("field", "from/to")
	}
	if filter.From.After(filter.To) {
		return nil, apperror.NewValidation("from must not be after to").
			WithDetail("field", "from/to")
	}

	var totals *PurchaseTotals

	err := s.txm.ReadOnly(ctx, func(ctx context.Context) error {
		suppliers, err := s.repo.PurchaseTotalsBySupplier(ctx, filter)
		if err != nil {
			return fmt.Errorf("load purchase totals: %w", err)
		}

		total := decimal.Zero
		for _, st := range suppliers {
			total = total.Add(st.TotalAmount)
		}

		totals = &PurchaseTotals{
			From:      filter.From,
			To:        filter.To,
			Suppliers: suppliers,
			Total:     total,
		}
		return nil
	})
	if err != nil {
		if degraded(ctx, err, "purchase_totals") {
			return &PurchaseTotals{
				From:  filter.From,
				To:    filter.To,
				Total: decimal.Zero,
			}, nil
		}
		return nil, err
	}

	return totals, nil
}
