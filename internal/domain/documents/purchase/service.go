package purchase

import (
	"context"
	"fmt"

	"almacen/internal/core/apperror"
	"almacen/internal/core/id"
	"almacen/internal/core/tx"
	"almacen/internal/core/types"
	"almacen/internal/domain"
	"almacen/internal/domain/catalogs/product"
	"almacen/internal/domain/costing"
	"almacen/internal/domain/exchange"
	"almacen/internal/domain/ledger"
	"almacen/internal/domain/measure"
	"almacen/pkg/logger"
)

// Service registers purchase documents. Registration is atomic: the
// document, its stock effects and the cost recalculation commit together
// or not at all.
type Service struct {
	repo      Repository
	products  product.Repository
	stock     *ledger.Service
	engine    *costing.Engine
	converter *measure.Converter
	rates     exchange.Provider
	txManager tx.Manager
}

// NewService creates a new purchase service.
func NewService(
	repo Repository,
	products product.Repository,
	stock *ledger.Service,
	engine *costing.Engine,
	converter *measure.Converter,
	rates exchange.Provider,
	txManager tx.Manager,
) *Service {
	return &Service{
		repo:      repo,
		products:  products,
		stock:     stock,
		engine:    engine,
		converter: converter,
		rates:     rates,
		txManager: txManager,
	}
}

// Register validates and persists a purchase, raising stock and rolling the
// weighted-average cost of each product on the document.
func (s *Service) Register(ctx context.Context, doc *Purchase) error {
	if err := doc.Validate(ctx); err != nil {
		return err
	}

	// A rate supplied on the document wins; the provider is only asked
	// when the caller left it out.
	if !doc.ExchangeRate.IsPositive() {
		rate, err := s.rates.Rate(ctx, doc.Currency, doc.Date)
		if err != nil {
			return fmt.Errorf("resolve exchange rate: %w", err)
		}
		doc.ExchangeRate = rate
	}

	doc.TotalNet = types.RoundMoney(s.engine.NetOfTax(doc.TotalAmount))
	doc.TotalTax = doc.TotalAmount.Sub(doc.TotalNet)

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		exists, err := s.repo.ExistsBySupplierDoc(ctx, doc.SupplierID, doc.Series, doc.Number)
		if err != nil {
			return fmt.Errorf("check duplicate invoice: %w", err)
		}
		if exists {
			return apperror.NewDuplicateDocument(doc.SupplierID.String(), doc.Series, doc.Number)
		}

		for i := range doc.Lines {
			if err := s.applyLine(ctx, doc, &doc.Lines[i]); err != nil {
				return err
			}
		}

		if err := s.repo.Create(ctx, doc); err != nil {
			return fmt.Errorf("create document: %w", err)
		}
		if err := s.repo.SaveLines(ctx, doc.ID, doc.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "purchase registered",
		"id", doc.ID,
		"supplier_id", doc.SupplierID,
		"invoice", doc.Series+"-"+doc.Number,
		"total", doc.TotalAmount,
		"currency", doc.Currency,
	)

	return nil
}

// applyLine converts the line to the product's base unit, derives the
// base-currency unit cost and rolls it into the product average, then raises
// stock. The product row is locked first so concurrent documents on the same
// product serialize in a fixed order (product row, then balance row).
func (s *Service) applyLine(ctx context.Context, doc *Purchase, line *Line) error {
	prod, err := s.products.GetForUpdate(ctx, line.ProductID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return apperror.NewNotFound("product", line.ProductID.String())
		}
		return fmt.Errorf("lock product %s: %w", line.ProductID, err)
	}

	line.BaseQuantity = types.RoundQuantity(s.converter.Convert(ctx, line.Quantity, line.Unit, prod.Unit))
	if !line.BaseQuantity.IsPositive() {
		return apperror.NewValidation("converted quantity must be positive").
			WithDetail("lineNo", line.LineNo).
			WithDetail("unit", line.Unit).
			WithDetail("baseUnit", prod.Unit)
	}

	// Price per base unit in the invoice currency, converted to the base
	// currency. Stock is carried at the price paid; the tax split lives
	// on the header totals only.
	pricePerBase := line.Amount.Div(line.BaseQuantity)
	line.UnitCost = s.engine.NormalizeUnitCost(pricePerBase, doc.ExchangeRate)

	line.CostBefore = prod.AverageCost
	newCost := costing.WeightedAverage(prod.Stock, prod.AverageCost, line.BaseQuantity, line.UnitCost)
	if err := s.products.UpdateAverageCost(ctx, prod.ID, newCost); err != nil {
		return fmt.Errorf("update average cost: %w", err)
	}

	if err := s.stock.Increase(ctx, doc.WarehouseID, prod.ID, line.BaseQuantity); err != nil {
		return err
	}

	return nil
}

// GetByID retrieves a purchase with lines.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*Purchase, error) {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("purchase", docID.String())
		}
		return nil, err
	}

	lines, err := s.repo.GetLines(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	doc.Lines = lines

	return doc, nil
}

// List retrieves purchases with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Purchase], error) {
	return s.repo.List(ctx, filter)
}
