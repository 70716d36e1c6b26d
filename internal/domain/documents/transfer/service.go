package transfer

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"almacen/internal/core/apperror"
	"almacen/internal/core/id"
	"almacen/internal/core/tx"
	"almacen/internal/core/types"
	"almacen/internal/domain"
	"almacen/internal/domain/catalogs/product"
	"almacen/internal/domain/ledger"
	"almacen/internal/domain/measure"
	"almacen/pkg/logger"
)

// Service registers transfer documents. The outbound and inbound legs of
// every line commit in one transaction; a short source balance fails the
// whole document.
type Service struct {
	repo      Repository
	products  product.Repository
	stock     *ledger.Service
	converter *measure.Converter
	txManager tx.Manager
}

// NewService creates a new transfer service.
func NewService(
	repo Repository,
	products product.Repository,
	stock *ledger.Service,
	converter *measure.Converter,
	txManager tx.Manager,
) *Service {
	return &Service{
		repo:      repo,
		products:  products,
		stock:     stock,
		converter: converter,
		txManager: txManager,
	}
}

// Register validates and persists a transfer, moving stock between the two
// warehouses. Lines are valued at the product's current average cost for
// reporting; the cost itself is untouched.
func (s *Service) Register(ctx context.Context, doc *Transfer) error {
	if err := doc.Validate(ctx); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		total := decimal.Zero

		for i := range doc.Lines {
			line := &doc.Lines[i]

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

			line.UnitCost = prod.AverageCost
			line.Cost = types.RoundMoney(line.BaseQuantity.Mul(line.UnitCost))
			total = total.Add(line.Cost)

			if err := s.stock.Move(ctx, doc.FromWarehouseID, doc.ToWarehouseID, prod.ID, line.BaseQuantity); err != nil {
				return err
			}
		}

		doc.TotalCost = total

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

	logger.Info(ctx, "transfer registered",
		"id", doc.ID,
		"from", doc.FromWarehouseID,
		"to", doc.ToWarehouseID,
		"total_cost", doc.TotalCost,
	)

	return nil
}

// GetByID retrieves a transfer with lines.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*Transfer, error) {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("transfer", docID.String())
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

// List retrieves transfers with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Transfer], error) {
	return s.repo.List(ctx, filter)
}
