package product

import (
	"context"

	"almacen/internal/core/apperror"
	"almacen/internal/core/tx"
	"almacen/internal/domain"
)

// Service provides business logic for the Product catalog.
type Service struct {
	*domain.CatalogService[*Product]
	repo Repository
}

// NewService creates a new Product service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Product]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "product",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
	}

	base.Hooks().OnBeforeCreate(svc.checkUniqueCode)

	return svc
}

func (s *Service) checkUniqueCode(ctx context.Context, p *Product) error {
	if p.Code == "" {
		return nil
	}
	exists, err := s.repo.ExistsByCode(ctx, p.Code)
	if err != nil {
		return err
	}
	if exists {
		return apperror.NewConflict("product code already in use").
			WithDetail("code", p.Code)
	}
	return nil
}

// ListBelowMinimum returns active products needing replenishment.
func (s *Service) ListBelowMinimum(ctx context.Context) ([]*Product, error) {
	return s.repo.ListBelowMinimum(ctx)
}
