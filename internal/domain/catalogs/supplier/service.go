package supplier

import (
	"context"

	"almacen/internal/core/apperror"
	"almacen/internal/core/tx"
	"almacen/internal/domain"
)

// Service provides business logic for the Supplier catalog.
type Service struct {
	*domain.CatalogService[*Supplier]
	repo Repository
}

// NewService creates a new Supplier service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Supplier]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "supplier",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
	}

	base.Hooks().OnBeforeCreate(svc.checkUniqueTaxID)

	return svc
}

func (s *Service) checkUniqueTaxID(ctx context.Context, sup *Supplier) error {
	existing, err := s.repo.GetByTaxID(ctx, sup.TaxID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil
		}
		return err
	}
	if existing != nil && existing.ID != sup.ID {
		return apperror.NewConflict("supplier tax id already registered").
			WithDetail("taxId", sup.TaxID)
	}
	return nil
}

// GetByTaxID retrieves a supplier by fiscal identifier.
func (s *Service) GetByTaxID(ctx context.Context, taxID string) (*Supplier, error) {
	sup, err := s.repo.GetByTaxID(ctx, taxID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("supplier", taxID)
		}
		return nil, err
	}
	return sup, nil
}
