package warehouse

import (
	"context"

	"almacen/internal/core/apperror"
	"almacen/internal/core/tx"
	"almacen/internal/domain"
)

// Service provides business logic for the Warehouse catalog.
type Service struct {
	*domain.CatalogService[*Warehouse]
	repo Repository
}

// NewService creates a new Warehouse service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Warehouse]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "warehouse",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
	}

	base.Hooks().OnBeforeCreate(svc.prepareDefault)
	base.Hooks().OnBeforeUpdate(svc.prepareDefault)

	return svc
}

// prepareDefault keeps the default flag unique across warehouses.
func (s *Service) prepareDefault(ctx context.Context, wh *Warehouse) error {
	if wh.IsDefault {
		return s.repo.ClearDefault(ctx)
	}
	return nil
}

// GetDefault retrieves the default warehouse.
func (s *Service) GetDefault(ctx context.Context) (*Warehouse, error) {
	wh, err := s.repo.GetDefault(ctx)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("default warehouse", "")
		}
		return nil, err
	}
	return wh, nil
}

// Resolve returns the warehouse with the given code, falling back to the
// default warehouse when the code is empty.
func (s *Service) Resolve(ctx context.Context, code string) (*Warehouse, error) {
	if code == "" {
		return s.GetDefault(ctx)
	}
	return s.GetByCode(ctx, code)
}
