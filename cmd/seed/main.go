// Package main provides a CLI tool for seeding the database with initial data.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/shopspring/decimal"

	"almacen/internal/config"
	"almacen/internal/core/apperror"
	"almacen/internal/core/entity"
	"almacen/internal/domain"
	"almacen/internal/domain/catalogs/product"
	"almacen/internal/domain/catalogs/supplier"
	"almacen/internal/domain/catalogs/warehouse"
	"almacen/internal/infrastructure/storage/postgres"
	"almacen/internal/infrastructure/storage/postgres/catalog_repo"
	"almacen/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.DB.DSN))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	txManager := postgres.NewTxManager(pool)

	warehouseSvc := warehouse.NewService(catalog_repo.NewWarehouseRepo(txManager), txManager)
	supplierSvc := supplier.NewService(catalog_repo.NewSupplierRepo(txManager), txManager)
	productSvc := product.NewService(catalog_repo.NewProductRepo(txManager), txManager)

	// Default warehouse. Documents without an explicit warehouse land here.
	principal := warehouse.New(cfg.Inventory.DefaultWarehouseCode, "Almacén Principal")
	principal.IsDefault = true
	if err := create(ctx, warehouseSvc.CatalogService, principal, principal.Code, log, "warehouse"); err != nil {
		log.Fatalw("failed to seed default warehouse", "error", err)
	}

	if os.Getenv("SEED_DEMO_DATA") != "true" {
		log.Info("seed complete")
		return
	}

	secondary := warehouse.New("SECUNDARIO", "Almacén Secundario")
	_ = create(ctx, warehouseSvc.CatalogService, secondary, secondary.Code, log, "warehouse")

	demoSupplier := supplier.New("PROV-001", "Distribuidora Andina SAC", "20504030201")
	_ = create(ctx, supplierSvc.CatalogService, demoSupplier, demoSupplier.Code, log, "supplier")

	demoProducts := []*product.Product{
		newProduct("ACE-001", "Aceite vegetal", "LITRO", "120", "5"),
		newProduct("ARR-001", "Arroz extra", "KG", "250", "50"),
		newProduct("CAB-001", "Cable eléctrico", "METRO", "500", "100"),
		newProduct("CAJ-001", "Caja de cartón", "UNIDAD", "0", "20"),
	}
	for _, p := range demoProducts {
		_ = create(ctx, productSvc.CatalogService, p, p.Code, log, "product")
	}

	log.Info("seed complete")
}

func newProduct(code, name, unit, salePrice, minStock string) *product.Product {
	p := product.New(code, name, unit)
	p.SalePrice, _ = decimal.NewFromString(salePrice)
	p.MinStock, _ = decimal.NewFromString(minStock)
	return p
}

// create inserts the entity unless its code is already taken, so the tool
// stays rerunnable.
func create[T entity.Validatable](ctx context.Context, svc *domain.CatalogService[T], e T, code string, log *logger.Logger, kind string) error {
	if _, err := svc.GetByCode(ctx, code); err == nil {
		log.Infow("already exists", kind, code)
		return nil
	} else if !apperror.IsNotFound(err) {
		return err
	}

	if err := svc.Create(ctx, e); err != nil {
		return err
	}

	log.Infow("seeded", kind, code)
	return nil
}
