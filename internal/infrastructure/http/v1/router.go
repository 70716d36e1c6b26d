// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"almacen/internal/domain/catalogs/product"
	"almacen/internal/domain/catalogs/supplier"
	"almacen/internal/domain/catalogs/warehouse"
	"almacen/internal/domain/documents/exit"
	"almacen/internal/domain/documents/purchase"
	"almacen/internal/domain/documents/transfer"
	"almacen/internal/domain/ledger"
	"almacen/internal/domain/measure"
	"almacen/internal/domain/reports"
	"almacen/internal/domain/valuation"
	"almacen/internal/infrastructure/http/v1/dto"
	"almacen/internal/infrastructure/http/v1/handlers"
	"almacen/internal/infrastructure/http/v1/middleware"
	"almacen/internal/infrastructure/storage/postgres"
	"almacen/pkg/logger"
)

// RouterConfig holds the wired services for the HTTP surface.
type RouterConfig struct {
	Pool   *postgres.Pool
	Logger *logger.Logger

	Products   *product.Service
	Warehouses *warehouse.Service
	Suppliers  *supplier.Service

	Purchases *purchase.Service
	Exits     *exit.Service
	Transfers *transfer.Service

	Stock     *ledger.Service
	Valuation *valuation.Service
	Reports   *reports.Service
	Converter *measure.Converter
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	base := handlers.NewBaseHandler()

	api := router.Group("/api/v1")
	{
		productHandler := handlers.NewCatalogHandler(base, handlers.CatalogHandlerConfig[*product.Product, dto.CreateProductRequest, dto.UpdateProductRequest]{
			Service: cfg.Products.CatalogService,
			MapCreateDTO: func(req dto.CreateProductRequest) *product.Product {
				return req.ToEntity()
			},
			MapUpdateDTO: func(req dto.UpdateProductRequest, existing *product.Product) *product.Product {
				req.ApplyTo(existing)
				return existing
			},
		})
		productHandler.RegisterRoutes(api.Group("/products"))

		warehouseHandler := handlers.NewWarehouseHandler(base, cfg.Warehouses)
		warehouseHandler.RegisterRoutes(api.Group("/warehouses"))

		supplierHandler := handlers.NewCatalogHandler(base, handlers.CatalogHandlerConfig[*supplier.Supplier, dto.CreateSupplierRequest, dto.UpdateSupplierRequest]{
			Service: cfg.Suppliers.CatalogService,
			MapCreateDTO: func(req dto.CreateSupplierRequest) *supplier.Supplier {
				return req.ToEntity()
			},
			MapUpdateDTO: func(req dto.UpdateSupplierRequest, existing *supplier.Supplier) *supplier.Supplier {
				req.ApplyTo(existing)
				return existing
			},
		})
		supplierHandler.RegisterRoutes(api.Group("/suppliers"))

		handlers.NewPurchaseHandler(base, cfg.Purchases).RegisterRoutes(api.Group("/purchases"))
		handlers.NewExitHandler(base, cfg.Exits).RegisterRoutes(api.Group("/exits"))
		handlers.NewTransferHandler(base, cfg.Transfers).RegisterRoutes(api.Group("/transfers"))

		handlers.NewStockHandler(base, cfg.Stock).RegisterRoutes(api.Group("/stock"))
		handlers.NewUnitsHandler(base, cfg.Converter).RegisterRoutes(api.Group("/units"))
		handlers.NewReportsHandler(base, cfg.Reports, cfg.Valuation).RegisterRoutes(api.Group("/reports"))
	}

	return router
}
