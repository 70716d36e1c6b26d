// Package main is the entry point for the almacen API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"almacen/internal/config"
	"almacen/internal/domain/catalogs/product"
	"almacen/internal/domain/catalogs/supplier"
	"almacen/internal/domain/catalogs/warehouse"
	"almacen/internal/domain/costing"
	"almacen/internal/domain/documents/exit"
	"almacen/internal/domain/documents/purchase"
	"almacen/internal/domain/documents/transfer"
	"almacen/internal/domain/exchange"
	"almacen/internal/domain/ledger"
	"almacen/internal/domain/measure"
	"almacen/internal/domain/reports"
	"almacen/internal/domain/valuation"
	v1 "almacen/internal/infrastructure/http/v1"
	"almacen/internal/infrastructure/storage/postgres"
	"almacen/internal/infrastructure/storage/postgres/catalog_repo"
	"almacen/internal/infrastructure/storage/postgres/document_repo"
	"almacen/internal/infrastructure/storage/postgres/ledger_repo"
	"almacen/internal/infrastructure/storage/postgres/report_repo"
	"almacen/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.App.LogLevel,
		Development: cfg.App.Env == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Infow("starting almacen server", "env", cfg.App.Env)

	// --- Database ---
	poolCfg := postgres.DefaultPoolConfig(cfg.DB.DSN)
	if cfg.DB.MaxConns > 0 {
		poolCfg.MaxConns = cfg.DB.MaxConns
	}
	if cfg.DB.MinConns > 0 {
		poolCfg.MinConns = cfg.DB.MinConns
	}
	if cfg.DB.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.DB.MaxConnLifetime
	}

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalw("failed to ping database", "error", err)
	}
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)

	// --- Repositories ---
	productRepo := catalog_repo.NewProductRepo(txManager)
	warehouseRepo := catalog_repo.NewWarehouseRepo(txManager)
	supplierRepo := catalog_repo.NewSupplierRepo(txManager)

	purchaseRepo := document_repo.NewPurchaseRepo(txManager)
	exitRepo := document_repo.NewExitRepo(txManager)
	transferRepo := document_repo.NewTransferRepo(txManager)

	stockRepo := ledger_repo.NewStockRepo(txManager)
	valuationRepo := report_repo.NewValuationRepo(txManager)
	reportRepo := report_repo.NewReportRepo(txManager)

	// --- Domain services ---
	productSvc := product.NewService(productRepo, txManager)
	warehouseSvc := warehouse.NewService(warehouseRepo, txManager)
	supplierSvc := supplier.NewService(supplierRepo, txManager)

	stockSvc := ledger.NewService(stockRepo)
	converter := measure.NewConverter()
	engine := costing.NewEngine(cfg.Inventory.TaxRate)

	rates := exchange.NewCachedProvider(
		exchange.StaticSource{Value: cfg.Inventory.DefaultExchangeRate},
		cfg.Inventory.BaseCurrency,
		cfg.Inventory.DefaultExchangeRate,
		cfg.Inventory.RateCacheTTL,
	)

	purchaseSvc := purchase.NewService(purchaseRepo, productRepo, stockSvc, engine, converter, rates, txManager)
	exitSvc := exit.NewService(exitRepo, productRepo, stockSvc, converter, txManager)
	transferSvc := transfer.NewService(transferRepo, productRepo, stockSvc, converter, txManager)

	valuationSvc := valuation.NewService(valuationRepo, productRepo, txManager)
	reportsSvc := reports.NewService(reportRepo, productRepo, txManager)

	// Make sure the default warehouse exists before accepting documents.
	if _, err := warehouseSvc.Resolve(ctx, cfg.Inventory.DefaultWarehouseCode); err != nil {
		log.Warnw("default warehouse not found, run the seed tool",
			"code", cfg.Inventory.DefaultWarehouseCode)
	}

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:       pool,
		Logger:     log,
		Products:   productSvc,
		Warehouses: warehouseSvc,
		Suppliers:  supplierSvc,
		Purchases:  purchaseSvc,
		Exits:      exitSvc,
		Transfers:  transferSvc,
		Stock:      stockSvc,
		Valuation:  valuationSvc,
		Reports:    reportsSvc,
		Converter:  converter,
	})

	// --- HTTP server ---
	server := &http.Server{
		Addr:         cfg.HTTP.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "addr", cfg.HTTP.Addr())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
