package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"almacen/internal/domain/ledger"
)

// StockHandler exposes read access to the stock ledger.
type StockHandler struct {
	*BaseHandler
	stock *ledger.Service
}

// NewStockHandler creates a new stock handler.
func NewStockHandler(base *BaseHandler, stock *ledger.Service) *StockHandler {
	return &StockHandler{BaseHandler: base, stock: stock}
}

// Warehouse handles GET /stock/warehouses/:id - non-zero balances.
func (h *StockHandler) Warehouse(c *gin.Context) {
	warehouseID, ok := h.ParseIDParam(c)
	if !ok {
		return
	}

	balances, err := h.stock.WarehouseStock(c.Request.Context(), warehouseID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"warehouseId": warehouseID, "balances": balances})
}

// Product handles GET /stock/products/:id - per-warehouse split and total.
func (h *StockHandler) Product(c *gin.Context) {
	productID, ok := h.ParseIDParam(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()

	balances, err := h.stock.ProductStock(ctx, productID)
	if err != nil {
		h.Error(c, err)
		return
	}

	total, err := h.stock.TotalAvailability(ctx, productID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"productId": productID,
		"total":     total,
		"balances":  balances,
	})
}

// RegisterRoutes registers stock routes on the group.
func (h *StockHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/warehouses/:id", h.Warehouse)
	rg.GET("/products/:id", h.Product)
}
