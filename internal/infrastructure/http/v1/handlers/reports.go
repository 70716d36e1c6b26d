package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"almacen/internal/core/apperror"
	"almacen/internal/domain/reports"
	"almacen/internal/domain/valuation"
)

// ReportsHandler exposes the reporting endpoints: kardex, inventory
// snapshot, stock alerts, purchase totals and FIFO valuation.
type ReportsHandler struct {
	*BaseHandler
	reports   *reports.Service
	valuation *valuation.Service
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(base *BaseHandler, rs *reports.Service, vs *valuation.Service) *ReportsHandler {
	return &ReportsHandler{BaseHandler: base, reports: rs, valuation: vs}
}

// Kardex handles GET /reports/kardex - movement history of one product,
// or of every product when productId is omitted.
func (h *ReportsHandler) Kardex(c *gin.Context) {
	productID, ok := h.ParseIDQuery(c, "productId")
	if !ok {
		return
	}
	warehouseID, ok := h.ParseIDQuery(c, "warehouseId")
	if !ok {
		return
	}
	from, ok := h.ParseDateQuery(c, "from")
	if !ok {
		return
	}
	to, ok := h.ParseDateQuery(c, "to")
	if !ok {
		return
	}

	if productID == nil {
		report, err := h.reports.KardexAll(c.Request.Context(), reports.GlobalKardexFilter{
			WarehouseID: warehouseID,
			From:        from,
			To:          to,
		})
		if err != nil {
			h.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, report)
		return
	}

	report, err := h.reports.Kardex(c.Request.Context(), reports.KardexFilter{
		ProductID:   *productID,
		WarehouseID: warehouseID,
		From:        from,
		To:          to,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// Inventory handles GET /reports/inventory - snapshot at average cost.
func (h *ReportsHandler) Inventory(c *gin.Context) {
	filter := reports.SnapshotFilter{
		ExcludeZero: c.DefaultQuery("excludeZero", "true") == "true",
	}

	var ok bool
	if filter.WarehouseID, ok = h.ParseIDQuery(c, "warehouseId"); !ok {
		return
	}

	snapshot, err := h.reports.Snapshot(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// Alerts handles GET /reports/alerts - products at or under minimum stock.
func (h *ReportsHandler) Alerts(c *gin.Context) {
	products, err := h.reports.StockAlerts(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": products, "count": len(products)})
}

// PurchaseTotals handles GET /reports/purchase-totals - per-supplier
// aggregation for a period.
func (h *ReportsHandler) PurchaseTotals(c *gin.Context) {
	from, ok := h.ParseDateQuery(c, "from")
	if !ok {
		return
	}
	to, ok := h.ParseDateQuery(c, "to")
	if !ok {
		return
	}
	if from == nil || to == nil {
		h.Error(c, apperror.NewValidation("from and to are required").
			WithDetail("field", "from/to"))
		return
	}

	filter := reports.PurchaseTotalsFilter{From: *from, To: *to}
	if filter.SupplierID, ok = h.ParseIDQuery(c, "supplierId"); !ok {
		return
	}

	totals, err := h.reports.PurchaseTotals(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, totals)
}

// Valuation handles GET /reports/valuation - FIFO valuation of every
// product holding stock.
func (h *ReportsHandler) Valuation(c *gin.Context) {
	value, err := h.valuation.Valuation(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, value)
}

// StockValue handles GET /reports/valuation/:id - FIFO valuation of the
// current stock of a product.
func (h *ReportsHandler) StockValue(c *gin.Context) {
	productID, ok := h.ParseIDParam(c)
	if !ok {
		return
	}

	value, err := h.valuation.StockValue(c.Request.Context(), productID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, value)
}

// ExitValue handles GET /reports/exit-value - FIFO value of exits in a
// period, reconstructed from the full document history.
func (h *ReportsHandler) ExitValue(c *gin.Context) {
	productID, ok := h.ParseIDQuery(c, "productId")
	if !ok {
		return
	}
	if productID == nil {
		h.Error(c, apperror.NewValidation("productId is required").
			WithDetail("field", "productId"))
		return
	}

	from, ok := h.ParseDateQuery(c, "from")
	if !ok {
		return
	}
	to, ok := h.ParseDateQuery(c, "to")
	if !ok {
		return
	}
	if from == nil || to == nil {
		h.Error(c, apperror.NewValidation("from and to are required").
			WithDetail("field", "from/to"))
		return
	}

	value, err := h.valuation.ExitValueForPeriod(c.Request.Context(), *productID, *from, *to)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, value)
}

// RegisterRoutes registers report routes on the group.
func (h *ReportsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/kardex", h.Kardex)
	rg.GET("/inventory", h.Inventory)
	rg.GET("/alerts", h.Alerts)
	rg.GET("/purchase-totals", h.PurchaseTotals)
	rg.GET("/valuation", h.Valuation)
	rg.GET("/valuation/:id", h.StockValue)
	rg.GET("/exit-value", h.ExitValue)
}
