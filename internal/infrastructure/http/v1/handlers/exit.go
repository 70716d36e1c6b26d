package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"almacen/internal/domain/documents/exit"
	"almacen/internal/infrastructure/http/v1/dto"
)

// ExitHandler handles HTTP requests for exit documents.
type ExitHandler struct {
	*BaseHandler
	service *exit.Service
}

// NewExitHandler creates a new exit handler.
func NewExitHandler(base *BaseHandler, service *exit.Service) *ExitHandler {
	return &ExitHandler{BaseHandler: base, service: service}
}

// Register handles POST /exits - register an outbound document.
func (h *ExitHandler) Register(c *gin.Context) {
	var req dto.RegisterExitRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc, err := req.ToEntity()
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Register(c.Request.Context(), doc); err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, doc)
}

// Get handles GET /exits/:id - document with lines.
func (h *ExitHandler) Get(c *gin.Context) {
	docID, ok := h.ParseIDParam(c)
	if !ok {
		return
	}

	doc, err := h.service.GetByID(c.Request.Context(), docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, doc)
}

// List handles GET /exits - headers only.
func (h *ExitHandler) List(c *gin.Context) {
	filter := exit.ListFilter{}
	filter.Search = c.Query("search")
	filter.Limit = h.ParseIntQuery(c, "limit", 50)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)

	var ok bool
	if filter.WarehouseID, ok = h.ParseIDQuery(c, "warehouseId"); !ok {
		return
	}
	if filter.ProductID, ok = h.ParseIDQuery(c, "productId"); !ok {
		return
	}
	if filter.DateFrom, ok = h.ParseDateQuery(c, "dateFrom"); !ok {
		return
	}
	if filter.DateTo, ok = h.ParseDateQuery(c, "dateTo"); !ok {
		return
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      result.Items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// RegisterRoutes registers exit routes on the group.
func (h *ExitHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Register)
	rg.GET("/:id", h.Get)
}
