package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"almacen/internal/core/apperror"
	"almacen/internal/domain/measure"
)

// UnitsHandler exposes the unit-of-measure catalog.
type UnitsHandler struct {
	*BaseHandler
	converter *measure.Converter
}

// NewUnitsHandler creates a new units handler.
func NewUnitsHandler(base *BaseHandler, converter *measure.Converter) *UnitsHandler {
	return &UnitsHandler{BaseHandler: base, converter: converter}
}

// Compatible handles GET /units/compatible?unit= - units convertible to the
// given one. Clients use it to offer valid alternate units on document lines.
func (h *UnitsHandler) Compatible(c *gin.Context) {
	unit := c.Query("unit")
	if unit == "" {
		h.Error(c, apperror.NewValidation("unit is required"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"unit":  unit,
		"units": h.converter.CompatibleUnits(unit),
	})
}

// RegisterRoutes registers unit routes.
func (h *UnitsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/compatible", h.Compatible)
}
