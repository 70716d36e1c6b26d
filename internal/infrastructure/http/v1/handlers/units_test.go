package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"almacen/internal/domain/measure"
	"almacen/internal/infrastructure/http/v1/middleware"
)

func newUnitsRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.ErrorHandler())

	h := NewUnitsHandler(NewBaseHandler(), measure.NewConverter())
	h.RegisterRoutes(router.Group("/units"))
	return router
}

func TestUnitsHandler_Compatible(t *testing.T) {
	router := newUnitsRouter()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/units/compatible?unit=LITRO", nil)
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Unit  string   `json:"unit"`
		Units []string `json:"units"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "LITRO", body.Unit)
	assert.Equal(t, []string{"GLN", "LITRO", "M3", "ML"}, body.Units)
}

func TestUnitsHandler_Compatible_MissingUnit(t *testing.T) {
	router := newUnitsRouter()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/units/compatible", nil)
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
