package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// CatalogInfo reports how many catalog entries are loaded.
type CatalogInfo interface {
	Len() int
}

// HealthHandler provides health and readiness endpoints.
type HealthHandler struct {
	catalog CatalogInfo
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(c CatalogInfo) *HealthHandler {
	return &HealthHandler{catalog: c}
}

// Healthz returns 200 if the process is running.
func (*HealthHandler) Healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Readyz returns 200 once the priority catalog is loaded, 503 otherwise.
func (h *HealthHandler) Readyz(c echo.Context) error {
	if h.catalog == nil || h.catalog.Len() == 0 {
		return c.JSON(
			http.StatusServiceUnavailable,
			map[string]string{"status": "unavailable"},
		)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ready"})
}
