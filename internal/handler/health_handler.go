package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// HealthHandler reports liveness
type HealthHandler struct {
	archiveEnabled bool
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(archiveEnabled bool) *HealthHandler {
	return &HealthHandler{archiveEnabled: archiveEnabled}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status  string `json:"status"`
	Archive bool   `json:"archive"`
}

// GetHealth handles GET /health
func (h *HealthHandler) GetHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok", Archive: h.archiveEnabled})
}
