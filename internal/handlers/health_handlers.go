package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"foamworks/internal/repositories"
)

type HealthHandlers struct {
	pool repositories.Pool
}

func NewHealthHandlers(pool repositories.Pool) *HealthHandlers {
	return &HealthHandlers{pool: pool}
}

func (h *HealthHandlers) HealthCheck(c echo.Context) error {
	return c.String(http.StatusOK, "FoamWorks Backend Running")
}

// Ready reports whether the database is reachable.
func (h *HealthHandlers) Ready(c echo.Context) error {
	if err := h.pool.Ping(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]any{
			"status":  "error",
			"message": "database unreachable",
		})
	}
	return c.JSON(http.StatusOK, map[string]any{"status": "success"})
}
