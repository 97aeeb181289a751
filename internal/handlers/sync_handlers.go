package handlers

import (
	"github.com/labstack/echo/v4"

	"foamworks/internal/common"
	"foamworks/internal/models"
	"foamworks/internal/services"
)

type SyncHandlers struct {
	syncService services.SyncService
}

func NewSyncHandlers(syncService services.SyncService) *SyncHandlers {
	return &SyncHandlers{syncService: syncService}
}

func (h *SyncHandlers) Down(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantFromContext(ctx)
	if !ok {
		return common.Fail(c, common.Unauthorizedf("tenant not resolved"))
	}
	snapshot, err := h.syncService.Down(ctx, tenantID)
	if err != nil {
		return common.Fail(c, err)
	}
	return common.OK(c, snapshot)
}

type syncUpRequest struct {
	State *models.Snapshot `json:"state"`
}

func (h *SyncHandlers) Up(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantFromContext(ctx)
	if !ok {
		return common.Fail(c, common.Unauthorizedf("tenant not resolved"))
	}
	var req syncUpRequest
	if err := c.Bind(&req); err != nil {
		return common.Fail(c, common.Invalidf("invalid request body"))
	}
	if err := h.syncService.Up(ctx, tenantID, req.State); err != nil {
		return common.Fail(c, err)
	}
	return common.OK(c, map[string]any{"synced": true})
}
