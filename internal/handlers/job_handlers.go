package handlers

import (
	"encoding/json"

	"github.com/labstack/echo/v4"

	"foamworks/internal/common"
	"foamworks/internal/models"
	"foamworks/internal/services"
)

type JobHandlers struct {
	jobsService services.JobsService
}

func NewJobHandlers(jobsService services.JobsService) *JobHandlers {
	return &JobHandlers{jobsService: jobsService}
}

type jobRequest struct {
	EstimateID string          `json:"estimateId"`
	Actuals    json.RawMessage `json:"actuals"`
}

func (h *JobHandlers) bindJob(c echo.Context) (string, *jobRequest, error) {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantFromContext(ctx)
	if !ok {
		return "", nil, common.Unauthorizedf("tenant not resolved")
	}
	var req jobRequest
	if err := c.Bind(&req); err != nil {
		return "", nil, common.Invalidf("invalid request body")
	}
	if req.EstimateID == "" {
		return "", nil, common.Invalidf("estimateId is required")
	}
	return tenantID, &req, nil
}

func (h *JobHandlers) Start(c echo.Context) error {
	tenantID, req, err := h.bindJob(c)
	if err != nil {
		return common.Fail(c, err)
	}
	if err := h.jobsService.Start(c.Request().Context(), tenantID, req.EstimateID); err != nil {
		return common.Fail(c, err)
	}
	return common.OK(c, map[string]any{"status": models.StatusInProgress})
}

func (h *JobHandlers) Complete(c echo.Context) error {
	tenantID, req, err := h.bindJob(c)
	if err != nil {
		return common.Fail(c, err)
	}
	username, _ := common.GetUsernameFromContext(c.Request().Context())
	if err := h.jobsService.Complete(c.Request().Context(), tenantID, req.EstimateID, req.Actuals, username); err != nil {
		return common.Fail(c, err)
	}
	return common.OK(c, map[string]any{"message": "Job completed"})
}

func (h *JobHandlers) MarkPaid(c echo.Context) error {
	tenantID, req, err := h.bindJob(c)
	if err != nil {
		return common.Fail(c, err)
	}
	estimate, err := h.jobsService.MarkPaid(c.Request().Context(), tenantID, req.EstimateID)
	if err != nil {
		return common.Fail(c, err)
	}
	return common.OK(c, map[string]any{"estimate": estimate})
}

func (h *JobHandlers) Delete(c echo.Context) error {
	tenantID, req, err := h.bindJob(c)
	if err != nil {
		return common.Fail(c, err)
	}
	if err := h.jobsService.Delete(c.Request().Context(), tenantID, req.EstimateID); err != nil {
		return common.Fail(c, err)
	}
	return common.OK(c, map[string]any{"message": "Deleted"})
}
