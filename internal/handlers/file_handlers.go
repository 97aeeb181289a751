package handlers

import (
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"foamworks/internal/common"
	"foamworks/internal/services"
)

// FileHandlers accepts the base64 upload payloads the field clients send and
// serves stored objects back under /files/*.
type FileHandlers struct {
	storageService services.StorageService
	jobsService    services.JobsService
}

func NewFileHandlers(storageService services.StorageService, jobsService services.JobsService) *FileHandlers {
	return &FileHandlers{storageService: storageService, jobsService: jobsService}
}

type uploadRequest struct {
	Base64Data string `json:"base64Data"`
	FileName   string `json:"fileName"`
	EstimateID string `json:"estimateId"`
}

// decodePayload strips an optional data-URL prefix before decoding.
func decodePayload(base64Data string) ([]byte, error) {
	encoded := base64Data
	if idx := strings.Index(encoded, ","); idx >= 0 {
		encoded = encoded[idx+1:]
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, common.Invalidf("payload is not valid base64")
	}
	return data, nil
}

func (h *FileHandlers) UploadImage(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantFromContext(ctx)
	if !ok {
		return common.Fail(c, common.Unauthorizedf("tenant not resolved"))
	}
	var req uploadRequest
	if err := c.Bind(&req); err != nil {
		return common.Fail(c, common.Invalidf("invalid request body"))
	}
	data, err := decodePayload(req.Base64Data)
	if err != nil {
		return common.Fail(c, err)
	}
	url, err := h.storageService.UploadPhoto(ctx, tenantID, req.FileName, data, "image/jpeg")
	if err != nil {
		return common.Fail(c, err)
	}
	return common.OK(c, map[string]any{
		"key": strings.TrimPrefix(url, "/files/"),
		"url": url,
	})
}

func (h *FileHandlers) SavePDF(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantFromContext(ctx)
	if !ok {
		return common.Fail(c, common.Unauthorizedf("tenant not resolved"))
	}
	var req uploadRequest
	if err := c.Bind(&req); err != nil {
		return common.Fail(c, common.Invalidf("invalid request body"))
	}
	if req.FileName == "" {
		return common.Fail(c, common.Invalidf("fileName is required"))
	}
	data, err := decodePayload(req.Base64Data)
	if err != nil {
		return common.Fail(c, err)
	}
	url, err := h.storageService.SavePDF(ctx, tenantID, req.FileName, data)
	if err != nil {
		return common.Fail(c, err)
	}
	if req.EstimateID != "" {
		if err := h.jobsService.SetPDFLink(ctx, tenantID, req.EstimateID, url); err != nil {
			return common.Fail(c, err)
		}
	}
	return common.OK(c, map[string]any{"url": url})
}

// Serve streams a stored object. The wildcard path is the object key.
func (h *FileHandlers) Serve(c echo.Context) error {
	key := c.Param("*")
	if key == "" {
		return echo.NewHTTPError(http.StatusNotFound)
	}
	data, contentType, err := h.storageService.Get(c.Request().Context(), key)
	if err != nil {
		return common.Fail(c, err)
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return c.Blob(http.StatusOK, contentType, data)
}
