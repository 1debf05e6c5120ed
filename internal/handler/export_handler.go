package handler

import (
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/dafibh/vendas/vendas-backend/internal/export"
	"github.com/dafibh/vendas/vendas-backend/internal/service"
	"github.com/labstack/echo/v4"
)

// ExportHandler lists archived exports
type ExportHandler struct {
	exportService *service.ExportService
	defaultLimit  int
}

// NewExportHandler creates a new ExportHandler
func NewExportHandler(exportService *service.ExportService, defaultLimit int) *ExportHandler {
	if defaultLimit <= 0 {
		defaultLimit = 20
	}
	return &ExportHandler{exportService: exportService, defaultLimit: defaultLimit}
}

// maxRecentLimit caps the limit query param
const maxRecentLimit = 100

// ExportRecordResponse represents an archived export in API responses
type ExportRecordResponse struct {
	ID          string `json:"id"`
	Topic       string `json:"topic"`
	Format      string `json:"format"`
	Filename    string `json:"filename"`
	SizeBytes   int64  `json:"sizeBytes"`
	RowCount    int    `json:"rowCount"`
	GeneratedAt string `json:"generatedAt"`
	CreatedAt   string `json:"createdAt"`
	DownloadURL string `json:"downloadUrl,omitempty"`
}

// RecentExportsResponse represents the archived exports listing
type RecentExportsResponse struct {
	ArchiveEnabled bool                   `json:"archiveEnabled"`
	Exports        []ExportRecordResponse `json:"exports"`
}

// GetRecent handles GET /api/v1/exports
// Accepts optional topic and limit query params
func (h *ExportHandler) GetRecent(c echo.Context) error {
	limit := h.defaultLimit
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxRecentLimit {
			return NewValidationError(c, "Invalid limit", []ValidationError{
				{Field: "limit", Message: fmt.Sprintf("Must be between 1 and %d", maxRecentLimit)},
			})
		}
		limit = parsed
	}

	records, err := h.exportService.Recent(c.Request().Context(), c.QueryParam("topic"), limit)
	if err != nil {
		return handleServiceError(c, err, "List exports")
	}

	response := RecentExportsResponse{
		ArchiveEnabled: h.exportService.ArchiveEnabled(),
		Exports:        make([]ExportRecordResponse, 0, len(records)),
	}
	for _, r := range records {
		response.Exports = append(response.Exports, ExportRecordResponse{
			ID:          r.ID.String(),
			Topic:       r.Topic,
			Format:      string(r.Format),
			Filename:    r.Filename,
			SizeBytes:   r.SizeBytes,
			RowCount:    r.RowCount,
			GeneratedAt: r.GeneratedAt.Format(time.RFC3339),
			CreatedAt:   r.CreatedAt.Format(time.RFC3339),
			DownloadURL: r.DownloadURL,
		})
	}
	return c.JSON(http.StatusOK, response)
}

// sendArtifact writes a rendered report as a file download
func sendArtifact(c echo.Context, artifact *export.Artifact) error {
	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": artifact.Filename})
	c.Response().Header().Set(echo.HeaderContentDisposition, disposition)
	c.Response().Header().Set(echo.HeaderContentLength, strconv.FormatInt(artifact.Size(), 10))
	return c.Blob(http.StatusOK, artifact.ContentType, artifact.Data)
}
