package handlers

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jordanlanch/leadgrid/pkg/api/errors"
	"github.com/jordanlanch/leadgrid/pkg/export"
	"github.com/jordanlanch/leadgrid/pkg/filters"
	"github.com/jordanlanch/leadgrid/pkg/logger"
	"github.com/jordanlanch/leadgrid/pkg/models"
)

// ExportHandler handles lead export endpoints
type ExportHandler struct {
	exportService *export.Service
	logger        logger.Logger
}

// NewExportHandler creates a new export handler
func NewExportHandler(exportService *export.Service, log logger.Logger) *ExportHandler {
	if log == nil {
		log = logger.Default()
	}
	return &ExportHandler{
		exportService: exportService,
		logger:        log,
	}
}

// RegisterRoutes registers export routes under the leads group
func (h *ExportHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/export", h.Export)
}

// Export godoc
// @Summary Export leads
// @Description Every lead matching the filters as CSV or XLSX. Inline storage returns the file; S3 storage returns a presigned URL.
// @Tags Export
// @Produce text/csv
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Produce json
// @Param format query string false "csv or xlsx" default(csv)
// @Param sort query string false "Sort column" default(id)
// @Param dir query string false "asc or desc" default(asc)
// @Param filters query string false "JSON filter state"
// @Success 200 {object} models.ExportResponse "When exports are stored remotely"
// @Failure 400 {object} models.ErrorResponse "Invalid format"
// @Failure 500 {object} models.ErrorResponse "Failed to export leads"
// @Router /leads/export [get]
func (h *ExportHandler) Export(c echo.Context) error {
	var req models.ExportRequest
	if err := c.Bind(&req); err != nil {
		return errors.ValidationError(c, "Invalid query parameters")
	}
	if err := models.Validate(req); err != nil {
		return errors.Respond(c, err, "Failed to export leads")
	}

	state, err := filters.Parse(req.Filters)
	if err != nil {
		h.logger.Warn("Invalid filters payload", "error", err)
	}

	file, err := h.exportService.Export(c.Request().Context(), export.Request{
		Format:  req.Format,
		Sort:    req.Sort,
		Dir:     req.Dir,
		Filters: state,
	})
	if err != nil {
		return errors.Respond(c, err, "Failed to export leads")
	}

	if file.URL != "" {
		return c.JSON(http.StatusOK, models.ExportResponse{
			Key:  file.Key,
			URL:  file.URL,
			Rows: file.Rows,
		})
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", file.Name))
	return c.Blob(http.StatusOK, file.ContentType, file.Body)
}
