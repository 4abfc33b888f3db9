package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jordanlanch/leadgrid/pkg/api/errors"
	"github.com/jordanlanch/leadgrid/pkg/models"
)

// BulkDelete godoc
// @Summary Delete leads
// @Tags Bulk
// @Accept json
// @Produce json
// @Param request body models.BulkDeleteRequest true "Lead ids"
// @Success 200 {object} models.BulkDeleteResponse
// @Failure 400 {object} models.ErrorResponse "ids required"
// @Failure 500 {object} models.ErrorResponse "Failed to delete leads"
// @Router /leads/bulk-delete [post]
func (h *LeadHandler) BulkDelete(c echo.Context) error {
	var req models.BulkDeleteRequest
	if err := c.Bind(&req); err != nil {
		return errors.ValidationError(c, "Invalid request body")
	}

	deleted, err := h.leadService.BulkDelete(c.Request().Context(), req.IDs)
	if err != nil {
		return errors.Respond(c, err, "Failed to delete leads")
	}

	return c.JSON(http.StatusOK, models.BulkDeleteResponse{Deleted: deleted})
}

// BulkEdit godoc
// @Summary Set one column on many leads
// @Description The value is validated for the column before anything is written
// @Tags Bulk
// @Accept json
// @Produce json
// @Param request body models.BulkEditRequest true "Ids, column and value"
// @Success 200 {object} models.BulkEditResponse
// @Failure 400 {object} models.ErrorResponse "Invalid ids, column or value"
// @Failure 500 {object} models.ErrorResponse "Bulk edit failed"
// @Router /leads/bulk-edit [post]
func (h *LeadHandler) BulkEdit(c echo.Context) error {
	var req models.BulkEditRequest
	if err := c.Bind(&req); err != nil {
		return errors.ValidationError(c, "Invalid request body")
	}

	updated, err := h.leadService.BulkEdit(c.Request().Context(), req.IDs, req.Column, req.Value)
	if err != nil {
		return errors.Respond(c, err, "Bulk edit failed")
	}

	return c.JSON(http.StatusOK, models.BulkEditResponse{Updated: updated})
}

// BulkDuplicate godoc
// @Summary Duplicate leads
// @Description Copies each lead up to 25 times with a templated company name
// @Tags Bulk
// @Accept json
// @Produce json
// @Param request body models.BulkDuplicateRequest true "Ids, copies, prefix and suffix"
// @Success 200 {object} models.BulkDuplicateResponse
// @Failure 400 {object} models.ErrorResponse "Invalid ids or copies"
// @Failure 404 {object} models.ErrorResponse "No leads found for the provided ids."
// @Failure 500 {object} models.ErrorResponse "Bulk duplicate failed"
// @Router /leads/bulk-duplicate [post]
func (h *LeadHandler) BulkDuplicate(c echo.Context) error {
	var req models.BulkDuplicateRequest
	if err := c.Bind(&req); err != nil {
		return errors.ValidationError(c, "Invalid request body")
	}

	result, err := h.leadService.BulkDuplicate(c.Request().Context(), req)
	if err != nil {
		return errors.Respond(c, err, "Bulk duplicate failed")
	}

	return c.JSON(http.StatusOK, result)
}
