package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/jordanlanch/leadgrid/pkg/api/errors"
	"github.com/jordanlanch/leadgrid/pkg/middleware"
	"github.com/jordanlanch/leadgrid/pkg/models"
	"github.com/jordanlanch/leadgrid/pkg/views"
)

// ViewHandler handles saved view endpoints
type ViewHandler struct {
	service *views.Service
}

// NewViewHandler creates a new saved view handler
func NewViewHandler(service *views.Service) *ViewHandler {
	return &ViewHandler{
		service: service,
	}
}

// RegisterRoutes registers saved view routes under g
func (h *ViewHandler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.List)
	g.POST("", h.Create)
	g.PATCH("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

// List godoc
// @Summary List saved views
// @Description Views of the current user for a resource, ordered by name
// @Tags Views
// @Produce json
// @Param resource query string true "Resource name, e.g. leads"
// @Success 200 {array} models.SavedView
// @Failure 400 {object} models.ErrorResponse "resource required"
// @Failure 500 {object} models.ErrorResponse "Failed to fetch views"
// @Router /views [get]
func (h *ViewHandler) List(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "unauthorized"})
	}

	list, err := h.service.List(c.Request().Context(), userID, c.QueryParam("resource"))
	if err != nil {
		return errors.Respond(c, err, "Failed to fetch views")
	}

	return c.JSON(http.StatusOK, list)
}

// Create godoc
// @Summary Save a view
// @Description Names are unique per user and resource
// @Tags Views
// @Accept json
// @Produce json
// @Param request body models.CreateViewRequest true "View"
// @Success 201 {object} models.SavedView
// @Failure 400 {object} models.ErrorResponse "name, resource, state required"
// @Failure 409 {object} models.ErrorResponse "view name already exists"
// @Failure 500 {object} models.ErrorResponse "Failed to create view"
// @Router /views [post]
func (h *ViewHandler) Create(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "unauthorized"})
	}

	var req models.CreateViewRequest
	if err := c.Bind(&req); err != nil {
		return errors.ValidationError(c, "Invalid request body")
	}

	view, err := h.service.Create(c.Request().Context(), userID, req)
	if err != nil {
		return errors.Respond(c, err, "Failed to create view")
	}

	return c.JSON(http.StatusCreated, view)
}

// Update godoc
// @Summary Update a saved view
// @Tags Views
// @Accept json
// @Produce json
// @Param id path integer true "View ID"
// @Param request body models.UpdateViewRequest true "Fields to change"
// @Success 200 {object} models.SavedView
// @Failure 400 {object} models.ErrorResponse "no fields to update"
// @Failure 404 {object} models.ErrorResponse "not found"
// @Failure 409 {object} models.ErrorResponse "view name already exists"
// @Failure 500 {object} models.ErrorResponse "Failed to update view"
// @Router /views/{id} [patch]
func (h *ViewHandler) Update(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "unauthorized"})
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errors.NotFoundError(c, "not found")
	}

	var req models.UpdateViewRequest
	if err := c.Bind(&req); err != nil {
		return errors.ValidationError(c, "Invalid request body")
	}

	view, err := h.service.Update(c.Request().Context(), id, userID, req)
	if err != nil {
		return errors.Respond(c, err, "Failed to update view")
	}

	return c.JSON(http.StatusOK, view)
}

// Delete godoc
// @Summary Delete a saved view
// @Description Deleting a missing view reports 0 deleted
// @Tags Views
// @Produce json
// @Param id path integer true "View ID"
// @Success 200 {object} models.DeleteViewResponse
// @Failure 500 {object} models.ErrorResponse "Failed to delete view"
// @Router /views/{id} [delete]
func (h *ViewHandler) Delete(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "unauthorized"})
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusOK, models.DeleteViewResponse{Deleted: 0})
	}

	deleted, err := h.service.Delete(c.Request().Context(), id, userID)
	if err != nil {
		return errors.Respond(c, err, "Failed to delete view")
	}

	return c.JSON(http.StatusOK, models.DeleteViewResponse{Deleted: deleted})
}
