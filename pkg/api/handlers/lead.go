package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/jordanlanch/leadgrid/pkg/api/errors"
	"github.com/jordanlanch/leadgrid/pkg/filters"
	"github.com/jordanlanch/leadgrid/pkg/leads"
	"github.com/jordanlanch/leadgrid/pkg/logger"
	"github.com/jordanlanch/leadgrid/pkg/models"
)

// LeadHandler handles lead endpoints
type LeadHandler struct {
	leadService *leads.Service
	logger      logger.Logger
}

// NewLeadHandler creates a new lead handler
func NewLeadHandler(leadService *leads.Service, log logger.Logger) *LeadHandler {
	if log == nil {
		log = logger.Default()
	}
	return &LeadHandler{
		leadService: leadService,
		logger:      log,
	}
}

// RegisterRoutes registers lead and bulk routes under g
func (h *LeadHandler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/options", h.Options)
	g.POST("/bulk-delete", h.BulkDelete)
	g.POST("/bulk-edit", h.BulkEdit)
	g.POST("/bulk-duplicate", h.BulkDuplicate)
	g.GET("/:id", h.Get)
	g.PATCH("/:id", h.Patch)
}

// List godoc
// @Summary List leads
// @Description One page of leads matching the filters, plus the total match count
// @Tags Leads
// @Produce json
// @Param page query integer false "Page number" default(1)
// @Param pageSize query integer false "Rows per page (1-200)" default(25)
// @Param sort query string false "Sort column" default(id)
// @Param dir query string false "asc or desc" default(asc)
// @Param filters query string false "JSON filter state"
// @Success 200 {object} models.LeadListResponse
// @Failure 500 {object} models.ErrorResponse "Failed to fetch leads"
// @Router /leads [get]
func (h *LeadHandler) List(c echo.Context) error {
	var req models.LeadListRequest
	if err := c.Bind(&req); err != nil {
		return errors.ValidationError(c, "Invalid query parameters")
	}

	page, pageSize := filters.ParsePaging(req.Page, req.PageSize)
	state := h.parseFilters(req.Filters)

	result, err := h.leadService.List(c.Request().Context(), leads.ListParams{
		Page:     page,
		PageSize: pageSize,
		Sort:     req.Sort,
		Dir:      req.Dir,
		Filters:  state,
	})
	if err != nil {
		return errors.Respond(c, err, "Failed to fetch leads")
	}

	return c.JSON(http.StatusOK, result)
}

// Get godoc
// @Summary Get a lead
// @Tags Leads
// @Produce json
// @Param id path integer true "Lead ID"
// @Success 200 {object} models.Lead
// @Failure 404 {object} models.ErrorResponse "Lead not found"
// @Router /leads/{id} [get]
func (h *LeadHandler) Get(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errors.NotFoundError(c, "Lead not found")
	}

	lead, err := h.leadService.Get(c.Request().Context(), id)
	if err != nil {
		return errors.Respond(c, err, "Failed to fetch lead")
	}

	return c.JSON(http.StatusOK, lead)
}

// Create godoc
// @Summary Create a lead
// @Tags Leads
// @Accept json
// @Produce json
// @Param request body models.CreateLeadRequest true "Lead fields"
// @Success 201 {object} models.Lead
// @Failure 400 {object} models.ErrorResponse "Invalid lead"
// @Failure 500 {object} models.ErrorResponse "Failed to create lead"
// @Router /leads [post]
func (h *LeadHandler) Create(c echo.Context) error {
	var req models.CreateLeadRequest
	if err := c.Bind(&req); err != nil {
		return errors.ValidationError(c, "Invalid request body")
	}

	lead, err := h.leadService.Create(c.Request().Context(), req)
	if err != nil {
		return errors.Respond(c, err, "Failed to create lead")
	}

	return c.JSON(http.StatusCreated, lead)
}

// Patch godoc
// @Summary Update lead fields
// @Description Sets any of the editable columns present in the body
// @Tags Leads
// @Accept json
// @Produce json
// @Param id path integer true "Lead ID"
// @Success 200 {object} models.Lead
// @Failure 400 {object} models.ErrorResponse "No updatable fields or invalid value"
// @Failure 404 {object} models.ErrorResponse "Lead not found"
// @Failure 500 {object} models.ErrorResponse "Failed to update lead"
// @Router /leads/{id} [patch]
func (h *LeadHandler) Patch(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errors.NotFoundError(c, "Lead not found")
	}

	fields := map[string]any{}
	dec := json.NewDecoder(c.Request().Body)
	dec.UseNumber()
	if err := dec.Decode(&fields); err != nil {
		return errors.ValidationError(c, "Invalid request body")
	}

	lead, err := h.leadService.Patch(c.Request().Context(), id, fields)
	if err != nil {
		return errors.Respond(c, err, "Failed to update lead")
	}

	return c.JSON(http.StatusOK, lead)
}

// Options godoc
// @Summary Grid select options
// @Description Stages, sources and the owners and countries present in the table
// @Tags Leads
// @Produce json
// @Success 200 {object} models.LeadOptionsResponse
// @Router /leads/options [get]
func (h *LeadHandler) Options(c echo.Context) error {
	opts, err := h.leadService.Options(c.Request().Context())
	if err != nil {
		return errors.Respond(c, err, "Failed to fetch options")
	}
	return c.JSON(http.StatusOK, opts)
}

// parseFilters decodes the filters query value. Malformed payloads are
// logged and read as no filters.
func (h *LeadHandler) parseFilters(raw string) filters.State {
	state, err := filters.Parse(raw)
	if err != nil {
		h.logger.Warn("Invalid filters payload", "error", err)
	}
	return state
}
