package handlers

import (
	stderrors "errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jordanlanch/leadgrid/pkg/api/errors"
	"github.com/jordanlanch/leadgrid/pkg/models"
	"github.com/jordanlanch/leadgrid/pkg/phone"
)

// PhoneHandler handles phone validation endpoints.
type PhoneHandler struct{}

// NewPhoneHandler creates a new phone handler.
func NewPhoneHandler() *PhoneHandler {
	return &PhoneHandler{}
}

// RegisterRoutes registers phone routes under the leads group
func (h *PhoneHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/phone/validate", h.ValidatePhone)
}

// ValidatePhone godoc
// @Summary Validate a lead phone number
// @Description Parses a contact number against the lead's country (name or ISO code) and returns its normalized formats
// @Tags Phone
// @Accept json
// @Produce json
// @Param request body models.ValidatePhoneRequest true "Phone and country"
// @Success 200 {object} phone.ValidationResult
// @Failure 400 {object} models.ErrorResponse
// @Router /leads/phone/validate [post]
func (h *PhoneHandler) ValidatePhone(c echo.Context) error {
	var req models.ValidatePhoneRequest
	if err := c.Bind(&req); err != nil {
		return errors.ValidationError(c, "Invalid request body")
	}
	if err := models.Validate(req); err != nil {
		return errors.Respond(c, err, "Invalid request body")
	}

	result, err := phone.Validate(req.Phone, req.Country)
	if err != nil {
		if stderrors.Is(err, phone.ErrUnknownCountry) {
			return errors.ValidationError(c, "Unknown country.")
		}
		return errors.ValidationError(c, "Enter a valid phone number.")
	}

	return c.JSON(http.StatusOK, result)
}
