package errors

import (
	"errors"
	"log"
	"net/http"

	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/labstack/echo/v4"

	"github.com/jordanlanch/leadgrid/pkg/domain"
	"github.com/jordanlanch/leadgrid/pkg/models"
)

// ValidationError returns a 400 with a message that is safe to show
func ValidationError(c echo.Context, message string) error {
	log.Printf("[VALIDATION ERROR] Path: %s, Error: %s", c.Request().URL.Path, message)

	return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: message})
}

// NotFoundError returns a 404 with message
func NotFoundError(c echo.Context, message string) error {
	return c.JSON(http.StatusNotFound, models.ErrorResponse{Error: message})
}

// ConflictError returns a 409 with message
func ConflictError(c echo.Context, message string) error {
	return c.JSON(http.StatusConflict, models.ErrorResponse{Error: message})
}

// DatabaseError returns a 500 carrying only fallback; err is logged and
// reported.
func DatabaseError(c echo.Context, err error, fallback string) error {
	log.Printf("[DATABASE ERROR] Path: %s, Error: %v", c.Request().URL.Path, err)
	capture(c, err)

	return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: fallback})
}

// InternalError returns a 500 carrying only fallback; err is logged and
// reported.
func InternalError(c echo.Context, err error, fallback string) error {
	log.Printf("[INTERNAL ERROR] Path: %s, Error: %v", c.Request().URL.Path, err)
	capture(c, err)

	return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: fallback})
}

// Respond renders err according to its domain code. Errors without a
// domain code are treated as datastore failures and answered with fallback.
func Respond(c echo.Context, err error, fallback string) error {
	switch domain.GetErrorCode(err) {
	case domain.ErrCodeValidation, domain.ErrCodeBadRequest:
		return ValidationError(c, domain.MessageOf(err, fallback))
	case domain.ErrCodeNotFound:
		return NotFoundError(c, domain.MessageOf(err, fallback))
	case domain.ErrCodeConflict:
		return ConflictError(c, domain.MessageOf(err, fallback))
	default:
		var de *domain.DomainError
		if errors.As(err, &de) {
			return InternalError(c, err, fallback)
		}
		return DatabaseError(c, err, fallback)
	}
}

// HTTPErrorHandler renders framework errors (unknown routes, bad methods,
// bind failures) as {"error": "..."} bodies.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := http.StatusText(code)

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if msg, ok := he.Message.(string); ok {
			message = msg
		} else {
			message = http.StatusText(code)
		}
	}
	if code >= http.StatusInternalServerError {
		log.Printf("[INTERNAL ERROR] Path: %s, Error: %v", c.Request().URL.Path, err)
		capture(c, err)
		message = http.StatusText(code)
	}

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(code)
	} else {
		writeErr = c.JSON(code, models.ErrorResponse{Error: message})
	}
	if writeErr != nil {
		log.Printf("[INTERNAL ERROR] Path: %s, Error: %v", c.Request().URL.Path, writeErr)
	}
}

func capture(c echo.Context, err error) {
	if hub := sentryecho.GetHubFromContext(c); hub != nil {
		hub.CaptureException(err)
	}
}
