package middleware

import (
	"github.com/labstack/echo/v4"
)

const userIDKey = "user_id"

// FixedIdentity sets the caller's user id on every request. The service has
// a single operator; the id is configured rather than authenticated.
func FixedIdentity(userID int) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(userIDKey, userID)
			return next(c)
		}
	}
}

// UserID returns the caller id set by FixedIdentity
func UserID(c echo.Context) (int, bool) {
	id, ok := c.Get(userIDKey).(int)
	return id, ok && id > 0
}
