package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4/middleware"
)

// AllowedMethods lists the methods the grid client uses
var AllowedMethods = []string{
	http.MethodGet,
	http.MethodPost,
	http.MethodPatch,
	http.MethodDelete,
}

// CORSConfig returns the CORS configuration for the given origins.
// Centralised here so that both main.go and tests reference the same config.
func CORSConfig(origins []string) middleware.CORSConfig {
	return middleware.CORSConfig{
		AllowOrigins:     origins,
		AllowMethods:     AllowedMethods,
		AllowCredentials: true,
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Accept",
		},
		ExposeHeaders: []string{
			"Content-Disposition",
		},
	}
}
