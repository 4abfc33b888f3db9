package main

// @title LeadGrid API
// @version 1.0
// @description Leads grid backend: filtered paging, bulk edits and saved views.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:5174
// @BasePath /api

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jordanlanch/leadgrid/config"
	apierrors "github.com/jordanlanch/leadgrid/pkg/api/errors"
	"github.com/jordanlanch/leadgrid/pkg/container"
	custommiddleware "github.com/jordanlanch/leadgrid/pkg/middleware"
	"github.com/jordanlanch/leadgrid/pkg/testdata"
)

const version = "0.1.0"

func main() {
	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}
	log.Printf("🔧 Configuration loaded (environment: %s)", cfg.APIEnvironment)

	// Initialize Sentry for error tracking
	if cfg.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.SentryEnvironment,
			Release:          "leadgrid@" + version,
			TracesSampleRate: 0.2,
			AttachStacktrace: true,
		})
		if err != nil {
			log.Printf("⚠️  Failed to initialize Sentry: %v", err)
		} else {
			log.Printf("✅ Sentry initialized (environment: %s)", cfg.SentryEnvironment)
			defer sentry.Flush(2 * time.Second)
		}
	} else {
		log.Printf("ℹ️  Sentry disabled (no DSN configured)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := container.New(ctx, cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize application: %v", err)
	}
	defer app.Close()

	if cfg.SeedOnEmpty {
		seeded, err := testdata.SeedIfEmpty(ctx, app.DB, testdata.LeadGeneratorConfig{Count: cfg.SeedCount})
		if err != nil {
			log.Fatalf("❌ Failed to seed leads: %v", err)
		}
		if seeded > 0 {
			log.Printf("🌱 Seeded %d leads", seeded)
		}
	}

	// Initialize Echo
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = apierrors.HTTPErrorHandler

	rateLimiter := custommiddleware.NewRateLimiter(cfg.RateLimitRequestsPerMinute, cfg.RateLimitBurst)
	go rateLimiter.Run(ctx, 5*time.Minute)

	// Global middleware
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Printf("[%s] %s - Status: %d (%s)", c.Request().Method, v.URI, v.Status, v.RequestID)
			return nil
		},
	}))
	e.Use(middleware.Recover())

	// Sentry error tracking middleware (if configured)
	if cfg.SentryDSN != "" {
		e.Use(sentryecho.New(sentryecho.Options{
			Repanic: true,
		}))
	}

	e.Use(app.Metrics.Middleware())
	e.Use(middleware.CORSWithConfig(custommiddleware.CORSConfig(cfg.CORSAllowedOrigins)))
	e.Use(middleware.Gzip())
	e.Use(custommiddleware.SecurityHeaders(custommiddleware.DefaultSecurityHeadersConfig()))
	e.Use(rateLimiter.RateLimitMiddleware())

	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{
			"name":        "LeadGrid API",
			"version":     version,
			"status":      "running",
			"environment": cfg.APIEnvironment,
			"timestamp":   time.Now().Unix(),
		})
	})

	e.GET("/health", func(c echo.Context) error {
		hctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()

		status := app.Health(hctx)
		code := http.StatusOK
		if status["database"] != "up" || status["cache"] == "down" {
			code = http.StatusServiceUnavailable
		}

		return c.JSON(code, map[string]any{
			"status":   http.StatusText(code),
			"database": status["database"],
			"cache":    status["cache"],
		})
	})

	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(app.Registry, promhttp.HandlerOpts{})))

	app.RegisterRoutes(e)

	address := cfg.Address()
	log.Printf("🚀 LeadGrid API starting on %s", address)
	log.Printf("📝 Log level: %s", cfg.LogLevel)
	log.Printf("🌍 CORS: %v", cfg.CORSAllowedOrigins)
	log.Printf("🛡️  Rate limiting: %d req/min (burst: %d)", cfg.RateLimitRequestsPerMinute, cfg.RateLimitBurst)
	log.Printf("📦 Export storage: %s (max %d rows)", cfg.StorageType, cfg.ExportMaxRows)

	// Graceful shutdown
	go func() {
		if err := e.Start(address); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("🛑 Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("❌ Server forced to shutdown: %v", err)
		return
	}

	log.Println("✅ Server gracefully stopped")
}
