package container

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/jordanlanch/leadgrid/config"
	"github.com/jordanlanch/leadgrid/pkg/api/handlers"
	"github.com/jordanlanch/leadgrid/pkg/cache"
	"github.com/jordanlanch/leadgrid/pkg/database"
	"github.com/jordanlanch/leadgrid/pkg/export"
	"github.com/jordanlanch/leadgrid/pkg/leads"
	"github.com/jordanlanch/leadgrid/pkg/logger"
	"github.com/jordanlanch/leadgrid/pkg/metrics"
	"github.com/jordanlanch/leadgrid/pkg/middleware"
	"github.com/jordanlanch/leadgrid/pkg/views"
)

// Container holds all application dependencies
type Container struct {
	Config *config.Config
	Logger logger.Logger

	// Infrastructure
	DB       *database.Client
	Cache    *cache.Client // nil when Redis is not configured or unreachable
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics

	// Services
	LeadService   *leads.Service
	ViewService   *views.Service
	ExportService *export.Service

	// Handlers
	LeadHandler   *handlers.LeadHandler
	ViewHandler   *handlers.ViewHandler
	ExportHandler *handlers.ExportHandler
	PhoneHandler  *handlers.PhoneHandler
}

// Option configures a Container
type Option func(*Container)

// WithLogger replaces the logger built from the configured level
func WithLogger(l logger.Logger) Option {
	return func(c *Container) {
		c.Logger = l
	}
}

// WithDB uses an already opened database instead of DATABASE_URL
func WithDB(db *database.Client) Option {
	return func(c *Container) {
		c.DB = db
	}
}

// WithCache uses an already connected cache instead of REDIS_URL
func WithCache(cacheClient *cache.Client) Option {
	return func(c *Container) {
		c.Cache = cacheClient
	}
}

// New creates and initializes all application dependencies. The schema is
// migrated before any service is built.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Container, error) {
	c := &Container{
		Config: cfg,
		Logger: logger.New(cfg.LogLevel),
	}
	for _, opt := range opts {
		opt(c)
	}

	if err := c.initInfrastructure(ctx); err != nil {
		return nil, err
	}
	if err := c.initServices(ctx); err != nil {
		c.Close()
		return nil, err
	}
	c.initHandlers()

	c.Logger.Info("Container initialized successfully",
		"environment", cfg.APIEnvironment,
		"database", c.DB.Dialect(),
		"cache", c.Cache != nil,
		"storage", cfg.StorageType)

	return c, nil
}

// initInfrastructure initializes database, cache and metrics
func (c *Container) initInfrastructure(ctx context.Context) error {
	if c.DB == nil {
		db, err := database.NewClientWithSSL(c.Config.DatabaseURL, &database.SSLConfig{
			Mode:         c.Config.DBSSLMode,
			CertPath:     c.Config.DBSSLCertPath,
			KeyPath:      c.Config.DBSSLKeyPath,
			RootCertPath: c.Config.DBSSLRootCertPath,
		})
		if err != nil {
			c.Logger.Error("Failed to connect to database", "error", err)
			return err
		}
		c.DB = db
	}

	if err := c.DB.Migrate(ctx); err != nil {
		c.Logger.Error("Failed to migrate database", "error", err)
		c.DB.Close()
		return err
	}

	// The list cache is optional; the API serves from the database without it
	if c.Cache == nil && c.Config.RedisURL != "" {
		cacheClient, err := cache.NewClient(c.Config.RedisURL)
		if err != nil {
			c.Logger.Warn("Redis unavailable, list cache disabled", "error", err)
		} else {
			c.Cache = cacheClient
		}
	}

	c.Registry = prometheus.NewRegistry()
	c.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	c.Metrics = metrics.New(c.Registry)

	c.Logger.Info("Infrastructure initialized",
		"database", "connected",
		"cache", c.Cache != nil)

	return nil
}

// initServices initializes all domain services
func (c *Container) initServices(ctx context.Context) error {
	c.LeadService = leads.NewService(c.DB, c.Cache,
		leads.WithCacheTTL(time.Duration(c.Config.LeadsCacheTTLSeconds)*time.Second),
		leads.WithLogger(c.Logger),
		leads.WithMetrics(c.Metrics),
	)

	c.ViewService = views.NewService(c.DB,
		views.WithLogger(c.Logger),
		views.WithMetrics(c.Metrics),
	)

	exportOpts := []export.Option{
		export.WithMaxRows(c.Config.ExportMaxRows),
		export.WithLogger(c.Logger),
		export.WithMetrics(c.Metrics),
	}
	if c.Config.StorageType == config.StorageS3 {
		storage, err := export.NewS3Storage(ctx, export.S3Config{
			AWSAccessKeyID:     c.Config.AWSAccessKeyID,
			AWSSecretAccessKey: c.Config.AWSSecretAccessKey,
			AWSRegion:          c.Config.AWSRegion,
			Bucket:             c.Config.S3Bucket,
			URLTTL:             time.Duration(c.Config.ExportURLTTLMinutes) * time.Minute,
		})
		if err != nil {
			c.Logger.Error("Failed to initialize export storage", "error", err)
			return err
		}
		exportOpts = append(exportOpts, export.WithStorage(storage))
	}
	c.ExportService = export.NewService(c.LeadService, exportOpts...)

	return nil
}

// initHandlers initializes all HTTP handlers
func (c *Container) initHandlers() {
	c.LeadHandler = handlers.NewLeadHandler(c.LeadService, c.Logger)
	c.ViewHandler = handlers.NewViewHandler(c.ViewService)
	c.ExportHandler = handlers.NewExportHandler(c.ExportService, c.Logger)
	c.PhoneHandler = handlers.NewPhoneHandler()
}

// RegisterRoutes mounts the /api routes on e. Every /api request runs as
// the configured user.
func (c *Container) RegisterRoutes(e *echo.Echo) *echo.Group {
	api := e.Group("/api", middleware.FixedIdentity(c.Config.CurrentUserID))

	leadsGroup := api.Group("/leads")
	c.LeadHandler.RegisterRoutes(leadsGroup)
	c.ExportHandler.RegisterRoutes(leadsGroup)
	c.PhoneHandler.RegisterRoutes(leadsGroup)

	c.ViewHandler.RegisterRoutes(api.Group("/views"))

	return api
}

// Health reports the status of the database and, when configured, the cache
func (c *Container) Health(ctx context.Context) map[string]string {
	status := map[string]string{"database": "up", "cache": "disabled"}
	if err := c.DB.Ping(ctx); err != nil {
		status["database"] = "down"
	}
	c.Metrics.UpdateDBConnections(float64(c.DB.Stats().OpenConnections))
	if c.Cache != nil {
		status["cache"] = "up"
		if err := c.Cache.Ping(ctx); err != nil {
			status["cache"] = "down"
		}
	}
	return status
}

// Close releases the database and cache connections
func (c *Container) Close() {
	if c.Cache != nil {
		if err := c.Cache.Close(); err != nil {
			c.Logger.Warn("Failed to close cache", "error", err)
		}
	}
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			c.Logger.Warn("Failed to close database", "error", err)
		}
	}
}
