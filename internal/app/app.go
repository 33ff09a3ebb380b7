package app

import (
	"context"
	"fmt"
	"time"

	"ecoms/internal/config"
	"ecoms/internal/handlers"
	"ecoms/internal/metrics"
	"ecoms/internal/middleware"
	"ecoms/internal/repositories"
	"ecoms/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Dependencies are the collaborators the HTTP application is built from.
type Dependencies struct {
	Store     repositories.Store
	Users     repositories.UserRepository
	Publisher services.MessagePublisher
	// Registry receives the service metrics and backs /metrics.
	Registry *prometheus.Registry
	// Ping reports whether the backing database is reachable; nil means always healthy.
	Ping func(ctx context.Context) error
}

// New builds the Fiber application with every route registered under /api/v1.
func New(cfg config.Config, deps Dependencies) *fiber.App {
	if deps.Registry == nil {
		deps.Registry = prometheus.NewRegistry()
	}

	productService := services.NewProductService(deps.Store)
	orderService := services.NewOrderService(deps.Store, deps.Publisher, metrics.NewOrderMetrics(deps.Registry))
	authService := services.NewAuthService(deps.Users, cfg.JWTSecret, cfg.TokenDuration)

	productHandler := handlers.NewProductHandler(productService)
	orderHandler := handlers.NewOrderHandler(orderService)
	authHandler := handlers.NewAuthHandler(authService)
	staff := middleware.AuthRequired(authService)

	app := fiber.New(fiber.Config{AppName: "ecoms"})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} ${method} ${path} ${latency}\n",
	}))

	apiV1 := app.Group("/api/v1")
	authHandler.RegisterRoutes(apiV1, middleware.BootstrapOrAuth(authService))
	productHandler.RegisterRoutes(apiV1, staff)
	orderHandler.RegisterRoutes(apiV1, staff)

	app.Get("/health", healthHandler(deps))
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))

	return app
}

func healthHandler(deps Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		body := fiber.Map{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "up",
			"rabbitmq": "disabled",
		}
		if deps.Publisher != nil {
			body["rabbitmq"] = "connected"
		}
		if deps.Ping != nil {
			ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
			defer cancel()
			if err := deps.Ping(ctx); err != nil {
				body["status"] = "unhealthy"
				body["database"] = err.Error()
				return c.Status(fiber.StatusServiceUnavailable).JSON(body)
			}
		}
		return c.JSON(body)
	}
}

// OpenDatabase connects GORM to the configured SQL database and migrates the schema.
func OpenDatabase(cfg config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.DatabaseDSN)
	case config.DriverSQLite:
		dialector = sqlite.Open(cfg.DatabaseDSN)
	default:
		return nil, fmt.Errorf("driver %q is not a SQL database", cfg.DBDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Warn)})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := repositories.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate database: %w", err)
	}
	return db, nil
}

// PingFunc adapts a GORM connection into a Dependencies.Ping check.
func PingFunc(db *gorm.DB) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}
