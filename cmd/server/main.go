package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/stackpad/backend/internal/admin"
	"github.com/stackpad/backend/internal/config"
	"github.com/stackpad/backend/internal/database"
	"github.com/stackpad/backend/internal/graphql"
	"github.com/stackpad/backend/internal/handlers"
	"github.com/stackpad/backend/internal/identity"
	"github.com/stackpad/backend/internal/logging"
	"github.com/stackpad/backend/internal/middleware"
	"github.com/stackpad/backend/internal/routes"
	"github.com/stackpad/backend/internal/services"
)

func main() {
	// Structured logging (JSON to stdout)
	logging.Setup()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}
	if cfg.DBPassword == "" {
		slog.Error("DB_PASSWORD environment variable is required")
		os.Exit(1)
	}

	// Database
	db, err := database.Connect(cfg)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}

	if err := database.Migrate(db); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// PostgreSQL log handler (ERROR+ async batch)
	pgLogHandler := logging.NewPGHandler(db)
	slog.SetDefault(slog.New(logging.NewMultiHandler(
		slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		pgLogHandler,
	)))

	// Log cleanup (30-day retention)
	cleanupDone := make(chan struct{})
	logging.StartCleanup(db, cleanupDone)

	// Services
	userService := services.NewUserService(db)
	itemService := services.NewItemService(db)

	// First superuser provisioning (idempotent)
	if cfg.FirstSuperuser != "" && cfg.FirstSuperuserPassword != "" {
		_, created, err := userService.EnsureFirstSuperuser(cfg.FirstSuperuser, cfg.FirstSuperuserPassword)
		if err != nil {
			slog.Error("first superuser provisioning failed", "error", err)
			os.Exit(1)
		}
		if created {
			slog.Info("first superuser created", "email", cfg.FirstSuperuser)
		}
	}

	if cfg.ItemsAuthDisabled {
		slog.Warn("item routes are running without authentication", "default_owner", cfg.DefaultItemOwnerID)
		if _, err := userService.EnsureDefaultItemOwner(cfg.DefaultItemOwnerID); err != nil {
			slog.Error("default item owner provisioning failed", "error", err)
			os.Exit(1)
		}
	}

	resolver := identity.NewResolver(cfg, userService)

	// Handlers
	loginHandler := handlers.NewLoginHandler(cfg, userService)
	userHandler := handlers.NewUserHandler(userService)
	itemHandler := handlers.NewItemHandler(cfg, itemService)
	healthHandler := handlers.NewHealthHandler(db)
	adminHandler := admin.NewHandler(userService, itemService)

	graphqlHandler, err := graphql.NewHandler(userService, itemService)
	if err != nil {
		slog.Error("graphql schema parse failed", "error", err)
		os.Exit(1)
	}

	// Sentry error tracking
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              dsn,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.Environment,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    4 * 1024 * 1024,
		Views:        admin.NewEngine(),
		ErrorHandler: customErrorHandler,
	})

	// Sentry middleware
	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		return c.Next()
	})

	// Routes
	routes.Setup(app, cfg, resolver, loginHandler, userHandler, itemHandler, healthHandler, graphqlHandler, adminHandler)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port, "auth_mode", cfg.AuthMode.String())
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	close(cleanupDone)
	pgLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	// Close database connections
	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			slog.Error("database close error", "error", err)
		}
	}

	slog.Info("server stopped")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
