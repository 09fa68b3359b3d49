package server

import (
	"errors"
	"io"
	"os"
	"time"

	_ "catalog/docs" // registers the OpenAPI document with swag
	"catalog/internal/config"
	"catalog/internal/handlers"
	"catalog/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"github.com/rs/zerolog"
)

// HealthChecker reports whether a dependency is reachable.
type HealthChecker func() error

// Options carries the collaborators the app is built from.
type Options struct {
	Config         *config.Config
	ProductHandler *handlers.ProductHandler
	Log            zerolog.Logger
	// DatabaseHealth is optional; without it /health reports the database as "n/a".
	DatabaseHealth HealthChecker
	// SchemaGuard runs before every product request until it succeeds once.
	// A failure is logged and the request continues.
	SchemaGuard HealthChecker
	// AccessLog receives one line per request. Defaults to stdout.
	AccessLog io.Writer
}

// New builds the fiber app: CORS gate, access log, product routes, API docs
// and health check.
func New(opts Options) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "catalog",
		ErrorHandler: errorHandler(opts.Log),
	})

	accessLog := opts.AccessLog
	if accessLog == nil {
		accessLog = os.Stdout
	}

	app.Use(recover.New())
	app.Use(middleware.SingleOriginCORS(opts.Config.FrontendURL))
	app.Use(logger.New(logger.Config{
		Format:     "${method} ${path} ${status} ${latency} - ${bytesSent}\n",
		TimeFormat: time.RFC3339,
		Output:     accessLog,
	}))

	products := app.Group("/api/products")
	if opts.SchemaGuard != nil {
		products.Use(schemaGuard(opts.SchemaGuard, opts.Log))
	}
	registerProductRoutes(products, opts.ProductHandler)

	app.Get("/docs", func(c *fiber.Ctx) error {
		return c.Redirect("/docs/index.html", fiber.StatusMovedPermanently)
	})
	app.Get("/docs/*", swagger.New(swagger.Config{
		Title: "Products REST API",
	}))

	app.Get("/health", healthHandler(opts.DatabaseHealth))

	return app
}

func schemaGuard(ensure HealthChecker, log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := ensure(); err != nil {
			log.Warn().Err(err).Msg("database schema not ready")
		}
		return c.Next()
	}
}

func healthHandler(database HealthChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		state, dbStatus := "healthy", "n/a"
		code := fiber.StatusOK
		if database != nil {
			dbStatus = "connected"
			if err := database(); err != nil {
				state, dbStatus = "degraded", "unavailable"
				code = fiber.StatusServiceUnavailable
			}
		}
		return c.Status(code).JSON(fiber.Map{
			"status":   state,
			"time":     time.Now().Format(time.RFC3339),
			"database": dbStatus,
		})
	}
}

// errorHandler renders errors that escaped a handler as {"error": "..."}.
func errorHandler(log zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal Server Error"

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			message = fe.Message
		}

		if code >= fiber.StatusInternalServerError {
			log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("request failed")
		}

		return c.Status(code).JSON(handlers.ErrorResponse{Error: message})
	}
}
