package api

import (
	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/lohkna007/BTTF-DATA-PLATFORM/internal/api/handler"
	"github.com/lohkna007/BTTF-DATA-PLATFORM/internal/api/middleware"
	"github.com/lohkna007/BTTF-DATA-PLATFORM/internal/core/ports"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Facts     ports.FactStore
	Pipeline  ports.PipelineService
	Collector ports.CollectorService

	Postgres *sqlx.DB
	Mongo    *mongo.Database
	Redis    *redis.Client

	JWTSecret string
	Log       zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddleware("fuelfacts_http"))

	// --- Dependencies ---
	factsHandler := handler.NewFactsHandler(d.Facts)
	runHandler := handler.NewRunHandler(d.Pipeline, d.Collector)
	authMiddleware := middleware.Auth(d.JWTSecret)

	// --- Fact routes ---
	e.GET("/v1/facts", factsHandler.List)

	// --- Run routes (operators only) ---
	runs := e.Group("/v1", authMiddleware, middleware.RBAC("operator", "admin"))
	runs.POST("/runs", runHandler.Run)
	runs.POST("/collections", runHandler.Collect)

	// --- Observability ---
	e.GET("/metrics", echoprometheus.NewHandler())

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(d.Postgres, d.Mongo, d.Redis)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	return e
}
