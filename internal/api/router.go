package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/sessionlab/identity-system/internal/api/handler"
	"github.com/sessionlab/identity-system/internal/api/middleware"
	"github.com/sessionlab/identity-system/internal/core/ports"
	"github.com/sessionlab/identity-system/internal/core/service"
	httphandlers "github.com/sessionlab/identity-system/internal/infrastructure/http/handlers"
	"github.com/sessionlab/identity-system/internal/infrastructure/repository"
)

// NewRouter builds and returns the Echo instance with all routes registered.
// The document store is constructed once by the composition root and injected
// here; db and rdb are optional readiness dependencies and may be nil when
// the simulator backend is active or Redis is not configured.
func NewRouter(store ports.DocumentStore, db *mongo.Database, rdb *redis.Client, jwtSecret string, tokenTTL time.Duration, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())

	// Router metrics live in a per-instance registry so repeated router
	// construction (tests) never double-registers collectors; the handler
	// still gathers the process-wide default registry alongside it.
	promRegistry := prometheus.NewRegistry()
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "identity",
		Registerer: promRegistry,
	}))

	// --- Dependencies ---
	users := repository.NewStoreUserRepository(store)
	tokens := service.NewTokenService(jwtSecret, tokenTTL)
	authService := service.NewAuthService(users, tokens)
	authHandler := handler.NewAuthHandler(authService)
	apiHandler := handler.NewAPIHandler()

	requireAuth := middleware.Auth(tokens, users)
	optionalAuth := middleware.OptionalAuth(tokens, users)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/federated", authHandler.FederatedLogin)
	e.POST("/auth/validate-token", authHandler.ValidateToken)
	e.POST("/auth/set-password", authHandler.SetPassword, requireAuth)
	e.GET("/auth/profile", authHandler.Profile, requireAuth)

	// --- Resource routes ---
	e.GET("/api/public", apiHandler.Public)
	e.GET("/api/protected", apiHandler.Protected, requireAuth)
	e.GET("/api/user-data", apiHandler.UserData, requireAuth)
	e.GET("/api/admin", apiHandler.Admin, requireAuth)
	e.GET("/api/mixed", apiHandler.Mixed, optionalAuth)

	// --- Health probes and metrics (no auth required) ---
	healthHandler := httphandlers.NewHealthHandler()
	healthDepsHandler := httphandlers.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: prometheus.Gatherers{prometheus.DefaultGatherer, promRegistry},
	}))

	return e
}
