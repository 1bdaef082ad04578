package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bikefleet/internal/config"
	"bikefleet/internal/delivery/http/handler"
	"bikefleet/internal/graph"
	"bikefleet/internal/infrastructure/database/postgres"
	"bikefleet/internal/logger"
	"bikefleet/internal/metrics"
	"bikefleet/internal/middleware"
	"bikefleet/internal/ratelimit"
	"bikefleet/internal/usecase/control"
	"bikefleet/internal/usecase/discovery"
	"bikefleet/internal/usecase/navigation"
	"bikefleet/internal/weather"
)

// SetupRoutes wires repositories, services and handlers onto a gin engine.
// All mutable cross-request state (rate limiter buckets, metrics) is
// constructed here and injected, never reached through package globals.
func SetupRoutes(cfg *config.Config, db *postgres.DB, roadGraph *graph.Graph, adjuster weather.Adjuster, m *metrics.Metrics) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware(&cfg.CORS))
	router.Use(m.Middleware())
	router.Use(middleware.GeneralRateLimitMiddleware(
		middleware.NewGeneralRateLimiter(cfg.RateLimit.GeneralRPS, cfg.RateLimit.GeneralBurst)))

	router.GET("/health", func(c *gin.Context) {
		if err := db.Health(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unhealthy",
				"message": "Database connection failed",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "Service is running",
		})
	})
	router.GET("/metrics", m.Handler())

	commandRepo := postgres.NewCommandRepository(db)
	ledgerRepo := postgres.NewIdempotencyRepository(db)
	routeRepo := postgres.NewRouteRepository(db)
	telemetryRepo := postgres.NewTelemetryRepository(db)

	deviceLimiter := ratelimit.NewLimiter(cfg.RateLimit.DeviceCapacity, cfg.RateLimit.DeviceRefillPPS)

	controlService := control.NewService(commandRepo, ledgerRepo, db, cfg.Control.Secret, cfg.Control.TokenExpiryS)
	controlHandler := handler.NewControlHandler(controlService, deviceLimiter)

	discoveryService := discovery.NewService(telemetryRepo)
	discoveryHandler := handler.NewDiscoveryHandler(discoveryService)

	navigationService := navigation.NewService(routeRepo, roadGraph, adjuster)
	navigationHandler := handler.NewNavigationHandler(navigationService)

	root := router.Group("")
	{
		controlHandler.RegisterRoutes(root)
		discoveryHandler.RegisterRoutes(root)
		navigationHandler.RegisterRoutes(root)
	}

	logger.Info("All routes initialized")
	return router
}
