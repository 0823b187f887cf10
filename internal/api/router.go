package api

import (
	"github.com/gin-gonic/gin"

	"github.com/Conceptual-Machines/harmony-api/internal/api/handlers"
	apimiddleware "github.com/Conceptual-Machines/harmony-api/internal/api/middleware"
	"github.com/Conceptual-Machines/harmony-api/internal/config"
	"github.com/Conceptual-Machines/harmony-api/internal/metrics"
	"github.com/Conceptual-Machines/harmony-api/internal/services"
)

// Services are the collaborators the router wires into handlers
type Services struct {
	Generation *services.GenerationService
	Theory     *services.TheoryService
	Recorder   metrics.Recorder
	Prometheus *metrics.Prometheus
}

func SetupRouter(cfg *config.Config, svc Services, version string) *gin.Engine {
	router := gin.New()

	// Recovery middleware (must be first)
	router.Use(apimiddleware.RecoverWithSentry())

	// Sentry middleware for error tracking
	router.Use(apimiddleware.SentryMiddleware())

	// Request tracking and structured logging
	router.Use(apimiddleware.RequestTracking(svc.Recorder))

	// CORS middleware
	router.Use(apimiddleware.CORS())

	// Health check
	healthHandler := handlers.NewHealthHandler(len(svc.Generation.Presets()), cfg.HasDatabase())
	router.GET("/health", healthHandler.HealthCheck)

	// Metrics endpoints
	metricsHandler := handlers.NewMetricsHandler(version)
	router.GET("/api/metrics", metricsHandler.GetMetrics)
	if svc.Prometheus != nil {
		router.GET("/metrics", gin.WrapH(svc.Prometheus.Handler()))
	}

	v1 := router.Group("/api/v1")
	{
		generationHandler := handlers.NewGenerationHandler(svc.Generation)
		v1.POST("/generate", generationHandler.Generate)
		v1.GET("/presets", generationHandler.ListPresets)
		v1.GET("/runs/stats", generationHandler.RunStats)

		theoryHandler := handlers.NewTheoryHandler(svc.Theory)
		theory := v1.Group("/theory")
		theory.POST("/chord", theoryHandler.Chord)
		theory.POST("/chord_in_mode", theoryHandler.ChordInMode)
		theory.POST("/mode_in_key", theoryHandler.ModeInKey)
		theory.POST("/chord_in_key", theoryHandler.ChordInKey)
	}

	return router
}
