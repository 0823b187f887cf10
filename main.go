package main

import (
	"context"
	"log"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/Conceptual-Machines/harmony-api/internal/api"
	"github.com/Conceptual-Machines/harmony-api/internal/config"
	"github.com/Conceptual-Machines/harmony-api/internal/metrics"
	"github.com/Conceptual-Machines/harmony-api/internal/presets"
	"github.com/Conceptual-Machines/harmony-api/internal/services"
	"github.com/Conceptual-Machines/harmony-api/internal/store"
)

const (
	sentryFlushTimeout    = 2 * time.Second
	environmentProduction = "production"
)

// releaseVersion is set via ldflags during build
var releaseVersion = "dev"

// GetVersion returns the current release version
func GetVersion() string {
	return releaseVersion
}

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := config.Load()

	// Initialize Sentry
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.Environment,
			Release:          "harmony-api@" + releaseVersion,
			EnableTracing:    true,
			TracesSampleRate: 1.0,
			EnableLogs:       true,
			Debug:            cfg.Environment != environmentProduction,
			BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
				if event.Request != nil {
					event.Request.Headers = filterSensitiveHeaders(event.Request.Headers)
				}
				return event
			},
		}); err != nil {
			log.Printf("Failed to initialize Sentry: %v", err)
		} else {
			log.Printf("✅ Sentry initialized (environment: %s, release: %s)", cfg.Environment, releaseVersion)
			defer sentry.Flush(sentryFlushTimeout)
		}
	} else {
		log.Println("⚠️  Sentry not configured (SENTRY_DSN not set)")
	}

	catalog, err := presets.LoadWithOverrides(cfg.PresetsFile)
	if err != nil {
		sentry.CaptureException(err)
		log.Fatal("Failed to load presets:", err)
	}
	log.Printf("🎼 Loaded %d presets", len(catalog.List()))

	prom := metrics.NewPrometheus()
	recorder := metrics.Multi{
		prom,
		metrics.NewSentryMetrics(cfg.SentryDSN),
		metrics.NewCloudWatch(context.Background(), cfg.CloudWatchEnabled, cfg.CloudWatchNS, cfg.Environment),
	}

	deps := services.GenerationDeps{Presets: catalog, Metrics: recorder}

	// The run log is optional
	if cfg.HasDatabase() {
		st, err := store.Connect(cfg.DatabaseURL)
		if err != nil {
			sentry.CaptureException(err)
			log.Fatal("Failed to connect to database:", err)
		}
		defer st.Close()
		deps.Runs = st
	} else {
		log.Println("⚠️  Run log disabled (DATABASE_URL not set)")
	}

	genService, err := services.NewGenerationService(services.GenerationConfigFrom(cfg), deps)
	if err != nil {
		sentry.CaptureException(err)
		log.Fatal("Failed to initialize generation service:", err)
	}

	// Set Gin mode
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := api.SetupRouter(cfg, api.Services{
		Generation: genService,
		Theory:     services.NewTheoryService(),
		Recorder:   recorder,
		Prometheus: prom,
	}, GetVersion())

	log.Printf("🚀 Starting server on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		sentry.CaptureException(err)
		log.Fatal("Failed to start server:", err)
	}
}

func filterSensitiveHeaders(headers map[string]string) map[string]string {
	filtered := make(map[string]string)
	sensitiveKeys := map[string]bool{
		"authorization": true,
		"cookie":        true,
		"x-api-key":     true,
	}

	for k, v := range headers {
		if sensitiveKeys[k] {
			filtered[k] = "[REDACTED]"
		} else {
			filtered[k] = v
		}
	}
	return filtered
}
