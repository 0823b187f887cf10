package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the application configuration.
// Every field has a default so the service runs with no environment set.
type Config struct {
	// Environment
	Environment string
	Port        string

	// Observability
	SentryDSN         string // Sentry DSN for error tracking
	CloudWatchEnabled bool   // Publish generation metrics to CloudWatch
	CloudWatchNS      string // CloudWatch namespace

	// Persistence (optional). Empty disables the run log.
	DatabaseURL string

	// Presets file layered over the embedded presets
	PresetsFile string

	// Generation defaults, overridable per request
	BeamWidth      int
	StageBudget    int
	MaxAttempts    int
	BudgetGrowth   int
	MaxLength      int
	RequestTimeout time.Duration

	// Upper bounds for per-request search parameters. The search only checks
	// for cancellation between attempts, so these bound a single attempt.
	BeamWidthLimit    int
	StageBudgetLimit  int
	MaxAttemptsLimit  int
	BudgetGrowthLimit int

	// Number of seeded results kept in memory
	ResultCacheSize int
}

func Load() *Config {
	return &Config{
		Environment:       getEnv("ENVIRONMENT", "development"),
		Port:              getEnv("PORT", "8080"),
		SentryDSN:         getEnv("SENTRY_DSN", ""),
		CloudWatchEnabled: getEnv("CLOUDWATCH_ENABLED", "false") == "true",
		CloudWatchNS:      getEnv("CLOUDWATCH_NAMESPACE", "Harmony/API"),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		PresetsFile:       getEnv("PRESETS_FILE", ""),
		BeamWidth:         getEnvInt("GEN_BEAM_WIDTH", 5),
		StageBudget:       getEnvInt("GEN_STAGE_BUDGET", 50),
		MaxAttempts:       getEnvInt("GEN_MAX_ATTEMPTS", 6),
		BudgetGrowth:      getEnvInt("GEN_BUDGET_GROWTH", 2),
		MaxLength:         getEnvInt("GEN_MAX_LENGTH", 32),
		RequestTimeout:    time.Duration(getEnvInt("GEN_TIMEOUT_SECONDS", 30)) * time.Second,
		BeamWidthLimit:    getEnvInt("GEN_BEAM_WIDTH_LIMIT", 32),
		StageBudgetLimit:  getEnvInt("GEN_STAGE_BUDGET_LIMIT", 500),
		MaxAttemptsLimit:  getEnvInt("GEN_MAX_ATTEMPTS_LIMIT", 10),
		BudgetGrowthLimit: getEnvInt("GEN_BUDGET_GROWTH_LIMIT", 4),
		ResultCacheSize:   getEnvInt("RESULT_CACHE_SIZE", 256),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt falls back to defaultValue when the variable is unset or not an integer.
func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

// IsProduction reports whether the service runs in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// HasDatabase reports whether the run log is configured
func (c *Config) HasDatabase() bool {
	return c.DatabaseURL != ""
}
