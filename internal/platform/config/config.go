package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool

	// NeutralVarianceThreshold is the relative band, in percent, inside which
	// a budget variance is reported neutral.
	NeutralVarianceThreshold float64

	// Forecasting knobs.
	ForecastDecayFactor float64
	ForecastConfidenceZ float64

	// BalanceCacheTTL bounds how stale a cached ledger balance may get.
	BalanceCacheTTL time.Duration

	// VarianceRefreshInterval is how often the background job recomputes
	// variance snapshots for active budgets. Zero disables the job.
	VarianceRefreshInterval time.Duration
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("NEUTRAL_VARIANCE_THRESHOLD", 2.0)
	viper.SetDefault("FORECAST_DECAY_FACTOR", 0.3)
	viper.SetDefault("FORECAST_CONFIDENCE_Z", 1.96)
	viper.SetDefault("BALANCE_CACHE_TTL", "30s")
	viper.SetDefault("VARIANCE_REFRESH_INTERVAL", "0")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")

	cfg.NeutralVarianceThreshold = viper.GetFloat64("NEUTRAL_VARIANCE_THRESHOLD")
	if cfg.NeutralVarianceThreshold < 0 {
		log.Printf("Warning: NEUTRAL_VARIANCE_THRESHOLD must not be negative, got %v. Defaulting to 2.0.\n", cfg.NeutralVarianceThreshold)
		cfg.NeutralVarianceThreshold = 2.0
	}

	cfg.ForecastDecayFactor = viper.GetFloat64("FORECAST_DECAY_FACTOR")
	if cfg.ForecastDecayFactor <= 0 || cfg.ForecastDecayFactor >= 1 {
		log.Printf("Warning: FORECAST_DECAY_FACTOR must be in (0,1), got %v. Defaulting to 0.3.\n", cfg.ForecastDecayFactor)
		cfg.ForecastDecayFactor = 0.3
	}

	cfg.ForecastConfidenceZ = viper.GetFloat64("FORECAST_CONFIDENCE_Z")
	if cfg.ForecastConfidenceZ <= 0 {
		log.Printf("Warning: FORECAST_CONFIDENCE_Z must be positive, got %v. Defaulting to 1.96.\n", cfg.ForecastConfidenceZ)
		cfg.ForecastConfidenceZ = 1.96
	}

	cacheTTLStr := viper.GetString("BALANCE_CACHE_TTL")
	cacheTTL, err := time.ParseDuration(cacheTTLStr)
	if err != nil {
		cacheTTL = 30 * time.Second
		if cacheTTLStr != "" {
			log.Printf("Warning: Invalid value for BALANCE_CACHE_TTL ('%s'). Defaulting to %s.\n", cacheTTLStr, cacheTTL)
		}
	}
	cfg.BalanceCacheTTL = cacheTTL

	refreshStr := viper.GetString("VARIANCE_REFRESH_INTERVAL")
	refreshInterval, err := time.ParseDuration(refreshStr)
	if err != nil {
		if refreshStr != "" && refreshStr != "0" {
			log.Printf("Warning: Invalid value for VARIANCE_REFRESH_INTERVAL ('%s'). Background refresh disabled.\n", refreshStr)
		}
		refreshInterval = 0
	}
	cfg.VarianceRefreshInterval = refreshInterval

	return cfg, nil
}
