// internal/infrastructure/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// App
	AppVersion string
	Debug      bool

	// Airtrail flight log API
	AirtrailBaseURL string
	AirtrailAPIKey  string
	HTTPTimeout     time.Duration

	// Flightera scraping
	FlighteraBaseURL string
	RenderTimeout    time.Duration
	RenderSettleWait time.Duration

	// MongoDB failure report sink (empty URI disables it)
	MongoURI string
	MongoDB  string

	// Aircraft type reference data (empty DSN disables enrichment)
	PostgresDSN string

	// Metrics push (empty URL disables it)
	PushgatewayURL string
	MetricsJob     string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	// Set defaults and override with env vars
	config := &Config{
		AppVersion: getEnv("APP_VERSION", "1.0.0"),
		Debug:      getEnvAsBool("DEBUG", false),

		AirtrailBaseURL: getEnv("AIRTRAIL_BASE_URL", ""),
		AirtrailAPIKey:  getEnv("AIRTRAIL_API_KEY", ""),
		HTTPTimeout:     time.Duration(getEnvAsInt("HTTP_TIMEOUT", 30)) * time.Second,

		FlighteraBaseURL: getEnv("FLIGHTERA_BASE_URL", "https://www.flightera.net"),
		RenderTimeout:    time.Duration(getEnvAsInt("RENDER_TIMEOUT", 60)) * time.Second,
		RenderSettleWait: time.Duration(getEnvAsInt("RENDER_SETTLE_WAIT", 5)) * time.Second,

		MongoURI: getEnv("MONGODB_DSN", ""),
		MongoDB:  getEnv("MONGO_DB", "airtrail"),

		PostgresDSN: getEnv("POSTGRES_DSN", ""),

		PushgatewayURL: getEnv("METRICS_PUSHGATEWAY", ""),
		MetricsJob:     getEnv("METRICS_JOB", "airtrail-sync"),
	}

	if config.AirtrailAPIKey == "" {
		return nil, fmt.Errorf("AIRTRAIL_API_KEY not found")
	}
	if config.AirtrailBaseURL == "" {
		return nil, fmt.Errorf("AIRTRAIL_BASE_URL not found")
	}

	return config, nil
}

// Helper functions to get environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
