package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string
	Environment   string
	LogLevel      string

	// Upstream base URLs, overridable for tests and proxies
	RolimonsBaseURL         string
	RobloxUsersBaseURL      string
	RobloxEconomyBaseURL    string
	RobloxThumbnailsBaseURL string

	// Catalog cache
	CatalogFreshness time.Duration

	// Outbound HTTP
	UpstreamTimeout time.Duration

	// AWS configuration (Lambda deployment)
	AWSRegion      string
	RateLimitTable string

	// Rate limiting
	RateLimitPerMinute int

	// Portfolio (local server only; empty disables the portfolio routes)
	PortfolioFile string

	// Feature flags
	EnableCORS    bool
	EnableTracing bool
	EnableMetrics bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerAddress: getEnv("SERVER_ADDRESS", ":8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),

		RolimonsBaseURL:         getEnv("ROLIMONS_BASE_URL", ""),
		RobloxUsersBaseURL:      getEnv("ROBLOX_USERS_BASE_URL", ""),
		RobloxEconomyBaseURL:    getEnv("ROBLOX_ECONOMY_BASE_URL", ""),
		RobloxThumbnailsBaseURL: getEnv("ROBLOX_THUMBNAILS_BASE_URL", ""),

		CatalogFreshness: getEnvDuration("CATALOG_FRESHNESS", 5*time.Minute),
		UpstreamTimeout:  getEnvDuration("UPSTREAM_TIMEOUT", 15*time.Second),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		RateLimitTable: getEnv("RATE_LIMIT_TABLE", ""),

		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 60),

		PortfolioFile: getEnv("PORTFOLIO_FILE", ""),

		EnableCORS:    getEnvBool("ENABLE_CORS", true),
		EnableTracing: getEnvBool("ENABLE_TRACING", false),
		EnableMetrics: getEnvBool("ENABLE_METRICS", false),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	if c.CatalogFreshness <= 0 {
		return fmt.Errorf("CATALOG_FRESHNESS must be positive")
	}
	if c.Environment == "production" && c.EnableMetrics && c.AWSRegion == "" {
		return fmt.Errorf("AWS_REGION is required when metrics are enabled")
	}
	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration gets a duration environment variable with a default value
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
