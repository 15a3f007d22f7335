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

	// Persistence configuration
	StorageBackend string // "sqlite" or "memory"
	SQLitePath     string

	// Graph traversal limits
	DefaultTraversalDepth int // 0 means unbounded
	MaxSubgraphNodes      int

	// Write contention policy
	ConflictRetryBudget  int
	ConflictRetryBackoff time.Duration

	// Score caching
	ScoreCacheTTL time.Duration

	// Logging and features
	LogLevel   string
	EnableCORS bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerAddress: getEnv("SERVER_ADDRESS", ":8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),

		StorageBackend: getEnv("STORAGE_BACKEND", "sqlite"),
		SQLitePath:     getEnv("SQLITE_PATH", "capsulehub.db"),

		DefaultTraversalDepth: getEnvInt("DEFAULT_TRAVERSAL_DEPTH", 0),
		MaxSubgraphNodes:      getEnvInt("MAX_SUBGRAPH_NODES", 250),

		ConflictRetryBudget:  getEnvInt("CONFLICT_RETRY_BUDGET", 3),
		ConflictRetryBackoff: getEnvDuration("CONFLICT_RETRY_BACKOFF", 10*time.Millisecond),

		ScoreCacheTTL: getEnvDuration("SCORE_CACHE_TTL", 5*time.Minute),

		LogLevel:   getEnv("LOG_LEVEL", "info"),
		EnableCORS: getEnvBool("ENABLE_CORS", true),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	switch c.StorageBackend {
	case "sqlite":
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for the sqlite backend")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q (expected sqlite or memory)", c.StorageBackend)
	}

	if c.ConflictRetryBudget < 1 {
		return fmt.Errorf("CONFLICT_RETRY_BUDGET must be at least 1")
	}
	if c.MaxSubgraphNodes < 1 {
		return fmt.Errorf("MAX_SUBGRAPH_NODES must be at least 1")
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
