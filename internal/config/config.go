// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ServerConfig holds all server-related settings
type ServerConfig struct {
	Port           int
	Host           string
	MetricsEnabled bool
}

// DatabaseConfig holds database configuration settings
type DatabaseConfig struct {
	Type string // "mongo", "postgres" or "memory"
	URI  string
}

// Config holds the complete application configuration
type Config struct {
	Server          *ServerConfig
	Database        *DatabaseConfig
	JWTSecret       string
	PresenceTimeout time.Duration
	AllowedOrigins  []string
	Debug           bool
}

// DefaultConfig provides default server settings
func DefaultConfig() *ServerConfig {
	return &ServerConfig{
		Port:           8080,
		Host:           "0.0.0.0",
		MetricsEnabled: true,
	}
}

// DefaultPresenceTimeout is the presence decay window used when
// PRESENCE_TIMEOUT_MINUTES is unset or unparsable.
const DefaultPresenceTimeout = 5 * time.Minute

// LoadConfig loads configuration from environment variables and applies defaults
func LoadConfig() (*Config, error) {
	// Try to load .env file from multiple possible locations
	envLocations := []string{
		".env",       // Current directory
		"../../.env", // Project root when running from cmd/engine
	}

	envLoaded := false
	for _, location := range envLocations {
		if err := godotenv.Load(location); err == nil {
			envLoaded = true
			break
		}
	}

	if !envLoaded {
		// Silent failure if no .env exists, which is fine
		_ = godotenv.Load()
	}

	// Start with default server config
	serverConfig := DefaultConfig()

	// Override server settings from environment if provided
	if portStr := os.Getenv("PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil {
			serverConfig.Port = port
		}
	}

	if host := os.Getenv("HOST"); host != "" {
		serverConfig.Host = host
	}

	if metricsEnabled := os.Getenv("METRICS_ENABLED"); metricsEnabled != "" {
		serverConfig.MetricsEnabled = metricsEnabled == "true"
	}

	// Initialize database config
	dbConfig := &DatabaseConfig{Type: "mongo"}

	if dbType := os.Getenv("DB_TYPE"); dbType != "" {
		dbConfig.Type = dbType
	}

	switch dbConfig.Type {
	case "mongo":
		dbConfig.URI = getEnvOrDefault("MONGODB_URI", "mongodb://localhost:27017")
	case "postgres":
		dbConfig.URI = os.Getenv("DATABASE_URL")
		if dbConfig.URI == "" {
			return nil, fmt.Errorf("DATABASE_URL environment variable is required when DB_TYPE is postgres")
		}
	case "memory":
		// No URI needed; used for local development and tests.
	default:
		return nil, fmt.Errorf("unsupported DB_TYPE: %s", dbConfig.Type)
	}

	config := &Config{
		Server:          serverConfig,
		Database:        dbConfig,
		JWTSecret:       getEnvOrDefault("JWT_SECRET", "swapmeet_secret_change_me"),
		PresenceTimeout: loadPresenceTimeout(),
		AllowedOrigins:  []string{"*"}, // Default to allow all origins
		Debug:           false,
	}

	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		config.AllowedOrigins = strings.Split(origins, ",")
	}

	if debug := os.Getenv("DEBUG"); debug == "true" {
		config.Debug = true
	}

	return config, nil
}

// loadPresenceTimeout reads PRESENCE_TIMEOUT_MINUTES. Anything that is not
// a positive number falls back to the default window.
func loadPresenceTimeout() time.Duration {
	raw := os.Getenv("PRESENCE_TIMEOUT_MINUTES")
	if raw == "" {
		return DefaultPresenceTimeout
	}
	minutes, err := strconv.Atoi(raw)
	if err != nil || minutes <= 0 {
		return DefaultPresenceTimeout
	}
	return time.Duration(minutes) * time.Minute
}

// Helper function to get environment variable with default fallback
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
