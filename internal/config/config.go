package config

import (
	"os"
	"strconv"

	"pricelist/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Ingest   IngestConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL     string
	Host    string
	Port    int
	User    string
	Name    string
	SSLMode string
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port string
}

// IngestConfig holds spreadsheet ingestion settings
type IngestConfig struct {
	AllowPlaceholderModel bool
	StopAtBlankRow        bool
	MaxUploadBytes        int64
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	dbConfig, err := loadDatabaseConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load database configuration")
	}

	config := &Config{
		Database: *dbConfig,
		Server: ServerConfig{
			Port: getEnvOrDefault("PORT", "8080"),
		},
		Ingest: IngestConfig{
			AllowPlaceholderModel: getEnvBoolOrDefault("INGEST_ALLOW_PLACEHOLDER", false),
			StopAtBlankRow:        getEnvBoolOrDefault("INGEST_STOP_AT_BLANK_ROW", false),
			MaxUploadBytes:        int64(getEnvIntOrDefault("MAX_UPLOAD_MB", 32)) << 20,
		},
	}

	return config, nil
}

func loadDatabaseConfig() (*DatabaseConfig, error) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		return nil, errors.ConfigInvalid("DATABASE_URL is required")
	}

	return &DatabaseConfig{
		URL:     url,
		Host:    getEnvOrDefault("DB_HOST", ""),
		Port:    getEnvIntOrDefault("DB_PORT", 5432),
		User:    getEnvOrDefault("DB_USER", ""),
		Name:    getEnvOrDefault("DB_NAME", ""),
		SSLMode: getEnvOrDefault("SSL_MODE", "disable"),
	}, nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
