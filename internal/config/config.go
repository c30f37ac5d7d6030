package config

import (
	"fmt"
	"os"
	"strconv"
)

// B2Config holds Backblaze B2 account and bucket settings.
// KeyID/AppKey are the long-lived application key pair; they are only ever
// used to derive a Basic-auth header and must never be logged in full.
type B2Config struct {
	KeyID        string
	AppKey       string
	BucketID     string
	BucketName   string
	CustomDomain string // optional; replaces the native download URL shape
	PathPrefix   string // optional; prepended to every storage key
}

// DatabaseConfig holds PostgreSQL settings for the optional upload history.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost     string
	Port        string
	Environment string
	B2          B2Config
	Database    DatabaseConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost:     getEnv("APP_HOST", "localhost:8080"),
		Port:        getEnv("PORT", "8080"), // default only for non-sensitive value
		Environment: getEnv("APP_ENV", "production"),
		B2: B2Config{
			KeyID:        getEnv("B2_KEY_ID", ""),
			AppKey:       getEnv("B2_APP_KEY", ""),
			BucketID:     getEnv("B2_BUCKET_ID", ""),
			BucketName:   getEnv("B2_BUCKET_NAME", ""),
			CustomDomain: getEnv("B2_CUSTOM_DOMAIN", ""),
			PathPrefix:   getEnv("B2_PATH_PREFIX", ""),
		},
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
	}
}

// Validate checks required B2 fields. It runs before any network call so a
// missing credential fails fast instead of surfacing as a remote 401.
func (c B2Config) Validate() error {
	switch {
	case c.KeyID == "":
		return fmt.Errorf("b2 config: B2_KEY_ID is required")
	case c.AppKey == "":
		return fmt.Errorf("b2 config: B2_APP_KEY is required")
	case c.BucketID == "":
		return fmt.Errorf("b2 config: B2_BUCKET_ID is required")
	case c.BucketName == "":
		return fmt.Errorf("b2 config: B2_BUCKET_NAME is required")
	}
	return nil
}

// HistoryEnabled reports whether the optional upload-history database is configured.
func (c *AppConfig) HistoryEnabled() bool {
	return c.Database.Host != ""
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}
