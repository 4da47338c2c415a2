package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Addr                string
	DatabaseURL         string
	JWTSecret           string
	TokenTTL            time.Duration
	DataEncryptionKey   string
	Environment         string
	TaxServiceURL       string
	TaxServiceTimeout   time.Duration
	RunMigrations       bool
	MaxBodyBytes        int64
	RateLimitPerMinute  int
	MetricsEnabled      bool
	CORSOrigins         []string
	MaintenanceInterval time.Duration
	SeedUserEmail       string
	SeedUserName        string
	SeedUserPassword    string
}

func Load() Config {
	return Config{
		Addr:                getEnv("APP_ADDR", ":8080"),
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		JWTSecret:           getEnv("JWT_SECRET", ""),
		TokenTTL:            getEnvDuration("TOKEN_TTL", 12*time.Hour),
		DataEncryptionKey:   getEnv("DATA_ENCRYPTION_KEY", ""),
		Environment:         getEnv("APP_ENV", "development"),
		TaxServiceURL:       getEnv("TAX_SERVICE_URL", ""),
		TaxServiceTimeout:   getEnvDuration("TAX_SERVICE_TIMEOUT", 10*time.Second),
		RunMigrations:       getEnvBool("RUN_MIGRATIONS", true),
		MaxBodyBytes:        int64(getEnvInt("MAX_BODY_BYTES", 1048576)),
		RateLimitPerMinute:  getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
		MetricsEnabled:      getEnvBool("METRICS_ENABLED", true),
		CORSOrigins:         getEnvList("CORS_ORIGINS", []string{"*"}),
		MaintenanceInterval: getEnvDuration("MAINTENANCE_INTERVAL", time.Hour),
		SeedUserEmail:       getEnv("SEED_USER_EMAIL", ""),
		SeedUserName:        getEnv("SEED_USER_NAME", ""),
		SeedUserPassword:    getEnv("SEED_USER_PASSWORD", ""),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if strings.TrimSpace(c.TaxServiceURL) == "" {
		return fmt.Errorf("TAX_SERVICE_URL is required")
	}
	if c.Environment == "production" {
		if strings.TrimSpace(c.JWTSecret) == "" {
			return fmt.Errorf("JWT_SECRET must be set to a strong value in production")
		}
		if strings.TrimSpace(c.DataEncryptionKey) == "" {
			return fmt.Errorf("DATA_ENCRYPTION_KEY must be set in production for encryption at rest")
		}
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	return nil
}
