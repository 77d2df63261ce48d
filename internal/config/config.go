package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go-leave/internal/shared/connection"
)

type Config struct {
	AppEnv      string
	Port        string
	Postgres    connection.PostgresConfig
	DBRetries   int
	RedisAddr   string
	RedisPass   string
	JWTSecret   string
	TokenTTL    time.Duration
	CORSOrigins []string
	AutoMigrate bool
	SeedUsers   bool
}

// Load reads configuration from the environment. Callers are expected to
// have loaded .env beforehand (godotenv in cmd/api).
func Load() (*Config, error) {
	cfg := &Config{
		AppEnv: getEnv("APP_ENV", "development"),
		Port:   getEnv("PORT", "3000"),
		Postgres: connection.PostgresConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "leave"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		RedisAddr:   getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPass:   getEnv("REDIS_PASSWORD", ""),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		CORSOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173")),
	}

	var err error
	if cfg.DBRetries, err = strconv.Atoi(getEnv("DB_MAX_RETRIES", "5")); err != nil {
		return nil, fmt.Errorf("DB_MAX_RETRIES: %w", err)
	}
	if cfg.TokenTTL, err = time.ParseDuration(getEnv("TOKEN_TTL", "24h")); err != nil {
		return nil, fmt.Errorf("TOKEN_TTL: %w", err)
	}
	if cfg.AutoMigrate, err = strconv.ParseBool(getEnv("AUTO_MIGRATE", "true")); err != nil {
		return nil, fmt.Errorf("AUTO_MIGRATE: %w", err)
	}
	if cfg.SeedUsers, err = strconv.ParseBool(getEnv("SEED_USERS", "false")); err != nil {
		return nil, fmt.Errorf("SEED_USERS: %w", err)
	}

	if cfg.JWTSecret == "" {
		if cfg.IsProduction() {
			return nil, fmt.Errorf("JWT_SECRET is required in production")
		}
		cfg.JWTSecret = "dev-secret-change-me"
	}
	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
