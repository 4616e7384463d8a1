// Package config loads runtime configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

type Config struct {
	// Port the HTTP server listens on.
	Port string
	// DatabaseURL is the Postgres connection string.
	DatabaseURL string
	// JWTSecret signs access tokens.
	JWTSecret string
	// TokenTTL is the access token lifetime.
	TokenTTL time.Duration
	// AdminAPIKey guards operator endpoints without a user session.
	AdminAPIKey string
	// CORSOrigin is the allowed origin list, comma separated.
	CORSOrigin string
	// RateFeedURL overrides the central bank feed endpoint.
	RateFeedURL string
	// Debug enables verbose logging and debug routes.
	Debug bool
}

// Load reads .env if present, then the process environment. Missing
// DATABASE_URL or JWT_SECRET is a hard error; everything else has a default.
func Load() (*Config, error) {
	// .env is optional; a missing file is not an error
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getenv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		TokenTTL:    24 * time.Hour,
		AdminAPIKey: os.Getenv("ADMIN_API_KEY"),
		CORSOrigin:  getenv("CORS_ORIGIN", "*"),
		RateFeedURL: os.Getenv("RATE_FEED_URL"),
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	if raw := os.Getenv("TOKEN_TTL_HOURS"); raw != "" {
		hours, err := strconv.Atoi(raw)
		if err != nil || hours <= 0 {
			return nil, errors.Errorf("invalid TOKEN_TTL_HOURS %q", raw)
		}
		cfg.TokenTTL = time.Duration(hours) * time.Hour
	}

	if raw := os.Getenv("DEBUG"); raw != "" {
		debug, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, errors.Errorf("invalid DEBUG %q", raw)
		}
		cfg.Debug = debug
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
