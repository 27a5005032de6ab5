package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/pinecove/rental-booking-backend/internal/feedsync"
)

const PROD_STRING = "prod"

// Config holds all application configuration loaded from environment.
type Config struct {
	IsProduction   bool
	ProdOrigins    string
	HTTPAddr       string
	DBDSN          string
	HoldTTL        time.Duration
	ReaperInterval time.Duration
	SyncInterval   time.Duration
	FeedTimeout    time.Duration
	FeedSources    []feedsync.Source
}

// Load loads configuration from .env (optional) and environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		log.Printf("failed to load .env file: %v", err)
	}

	cfg := &Config{}

	// Production origin (default: empty)
	cfg.ProdOrigins = getEnv("PROD_ORIGINS", "")

	// Application environment (default: dev)
	appEnvStr := getEnv("APP_ENV", "dev")
	cfg.IsProduction = appEnvStr == PROD_STRING

	// HTTP listen address (default: :8080)
	cfg.HTTPAddr = getEnv("HTTP_ADDR", ":8080")

	// Database DSN is required
	cfg.DBDSN = os.Getenv("DB_DSN")
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required")
	}

	// Hold TTL matches the expected checkout duration.
	cfg.HoldTTL, err = getEnvAsDuration("HOLD_TTL", 15*time.Minute)
	if err != nil {
		return nil, err
	}

	// How often the reaper sweeps expired holds.
	cfg.ReaperInterval, err = getEnvAsDuration("REAPER_INTERVAL", time.Minute)
	if err != nil {
		return nil, err
	}

	// How often external calendar feeds are reconciled.
	cfg.SyncInterval, err = getEnvAsDuration("SYNC_INTERVAL", 30*time.Minute)
	if err != nil {
		return nil, err
	}

	// Per-source fetch timeout; one slow feed must not block the rest.
	cfg.FeedTimeout, err = getEnvAsDuration("FEED_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	// External calendar feeds, e.g.
	// FEED_SOURCES="airbnb=https://example.com/a.ics,vrbo=https://example.com/v.ics"
	cfg.FeedSources, err = parseFeedSources(getEnv("FEED_SOURCES", ""))
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func parseFeedSources(raw string) ([]feedsync.Source, error) {
	if raw == "" {
		return nil, nil
	}

	var sources []feedsync.Source
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, url, ok := strings.Cut(part, "=")
		if !ok || name == "" || url == "" {
			return nil, fmt.Errorf("invalid FEED_SOURCES entry %q, expected name=url", part)
		}
		sources = append(sources, feedsync.Source{Name: name, URL: url})
	}
	return sources, nil
}

// getEnv returns the value of the environment variable if set,
// otherwise returns the provided default value.
func getEnv(key, defaultValue string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return defaultValue
}

// getEnvAsDuration parses an environment variable as a time.Duration
// (e.g. "15m", "1h"). It returns the default when the variable is not
// set and an error when it is set but malformed.
func getEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultValue, nil
	}

	d, err := time.ParseDuration(valStr)
	if err != nil {
		return 0, fmt.Errorf("env %s value %q is not a valid duration: %w", key, valStr, err)
	}
	return d, nil
}
