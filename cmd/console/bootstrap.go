package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"trading-console/internal/interfaces"
	"trading-console/internal/logger"
	"trading-console/internal/store"
	"trading-console/internal/trace"
	"trading-console/internal/tradelog"
	"trading-console/internal/venue"
	"trading-console/internal/venue/venueobs"

	"github.com/joho/godotenv"
)

// initializeSystem initializes environment, logger and tracer
func initializeSystem() error {
	// Load environment variables
	_ = godotenv.Load()

	// Initialize logger
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	// Initialize tracer
	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}

	return nil
}

// loadConfig loads and returns the configuration
func loadConfig(ctx context.Context) (*store.Config, error) {
	path := os.Getenv("CONSOLE_CONFIG")
	if path == "" {
		path = "config.yaml"
	}
	cfg, err := store.LoadConfig(path)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err)
		return nil, err
	}
	return cfg, nil
}

// compressOldLogs compresses old audit files if retention is configured
func compressOldLogs(ctx context.Context) {
	if v := os.Getenv("TRADER_LOG_RETENTION_DAYS"); v != "" {
		var n int
		fmt.Sscanf(v, "%d", &n)
		if err := tradelog.CompressOlder(n); err != nil {
			logger.Warn(ctx, "Failed to compress old audit logs", "error", err)
		}
	}
}

// initializeExchange builds the REST client with observability middleware
func initializeExchange(ctx context.Context, cfg *store.Config) (interfaces.Exchange, *venue.Client) {
	apiKey := os.Getenv("VENUE_API_KEY")
	apiSecret := os.Getenv("VENUE_API_SECRET")

	client := venue.NewClient(
		venue.WithBaseURL(cfg.Venue.RestURL),
		venue.WithTimeout(time.Duration(cfg.Venue.TimeoutSeconds)*time.Second),
		venue.WithRecvWindow(cfg.Venue.RecvWindowMs),
		venue.WithCredentials(apiKey, apiSecret),
	)

	if client.HasCredentials() {
		logger.Info(ctx, "API credentials loaded, trading commands enabled")
	} else {
		logger.Warn(ctx, "No API credentials set, running read-only (market data commands only)")
	}

	// Wrap with observability middleware
	return venueobs.Wrap(client), client
}
