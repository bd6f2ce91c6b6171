// Package main is the entry point for the job board API server.
//
// main stays small: load configuration, build a logger, hand both to
// server.New and block in Start. Everything else lives under internal/.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/sakif/jobboard/internal/config"
	"github.com/sakif/jobboard/internal/server"
)

func main() {
	// === 1. CONFIGURATION ===
	// Environment variables, optionally seeded from a .env file.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// === 2. LOGGING ===
	// Text for humans in development, JSON for log shippers in production.
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	var logHandler slog.Handler = slog.NewTextHandler(os.Stdout, opts)
	if cfg.Production {
		logHandler = slog.NewJSONHandler(os.Stdout, opts)
	}
	logger := slog.New(logHandler)
	slog.SetDefault(logger)

	if cfg.UsesDefaultSecret() {
		logger.Warn("SESSION_SECRET not set, using the development secret; sessions will not survive a secret change")
	}

	// === 3. BUILD AND START ===
	// Startup (migrations, AWS credential lookup) gets a bounded context.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	srv, err := server.New(ctx, *cfg, logger)
	cancel()
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start blocks until SIGINT or SIGTERM.
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
