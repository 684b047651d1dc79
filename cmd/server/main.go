package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/snapgate/snapgate/internal/api"
	"github.com/snapgate/snapgate/internal/browser"
	"github.com/snapgate/snapgate/internal/config"
	"github.com/snapgate/snapgate/internal/storage/sql"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	if err := cfg.Validate(); err != nil {
		logger.Fatalf("Invalid configuration: %v", err)
	}

	// Create data directory if needed (for SQLite)
	if cfg.Database.Driver == "sqlite3" {
		if err := os.MkdirAll("data", 0755); err != nil {
			logger.Fatalf("Failed to create data directory: %v", err)
		}
	}

	// Initialize storage
	store, err := sql.New(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		logger.Fatalf("Failed to initialize storage: %v", err)
	}
	defer store.Close()

	// Initialize the shared browser. A failure here is not fatal: the
	// manager retries lazily on the first capture request.
	mgr := browser.NewManager(browser.NewPlaywrightEngine(), logger)
	if err := mgr.EnsureStarted(); err != nil {
		logger.WithError(err).Warn("Browser not started at boot, will retry on first capture")
	}

	// Create router
	router := api.NewRouter(store, mgr, cfg.CORS.AllowedOrigins(), logger)

	// Create HTTP server. The write timeout must cover the 60s navigation
	// timeout plus the maximum 30s capture delay.
	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	logger.Infof("Starting URL Screenshot API on http://%s", cfg.Server.Addr())

	// Start server in goroutine
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout; in-flight captures drain before the
	// browser process is torn down.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	if err := mgr.Shutdown(); err != nil {
		logger.Errorf("Browser shutdown: %v", err)
	}

	logger.Info("Server stopped")
}
