// Studio server
//
// Features:
// - ZIP archive ingestion into an immutable metadata store
// - Virtual file tree workspaces with live editing operations
// - Entry point detection, heuristic issue scanning, execution bundling
// - Copy-on-write archive modification and multi-archive merging
// - SSE change notifications, Prometheus metrics, structured logging (zap)
// - Pluggable blob storage (S3, local)
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Stellar-proximology/you-N-ide-STUDIO2-sub001/internal/api"
	"github.com/Stellar-proximology/you-N-ide-STUDIO2-sub001/internal/archive"
	"github.com/Stellar-proximology/you-N-ide-STUDIO2-sub001/internal/archive/postgres"
	"github.com/Stellar-proximology/you-N-ide-STUDIO2-sub001/internal/auth"
	"github.com/Stellar-proximology/you-N-ide-STUDIO2-sub001/internal/config"
	"github.com/Stellar-proximology/you-N-ide-STUDIO2-sub001/internal/events"
	"github.com/Stellar-proximology/you-N-ide-STUDIO2-sub001/internal/logging"
	"github.com/Stellar-proximology/you-N-ide-STUDIO2-sub001/internal/metrics"
	"github.com/Stellar-proximology/you-N-ide-STUDIO2-sub001/internal/storage"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		// Can't use structured logging yet
		panic("configuration error: " + err.Error())
	}

	// Initialize structured logging
	if err := logging.Init(logging.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	}); err != nil {
		panic("logging init error: " + err.Error())
	}
	defer logging.Sync()

	logging.Info("studio server starting...",
		zap.String("listen", cfg.ListenAddr),
		zap.String("metrics", cfg.MetricsAddr))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Archive metadata store: PostgreSQL when configured, in-memory otherwise
	var store archive.Store
	if cfg.DatabaseURL != "" {
		logging.Info("connecting to PostgreSQL...")
		pgStore, err := postgres.New(cfg.DatabaseURL)
		if err != nil {
			logging.Fatal("database connection failed", zap.Error(err))
		}
		defer pgStore.Close()
		store = pgStore
	} else {
		logging.Warn("DATABASE_URL not set, archives are held in memory only")
		store = archive.NewMemoryStore()
	}

	// Blob storage backend
	backend, err := storage.NewFromConfig(ctx, cfg)
	if err != nil {
		logging.Fatal("storage backend init failed", zap.Error(err))
	}
	defer backend.Close()
	logging.Info("storage backend initialized", zap.String("type", backend.Type()))

	// Auth
	authHandler, err := auth.New(cfg)
	if err != nil {
		logging.Fatal("auth init failed", zap.Error(err))
	}

	// SSE broadcaster
	broadcaster := events.NewBroadcaster()
	logging.Info("SSE broadcaster initialized")

	// API server
	srv := api.NewServer(store, backend, authHandler, broadcaster, cfg)

	// Metrics server
	metricsServer := &http.Server{
		Addr:    cfg.MetricsAddr,
		Handler: metrics.Handler(),
	}
	go func() {
		logging.Info("metrics server listening", zap.String("addr", cfg.MetricsAddr))
		if err := metricsServer.ListenAndServe(); err != http.ErrServerClosed {
			logging.Error("metrics server error", zap.Error(err))
		}
	}()

	httpServer := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: srv.Handler(),
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logging.Info("shutting down...")
		cancel()
		httpServer.Close()
		metricsServer.Close()
	}()

	logging.Info("server listening", zap.String("addr", cfg.ListenAddr))
	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		logging.Fatal("server error", zap.Error(err))
	}
}
