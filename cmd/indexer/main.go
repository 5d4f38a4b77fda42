package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ardwiinoo/launch-indexer/internal/application/services"
	"github.com/ardwiinoo/launch-indexer/internal/config"
	"github.com/ardwiinoo/launch-indexer/internal/infrastructure/cache"
	"github.com/ardwiinoo/launch-indexer/internal/infrastructure/database"
	"github.com/ardwiinoo/launch-indexer/internal/infrastructure/scanapi"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	logger := setupLogger(cfg.Log.Level)
	defer logger.Sync()

	logger.Info("Starting launch-indexer",
		zap.Int64("chain_id", cfg.Indexer.ChainID),
		zap.String("contract", cfg.Indexer.ContractAddress),
		zap.String("scan_api", cfg.ScanAPI.BaseURL),
	)

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to database
	db, err := database.NewPostgresDB(cfg.Database, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Connect to the cursor store
	cursorStore, err := cache.NewCursorStore(cfg.Redis, cfg.Indexer, logger)
	if err != nil {
		logger.Fatal("Failed to connect to cursor store", zap.Error(err))
	}
	defer cursorStore.Close()

	// Create repositories
	eventRepo := database.NewEventRepo(db.DB())
	tokenRepo := database.NewTokenRepo(db.DB())
	tradeRepo := database.NewTradeRepo(db.DB())
	transferRepo := database.NewTransferRepo(db.DB())

	// Create fetcher
	client := scanapi.NewClient(cfg.ScanAPI, logger)
	fetcher := scanapi.NewFetcher(client, cfg.Indexer, logger)

	// Create projection engine and sync driver
	projector := services.NewProjector(
		eventRepo,
		tokenRepo,
		tradeRepo,
		transferRepo,
		cfg.Indexer.DrainBatchSize,
		logger,
	)
	syncService := services.NewSyncService(
		fetcher,
		eventRepo,
		projector,
		cursorStore,
		cfg.Indexer,
		logger,
	)

	// Start sync loop
	syncService.Start(ctx)

	// Start metrics server
	go startMetricsServer(cfg.Indexer.MetricsPort, logger)

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("Received shutdown signal, stopping indexer...")

	// Graceful shutdown
	syncService.Stop()

	logger.Info("Indexer stopped")
}

func setupLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      false,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, _ := config.Build()
	return logger
}

func startMetricsServer(port int, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	addr := fmt.Sprintf(":%d", port)
	logger.Info("Starting metrics server", zap.String("addr", addr))

	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Metrics server error", zap.Error(err))
	}
}
