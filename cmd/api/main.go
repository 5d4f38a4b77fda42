package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ardwiinoo/launch-indexer/internal/application/services"
	"github.com/ardwiinoo/launch-indexer/internal/config"
	"github.com/ardwiinoo/launch-indexer/internal/infrastructure/cache"
	"github.com/ardwiinoo/launch-indexer/internal/infrastructure/database"
	"github.com/ardwiinoo/launch-indexer/internal/infrastructure/scanapi"
	"github.com/ardwiinoo/launch-indexer/internal/presentation/handlers"
	"github.com/ardwiinoo/launch-indexer/internal/presentation/middleware"
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

	logger.Info("Starting launch-indexer API",
		zap.Int("port", cfg.API.Port),
	)

	// Connect to database
	db, err := database.NewPostgresDB(cfg.Database, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Connect to Redis cache (optional)
	var redisCache *cache.RedisCache
	redisCache, err = cache.NewRedisCache(cfg.Redis, cfg.API.CacheTTL, logger)
	if err != nil {
		logger.Warn("Failed to connect to Redis, running without cache", zap.Error(err))
		redisCache = nil
	} else {
		defer redisCache.Close()
	}

	// Connect to the cursor store for the manual sync trigger
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

	// Create services
	tokenService := services.NewTokenService(tokenRepo, redisCache, logger)
	tradeService := services.NewTradeService(tradeRepo, logger)
	transferService := services.NewTransferService(transferRepo, logger)

	// The manual sync trigger reuses the same pipeline the indexer
	// runs; it is wired here without the loop, one cycle per request.
	client := scanapi.NewClient(cfg.ScanAPI, logger)
	fetcher := scanapi.NewFetcher(client, cfg.Indexer, logger)
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

	// Create handlers
	tokenHandler := handlers.NewTokenHandler(tokenService, tradeService, logger)
	transferHandler := handlers.NewTransferHandler(transferService, logger)
	syncHandler := handlers.NewSyncHandler(syncService, logger)

	var cacheChecker handlers.HealthChecker
	if redisCache != nil {
		cacheChecker = redisCache
	}
	healthHandler := handlers.NewHealthHandler(db, cacheChecker)

	// Setup router
	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics())
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RateLimiter(cfg.API.RateLimitRPS))

	// Health endpoints (no rate limiting)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)
	r.Get("/live", healthHandler.Live)
	r.Handle("/metrics", promhttp.Handler())

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		tokenHandler.RegisterRoutes(r)
		transferHandler.RegisterRoutes(r)
		r.Group(func(r chi.Router) {
			r.Use(middleware.SyncLimiter(cfg.API.SyncLimitRPM))
			syncHandler.RegisterRoutes(r)
		})
	})

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.API.ReadTimeout,
		WriteTimeout: cfg.API.WriteTimeout,
	}

	// Run server in goroutine
	go func() {
		logger.Info("API server starting", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server error", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("Received shutdown signal, shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), cfg.API.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", zap.Error(err))
	}

	logger.Info("Server stopped")
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
