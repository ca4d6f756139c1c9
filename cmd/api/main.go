package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/clipzone/clipzone/internal/cache"
	"github.com/clipzone/clipzone/internal/config"
	"github.com/clipzone/clipzone/internal/database"
	"github.com/clipzone/clipzone/internal/engine"
	"github.com/clipzone/clipzone/internal/logging"
	"github.com/clipzone/clipzone/internal/metrics"
	"github.com/clipzone/clipzone/internal/middleware"
	"github.com/clipzone/clipzone/internal/queue"
	"github.com/clipzone/clipzone/internal/reporting"
	"github.com/clipzone/clipzone/internal/storage"
	"github.com/clipzone/clipzone/internal/tracing"
)

func main() {
	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewLogger(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	// Initialize JWT secret from config
	middleware.SetJWTSecret(cfg.Auth.JWTSecret)

	// Initialize tracing
	if cfg.Tracing.Enabled {
		_, closer, err := tracing.InitTracer("clipzone-api", cfg.Tracing.JaegerEndpoint)
		if err != nil {
			logger.ErrorWithErr("Failed to initialize tracer", err)
		} else {
			defer closer.Close()
		}
	}

	// Initialize database
	db, err := database.New(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	repo := database.NewRepository(db)

	// Initialize cache. The API degrades to uncached reads if Redis is down.
	var summaryCache *cache.Cache
	summaryCache, err = cache.NewCache(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TTL)
	if err != nil {
		logger.ErrorWithErr("Cache unavailable, continuing without it", err)
		summaryCache = nil
	}

	// Initialize storage
	stor, err := storage.New(cfg.Storage)
	if err != nil {
		logger.Fatalf("Failed to initialize storage: %v", err)
	}

	// Initialize queue. Settlement events are best effort, so a missing
	// broker is not fatal.
	var events engine.EventPublisher
	q, err := queue.New(cfg.Queue)
	if err != nil {
		logger.ErrorWithErr("Queue unavailable, settlement events disabled", err)
	} else {
		defer q.Close()
		events = q
	}

	eng := engine.New(repo, repo, events, logger)
	reporter := reporting.New(repo, repo, summaryCache, logger)

	rl := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	go rl.Cleanup(10 * time.Minute)

	api := &API{
		accounts: repo,
		clips:    repo,
		health:   repo,
		engine:   eng,
		reporter: reporter,
		storage:  stor,
		cache:    summaryCache,
		tokenTTL: cfg.Auth.TokenTTL,
		logger:   logger,
	}

	// Setup router
	router := setupRouter(api, rl)

	// Start metrics server
	metricsServer := metrics.NewServer(cfg.Metrics.Port)
	go func() {
		if err := metricsServer.Start(); err != nil && err != http.ErrServerClosed {
			logger.ErrorWithErr("Metrics server failed", err)
		}
	}()

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Infof("Starting API server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatalf("Server forced to shutdown: %v", err)
	}
	if err := metricsServer.Shutdown(ctx); err != nil {
		logger.ErrorWithErr("Metrics server shutdown failed", err)
	}

	logger.Info("Server stopped")
}

// Health check endpoint
func (api *API) healthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := api.health.Health(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
	})
}
