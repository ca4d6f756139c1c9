package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/clipzone/clipzone/internal/config"
	"github.com/clipzone/clipzone/internal/logging"
	"github.com/clipzone/clipzone/internal/notify"
	"github.com/clipzone/clipzone/internal/queue"
	"github.com/clipzone/clipzone/internal/tracing"
	"github.com/clipzone/clipzone/pkg/models"
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

	// Initialize tracing
	if cfg.Tracing.Enabled {
		_, closer, err := tracing.InitTracer("clipzone-worker", cfg.Tracing.JaegerEndpoint)
		if err != nil {
			logger.ErrorWithErr("Failed to initialize tracer", err)
		} else {
			defer closer.Close()
		}
	}

	// Initialize queue
	q, err := queue.New(cfg.Queue)
	if err != nil {
		logger.Fatalf("Failed to connect to queue: %v", err)
	}
	defer q.Close()

	notifier := notify.New(cfg.Webhooks, logger)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown gracefully
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutting down worker gracefully...")
		cancel()
	}()

	// Settlement handler
	handler := func(event models.SettlementEvent) error {
		logger.WithClipID(event.ClipID).Infof("Delivering settlement for clipper %s: %.2f", event.ClipperID, event.Earnings)

		if err := notifier.Notify(ctx, event); err != nil {
			logger.WithClipID(event.ClipID).ErrorWithErr("Settlement delivery failed", err)
			return err
		}

		return nil
	}

	// Start consuming settlement events
	logger.Info("Worker started, waiting for settlement events...")
	if err := q.ConsumeSettlements(ctx, handler); err != nil {
		logger.Fatalf("Failed to consume settlement events: %v", err)
	}

	// Wait for shutdown
	<-ctx.Done()
	logger.Info("Worker stopped")
}
