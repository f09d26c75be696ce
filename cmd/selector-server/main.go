// Command selector-server runs the blower selection HTTP service: the guided
// conversation, the sizing calculation, product matching, and quote assembly.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	commonaws "blower-selector/internal/common/aws"
	"blower-selector/internal/common/config"
	"blower-selector/internal/common/database"
	"blower-selector/internal/common/logger"
	"blower-selector/internal/conversation"
	"blower-selector/internal/matching"
	"blower-selector/internal/quote"
	"blower-selector/internal/refdata"
	"blower-selector/internal/server"
	"blower-selector/internal/sizing"
)

func main() {
	zapLog := logger.New("info", "console")
	defer func() {
		_ = zapLog.Sync()
	}()

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("Failed to load configuration", zap.Error(err))
	}

	log, err := logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		zapLog.Fatal("Failed to initialize logger", zap.Error(err))
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting blower selector service",
		zap.String("name", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment))

	catalog, err := refdata.NewStore(cfg.Catalog.Path, log)
	if err != nil {
		zapLog.Fatal("Failed to load product catalog",
			zap.String("path", cfg.Catalog.Path), zap.Error(err))
	}
	log.Info("Product catalog loaded",
		zap.String("path", cfg.Catalog.Path),
		zap.Int("products", len(catalog.Snapshot().Products)))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	deps := server.Deps{
		Machine:   conversation.NewMachine(log),
		Sizer:     sizing.NewEngine(sizing.Config{SafetyFactor: cfg.Sizing.SafetyFactor, VelocityWarnLimit: cfg.Sizing.VelocityWarnLimit}, log),
		Matcher:   matching.NewEngine(log),
		Catalog:   catalog,
		Assembler: quote.NewAssembler(log),
		Logger:    log,
	}

	// The conversation state store, quote repository, and email dispatch are
	// each optional so the service can run without backing infrastructure.
	if cfg.Redis.Host != "" {
		var redisClient *database.RedisClient
		err = retryWithBackoff(func() error {
			redisClient, err = database.NewRedis(cfg.Redis)
			return err
		}, 5, 2*time.Second, log, "Redis connection")
		if err != nil {
			zapLog.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
		deps.States = server.NewStateStore(redisClient, cfg.Redis.TTL, log)
		log.Info("Conversation state store ready", zap.String("addr", cfg.Redis.Addr()))
	} else {
		log.Warn("Redis not configured; conversation state lives only in request echoes")
	}

	if cfg.Database.Host != "" {
		var pgClient *database.PostgresClient
		err = retryWithBackoff(func() error {
			pgClient, err = database.NewPostgres(cfg.Database)
			return err
		}, 5, 2*time.Second, log, "PostgreSQL connection")
		if err != nil {
			zapLog.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
		}
		defer pgClient.Close()
		deps.Quotes = quote.NewRepository(pgClient, log)
		log.Info("Quote repository ready", zap.String("database", cfg.Database.Name))
	} else {
		log.Warn("Database not configured; quotes will not be persisted")
	}

	if cfg.AWS.SES.Enabled {
		sesClient, sesErr := commonaws.NewSESClient(ctx, cfg.AWS.Region)
		if sesErr != nil {
			zapLog.Fatal("Failed to initialize SES client", zap.Error(sesErr))
		}
		deps.Dispatcher = quote.NewDispatcher(sesClient, cfg.AWS.SES.FromAddress, cfg.AWS.SES.ReplyTo, log)
		log.Info("Quote email dispatch enabled", zap.String("from", cfg.AWS.SES.FromAddress))
	} else {
		log.Info("Quote email dispatch disabled")
	}

	if cfg.Catalog.RefreshInterval > 0 {
		go catalog.RunRefreshLoop(ctx, cfg.Catalog.RefreshInterval)
	}

	router := server.New(deps).Router()
	if cfg.Metrics.Enabled {
		router.Handle(cfg.Metrics.Path, promhttp.Handler())
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("Received shutdown signal", zap.String("signal", sig.String()))
	case err := <-serverErr:
		zapLog.Fatal("HTTP server failed", zap.Error(err))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", zap.Error(err))
	}
	cancel()

	log.Info("Blower selector service stopped")
}

// retryWithBackoff retries an operation with exponential backoff. Used for
// infrastructure connections that may not be ready when the service starts.
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log logger.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for attempt := 1; attempt <= maxRetries; attempt++ {
		if err = operation(); err == nil {
			if attempt > 1 {
				log.Info("Operation succeeded after retry",
					zap.String("operation", operationName),
					zap.Int("attempt", attempt))
			}
			return nil
		}

		if attempt < maxRetries {
			log.Warn("Operation failed, retrying",
				zap.String("operation", operationName),
				zap.Int("attempt", attempt),
				zap.Int("max_retries", maxRetries),
				zap.Duration("retry_in", delay),
				zap.Error(err))
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}
