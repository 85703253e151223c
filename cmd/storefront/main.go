// Package main provides the entry point for the storefront service.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/SatishMhobiya/e-commerce-backend/internal/config"
	apperrors "github.com/SatishMhobiya/e-commerce-backend/internal/errors"
	"github.com/SatishMhobiya/e-commerce-backend/internal/handler"
	"github.com/SatishMhobiya/e-commerce-backend/internal/health"
	"github.com/SatishMhobiya/e-commerce-backend/internal/metrics"
	"github.com/SatishMhobiya/e-commerce-backend/internal/server"
	"github.com/SatishMhobiya/e-commerce-backend/internal/service"
	"github.com/SatishMhobiya/e-commerce-backend/internal/store"
	"github.com/SatishMhobiya/e-commerce-backend/internal/util/workerpool"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	printConfig := flag.Bool("print-config", false, "print the effective configuration and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if *printConfig {
		if err := cfg.Write(os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to print config: %v\n", err)
			os.Exit(1)
		}
		return
	}

	logger := initLogger(cfg.Logging)
	defer logger.Sync()

	logger.Info("Starting storefront",
		zap.Int("port", cfg.Server.Port),
		zap.String("store", cfg.Store.Driver),
		zap.String("cache", cfg.Cache.Backend))

	docs, err := openStore(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to open store", zap.Error(err))
	}
	defer docs.Close()

	kv, closeCache, err := openCache(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to open cache", zap.Error(err))
	}
	defer closeCache()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics(reg)
	m.SetHealthStatus(true)

	var pool *workerpool.WorkerPool
	pool = workerpool.NewWorkerPool(&workerpool.Config{
		Name:       "storefront-tasks",
		MaxWorkers: cfg.Workers.MaxWorkers,
		QueueSize:  cfg.Workers.QueueSize,
		OnTaskDone: func(task workerpool.Task, err error) {
			m.RecordWorkerTask(task.Kind, err)
			m.SetWorkerQueueDepth(pool.Stats().QueuedTasks)
		},
		Logger: logger,
	})

	clock := clockwork.NewRealClock()
	cache := service.NewCacheService(kv, m, logger)
	invalidation := service.NewInvalidationService(cache, m, logger)
	users := service.NewUserService(docs, clock, logger)

	handlers := handler.NewHandlers(handler.Services{
		Products: service.NewProductService(docs, cache, invalidation, clock, cfg.Catalog.PerPage, cfg.Catalog.LatestLimit, logger),
		Orders:   service.NewOrderService(docs, docs, cache, invalidation, pool, clock, m, logger),
		Reviews:  service.NewReviewService(docs, docs, docs, users, invalidation, clock, m, logger),
		Users:    users,
		Coupons:  service.NewCouponService(docs, clock, logger),
		Stats:    service.NewStatsService(docs, clock, logger),
	}, apperrors.NewHandler(logger), logger)

	var metricsServer *metrics.MetricsServer
	if cfg.Metrics.Enabled {
		metricsServer = metrics.NewMetricsServer(cfg.Metrics.Port, cfg.Metrics.Path, reg, m, cache.Len, cfg.Metrics.Interval, logger)
		go func() {
			if err := metricsServer.Start(); err != nil {
				logger.Error("Metrics server error", zap.Error(err))
			}
		}()
	}

	httpServer := server.NewServer(
		cfg,
		handlers,
		users,
		health.NewHealthChecker(docs, kv, m, logger),
		m,
		apperrors.NewHandler(logger),
		logger,
	)
	httpServer.SetupRoutes()

	errChan := make(chan error, 1)
	go func() {
		if err := httpServer.Start(); err != nil {
			errChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
	case err := <-errChan:
		logger.Error("Server error", zap.Error(err))
	}

	logger.Info("Initiating graceful shutdown")
	m.SetHealthStatus(false)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown HTTP server", zap.Error(err))
	}

	// queued stock updates still run against the open store
	if err := pool.Stop(cfg.Workers.DrainTimeout); err != nil {
		logger.Error("Failed to drain worker pool", zap.Error(err))
	}

	if metricsServer != nil {
		if err := metricsServer.Shutdown(ctx); err != nil {
			logger.Error("Failed to shutdown metrics server", zap.Error(err))
		}
	}

	logger.Info("Storefront shutdown complete")
}

func openStore(cfg *config.Config, logger *zap.Logger) (store.DocumentStore, error) {
	if cfg.Store.Driver != config.DriverPostgres {
		return store.NewMemoryStore(), nil
	}

	pg, err := store.NewPostgresStore(
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.Database,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.MaxConnections,
		cfg.Database.MinConnections,
		store.BreakerSettings{
			MaxRequests:      cfg.Breaker.MaxRequests,
			Interval:         cfg.Breaker.Interval,
			Timeout:          cfg.Breaker.Timeout,
			FailureThreshold: cfg.Breaker.FailureThreshold,
			MinRequests:      cfg.Breaker.MinRequests,
		},
		logger,
	)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := pg.EnsureSchema(ctx); err != nil {
		pg.Close()
		return nil, err
	}
	return pg, nil
}

func openCache(cfg *config.Config, logger *zap.Logger) (store.Cache, func(), error) {
	if cfg.Cache.Backend != config.BackendRedis {
		return store.NewInMemoryCache(cfg.Cache.MaxEntries, logger), func() {}, nil
	}

	rc, err := store.NewRedisCache(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.Prefix, logger)
	if err != nil {
		return nil, nil, err
	}
	return rc, func() {
		if err := rc.Close(); err != nil {
			logger.Warn("Failed to close Redis client", zap.Error(err))
		}
	}, nil
}

// initLogger builds the zap logger from the logging section.
func initLogger(cfg config.LoggingConfig) *zap.Logger {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zcfg zap.Config
	if cfg.Format == "console" {
		zcfg = zap.NewDevelopmentConfig()
	} else {
		zcfg = zap.NewProductionConfig()
	}

	zcfg.Level = zap.NewAtomicLevelAt(level)
	zcfg.OutputPaths = []string{"stdout"}
	zcfg.ErrorOutputPaths = []string{"stderr"}

	logger, err := zcfg.Build()
	if err != nil {
		logger, _ = zap.NewProduction()
	}
	return logger
}
