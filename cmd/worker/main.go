package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/odyssey-erp/odyssey-hr/internal/app"
	jobmetrics "github.com/odyssey-erp/odyssey-hr/internal/jobs"
	"github.com/odyssey-erp/odyssey-hr/internal/masterdata"
	"github.com/odyssey-erp/odyssey-hr/internal/payroll"
	"github.com/odyssey-erp/odyssey-hr/internal/platform/backend"
	"github.com/odyssey-erp/odyssey-hr/internal/platform/cache"
	"github.com/odyssey-erp/odyssey-hr/internal/shared"
	"github.com/odyssey-erp/odyssey-hr/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	redisClient, err := cache.New(ctx, cfg.Redis())
	if err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sealer := shared.NewTokenSealer(cfg.SessionSecret)
	apiClient := backend.NewClient(cfg.APIBaseURL, cfg.APITimeout, nil, logger)

	payrollService := payroll.NewService(payroll.NewRepository(apiClient), nil, nil, logger)
	metrics := jobmetrics.NewMetrics(nil)
	payrollJob := jobs.NewPayrollComputeJob(payrollService, sealer, logger, metrics)

	listCache := masterdata.NewListCache(redisClient, cfg.MasterDataCacheTTL, logger)
	masterService := masterdata.NewService(masterdata.NewRepository(apiClient), listCache, nil, logger)
	warmer := masterdata.NewWarmer(masterService, masterdata.MasterDataCatalog(), masterdata.HRCatalog())
	warmupJob := jobs.NewMasterDataWarmupJob(warmer, sealer, logger, metrics)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:   cfg.Redis().Asynq(),
		Logger:      logger,
		Concurrency: cfg.WorkerConcurrency,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskPayrollCompute, Handler: payrollJob.Handle},
			{Type: jobs.TaskMasterDataWarmup, Handler: warmupJob.Handle},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if cfg.WorkerMetricsAddr != "" {
		metricsServer := &http.Server{Addr: cfg.WorkerMetricsAddr, Handler: promhttp.Handler(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			logger.Info("serving worker metrics", slog.String("addr", cfg.WorkerMetricsAddr))
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Warn("worker metrics server", slog.Any("error", err))
			}
		}()
		defer func() {
			_ = metricsServer.Close()
		}()
	}

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
