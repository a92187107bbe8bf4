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

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/odyssey-hr/internal/app"
	"github.com/odyssey-erp/odyssey-hr/internal/auth"
	"github.com/odyssey-erp/odyssey-hr/internal/masterdata"
	"github.com/odyssey-erp/odyssey-hr/internal/observability"
	"github.com/odyssey-erp/odyssey-hr/internal/payroll"
	"github.com/odyssey-erp/odyssey-hr/internal/platform/backend"
	"github.com/odyssey-erp/odyssey-hr/internal/platform/cache"
	"github.com/odyssey-erp/odyssey-hr/internal/platform/db"
	"github.com/odyssey-erp/odyssey-hr/internal/procurement"
	"github.com/odyssey-erp/odyssey-hr/internal/rbac"
	"github.com/odyssey-erp/odyssey-hr/internal/shared"
	"github.com/odyssey-erp/odyssey-hr/jobs"
	"github.com/odyssey-erp/odyssey-hr/report"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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

	dbpool, err := db.New(ctx, db.Options{DSN: cfg.PGDSN, MaxConns: cfg.PGMaxConns, AppName: "odyssey-hr"})
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()
	if err := db.EnsureSchema(ctx, dbpool); err != nil {
		logger.Error("ensure schema", slog.Any("error", err))
		os.Exit(1)
	}

	redisClient, err := cache.New(ctx, cfg.Redis())
	if err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "odyssey_session", cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)
	sealer := shared.NewTokenSealer(cfg.SessionSecret)
	auditLogger := shared.NewAuditLogger(dbpool)
	approvalRecorder := shared.NewApprovalRecorder(dbpool, logger)

	metrics := observability.NewMetrics()
	apiClient := backend.NewClient(cfg.APIBaseURL, cfg.APITimeout, metrics, logger)

	redisOpts := cfg.Redis().Asynq()
	jobClient := jobs.NewClient(redisOpts)
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	redirector := auth.NewRedirector(cfg.RedirectScheme, cfg.RootDomain, cfg.DefaultSubdomain)
	authService := auth.NewService(auth.NewRepository(apiClient), sealer, redirector, auditLogger, logger)
	authHandler := auth.NewHandler(logger, authService, sessionManager, csrfManager, cfg.IsProduction())

	rbacService := rbac.NewService(nil)
	rbacMiddleware := rbac.Middleware{Service: rbacService, Logger: logger}

	listCache := masterdata.NewListCache(redisClient, cfg.MasterDataCacheTTL, logger)
	masterService := masterdata.NewService(masterdata.NewRepository(apiClient), listCache, auditLogger, logger)
	masterHandler := masterdata.NewHandler(logger, masterService, masterdata.MasterDataCatalog()).WithWarmups(jobClient)
	hrHandler := masterdata.NewHandler(logger, masterService, masterdata.HRCatalog()).WithWarmups(jobClient)

	reportClient := report.NewClient(cfg.GotenbergURL, 0)
	exporter, err := procurement.NewExporter(reportClient)
	if err != nil {
		logger.Error("init comparison exporter", slog.Any("error", err))
		os.Exit(1)
	}
	procurementService := procurement.NewService(procurement.NewRepository(apiClient), approvalRecorder, auditLogger, logger)
	procurementHandler := procurement.NewHandler(logger, procurementService, exporter, rbacMiddleware)

	payrollService := payroll.NewService(payroll.NewRepository(apiClient), jobClient, auditLogger, logger)
	payrollHandler := payroll.NewHandler(logger, payrollService, rbacMiddleware)

	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		SessionManager:     sessionManager,
		CSRFManager:        csrfManager,
		AuthHandler:        authHandler,
		MasterDataHandler:  masterHandler,
		HRHandler:          hrHandler,
		ProcurementHandler: procurementHandler,
		PayrollHandler:     payrollHandler,
		PermissionsHandler: rbac.NewPermissionsHandler(rbacService),
		RBACMiddleware:     rbacMiddleware,
		ReportHandler:      report.NewHandler(reportClient, logger),
		JobHandler:         jobs.NewHandler(inspector, logger),
		Metrics:            metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("api", cfg.APIBaseURL))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
