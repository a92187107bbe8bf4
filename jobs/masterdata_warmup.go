package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/odyssey-erp/odyssey-hr/internal/jobs"
)

// CacheWarmer loads master-data lists into the cache.
type CacheWarmer interface {
	WarmNamed(ctx context.Context, names []string) (int, error)
}

// MasterDataWarmupJob executes masterdata:warmup tasks.
type MasterDataWarmupJob struct {
	Warmer  CacheWarmer
	Tokens  TokenOpener
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewMasterDataWarmupJob wires dependencies for the warmup handler.
func NewMasterDataWarmupJob(warmer CacheWarmer, tokens TokenOpener, logger *slog.Logger, metrics *jobmetrics.Metrics) *MasterDataWarmupJob {
	return &MasterDataWarmupJob{Warmer: warmer, Tokens: tokens, Logger: logger, Metrics: metrics}
}

// Handle processes warmup tasks.
func (j *MasterDataWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Warmer == nil || j.Tokens == nil {
		return errors.New("masterdata warmup: handler not configured")
	}
	var payload MasterDataWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("masterdata warmup payload: %v: %w", err, asynq.SkipRetry)
	}

	tracker := j.metrics().Track(TaskMasterDataWarmup)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger().With(slog.String("company_id", payload.CompanyID))
	ctx, err := taskContext(ctx, j.Tokens, payload.Token, payload.CompanyID)
	if err != nil {
		resultErr = err
		logger.Error("masterdata warmup token", slog.Any("error", err))
		return resultErr
	}

	start := time.Now()
	logger.Info("starting masterdata warmup", slog.Int("requested", len(payload.Resources)))
	warmed, err := j.Warmer.WarmNamed(ctx, payload.Resources)
	j.metrics().AddItems(TaskMasterDataWarmup, payload.CompanyID, warmed)
	if err != nil {
		resultErr = withoutRetryOnRejection(err)
		logger.Error("masterdata warmup failed", slog.Int("warmed", warmed), slog.Any("error", err))
		return resultErr
	}
	logger.Info("completed masterdata warmup",
		slog.Int("warmed", warmed),
		slog.Duration("duration", time.Since(start)),
	)
	return resultErr
}

func (j *MasterDataWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskMasterDataWarmup))
	}
	return slog.Default().With(slog.String("job", TaskMasterDataWarmup))
}

func (j *MasterDataWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
