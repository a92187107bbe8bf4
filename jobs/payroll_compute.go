package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/odyssey-erp/odyssey-hr/internal/jobs"
	"github.com/odyssey-erp/odyssey-hr/internal/platform/backend"
	"github.com/odyssey-erp/odyssey-hr/internal/shared"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// TokenOpener recovers the operator's access token from a task payload.
type TokenOpener interface {
	Open(sealed string) (string, error)
}

// PayrollRunner asks the backend to compute a payroll period.
type PayrollRunner interface {
	ComputePayroll(ctx context.Context, period, notes string) (string, error)
}

// PayrollComputeJob executes payroll:compute tasks.
type PayrollComputeJob struct {
	Runner  PayrollRunner
	Tokens  TokenOpener
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewPayrollComputeJob wires dependencies for the payroll handler.
func NewPayrollComputeJob(runner PayrollRunner, tokens TokenOpener, logger *slog.Logger, metrics *jobmetrics.Metrics) *PayrollComputeJob {
	return &PayrollComputeJob{Runner: runner, Tokens: tokens, Logger: logger, Metrics: metrics}
}

// Handle processes payroll compute tasks. Malformed payloads and tokens that
// can no longer be opened are not retried.
func (j *PayrollComputeJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Runner == nil || j.Tokens == nil {
		return errors.New("payroll compute: handler not configured")
	}
	var payload PayrollComputePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("payroll compute payload: %v: %w", err, asynq.SkipRetry)
	}

	tracker := j.metrics().Track(TaskPayrollCompute)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger().With(
		slog.String("company_id", payload.CompanyID),
		slog.String("period", payload.Period),
		slog.String("requested_by", payload.RequestedBy),
	)

	ctx, err := taskContext(ctx, j.Tokens, payload.Token, payload.CompanyID)
	if err != nil {
		resultErr = err
		logger.Error("payroll compute token", slog.Any("error", err))
		return resultErr
	}

	start := time.Now()
	logger.Info("starting payroll compute")
	msg, err := j.Runner.ComputePayroll(ctx, payload.Period, payload.Notes)
	if err != nil {
		resultErr = withoutRetryOnRejection(err)
		logger.Error("payroll compute failed", slog.Any("error", err))
		return resultErr
	}
	j.metrics().AddItems(TaskPayrollCompute, payload.CompanyID, 1)
	logger.Info("completed payroll compute",
		slog.String("message", msg),
		slog.Duration("duration", time.Since(start)),
	)
	return resultErr
}

func (j *PayrollComputeJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskPayrollCompute))
	}
	return slog.Default().With(slog.String("job", TaskPayrollCompute))
}

func (j *PayrollComputeJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

// taskContext attaches the operator token and company to ctx the same way an
// HTTP request would.
func taskContext(ctx context.Context, tokens TokenOpener, sealed, companyID string) (context.Context, error) {
	if sealed == "" {
		return ctx, fmt.Errorf("task carries no access token: %w", asynq.SkipRetry)
	}
	token, err := tokens.Open(sealed)
	if err != nil {
		return ctx, fmt.Errorf("open access token: %v: %w", err, asynq.SkipRetry)
	}
	ctx = shared.ContextWithAccessToken(ctx, token)
	if companyID != "" {
		ctx = shared.ContextWithCompany(ctx, companyID)
	}
	return ctx, nil
}

// withoutRetryOnRejection marks backend 4xx answers as final. Timeouts and
// rate limiting stay retryable.
func withoutRetryOnRejection(err error) error {
	var be *backend.Error
	if !errors.As(err, &be) {
		return err
	}
	switch {
	case be.StatusCode == http.StatusRequestTimeout, be.StatusCode == http.StatusTooManyRequests:
		return err
	case be.StatusCode < http.StatusInternalServerError:
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}
	return err
}
