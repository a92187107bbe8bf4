package payroll

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/odyssey-hr/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-hr/internal/shared"
	"github.com/odyssey-erp/odyssey-hr/jobs"
)

// Enqueuer queues payroll computations.
type Enqueuer interface {
	EnqueuePayrollCompute(ctx context.Context, payload jobs.PayrollComputePayload) (string, error)
}

// AuditPort records operator actions.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// RunPendingError reports a period that already has a queued run.
type RunPendingError struct {
	Period string
}

func (e *RunPendingError) Error() string {
	return "payroll: run for " + e.Period + " already queued"
}

// Unwrap ties the error to ErrRunPending.
func (e *RunPendingError) Unwrap() error { return ErrRunPending }

// UserMessage implements httpx.UserMessager.
func (e *RunPendingError) UserMessage() string {
	return "Payroll for " + e.Period + " is already being computed"
}

// Service triggers and reads payroll runs.
type Service struct {
	repo     Repository
	queue    Enqueuer
	audit    AuditPort
	validate *validator.Validate
	logger   *slog.Logger
	now      func() time.Time
}

// NewService constructs the payroll service. Without a queue, runs are
// started inline.
func NewService(repo Repository, queue Enqueuer, audit AuditPort, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:     repo,
		queue:    queue,
		audit:    audit,
		validate: validator.New(),
		logger:   logger,
		now:      time.Now,
	}
}

// TriggerRun validates the period and hands the computation to the worker.
// sealedToken is the operator's sealed access token; the worker uses it to
// call the backend on the operator's behalf.
func (s *Service) TriggerRun(ctx context.Context, sealedToken string, input TriggerInput) (Trigger, string, error) {
	input.Period = strings.TrimSpace(input.Period)
	input.Notes = strings.TrimSpace(input.Notes)
	if err := s.validate.Struct(input); err != nil {
		return Trigger{}, "", httpx.Invalid("Period is required and notes are limited to 500 characters")
	}
	if _, err := ParsePeriod(input.Period, s.now()); err != nil {
		return Trigger{}, "", err
	}
	company := shared.CompanyFromContext(ctx)
	if company == "" {
		return Trigger{}, "", httpx.Invalid("Select a company first")
	}

	if s.queue == nil {
		msg, runID, err := s.compute(ctx, input.Period, input.Notes)
		if err != nil {
			return Trigger{}, msg, err
		}
		s.record(ctx, input.Period, map[string]any{"run": runID, "inline": true})
		return Trigger{Period: input.Period, RunID: runID}, msg, nil
	}

	if sealedToken == "" {
		return Trigger{}, "", httpx.ErrUnauthorized
	}
	taskID, err := s.queue.EnqueuePayrollCompute(ctx, jobs.PayrollComputePayload{
		CompanyID:   company,
		Period:      input.Period,
		Notes:       input.Notes,
		RequestedBy: shared.SessionFromContext(ctx).User(),
		Token:       sealedToken,
	})
	if err != nil {
		if errors.Is(err, jobs.ErrDuplicateTask) {
			return Trigger{}, "", &RunPendingError{Period: input.Period}
		}
		return Trigger{}, "", err
	}
	s.record(ctx, input.Period, map[string]any{"task": taskID})
	return Trigger{Period: input.Period, TaskID: taskID, Queued: true}, "Payroll for " + input.Period + " queued", nil
}

// ComputePayroll starts the backend computation for period. The worker calls
// it with the operator's token attached to ctx.
func (s *Service) ComputePayroll(ctx context.Context, period, notes string) (string, error) {
	msg, _, err := s.compute(ctx, period, notes)
	return msg, err
}

// ListRuns lists payroll runs, newest first as returned by the backend.
func (s *Service) ListRuns(ctx context.Context, query url.Values) ([]Run, error) {
	return s.repo.ListRuns(ctx, query)
}

// GetRun fetches a payroll run.
func (s *Service) GetRun(ctx context.Context, id string) (Run, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Run{}, httpx.Invalid("Invalid payroll run ID")
	}
	return s.repo.GetRun(ctx, id)
}

func (s *Service) compute(ctx context.Context, period, notes string) (string, string, error) {
	run, msg, err := s.repo.CreateRun(ctx, RunRequest{Period: period, Notes: notes})
	if err != nil {
		return msg, "", err
	}
	if msg == "" {
		msg = "Payroll for " + period + " started"
	}
	return msg, run.ID, nil
}

func (s *Service) record(ctx context.Context, period string, meta map[string]any) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, shared.AuditFromContext(ctx, "PAYROLL_TRIGGER", "payroll_period", period, meta)); err != nil {
		s.logger.Warn("audit payroll trigger", slog.Any("error", err))
	}
}
