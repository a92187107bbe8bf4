package payroll

import (
	"fmt"
	"time"

	"github.com/odyssey-erp/odyssey-hr/internal/platform/httpx"
)

// RunStatus is the backend-owned status of a payroll run.
type RunStatus string

const (
	RunStatusQueued     RunStatus = "QUEUED"
	RunStatusProcessing RunStatus = "PROCESSING"
	RunStatusCompleted  RunStatus = "COMPLETED"
	RunStatusFailed     RunStatus = "FAILED"
)

// Run is a payroll computation for one company and period.
type Run struct {
	ID            string    `json:"id"`
	Period        string    `json:"period"`
	Status        RunStatus `json:"status"`
	EmployeeCount int       `json:"employeeCount"`
	GrossTotal    float64   `json:"grossTotal"`
	DeductionSum  float64   `json:"deductionTotal"`
	NetTotal      float64   `json:"netTotal"`
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     string    `json:"createdAt,omitempty"`
	CompletedAt   string    `json:"completedAt,omitempty"`
}

// RunRequest is sent to the backend to start a computation.
type RunRequest struct {
	Period string `json:"period"`
	Notes  string `json:"notes,omitempty"`
}

// TriggerInput is the operator's request to compute a period.
type TriggerInput struct {
	Period string `json:"period" validate:"required"`
	Notes  string `json:"notes" validate:"max=500"`
}

// Trigger describes how a run request was handled.
type Trigger struct {
	Period string `json:"period"`
	TaskID string `json:"taskId,omitempty"`
	Queued bool   `json:"queued"`
	RunID  string `json:"runId,omitempty"`
}

const periodLayout = "2006-01"

var (
	// ErrRunPending occurs when a run for the period is already queued.
	ErrRunPending = fmt.Errorf("payroll: %w", httpx.ErrInvalidState)
)

// ParsePeriod validates a YYYY-MM period that is not later than the month of
// now.
func ParsePeriod(period string, now time.Time) (time.Time, error) {
	t, err := time.Parse(periodLayout, period)
	if err != nil {
		return time.Time{}, httpx.Invalid("Period must be in YYYY-MM format")
	}
	current := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	if t.After(current) {
		return time.Time{}, httpx.Invalid("Payroll cannot be computed for a future period")
	}
	return t, nil
}
