package jobs

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskPayrollCompute asks the backend to compute payroll for one period.
	TaskPayrollCompute = "payroll:compute"
	// TaskMasterDataWarmup preloads master-data list caches for a company.
	TaskMasterDataWarmup = "masterdata:warmup"
)

// ErrDuplicateTask is returned when an identical task is already queued.
var ErrDuplicateTask = errors.New("jobs: task already queued")

// PayrollComputePayload describes a payroll run request. Token is the sealed
// access token of the operator who triggered the run.
type PayrollComputePayload struct {
	CompanyID   string `json:"company_id"`
	Period      string `json:"period"`
	Notes       string `json:"notes,omitempty"`
	RequestedBy string `json:"requested_by"`
	Token       string `json:"token"`
}

// MasterDataWarmupPayload lists the resources to warm. An empty list warms
// every known resource.
type MasterDataWarmupPayload struct {
	CompanyID string   `json:"company_id"`
	Resources []string `json:"resources,omitempty"`
	Token     string   `json:"token"`
}

// NewPayrollComputeTask constructs a payroll compute task. The task id keeps
// one pending run per company and period.
func NewPayrollComputeTask(payload PayrollComputePayload) (*asynq.Task, error) {
	if payload.CompanyID == "" || payload.Period == "" {
		return nil, errors.New("payroll compute: company and period required")
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPayrollCompute, data,
		asynq.TaskID(PayrollTaskID(payload.CompanyID, payload.Period)),
		asynq.MaxRetry(3),
	), nil
}

// PayrollTaskID is the queue id of a company's run for period.
func PayrollTaskID(companyID, period string) string {
	return strings.Join([]string{TaskPayrollCompute, companyID, period}, ":")
}

// NewMasterDataWarmupTask constructs a cache warmup task.
func NewMasterDataWarmupTask(payload MasterDataWarmupPayload) (*asynq.Task, error) {
	if payload.CompanyID == "" {
		return nil, errors.New("masterdata warmup: company required")
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskMasterDataWarmup, data, asynq.MaxRetry(1)), nil
}
