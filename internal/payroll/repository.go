package payroll

import (
	"context"
	"net/url"

	"github.com/odyssey-erp/odyssey-hr/internal/platform/backend"
)

const runsPath = "/payroll/runs"

// Repository is the backend surface for payroll runs.
type Repository interface {
	ListRuns(ctx context.Context, query url.Values) ([]Run, error)
	GetRun(ctx context.Context, id string) (Run, error)
	CreateRun(ctx context.Context, req RunRequest) (Run, string, error)
}

// BackendRepository implements Repository over the REST API.
type BackendRepository struct {
	client *backend.Client
}

// NewRepository constructs a BackendRepository.
func NewRepository(client *backend.Client) *BackendRepository {
	return &BackendRepository{client: client}
}

func (r *BackendRepository) ListRuns(ctx context.Context, query url.Values) ([]Run, error) {
	var runs []Run
	if err := r.client.List(ctx, runsPath, query, &runs); err != nil {
		return nil, err
	}
	if runs == nil {
		runs = []Run{}
	}
	return runs, nil
}

func (r *BackendRepository) GetRun(ctx context.Context, id string) (Run, error) {
	var run Run
	err := r.client.Get(ctx, backend.PathEscape(runsPath, id), nil, &run)
	return run, err
}

func (r *BackendRepository) CreateRun(ctx context.Context, req RunRequest) (Run, string, error) {
	var run Run
	msg, err := r.client.Post(ctx, runsPath, req, &run)
	return run, msg, err
}
