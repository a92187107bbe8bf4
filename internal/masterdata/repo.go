package masterdata

import (
	"context"
	"net/url"

	"github.com/odyssey-erp/odyssey-hr/internal/platform/backend"
)

// Repository is the backend surface for master-data resources.
type Repository interface {
	List(ctx context.Context, res Resource, query url.Values) ([]Row, error)
	Get(ctx context.Context, res Resource, id string) (Row, error)
	Create(ctx context.Context, res Resource, row Row) (Row, string, error)
	Update(ctx context.Context, res Resource, id string, row Row) (string, error)
	Delete(ctx context.Context, res Resource, id string) (string, error)
	CreateMany(ctx context.Context, res Resource, rows []Row) (string, error)
	UpdateMany(ctx context.Context, res Resource, rows []Row) (string, error)
	DeleteMany(ctx context.Context, res Resource, ids []string) (string, error)
}

// BackendRepository implements Repository over the REST API. Bulk endpoints
// live under {path}/bulk.
type BackendRepository struct {
	client *backend.Client
}

// NewRepository constructs a BackendRepository.
func NewRepository(client *backend.Client) *BackendRepository {
	return &BackendRepository{client: client}
}

func (r *BackendRepository) List(ctx context.Context, res Resource, query url.Values) ([]Row, error) {
	var rows []Row
	if err := r.client.List(ctx, res.Path, query, &rows); err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []Row{}
	}
	return rows, nil
}

func (r *BackendRepository) Get(ctx context.Context, res Resource, id string) (Row, error) {
	var row Row
	if err := r.client.Get(ctx, backend.PathEscape(res.Path, id), nil, &row); err != nil {
		return nil, err
	}
	return row, nil
}

func (r *BackendRepository) Create(ctx context.Context, res Resource, row Row) (Row, string, error) {
	var created Row
	msg, err := r.client.Post(ctx, res.Path, row, &created)
	return created, msg, err
}

func (r *BackendRepository) Update(ctx context.Context, res Resource, id string, row Row) (string, error) {
	return r.client.Patch(ctx, backend.PathEscape(res.Path, id), row, nil)
}

func (r *BackendRepository) Delete(ctx context.Context, res Resource, id string) (string, error) {
	return r.client.Delete(ctx, backend.PathEscape(res.Path, id), nil)
}

func (r *BackendRepository) CreateMany(ctx context.Context, res Resource, rows []Row) (string, error) {
	return r.client.Post(ctx, res.Path+"/bulk", map[string]any{"items": rows}, nil)
}

func (r *BackendRepository) UpdateMany(ctx context.Context, res Resource, rows []Row) (string, error) {
	return r.client.Patch(ctx, res.Path+"/bulk", map[string]any{"items": rows}, nil)
}

func (r *BackendRepository) DeleteMany(ctx context.Context, res Resource, ids []string) (string, error) {
	return r.client.Delete(ctx, res.Path+"/bulk", map[string]any{"ids": ids})
}

var _ Repository = (*BackendRepository)(nil)
