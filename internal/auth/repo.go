package auth

import (
	"context"

	"github.com/odyssey-erp/odyssey-hr/internal/platform/backend"
)

// Repository is the backend surface used by the auth module.
type Repository interface {
	Login(ctx context.Context, email, password string) (LoginResult, error)
	Me(ctx context.Context) (Principal, error)
	Companies(ctx context.Context) ([]Company, error)
}

// BackendRepository implements Repository against the REST API.
type BackendRepository struct {
	client *backend.Client
}

// NewRepository constructs a backend repository.
func NewRepository(client *backend.Client) *BackendRepository {
	return &BackendRepository{client: client}
}

// Login exchanges credentials for an access token.
func (r *BackendRepository) Login(ctx context.Context, email, password string) (LoginResult, error) {
	var res LoginResult
	_, err := r.client.Post(ctx, "/auth/login", map[string]string{"email": email, "password": password}, &res)
	return res, err
}

// Me fetches the principal for the bearer token in ctx.
func (r *BackendRepository) Me(ctx context.Context) (Principal, error) {
	var p Principal
	err := r.client.Get(ctx, "/auth/me", nil, &p)
	return p, err
}

// Companies lists the companies the bearer may act on.
func (r *BackendRepository) Companies(ctx context.Context) ([]Company, error) {
	var companies []Company
	err := r.client.List(ctx, "/companies", nil, &companies)
	return companies, err
}

var _ Repository = (*BackendRepository)(nil)
