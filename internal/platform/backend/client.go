// Package backend is the HTTP client for the HR/ERP REST API. Every call carries
// the operator's bearer token and selected company taken from the context.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/odyssey-erp/odyssey-hr/internal/shared"
)

// CompanyHeader carries the selected company on every backend call.
const CompanyHeader = "X-Company-Id"

// Observer receives one observation per backend call.
type Observer interface {
	ObserveBackendCall(method, resource, outcome string, elapsed time.Duration)
}

// Client calls the backend API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	observer   Observer
	logger     *slog.Logger
}

// NewClient constructs a Client. observer and logger may be nil.
func NewClient(baseURL string, timeout time.Duration, observer Observer, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		observer:   observer,
		logger:     logger,
	}
}

// envelope fields stay raw: a bare document may carry its own string
// "status" (DRAFT, OPEN) which must not be mistaken for the envelope flag.
type envelope struct {
	Status  json.RawMessage `json:"status"`
	Message json.RawMessage `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// flag reports the envelope status and whether the body is an envelope at all.
func (e envelope) flag() (ok, isEnvelope bool) {
	switch string(bytes.TrimSpace(e.Status)) {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}

func (e envelope) message() string {
	var msg string
	_ = json.Unmarshal(e.Message, &msg)
	return msg
}

// Do performs a request and decodes the response into out (which may be nil).
// It returns the backend's message. Responses may be an envelope
// {status, message, data}, a bare array, or a bare object.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any) (string, error) {
	start := time.Now()
	message, err := c.do(ctx, method, path, query, body, out)
	c.observe(method, path, err, time.Since(start))
	return message, err
}

// Get fetches a single resource.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	_, err := c.Do(ctx, http.MethodGet, path, query, nil, out)
	return err
}

// List fetches a collection. out must point to a slice.
func (c *Client) List(ctx context.Context, path string, query url.Values, out any) error {
	_, err := c.Do(ctx, http.MethodGet, path, query, nil, out)
	return err
}

// Post sends a create or action request.
func (c *Client) Post(ctx context.Context, path string, body, out any) (string, error) {
	return c.Do(ctx, http.MethodPost, path, nil, body, out)
}

// Patch sends a partial update.
func (c *Client) Patch(ctx context.Context, path string, body, out any) (string, error) {
	return c.Do(ctx, http.MethodPatch, path, nil, body, out)
}

// Delete removes a resource. body is used by bulk deletes.
func (c *Client) Delete(ctx context.Context, path string, body any) (string, error) {
	return c.Do(ctx, http.MethodDelete, path, nil, body, nil)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) (string, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return "", fmt.Errorf("backend: encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return "", fmt.Errorf("backend: build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := shared.AccessTokenFromContext(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if company := shared.CompanyFromContext(ctx); company != "" {
		req.Header.Set(CompanyHeader, company)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("backend: %s %s: %w: %w", method, path, ErrUnavailable, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("backend: read %s %s: %w: %w", method, path, ErrUnavailable, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return "", &Error{Method: method, Path: path, StatusCode: resp.StatusCode, Message: extractMessage(raw)}
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return "", nil
	}

	if trimmed[0] == '[' {
		if out != nil {
			if err := json.Unmarshal(trimmed, out); err != nil {
				return "", fmt.Errorf("backend: decode %s %s: %w: %w", method, path, ErrUnavailable, err)
			}
		}
		return "", nil
	}

	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return "", fmt.Errorf("backend: decode %s %s: %w: %w", method, path, ErrUnavailable, err)
	}
	ok, isEnvelope := env.flag()
	if !isEnvelope {
		if out != nil {
			if err := json.Unmarshal(trimmed, out); err != nil {
				return "", fmt.Errorf("backend: decode %s %s: %w: %w", method, path, ErrUnavailable, err)
			}
		}
		return "", nil
	}
	msg := env.message()
	if !ok {
		return msg, &Error{Method: method, Path: path, StatusCode: http.StatusUnprocessableEntity, Message: msg}
	}
	if out != nil && len(env.Data) > 0 && !bytes.Equal(env.Data, []byte("null")) {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return "", fmt.Errorf("backend: decode %s %s: %w: %w", method, path, ErrUnavailable, err)
		}
	}
	return msg, nil
}

func (c *Client) observe(method, path string, err error, elapsed time.Duration) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
		var be *Error
		if errors.As(err, &be) && be.StatusCode < http.StatusInternalServerError {
			outcome = "rejected"
		}
	}
	if c.observer != nil {
		c.observer.ObserveBackendCall(method, resourceOf(path), outcome, elapsed)
	}
	if c.logger != nil {
		c.logger.Debug("backend call",
			slog.String("method", method),
			slog.String("path", path),
			slog.String("outcome", outcome),
			slog.Duration("elapsed", elapsed))
	}
}

func extractMessage(raw []byte) string {
	var env struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return ""
	}
	if env.Message != "" {
		return env.Message
	}
	return env.Error
}

// resourceOf returns the first path segment, used as a low-cardinality label.
func resourceOf(path string) string {
	path = strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(path, '/'); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return "root"
	}
	return path
}

// PathEscape joins a base path and an id.
func PathEscape(base, id string) string {
	return strings.TrimRight(base, "/") + "/" + url.PathEscape(id)
}
