package backend

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/odyssey-erp/odyssey-hr/internal/platform/httpx"
)

// ErrUnavailable marks transport and decoding failures.
var ErrUnavailable = fmt.Errorf("backend unavailable: %w", httpx.ErrUpstream)

// Error is a failure reported by the backend, either through an HTTP error
// status or an envelope with status=false.
type Error struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("backend: %s %s: %d %s", e.Method, e.Path, e.StatusCode, msg)
}

// UserMessage returns the backend message, which the UI shows verbatim.
func (e *Error) UserMessage() string {
	if e.StatusCode >= http.StatusInternalServerError {
		return httpx.GenericMessage
	}
	if e.Message == "" {
		return http.StatusText(e.StatusCode)
	}
	return e.Message
}

// HTTPStatus maps the backend status onto the console's response status.
func (e *Error) HTTPStatus() int {
	switch {
	case e.StatusCode == http.StatusUnauthorized:
		return http.StatusUnauthorized
	case e.StatusCode == http.StatusForbidden:
		return http.StatusForbidden
	case e.StatusCode == http.StatusNotFound:
		return http.StatusNotFound
	case e.StatusCode == http.StatusConflict:
		return http.StatusConflict
	case e.StatusCode >= http.StatusInternalServerError:
		return http.StatusBadGateway
	default:
		return http.StatusBadRequest
	}
}

// Unwrap ties the error to the httpx sentinels.
func (e *Error) Unwrap() error {
	switch e.HTTPStatus() {
	case http.StatusUnauthorized:
		return httpx.ErrUnauthorized
	case http.StatusForbidden:
		return httpx.ErrForbidden
	case http.StatusNotFound:
		return httpx.ErrNotFound
	case http.StatusConflict:
		return httpx.ErrInvalidState
	case http.StatusBadGateway:
		return httpx.ErrUpstream
	default:
		return httpx.ErrValidation
	}
}

// IsUnauthorized reports whether the backend rejected the bearer token.
func IsUnauthorized(err error) bool {
	var be *Error
	return errors.As(err, &be) && be.StatusCode == http.StatusUnauthorized
}
