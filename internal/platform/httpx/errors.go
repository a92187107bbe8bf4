package httpx

import (
	"errors"
	"net/http"
)

// Sentinel errors shared by domain packages.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrValidation   = errors.New("validation failed")
	ErrInvalidState = errors.New("action not allowed in current status")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	ErrUpstream     = errors.New("upstream failure")
)

// GenericMessage is shown when an error carries nothing safe to display.
const GenericMessage = "An unexpected error occurred"

// UserMessager is implemented by errors whose message is safe to show.
type UserMessager interface {
	UserMessage() string
}

// StatusCoder is implemented by errors that know their HTTP status.
type StatusCoder interface {
	HTTPStatus() int
}

// StatusFor maps an error to an HTTP status code.
func StatusFor(err error) int {
	var coder StatusCoder
	switch {
	case errors.As(err, &coder):
		return coder.HTTPStatus()
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// MessageFor returns the user-safe text for err.
func MessageFor(err error) string {
	var um UserMessager
	if errors.As(err, &um) {
		if msg := um.UserMessage(); msg != "" {
			return msg
		}
	}
	switch StatusFor(err) {
	case http.StatusInternalServerError, http.StatusBadGateway:
		return GenericMessage
	}
	return err.Error()
}

// RespondError writes a failed envelope for err.
func RespondError(w http.ResponseWriter, err error) {
	Fail(w, StatusFor(err), MessageFor(err))
}

// ValidationError carries a user-facing validation message and wraps
// ErrValidation.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Unwrap ties the error to ErrValidation.
func (e *ValidationError) Unwrap() error { return ErrValidation }

// UserMessage implements UserMessager.
func (e *ValidationError) UserMessage() string { return e.Message }

// Invalid builds a ValidationError.
func Invalid(message string) error {
	return &ValidationError{Message: message}
}
