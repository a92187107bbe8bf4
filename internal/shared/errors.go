package shared

import "errors"

// Session and sign-in errors. Resource-level sentinels live in httpx.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("not signed in")
	// ErrUnknownCompany is returned when switching to a company outside the
	// user's list.
	ErrUnknownCompany = errors.New("company not available for this user")

	ErrCSRFTokenMissing  = errors.New("csrf token missing")
	ErrCSRFTokenMismatch = errors.New("csrf token mismatch")
)
