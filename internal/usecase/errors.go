package usecase

import "errors"

// Service boundary sentinels. Callers classify failures with errors.Is;
// the HTTP layer translates each one into a status code and reason.
var (
	// ErrInvalidInput rejects a request before any provider is touched:
	// missing league code, malformed dates, an inverted window.
	ErrInvalidInput = errors.New("invalid request")
	// ErrNotFound covers a league no enabled provider can serve, or a
	// served league whose standings came back empty.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized surfaces rejected provider credentials.
	ErrUnauthorized = errors.New("not authorized")
	// ErrDependencyUnavailable wraps an AllFailedError once every
	// candidate provider has been tried and lost.
	ErrDependencyUnavailable = errors.New("upstream providers unavailable")
)
