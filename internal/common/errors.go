// Package common defines shared constants and sentinel errors used across
// the client engine and the mirror server. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound   = errors.New("not found")
	ErrorConstraint = errors.New("constraint violation")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Remote mirror / live provider errors. ErrorUnavailable and
	// ErrorRateLimited are the transient ones; the scheduler retries them
	// with backoff, everything else is terminal for a job run.
	ErrorUnavailable = errors.New("remote unavailable")
	ErrorRateLimited = errors.New("rate limited")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// Transient reports whether err is a retry-eligible failure: the remote
// store or provider was unreachable, timed out, or throttled the call.
func Transient(err error) bool {
	return errors.Is(err, ErrorUnavailable) || errors.Is(err, ErrorRateLimited)
}
