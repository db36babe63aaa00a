package auth

import "errors"

// MsgRateLimited is shown on the login page when ErrRateLimited is returned.
const MsgRateLimited = "Too many login attempts. Please wait a moment and try again."

// Errors returned by the auth package.
var (
	// ErrInvalidConfig indicates invalid configuration.
	ErrInvalidConfig = errors.New("auth: invalid configuration")

	// ErrNoSession is returned when the request has no valid admin session.
	ErrNoSession = errors.New("auth: no admin session")

	// ErrRateLimited is returned when a client makes too many login attempts.
	ErrRateLimited = errors.New("auth: too many login attempts")

	// ErrCSRF is returned when a state-changing request has a missing or
	// mismatched CSRF token.
	ErrCSRF = errors.New("auth: invalid CSRF token")

	// ErrBodyTooLarge is returned when the request body was cut off by
	// http.MaxBytesReader before its CSRF token could be read.
	ErrBodyTooLarge = errors.New("auth: request body too large")
)
