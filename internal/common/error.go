// Package common defines shared constants and sentinel errors used across
// the sharelink server and agent. Callers should use errors.Is to match
// these values; transports translate them into status codes.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")
	ErrConflict   = errors.New("already exists")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrorValidation   = errors.New("validation error")
	ErrTooLarge       = errors.New("content too large")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
