// Package common defines shared constants and sentinel errors used across
// the sixtyfix server layers. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Validation failures surfaced to the caller as human-readable text.
	ErrorValidation = errors.New("validation error")

	// Auth errors (invalid, expired, or wrong-purpose token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Duplicate username or email on registration.
	ErrorAlreadyExists = errors.New("already exists")

	// Login attempted before the email was confirmed, with
	// verification enforcement enabled.
	ErrEmailNotVerified = errors.New("email not verified")
)
