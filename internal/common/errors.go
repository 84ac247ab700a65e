// Package common defines shared constants and sentinel errors used across
// the marketplace server. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrInternal        = errors.New("internal error")
	ErrUnauthenticated = errors.New("unauthenticated")

	// Unlock-specific errors.
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrUnlockFailed        = errors.New("unlock failed")

	// Auth errors.
	ErrInvalidToken       = errors.New("invalid token")
	ErrInvalidCredentials = errors.New("invalid login/password")

	// Payment errors.
	ErrInvalidSignature = errors.New("invalid payment signature")
)
