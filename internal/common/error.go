// Package common defines shared constants and sentinel errors used across
// client layers of cookquest. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Storage-level errors.
	ErrorNotFound = errors.New("not found")

	// Validation errors raised when a server payload fails its schema.
	ErrInvalidPayload = errors.New("invalid payload")

	// Token lifecycle errors.
	ErrNoRefreshToken = errors.New("no refresh token stored")
)
