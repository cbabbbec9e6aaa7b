package client

import (
	"errors"
	"fmt"
)

var (
	ErrUnavailable    = errors.New("server unavailable")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrSessionExpired = errors.New("session expired")
)

// ErrorCode classifies an APIError. UI callers switch on it to choose between
// a retry affordance and a re-authentication prompt.
type ErrorCode string

const (
	CodeNetwork        ErrorCode = "network"
	CodeTimeout        ErrorCode = "timeout"
	CodeCanceled       ErrorCode = "canceled"
	CodeClient         ErrorCode = "client"
	CodeUnauthorized   ErrorCode = "unauthorized"
	CodeSessionExpired ErrorCode = "session_expired"
	CodeServer         ErrorCode = "server"
	CodeSerialization  ErrorCode = "serialization"
)

// APIError is the failure descriptor returned by the executor and by
// Response.Decode.
type APIError struct {
	// Status is the HTTP status of the last response, 0 when none arrived.
	Status int
	Code   ErrorCode
	// Message is the server-provided message when there is one.
	Message string
	// Raw is the response body text, kept for serialization failures and
	// debugging.
	Raw string
	// Attempts is the number of requests issued for the call.
	Attempts int
	Err      error

	// access token the failing attempt was sent with
	token string
}

func (e *APIError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s: %s (status %d)", e.Code, e.Message, e.Status)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *APIError) Unwrap() error { return e.Err }

// Is maps codes onto the package sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnavailable:
		return e.Code == CodeNetwork || e.Code == CodeTimeout || e.Code == CodeServer
	case ErrUnauthorized:
		return e.Code == CodeUnauthorized || e.Code == CodeSessionExpired
	case ErrSessionExpired:
		return e.Code == CodeSessionExpired
	}
	return false
}

// Retryable reports whether the executor may issue another attempt.
func (e *APIError) Retryable() bool {
	switch e.Code {
	case CodeNetwork, CodeTimeout, CodeServer:
		return true
	}
	return false
}

func (e *APIError) sessionExpired(cause error) *APIError {
	return &APIError{
		Status:   e.Status,
		Code:     CodeSessionExpired,
		Message:  "session expired, please log in again",
		Raw:      e.Raw,
		Attempts: e.Attempts,
		Err:      cause,
	}
}

// AsAPIError extracts the *APIError from err's chain.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	if apiErr, ok := AsAPIError(err); ok {
		return apiErr.Status
	}
	return 0
}
