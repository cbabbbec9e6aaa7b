// Package client is the HTTP request core of the cookquest client.
//
// # Overview
//
// The package provides:
//  1. Request, a method/path/body descriptor that is turned into a fresh
//     *http.Request for every attempt, so a replay after a token refresh
//     carries the new Authorization header.
//  2. Executor, which merges default, caller and bearer headers, bounds every
//     attempt with a timeout, classifies the outcome and retries transport
//     failures, timeouts and 5xx responses with a fixed delay.
//  3. A 401 interceptor inside Executor.Do: one refresh with the stored
//     refresh token (shared by concurrent callers), then exactly one replay.
//     A failed refresh clears the stored tokens.
//
// # Error Handling
//
// Every failure crossing Do is an *APIError carrying the HTTP status and a
// Code. Coarse conditions are reachable with errors.Is: ErrUnavailable
// (network, timeout, 5xx), ErrUnauthorized (401, expired session) and
// ErrSessionExpired (refresh impossible or failed).
//
// # Concurrency & Contexts
//
// Executor is safe for concurrent use. Attempts of one call are strictly
// sequential. Cancelling ctx stops the current attempt and any pending retry;
// a refresh already in flight is allowed to finish and persist its tokens.
package client
