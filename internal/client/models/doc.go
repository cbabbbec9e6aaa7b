// Package models defines the request and response payloads of the cookquest
// REST API. Response types implement Validate so malformed server payloads
// are rejected at the client boundary instead of leaking into callers.
package models
