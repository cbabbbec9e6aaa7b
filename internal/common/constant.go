// Package common contains shared constants and sentinel errors used across
// cookquest components.
package common

// Outbound HTTP header names.
const (
	AuthorizationHeaderName = "Authorization"
	RequestIDHeaderName     = "X-Request-ID"
	ContentTypeHeaderName   = "Content-Type"
	AcceptHeaderName        = "Accept"
	UserAgentHeaderName     = "User-Agent"

	BearerPrefix = "Bearer "

	ContentTypeJSON = "application/json"
)

// Secure store keys owned by the token store. Nothing else should read or
// write them directly.
const (
	AccessTokenKey  = "auth.access_token"
	RefreshTokenKey = "auth.refresh_token"
	ExpiresAtKey    = "auth.expires_at_ms"
)
