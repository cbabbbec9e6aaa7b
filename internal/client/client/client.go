package client

import (
	"context"

	"github.com/dmitrijs2005/cookquest/internal/client/tokens"
)

// Client is what the typed API services need from the executor.
type Client interface {
	Do(ctx context.Context, req Request) (*Response, error)
	Ping(ctx context.Context) error
}

// TokenStore is the executor's view of the token pair. It is read on every
// attempt and never cached.
type TokenStore interface {
	AccessToken(ctx context.Context) (string, error)
	RefreshToken(ctx context.Context) (string, error)
	Save(ctx context.Context, p tokens.Pair) error
	Clear(ctx context.Context) error
}
