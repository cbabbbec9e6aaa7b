package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/cookquest/internal/client/cache"
	"github.com/dmitrijs2005/cookquest/internal/client/client"
	"github.com/dmitrijs2005/cookquest/internal/client/cooldown"
	"github.com/dmitrijs2005/cookquest/internal/client/models"
	"github.com/dmitrijs2005/cookquest/internal/client/tokens"
	"github.com/dmitrijs2005/cookquest/internal/logging"
)

// AuthService manages the user session.
//
// Contract:
//   - Login/Register: authenticate against the server and persist the token pair.
//   - Logout: best-effort server logout, then wipe tokens, cache and cooldowns.
//   - Session: the stored pair, re-read from storage.
//   - IsLoggedIn: whether a usable session is stored.
//   - Ping: check server liveness.
type AuthService interface {
	Login(ctx context.Context, email, password string) (models.User, error)
	Register(ctx context.Context, email, password, displayName string) (models.User, error)
	Logout(ctx context.Context) error
	Session(ctx context.Context) (tokens.Pair, error)
	IsLoggedIn(ctx context.Context) (bool, error)
	Ping(ctx context.Context) error
}

type authService struct {
	client client.Client
	tokens TokenStore
	cache  *cache.Cache
	gate   *cooldown.Gate
	logger logging.Logger
	now    func() time.Time
}

// NewAuthService constructs an AuthService. d.Tokens is required.
func NewAuthService(d Deps) AuthService {
	return newAuthService(d.withDefaults())
}

func newAuthService(d Deps) *authService {
	return &authService{client: d.Client, tokens: d.Tokens, cache: d.Cache, gate: d.Gate, logger: d.Logger, now: d.Now}
}

func (a *authService) Login(ctx context.Context, email, password string) (models.User, error) {
	creds := models.Credentials{Email: email, Password: password}
	if err := validate(creds); err != nil {
		return models.User{}, err
	}

	resp, err := call[models.AuthResponse](ctx, a.client, client.Request{
		Method:      client.MethodPost,
		Path:        loginPath,
		Body:        creds,
		SkipAuth:    true,
		SkipRefresh: true,
	})
	if err != nil {
		return models.User{}, fmt.Errorf("login error: %w", err)
	}

	if err := a.startSession(ctx, resp); err != nil {
		return models.User{}, err
	}
	a.logger.Info(ctx, "logged in", "user_id", resp.User.ID)
	return resp.User, nil
}

func (a *authService) Register(ctx context.Context, email, password, displayName string) (models.User, error) {
	reg := models.Registration{Email: email, Password: password, DisplayName: displayName}
	if err := validate(reg); err != nil {
		return models.User{}, err
	}

	resp, err := call[models.AuthResponse](ctx, a.client, client.Request{
		Method:      client.MethodPost,
		Path:        registerPath,
		Body:        reg,
		SkipAuth:    true,
		SkipRefresh: true,
	})
	if err != nil {
		return models.User{}, fmt.Errorf("register error: %w", err)
	}

	if err := a.startSession(ctx, resp); err != nil {
		return models.User{}, err
	}
	a.logger.Info(ctx, "registered", "user_id", resp.User.ID)
	return resp.User, nil
}

// startSession stores the new pair and drops state cached for a previous user.
func (a *authService) startSession(ctx context.Context, resp models.AuthResponse) error {
	if err := a.tokens.Save(ctx, resp.Pair(a.now())); err != nil {
		return fmt.Errorf("saving session error: %w", err)
	}
	if err := a.cache.Clear(ctx); err != nil {
		a.logger.Warn(ctx, "cannot clear response cache", "error", err)
	}
	a.gate.Reset()
	return nil
}

// Logout always clears local state, even when the server call fails.
func (a *authService) Logout(ctx context.Context) error {
	_, err := a.client.Do(ctx, client.Request{
		Method:      client.MethodPost,
		Path:        logoutPath,
		MaxAttempts: 1,
		SkipRefresh: true,
	})
	if err != nil {
		a.logger.Warn(ctx, "server logout failed, clearing local session anyway", "error", err)
	}

	a.gate.Reset()
	return errors.Join(a.tokens.Clear(ctx), a.cache.Clear(ctx))
}

func (a *authService) Session(ctx context.Context) (tokens.Pair, error) {
	return a.tokens.Load(ctx)
}

// IsLoggedIn reports whether the stored session can authorise a call: an
// unexpired access token, or any access token backed by a refresh token.
func (a *authService) IsLoggedIn(ctx context.Context) (bool, error) {
	p, err := a.tokens.Load(ctx)
	if err != nil {
		return false, err
	}
	if p.Empty() {
		return false, nil
	}
	return p.RefreshToken != "" || !p.Expired(a.now()), nil
}

func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}
