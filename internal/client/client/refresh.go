package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/cookquest/internal/client/models"
	"github.com/dmitrijs2005/cookquest/internal/common"
)

// refreshAndReplay handles a terminal 401 from the first pass of req.
func (e *Executor) refreshAndReplay(ctx context.Context, req Request, orig *APIError) (*Response, error) {
	if e.tokens == nil {
		return nil, orig.sessionExpired(ErrSessionExpired)
	}

	// another call may have refreshed while this one was in flight
	if current, err := e.tokens.AccessToken(ctx); err == nil && current != "" && current != orig.token {
		e.logger.Debug(ctx, "access token changed since the 401, replaying", "path", req.Path)
		return e.replay(ctx, req)
	}

	refreshToken, err := e.tokens.RefreshToken(ctx)
	if errors.Is(err, common.ErrNoRefreshToken) {
		e.logger.Warn(ctx, "no refresh token, clearing session")
		e.clearTokens(ctx)
		return nil, orig.sessionExpired(errors.Join(ErrSessionExpired, err))
	}
	if err != nil {
		// unreadable store: the session may still be valid, keep it
		e.logger.Error(ctx, "cannot read refresh token", "error", err)
		out := *orig
		out.Err = errors.Join(orig.Err, err)
		return nil, &out
	}

	// The refresh runs detached from ctx: a caller giving up must not leave
	// a half-rotated token pair behind.
	ch := e.refreshGroup.DoChan(refreshToken, func() (any, error) {
		return nil, e.refresh(context.WithoutCancel(ctx), refreshToken)
	})

	select {
	case <-ctx.Done():
		return nil, &APIError{Status: orig.Status, Code: CodeCanceled, Message: "request canceled during token refresh", Attempts: orig.Attempts, Err: ctx.Err()}
	case res := <-ch:
		if res.Err != nil {
			return nil, orig.sessionExpired(errors.Join(ErrSessionExpired, res.Err))
		}
	}

	if ctx.Err() != nil {
		return nil, &APIError{Status: orig.Status, Code: CodeCanceled, Message: "request canceled after token refresh", Attempts: orig.Attempts, Err: ctx.Err()}
	}
	return e.replay(ctx, req)
}

// replay issues req exactly once more, without retries. Its outcome is
// final: a second 401 is returned as is.
func (e *Executor) replay(ctx context.Context, req Request) (*Response, error) {
	req.SkipRefresh = true
	req.MaxAttempts = 1
	return e.execute(ctx, req)
}

// refresh exchanges refreshToken for a new pair and persists it. Any failure
// clears the stored tokens.
func (e *Executor) refresh(ctx context.Context, refreshToken string) error {
	e.logger.Info(ctx, "refreshing access token")

	err := e.doRefresh(ctx, refreshToken)
	e.metrics.Refresh(err == nil)
	if err != nil {
		e.logger.Warn(ctx, "token refresh failed, clearing session", "error", err)
		e.clearTokens(ctx)
		return err
	}
	return nil
}

func (e *Executor) doRefresh(ctx context.Context, refreshToken string) error {
	resp, err := e.execute(ctx, Request{
		Method:      MethodPost,
		Path:        e.opts.RefreshPath,
		Body:        models.RefreshRequest{RefreshToken: refreshToken},
		MaxAttempts: 1,
		SkipAuth:    true,
		SkipRefresh: true,
	})
	if err != nil {
		return fmt.Errorf("refresh call: %w", err)
	}

	tr, err := DecodeAs[models.TokenResponse](resp)
	if err != nil {
		return fmt.Errorf("refresh response: %w", err)
	}

	if err := e.tokens.Save(ctx, tr.Pair(e.now())); err != nil {
		return fmt.Errorf("persist refreshed tokens: %w", err)
	}
	return nil
}

func (e *Executor) clearTokens(ctx context.Context) {
	if err := e.tokens.Clear(ctx); err != nil {
		e.logger.Error(ctx, "cannot clear stored tokens", "error", err)
	}
}
