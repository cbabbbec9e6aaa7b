// Package tokens owns the persisted access/refresh token pair. It is the only
// code that reads or writes the token keys of the secure store, and it never
// keeps an in-memory copy: every Load goes back to storage so a refresh done
// by one request is visible to the next.
package tokens

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/cookquest/internal/client/securestore"
	"github.com/dmitrijs2005/cookquest/internal/common"
	"github.com/dmitrijs2005/cookquest/internal/timex"
	"github.com/golang-jwt/jwt/v5"
)

// Pair is the credential pair issued by the auth endpoints. A zero ExpiresAt
// means the expiry is unknown.
type Pair struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// Empty reports whether the pair carries no access token.
func (p Pair) Empty() bool { return p.AccessToken == "" }

// Expired reports whether the access token is known to be past its expiry at now.
func (p Pair) Expired(now time.Time) bool {
	return !p.ExpiresAt.IsZero() && !now.Before(p.ExpiresAt)
}

// Store persists a Pair in a securestore.Store.
type Store struct {
	kv securestore.Store
}

func NewStore(kv securestore.Store) *Store {
	return &Store{kv: kv}
}

// Load reads the current pair. Missing keys yield an empty Pair, not an error.
func (s *Store) Load(ctx context.Context) (Pair, error) {
	var p Pair

	access, _, err := s.kv.Get(ctx, common.AccessTokenKey)
	if err != nil {
		return Pair{}, fmt.Errorf("load access token: %w", err)
	}
	p.AccessToken = access

	refresh, _, err := s.kv.Get(ctx, common.RefreshTokenKey)
	if err != nil {
		return Pair{}, fmt.Errorf("load refresh token: %w", err)
	}
	p.RefreshToken = refresh

	exp, found, err := s.kv.Get(ctx, common.ExpiresAtKey)
	if err != nil {
		return Pair{}, fmt.Errorf("load token expiry: %w", err)
	}
	if found && exp != "" {
		ms, err := strconv.ParseInt(exp, 10, 64)
		if err == nil {
			p.ExpiresAt = timex.UnixMilli(ms)
		}
	}

	return p, nil
}

// AccessToken returns the stored access token, or "" when there is none.
func (s *Store) AccessToken(ctx context.Context) (string, error) {
	v, _, err := s.kv.Get(ctx, common.AccessTokenKey)
	if err != nil {
		return "", fmt.Errorf("load access token: %w", err)
	}
	return v, nil
}

// RefreshToken returns the stored refresh token or common.ErrNoRefreshToken.
func (s *Store) RefreshToken(ctx context.Context) (string, error) {
	v, found, err := s.kv.Get(ctx, common.RefreshTokenKey)
	if err != nil {
		return "", fmt.Errorf("load refresh token: %w", err)
	}
	if !found || v == "" {
		return "", common.ErrNoRefreshToken
	}
	return v, nil
}

// Save writes p. The refresh token is only replaced when p carries one, so a
// server that does not rotate refresh tokens keeps the old one valid. When
// ExpiresAt is zero it is derived from the access token's exp claim if
// possible.
func (s *Store) Save(ctx context.Context, p Pair) error {
	if p.AccessToken == "" {
		return errors.New("save tokens: empty access token")
	}

	if p.ExpiresAt.IsZero() {
		if exp, ok := ExpiryFromJWT(p.AccessToken); ok {
			p.ExpiresAt = exp
		}
	}

	values := map[string]string{
		common.AccessTokenKey: p.AccessToken,
		common.ExpiresAtKey:   strconv.FormatInt(timex.ToUnixMilli(p.ExpiresAt), 10),
	}
	if p.RefreshToken != "" {
		values[common.RefreshTokenKey] = p.RefreshToken
	}

	if err := securestore.SetMany(ctx, s.kv, values); err != nil {
		return fmt.Errorf("save tokens: %w", err)
	}
	return nil
}

// Clear removes every token key. All deletes are attempted.
func (s *Store) Clear(ctx context.Context) error {
	return errors.Join(
		s.kv.Delete(ctx, common.AccessTokenKey),
		s.kv.Delete(ctx, common.RefreshTokenKey),
		s.kv.Delete(ctx, common.ExpiresAtKey),
	)
}

// ExpiryFromJWT reads the exp claim of a JWT without verifying its signature;
// the client never holds the signing key. ok is false for opaque tokens or
// tokens without exp.
func ExpiryFromJWT(token string) (time.Time, bool) {
	claims := jwt.RegisteredClaims{}
	_, _, err := jwt.NewParser().ParseUnverified(token, &claims)
	if err != nil || claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.UTC(), true
}
