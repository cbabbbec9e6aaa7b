package models

import (
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/dmitrijs2005/cookquest/internal/client/tokens"
	"github.com/dmitrijs2005/cookquest/internal/timex"
)

const MinPasswordLength = 8

var (
	ErrInvalidEmail     = errors.New("invalid email address")
	ErrPasswordTooShort = errors.New("password is too short")
	ErrEmptyDisplayName = errors.New("display name is required")
	ErrMissingToken     = errors.New("access_token is required")
)

// Credentials is the login request body.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c Credentials) Validate() error {
	if _, err := mail.ParseAddress(c.Email); err != nil {
		return ErrInvalidEmail
	}
	if c.Password == "" {
		return ErrPasswordTooShort
	}
	return nil
}

// Registration is the sign-up request body.
type Registration struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

func (r Registration) Validate() error {
	if _, err := mail.ParseAddress(r.Email); err != nil {
		return ErrInvalidEmail
	}
	if len(r.Password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if strings.TrimSpace(r.DisplayName) == "" {
		return ErrEmptyDisplayName
	}
	return nil
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// TokenResponse is returned by login, register and refresh. ExpiresAt is
// epoch milliseconds; ExpiresIn is seconds from now. Either may be absent.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int64  `json:"expires_in,omitempty"`
	ExpiresAt    int64  `json:"expires_at,omitempty"`
}

func (r TokenResponse) Validate() error {
	if r.AccessToken == "" {
		return ErrMissingToken
	}
	if r.ExpiresIn < 0 || r.ExpiresAt < 0 {
		return errors.New("token expiry must not be negative")
	}
	return nil
}

// Pair converts the response into a token pair, preferring an absolute
// expiry over a relative one.
func (r TokenResponse) Pair(now time.Time) tokens.Pair {
	p := tokens.Pair{AccessToken: r.AccessToken, RefreshToken: r.RefreshToken}
	switch {
	case r.ExpiresAt > 0:
		p.ExpiresAt = timex.UnixMilli(r.ExpiresAt)
	case r.ExpiresIn > 0:
		p.ExpiresAt = now.Add(time.Duration(r.ExpiresIn) * time.Second).UTC()
	}
	return p
}

type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

// AuthResponse is the login/register payload: a token pair plus the user.
type AuthResponse struct {
	TokenResponse
	User User `json:"user"`
}

func (r AuthResponse) Validate() error {
	if err := r.TokenResponse.Validate(); err != nil {
		return err
	}
	if r.User.ID == "" {
		return errors.New("user.id is required")
	}
	return nil
}
