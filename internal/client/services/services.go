// Package services is the typed API facade of the cookquest client. Each
// service turns domain calls into executor requests, consults the response
// cache for reads and invalidates the affected keys after writes.
package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/cookquest/internal/client/cache"
	"github.com/dmitrijs2005/cookquest/internal/client/client"
	"github.com/dmitrijs2005/cookquest/internal/client/cooldown"
	"github.com/dmitrijs2005/cookquest/internal/client/metrics"
	"github.com/dmitrijs2005/cookquest/internal/client/tokens"
	"github.com/dmitrijs2005/cookquest/internal/logging"
)

// ErrInvalidInput wraps validation failures of caller-supplied values.
var ErrInvalidInput = errors.New("invalid input")

const (
	DefaultCacheTTL   = 5 * time.Minute
	DefaultXPCooldown = 3 * time.Second
)

// REST paths owned by the backend.
const (
	loginPath     = "/api/v1/auth/login"
	registerPath  = "/api/v1/auth/register"
	logoutPath    = "/api/v1/auth/logout"
	recipesPath   = "/api/v1/recipes"
	favoritesPath = "/api/v1/favorites"
	progressPath  = "/api/v1/gamification/progress"
	addXPPath     = "/api/v1/gamification/add-xp"
	streakPath    = "/api/v1/gamification/streak/increment"
)

// Cache keys.
const (
	recipeKeyPrefix     = "recipe:"
	recipeListKeyPrefix = "recipes:list:"
	favoritesKey        = "favorites"
	progressKey         = "gamification:progress"
)

func recipeKey(id string) string { return recipeKeyPrefix + id }

// TokenStore is the session view the auth service needs.
type TokenStore interface {
	Load(ctx context.Context) (tokens.Pair, error)
	Save(ctx context.Context, p tokens.Pair) error
	Clear(ctx context.Context) error
}

// Deps are the collaborators shared by all services.
type Deps struct {
	Client client.Client
	Tokens TokenStore
	Cache  *cache.Cache
	Gate   *cooldown.Gate
	// Uploader sends photo bytes to presigned URLs.
	Uploader *http.Client
	Logger   logging.Logger
	Metrics  metrics.Recorder

	CacheTTL   time.Duration
	XPCooldown time.Duration
	Now        func() time.Time
}

func (d Deps) withDefaults() Deps {
	if d.Cache == nil {
		d.Cache = cache.New(cache.NewMemoryBackend())
	}
	if d.Gate == nil {
		d.Gate = cooldown.NewGate()
	}
	if d.Uploader == nil {
		d.Uploader = http.DefaultClient
	}
	d.Logger = logging.Safe(d.Logger)
	d.Metrics = metrics.OrNop(d.Metrics)
	if d.CacheTTL <= 0 {
		d.CacheTTL = DefaultCacheTTL
	}
	if d.XPCooldown <= 0 {
		d.XPCooldown = DefaultXPCooldown
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}

// Services bundles the facade.
type Services struct {
	Auth         AuthService
	Recipes      RecipeService
	Gamification GamificationService
}

func New(d Deps) *Services {
	d = d.withDefaults()
	return &Services{
		Auth:         newAuthService(d),
		Recipes:      newRecipeService(d),
		Gamification: newGamificationService(d),
	}
}

// call executes req and decodes the payload into T.
func call[T any](ctx context.Context, c client.Client, req client.Request) (T, error) {
	resp, err := c.Do(ctx, req)
	if err != nil {
		var zero T
		return zero, err
	}
	return client.DecodeAs[T](resp)
}

func validate(v interface{ Validate() error }) error {
	if err := v.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}
