package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/cookquest/internal/client/cache"
	"github.com/dmitrijs2005/cookquest/internal/client/client"
	"github.com/dmitrijs2005/cookquest/internal/client/models"
	"github.com/dmitrijs2005/cookquest/internal/logging"
	"github.com/dmitrijs2005/cookquest/internal/netx"
)

type RecipeService interface {
	List(ctx context.Context, query string) (models.RecipeList, error)
	Get(ctx context.Context, id string) (models.Recipe, error)
	Create(ctx context.Context, in models.RecipeInput) (models.Recipe, error)
	Update(ctx context.Context, id string, in models.RecipeInput) (models.Recipe, error)
	Delete(ctx context.Context, id string) error
	Favorite(ctx context.Context, id string) error
	Unfavorite(ctx context.Context, id string) error
	Favorites(ctx context.Context) (models.RecipeList, error)
	UploadPhoto(ctx context.Context, id string, data []byte, contentType string) (string, error)
}

type recipeService struct {
	client   client.Client
	cache    *cache.Cache
	ttl      time.Duration
	uploader *http.Client
	logger   logging.Logger
}

func NewRecipeService(d Deps) RecipeService {
	return newRecipeService(d.withDefaults())
}

func newRecipeService(d Deps) *recipeService {
	return &recipeService{client: d.Client, cache: d.Cache, ttl: d.CacheTTL, uploader: d.Uploader, logger: d.Logger}
}

// List is cached per query under recipes:list:<query>.
func (s *recipeService) List(ctx context.Context, query string) (models.RecipeList, error) {
	query = strings.TrimSpace(query)
	path := recipesPath
	if query != "" {
		path += "?" + url.Values{"q": {query}}.Encode()
	}

	return cache.GetOrFetch(ctx, s.cache, recipeListKeyPrefix+query, s.ttl, func(ctx context.Context) (models.RecipeList, error) {
		return call[models.RecipeList](ctx, s.client, client.Request{Method: client.MethodGet, Path: path})
	})
}

func (s *recipeService) Get(ctx context.Context, id string) (models.Recipe, error) {
	if err := requireID(id); err != nil {
		return models.Recipe{}, err
	}
	return cache.GetOrFetch(ctx, s.cache, recipeKey(id), s.ttl, func(ctx context.Context) (models.Recipe, error) {
		return call[models.Recipe](ctx, s.client, client.Request{Method: client.MethodGet, Path: recipePath(id)})
	})
}

func (s *recipeService) Create(ctx context.Context, in models.RecipeInput) (models.Recipe, error) {
	if err := validate(in); err != nil {
		return models.Recipe{}, err
	}

	r, err := call[models.Recipe](ctx, s.client, client.Request{Method: client.MethodPost, Path: recipesPath, Body: in})
	if err != nil {
		return models.Recipe{}, fmt.Errorf("create recipe: %w", err)
	}

	s.invalidate(ctx, r.ID)
	return r, nil
}

func (s *recipeService) Update(ctx context.Context, id string, in models.RecipeInput) (models.Recipe, error) {
	if err := requireID(id); err != nil {
		return models.Recipe{}, err
	}
	if err := validate(in); err != nil {
		return models.Recipe{}, err
	}

	r, err := call[models.Recipe](ctx, s.client, client.Request{Method: client.MethodPut, Path: recipePath(id), Body: in})
	if err != nil {
		return models.Recipe{}, fmt.Errorf("update recipe %s: %w", id, err)
	}

	s.invalidate(ctx, id)
	return r, nil
}

func (s *recipeService) Delete(ctx context.Context, id string) error {
	if err := requireID(id); err != nil {
		return err
	}
	if _, err := s.client.Do(ctx, client.Request{Method: client.MethodDelete, Path: recipePath(id)}); err != nil {
		return fmt.Errorf("delete recipe %s: %w", id, err)
	}

	s.invalidate(ctx, id, favoritesKey)
	return nil
}

func (s *recipeService) Favorite(ctx context.Context, id string) error {
	return s.setFavorite(ctx, id, client.MethodPost)
}

func (s *recipeService) Unfavorite(ctx context.Context, id string) error {
	return s.setFavorite(ctx, id, client.MethodDelete)
}

func (s *recipeService) setFavorite(ctx context.Context, id string, method client.Method) error {
	if err := requireID(id); err != nil {
		return err
	}
	if _, err := s.client.Do(ctx, client.Request{Method: method, Path: recipePath(id) + "/favorite"}); err != nil {
		return fmt.Errorf("favorite recipe %s: %w", id, err)
	}

	if err := s.cache.Invalidate(ctx, recipeKey(id), favoritesKey); err != nil {
		s.logger.Warn(ctx, "cache invalidation failed", "recipe_id", id, "error", err)
	}
	return nil
}

func (s *recipeService) Favorites(ctx context.Context) (models.RecipeList, error) {
	return cache.GetOrFetch(ctx, s.cache, favoritesKey, s.ttl, func(ctx context.Context) (models.RecipeList, error) {
		return call[models.RecipeList](ctx, s.client, client.Request{Method: client.MethodGet, Path: favoritesPath})
	})
}

// UploadPhoto asks the backend for a presigned upload URL, PUTs data there
// and returns the public photo URL.
func (s *recipeService) UploadPhoto(ctx context.Context, id string, data []byte, contentType string) (string, error) {
	if err := requireID(id); err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty photo", ErrInvalidInput)
	}

	target, err := call[models.PhotoUpload](ctx, s.client, client.Request{
		Method: client.MethodPost,
		Path:   recipePath(id) + "/photo-upload-url",
		Body:   map[string]string{"content_type": contentType},
	})
	if err != nil {
		return "", fmt.Errorf("photo upload url: %w", err)
	}

	if err := netx.UploadPresigned(ctx, s.uploader, target.UploadURL, contentType, data); err != nil {
		return "", fmt.Errorf("photo upload: %w", err)
	}

	s.invalidate(ctx, id)
	return target.PhotoURL, nil
}

// invalidate drops the recipe, every cached list page and any extra keys.
func (s *recipeService) invalidate(ctx context.Context, id string, extra ...string) {
	keys := append([]string{recipeKey(id)}, extra...)
	err := errors.Join(
		s.cache.Invalidate(ctx, keys...),
		s.cache.InvalidatePrefix(ctx, recipeListKeyPrefix),
	)
	if err != nil {
		s.logger.Warn(ctx, "cache invalidation failed", "recipe_id", id, "error", err)
	}
}

func recipePath(id string) string {
	return recipesPath + "/" + url.PathEscape(id)
}

func requireID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: %v", ErrInvalidInput, models.ErrEmptyRecipeID)
	}
	return nil
}
