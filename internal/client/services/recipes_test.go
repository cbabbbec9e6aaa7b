package services

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/cookquest/internal/client/client"
	"github.com/dmitrijs2005/cookquest/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	pastaJSON   = `{"id":"r1","title":"Pasta","prep_minutes":10,"cook_minutes":12,"difficulty":"easy"}`
	pastaV2JSON = `{"id":"r1","title":"Pasta al forno","prep_minutes":10,"cook_minutes":30,"difficulty":"medium"}`
	listJSON    = `{"recipes":[` + pastaJSON + `],"total":1}`
)

func TestRecipes_ListIsCachedPerQuery(t *testing.T) {
	f := newFixture()
	f.client.
		on(client.MethodGet, recipesPath, reply{body: listJSON}).
		on(client.MethodGet, recipesPath+"?q=pasta+bake", reply{body: `{"recipes":[],"total":0}`})
	ctx := context.Background()

	for range 3 {
		l, err := f.svc.Recipes.List(ctx, "")
		require.NoError(t, err)
		require.Len(t, l.Recipes, 1)
		assert.Equal(t, "Pasta", l.Recipes[0].Title)
	}
	assert.Equal(t, 1, f.client.count(client.MethodGet, recipesPath))

	l, err := f.svc.Recipes.List(ctx, "  pasta bake ")
	require.NoError(t, err)
	assert.Equal(t, 0, l.Total)
	assert.Equal(t, 1, f.client.count(client.MethodGet, recipesPath+"?q=pasta+bake"))
}

func TestRecipes_GetRefetchesAfterTTL(t *testing.T) {
	f := newFixture()
	f.client.on(client.MethodGet, recipePath("r1"), reply{body: pastaJSON})
	ctx := context.Background()

	_, err := f.svc.Recipes.Get(ctx, "r1")
	require.NoError(t, err)
	_, err = f.svc.Recipes.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, 1, f.client.count(client.MethodGet, recipePath("r1")))

	f.clock.Advance(time.Minute)
	r, err := f.svc.Recipes.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, 22, r.TotalMinutes())
	assert.Equal(t, 2, f.client.count(client.MethodGet, recipePath("r1")))
}

func TestRecipes_RecipeAndListKeysDoNotCollide(t *testing.T) {
	f := newFixture()
	f.client.
		on(client.MethodGet, recipesPath+"?q=soup", reply{body: listJSON}).
		on(client.MethodGet, recipePath("list:soup"), reply{body: `{"id":"list:soup","title":"Soup","difficulty":"easy"}`})
	ctx := context.Background()

	_, err := f.svc.Recipes.List(ctx, "soup")
	require.NoError(t, err)

	r, err := f.svc.Recipes.Get(ctx, "list:soup")
	require.NoError(t, err)
	assert.Equal(t, "Soup", r.Title)
	assert.Equal(t, 1, f.client.count(client.MethodGet, recipePath("list:soup")))

	l, err := f.svc.Recipes.List(ctx, "soup")
	require.NoError(t, err)
	require.Len(t, l.Recipes, 1)
	assert.Equal(t, "Pasta", l.Recipes[0].Title)
	assert.Equal(t, 1, f.client.count(client.MethodGet, recipesPath+"?q=soup"))
}

func TestRecipes_GetRejectsEmptyID(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Recipes.Get(context.Background(), " ")
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Empty(t, f.client.requests)
}

func TestRecipes_UpdateInvalidatesRecipeAndLists(t *testing.T) {
	f := newFixture()
	f.client.
		on(client.MethodGet, recipePath("r1"), reply{body: pastaJSON}, reply{body: pastaV2JSON}).
		on(client.MethodGet, recipesPath, reply{body: listJSON}).
		on(client.MethodPut, recipePath("r1"), reply{body: pastaV2JSON})
	ctx := context.Background()

	_, err := f.svc.Recipes.Get(ctx, "r1")
	require.NoError(t, err)
	_, err = f.svc.Recipes.List(ctx, "")
	require.NoError(t, err)

	updated, err := f.svc.Recipes.Update(ctx, "r1", models.RecipeInput{Title: "Pasta al forno", CookMinutes: 30})
	require.NoError(t, err)
	assert.Equal(t, "Pasta al forno", updated.Title)
	assert.Equal(t, models.RecipeInput{Title: "Pasta al forno", CookMinutes: 30}, f.client.last().Body)

	r, err := f.svc.Recipes.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "Pasta al forno", r.Title)
	_, err = f.svc.Recipes.List(ctx, "")
	require.NoError(t, err)

	assert.Equal(t, 2, f.client.count(client.MethodGet, recipePath("r1")))
	assert.Equal(t, 2, f.client.count(client.MethodGet, recipesPath))
}

func TestRecipes_CreateValidatesInput(t *testing.T) {
	f := newFixture()
	f.client.on(client.MethodPost, recipesPath, reply{status: http.StatusCreated, body: pastaJSON})
	ctx := context.Background()

	_, err := f.svc.Recipes.Create(ctx, models.RecipeInput{Title: "  "})
	require.ErrorIs(t, err, ErrInvalidInput)
	require.ErrorIs(t, err, models.ErrEmptyTitle)

	r, err := f.svc.Recipes.Create(ctx, models.RecipeInput{Title: "Pasta"})
	require.NoError(t, err)
	assert.Equal(t, "r1", r.ID)
}

func TestRecipes_DeleteAndFavoritesInvalidate(t *testing.T) {
	f := newFixture()
	f.client.
		on(client.MethodGet, favoritesPath, reply{body: listJSON}).
		on(client.MethodPost, recipePath("r1")+"/favorite", reply{status: http.StatusNoContent}).
		on(client.MethodDelete, recipePath("r1")+"/favorite", reply{status: http.StatusNoContent}).
		on(client.MethodDelete, recipePath("r1"), reply{status: http.StatusNoContent})
	ctx := context.Background()

	fetch := func() {
		_, err := f.svc.Recipes.Favorites(ctx)
		require.NoError(t, err)
	}

	fetch()
	fetch()
	assert.Equal(t, 1, f.client.count(client.MethodGet, favoritesPath))

	require.NoError(t, f.svc.Recipes.Favorite(ctx, "r1"))
	fetch()
	assert.Equal(t, 2, f.client.count(client.MethodGet, favoritesPath))

	require.NoError(t, f.svc.Recipes.Unfavorite(ctx, "r1"))
	fetch()
	assert.Equal(t, 3, f.client.count(client.MethodGet, favoritesPath))

	require.NoError(t, f.svc.Recipes.Delete(ctx, "r1"))
	fetch()
	assert.Equal(t, 4, f.client.count(client.MethodGet, favoritesPath))
}

func TestRecipes_DeleteFailureKeepsCache(t *testing.T) {
	f := newFixture()
	f.client.
		on(client.MethodGet, recipePath("r1"), reply{body: pastaJSON}).
		on(client.MethodDelete, recipePath("r1"), reply{err: &client.APIError{Status: http.StatusForbidden, Code: client.CodeClient, Message: "not yours"}})
	ctx := context.Background()

	_, err := f.svc.Recipes.Get(ctx, "r1")
	require.NoError(t, err)

	err = f.svc.Recipes.Delete(ctx, "r1")
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, client.StatusOf(err))

	_, err = f.svc.Recipes.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, 1, f.client.count(client.MethodGet, recipePath("r1")))
}

func TestRecipes_UploadPhoto(t *testing.T) {
	var got []byte
	var gotType string
	storage := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Empty(t, r.Header.Get("Authorization"))
		gotType = r.Header.Get("Content-Type")
		got, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer storage.Close()

	f := newFixture()
	f.client.on(client.MethodPost, recipePath("r1")+"/photo-upload-url", reply{
		body: `{"upload_url":"` + storage.URL + `/bucket/r1.jpg?sig=abc","photo_url":"https://cdn.example.com/r1.jpg"}`,
	})

	photo, err := f.svc.Recipes.UploadPhoto(context.Background(), "r1", []byte("jpeg-bytes"), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/r1.jpg", photo)
	assert.Equal(t, []byte("jpeg-bytes"), got)
	assert.Equal(t, "image/jpeg", gotType)
	assert.Equal(t, map[string]string{"content_type": "image/jpeg"}, f.client.last().Body)
}

func TestRecipes_UploadPhotoStorageFailure(t *testing.T) {
	storage := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "signature expired", http.StatusForbidden)
	}))
	defer storage.Close()

	f := newFixture()
	f.client.on(client.MethodPost, recipePath("r1")+"/photo-upload-url", reply{
		body: `{"upload_url":"` + storage.URL + `/r1.jpg","photo_url":"https://cdn.example.com/r1.jpg"}`,
	})

	_, err := f.svc.Recipes.UploadPhoto(context.Background(), "r1", []byte("x"), "image/png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "signature expired")

	_, err = f.svc.Recipes.UploadPhoto(context.Background(), "r1", nil, "image/png")
	require.ErrorIs(t, err, ErrInvalidInput)
}
