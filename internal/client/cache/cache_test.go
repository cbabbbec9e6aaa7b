package cache

import (
	"context"
	"database/sql"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/cookquest/internal/client/localdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

type recipe struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

func (r recipe) Validate() error {
	if r.ID == "" {
		return errors.New("id is required")
	}
	return nil
}

func backends(t *testing.T) map[string]Backend {
	t.Helper()
	db, err := localdb.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return map[string]Backend{
		"memory": NewMemoryBackend(),
		"sqlite": NewSQLiteBackend(db),
	}
}

func TestCache_RoundTripWithinTTL(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			clock := newClock()
			c := New(b, WithClock(clock.Now))
			ctx := context.Background()

			require.NoError(t, c.Write(ctx, "recipes:1", recipe{ID: "1", Title: "Ramen"}))
			clock.Advance(4 * time.Minute)

			raw, ok := c.Read(ctx, "recipes:1", 5*time.Minute)
			require.True(t, ok)
			assert.JSONEq(t, `{"id":"1","title":"Ramen"}`, string(raw))
		})
	}
}

func TestCache_ExpiredEntryIsMissButStaysStored(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			clock := newClock()
			c := New(b, WithClock(clock.Now))
			ctx := context.Background()

			require.NoError(t, c.Write(ctx, "k", []int{1, 2}))
			clock.Advance(5 * time.Minute)

			_, ok := c.Read(ctx, "k", 5*time.Minute)
			assert.False(t, ok, "now - writtenAt == ttl is already stale")

			_, found, err := b.Load(ctx, "k")
			require.NoError(t, err)
			assert.True(t, found, "expired entries are only replaced by the next write")

			require.NoError(t, c.Write(ctx, "k", []int{3}))
			raw, ok := c.Read(ctx, "k", 5*time.Minute)
			require.True(t, ok)
			assert.JSONEq(t, `[3]`, string(raw))
		})
	}
}

func TestCache_CorruptEntryIsMiss(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			clock := newClock()
			c := New(b, WithClock(clock.Now))
			ctx := context.Background()

			require.NoError(t, b.Save(ctx, Entry{Key: "bad", Value: []byte("{not json"), WrittenAt: clock.Now()}))

			_, ok := c.Read(ctx, "bad", time.Hour)
			assert.False(t, ok)
		})
	}
}

func TestCache_Invalidate(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			c := New(b)
			ctx := context.Background()

			for _, k := range []string{"recipes:1", "recipes:list:", "recipes:list:soup", "favorites"} {
				require.NoError(t, c.Write(ctx, k, k))
			}

			require.NoError(t, c.Invalidate(ctx, "recipes:1", "missing"))
			require.NoError(t, c.InvalidatePrefix(ctx, "recipes:list:"))

			for _, k := range []string{"recipes:1", "recipes:list:", "recipes:list:soup"} {
				_, ok := c.Read(ctx, k, time.Hour)
				assert.False(t, ok, k)
			}
			_, ok := c.Read(ctx, "favorites", time.Hour)
			assert.True(t, ok)

			require.NoError(t, c.Clear(ctx))
			_, ok = c.Read(ctx, "favorites", time.Hour)
			assert.False(t, ok)
		})
	}
}

func TestCache_NonPositiveTTLNeverHits(t *testing.T) {
	c := New(NewMemoryBackend())
	ctx := context.Background()
	require.NoError(t, c.Write(ctx, "k", 1))

	_, ok := c.Read(ctx, "k", 0)
	assert.False(t, ok)
}

func TestCache_InvalidatePrefixRejectsEmpty(t *testing.T) {
	c := New(NewMemoryBackend())
	require.Error(t, c.InvalidatePrefix(context.Background(), ""))
	require.NoError(t, c.Invalidate(context.Background()))
}

func TestCache_WriteRejectsUnencodable(t *testing.T) {
	c := New(NewMemoryBackend())
	require.Error(t, c.Write(context.Background(), "k", func() {}))
}

func TestCache_BackendErrorIsMiss(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT value, written_at_ms FROM response_cache").
		WithArgs("k").
		WillReturnError(errors.New("database is locked"))

	c := New(NewSQLiteBackend(db))
	_, ok := c.Read(context.Background(), "k", time.Hour)
	assert.False(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteBackend_DeleteRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM response_cache").WithArgs("a").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM response_cache").WithArgs("b").WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	err = NewSQLiteBackend(db).Delete(context.Background(), "a", "b")
	require.ErrorIs(t, err, sql.ErrConnDone)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrFetch(t *testing.T) {
	clock := newClock()
	c := New(NewMemoryBackend(), WithClock(clock.Now))
	ctx := context.Background()

	var calls atomic.Int32
	fetch := func(context.Context) (recipe, error) {
		calls.Add(1)
		return recipe{ID: "7", Title: "Dal"}, nil
	}

	got, err := GetOrFetch(ctx, c, "recipes:7", time.Minute, fetch)
	require.NoError(t, err)
	assert.Equal(t, recipe{ID: "7", Title: "Dal"}, got)

	got, err = GetOrFetch(ctx, c, "recipes:7", time.Minute, fetch)
	require.NoError(t, err)
	assert.Equal(t, "Dal", got.Title)
	assert.Equal(t, int32(1), calls.Load(), "second read is served from cache")

	clock.Advance(time.Minute)
	_, err = GetOrFetch(ctx, c, "recipes:7", time.Minute, fetch)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load(), "expired entry is refetched")
}

func TestGetOrFetch_InvalidCachedValueIsRefetched(t *testing.T) {
	c := New(NewMemoryBackend())
	ctx := context.Background()
	require.NoError(t, c.Write(ctx, "recipes:1", map[string]string{"title": "no id"}))

	got, err := GetOrFetch(ctx, c, "recipes:1", time.Hour, func(context.Context) (recipe, error) {
		return recipe{ID: "1", Title: "fresh"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "fresh", got.Title)
}

func TestGetOrFetch_FetchErrorIsNotCached(t *testing.T) {
	b := NewMemoryBackend()
	c := New(b)
	boom := errors.New("boom")

	_, err := GetOrFetch(context.Background(), c, "k", time.Hour, func(context.Context) (recipe, error) {
		return recipe{}, boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 0, b.Len())
}
