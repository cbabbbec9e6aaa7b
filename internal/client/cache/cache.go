// Package cache is the TTL response cache consulted by read operations.
//
// Entries are stamped with their write time and checked against the caller's
// TTL on read. Expired entries are not removed: they read as misses and are
// replaced by the next write. Invalidation is explicit and caller-driven.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/cookquest/internal/client/metrics"
	"github.com/dmitrijs2005/cookquest/internal/logging"
)

// Entry is one stored value.
type Entry struct {
	Key       string
	Value     []byte
	WrittenAt time.Time
}

// Backend stores entries. Load reports found=false for an absent key.
type Backend interface {
	Load(ctx context.Context, key string) (Entry, bool, error)
	Save(ctx context.Context, e Entry) error
	Delete(ctx context.Context, keys ...string) error
	DeletePrefix(ctx context.Context, prefix string) error
	Clear(ctx context.Context) error
}

// Cache is safe for concurrent use when its Backend is.
type Cache struct {
	backend Backend
	logger  logging.Logger
	metrics metrics.Recorder
	now     func() time.Time
}

type Option func(*Cache)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

func WithLogger(l logging.Logger) Option {
	return func(c *Cache) { c.logger = logging.Safe(l) }
}

func WithMetrics(r metrics.Recorder) Option {
	return func(c *Cache) { c.metrics = metrics.OrNop(r) }
}

func New(backend Backend, opts ...Option) *Cache {
	c := &Cache{
		backend: backend,
		logger:  logging.Nop(),
		metrics: metrics.Nop(),
		now:     time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Read returns the value under key if it was written less than ttl ago.
// Backend failures and corrupt entries are logged and reported as misses.
func (c *Cache) Read(ctx context.Context, key string, ttl time.Duration) (json.RawMessage, bool) {
	v, ok := c.read(ctx, key, ttl)
	c.metrics.CacheLookup(ok)
	return v, ok
}

func (c *Cache) read(ctx context.Context, key string, ttl time.Duration) (json.RawMessage, bool) {
	if ttl <= 0 {
		return nil, false
	}

	e, found, err := c.backend.Load(ctx, key)
	if err != nil {
		c.logger.Warn(ctx, "cache read failed, treating as miss", "key", key, "error", err)
		return nil, false
	}
	if !found {
		return nil, false
	}
	if c.now().Sub(e.WrittenAt) >= ttl {
		return nil, false
	}
	if !json.Valid(e.Value) {
		c.logger.Warn(ctx, "corrupt cache entry, treating as miss", "key", key)
		return nil, false
	}
	return json.RawMessage(e.Value), true
}

// Write stores value as JSON under key. The last write wins.
func (c *Cache) Write(ctx context.Context, key string, value any) error {
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache %s: encode: %w", key, err)
	}
	if err := c.backend.Save(ctx, Entry{Key: key, Value: b, WrittenAt: c.now()}); err != nil {
		return fmt.Errorf("cache %s: %w", key, err)
	}
	return nil
}

// Invalidate deletes keys. Absent keys are ignored.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.backend.Delete(ctx, keys...)
}

// InvalidatePrefix deletes every key starting with prefix, e.g. all pages of
// a list.
func (c *Cache) InvalidatePrefix(ctx context.Context, prefix string) error {
	if prefix == "" {
		return errors.New("cache: empty invalidation prefix")
	}
	return c.backend.DeletePrefix(ctx, prefix)
}

// Clear drops every entry, used on logout.
func (c *Cache) Clear(ctx context.Context) error {
	return c.backend.Clear(ctx)
}

// GetOrFetch returns the cached T under key or calls fetch and caches its
// result. Entries that no longer decode into T, or fail T's Validate, are
// refetched. A failed cache write is logged and does not fail the call.
func GetOrFetch[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, fetch func(ctx context.Context) (T, error)) (T, error) {
	if raw, ok := c.Read(ctx, key, ttl); ok {
		var v T
		err := decode(raw, &v)
		if err == nil {
			return v, nil
		}
		c.logger.Warn(ctx, "cached value does not match its type, refetching", "key", key, "error", err)
	}

	v, err := fetch(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	if err := c.Write(ctx, key, v); err != nil {
		c.logger.Warn(ctx, "cache write failed", "key", key, "error", err)
	}
	return v, nil
}

func decode(raw []byte, v any) error {
	if err := json.Unmarshal(raw, v); err != nil {
		return err
	}
	if val, ok := v.(interface{ Validate() error }); ok {
		return val.Validate()
	}
	return nil
}
