package securestore

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/cookquest/internal/logging"
)

// FallbackStore gives at-least-one-backend semantics: the secure primary is
// preferred, the general secondary catches what the primary cannot hold.
//
// Reads check primary then secondary. A primary read error is returned
// unless secondary has the key. Writes go to primary and fall back to
// secondary when primary fails. Deletes and clears hit both so a stale copy
// cannot resurface.
type FallbackStore struct {
	primary   Store
	secondary Store
	logger    logging.Logger
}

func NewFallbackStore(primary, secondary Store, logger logging.Logger) *FallbackStore {
	return &FallbackStore{primary: primary, secondary: secondary, logger: logging.Safe(logger)}
}

func (s *FallbackStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, found, err := s.primary.Get(ctx, key)
	if err == nil && found {
		return v, true, nil
	}
	if err != nil {
		s.logger.Warn(ctx, "primary store read failed, trying fallback", "key", key, "error", err)
	}

	v2, found2, err2 := s.secondary.Get(ctx, key)
	if err2 != nil {
		return "", false, errors.Join(err, err2)
	}
	if !found2 && err != nil {
		// a miss here says nothing about what primary holds
		return "", false, err
	}
	return v2, found2, nil
}

func (s *FallbackStore) Set(ctx context.Context, key, value string) error {
	err := s.primary.Set(ctx, key, value)
	if err == nil {
		// drop any older copy the fallback may hold
		_ = s.secondary.Delete(ctx, key)
		return nil
	}

	s.logger.Warn(ctx, "primary store write failed, using fallback", "key", key, "error", err)
	if err2 := s.secondary.Set(ctx, key, value); err2 != nil {
		return errors.Join(err, err2)
	}
	return nil
}

func (s *FallbackStore) SetMany(ctx context.Context, values map[string]string) error {
	err := SetMany(ctx, s.primary, values)
	if err == nil {
		for k := range values {
			_ = s.secondary.Delete(ctx, k)
		}
		return nil
	}

	s.logger.Warn(ctx, "primary store batch write failed, using fallback", "error", err)
	if err2 := SetMany(ctx, s.secondary, values); err2 != nil {
		return errors.Join(err, err2)
	}
	return nil
}

func (s *FallbackStore) Delete(ctx context.Context, key string) error {
	return errors.Join(s.primary.Delete(ctx, key), s.secondary.Delete(ctx, key))
}

func (s *FallbackStore) Clear(ctx context.Context) error {
	return errors.Join(s.primary.Clear(ctx), s.secondary.Clear(ctx))
}
