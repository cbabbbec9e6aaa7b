// Package securestore persists small secrets (tokens, device state) behind a
// narrow key/value contract. Missing keys are never errors: Get reports
// found=false and Delete is a no-op.
package securestore

import "context"

// Store is the secure key/value contract used by the token store.
type Store interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

// BatchSetter is implemented by stores that can write several keys
// atomically. Callers fall back to sequential Set calls otherwise.
type BatchSetter interface {
	SetMany(ctx context.Context, values map[string]string) error
}

// SetMany writes values through s, atomically when s supports it.
func SetMany(ctx context.Context, s Store, values map[string]string) error {
	if b, ok := s.(BatchSetter); ok {
		return b.SetMany(ctx, values)
	}
	for k, v := range values {
		if err := s.Set(ctx, k, v); err != nil {
			return err
		}
	}
	return nil
}
