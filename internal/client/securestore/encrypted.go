package securestore

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/dmitrijs2005/cookquest/internal/cryptox"
	"github.com/dmitrijs2005/cookquest/internal/logging"
)

// EncryptedStore seals values with AES-GCM before handing them to the
// underlying store. A value that cannot be opened (wrong device key,
// corruption) reads as missing, the way a keychain item from another device
// would.
type EncryptedStore struct {
	next   Store
	key    []byte
	logger logging.Logger
}

// NewEncryptedStore wraps next. key must be a cryptox.KeySize key, normally
// cryptox.DeriveKey(deviceSecret, salt).
func NewEncryptedStore(next Store, key []byte, logger logging.Logger) (*EncryptedStore, error) {
	if len(key) != cryptox.KeySize {
		return nil, fmt.Errorf("encrypted store: key must be %d bytes, got %d", cryptox.KeySize, len(key))
	}
	return &EncryptedStore{next: next, key: key, logger: logging.Safe(logger)}, nil
}

func (s *EncryptedStore) Get(ctx context.Context, key string) (string, bool, error) {
	raw, found, err := s.next.Get(ctx, key)
	if err != nil || !found {
		return "", false, err
	}

	sealed, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		s.logger.Warn(ctx, "secure store value is not base64, treating as missing", "key", key)
		return "", false, nil
	}

	plain, err := cryptox.Open(s.key, sealed)
	if err != nil {
		s.logger.Warn(ctx, "secure store value cannot be decrypted, treating as missing", "key", key)
		return "", false, nil
	}
	return string(plain), true, nil
}

func (s *EncryptedStore) seal(value string) (string, error) {
	sealed, err := cryptox.Seal(s.key, []byte(value))
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (s *EncryptedStore) Set(ctx context.Context, key, value string) error {
	sealed, err := s.seal(value)
	if err != nil {
		return fmt.Errorf("seal %s: %w", key, err)
	}
	return s.next.Set(ctx, key, sealed)
}

func (s *EncryptedStore) SetMany(ctx context.Context, values map[string]string) error {
	sealed := make(map[string]string, len(values))
	for k, v := range values {
		sv, err := s.seal(v)
		if err != nil {
			return fmt.Errorf("seal %s: %w", k, err)
		}
		sealed[k] = sv
	}
	return SetMany(ctx, s.next, sealed)
}

func (s *EncryptedStore) Delete(ctx context.Context, key string) error {
	return s.next.Delete(ctx, key)
}

func (s *EncryptedStore) Clear(ctx context.Context) error {
	return s.next.Clear(ctx)
}
