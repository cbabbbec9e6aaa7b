package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/cookquest/internal/client/cache"
	"github.com/dmitrijs2005/cookquest/internal/client/client"
	"github.com/dmitrijs2005/cookquest/internal/client/config"
	"github.com/dmitrijs2005/cookquest/internal/client/cooldown"
	"github.com/dmitrijs2005/cookquest/internal/client/localdb"
	"github.com/dmitrijs2005/cookquest/internal/client/metrics"
	"github.com/dmitrijs2005/cookquest/internal/client/securestore"
	"github.com/dmitrijs2005/cookquest/internal/client/services"
	"github.com/dmitrijs2005/cookquest/internal/client/tokens"
	"github.com/dmitrijs2005/cookquest/internal/common"
	"github.com/dmitrijs2005/cookquest/internal/cryptox"
	"github.com/dmitrijs2005/cookquest/internal/filex"
	"github.com/dmitrijs2005/cookquest/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	DBFileName     = "cookquest.db"
	SecretFileName = "device.secret"
)

// NewApp builds the client stack from cfg: local database, secure store,
// token store, response cache, metrics, executor and services.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := logging.New(os.Stderr, cfg.LogFormat, cfg.LogLevel)

	dir, err := filex.EnsureDataDir(cfg.DataDir)
	if err != nil {
		return nil, err
	}

	db, err := localdb.Open(ctx, filepath.Join(dir, DBFileName))
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	kv, err := newSecureStore(ctx, db, dir, cfg.DeviceSecret, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	registry := prometheus.NewRegistry()
	rec, err := metrics.NewPrometheus(registry)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	tok := tokens.NewStore(kv)
	exec := client.NewExecutor(cfg.ExecutorOptions(), nil, tok, logger, rec)

	svc := services.New(services.Deps{
		Client:     exec,
		Tokens:     tok,
		Cache:      cache.New(cache.NewSQLiteBackend(db), cache.WithLogger(logger), cache.WithMetrics(rec)),
		Gate:       cooldown.NewGate(),
		Logger:     logger,
		Metrics:    rec,
		CacheTTL:   cfg.CacheTTL,
		XPCooldown: cfg.XPCooldown,
	})

	app := newApp(cfg, svc, logger)
	app.registry = registry
	app.closers = append(app.closers, db.Close)
	return app, nil
}

// newSecureStore layers the token storage: AES-GCM over the SQLite table,
// falling back to process memory when the encrypted path fails.
func newSecureStore(ctx context.Context, db *sql.DB, dir, secret string, logger logging.Logger) (securestore.Store, error) {
	if secret == "" {
		s, err := loadOrCreateSecret(filepath.Join(dir, SecretFileName))
		if err != nil {
			return nil, err
		}
		secret = s
	}

	salt, err := securestore.LoadOrCreateSalt(ctx, db)
	if err != nil {
		return nil, err
	}

	key := cryptox.DeriveKey([]byte(secret), salt)
	enc, err := securestore.NewEncryptedStore(securestore.NewSQLiteStore(db), key, logger)
	if err != nil {
		return nil, err
	}
	return securestore.NewFallbackStore(enc, securestore.NewMemoryStore(), logger), nil
}

// loadOrCreateSecret reads the device secret file, creating it with a random
// value on first run.
func loadOrCreateSecret(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err == nil {
		if s := strings.TrimSpace(string(b)); s != "" {
			return s, nil
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("read device secret: %w", err)
	}

	s, err := common.MakeRandHexString(32)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(s+"\n"), 0o600); err != nil {
		return "", fmt.Errorf("write device secret: %w", err)
	}
	return s, nil
}
