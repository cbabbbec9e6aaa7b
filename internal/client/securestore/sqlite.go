package securestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/cookquest/internal/common"
	"github.com/dmitrijs2005/cookquest/internal/dbx"
)

// SQLiteStore keeps values in the secure_store table of the local database.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (r *SQLiteStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value []byte
	err := dbx.Retry(ctx, func(ctx context.Context) error {
		return r.db.QueryRowContext(ctx, `SELECT value FROM secure_store WHERE key = ?`, key).Scan(&value)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get secure_store[%s]: %w", key, err)
	}
	return string(value), true, nil
}

func (r *SQLiteStore) Set(ctx context.Context, key, value string) error {
	return dbx.Retry(ctx, func(ctx context.Context) error {
		return set(ctx, r.db, key, value)
	})
}

func set(ctx context.Context, db dbx.DBTX, key, value string) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO secure_store (key, value, updated_at) VALUES (?, ?, CAST(strftime('%s', 'now') AS INTEGER) * 1000)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, []byte(value))
	if err != nil {
		return fmt.Errorf("failed to set secure_store[%s]: %w", key, err)
	}
	return nil
}

// SetMany upserts all values in one transaction.
func (r *SQLiteStore) SetMany(ctx context.Context, values map[string]string) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for k, v := range values {
			if err := set(ctx, tx, k, v); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *SQLiteStore) Delete(ctx context.Context, key string) error {
	err := dbx.Retry(ctx, func(ctx context.Context) error {
		_, err := r.db.ExecContext(ctx, `DELETE FROM secure_store WHERE key = ?`, key)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to delete secure_store[%s]: %w", key, err)
	}
	return nil
}

func (r *SQLiteStore) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM secure_store`)
	if err != nil {
		return fmt.Errorf("failed to clear secure_store: %w", err)
	}
	return nil
}

// LoadOrCreateSalt returns the per-device salt used to derive the secure
// store key, creating it on first use.
func LoadOrCreateSalt(ctx context.Context, db *sql.DB) ([]byte, error) {
	var salt []byte
	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		err := tx.QueryRowContext(ctx, `SELECT salt FROM device WHERE id = 1`).Scan(&salt)
		if err == nil {
			return nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return err
		}
		salt = common.GenerateRandByteArray(16)
		_, err = tx.ExecContext(ctx, `INSERT INTO device (id, salt) VALUES (1, ?)`, salt)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("device salt: %w", err)
	}
	return salt, nil
}
