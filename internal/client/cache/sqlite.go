package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/dmitrijs2005/cookquest/internal/dbx"
	"github.com/dmitrijs2005/cookquest/internal/timex"
)

// SQLiteBackend persists entries in the response_cache table so cached reads
// survive a restart.
type SQLiteBackend struct {
	db *sql.DB
}

func NewSQLiteBackend(db *sql.DB) *SQLiteBackend {
	return &SQLiteBackend{db: db}
}

func (b *SQLiteBackend) Load(ctx context.Context, key string) (Entry, bool, error) {
	var (
		value []byte
		ms    int64
	)
	err := dbx.Retry(ctx, func(ctx context.Context) error {
		return b.db.QueryRowContext(ctx, `SELECT value, written_at_ms FROM response_cache WHERE key = ?`, key).Scan(&value, &ms)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("failed to get response_cache[%s]: %w", key, err)
	}
	return Entry{Key: key, Value: value, WrittenAt: timex.UnixMilli(ms)}, true, nil
}

func (b *SQLiteBackend) Save(ctx context.Context, e Entry) error {
	err := dbx.Retry(ctx, func(ctx context.Context) error {
		_, err := b.db.ExecContext(ctx, `
			INSERT INTO response_cache (key, value, written_at_ms) VALUES (?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value, written_at_ms = excluded.written_at_ms
		`, e.Key, e.Value, timex.ToUnixMilli(e.WrittenAt))
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to set response_cache[%s]: %w", e.Key, err)
	}
	return nil
}

func (b *SQLiteBackend) Delete(ctx context.Context, keys ...string) error {
	return dbx.WithTx(ctx, b.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for _, k := range keys {
			if _, err := tx.ExecContext(ctx, `DELETE FROM response_cache WHERE key = ?`, k); err != nil {
				return fmt.Errorf("failed to delete response_cache[%s]: %w", k, err)
			}
		}
		return nil
	})
}

func (b *SQLiteBackend) DeletePrefix(ctx context.Context, prefix string) error {
	_, err := b.db.ExecContext(ctx,
		`DELETE FROM response_cache WHERE substr(key, 1, ?) = ?`,
		utf8.RuneCountInString(prefix), prefix)
	if err != nil {
		return fmt.Errorf("failed to delete response_cache[%s*]: %w", prefix, err)
	}
	return nil
}

func (b *SQLiteBackend) Clear(ctx context.Context) error {
	if _, err := b.db.ExecContext(ctx, `DELETE FROM response_cache`); err != nil {
		return fmt.Errorf("failed to clear response_cache: %w", err)
	}
	return nil
}
