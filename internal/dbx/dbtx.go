// Package dbx is the SQLite plumbing shared by the on-device stores.
//
// Another cookquest process may hold the database write lock for a moment;
// SQLite then fails the statement with SQLITE_BUSY or SQLITE_LOCKED. Retry
// and WithTx absorb such conflicts with a short constant backoff and surface
// every other error unchanged.
package dbx

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/sethvargo/go-retry"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// DBTX is implemented by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// TxBeginner is satisfied by *sql.DB.
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// Lock-conflict retry budget.
var (
	BusyAttempts = 5
	BusyDelay    = 20 * time.Millisecond
)

// IsBusy reports whether err is a transient SQLite lock conflict.
func IsBusy(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() & 0xff {
	case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
		return true
	}
	return false
}

// Retry runs fn until it returns something other than a lock conflict, at
// most BusyAttempts times. The last conflict is returned when the budget runs
// out.
func Retry(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := BusyAttempts
	if attempts < 1 {
		attempts = 1
	}
	b := retry.WithMaxRetries(uint64(attempts-1), retry.NewConstant(BusyDelay))

	return retry.Do(ctx, b, func(ctx context.Context) error {
		err := fn(ctx)
		if IsBusy(err) {
			return retry.RetryableError(err)
		}
		return err
	})
}

// WithTx runs fn inside a transaction, committing on success and rolling back
// on error or panic. Panics are rethrown. A lock conflict restarts the whole
// transaction, so fn must not keep side effects outside tx.
//
//	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
//	    _, err := tx.ExecContext(ctx, "DELETE FROM secure_store")
//	    return err
//	})
func WithTx(ctx context.Context, db TxBeginner, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) error {
	return Retry(ctx, func(ctx context.Context) error {
		return runTx(ctx, db, opts, fn)
	})
}

func runTx(ctx context.Context, db TxBeginner, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	return fn(ctx, tx)
}
