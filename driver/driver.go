// Package driver provides database driver abstractions for motoadmin.
//
// This package defines the interfaces that database drivers must implement
// to persist sessions, the audit log and the leader lease. It supports
// multiple database backends (pgx/v5, database/sql) through a generic
// driver pattern; both share the SQL in Store.
package driver

import (
	"context"
	"errors"

	"github.com/youssefsiam38/motoadmin/storage"
)

// ErrNoRows is returned by Row.Scan when a query matched nothing,
// whatever the underlying driver.
var ErrNoRows = errors.New("driver: no rows in result set")

// Driver provides database operations for motoadmin.
// TTx is the native transaction type (e.g., pgx.Tx for pgx/v5, *sql.Tx for database/sql).
//
// Implementations should be created using the driver-specific New() functions:
//   - github.com/youssefsiam38/motoadmin/driver/pgxv5.New(pool)
//   - github.com/youssefsiam38/motoadmin/driver/databasesql.New(db)
type Driver[TTx any] interface {
	// GetExecutor returns an executor for non-transactional operations.
	// The returned Executor uses the underlying connection pool.
	GetExecutor() Executor

	// UnwrapExecutor converts a native transaction to an ExecutorTx.
	UnwrapExecutor(tx TTx) ExecutorTx

	// UnwrapTx extracts the native transaction from an ExecutorTx.
	UnwrapTx(execTx ExecutorTx) TTx

	// Begin starts a new transaction and returns an ExecutorTx.
	Begin(ctx context.Context) (ExecutorTx, error)

	// PoolIsSet returns true if the driver has a database pool configured.
	PoolIsSet() bool

	// Ping verifies the database is reachable.
	Ping(ctx context.Context) error

	// GetStore returns a Store implementation using this driver.
	GetStore() storage.Store
}

// Beginner is an interface for types that can begin transactions.
type Beginner interface {
	Begin(ctx context.Context) (ExecutorTx, error)
}

// Migrate applies the embedded schema. Every statement is idempotent, so
// running it on an up-to-date database is a no-op.
func Migrate(ctx context.Context, exec Executor) error {
	_, err := exec.Exec(ctx, storage.Schema)
	return err
}

// WithTx runs fn inside a transaction started from b. The transaction is
// placed in the context so Store operations made with txCtx join it.
func WithTx(ctx context.Context, b Beginner, fn func(txCtx context.Context) error) (err error) {
	tx, err := b.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if err = fn(WithExecutor(ctx, tx)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
