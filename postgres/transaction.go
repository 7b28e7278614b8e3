// Package postgres provides PostgreSQL-backed implementations of the
// event.Store, outbox.Store, inbox.Ledger and aggregate.Repository contracts,
// using pgx as database driver.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// txContextKey is the private context key the active transaction
// travels under. Use ContextWithTx and TxFromContext to access it.
type txContextKey struct{}

// ContextWithTx returns a copy of the provided context carrying the given
// transaction. Stores in this package route their statements through the
// carried transaction instead of the connection pool, which is how multiple
// writes (aggregate state, Domain Events, outbox records) end up in a single
// atomic commit.
func ContextWithTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, txContextKey{}, tx)
}

// TxFromContext returns the transaction carried by the context,
// or nil when the context carries none.
func TxFromContext(ctx context.Context) pgx.Tx {
	if tx, ok := ctx.Value(txContextKey{}).(pgx.Tx); ok {
		return tx
	}

	return nil
}

// executor is the subset of the pgx API shared by pgxpool.Pool and pgx.Tx,
// allowing stores to run either on the pool or inside a carried transaction.
type executor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TxBeginner represents a pgx-related component that can initiate transactions.
type TxBeginner interface {
	BeginTx(ctx context.Context, options pgx.TxOptions) (pgx.Tx, error)
}

// RunTransaction runs a critical data change path in a transaction,
// seamlessly handling the transaction lifecycle (begin, commit, rollback).
//
// The transaction is carried in the context passed to the provided closure,
// so that stores invoked inside it transparently join the same commit.
func RunTransaction(
	ctx context.Context,
	db TxBeginner,
	options pgx.TxOptions, //nolint:gocritic // The pgx API uses value semantics, will do the same here.
	do func(ctx context.Context, tx pgx.Tx) error,
) (err error) {
	withContext := func(msg string, err error) error {
		return fmt.Errorf("%s, %w", msg, err)
	}

	tx, err := db.BeginTx(ctx, options)
	if err != nil {
		return withContext("failed to begin transaction", err)
	}

	defer func() {
		if err == nil {
			return
		}

		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
			err = fmt.Errorf("failed to rollback transaction, %w (caused by: %w)", rollbackErr, err)
		}
	}()

	if err := do(ContextWithTx(ctx, tx), tx); err != nil {
		return withContext("failed to perform transaction", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return withContext("failed to commit transaction", err)
	}

	return nil
}
