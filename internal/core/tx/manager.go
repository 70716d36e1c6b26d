// Package tx abstracts transaction boundaries so domain services never see
// a database handle. The postgres implementation lives in
// infrastructure/storage/postgres.
package tx

import (
	"context"
)

// Manager runs a function inside a transaction.
type Manager interface {
	// RunInTransaction begins a transaction, runs fn, and commits. An error
	// from fn rolls the transaction back. A nested call joins the
	// transaction already carried by ctx.
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ReadOnlyManager adds snapshot reads. Reports that issue several queries
// (FIFO replay, kardex) run under ReadOnly so all of them observe the same
// committed state.
type ReadOnlyManager interface {
	Manager

	// ReadOnly runs fn in a read-only repeatable-read transaction. Writes
	// inside fn fail.
	ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}
