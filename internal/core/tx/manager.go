// Package tx provides transaction management abstractions.
// Domain services depend on these interfaces, not on a specific store;
// implementations live in infrastructure/storage.
package tx

import (
	"context"
	"time"

	"posledger/internal/core/apperror"
	"posledger/pkg/logger"
)

// Manager defines the contract for transaction management.
// Implementations handle BEGIN, COMMIT, ROLLBACK.
type Manager interface {
	// RunInTransaction executes fn within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn succeeds, the transaction is committed.
	//
	// Nested calls reuse the existing transaction from context.
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ReadOnlyManager extends Manager with read-only transaction support.
type ReadOnlyManager interface {
	Manager

	// ReadOnly executes fn in a read-only transaction.
	ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}

// DefaultRetryAttempts bounds optimistic-concurrency retries.
const DefaultRetryAttempts = 3

// retryBackoff spaces retry attempts apart so that two colliding
// writers do not immediately collide again.
const retryBackoff = 10 * time.Millisecond

// WithRetry runs fn in a transaction, transparently retrying when the
// commit lost an optimistic-concurrency race (CONCURRENT_MODIFICATION).
// Any other error, and exhaustion of attempts, is surfaced to the caller.
func WithRetry(ctx context.Context, m Manager, fn func(ctx context.Context) error) error {
	var err error
	for attempt := 1; attempt <= DefaultRetryAttempts; attempt++ {
		err = m.RunInTransaction(ctx, fn)
		if err == nil || !apperror.IsConcurrentModification(err) {
			return err
		}

		if attempt < DefaultRetryAttempts {
			logger.Debug(ctx, "transaction conflict, retrying",
				"attempt", attempt,
			)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retryBackoff * time.Duration(attempt)):
			}
		}
	}
	return err
}
