package item

import (
	"context"
	"time"

	"posledger/internal/core/id"
)

// Repository defines storage operations for the item ledger.
//
// Update must perform an optimistic version check and fail with
// CONCURRENT_MODIFICATION when the row changed since it was read.
// There is intentionally no bare set-quantity operation.
type Repository interface {
	Create(ctx context.Context, it *Item) error

	// GetByID returns the latest committed state of the item.
	// Inside a transaction the read reflects writes of that transaction.
	GetByID(ctx context.Context, itemID id.ID) (*Item, error)

	// Update writes the item back, expecting it.Version to still match
	// the stored row. On success the stored version is incremented.
	Update(ctx context.Context, it *Item) error

	// ListPage returns up to limit items ordered by ID, starting after
	// afterID (zero ID starts from the beginning). Used for batch close.
	ListPage(ctx context.Context, afterID id.ID, limit int) ([]*Item, error)

	// CloseBatch applies the period-close snapshot to the given items:
	// opening_stock = qty_on_hand, counters reset, closed_at stamped.
	// Idempotent: reapplying with unchanged quantities is a no-op in effect.
	CloseBatch(ctx context.Context, ids []id.ID, closedAt time.Time) (int64, error)
}
