// Package closing rolls the item ledger over into a new accounting
// period: quantity on hand becomes opening stock and the period
// counters reset.
package closing

import (
	"context"
	"fmt"
	"time"

	"posledger/internal/core/id"
	"posledger/internal/core/tx"
	"posledger/internal/domain/item"
	"posledger/pkg/logger"
)

// DefaultBatchSize bounds the items touched per transaction so a close
// over a large catalog never holds one long transaction open.
const DefaultBatchSize = 100

// Result summarizes a period close run.
type Result struct {
	ItemsProcessed int64     `json:"itemsProcessed"`
	ClosedAt       time.Time `json:"closedAt"`
}

// Service performs the period close over the whole item ledger.
type Service struct {
	items     item.Repository
	txManager tx.Manager
	batchSize int
}

// NewService creates a new closing service. batchSize <= 0 selects
// DefaultBatchSize.
func NewService(items item.Repository, txManager tx.Manager, batchSize int) *Service {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Service{
		items:     items,
		txManager: txManager,
		batchSize: batchSize,
	}
}

// ClosePeriod walks the ledger in ID order and snapshots every item.
// Each batch commits independently; re-running after a partial failure
// re-snapshots already-closed items with the same figures, so the
// operation is idempotent in effect.
func (s *Service) ClosePeriod(ctx context.Context) (*Result, error) {
	closedAt := time.Now().UTC()

	var processed int64
	afterID := id.Nil()

	for {
		items, err := s.items.ListPage(ctx, afterID, s.batchSize)
		if err != nil {
			return nil, fmt.Errorf("list items: %w", err)
		}
		if len(items) == 0 {
			break
		}

		ids := make([]id.ID, len(items))
		for i, it := range items {
			ids[i] = it.ID
		}

		err = tx.WithRetry(ctx, s.txManager, func(ctx context.Context) error {
			n, err := s.items.CloseBatch(ctx, ids, closedAt)
			if err != nil {
				return fmt.Errorf("close batch: %w", err)
			}
			processed += n
			return nil
		})
		if err != nil {
			return nil, err
		}

		afterID = items[len(items)-1].ID
		if len(items) < s.batchSize {
			break
		}
	}

	logger.Info(ctx, "period closed",
		"items_processed", processed,
		"closed_at", closedAt,
	)
	return &Result{ItemsProcessed: processed, ClosedAt: closedAt}, nil
}
