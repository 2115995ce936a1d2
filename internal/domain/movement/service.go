package movement

import (
	"context"
	"fmt"
	"time"

	"posledger/internal/core/id"
	"posledger/internal/core/sequence"
	"posledger/internal/core/tx"
	"posledger/internal/domain/item"
	"posledger/pkg/logger"
)

// Sequence prefixes for movement numbers.
const (
	stockInPrefix  = "SIN"
	stockOutPrefix = "SOUT"
)

// Service applies stock movements against the item ledger. Every operation
// commits as one atomic unit: all item updates and the movement write, or
// nothing. Conflicting writers against the same item serialize through the
// optimistic-retry loop.
type Service struct {
	items     item.Repository
	repo      Repository
	seq       sequence.Generator
	txManager tx.Manager
}

// NewService creates a new movement service.
func NewService(items item.Repository, repo Repository, seq sequence.Generator, txManager tx.Manager) *Service {
	return &Service{
		items:     items,
		repo:      repo,
		seq:       seq,
		txManager: txManager,
	}
}

// RecordStockIn applies a batch receipt: for each line the item is re-read
// inside the transaction, the weighted average recomputed when automatic,
// and quantity/period counters incremented. Either every item in the batch
// updates or none do.
func (s *Service) RecordStockIn(ctx context.Context, m *StockIn) error {
	if err := m.Validate(ctx); err != nil {
		return err
	}

	if m.Number == "" {
		number, err := s.seq.Next(ctx, sequence.DefaultConfig(stockInPrefix), time.Now())
		if err != nil {
			return fmt.Errorf("generate number: %w", err)
		}
		m.Number = number
	}

	err := tx.WithRetry(ctx, s.txManager, func(ctx context.Context) error {
		for _, line := range m.Lines {
			it, err := s.items.GetByID(ctx, line.ItemID)
			if err != nil {
				return err
			}

			it.ApplyReceipt(line.Qty, line.UnitPrice)

			if err := s.items.Update(ctx, it); err != nil {
				return fmt.Errorf("update item %s: %w", line.ItemID, err)
			}
		}

		if err := s.repo.CreateStockIn(ctx, m); err != nil {
			return fmt.Errorf("create stock-in: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "stock-in recorded",
		"id", m.ID,
		"number", m.Number,
		"lines", len(m.Lines),
	)
	return nil
}

// RecordStockOut issues qty units of one item. The quantity check and the
// decrement happen against the same read inside the transaction, so a
// concurrent issue of the same item cannot overdraw it.
func (s *Service) RecordStockOut(ctx context.Context, m *StockOut) error {
	if err := m.Validate(ctx); err != nil {
		return err
	}

	if m.Number == "" {
		number, err := s.seq.Next(ctx, sequence.DefaultConfig(stockOutPrefix), time.Now())
		if err != nil {
			return fmt.Errorf("generate number: %w", err)
		}
		m.Number = number
	}

	err := tx.WithRetry(ctx, s.txManager, func(ctx context.Context) error {
		it, err := s.items.GetByID(ctx, m.ItemID)
		if err != nil {
			return err
		}

		if err := it.ApplyIssue(m.Qty); err != nil {
			return err
		}

		if err := s.items.Update(ctx, it); err != nil {
			return fmt.Errorf("update item: %w", err)
		}

		if err := s.repo.CreateStockOut(ctx, m); err != nil {
			return fmt.Errorf("create stock-out: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "stock-out recorded",
		"id", m.ID,
		"number", m.Number,
		"item_id", m.ItemID,
		"qty", m.Qty,
	)
	return nil
}

// DeleteStockIn reverses a batch receipt exactly, removing the record and
// its effect. Rejected when any line's quantity has already moved on: the
// algebraic cost reversal is only valid while the received units are still
// fully present.
func (s *Service) DeleteStockIn(ctx context.Context, movementID id.ID) error {
	err := tx.WithRetry(ctx, s.txManager, func(ctx context.Context) error {
		m, err := s.repo.GetStockIn(ctx, movementID)
		if err != nil {
			return err
		}

		for _, line := range m.Lines {
			it, err := s.items.GetByID(ctx, line.ItemID)
			if err != nil {
				return err
			}

			if err := it.ReverseReceipt(line.Qty, line.UnitPrice); err != nil {
				return err
			}

			if err := s.items.Update(ctx, it); err != nil {
				return fmt.Errorf("update item %s: %w", line.ItemID, err)
			}
		}

		if err := s.repo.DeleteStockIn(ctx, movementID); err != nil {
			return fmt.Errorf("delete stock-in: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "stock-in reversed", "id", movementID)
	return nil
}

// GetStockIn retrieves a batch receipt with lines.
func (s *Service) GetStockIn(ctx context.Context, movementID id.ID) (*StockIn, error) {
	return s.repo.GetStockIn(ctx, movementID)
}

// GetStockOut retrieves an issue record.
func (s *Service) GetStockOut(ctx context.Context, movementID id.ID) (*StockOut, error) {
	return s.repo.GetStockOut(ctx, movementID)
}

// ListStockIns returns receipts, newest first.
func (s *Service) ListStockIns(ctx context.Context, limit, offset int) ([]*StockIn, error) {
	return s.repo.ListStockIns(ctx, limit, offset)
}

// ListStockOuts returns issues, newest first.
func (s *Service) ListStockOuts(ctx context.Context, limit, offset int) ([]*StockOut, error) {
	return s.repo.ListStockOuts(ctx, limit, offset)
}
