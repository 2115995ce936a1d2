package item

import (
	"context"
	"fmt"

	"posledger/internal/core/apperror"
	"posledger/internal/core/id"
	"posledger/internal/core/tx"
	"posledger/internal/core/types"
	"posledger/pkg/logger"
)

// Service owns item lifecycle and the costing mode rules.
type Service struct {
	repo      Repository
	txManager tx.Manager
}

// NewService creates a new item service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		txManager: txManager,
	}
}

// Create registers a new item in the ledger.
func (s *Service) Create(ctx context.Context, it *Item) error {
	if err := it.Validate(ctx); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Create(ctx, it)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "item created",
		"id", it.ID,
		"name", it.Name,
		"kind", it.Kind,
	)
	return nil
}

// GetByID retrieves an item.
func (s *Service) GetByID(ctx context.Context, itemID id.ID) (*Item, error) {
	return s.repo.GetByID(ctx, itemID)
}

// SetCostingMode toggles an item between automatic and manual costing.
//
// Switching to manual is always allowed and leaves the average cost as-is.
// Switching to automatic is rejected for manufactured items: their cost
// is never derived from a purchase price.
func (s *Service) SetCostingMode(ctx context.Context, itemID id.ID, mode CostingMode) error {
	if mode != ModeAutomatic && mode != ModeManual {
		return apperror.NewValidation("unknown costing mode").
			WithDetail("mode", string(mode))
	}

	err := tx.WithRetry(ctx, s.txManager, func(ctx context.Context) error {
		it, err := s.repo.GetByID(ctx, itemID)
		if err != nil {
			return err
		}

		if mode == ModeAutomatic && it.Kind == KindManufactured {
			return apperror.NewModeLocked(it.ID.String(), string(it.Kind))
		}

		if it.CostingMode == mode {
			return nil
		}

		it.CostingMode = mode
		it.Touch()
		if err := s.repo.Update(ctx, it); err != nil {
			return fmt.Errorf("update item: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "costing mode changed", "item_id", itemID, "mode", mode)
	return nil
}

// SetManualCost writes the average cost directly. Requires manual mode;
// the version check rejects the write if the mode flipped concurrently.
func (s *Service) SetManualCost(ctx context.Context, itemID id.ID, cost types.Money) error {
	if cost.IsNegative() {
		return apperror.NewValidation("cost must not be negative").
			WithDetail("cost", cost.String())
	}

	err := tx.WithRetry(ctx, s.txManager, func(ctx context.Context) error {
		it, err := s.repo.GetByID(ctx, itemID)
		if err != nil {
			return err
		}

		if it.CostingMode != ModeManual {
			return apperror.NewBusinessRule(
				apperror.CodeModeLocked,
				"Manual cost requires manual costing mode",
			).WithDetail("item_id", it.ID.String())
		}

		it.AverageCost = cost
		it.Touch()
		if err := s.repo.Update(ctx, it); err != nil {
			return fmt.Errorf("update item: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "manual cost set", "item_id", itemID, "cost", cost)
	return nil
}
