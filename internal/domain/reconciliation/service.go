package reconciliation

import (
	"context"
	"fmt"
	"sort"
	"time"

	"posledger/internal/core/apperror"
	"posledger/internal/core/id"
	"posledger/internal/core/tx"
	"posledger/internal/core/types"
	"posledger/pkg/logger"
)

// StockActivity supplies issued-to-floor quantities per item for a
// business date. Implemented by the movement repository.
type StockActivity interface {
	OutTotalsByDate(ctx context.Context, date time.Time) (map[id.ID]types.Quantity, error)
}

// SalesActivity supplies sold quantities per item for a date and shift.
// Implemented by the sales repository.
type SalesActivity interface {
	TotalsByDateShift(ctx context.Context, date time.Time, shift string) (map[id.ID]types.Quantity, error)
}

// Service runs the daily balance workflow. Report generation performs
// independent per-item transactions (idempotent repair, safe to re-run
// after partial failure); saving and deleting an entry are single atomic
// transactions.
type Service struct {
	repo      Repository
	stock     StockActivity
	sales     SalesActivity
	txManager tx.Manager
}

// NewService creates a new reconciliation service.
func NewService(repo Repository, stock StockActivity, sales SalesActivity, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		stock:     stock,
		sales:     sales,
		txManager: txManager,
	}
}

// GenerateReport computes expected balances for every item with activity
// in the window. Pending rows are refreshed in place, saved rows are left
// untouched, new rows are created for newly-active items. Re-running for
// the same window without new activity changes nothing.
func (s *Service) GenerateReport(ctx context.Context, date time.Time, shift string) ([]*DailyBalance, error) {
	if shift == "" {
		return nil, apperror.NewValidation("shift is required").
			WithDetail("field", "shift")
	}
	date = NormalizeDate(date)

	outTotals, err := s.stock.OutTotalsByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("aggregate stock-outs: %w", err)
	}
	saleTotals, err := s.sales.TotalsByDateShift(ctx, date, shift)
	if err != nil {
		return nil, fmt.Errorf("aggregate sales: %w", err)
	}
	openings, err := s.priorOpenings(ctx, date, shift)
	if err != nil {
		return nil, err
	}

	items := activeItems(openings, outTotals, saleTotals)

	for _, itemID := range items {
		itemID := itemID
		err := tx.WithRetry(ctx, s.txManager, func(ctx context.Context) error {
			return s.refreshItem(ctx, date, shift, itemID,
				openings[itemID], outTotals[itemID], saleTotals[itemID])
		})
		if err != nil {
			return nil, fmt.Errorf("refresh item %s: %w", itemID, err)
		}
	}

	rows, err := s.repo.ListBalances(ctx, date, shift)
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "daily report generated",
		"date", date.Format("2006-01-02"),
		"shift", shift,
		"rows", len(rows),
	)
	return rows, nil
}

// priorOpenings maps item → opening balance carried from the previous
// day's counted close: the saved actual when present and positive, else
// nothing (zero).
func (s *Service) priorOpenings(ctx context.Context, date time.Time, shift string) (map[id.ID]types.Quantity, error) {
	prior, err := s.repo.ListBalances(ctx, date.AddDate(0, 0, -1), shift)
	if err != nil {
		return nil, fmt.Errorf("list prior balances: %w", err)
	}

	openings := make(map[id.ID]types.Quantity, len(prior))
	for _, b := range prior {
		if b.State == StateSaved && b.ActualBalance != nil && b.ActualBalance.IsPositive() {
			openings[b.ItemID] = *b.ActualBalance
		}
	}
	return openings, nil
}

// refreshItem creates or refreshes the pending row for one item.
func (s *Service) refreshItem(
	ctx context.Context,
	date time.Time,
	shift string,
	itemID id.ID,
	opening, stockOut, sale types.Quantity,
) error {
	b, err := s.repo.GetBalance(ctx, date, shift, itemID)
	switch {
	case apperror.IsNotFound(err):
		b = NewDailyBalance(date, shift, itemID)
		b.OpeningBalance = opening
		b.StockOutQty = stockOut
		b.SaleQty = sale
		b.Recalculate()
		return s.repo.CreateBalance(ctx, b)
	case err != nil:
		return err
	}

	// Saved rows are immutable; pending rows with unchanged figures are
	// left alone so a repeated run is a true no-op.
	if b.State == StateSaved || b.SameFigures(opening, stockOut, sale) {
		return nil
	}

	b.OpeningBalance = opening
	b.StockOutQty = stockOut
	b.SaleQty = sale
	b.Recalculate()
	return s.repo.UpdateBalance(ctx, b)
}

// activeItems unions the key sets and returns them in a stable order.
func activeItems(maps ...map[id.ID]types.Quantity) []id.ID {
	seen := make(map[id.ID]struct{})
	var items []id.ID
	for _, m := range maps {
		for itemID := range m {
			if _, ok := seen[itemID]; ok {
				continue
			}
			seen[itemID] = struct{}{}
			items = append(items, itemID)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].String() < items[j].String()
	})
	return items
}

// SaveActualBalance finalizes the row for (date, shift, item) with the
// physically counted quantity: shortage is fixed, the row flips to saved,
// an immutable report entry is written, and a positive count seeds the
// next day's opening balance. Saving an already-saved key is rejected.
func (s *Service) SaveActualBalance(
	ctx context.Context,
	itemID id.ID,
	date time.Time,
	shift string,
	actual types.Quantity,
	actor string,
) (*DailyBalance, error) {
	if actual.IsNegative() {
		return nil, apperror.NewValidation("actual balance must not be negative").
			WithDetail("actual", actual.Float64())
	}
	date = NormalizeDate(date)

	var saved *DailyBalance
	err := tx.WithRetry(ctx, s.txManager, func(ctx context.Context) error {
		b, err := s.repo.GetBalance(ctx, date, shift, itemID)
		if err != nil {
			return err
		}

		if b.State == StateSaved {
			return apperror.NewAlreadySaved(itemID.String(), date.Format("2006-01-02"), shift)
		}

		shortage := b.CalculatedBalance - actual
		b.ActualBalance = &actual
		b.Shortage = &shortage
		b.State = StateSaved
		b.UpdatedAt = time.Now().UTC()
		if err := s.repo.UpdateBalance(ctx, b); err != nil {
			return err
		}

		entry := &ReportEntry{
			ID:                id.New(),
			Date:              b.Date,
			Shift:             b.Shift,
			ItemID:            b.ItemID,
			OpeningBalance:    b.OpeningBalance,
			StockOutQty:       b.StockOutQty,
			SaleQty:           b.SaleQty,
			CalculatedBalance: b.CalculatedBalance,
			ActualBalance:     actual,
			Shortage:          shortage,
			SavedBy:           actor,
			SavedAt:           time.Now().UTC(),
		}
		if err := s.repo.CreateEntry(ctx, entry); err != nil {
			return fmt.Errorf("create report entry: %w", err)
		}

		if actual.IsPositive() {
			if err := s.seedNextDay(ctx, b, actual); err != nil {
				return err
			}
		}

		saved = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "actual balance saved",
		"item_id", itemID,
		"date", date.Format("2006-01-02"),
		"shift", shift,
		"actual", actual,
		"shortage", saved.Shortage,
	)
	return saved, nil
}

// seedNextDay creates or merges the successor pending row with the
// counted balance as its opening.
func (s *Service) seedNextDay(ctx context.Context, b *DailyBalance, actual types.Quantity) error {
	nextDate := b.Date.AddDate(0, 0, 1)

	next, err := s.repo.GetBalance(ctx, nextDate, b.Shift, b.ItemID)
	switch {
	case apperror.IsNotFound(err):
		next = NewDailyBalance(nextDate, b.Shift, b.ItemID)
		next.OpeningBalance = actual
		next.Recalculate()
		return s.repo.CreateBalance(ctx, next)
	case err != nil:
		return err
	}

	// An already-saved successor is left untouched.
	if next.State == StateSaved {
		return nil
	}

	next.OpeningBalance = actual
	next.Recalculate()
	return s.repo.UpdateBalance(ctx, next)
}

// DeleteReportEntry removes a finalized entry and reopens its daily
// balance row: state back to pending, actual and shortage cleared. The
// successor row this save previously seeded keeps its opening balance.
func (s *Service) DeleteReportEntry(ctx context.Context, entryID id.ID) error {
	err := tx.WithRetry(ctx, s.txManager, func(ctx context.Context) error {
		entry, err := s.repo.GetEntry(ctx, entryID)
		if err != nil {
			return err
		}

		if err := s.repo.DeleteEntry(ctx, entryID); err != nil {
			return fmt.Errorf("delete entry: %w", err)
		}

		b, err := s.repo.GetBalance(ctx, entry.Date, entry.Shift, entry.ItemID)
		if err != nil {
			return err
		}

		b.ActualBalance = nil
		b.Shortage = nil
		b.State = StatePending
		b.UpdatedAt = time.Now().UTC()
		return s.repo.UpdateBalance(ctx, b)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "report entry deleted", "entry_id", entryID)
	return nil
}

// ListReport returns the current rows for a window.
func (s *Service) ListReport(ctx context.Context, date time.Time, shift string) ([]*DailyBalance, error) {
	return s.repo.ListBalances(ctx, NormalizeDate(date), shift)
}

// ListEntries returns the finalized entries for a window.
func (s *Service) ListEntries(ctx context.Context, date time.Time, shift string) ([]*ReportEntry, error) {
	return s.repo.ListEntries(ctx, NormalizeDate(date), shift)
}
