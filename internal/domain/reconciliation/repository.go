package reconciliation

import (
	"context"
	"time"

	"posledger/internal/core/id"
)

// Repository defines storage operations for daily balances and finalized
// report entries. UpdateBalance performs an optimistic version check.
type Repository interface {
	// GetBalance fetches the row for the window key; NOT_FOUND when the
	// report has not been generated for the key.
	GetBalance(ctx context.Context, date time.Time, shift string, itemID id.ID) (*DailyBalance, error)

	// ListBalances returns all rows for a date and shift ordered by item.
	ListBalances(ctx context.Context, date time.Time, shift string) ([]*DailyBalance, error)

	CreateBalance(ctx context.Context, b *DailyBalance) error

	UpdateBalance(ctx context.Context, b *DailyBalance) error

	CreateEntry(ctx context.Context, e *ReportEntry) error

	GetEntry(ctx context.Context, entryID id.ID) (*ReportEntry, error)

	DeleteEntry(ctx context.Context, entryID id.ID) error

	// ListEntries returns finalized entries for a date and shift.
	ListEntries(ctx context.Context, date time.Time, shift string) ([]*ReportEntry, error)
}
