package movement

import (
	"context"
	"time"

	"posledger/internal/core/id"
	"posledger/internal/core/types"
)

// Repository defines storage operations for stock movements.
type Repository interface {
	// CreateStockIn inserts the movement and its lines.
	CreateStockIn(ctx context.Context, m *StockIn) error

	// GetStockIn retrieves a batch receipt with lines.
	GetStockIn(ctx context.Context, movementID id.ID) (*StockIn, error)

	// DeleteStockIn removes the movement record and its lines.
	DeleteStockIn(ctx context.Context, movementID id.ID) error

	// ListStockIns returns receipts ordered by creation, newest first.
	ListStockIns(ctx context.Context, limit, offset int) ([]*StockIn, error)

	CreateStockOut(ctx context.Context, m *StockOut) error

	GetStockOut(ctx context.Context, movementID id.ID) (*StockOut, error)

	// ListStockOuts returns issues ordered by creation, newest first.
	ListStockOuts(ctx context.Context, limit, offset int) ([]*StockOut, error)

	// OutTotalsByDate aggregates issued quantity per item for a business
	// date. Used by the daily reconciliation engine.
	OutTotalsByDate(ctx context.Context, date time.Time) (map[id.ID]types.Quantity, error)
}
