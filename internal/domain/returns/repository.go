package returns

import (
	"context"

	"posledger/internal/core/id"
)

// Repository defines storage operations for returns and their linked
// expense entries.
type Repository interface {
	// CreateReturn inserts the return record and its lines.
	CreateReturn(ctx context.Context, r *ReturnRecord) error

	// GetReturn retrieves a return with lines.
	GetReturn(ctx context.Context, returnID id.ID) (*ReturnRecord, error)

	// DeleteReturn removes the return record and its lines.
	DeleteReturn(ctx context.Context, returnID id.ID) error

	// ExistsForSale reports whether any return references the sale.
	// Called both before and inside the refund transaction.
	ExistsForSale(ctx context.Context, originalSaleID id.ID) (bool, error)

	CreateExpense(ctx context.Context, e *ExpenseRecord) error

	DeleteExpense(ctx context.Context, expenseID id.ID) error
}
