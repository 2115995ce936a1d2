// Package sales is the read model of POS sales consumed by the ledger
// core: the return processor resolves refund prices from the original
// sale, and the reconciliation engine aggregates sold quantities.
// The selling flow itself lives outside this subsystem.
package sales

import (
	"context"
	"time"

	"posledger/internal/core/id"
	"posledger/internal/core/types"
	"posledger/internal/domain/wallet"
)

// Sale is an already-committed POS sale.
type Sale struct {
	ID     id.ID  `db:"id" json:"id"`
	Number string `db:"number" json:"number"`

	// Date is the business date; Shift the selling shift within it.
	Date  time.Time `db:"date" json:"date"`
	Shift string    `db:"shift" json:"shift"`

	PaymentMethod wallet.Method `db:"payment_method" json:"paymentMethod"`
	Total         types.Money   `db:"total" json:"total"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`

	Lines []SaleLine `db:"-" json:"lines"`
}

// SaleLine is one sold item.
type SaleLine struct {
	LineID id.ID `db:"line_id" json:"lineId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	ItemID    id.ID          `db:"item_id" json:"itemId"`
	Qty       types.Quantity `db:"qty" json:"qty"`
	UnitPrice types.Money    `db:"unit_price" json:"unitPrice"`
}

// Line returns the sale line for an item, or nil when the item was not
// part of this sale.
func (s *Sale) Line(itemID id.ID) *SaleLine {
	for i := range s.Lines {
		if s.Lines[i].ItemID == itemID {
			return &s.Lines[i]
		}
	}
	return nil
}

// Repository defines storage operations for the sales read model.
type Repository interface {
	// Create installs a sale record (seeds, tests; the POS writes these).
	Create(ctx context.Context, s *Sale) error

	GetByID(ctx context.Context, saleID id.ID) (*Sale, error)

	// TotalsByDateShift aggregates sold quantity per item for a business
	// date and shift. Used by the daily reconciliation engine.
	TotalsByDateShift(ctx context.Context, date time.Time, shift string) (map[id.ID]types.Quantity, error)
}
