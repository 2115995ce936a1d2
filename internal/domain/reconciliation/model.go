// Package reconciliation provides the daily balance workflow: comparing
// the expected stock per item for a date+shift against the physically
// counted stock, and carrying the counted balance forward as the next
// day's opening.
package reconciliation

import (
	"time"

	"posledger/internal/core/id"
	"posledger/internal/core/types"
)

// State is the lifecycle state of a daily balance row.
type State string

const (
	// StatePending rows are recomputable: report generation refreshes
	// them in place.
	StatePending State = "pending"
	// StateSaved rows are finalized and immutable until deleted.
	StateSaved State = "saved"
)

// Default shift names. Shifts are operator-defined labels; any non-empty
// value forms a valid window key.
const (
	ShiftMorning = "morning"
	ShiftEvening = "evening"
)

// NormalizeDate strips the time-of-day so (date, shift, item) keys compare
// reliably across callers and stores.
func NormalizeDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DailyBalance is the per-(date, shift, item) reconciliation row.
//
//	calculatedBalance = openingBalance + stockOutQty - saleQty
//	shortage          = calculatedBalance - actualBalance (once saved)
//
// StockOutQty is the quantity issued from the store to the selling floor
// for the day; it adds to what the shift had available.
type DailyBalance struct {
	ID id.ID `db:"id" json:"id"`

	Date   time.Time `db:"date" json:"date"`
	Shift  string    `db:"shift" json:"shift"`
	ItemID id.ID     `db:"item_id" json:"itemId"`

	OpeningBalance    types.Quantity `db:"opening_balance" json:"openingBalance"`
	StockOutQty       types.Quantity `db:"stock_out_qty" json:"stockOutQty"`
	SaleQty           types.Quantity `db:"sale_qty" json:"saleQty"`
	CalculatedBalance types.Quantity `db:"calculated_balance" json:"calculatedBalance"`

	ActualBalance *types.Quantity `db:"actual_balance" json:"actualBalance,omitempty"`
	Shortage      *types.Quantity `db:"shortage" json:"shortage,omitempty"`

	State State `db:"state" json:"state"`

	Version int `db:"version" json:"version"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewDailyBalance creates a pending row for the window key.
func NewDailyBalance(date time.Time, shift string, itemID id.ID) *DailyBalance {
	now := time.Now().UTC()
	return &DailyBalance{
		ID:        id.New(),
		Date:      NormalizeDate(date),
		Shift:     shift,
		ItemID:    itemID,
		State:     StatePending,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// TotalAvailable is what the shift had to sell: opening plus issues.
func (b *DailyBalance) TotalAvailable() types.Quantity {
	return b.OpeningBalance + b.StockOutQty
}

// Recalculate refreshes the derived expected balance.
func (b *DailyBalance) Recalculate() {
	b.CalculatedBalance = b.TotalAvailable() - b.SaleQty
	b.UpdatedAt = time.Now().UTC()
}

// SameFigures reports whether another computation produced identical
// activity figures; used to keep report generation a no-op when nothing
// changed.
func (b *DailyBalance) SameFigures(opening, stockOut, sale types.Quantity) bool {
	return b.OpeningBalance == opening &&
		b.StockOutQty == stockOut &&
		b.SaleQty == sale
}

// ReportEntry is the immutable finalized row written when an actual
// balance is saved. Deleting it reopens the daily balance for editing.
type ReportEntry struct {
	ID id.ID `db:"id" json:"id"`

	Date   time.Time `db:"date" json:"date"`
	Shift  string    `db:"shift" json:"shift"`
	ItemID id.ID     `db:"item_id" json:"itemId"`

	OpeningBalance    types.Quantity `db:"opening_balance" json:"openingBalance"`
	StockOutQty       types.Quantity `db:"stock_out_qty" json:"stockOutQty"`
	SaleQty           types.Quantity `db:"sale_qty" json:"saleQty"`
	CalculatedBalance types.Quantity `db:"calculated_balance" json:"calculatedBalance"`
	ActualBalance     types.Quantity `db:"actual_balance" json:"actualBalance"`
	Shortage          types.Quantity `db:"shortage" json:"shortage"`

	SavedBy string    `db:"saved_by" json:"savedBy,omitempty"`
	SavedAt time.Time `db:"saved_at" json:"savedAt"`
}
