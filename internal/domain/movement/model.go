// Package movement provides the stock movement recorder: receipts
// (stock-in), issues (stock-out) and exact reversal of receipts.
package movement

import (
	"context"
	"time"

	"posledger/internal/core/apperror"
	"posledger/internal/core/id"
	"posledger/internal/core/types"
)

// StockIn is a batch receipt: one movement covering one or more item lines
// received from a supplier. Deleting it removes both the record and its
// effect on the ledger.
type StockIn struct {
	ID     id.ID  `db:"id" json:"id"`
	Number string `db:"number" json:"number"`

	// Date is the business date of the receipt
	Date time.Time `db:"date" json:"date"`

	SupplierName string `db:"supplier_name" json:"supplierName,omitempty"`
	SupplierRef  string `db:"supplier_ref" json:"supplierRef,omitempty"`

	CreatedBy string    `db:"created_by" json:"createdBy,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`

	Lines []StockInLine `db:"-" json:"lines"`
}

// StockInLine is one received item within a batch receipt.
type StockInLine struct {
	LineID id.ID `db:"line_id" json:"lineId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	ItemID    id.ID          `db:"item_id" json:"itemId"`
	Qty       types.Quantity `db:"qty" json:"qty"`
	UnitPrice types.Money    `db:"unit_price" json:"unitPrice"`
	Unit      string         `db:"unit" json:"unit"`
}

// NewStockIn creates a batch receipt for the given business date.
func NewStockIn(date time.Time, supplierName, supplierRef, createdBy string) *StockIn {
	return &StockIn{
		ID:           id.New(),
		Date:         date,
		SupplierName: supplierName,
		SupplierRef:  supplierRef,
		CreatedBy:    createdBy,
		CreatedAt:    time.Now().UTC(),
		Lines:        make([]StockInLine, 0),
	}
}

// AddLine appends a received line.
func (m *StockIn) AddLine(itemID id.ID, qty types.Quantity, unitPrice types.Money, unit string) {
	m.Lines = append(m.Lines, StockInLine{
		LineID:    id.New(),
		LineNo:    len(m.Lines) + 1,
		ItemID:    itemID,
		Qty:       qty,
		UnitPrice: unitPrice,
		Unit:      unit,
	})
}

// Validate checks that every line is complete before any write happens.
func (m *StockIn) Validate(ctx context.Context) error {
	if m.Date.IsZero() {
		return apperror.NewValidation("date is required").
			WithDetail("field", "date")
	}
	if len(m.Lines) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}
	for i, line := range m.Lines {
		if id.IsNil(line.ItemID) {
			return apperror.NewValidation("insufficient data: item is required").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if !line.Qty.IsPositive() {
			return apperror.NewValidation("insufficient data: quantity must be positive").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if line.UnitPrice.IsNegative() {
			return apperror.NewValidation("insufficient data: unit price must not be negative").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if line.Unit == "" {
			return apperror.NewValidation("insufficient data: unit is required").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
	}
	return nil
}

// StockOut is a single-item issue to a receiver (e.g. an outlet or shift).
type StockOut struct {
	ID     id.ID  `db:"id" json:"id"`
	Number string `db:"number" json:"number"`

	// Date is the business date of the issue
	Date time.Time `db:"date" json:"date"`

	ItemID   id.ID          `db:"item_id" json:"itemId"`
	Qty      types.Quantity `db:"qty" json:"qty"`
	Receiver string         `db:"receiver" json:"receiver"`
	Remark   string         `db:"remark" json:"remark,omitempty"`

	CreatedBy string    `db:"created_by" json:"createdBy,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// NewStockOut creates an issue record.
func NewStockOut(date time.Time, itemID id.ID, qty types.Quantity, receiver, remark, createdBy string) *StockOut {
	return &StockOut{
		ID:        id.New(),
		Date:      date,
		ItemID:    itemID,
		Qty:       qty,
		Receiver:  receiver,
		Remark:    remark,
		CreatedBy: createdBy,
		CreatedAt: time.Now().UTC(),
	}
}

// Validate checks entity invariants.
func (m *StockOut) Validate(ctx context.Context) error {
	if m.Date.IsZero() {
		return apperror.NewValidation("date is required").
			WithDetail("field", "date")
	}
	if id.IsNil(m.ItemID) {
		return apperror.NewValidation("item is required").
			WithDetail("field", "itemId")
	}
	if !m.Qty.IsPositive() {
		return apperror.NewValidation("quantity must be positive").
			WithDetail("field", "qty")
	}
	if m.Receiver == "" {
		return apperror.NewValidation("receiver is required").
			WithDetail("field", "receiver")
	}
	return nil
}
