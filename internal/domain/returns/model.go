// Package returns provides the return/refund processor: compensating a
// prior sale by restocking resalable units, debiting a wallet account and
// writing a linked expense entry, all as one atomic unit.
package returns

import (
	"context"
	"time"

	"posledger/internal/core/apperror"
	"posledger/internal/core/id"
	"posledger/internal/core/types"
	"posledger/internal/domain/wallet"
)

// Condition tags a returned unit as resalable or not.
type Condition string

const (
	// ConditionGood units go back on the shelf.
	ConditionGood Condition = "good"
	// ConditionDamaged units are refunded but not restocked.
	ConditionDamaged Condition = "damaged"
)

// Valid reports whether the condition tag is known.
func (c Condition) Valid() bool {
	return c == ConditionGood || c == ConditionDamaged
}

// ReturnRecord compensates one prior sale. At most one return may exist
// per original sale.
type ReturnRecord struct {
	ID     id.ID  `db:"id" json:"id"`
	Number string `db:"number" json:"number"`

	OriginalSaleID id.ID `db:"original_sale_id" json:"originalSaleId"`

	RefundMethod wallet.Method `db:"refund_method" json:"refundMethod"`
	RefundAmount types.Money   `db:"refund_amount" json:"refundAmount"`

	// ExpenseID links the expense entry written with this return.
	ExpenseID id.ID `db:"expense_id" json:"expenseId"`

	CreatedBy string    `db:"created_by" json:"createdBy,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`

	Lines []ReturnLine `db:"-" json:"lines"`
}

// ReturnLine is one returned item. UnitPrice is resolved from the
// original sale, not taken from the caller.
type ReturnLine struct {
	LineID id.ID `db:"line_id" json:"lineId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	ItemID    id.ID          `db:"item_id" json:"itemId"`
	Qty       types.Quantity `db:"qty" json:"qty"`
	UnitPrice types.Money    `db:"unit_price" json:"unitPrice"`
	Condition Condition      `db:"condition" json:"condition"`
}

// ExpenseRecord is the expense-side entry written alongside a refund so
// the books show where the money went.
type ExpenseRecord struct {
	ID     id.ID  `db:"id" json:"id"`
	Number string `db:"number" json:"number"`

	Description string        `db:"description" json:"description"`
	Amount      types.Money   `db:"amount" json:"amount"`
	Method      wallet.Method `db:"method" json:"method"`

	// ReturnID links back to the return this expense belongs to.
	ReturnID id.ID `db:"return_id" json:"returnId"`

	CreatedBy string    `db:"created_by" json:"createdBy,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// LineInput is the caller-supplied shape of a returned line.
type LineInput struct {
	ItemID    id.ID
	Qty       types.Quantity
	Condition Condition
}

// ValidateLines checks caller input before any read or write happens.
func ValidateLines(ctx context.Context, lines []LineInput) error {
	if len(lines) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}
	for i, line := range lines {
		if id.IsNil(line.ItemID) {
			return apperror.NewValidation("item is required").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if !line.Qty.IsPositive() {
			return apperror.NewValidation("quantity must be positive").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if !line.Condition.Valid() {
			return apperror.NewValidation("condition must be good or damaged").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
	}
	return nil
}
