package dto

import (
	"posledger/internal/core/id"
	"posledger/internal/core/types"
	"posledger/internal/domain/returns"
)

// ReturnLineRequest is one returned line. Prices are resolved from the
// original sale server-side, never taken from the caller.
type ReturnLineRequest struct {
	ItemID    string         `json:"itemId" binding:"required"`
	Qty       types.Quantity `json:"qty" binding:"required"`
	Condition string         `json:"condition" binding:"required"`
}

// CreateReturnRequest processes a return against a prior sale.
type CreateReturnRequest struct {
	OriginalSaleID string              `json:"originalSaleId" binding:"required"`
	RefundMethod   string              `json:"refundMethod" binding:"required"`
	Lines          []ReturnLineRequest `json:"lines" binding:"required"`
}

// LineInputs converts request lines to domain inputs.
func (r CreateReturnRequest) LineInputs() []returns.LineInput {
	lines := make([]returns.LineInput, len(r.Lines))
	for i, line := range r.Lines {
		itemID, _ := id.Parse(line.ItemID)
		lines[i] = returns.LineInput{
			ItemID:    itemID,
			Qty:       line.Qty,
			Condition: returns.Condition(line.Condition),
		}
	}
	return lines
}
