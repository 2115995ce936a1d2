package dto

import (
	"posledger/internal/core/types"
)

// GenerateReportRequest computes expected balances for a window.
// Date uses the YYYY-MM-DD form.
type GenerateReportRequest struct {
	Date  string `json:"date" binding:"required"`
	Shift string `json:"shift" binding:"required"`
}

// SaveBalanceRequest finalizes one item's row with the counted quantity.
type SaveBalanceRequest struct {
	ItemID string         `json:"itemId" binding:"required"`
	Date   string         `json:"date" binding:"required"`
	Shift  string         `json:"shift" binding:"required"`
	Actual types.Quantity `json:"actual"`
}
