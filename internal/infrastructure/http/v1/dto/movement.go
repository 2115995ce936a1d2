package dto

import (
	"time"

	"posledger/internal/core/id"
	"posledger/internal/core/types"
	"posledger/internal/domain/movement"
)

// StockInLineRequest is one received line.
type StockInLineRequest struct {
	ItemID    string         `json:"itemId" binding:"required"`
	Qty       types.Quantity `json:"qty" binding:"required"`
	UnitPrice types.Money    `json:"unitPrice"`
	Unit      string         `json:"unit" binding:"required"`
}

// CreateStockInRequest records a batch receipt.
type CreateStockInRequest struct {
	Date         time.Time            `json:"date" binding:"required"`
	SupplierName string               `json:"supplierName"`
	SupplierRef  string               `json:"supplierRef"`
	Lines        []StockInLineRequest `json:"lines" binding:"required"`
}

// ToEntity converts the request to a domain stock-in. Invalid line item
// IDs surface through entity validation as nil IDs.
func (r CreateStockInRequest) ToEntity(createdBy string) *movement.StockIn {
	m := movement.NewStockIn(r.Date, r.SupplierName, r.SupplierRef, createdBy)
	for _, line := range r.Lines {
		itemID, _ := id.Parse(line.ItemID)
		m.AddLine(itemID, line.Qty, line.UnitPrice, line.Unit)
	}
	return m
}

// CreateStockOutRequest records a single-item issue.
type CreateStockOutRequest struct {
	Date     time.Time      `json:"date" binding:"required"`
	ItemID   string         `json:"itemId" binding:"required"`
	Qty      types.Quantity `json:"qty" binding:"required"`
	Receiver string         `json:"receiver" binding:"required"`
	Remark   string         `json:"remark"`
}

// ToEntity converts the request to a domain stock-out.
func (r CreateStockOutRequest) ToEntity(createdBy string) *movement.StockOut {
	itemID, _ := id.Parse(r.ItemID)
	return movement.NewStockOut(r.Date, itemID, r.Qty, r.Receiver, r.Remark, createdBy)
}
