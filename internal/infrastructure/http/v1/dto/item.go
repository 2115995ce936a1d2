package dto

import (
	"posledger/internal/core/types"
	"posledger/internal/domain/item"
)

// CreateItemRequest registers a new item in the ledger.
type CreateItemRequest struct {
	Name string `json:"name" binding:"required"`
	SKU  string `json:"sku"`
	Unit string `json:"unit" binding:"required"`
	Kind string `json:"kind" binding:"required"`
}

// ToEntity converts the request to a domain item.
func (r CreateItemRequest) ToEntity() *item.Item {
	return item.New(r.Name, r.SKU, r.Unit, item.Kind(r.Kind))
}

// SetCostingModeRequest switches costing ownership for an item.
type SetCostingModeRequest struct {
	Mode string `json:"mode" binding:"required"`
}

// SetManualCostRequest writes the average cost directly (manual mode only).
type SetManualCostRequest struct {
	Cost types.Money `json:"cost" binding:"required"`
}
