// Package item provides the item ledger: the authoritative per-item
// quantity and cost state everything else reconciles against.
package item

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"posledger/internal/core/apperror"
	"posledger/internal/core/id"
	"posledger/internal/core/types"
)

// Kind classifies how an item enters stock.
type Kind string

const (
	// KindPurchasable items are bought in; their cost derives from receipts.
	KindPurchasable Kind = "purchasable"
	// KindManufactured items are produced in-house. Their cost is never
	// derived from a stock-in price, so costing stays manual permanently.
	KindManufactured Kind = "manufactured"
)

// CostingMode selects who owns the average cost of an item.
type CostingMode string

const (
	// ModeAutomatic recomputes average cost from each receipt (weighted average).
	ModeAutomatic CostingMode = "automatic"
	// ModeManual leaves average cost to the operator.
	ModeManual CostingMode = "manual"
)

// Item is the per-item ledger row. It is mutated only inside atomic
// transactions driven by the movement, return and closing services.
type Item struct {
	ID id.ID `db:"id" json:"id"`

	Name string `db:"name" json:"name"`
	SKU  string `db:"sku" json:"sku,omitempty"`
	Unit string `db:"unit" json:"unit"`

	Kind        Kind        `db:"kind" json:"kind"`
	CostingMode CostingMode `db:"costing_mode" json:"costingMode"`

	// Running state
	QtyOnHand   types.Quantity `db:"qty_on_hand" json:"qtyOnHand"`
	AverageCost types.Money    `db:"average_cost" json:"averageCost"`

	// Period counters since the last close
	OpeningStock types.Quantity `db:"opening_stock" json:"openingStock"`
	PeriodIn     types.Quantity `db:"period_in" json:"periodIn"`
	PeriodOut    types.Quantity `db:"period_out" json:"periodOut"`
	ClosedAt     *time.Time     `db:"closed_at" json:"closedAt,omitempty"`

	// Version for optimistic locking (incremented on each update)
	Version int `db:"version" json:"version"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// New creates a new item ledger row.
// Manufactured items start in manual mode and stay there.
func New(name, sku, unit string, kind Kind) *Item {
	now := time.Now().UTC()
	mode := ModeAutomatic
	if kind == KindManufactured {
		mode = ModeManual
	}
	return &Item{
		ID:          id.New(),
		Name:        name,
		SKU:         sku,
		Unit:        unit,
		Kind:        kind,
		CostingMode: mode,
		AverageCost: decimal.Zero,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Touch updates the timestamp; the repository bumps Version on write.
func (i *Item) Touch() {
	i.UpdatedAt = time.Now().UTC()
}

// Validate checks entity invariants.
func (i *Item) Validate(ctx context.Context) error {
	if i.Name == "" {
		return apperror.NewValidation("item name is required").
			WithDetail("field", "name")
	}
	if i.Kind != KindPurchasable && i.Kind != KindManufactured {
		return apperror.NewValidation("unknown item kind").
			WithDetail("field", "kind")
	}
	if i.CostingMode != ModeAutomatic && i.CostingMode != ModeManual {
		return apperror.NewValidation("unknown costing mode").
			WithDetail("field", "costingMode")
	}
	if i.Kind == KindManufactured && i.CostingMode != ModeManual {
		return apperror.NewModeLocked(i.ID.String(), string(i.Kind))
	}
	if i.AverageCost.IsNegative() {
		return apperror.NewValidation("average cost must not be negative").
			WithDetail("field", "averageCost")
	}
	return nil
}

// ApplyReceipt records a stock-in of qty units at unitPrice.
// Under automatic costing the average cost becomes the quantity-weighted
// blend of existing and received stock:
//
//	newCost = (oldQty*oldCost + qty*price) / (oldQty + qty)
func (i *Item) ApplyReceipt(qty types.Quantity, unitPrice types.Money) {
	if i.CostingMode == ModeAutomatic {
		newQty := i.QtyOnHand + qty
		if newQty > 0 {
			total := i.QtyOnHand.Decimal().Mul(i.AverageCost).
				Add(qty.Decimal().Mul(unitPrice))
			i.AverageCost = total.Div(newQty.Decimal())
		} else {
			i.AverageCost = unitPrice
		}
	}

	i.QtyOnHand += qty
	i.PeriodIn += qty
	i.Touch()
}

// ReverseReceipt undoes a prior stock-in line algebraically.
// Only valid while the received quantity is still fully present; once
// units have moved on the reversal is rejected.
func (i *Item) ReverseReceipt(qty types.Quantity, unitPrice types.Money) error {
	if i.QtyOnHand < qty {
		return apperror.NewInsufficientStock(i.ID.String(), qty.Float64(), i.QtyOnHand.Float64())
	}

	newQty := i.QtyOnHand - qty
	if i.CostingMode == ModeAutomatic {
		if newQty > 0 {
			total := i.QtyOnHand.Decimal().Mul(i.AverageCost).
				Sub(qty.Decimal().Mul(unitPrice))
			if total.IsNegative() {
				total = decimal.Zero
			}
			i.AverageCost = total.Div(newQty.Decimal())
		} else {
			i.AverageCost = decimal.Zero
		}
	}

	i.QtyOnHand = newQty
	i.PeriodIn -= qty
	i.Touch()
	return nil
}

// ApplyIssue records a stock-out of qty units. Cost is never touched.
func (i *Item) ApplyIssue(qty types.Quantity) error {
	if i.QtyOnHand < qty {
		return apperror.NewInsufficientStock(i.ID.String(), qty.Float64(), i.QtyOnHand.Float64())
	}
	i.QtyOnHand -= qty
	i.PeriodOut += qty
	i.Touch()
	return nil
}

// Restock returns qty units to stock (resalable return lines).
// Average cost is not recomputed by a return.
func (i *Item) Restock(qty types.Quantity) {
	i.QtyOnHand += qty
	i.Touch()
}

// Destock removes qty units (reversal of a return restock).
func (i *Item) Destock(qty types.Quantity) error {
	if i.QtyOnHand < qty {
		return apperror.NewInsufficientStock(i.ID.String(), qty.Float64(), i.QtyOnHand.Float64())
	}
	i.QtyOnHand -= qty
	i.Touch()
	return nil
}

// ClosePeriod snapshots quantity on hand as opening stock and resets
// the period counters.
func (i *Item) ClosePeriod(closedAt time.Time) {
	i.OpeningStock = i.QtyOnHand
	i.PeriodIn = 0
	i.PeriodOut = 0
	i.ClosedAt = &closedAt
	i.Touch()
}
