package item

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"posledger/internal/core/apperror"
	"posledger/internal/core/types"
)

func qty(v float64) types.Quantity { return types.NewQuantityFromFloat64(v) }

func TestNewDefaults(t *testing.T) {
	purchasable := New("Coffee Beans", "CB-01", "kg", KindPurchasable)
	assert.Equal(t, ModeAutomatic, purchasable.CostingMode)

	manufactured := New("House Blend Syrup", "", "l", KindManufactured)
	assert.Equal(t, ModeManual, manufactured.CostingMode)
}

func TestApplyReceiptWeightedAverage(t *testing.T) {
	it := New("Coffee Beans", "CB-01", "kg", KindPurchasable)

	it.ApplyReceipt(qty(10), types.MustMoney("100"))
	assert.Equal(t, qty(10), it.QtyOnHand)
	assert.True(t, it.AverageCost.Equal(types.MustMoney("100")), "cost = %s", it.AverageCost)

	// (10*100 + 5*160) / 15 = 120
	it.ApplyReceipt(qty(5), types.MustMoney("160"))
	assert.Equal(t, qty(15), it.QtyOnHand)
	assert.True(t, it.AverageCost.Equal(types.MustMoney("120")), "cost = %s", it.AverageCost)
	assert.Equal(t, qty(15), it.PeriodIn)
}

func TestApplyReceiptManualModeKeepsCost(t *testing.T) {
	it := New("House Blend Syrup", "", "l", KindManufactured)
	it.AverageCost = types.MustMoney("42")

	it.ApplyReceipt(qty(10), types.MustMoney("999"))

	assert.Equal(t, qty(10), it.QtyOnHand)
	assert.True(t, it.AverageCost.Equal(types.MustMoney("42")))
}

func TestReverseReceiptRestoresPriorState(t *testing.T) {
	it := New("Coffee Beans", "CB-01", "kg", KindPurchasable)
	it.ApplyReceipt(qty(10), types.MustMoney("100"))
	it.ApplyReceipt(qty(5), types.MustMoney("160"))

	// Reverse the second receipt; original 10 @ 100 comes back exactly.
	require.NoError(t, it.ReverseReceipt(qty(5), types.MustMoney("160")))

	assert.Equal(t, qty(10), it.QtyOnHand)
	assert.True(t, it.AverageCost.Equal(types.MustMoney("100")), "cost = %s", it.AverageCost)
	assert.Equal(t, qty(10), it.PeriodIn)
}

func TestReverseReceiptRejectsWhenUnitsMoved(t *testing.T) {
	it := New("Coffee Beans", "CB-01", "kg", KindPurchasable)
	it.ApplyReceipt(qty(10), types.MustMoney("100"))
	require.NoError(t, it.ApplyIssue(qty(8)))

	err := it.ReverseReceipt(qty(10), types.MustMoney("100"))
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))
	assert.Equal(t, qty(2), it.QtyOnHand)
}

func TestReverseReceiptClampsNegativeTotal(t *testing.T) {
	it := New("Coffee Beans", "CB-01", "kg", KindPurchasable)
	it.ApplyReceipt(qty(10), types.MustMoney("10"))

	// Reversing at a higher price than held value clamps to zero rather
	// than producing a negative cost.
	require.NoError(t, it.ReverseReceipt(qty(5), types.MustMoney("100")))
	assert.False(t, it.AverageCost.IsNegative())
}

func TestApplyIssue(t *testing.T) {
	it := New("Coffee Beans", "CB-01", "kg", KindPurchasable)
	it.ApplyReceipt(qty(10), types.MustMoney("100"))

	require.NoError(t, it.ApplyIssue(qty(4)))
	assert.Equal(t, qty(6), it.QtyOnHand)
	assert.Equal(t, qty(4), it.PeriodOut)
	assert.True(t, it.AverageCost.Equal(types.MustMoney("100")))

	err := it.ApplyIssue(qty(7))
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))
	assert.Equal(t, qty(6), it.QtyOnHand)
}

func TestRestockAndDestock(t *testing.T) {
	it := New("Coffee Beans", "CB-01", "kg", KindPurchasable)
	it.ApplyReceipt(qty(10), types.MustMoney("100"))

	it.Restock(qty(2))
	assert.Equal(t, qty(12), it.QtyOnHand)
	// Returns do not recompute cost.
	assert.True(t, it.AverageCost.Equal(types.MustMoney("100")))

	require.NoError(t, it.Destock(qty(2)))
	assert.Equal(t, qty(10), it.QtyOnHand)

	err := it.Destock(qty(11))
	assert.True(t, apperror.IsInsufficientStock(err))
}

func TestClosePeriod(t *testing.T) {
	it := New("Coffee Beans", "CB-01", "kg", KindPurchasable)
	it.ApplyReceipt(qty(10), types.MustMoney("100"))
	require.NoError(t, it.ApplyIssue(qty(3)))

	closedAt := time.Date(2026, 8, 31, 23, 0, 0, 0, time.UTC)
	it.ClosePeriod(closedAt)

	assert.Equal(t, qty(7), it.OpeningStock)
	assert.Equal(t, types.Quantity(0), it.PeriodIn)
	assert.Equal(t, types.Quantity(0), it.PeriodOut)
	require.NotNil(t, it.ClosedAt)
	assert.Equal(t, closedAt, *it.ClosedAt)
	// Quantity and cost survive the close.
	assert.Equal(t, qty(7), it.QtyOnHand)
}

func TestValidate(t *testing.T) {
	ctx := context.Background()

	it := New("Coffee Beans", "CB-01", "kg", KindPurchasable)
	require.NoError(t, it.Validate(ctx))

	noName := New("", "", "kg", KindPurchasable)
	assert.Error(t, noName.Validate(ctx))

	badKind := New("X", "", "kg", Kind("weird"))
	assert.Error(t, badKind.Validate(ctx))

	lockedMode := New("Syrup", "", "l", KindManufactured)
	lockedMode.CostingMode = ModeAutomatic
	err := lockedMode.Validate(ctx)
	require.Error(t, err)
	assert.True(t, apperror.IsModeLocked(err))
}
