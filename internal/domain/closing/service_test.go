package closing_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"posledger/internal/core/id"
	"posledger/internal/core/types"
	"posledger/internal/domain/closing"
	"posledger/internal/domain/item"
	"posledger/internal/infrastructure/storage/memory"
)

func qty(v float64) types.Quantity { return types.NewQuantityFromFloat64(v) }

func seedItems(t *testing.T, items *memory.ItemRepo, n int) {
	t.Helper()
	ctx := context.Background()
	for i := 0; i < n; i++ {
		it := item.New("Item", "", "pcs", item.KindPurchasable)
		it.ApplyReceipt(qty(10), types.MustMoney("5"))
		require.NoError(t, it.ApplyIssue(qty(3)))
		require.NoError(t, items.Create(ctx, it))
	}
}

func TestClosePeriod(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	items := memory.NewItemRepo(store)
	seedItems(t, items, 5)

	service := closing.NewService(items, store, 0)
	result, err := service.ClosePeriod(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(5), result.ItemsProcessed)
	assert.False(t, result.ClosedAt.IsZero())

	all, err := items.ListPage(ctx, id.Nil(), 0)
	require.NoError(t, err)
	require.Len(t, all, 5)
	for _, it := range all {
		assert.Equal(t, qty(7), it.OpeningStock)
		assert.Equal(t, types.Quantity(0), it.PeriodIn)
		assert.Equal(t, types.Quantity(0), it.PeriodOut)
		require.NotNil(t, it.ClosedAt)
		assert.Equal(t, result.ClosedAt, *it.ClosedAt)
		// Quantity on hand is untouched by the close.
		assert.Equal(t, qty(7), it.QtyOnHand)
	}
}

func TestClosePeriodBatches(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	items := memory.NewItemRepo(store)
	seedItems(t, items, 7)

	// Batch size smaller than the item count forces multiple pages.
	service := closing.NewService(items, store, 3)
	result, err := service.ClosePeriod(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(7), result.ItemsProcessed)
}

func TestClosePeriodEmptyLedger(t *testing.T) {
	store := memory.NewStore()
	items := memory.NewItemRepo(store)

	service := closing.NewService(items, store, 0)
	result, err := service.ClosePeriod(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), result.ItemsProcessed)
}

func TestClosePeriodRepeatable(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	items := memory.NewItemRepo(store)
	seedItems(t, items, 2)

	service := closing.NewService(items, store, 0)
	_, err := service.ClosePeriod(ctx)
	require.NoError(t, err)

	// A second close re-snapshots the same quantities.
	result, err := service.ClosePeriod(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.ItemsProcessed)

	all, err := items.ListPage(ctx, id.Nil(), 0)
	require.NoError(t, err)
	for _, it := range all {
		assert.Equal(t, it.QtyOnHand, it.OpeningStock)
	}
}
