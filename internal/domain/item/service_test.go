package item_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"posledger/internal/core/apperror"
	"posledger/internal/core/types"
	"posledger/internal/domain/item"
	"posledger/internal/infrastructure/storage/memory"
)

func newFixture(t *testing.T) (*item.Service, *memory.ItemRepo) {
	t.Helper()
	store := memory.NewStore()
	repo := memory.NewItemRepo(store)
	return item.NewService(repo, store), repo
}

func TestServiceCreate(t *testing.T) {
	ctx := context.Background()
	service, repo := newFixture(t)

	it := item.New("Espresso Beans", "SKU-1", "kg", item.KindPurchasable)
	require.NoError(t, service.Create(ctx, it))

	got, err := repo.GetByID(ctx, it.ID)
	require.NoError(t, err)
	assert.Equal(t, item.ModeAutomatic, got.CostingMode)
}

func TestServiceCreateInvalid(t *testing.T) {
	service, _ := newFixture(t)

	it := item.New("", "", "kg", item.KindPurchasable)
	err := service.Create(context.Background(), it)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}

func TestSetCostingModeToManual(t *testing.T) {
	ctx := context.Background()
	service, repo := newFixture(t)

	it := item.New("Espresso Beans", "", "kg", item.KindPurchasable)
	it.ApplyReceipt(types.NewQuantityFromFloat64(10), types.MustMoney("100"))
	require.NoError(t, repo.Create(ctx, it))

	require.NoError(t, service.SetCostingMode(ctx, it.ID, item.ModeManual))

	got, err := repo.GetByID(ctx, it.ID)
	require.NoError(t, err)
	assert.Equal(t, item.ModeManual, got.CostingMode)
	// Switching modes never rewrites the cost.
	assert.True(t, got.AverageCost.Equal(types.MustMoney("100")))
}

func TestSetCostingModeLockedForManufactured(t *testing.T) {
	ctx := context.Background()
	service, repo := newFixture(t)

	it := item.New("House Blend", "", "kg", item.KindManufactured)
	require.NoError(t, repo.Create(ctx, it))

	err := service.SetCostingMode(ctx, it.ID, item.ModeAutomatic)
	require.Error(t, err)
	assert.True(t, apperror.IsModeLocked(err))

	got, err := repo.GetByID(ctx, it.ID)
	require.NoError(t, err)
	assert.Equal(t, item.ModeManual, got.CostingMode)
}

func TestSetCostingModeUnknown(t *testing.T) {
	service, _ := newFixture(t)

	it := item.New("Espresso Beans", "", "kg", item.KindPurchasable)
	err := service.SetCostingMode(context.Background(), it.ID, item.CostingMode("fifo"))
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}

func TestSetManualCost(t *testing.T) {
	ctx := context.Background()
	service, repo := newFixture(t)

	it := item.New("House Blend", "", "kg", item.KindManufactured)
	require.NoError(t, repo.Create(ctx, it))

	require.NoError(t, service.SetManualCost(ctx, it.ID, types.MustMoney("42.50")))

	got, err := repo.GetByID(ctx, it.ID)
	require.NoError(t, err)
	assert.True(t, got.AverageCost.Equal(types.MustMoney("42.50")))
}

func TestSetManualCostRequiresManualMode(t *testing.T) {
	ctx := context.Background()
	service, repo := newFixture(t)

	it := item.New("Espresso Beans", "", "kg", item.KindPurchasable)
	require.NoError(t, repo.Create(ctx, it))

	err := service.SetManualCost(ctx, it.ID, types.MustMoney("42.50"))
	require.Error(t, err)
	assert.True(t, apperror.IsModeLocked(err))
}

func TestSetManualCostRejectsNegative(t *testing.T) {
	service, _ := newFixture(t)

	it := item.New("House Blend", "", "kg", item.KindManufactured)
	err := service.SetManualCost(context.Background(), it.ID, types.MustMoney("-1"))
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}

func TestSetManualCostUnknownItem(t *testing.T) {
	service, _ := newFixture(t)

	it := item.New("Ghost", "", "kg", item.KindManufactured)
	err := service.SetManualCost(context.Background(), it.ID, types.MustMoney("1"))
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}
