package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"posledger/internal/core/apperror"
	"posledger/internal/domain/item"
)

func TestRunInTransactionCommit(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	items := NewItemRepo(store)

	it := item.New("Coffee Beans", "", "kg", item.KindPurchasable)
	err := store.RunInTransaction(ctx, func(ctx context.Context) error {
		return items.Create(ctx, it)
	})
	require.NoError(t, err)

	_, err = items.GetByID(ctx, it.ID)
	assert.NoError(t, err)
}

func TestRunInTransactionRollback(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	items := NewItemRepo(store)

	it := item.New("Coffee Beans", "", "kg", item.KindPurchasable)
	boom := errors.New("boom")

	err := store.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := items.Create(ctx, it); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	// The write is gone with the failed transaction.
	_, err = items.GetByID(ctx, it.ID)
	assert.True(t, apperror.IsNotFound(err))
}

func TestRunInTransactionNested(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	items := NewItemRepo(store)

	it := item.New("Coffee Beans", "", "kg", item.KindPurchasable)
	err := store.RunInTransaction(ctx, func(ctx context.Context) error {
		return store.RunInTransaction(ctx, func(ctx context.Context) error {
			return items.Create(ctx, it)
		})
	})
	require.NoError(t, err)

	_, err = items.GetByID(ctx, it.ID)
	assert.NoError(t, err)
}

func TestUpdateDetectsStaleVersion(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	items := NewItemRepo(store)

	it := item.New("Coffee Beans", "", "kg", item.KindPurchasable)
	require.NoError(t, items.Create(ctx, it))

	a, err := items.GetByID(ctx, it.ID)
	require.NoError(t, err)
	b, err := items.GetByID(ctx, it.ID)
	require.NoError(t, err)

	require.NoError(t, items.Update(ctx, a))

	err = items.Update(ctx, b)
	require.Error(t, err)
	assert.True(t, apperror.IsConcurrentModification(err))
}

func TestReadsReturnClones(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	items := NewItemRepo(store)

	it := item.New("Coffee Beans", "", "kg", item.KindPurchasable)
	require.NoError(t, items.Create(ctx, it))

	got, err := items.GetByID(ctx, it.ID)
	require.NoError(t, err)
	got.Name = "mutated"

	again, err := items.GetByID(ctx, it.ID)
	require.NoError(t, err)
	assert.Equal(t, "Coffee Beans", again.Name)
}
