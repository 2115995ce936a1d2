package returns_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"posledger/internal/core/apperror"
	"posledger/internal/core/id"
	"posledger/internal/core/types"
	"posledger/internal/domain/item"
	"posledger/internal/domain/returns"
	"posledger/internal/domain/sales"
	"posledger/internal/domain/wallet"
	"posledger/internal/infrastructure/storage/memory"
)

type fixture struct {
	store   *memory.Store
	items   *memory.ItemRepo
	wallets *memory.WalletRepo
	sales   *memory.SalesRepo
	service *returns.Service
}

func newFixture(t *testing.T, walletBalance string) *fixture {
	t.Helper()
	store := memory.NewStore()
	items := memory.NewItemRepo(store)
	wallets := memory.NewWalletRepo(store)
	salesRepo := memory.NewSalesRepo(store)
	repo := memory.NewReturnRepo(store)
	seq := memory.NewSequenceGenerator(store)

	ctx := context.Background()
	require.NoError(t, wallets.Create(ctx, wallet.NewAccount(wallet.MethodCash, types.MustMoney(walletBalance))))

	return &fixture{
		store:   store,
		items:   items,
		wallets: wallets,
		sales:   salesRepo,
		service: returns.NewService(repo, items, wallets, salesRepo, seq, store),
	}
}

func qty(v float64) types.Quantity { return types.NewQuantityFromFloat64(v) }

// seedSale installs an item with stock and a sale of soldQty units at price.
func (f *fixture) seedSale(t *testing.T, soldQty float64, price string) (*item.Item, *sales.Sale) {
	t.Helper()
	ctx := context.Background()

	it := item.New("Coffee Beans", "", "kg", item.KindPurchasable)
	require.NoError(t, f.items.Create(ctx, it))

	sale := &sales.Sale{
		ID:            id.New(),
		Number:        "POS-1001",
		Date:          time.Now(),
		Shift:         "morning",
		PaymentMethod: wallet.MethodCash,
		Total:         qty(soldQty).Decimal().Mul(types.MustMoney(price)),
		CreatedAt:     time.Now().UTC(),
		Lines: []sales.SaleLine{{
			LineID:    id.New(),
			LineNo:    1,
			ItemID:    it.ID,
			Qty:       qty(soldQty),
			UnitPrice: types.MustMoney(price),
		}},
	}
	require.NoError(t, f.sales.Create(ctx, sale))
	return it, sale
}

func TestProcessReturn(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "1000")
	it, sale := f.seedSale(t, 5, "100")

	record, err := f.service.ProcessReturn(ctx, sale.ID, []returns.LineInput{
		{ItemID: it.ID, Qty: qty(2), Condition: returns.ConditionGood},
	}, wallet.MethodCash, "alice")
	require.NoError(t, err)

	assert.Regexp(t, `^RET-\d{4}-\d{5}$`, record.Number)
	assert.True(t, record.RefundAmount.Equal(types.MustMoney("200")), "refund = %s", record.RefundAmount)
	// Price comes from the sale, not the caller.
	assert.True(t, record.Lines[0].UnitPrice.Equal(types.MustMoney("100")))

	acct, err := f.wallets.GetByMethod(ctx, wallet.MethodCash)
	require.NoError(t, err)
	assert.True(t, acct.Balance.Equal(types.MustMoney("800")), "balance = %s", acct.Balance)

	got, err := f.items.GetByID(ctx, it.ID)
	require.NoError(t, err)
	assert.Equal(t, qty(2), got.QtyOnHand)
}

func TestProcessReturnDamagedNotRestocked(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "1000")
	it, sale := f.seedSale(t, 5, "100")

	record, err := f.service.ProcessReturn(ctx, sale.ID, []returns.LineInput{
		{ItemID: it.ID, Qty: qty(3), Condition: returns.ConditionDamaged},
	}, wallet.MethodCash, "alice")
	require.NoError(t, err)

	// Damaged units are refunded in full but never go back on the shelf.
	assert.True(t, record.RefundAmount.Equal(types.MustMoney("300")))
	got, err := f.items.GetByID(ctx, it.ID)
	require.NoError(t, err)
	assert.True(t, got.QtyOnHand.IsZero())
}

func TestProcessReturnInsufficientFunds(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "300")
	it, sale := f.seedSale(t, 5, "100")

	_, err := f.service.ProcessReturn(ctx, sale.ID, []returns.LineInput{
		{ItemID: it.ID, Qty: qty(5), Condition: returns.ConditionGood},
	}, wallet.MethodCash, "alice")
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientFunds(err))

	// Nothing moved.
	acct, err := f.wallets.GetByMethod(ctx, wallet.MethodCash)
	require.NoError(t, err)
	assert.True(t, acct.Balance.Equal(types.MustMoney("300")))
	got, err := f.items.GetByID(ctx, it.ID)
	require.NoError(t, err)
	assert.True(t, got.QtyOnHand.IsZero())
}

func TestProcessReturnDuplicateRejected(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "1000")
	it, sale := f.seedSale(t, 5, "100")

	_, err := f.service.ProcessReturn(ctx, sale.ID, []returns.LineInput{
		{ItemID: it.ID, Qty: qty(1), Condition: returns.ConditionGood},
	}, wallet.MethodCash, "alice")
	require.NoError(t, err)

	_, err = f.service.ProcessReturn(ctx, sale.ID, []returns.LineInput{
		{ItemID: it.ID, Qty: qty(1), Condition: returns.ConditionGood},
	}, wallet.MethodCash, "alice")
	require.Error(t, err)
	assert.True(t, apperror.IsDuplicateReturn(err))
}

func TestProcessReturnRejectsOverAndForeignLines(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "1000")
	it, sale := f.seedSale(t, 5, "100")

	// More than was sold.
	_, err := f.service.ProcessReturn(ctx, sale.ID, []returns.LineInput{
		{ItemID: it.ID, Qty: qty(6), Condition: returns.ConditionGood},
	}, wallet.MethodCash, "alice")
	assert.Error(t, err)

	// Item not on the sale.
	_, err = f.service.ProcessReturn(ctx, sale.ID, []returns.LineInput{
		{ItemID: id.New(), Qty: qty(1), Condition: returns.ConditionGood},
	}, wallet.MethodCash, "alice")
	assert.Error(t, err)
}

func TestProcessReturnInputValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "1000")
	it, sale := f.seedSale(t, 5, "100")

	_, err := f.service.ProcessReturn(ctx, id.Nil(), nil, wallet.MethodCash, "")
	assert.Error(t, err)

	_, err = f.service.ProcessReturn(ctx, sale.ID, []returns.LineInput{
		{ItemID: it.ID, Qty: qty(1), Condition: returns.ConditionGood},
	}, wallet.Method("crypto"), "")
	assert.Error(t, err)

	_, err = f.service.ProcessReturn(ctx, sale.ID, []returns.LineInput{
		{ItemID: it.ID, Qty: qty(1), Condition: returns.Condition("wet")},
	}, wallet.MethodCash, "")
	assert.Error(t, err)
}

func TestDeleteReturnReversesEverything(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "1000")
	it, sale := f.seedSale(t, 5, "100")

	record, err := f.service.ProcessReturn(ctx, sale.ID, []returns.LineInput{
		{ItemID: it.ID, Qty: qty(2), Condition: returns.ConditionGood},
	}, wallet.MethodCash, "alice")
	require.NoError(t, err)

	require.NoError(t, f.service.DeleteReturn(ctx, record.ID))

	acct, err := f.wallets.GetByMethod(ctx, wallet.MethodCash)
	require.NoError(t, err)
	assert.True(t, acct.Balance.Equal(types.MustMoney("1000")), "balance = %s", acct.Balance)

	got, err := f.items.GetByID(ctx, it.ID)
	require.NoError(t, err)
	assert.True(t, got.QtyOnHand.IsZero())

	_, err = f.service.GetReturn(ctx, record.ID)
	assert.True(t, apperror.IsNotFound(err))

	// The sale can be returned again once the first return is gone.
	_, err = f.service.ProcessReturn(ctx, sale.ID, []returns.LineInput{
		{ItemID: it.ID, Qty: qty(1), Condition: returns.ConditionGood},
	}, wallet.MethodCash, "alice")
	assert.NoError(t, err)
}
