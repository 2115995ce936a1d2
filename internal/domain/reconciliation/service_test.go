package reconciliation_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"posledger/internal/core/apperror"
	"posledger/internal/core/id"
	"posledger/internal/core/types"
	"posledger/internal/domain/movement"
	"posledger/internal/domain/reconciliation"
	"posledger/internal/domain/sales"
	"posledger/internal/domain/wallet"
	"posledger/internal/infrastructure/storage/memory"
)

var day = time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)

type fixture struct {
	store     *memory.Store
	movements *memory.MovementRepo
	sales     *memory.SalesRepo
	repo      *memory.ReconciliationRepo
	service   *reconciliation.Service
}

func newFixture() *fixture {
	store := memory.NewStore()
	movements := memory.NewMovementRepo(store)
	salesRepo := memory.NewSalesRepo(store)
	repo := memory.NewReconciliationRepo(store)
	return &fixture{
		store:     store,
		movements: movements,
		sales:     salesRepo,
		repo:      repo,
		service:   reconciliation.NewService(repo, movements, salesRepo, store),
	}
}

func qty(v float64) types.Quantity { return types.NewQuantityFromFloat64(v) }

func (f *fixture) addStockOut(t *testing.T, itemID id.ID, date time.Time, q types.Quantity) {
	t.Helper()
	out := movement.NewStockOut(date, itemID, q, "front counter", "", "")
	out.Number = "SOUT-TEST"
	require.NoError(t, f.movements.CreateStockOut(context.Background(), out))
}

func (f *fixture) addSale(t *testing.T, itemID id.ID, date time.Time, shift string, q types.Quantity) {
	t.Helper()
	sale := &sales.Sale{
		ID:            id.New(),
		Number:        "POS-1",
		Date:          date,
		Shift:         shift,
		PaymentMethod: wallet.MethodCash,
		CreatedAt:     time.Now().UTC(),
		Lines: []sales.SaleLine{{
			LineID: id.New(), LineNo: 1, ItemID: itemID, Qty: q, UnitPrice: types.MustMoney("10"),
		}},
	}
	require.NoError(t, f.sales.Create(context.Background(), sale))
}

func TestGenerateReport(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	itemID := id.New()

	f.addStockOut(t, itemID, day, qty(10))
	f.addSale(t, itemID, day, "morning", qty(5))

	rows, err := f.service.GenerateReport(ctx, day, "morning")
	require.NoError(t, err)
	require.Len(t, rows, 1)

	b := rows[0]
	assert.Equal(t, itemID, b.ItemID)
	assert.Equal(t, types.Quantity(0), b.OpeningBalance)
	assert.Equal(t, qty(10), b.StockOutQty)
	assert.Equal(t, qty(5), b.SaleQty)
	assert.Equal(t, qty(5), b.CalculatedBalance)
	assert.Equal(t, reconciliation.StatePending, b.State)
	assert.Nil(t, b.ActualBalance)
}

func TestGenerateReportRequiresShift(t *testing.T) {
	f := newFixture()
	_, err := f.service.GenerateReport(context.Background(), day, "")
	assert.Error(t, err)
}

func TestGenerateReportIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	itemID := id.New()

	f.addStockOut(t, itemID, day, qty(10))

	first, err := f.service.GenerateReport(ctx, day, "morning")
	require.NoError(t, err)
	require.Len(t, first, 1)

	// Re-running with unchanged activity must not touch the row.
	second, err := f.service.GenerateReport(ctx, day, "morning")
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].ID, second[0].ID)
	assert.Equal(t, first[0].Version, second[0].Version)
}

func TestGenerateReportRefreshesPendingRows(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	itemID := id.New()

	f.addStockOut(t, itemID, day, qty(10))
	_, err := f.service.GenerateReport(ctx, day, "morning")
	require.NoError(t, err)

	// New sale after the first run; the pending row picks it up.
	f.addSale(t, itemID, day, "morning", qty(4))

	rows, err := f.service.GenerateReport(ctx, day, "morning")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, qty(4), rows[0].SaleQty)
	assert.Equal(t, qty(6), rows[0].CalculatedBalance)
}

func TestSaveActualBalance(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	itemID := id.New()

	f.addStockOut(t, itemID, day, qty(30))
	f.addSale(t, itemID, day, "morning", qty(5))
	_, err := f.service.GenerateReport(ctx, day, "morning")
	require.NoError(t, err)

	b, err := f.service.SaveActualBalance(ctx, itemID, day, "morning", qty(22), "alice")
	require.NoError(t, err)

	assert.Equal(t, reconciliation.StateSaved, b.State)
	require.NotNil(t, b.ActualBalance)
	assert.Equal(t, qty(22), *b.ActualBalance)
	require.NotNil(t, b.Shortage)
	assert.Equal(t, qty(3), *b.Shortage)

	entries, err := f.service.ListEntries(ctx, day, "morning")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, qty(22), entries[0].ActualBalance)
	assert.Equal(t, qty(3), entries[0].Shortage)
	assert.Equal(t, "alice", entries[0].SavedBy)

	// The counted balance seeds the next day's opening.
	next, err := f.repo.GetBalance(ctx, day.AddDate(0, 0, 1), "morning", itemID)
	require.NoError(t, err)
	assert.Equal(t, qty(22), next.OpeningBalance)
	assert.Equal(t, reconciliation.StatePending, next.State)
}

func TestSaveActualBalanceCarriesIntoNextReport(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	itemID := id.New()

	f.addStockOut(t, itemID, day, qty(20))
	_, err := f.service.GenerateReport(ctx, day, "morning")
	require.NoError(t, err)
	_, err = f.service.SaveActualBalance(ctx, itemID, day, "morning", qty(20), "alice")
	require.NoError(t, err)

	nextDay := day.AddDate(0, 0, 1)
	f.addStockOut(t, itemID, nextDay, qty(10))
	f.addSale(t, itemID, nextDay, "morning", qty(5))

	rows, err := f.service.GenerateReport(ctx, nextDay, "morning")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, qty(20), rows[0].OpeningBalance)
	assert.Equal(t, qty(25), rows[0].CalculatedBalance)
}

func TestSaveActualBalanceRejectsSecondSave(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	itemID := id.New()

	f.addStockOut(t, itemID, day, qty(10))
	_, err := f.service.GenerateReport(ctx, day, "morning")
	require.NoError(t, err)

	_, err = f.service.SaveActualBalance(ctx, itemID, day, "morning", qty(10), "alice")
	require.NoError(t, err)

	_, err = f.service.SaveActualBalance(ctx, itemID, day, "morning", qty(9), "bob")
	require.Error(t, err)
	assert.True(t, apperror.IsAlreadySaved(err))
}

func TestSaveActualBalanceRejectsNegative(t *testing.T) {
	f := newFixture()
	_, err := f.service.SaveActualBalance(context.Background(), id.New(), day, "morning", qty(-1), "")
	assert.Error(t, err)
}

func TestSaveActualBalanceZeroDoesNotSeedNextDay(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	itemID := id.New()

	f.addStockOut(t, itemID, day, qty(5))
	f.addSale(t, itemID, day, "morning", qty(5))
	_, err := f.service.GenerateReport(ctx, day, "morning")
	require.NoError(t, err)

	_, err = f.service.SaveActualBalance(ctx, itemID, day, "morning", qty(0), "alice")
	require.NoError(t, err)

	_, err = f.repo.GetBalance(ctx, day.AddDate(0, 0, 1), "morning", itemID)
	assert.True(t, apperror.IsNotFound(err))
}

func TestDeleteReportEntryReopensBalance(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	itemID := id.New()

	f.addStockOut(t, itemID, day, qty(10))
	_, err := f.service.GenerateReport(ctx, day, "morning")
	require.NoError(t, err)
	_, err = f.service.SaveActualBalance(ctx, itemID, day, "morning", qty(8), "alice")
	require.NoError(t, err)

	entries, err := f.service.ListEntries(ctx, day, "morning")
	require.NoError(t, err)
	require.Len(t, entries, 1)

	require.NoError(t, f.service.DeleteReportEntry(ctx, entries[0].ID))

	b, err := f.repo.GetBalance(ctx, day, "morning", itemID)
	require.NoError(t, err)
	assert.Equal(t, reconciliation.StatePending, b.State)
	assert.Nil(t, b.ActualBalance)
	assert.Nil(t, b.Shortage)

	// The successor row keeps its seeded opening balance.
	next, err := f.repo.GetBalance(ctx, day.AddDate(0, 0, 1), "morning", itemID)
	require.NoError(t, err)
	assert.Equal(t, qty(8), next.OpeningBalance)

	// The row can be counted again.
	_, err = f.service.SaveActualBalance(ctx, itemID, day, "morning", qty(10), "bob")
	assert.NoError(t, err)
}

func TestSalesFromOtherShiftExcluded(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	itemID := id.New()

	f.addStockOut(t, itemID, day, qty(10))
	f.addSale(t, itemID, day, "morning", qty(3))
	f.addSale(t, itemID, day, "evening", qty(4))

	rows, err := f.service.GenerateReport(ctx, day, "morning")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, qty(3), rows[0].SaleQty)
}
