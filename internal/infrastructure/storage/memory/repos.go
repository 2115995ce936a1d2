package memory

import (
	"context"
	"sort"
	"time"

	"posledger/internal/core/apperror"
	"posledger/internal/core/id"
	"posledger/internal/core/sequence"
	"posledger/internal/core/types"
	"posledger/internal/domain/item"
	"posledger/internal/domain/movement"
	"posledger/internal/domain/reconciliation"
	"posledger/internal/domain/returns"
	"posledger/internal/domain/sales"
	"posledger/internal/domain/wallet"
)

// ---- item ----

// ItemRepo implements item.Repository.
type ItemRepo struct{ s *Store }

var _ item.Repository = (*ItemRepo)(nil)

// NewItemRepo creates an item repository over the store.
func NewItemRepo(s *Store) *ItemRepo { return &ItemRepo{s: s} }

func (r *ItemRepo) Create(ctx context.Context, it *item.Item) error {
	defer r.s.lock(ctx)()
	r.s.st.items[it.ID] = cloneItem(it)
	return nil
}

func (r *ItemRepo) GetByID(ctx context.Context, itemID id.ID) (*item.Item, error) {
	defer r.s.lock(ctx)()
	it, ok := r.s.st.items[itemID]
	if !ok {
		return nil, apperror.NewNotFound("item", itemID.String())
	}
	return cloneItem(it), nil
}

func (r *ItemRepo) Update(ctx context.Context, it *item.Item) error {
	defer r.s.lock(ctx)()
	stored, ok := r.s.st.items[it.ID]
	if !ok {
		return apperror.NewNotFound("item", it.ID.String())
	}
	if stored.Version != it.Version {
		return apperror.NewConcurrentModification("item", it.ID.String())
	}
	c := cloneItem(it)
	c.Version++
	r.s.st.items[it.ID] = c
	return nil
}

func (r *ItemRepo) ListPage(ctx context.Context, afterID id.ID, limit int) ([]*item.Item, error) {
	defer r.s.lock(ctx)()

	var items []*item.Item
	for _, it := range r.s.st.items {
		if it.ID.String() > afterID.String() {
			items = append(items, cloneItem(it))
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].ID.String() < items[j].ID.String()
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (r *ItemRepo) CloseBatch(ctx context.Context, ids []id.ID, closedAt time.Time) (int64, error) {
	defer r.s.lock(ctx)()

	var n int64
	for _, itemID := range ids {
		it, ok := r.s.st.items[itemID]
		if !ok {
			continue
		}
		c := cloneItem(it)
		c.ClosePeriod(closedAt)
		c.Version++
		r.s.st.items[itemID] = c
		n++
	}
	return n, nil
}

// ---- movement ----

// MovementRepo implements movement.Repository.
type MovementRepo struct{ s *Store }

var _ movement.Repository = (*MovementRepo)(nil)

// NewMovementRepo creates a movement repository over the store.
func NewMovementRepo(s *Store) *MovementRepo { return &MovementRepo{s: s} }

func (r *MovementRepo) CreateStockIn(ctx context.Context, m *movement.StockIn) error {
	defer r.s.lock(ctx)()
	r.s.st.stockIns[m.ID] = cloneStockIn(m)
	return nil
}

func (r *MovementRepo) GetStockIn(ctx context.Context, movementID id.ID) (*movement.StockIn, error) {
	defer r.s.lock(ctx)()
	m, ok := r.s.st.stockIns[movementID]
	if !ok {
		return nil, apperror.NewNotFound("stock-in", movementID.String())
	}
	return cloneStockIn(m), nil
}

func (r *MovementRepo) DeleteStockIn(ctx context.Context, movementID id.ID) error {
	defer r.s.lock(ctx)()
	if _, ok := r.s.st.stockIns[movementID]; !ok {
		return apperror.NewNotFound("stock-in", movementID.String())
	}
	delete(r.s.st.stockIns, movementID)
	return nil
}

func (r *MovementRepo) ListStockIns(ctx context.Context, limit, offset int) ([]*movement.StockIn, error) {
	defer r.s.lock(ctx)()

	var ms []*movement.StockIn
	for _, m := range r.s.st.stockIns {
		ms = append(ms, cloneStockIn(m))
	}
	sort.Slice(ms, func(i, j int) bool { return ms[i].CreatedAt.After(ms[j].CreatedAt) })
	return page(ms, limit, offset), nil
}

func (r *MovementRepo) CreateStockOut(ctx context.Context, m *movement.StockOut) error {
	defer r.s.lock(ctx)()
	r.s.st.stockOuts[m.ID] = cloneStockOut(m)
	return nil
}

func (r *MovementRepo) GetStockOut(ctx context.Context, movementID id.ID) (*movement.StockOut, error) {
	defer r.s.lock(ctx)()
	m, ok := r.s.st.stockOuts[movementID]
	if !ok {
		return nil, apperror.NewNotFound("stock-out", movementID.String())
	}
	return cloneStockOut(m), nil
}

func (r *MovementRepo) ListStockOuts(ctx context.Context, limit, offset int) ([]*movement.StockOut, error) {
	defer r.s.lock(ctx)()

	var ms []*movement.StockOut
	for _, m := range r.s.st.stockOuts {
		ms = append(ms, cloneStockOut(m))
	}
	sort.Slice(ms, func(i, j int) bool { return ms[i].CreatedAt.After(ms[j].CreatedAt) })
	return page(ms, limit, offset), nil
}

func (r *MovementRepo) OutTotalsByDate(ctx context.Context, date time.Time) (map[id.ID]types.Quantity, error) {
	defer r.s.lock(ctx)()

	day := reconciliation.NormalizeDate(date)
	totals := make(map[id.ID]types.Quantity)
	for _, m := range r.s.st.stockOuts {
		if reconciliation.NormalizeDate(m.Date).Equal(day) {
			totals[m.ItemID] += m.Qty
		}
	}
	return totals, nil
}

// ---- returns ----

// ReturnRepo implements returns.Repository.
type ReturnRepo struct{ s *Store }

var _ returns.Repository = (*ReturnRepo)(nil)

// NewReturnRepo creates a return repository over the store.
func NewReturnRepo(s *Store) *ReturnRepo { return &ReturnRepo{s: s} }

func (r *ReturnRepo) CreateReturn(ctx context.Context, rec *returns.ReturnRecord) error {
	defer r.s.lock(ctx)()
	for _, existing := range r.s.st.returns {
		if existing.OriginalSaleID == rec.OriginalSaleID {
			return apperror.NewDuplicateReturn(rec.OriginalSaleID.String())
		}
	}
	r.s.st.returns[rec.ID] = cloneReturn(rec)
	return nil
}

func (r *ReturnRepo) GetReturn(ctx context.Context, returnID id.ID) (*returns.ReturnRecord, error) {
	defer r.s.lock(ctx)()
	rec, ok := r.s.st.returns[returnID]
	if !ok {
		return nil, apperror.NewNotFound("return", returnID.String())
	}
	return cloneReturn(rec), nil
}

func (r *ReturnRepo) DeleteReturn(ctx context.Context, returnID id.ID) error {
	defer r.s.lock(ctx)()
	if _, ok := r.s.st.returns[returnID]; !ok {
		return apperror.NewNotFound("return", returnID.String())
	}
	delete(r.s.st.returns, returnID)
	return nil
}

func (r *ReturnRepo) ExistsForSale(ctx context.Context, originalSaleID id.ID) (bool, error) {
	defer r.s.lock(ctx)()
	for _, rec := range r.s.st.returns {
		if rec.OriginalSaleID == originalSaleID {
			return true, nil
		}
	}
	return false, nil
}

func (r *ReturnRepo) CreateExpense(ctx context.Context, e *returns.ExpenseRecord) error {
	defer r.s.lock(ctx)()
	r.s.st.expenses[e.ID] = cloneExpense(e)
	return nil
}

func (r *ReturnRepo) DeleteExpense(ctx context.Context, expenseID id.ID) error {
	defer r.s.lock(ctx)()
	if _, ok := r.s.st.expenses[expenseID]; !ok {
		return apperror.NewNotFound("expense", expenseID.String())
	}
	delete(r.s.st.expenses, expenseID)
	return nil
}

// ---- wallet ----

// WalletRepo implements wallet.Repository.
type WalletRepo struct{ s *Store }

var _ wallet.Repository = (*WalletRepo)(nil)

// NewWalletRepo creates a wallet repository over the store.
func NewWalletRepo(s *Store) *WalletRepo { return &WalletRepo{s: s} }

func (r *WalletRepo) Create(ctx context.Context, a *wallet.Account) error {
	defer r.s.lock(ctx)()
	r.s.st.wallets[a.Method] = cloneAccount(a)
	return nil
}

func (r *WalletRepo) GetByMethod(ctx context.Context, method wallet.Method) (*wallet.Account, error) {
	defer r.s.lock(ctx)()
	a, ok := r.s.st.wallets[method]
	if !ok {
		return nil, apperror.NewNotFound("wallet account", string(method))
	}
	return cloneAccount(a), nil
}

func (r *WalletRepo) Update(ctx context.Context, a *wallet.Account) error {
	defer r.s.lock(ctx)()
	stored, ok := r.s.st.wallets[a.Method]
	if !ok {
		return apperror.NewNotFound("wallet account", string(a.Method))
	}
	if stored.Version != a.Version {
		return apperror.NewConcurrentModification("wallet account", string(a.Method))
	}
	c := cloneAccount(a)
	c.Version++
	r.s.st.wallets[a.Method] = c
	return nil
}

func (r *WalletRepo) List(ctx context.Context) ([]*wallet.Account, error) {
	defer r.s.lock(ctx)()

	var accounts []*wallet.Account
	for _, a := range r.s.st.wallets {
		accounts = append(accounts, cloneAccount(a))
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Method < accounts[j].Method })
	return accounts, nil
}

// ---- sales ----

// SalesRepo implements sales.Repository.
type SalesRepo struct{ s *Store }

var _ sales.Repository = (*SalesRepo)(nil)

// NewSalesRepo creates a sales repository over the store.
func NewSalesRepo(s *Store) *SalesRepo { return &SalesRepo{s: s} }

func (r *SalesRepo) Create(ctx context.Context, sl *sales.Sale) error {
	defer r.s.lock(ctx)()
	r.s.st.sales[sl.ID] = cloneSale(sl)
	return nil
}

func (r *SalesRepo) GetByID(ctx context.Context, saleID id.ID) (*sales.Sale, error) {
	defer r.s.lock(ctx)()
	sl, ok := r.s.st.sales[saleID]
	if !ok {
		return nil, apperror.NewNotFound("sale", saleID.String())
	}
	return cloneSale(sl), nil
}

func (r *SalesRepo) TotalsByDateShift(ctx context.Context, date time.Time, shift string) (map[id.ID]types.Quantity, error) {
	defer r.s.lock(ctx)()

	day := reconciliation.NormalizeDate(date)
	totals := make(map[id.ID]types.Quantity)
	for _, sl := range r.s.st.sales {
		if sl.Shift != shift || !reconciliation.NormalizeDate(sl.Date).Equal(day) {
			continue
		}
		for _, line := range sl.Lines {
			totals[line.ItemID] += line.Qty
		}
	}
	return totals, nil
}

// ---- reconciliation ----

// ReconciliationRepo implements reconciliation.Repository.
type ReconciliationRepo struct{ s *Store }

var _ reconciliation.Repository = (*ReconciliationRepo)(nil)

// NewReconciliationRepo creates a reconciliation repository over the store.
func NewReconciliationRepo(s *Store) *ReconciliationRepo { return &ReconciliationRepo{s: s} }

func (r *ReconciliationRepo) GetBalance(ctx context.Context, date time.Time, shift string, itemID id.ID) (*reconciliation.DailyBalance, error) {
	defer r.s.lock(ctx)()
	b, ok := r.s.st.balances[balanceKey(date, shift, itemID.String())]
	if !ok {
		return nil, apperror.NewNotFound("daily balance", itemID.String())
	}
	return cloneBalance(b), nil
}

func (r *ReconciliationRepo) ListBalances(ctx context.Context, date time.Time, shift string) ([]*reconciliation.DailyBalance, error) {
	defer r.s.lock(ctx)()

	day := reconciliation.NormalizeDate(date)
	var balances []*reconciliation.DailyBalance
	for _, b := range r.s.st.balances {
		if b.Shift == shift && b.Date.Equal(day) {
			balances = append(balances, cloneBalance(b))
		}
	}
	sort.Slice(balances, func(i, j int) bool {
		return balances[i].ItemID.String() < balances[j].ItemID.String()
	})
	return balances, nil
}

func (r *ReconciliationRepo) CreateBalance(ctx context.Context, b *reconciliation.DailyBalance) error {
	defer r.s.lock(ctx)()
	r.s.st.balances[balanceKey(b.Date, b.Shift, b.ItemID.String())] = cloneBalance(b)
	return nil
}

func (r *ReconciliationRepo) UpdateBalance(ctx context.Context, b *reconciliation.DailyBalance) error {
	defer r.s.lock(ctx)()
	key := balanceKey(b.Date, b.Shift, b.ItemID.String())
	stored, ok := r.s.st.balances[key]
	if !ok {
		return apperror.NewNotFound("daily balance", b.ItemID.String())
	}
	if stored.Version != b.Version {
		return apperror.NewConcurrentModification("daily balance", b.ItemID.String())
	}
	c := cloneBalance(b)
	c.Version++
	r.s.st.balances[key] = c
	return nil
}

func (r *ReconciliationRepo) CreateEntry(ctx context.Context, e *reconciliation.ReportEntry) error {
	defer r.s.lock(ctx)()
	r.s.st.entries[e.ID] = cloneEntry(e)
	return nil
}

func (r *ReconciliationRepo) GetEntry(ctx context.Context, entryID id.ID) (*reconciliation.ReportEntry, error) {
	defer r.s.lock(ctx)()
	e, ok := r.s.st.entries[entryID]
	if !ok {
		return nil, apperror.NewNotFound("report entry", entryID.String())
	}
	return cloneEntry(e), nil
}

func (r *ReconciliationRepo) DeleteEntry(ctx context.Context, entryID id.ID) error {
	defer r.s.lock(ctx)()
	if _, ok := r.s.st.entries[entryID]; !ok {
		return apperror.NewNotFound("report entry", entryID.String())
	}
	delete(r.s.st.entries, entryID)
	return nil
}

func (r *ReconciliationRepo) ListEntries(ctx context.Context, date time.Time, shift string) ([]*reconciliation.ReportEntry, error) {
	defer r.s.lock(ctx)()

	day := reconciliation.NormalizeDate(date)
	var entries []*reconciliation.ReportEntry
	for _, e := range r.s.st.entries {
		if e.Shift == shift && e.Date.Equal(day) {
			entries = append(entries, cloneEntry(e))
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].ItemID.String() < entries[j].ItemID.String()
	})
	return entries, nil
}

// ---- sequence ----

// SequenceGenerator implements sequence.Generator on the store's counters.
type SequenceGenerator struct{ s *Store }

var _ sequence.Generator = (*SequenceGenerator)(nil)

// NewSequenceGenerator creates a counter-backed generator over the store.
func NewSequenceGenerator(s *Store) *SequenceGenerator { return &SequenceGenerator{s: s} }

func (g *SequenceGenerator) Next(ctx context.Context, cfg sequence.Config, period time.Time) (string, error) {
	defer g.s.lock(ctx)()

	key := sequence.Key(cfg, period)
	g.s.st.counters[key]++
	return sequence.Format(cfg, period, g.s.st.counters[key]), nil
}

// page applies limit/offset to an already-sorted slice.
func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}
