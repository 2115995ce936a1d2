// Package memory provides an in-memory implementation of the ledger
// repositories and transaction manager. It backs tests and local
// development; semantics mirror the postgres implementation, including
// optimistic version checks and transactional rollback.
package memory

import (
	"context"
	"sync"

	"posledger/internal/core/id"
	"posledger/internal/core/tx"
	"posledger/internal/domain/item"
	"posledger/internal/domain/movement"
	"posledger/internal/domain/reconciliation"
	"posledger/internal/domain/returns"
	"posledger/internal/domain/sales"
	"posledger/internal/domain/wallet"
)

// state is the whole dataset. Transactions snapshot it so a failed
// function restores the pre-transaction view.
type state struct {
	items     map[id.ID]*item.Item
	stockIns  map[id.ID]*movement.StockIn
	stockOuts map[id.ID]*movement.StockOut
	returns   map[id.ID]*returns.ReturnRecord
	expenses  map[id.ID]*returns.ExpenseRecord
	wallets   map[wallet.Method]*wallet.Account
	sales     map[id.ID]*sales.Sale
	balances  map[string]*reconciliation.DailyBalance
	entries   map[id.ID]*reconciliation.ReportEntry
	counters  map[string]int64
}

func newState() *state {
	return &state{
		items:     make(map[id.ID]*item.Item),
		stockIns:  make(map[id.ID]*movement.StockIn),
		stockOuts: make(map[id.ID]*movement.StockOut),
		returns:   make(map[id.ID]*returns.ReturnRecord),
		expenses:  make(map[id.ID]*returns.ExpenseRecord),
		wallets:   make(map[wallet.Method]*wallet.Account),
		sales:     make(map[id.ID]*sales.Sale),
		balances:  make(map[string]*reconciliation.DailyBalance),
		entries:   make(map[id.ID]*reconciliation.ReportEntry),
		counters:  make(map[string]int64),
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.items {
		c.items[k] = cloneItem(v)
	}
	for k, v := range s.stockIns {
		c.stockIns[k] = cloneStockIn(v)
	}
	for k, v := range s.stockOuts {
		c.stockOuts[k] = cloneStockOut(v)
	}
	for k, v := range s.returns {
		c.returns[k] = cloneReturn(v)
	}
	for k, v := range s.expenses {
		c.expenses[k] = cloneExpense(v)
	}
	for k, v := range s.wallets {
		c.wallets[k] = cloneAccount(v)
	}
	for k, v := range s.sales {
		c.sales[k] = cloneSale(v)
	}
	for k, v := range s.balances {
		c.balances[k] = cloneBalance(v)
	}
	for k, v := range s.entries {
		c.entries[k] = cloneEntry(v)
	}
	for k, v := range s.counters {
		c.counters[k] = v
	}
	return c
}

// Store holds the dataset and implements tx.ReadOnlyManager. A single
// mutex serializes transactions, which is exactly the contention model
// tests want to be deterministic.
type Store struct {
	mu sync.Mutex
	st *state
}

// Compile-time check.
var _ tx.ReadOnlyManager = (*Store)(nil)

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{st: newState()}
}

// txKey marks a context as running inside a transaction.
type txKey struct{}

// lock acquires the store mutex unless the context already holds it
// through an enclosing transaction.
func (s *Store) lock(ctx context.Context) func() {
	if ctx.Value(txKey{}) != nil {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// RunInTransaction executes fn against the live state under the store
// lock. On error the pre-transaction snapshot is restored, so partial
// writes never become visible. Nested calls reuse the transaction.
func (s *Store) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()
	err := fn(context.WithValue(ctx, txKey{}, struct{}{}))
	if err != nil {
		s.st = snapshot
		return err
	}
	return nil
}

// ReadOnly executes fn under the store lock without snapshotting.
func (s *Store) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return fn(context.WithValue(ctx, txKey{}, struct{}{}))
}
