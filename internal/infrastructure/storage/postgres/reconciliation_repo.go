package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"posledger/internal/core/apperror"
	"posledger/internal/core/id"
	"posledger/internal/domain/reconciliation"
)

const (
	balanceTable = "daily_balances"
	entryTable   = "report_entries"
)

// Compile-time check.
var _ reconciliation.Repository = (*ReconciliationRepo)(nil)

// ReconciliationRepo implements reconciliation.Repository.
type ReconciliationRepo struct {
	txm      *TxManager
	balances repoBase
	entries  repoBase
}

// NewReconciliationRepo creates a new reconciliation repository.
func NewReconciliationRepo(txm *TxManager) *ReconciliationRepo {
	return &ReconciliationRepo{
		txm:      txm,
		balances: newRepoBase(txm, balanceTable, ExtractDBColumns[reconciliation.DailyBalance]()),
		entries:  newRepoBase(txm, entryTable, ExtractDBColumns[reconciliation.ReportEntry]()),
	}
}

func (r *ReconciliationRepo) GetBalance(ctx context.Context, date time.Time, shift string, itemID id.ID) (*reconciliation.DailyBalance, error) {
	q := r.balances.baseSelect().
		Where(squirrel.Eq{"date": reconciliation.NormalizeDate(date)}).
		Where(squirrel.Eq{"shift": shift}).
		Where(squirrel.Eq{"item_id": itemID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	b := &reconciliation.DailyBalance{}
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, b, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("daily balance", itemID.String())
		}
		return nil, fmt.Errorf("get daily balance: %w", err)
	}
	return b, nil
}

func (r *ReconciliationRepo) ListBalances(ctx context.Context, date time.Time, shift string) ([]*reconciliation.DailyBalance, error) {
	q := r.balances.baseSelect().
		Where(squirrel.Eq{"date": reconciliation.NormalizeDate(date)}).
		Where(squirrel.Eq{"shift": shift}).
		OrderBy("item_id ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var balances []*reconciliation.DailyBalance
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &balances, sql, args...); err != nil {
		return nil, fmt.Errorf("list daily balances: %w", err)
	}
	return balances, nil
}

func (r *ReconciliationRepo) CreateBalance(ctx context.Context, b *reconciliation.DailyBalance) error {
	return r.balances.insert(ctx, b)
}

func (r *ReconciliationRepo) UpdateBalance(ctx context.Context, b *reconciliation.DailyBalance) error {
	return r.balances.updateVersioned(ctx, b)
}

func (r *ReconciliationRepo) CreateEntry(ctx context.Context, e *reconciliation.ReportEntry) error {
	return r.entries.insert(ctx, e)
}

func (r *ReconciliationRepo) GetEntry(ctx context.Context, entryID id.ID) (*reconciliation.ReportEntry, error) {
	q := r.entries.baseSelect().
		Where(squirrel.Eq{"id": entryID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	e := &reconciliation.ReportEntry{}
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, e, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("report entry", entryID.String())
		}
		return nil, fmt.Errorf("get report entry: %w", err)
	}
	return e, nil
}

func (r *ReconciliationRepo) DeleteEntry(ctx context.Context, entryID id.ID) error {
	return r.entries.deleteByID(ctx, entryID)
}

func (r *ReconciliationRepo) ListEntries(ctx context.Context, date time.Time, shift string) ([]*reconciliation.ReportEntry, error) {
	q := r.entries.baseSelect().
		Where(squirrel.Eq{"date": reconciliation.NormalizeDate(date)}).
		Where(squirrel.Eq{"shift": shift}).
		OrderBy("item_id ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var entries []*reconciliation.ReportEntry
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &entries, sql, args...); err != nil {
		return nil, fmt.Errorf("list report entries: %w", err)
	}
	return entries, nil
}
