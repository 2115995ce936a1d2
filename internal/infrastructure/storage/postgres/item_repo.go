package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"posledger/internal/core/apperror"
	"posledger/internal/core/id"
	"posledger/internal/domain/item"
)

const itemTable = "items"

// Compile-time check.
var _ item.Repository = (*ItemRepo)(nil)

// ItemRepo implements item.Repository.
type ItemRepo struct {
	repoBase
}

// NewItemRepo creates a new item repository.
func NewItemRepo(txm *TxManager) *ItemRepo {
	return &ItemRepo{
		repoBase: newRepoBase(txm, itemTable, ExtractDBColumns[item.Item]()),
	}
}

func (r *ItemRepo) Create(ctx context.Context, it *item.Item) error {
	return r.insert(ctx, it)
}

func (r *ItemRepo) GetByID(ctx context.Context, itemID id.ID) (*item.Item, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"id": itemID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	it := &item.Item{}
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, it, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("item", itemID.String())
		}
		return nil, fmt.Errorf("get item: %w", err)
	}
	return it, nil
}

func (r *ItemRepo) Update(ctx context.Context, it *item.Item) error {
	return r.updateVersioned(ctx, it)
}

// ListPage returns up to limit items ordered by ID starting after afterID.
// The keyset walk keeps batch close bounded regardless of catalog size.
func (r *ItemRepo) ListPage(ctx context.Context, afterID id.ID, limit int) ([]*item.Item, error) {
	q := r.baseSelect().
		Where(squirrel.Gt{"id": afterID}).
		OrderBy("id ASC").
		Limit(uint64(limit))

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*item.Item
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

// CloseBatch applies the period-close snapshot to the given items in one
// statement: opening stock becomes quantity on hand and the period
// counters reset.
func (r *ItemRepo) CloseBatch(ctx context.Context, ids []id.ID, closedAt time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	q := r.Builder().
		Update(itemTable).
		Set("opening_stock", squirrel.Expr("qty_on_hand")).
		Set("period_in", 0).
		Set("period_out", 0).
		Set("closed_at", closedAt).
		Set("updated_at", closedAt).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": ids})

	sql, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build close batch: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("close batch: %w", err)
	}
	return result.RowsAffected(), nil
}
