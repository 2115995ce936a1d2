package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"posledger/internal/core/apperror"
	"posledger/internal/core/id"
	"posledger/internal/core/types"
	"posledger/internal/domain/sales"
)

const (
	saleTable     = "sales"
	saleLineTable = "sale_lines"
)

var saleLineCols = []string{"line_id", "sale_id", "line_no", "item_id", "qty", "unit_price"}

// Compile-time check.
var _ sales.Repository = (*SalesRepo)(nil)

// SalesRepo implements sales.Repository.
type SalesRepo struct {
	repoBase
	inserter *BatchInserter
}

// NewSalesRepo creates a new sales read model repository.
func NewSalesRepo(txm *TxManager) *SalesRepo {
	return &SalesRepo{
		repoBase: newRepoBase(txm, saleTable, ExtractDBColumns[sales.Sale]()),
		inserter: NewBatchInserter(txm),
	}
}

// Create installs a sale record with its lines. Must run inside a
// transaction.
func (r *SalesRepo) Create(ctx context.Context, s *sales.Sale) error {
	if err := r.insert(ctx, s); err != nil {
		return err
	}

	rows := make([][]any, len(s.Lines))
	for i, line := range s.Lines {
		rows[i] = []any{line.LineID, s.ID, line.LineNo, line.ItemID, line.Qty, line.UnitPrice}
	}

	if _, err := r.inserter.CopyFromSlice(ctx, saleLineTable, saleLineCols, rows); err != nil {
		return fmt.Errorf("insert sale lines: %w", err)
	}
	return nil
}

func (r *SalesRepo) GetByID(ctx context.Context, saleID id.ID) (*sales.Sale, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"id": saleID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	s := &sales.Sale{}
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, s, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("sale", saleID.String())
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}

	lq := r.Builder().
		Select("line_id", "line_no", "item_id", "qty", "unit_price").
		From(saleLineTable).
		Where(squirrel.Eq{"sale_id": saleID}).
		OrderBy("line_no ASC")

	sql, args, err = lq.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, querier, &s.Lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get sale lines: %w", err)
	}
	return s, nil
}

// TotalsByDateShift aggregates sold quantity per item for one business
// day and shift.
func (r *SalesRepo) TotalsByDateShift(ctx context.Context, date time.Time, shift string) (map[id.ID]types.Quantity, error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.AddDate(0, 0, 1)

	q := r.Builder().
		Select("l.item_id", "COALESCE(SUM(l.qty), 0)::bigint AS total").
		From(saleLineTable + " l").
		Join(saleTable + " s ON s.id = l.sale_id").
		Where(squirrel.GtOrEq{"s.date": dayStart}).
		Where(squirrel.Lt{"s.date": dayEnd}).
		Where(squirrel.Eq{"s.shift": shift}).
		GroupBy("l.item_id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.txm.GetQuerier(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("aggregate sales: %w", err)
	}
	defer rows.Close()

	totals := make(map[id.ID]types.Quantity)
	for rows.Next() {
		var itemID id.ID
		var total int64
		if err := rows.Scan(&itemID, &total); err != nil {
			return nil, fmt.Errorf("scan sale total: %w", err)
		}
		totals[itemID] = types.Quantity(total)
	}
	return totals, rows.Err()
}
