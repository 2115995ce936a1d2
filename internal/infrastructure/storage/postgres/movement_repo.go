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
	"posledger/internal/domain/movement"
)

const (
	stockInTable     = "stock_ins"
	stockInLineTable = "stock_in_lines"
	stockOutTable    = "stock_outs"
)

var stockInLineCols = []string{"line_id", "movement_id", "line_no", "item_id", "qty", "unit_price", "unit"}

// Compile-time check.
var _ movement.Repository = (*MovementRepo)(nil)

// MovementRepo implements movement.Repository. Stock-in lines are bulk
// inserted via COPY since a receipt can carry many lines.
type MovementRepo struct {
	txm      *TxManager
	ins      repoBase
	outs     repoBase
	inserter *BatchInserter
}

// NewMovementRepo creates a new stock movement repository.
func NewMovementRepo(txm *TxManager) *MovementRepo {
	return &MovementRepo{
		txm:      txm,
		ins:      newRepoBase(txm, stockInTable, ExtractDBColumns[movement.StockIn]()),
		outs:     newRepoBase(txm, stockOutTable, ExtractDBColumns[movement.StockOut]()),
		inserter: NewBatchInserter(txm),
	}
}

// CreateStockIn inserts the header row and bulk-copies the lines.
// Must run inside a transaction so the header and lines commit together.
func (r *MovementRepo) CreateStockIn(ctx context.Context, m *movement.StockIn) error {
	if err := r.ins.insert(ctx, m); err != nil {
		return err
	}

	rows := make([][]any, len(m.Lines))
	for i, line := range m.Lines {
		rows[i] = []any{line.LineID, m.ID, line.LineNo, line.ItemID, line.Qty, line.UnitPrice, line.Unit}
	}

	if _, err := r.inserter.CopyFromSlice(ctx, stockInLineTable, stockInLineCols, rows); err != nil {
		return fmt.Errorf("insert stock-in lines: %w", err)
	}
	return nil
}

func (r *MovementRepo) GetStockIn(ctx context.Context, movementID id.ID) (*movement.StockIn, error) {
	q := r.ins.baseSelect().
		Where(squirrel.Eq{"id": movementID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	m := &movement.StockIn{}
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, m, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("stock-in", movementID.String())
		}
		return nil, fmt.Errorf("get stock-in: %w", err)
	}

	lines, err := r.linesFor(ctx, movementID)
	if err != nil {
		return nil, err
	}
	m.Lines = lines
	return m, nil
}

func (r *MovementRepo) linesFor(ctx context.Context, movementID id.ID) ([]movement.StockInLine, error) {
	q := r.ins.Builder().
		Select("line_id", "line_no", "item_id", "qty", "unit_price", "unit").
		From(stockInLineTable).
		Where(squirrel.Eq{"movement_id": movementID}).
		OrderBy("line_no ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []movement.StockInLine
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get stock-in lines: %w", err)
	}
	return lines, nil
}

// DeleteStockIn removes the lines and the header.
func (r *MovementRepo) DeleteStockIn(ctx context.Context, movementID id.ID) error {
	q := r.ins.Builder().
		Delete(stockInLineTable).
		Where(squirrel.Eq{"movement_id": movementID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("delete stock-in lines: %w", err)
	}

	return r.ins.deleteByID(ctx, movementID)
}

func (r *MovementRepo) ListStockIns(ctx context.Context, limit, offset int) ([]*movement.StockIn, error) {
	q := r.ins.baseSelect().
		OrderBy("created_at DESC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	if offset > 0 {
		q = q.Offset(uint64(offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var ms []*movement.StockIn
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &ms, sql, args...); err != nil {
		return nil, fmt.Errorf("list stock-ins: %w", err)
	}

	for _, m := range ms {
		lines, err := r.linesFor(ctx, m.ID)
		if err != nil {
			return nil, err
		}
		m.Lines = lines
	}
	return ms, nil
}

func (r *MovementRepo) CreateStockOut(ctx context.Context, m *movement.StockOut) error {
	return r.outs.insert(ctx, m)
}

func (r *MovementRepo) GetStockOut(ctx context.Context, movementID id.ID) (*movement.StockOut, error) {
	q := r.outs.baseSelect().
		Where(squirrel.Eq{"id": movementID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	m := &movement.StockOut{}
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, m, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("stock-out", movementID.String())
		}
		return nil, fmt.Errorf("get stock-out: %w", err)
	}
	return m, nil
}

func (r *MovementRepo) ListStockOuts(ctx context.Context, limit, offset int) ([]*movement.StockOut, error) {
	q := r.outs.baseSelect().
		OrderBy("created_at DESC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	if offset > 0 {
		q = q.Offset(uint64(offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var ms []*movement.StockOut
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &ms, sql, args...); err != nil {
		return nil, fmt.Errorf("list stock-outs: %w", err)
	}
	return ms, nil
}

// OutTotalsByDate aggregates issued quantity per item for one business day.
func (r *MovementRepo) OutTotalsByDate(ctx context.Context, date time.Time) (map[id.ID]types.Quantity, error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.AddDate(0, 0, 1)

	q := r.outs.Builder().
		Select("item_id", "COALESCE(SUM(qty), 0)::bigint AS total").
		From(stockOutTable).
		Where(squirrel.GtOrEq{"date": dayStart}).
		Where(squirrel.Lt{"date": dayEnd}).
		GroupBy("item_id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.txm.GetQuerier(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("aggregate stock-outs: %w", err)
	}
	defer rows.Close()

	totals := make(map[id.ID]types.Quantity)
	for rows.Next() {
		var itemID id.ID
		var total int64
		if err := rows.Scan(&itemID, &total); err != nil {
			return nil, fmt.Errorf("scan stock-out total: %w", err)
		}
		totals[itemID] = types.Quantity(total)
	}
	return totals, rows.Err()
}
