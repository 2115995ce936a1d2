package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"posledger/internal/core/apperror"
	"posledger/internal/core/id"
	"posledger/internal/domain/returns"
)

const (
	returnTable     = "returns"
	returnLineTable = "return_lines"
	expenseTable    = "expenses"
)

var returnLineCols = []string{"line_id", "return_id", "line_no", "item_id", "qty", "unit_price", "condition"}

// Compile-time check.
var _ returns.Repository = (*ReturnRepo)(nil)

// ReturnRepo implements returns.Repository.
type ReturnRepo struct {
	txm      *TxManager
	rets     repoBase
	expenses repoBase
	inserter *BatchInserter
}

// NewReturnRepo creates a new return repository.
func NewReturnRepo(txm *TxManager) *ReturnRepo {
	return &ReturnRepo{
		txm:      txm,
		rets:     newRepoBase(txm, returnTable, ExtractDBColumns[returns.ReturnRecord]()),
		expenses: newRepoBase(txm, expenseTable, ExtractDBColumns[returns.ExpenseRecord]()),
		inserter: NewBatchInserter(txm),
	}
}

// CreateReturn inserts the return header and bulk-copies its lines.
// A unique index on original_sale_id backs the one-return-per-sale rule;
// a violation is surfaced as DUPLICATE_RETURN.
func (r *ReturnRepo) CreateReturn(ctx context.Context, rec *returns.ReturnRecord) error {
	if err := r.rets.insert(ctx, rec); err != nil {
		if isUniqueViolation(err) {
			return apperror.NewDuplicateReturn(rec.OriginalSaleID.String()).WithCause(err)
		}
		return err
	}

	rows := make([][]any, len(rec.Lines))
	for i, line := range rec.Lines {
		rows[i] = []any{line.LineID, rec.ID, line.LineNo, line.ItemID, line.Qty, line.UnitPrice, line.Condition}
	}

	if _, err := r.inserter.CopyFromSlice(ctx, returnLineTable, returnLineCols, rows); err != nil {
		return fmt.Errorf("insert return lines: %w", err)
	}
	return nil
}

func (r *ReturnRepo) GetReturn(ctx context.Context, returnID id.ID) (*returns.ReturnRecord, error) {
	q := r.rets.baseSelect().
		Where(squirrel.Eq{"id": returnID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rec := &returns.ReturnRecord{}
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, rec, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("return", returnID.String())
		}
		return nil, fmt.Errorf("get return: %w", err)
	}

	lq := r.rets.Builder().
		Select("line_id", "line_no", "item_id", "qty", "unit_price", "condition").
		From(returnLineTable).
		Where(squirrel.Eq{"return_id": returnID}).
		OrderBy("line_no ASC")

	sql, args, err = lq.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, querier, &rec.Lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get return lines: %w", err)
	}
	return rec, nil
}

func (r *ReturnRepo) DeleteReturn(ctx context.Context, returnID id.ID) error {
	q := r.rets.Builder().
		Delete(returnLineTable).
		Where(squirrel.Eq{"return_id": returnID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("delete return lines: %w", err)
	}

	return r.rets.deleteByID(ctx, returnID)
}

func (r *ReturnRepo) ExistsForSale(ctx context.Context, originalSaleID id.ID) (bool, error) {
	q := r.rets.Builder().
		Select("1").
		From(returnTable).
		Where(squirrel.Eq{"original_sale_id": originalSaleID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	var exists int
	err = r.txm.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&exists)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("exists for sale: %w", err)
	}
	return true, nil
}

func (r *ReturnRepo) CreateExpense(ctx context.Context, e *returns.ExpenseRecord) error {
	return r.expenses.insert(ctx, e)
}

func (r *ReturnRepo) DeleteExpense(ctx context.Context, expenseID id.ID) error {
	return r.expenses.deleteByID(ctx, expenseID)
}
