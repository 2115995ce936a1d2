package returns

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"posledger/internal/core/apperror"
	"posledger/internal/core/id"
	"posledger/internal/core/sequence"
	"posledger/internal/core/tx"
	"posledger/internal/domain/item"
	"posledger/internal/domain/sales"
	"posledger/internal/domain/wallet"
	"posledger/pkg/logger"
)

const (
	returnPrefix  = "RET"
	expensePrefix = "EXP"
)

// Service processes returns and their reversals. A return debits the
// wallet of the refund method, restocks resalable units and writes one
// return record plus one linked expense record as a single transaction.
type Service struct {
	repo      Repository
	items     item.Repository
	wallets   wallet.Repository
	sales     sales.Repository
	seq       sequence.Generator
	txManager tx.Manager
}

// NewService creates a new return service.
func NewService(
	repo Repository,
	items item.Repository,
	wallets wallet.Repository,
	salesRepo sales.Repository,
	seq sequence.Generator,
	txManager tx.Manager,
) *Service {
	return &Service{
		repo:      repo,
		items:     items,
		wallets:   wallets,
		sales:     salesRepo,
		seq:       seq,
		txManager: txManager,
	}
}

// ProcessReturn compensates the given sale. The duplicate check runs both
// before the transaction (cheap rejection without contention) and inside
// it (two concurrent callers cannot both commit).
func (s *Service) ProcessReturn(
	ctx context.Context,
	originalSaleID id.ID,
	lines []LineInput,
	refundMethod wallet.Method,
	actor string,
) (*ReturnRecord, error) {
	if id.IsNil(originalSaleID) {
		return nil, apperror.NewValidation("original sale is required").
			WithDetail("field", "originalSaleId")
	}
	if !refundMethod.Valid() {
		return nil, apperror.NewValidation("unknown refund method").
			WithDetail("field", "refundMethod")
	}
	if err := ValidateLines(ctx, lines); err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsForSale(ctx, originalSaleID)
	if err != nil {
		return nil, fmt.Errorf("check existing return: %w", err)
	}
	if exists {
		return nil, apperror.NewDuplicateReturn(originalSaleID.String())
	}

	sale, err := s.sales.GetByID(ctx, originalSaleID)
	if err != nil {
		return nil, err
	}

	record, err := s.buildRecord(ctx, sale, lines, refundMethod, actor)
	if err != nil {
		return nil, err
	}

	expenseNumber, err := s.seq.Next(ctx, sequence.DefaultConfig(expensePrefix), time.Now())
	if err != nil {
		return nil, fmt.Errorf("generate expense number: %w", err)
	}

	err = tx.WithRetry(ctx, s.txManager, func(ctx context.Context) error {
		// Re-check inside the transaction: two concurrent callers may
		// both have passed the pre-check.
		exists, err := s.repo.ExistsForSale(ctx, originalSaleID)
		if err != nil {
			return fmt.Errorf("check existing return: %w", err)
		}
		if exists {
			return apperror.NewDuplicateReturn(originalSaleID.String())
		}

		acct, err := s.wallets.GetByMethod(ctx, refundMethod)
		if err != nil {
			return err
		}
		if err := acct.Debit(record.RefundAmount); err != nil {
			return err
		}
		if err := s.wallets.Update(ctx, acct); err != nil {
			return fmt.Errorf("update wallet: %w", err)
		}

		for _, line := range record.Lines {
			if line.Condition != ConditionGood {
				continue
			}
			it, err := s.items.GetByID(ctx, line.ItemID)
			if err != nil {
				return err
			}
			it.Restock(line.Qty)
			if err := s.items.Update(ctx, it); err != nil {
				return fmt.Errorf("update item %s: %w", line.ItemID, err)
			}
		}

		expense := &ExpenseRecord{
			ID:          record.ExpenseID,
			Number:      expenseNumber,
			Description: fmt.Sprintf("Refund for sale %s", sale.Number),
			Amount:      record.RefundAmount,
			Method:      refundMethod,
			ReturnID:    record.ID,
			CreatedBy:   actor,
			CreatedAt:   record.CreatedAt,
		}
		if err := s.repo.CreateExpense(ctx, expense); err != nil {
			return fmt.Errorf("create expense: %w", err)
		}

		if err := s.repo.CreateReturn(ctx, record); err != nil {
			return fmt.Errorf("create return: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "return processed",
		"id", record.ID,
		"number", record.Number,
		"original_sale_id", originalSaleID,
		"refund", record.RefundAmount,
		"method", refundMethod,
	)
	return record, nil
}

// buildRecord resolves prices from the original sale and assembles the
// return record. Fails when a line refers to an item the sale did not
// contain or returns more than was sold.
func (s *Service) buildRecord(
	ctx context.Context,
	sale *sales.Sale,
	lines []LineInput,
	refundMethod wallet.Method,
	actor string,
) (*ReturnRecord, error) {
	number, err := s.seq.Next(ctx, sequence.DefaultConfig(returnPrefix), time.Now())
	if err != nil {
		return nil, fmt.Errorf("generate number: %w", err)
	}

	record := &ReturnRecord{
		ID:             id.New(),
		Number:         number,
		OriginalSaleID: sale.ID,
		RefundMethod:   refundMethod,
		RefundAmount:   decimal.Zero,
		ExpenseID:      id.New(),
		CreatedBy:      actor,
		CreatedAt:      time.Now().UTC(),
		Lines:          make([]ReturnLine, 0, len(lines)),
	}

	for i, in := range lines {
		sold := sale.Line(in.ItemID)
		if sold == nil {
			return nil, apperror.NewValidation("item was not part of the original sale").
				WithDetail("lineNo", i+1).
				WithDetail("item_id", in.ItemID.String())
		}
		if in.Qty > sold.Qty {
			return nil, apperror.NewValidation("returned quantity exceeds sold quantity").
				WithDetail("lineNo", i+1).
				WithDetail("sold", sold.Qty.Float64()).
				WithDetail("returned", in.Qty.Float64())
		}

		record.Lines = append(record.Lines, ReturnLine{
			LineID:    id.New(),
			LineNo:    i + 1,
			ItemID:    in.ItemID,
			Qty:       in.Qty,
			UnitPrice: sold.UnitPrice,
			Condition: in.Condition,
		})
		record.RefundAmount = record.RefundAmount.Add(in.Qty.Decimal().Mul(sold.UnitPrice))
	}

	return record, nil
}

// DeleteReturn reverses a processed return: credits the wallet back,
// removes restocked units and deletes the return with its linked expense,
// atomically.
func (s *Service) DeleteReturn(ctx context.Context, returnID id.ID) error {
	err := tx.WithRetry(ctx, s.txManager, func(ctx context.Context) error {
		record, err := s.repo.GetReturn(ctx, returnID)
		if err != nil {
			return err
		}

		acct, err := s.wallets.GetByMethod(ctx, record.RefundMethod)
		if err != nil {
			return err
		}
		acct.Credit(record.RefundAmount)
		if err := s.wallets.Update(ctx, acct); err != nil {
			return fmt.Errorf("update wallet: %w", err)
		}

		for _, line := range record.Lines {
			if line.Condition != ConditionGood {
				continue
			}
			it, err := s.items.GetByID(ctx, line.ItemID)
			if err != nil {
				return err
			}
			if err := it.Destock(line.Qty); err != nil {
				return err
			}
			if err := s.items.Update(ctx, it); err != nil {
				return fmt.Errorf("update item %s: %w", line.ItemID, err)
			}
		}

		if err := s.repo.DeleteExpense(ctx, record.ExpenseID); err != nil {
			return fmt.Errorf("delete expense: %w", err)
		}
		if err := s.repo.DeleteReturn(ctx, returnID); err != nil {
			return fmt.Errorf("delete return: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "return reversed", "id", returnID)
	return nil
}

// GetReturn retrieves a return with lines.
func (s *Service) GetReturn(ctx context.Context, returnID id.ID) (*ReturnRecord, error) {
	return s.repo.GetReturn(ctx, returnID)
}
