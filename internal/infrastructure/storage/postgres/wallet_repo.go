package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"posledger/internal/core/apperror"
	"posledger/internal/domain/wallet"
)

const walletTable = "wallet_accounts"

// Compile-time check.
var _ wallet.Repository = (*WalletRepo)(nil)

// WalletRepo implements wallet.Repository.
type WalletRepo struct {
	repoBase
}

// NewWalletRepo creates a new wallet repository.
func NewWalletRepo(txm *TxManager) *WalletRepo {
	return &WalletRepo{
		repoBase: newRepoBase(txm, walletTable, ExtractDBColumns[wallet.Account]()),
	}
}

func (r *WalletRepo) Create(ctx context.Context, a *wallet.Account) error {
	return r.insert(ctx, a)
}

func (r *WalletRepo) GetByMethod(ctx context.Context, method wallet.Method) (*wallet.Account, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"method": method}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	a := &wallet.Account{}
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, a, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("wallet account", string(method))
		}
		return nil, fmt.Errorf("get wallet account: %w", err)
	}
	return a, nil
}

func (r *WalletRepo) Update(ctx context.Context, a *wallet.Account) error {
	return r.updateVersioned(ctx, a)
}

func (r *WalletRepo) List(ctx context.Context) ([]*wallet.Account, error) {
	q := r.baseSelect().
		OrderBy("method ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var accounts []*wallet.Account
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &accounts, sql, args...); err != nil {
		return nil, fmt.Errorf("list wallet accounts: %w", err)
	}
	return accounts, nil
}
