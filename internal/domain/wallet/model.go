// Package wallet provides the per-payment-method balance accounts that
// fund refunds.
package wallet

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"posledger/internal/core/apperror"
	"posledger/internal/core/id"
	"posledger/internal/core/types"
)

// Method is a payment method backing a wallet account.
type Method string

const (
	MethodCash   Method = "cash"
	MethodCard   Method = "card"
	MethodOnline Method = "online"
)

// Valid reports whether the method is one of the known payment methods.
func (m Method) Valid() bool {
	switch m {
	case MethodCash, MethodCard, MethodOnline:
		return true
	}
	return false
}

// Account is a running balance bucket for one payment method.
// The balance must never go negative.
type Account struct {
	ID      id.ID       `db:"id" json:"id"`
	Method  Method      `db:"method" json:"method"`
	Balance types.Money `db:"balance" json:"balance"`

	Version int `db:"version" json:"version"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewAccount creates a wallet account with an opening balance.
func NewAccount(method Method, opening types.Money) *Account {
	now := time.Now().UTC()
	return &Account{
		ID:        id.New(),
		Method:    method,
		Balance:   opening,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Debit removes amount from the balance, failing before any mutation when
// the balance does not cover it.
func (a *Account) Debit(amount types.Money) error {
	if a.Balance.LessThan(amount) {
		return apperror.NewInsufficientFunds(string(a.Method), amount.String(), a.Balance.String())
	}
	a.Balance = a.Balance.Sub(amount)
	a.UpdatedAt = time.Now().UTC()
	return nil
}

// Credit adds amount to the balance.
func (a *Account) Credit(amount types.Money) {
	a.Balance = a.Balance.Add(amount)
	a.UpdatedAt = time.Now().UTC()
}

// Validate checks entity invariants.
func (a *Account) Validate(ctx context.Context) error {
	if !a.Method.Valid() {
		return apperror.NewValidation("unknown payment method").
			WithDetail("field", "method")
	}
	if a.Balance.LessThan(decimal.Zero) {
		return apperror.NewValidation("balance must not be negative").
			WithDetail("field", "balance")
	}
	return nil
}

// Repository defines storage operations for wallet accounts.
// Update performs an optimistic version check.
type Repository interface {
	Create(ctx context.Context, a *Account) error
	GetByMethod(ctx context.Context, method Method) (*Account, error)
	Update(ctx context.Context, a *Account) error
	List(ctx context.Context) ([]*Account, error)
}
