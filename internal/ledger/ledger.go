// Package ledger owns buyer balances. All mutations are atomic and role
// checked; the balance stays a sum of valid coins because every credit is a
// coin and every debit is a multiple of 5.
package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/vendcore/vendcore/internal/coin"
	"github.com/vendcore/vendcore/internal/domain"
	"github.com/vendcore/vendcore/internal/store"
)

type Ledger struct {
	store store.Store
}

func New(s store.Store) *Ledger {
	return &Ledger{store: s}
}

func (l *Ledger) requireBuyer(ctx context.Context, id uuid.UUID) error {
	a, err := l.store.GetAccount(ctx, id)
	if err != nil {
		return err
	}
	if a.Role != domain.RoleBuyer {
		return domain.ErrInvalidRole
	}
	return nil
}

// Deposit credits one coin to a buyer's balance and returns the new balance.
func (l *Ledger) Deposit(ctx context.Context, accountID uuid.UUID, c int64) (int64, error) {
	if err := l.requireBuyer(ctx, accountID); err != nil {
		return 0, err
	}
	if !coin.Valid(c) {
		return 0, domain.ErrInvalidCoin
	}
	balance, err := l.store.AddBalance(ctx, accountID, c)
	if err != nil {
		return 0, fmt.Errorf("deposit: %w", err)
	}
	return balance, nil
}

// Debit withdraws amount from the account. It carries no role check because
// it is only reachable through the purchase flow, which validates the buyer
// up front.
func (l *Ledger) Debit(ctx context.Context, accountID uuid.UUID, amount int64) (int64, error) {
	return l.store.DebitBalance(ctx, accountID, amount)
}

// Reset zeroes a buyer's balance. It returns the pre-reset balance and its
// coin breakdown, so the caller can hand the refunded amount back as coins.
func (l *Ledger) Reset(ctx context.Context, accountID uuid.UUID) (int64, []int64, error) {
	if err := l.requireBuyer(ctx, accountID); err != nil {
		return 0, nil, err
	}
	prev, err := l.store.ResetBalance(ctx, accountID)
	if err != nil {
		return 0, nil, fmt.Errorf("reset: %w", err)
	}
	return prev, coin.MakeChange(prev), nil
}
