package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vendcore/vendcore/internal/domain"
	"github.com/vendcore/vendcore/internal/store"
)

func setup(t *testing.T, role domain.Role, balance int64) (*Ledger, uuid.UUID) {
	t.Helper()
	m := store.NewMemory()
	a := &domain.Account{
		ID:        uuid.New(),
		Username:  "u-" + uuid.NewString(),
		Role:      role,
		Balance:   balance,
		CreatedAt: time.Now(),
	}
	require.NoError(t, m.CreateAccount(context.Background(), a))
	return New(m), a.ID
}

func TestDeposit(t *testing.T) {
	l, id := setup(t, domain.RoleBuyer, 0)
	ctx := context.Background()

	balance, err := l.Deposit(ctx, id, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(10), balance)

	balance, err = l.Deposit(ctx, id, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(30), balance)
}

func TestDepositInvalidCoin(t *testing.T) {
	l, id := setup(t, domain.RoleBuyer, 0)
	ctx := context.Background()

	for _, coin := range []int64{0, 1, 7, 25, -5, 200} {
		_, err := l.Deposit(ctx, id, coin)
		assert.ErrorIs(t, err, domain.ErrInvalidCoin, "coin=%d", coin)
	}

	// Balance untouched by the rejections.
	balance, err := l.Deposit(ctx, id, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), balance)
}

func TestDepositSellerRejected(t *testing.T) {
	l, id := setup(t, domain.RoleSeller, 0)
	_, err := l.Deposit(context.Background(), id, 10)
	assert.ErrorIs(t, err, domain.ErrInvalidRole)
}

func TestDepositUnknownAccount(t *testing.T) {
	l, _ := setup(t, domain.RoleBuyer, 0)
	_, err := l.Deposit(context.Background(), uuid.New(), 10)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDebit(t *testing.T) {
	l, id := setup(t, domain.RoleBuyer, 50)
	ctx := context.Background()

	balance, err := l.Debit(ctx, id, 30)
	require.NoError(t, err)
	assert.Equal(t, int64(20), balance)

	_, err = l.Debit(ctx, id, 25)
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
}

func TestResetReturnsBalanceAsCoins(t *testing.T) {
	l, id := setup(t, domain.RoleBuyer, 185)

	prev, change, err := l.Reset(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, int64(185), prev)
	assert.Equal(t, []int64{100, 50, 20, 10, 5}, change)

	prev, change, err = l.Reset(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, int64(0), prev)
	assert.Empty(t, change)
}

func TestResetSellerRejected(t *testing.T) {
	l, id := setup(t, domain.RoleSeller, 0)
	_, _, err := l.Reset(context.Background(), id)
	assert.ErrorIs(t, err, domain.ErrInvalidRole)
}
