package store

import (
	"context"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vendcore/vendcore/internal/domain"
)

func newBuyer(t *testing.T, m *Memory, balance int64) uuid.UUID {
	t.Helper()
	a := &domain.Account{
		ID:        uuid.New(),
		Username:  "buyer-" + uuid.NewString(),
		Role:      domain.RoleBuyer,
		Balance:   balance,
		CreatedAt: time.Now(),
	}
	require.NoError(t, m.CreateAccount(context.Background(), a))
	return a.ID
}

func newProduct(t *testing.T, m *Memory, price, stock int64) uuid.UUID {
	t.Helper()
	p := &domain.Product{
		ID:        uuid.New(),
		OwnerID:   uuid.New(),
		Name:      "cola",
		Price:     price,
		Stock:     stock,
		CreatedAt: time.Now(),
	}
	require.NoError(t, m.CreateProduct(context.Background(), p))
	return p.ID
}

func TestMemoryAccountNotFound(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	_, err := m.GetAccount(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = m.AddBalance(ctx, uuid.New(), 5)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = m.DebitBalance(ctx, uuid.New(), 5)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = m.ResetBalance(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMemoryDuplicateUsername(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	a := &domain.Account{ID: uuid.New(), Username: "alice", Role: domain.RoleBuyer}
	require.NoError(t, m.CreateAccount(ctx, a))
	b := &domain.Account{ID: uuid.New(), Username: "alice", Role: domain.RoleSeller}
	assert.ErrorIs(t, m.CreateAccount(ctx, b), domain.ErrUsernameTaken)
}

func TestMemoryDebitInsufficient(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	id := newBuyer(t, m, 10)

	_, err := m.DebitBalance(ctx, id, 25)
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)

	a, err := m.GetAccount(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(10), a.Balance)
}

func TestMemoryResetReturnsPrior(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	id := newBuyer(t, m, 65)

	prev, err := m.ResetBalance(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(65), prev)

	a, err := m.GetAccount(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(0), a.Balance)
}

func TestMemoryDecrementStockInsufficient(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	id := newProduct(t, m, 25, 2)

	_, err := m.DecrementStock(ctx, id, 3)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	p, err := m.GetProduct(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(2), p.Stock)
}

// Restocking past int64 max would wrap stock negative; the mutation must be
// refused, leaving stock as it was.
func TestMemoryAddStockOverflowRejected(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	id := newProduct(t, m, 5, math.MaxInt64-1)

	_, err := m.AddStock(ctx, id, 2)
	assert.Error(t, err)

	p, err := m.GetProduct(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64-1), p.Stock)

	// A fitting restock still goes through.
	p, err = m.AddStock(ctx, id, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), p.Stock)
}

// Concurrent deposits and debits on one account must net out exactly; the
// balance never double-counts a deposit and never goes negative.
func TestMemoryConcurrentBalanceMutations(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	id := newBuyer(t, m, 0)

	const n = 200
	var wg sync.WaitGroup
	var debited int64
	wg.Add(2 * n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			m.AddBalance(ctx, id, 10)
		}()
		go func() {
			defer wg.Done()
			// Failures are fine; what matters is that every success
			// really had the funds.
			if _, err := m.DebitBalance(ctx, id, 5); err == nil {
				atomic.AddInt64(&debited, 5)
			}
		}()
	}
	wg.Wait()

	a, err := m.GetAccount(ctx, id)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, a.Balance, int64(0))
	assert.Equal(t, int64(n*10)-atomic.LoadInt64(&debited), a.Balance)
}

// N concurrent decrements against stock S: exactly S succeed.
func TestMemoryConcurrentStockNoOversell(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	const stock = 50
	const buyers = 200
	id := newProduct(t, m, 5, stock)

	var wg sync.WaitGroup
	var sold int64
	var mu sync.Mutex
	wg.Add(buyers)
	for i := 0; i < buyers; i++ {
		go func() {
			defer wg.Done()
			if _, err := m.DecrementStock(ctx, id, 1); err == nil {
				mu.Lock()
				sold++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(stock), sold)
	p, err := m.GetProduct(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(0), p.Stock)
}

func TestMemoryProductCRUD(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	id := newProduct(t, m, 25, 5)

	p, err := m.UpdateProduct(ctx, id, "soda", 30)
	require.NoError(t, err)
	assert.Equal(t, "soda", p.Name)
	assert.Equal(t, int64(30), p.Price)
	assert.Equal(t, int64(5), p.Stock)

	list, err := m.ListProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, m.DeleteProduct(ctx, id))
	assert.ErrorIs(t, m.DeleteProduct(ctx, id), domain.ErrNotFound)
	_, err = m.GetProduct(ctx, id)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
