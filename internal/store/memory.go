package store

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/vendcore/vendcore/internal/domain"
)

// accountRec and productRec carry their own lock so that two distinct
// accounts (or products) never contend with each other. The outer maps are
// guarded separately and only for lookup and insert/delete.
type accountRec struct {
	mu sync.Mutex
	a  domain.Account
}

type productRec struct {
	mu sync.Mutex
	p  domain.Product
}

// Memory is the in-process Store backend. It backs single-process deployments
// and the concurrency test suite.
type Memory struct {
	mu       sync.RWMutex
	accounts map[uuid.UUID]*accountRec
	byName   map[string]uuid.UUID
	products map[uuid.UUID]*productRec
}

func NewMemory() *Memory {
	return &Memory{
		accounts: make(map[uuid.UUID]*accountRec),
		byName:   make(map[string]uuid.UUID),
		products: make(map[uuid.UUID]*productRec),
	}
}

func (m *Memory) Close() {}

func (m *Memory) account(id uuid.UUID) (*accountRec, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.accounts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return rec, nil
}

func (m *Memory) product(id uuid.UUID) (*productRec, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return rec, nil
}

func (m *Memory) CreateAccount(_ context.Context, a *domain.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byName[a.Username]; ok {
		return domain.ErrUsernameTaken
	}
	m.accounts[a.ID] = &accountRec{a: *a}
	m.byName[a.Username] = a.ID
	return nil
}

func (m *Memory) GetAccount(_ context.Context, id uuid.UUID) (*domain.Account, error) {
	rec, err := m.account(id)
	if err != nil {
		return nil, err
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	a := rec.a
	return &a, nil
}

func (m *Memory) GetAccountByUsername(ctx context.Context, username string) (*domain.Account, error) {
	m.mu.RLock()
	id, ok := m.byName[username]
	m.mu.RUnlock()
	if !ok {
		return nil, domain.ErrNotFound
	}
	return m.GetAccount(ctx, id)
}

func (m *Memory) AddBalance(_ context.Context, id uuid.UUID, amount int64) (int64, error) {
	rec, err := m.account(id)
	if err != nil {
		return 0, err
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	rec.a.Balance += amount
	return rec.a.Balance, nil
}

func (m *Memory) DebitBalance(_ context.Context, id uuid.UUID, amount int64) (int64, error) {
	rec, err := m.account(id)
	if err != nil {
		return 0, err
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.a.Balance < amount {
		return 0, domain.ErrInsufficientFunds
	}
	rec.a.Balance -= amount
	if rec.a.Balance < 0 {
		panic(fmt.Sprintf("store: balance went negative for account %s", id))
	}
	return rec.a.Balance, nil
}

func (m *Memory) ResetBalance(_ context.Context, id uuid.UUID) (int64, error) {
	rec, err := m.account(id)
	if err != nil {
		return 0, err
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	prev := rec.a.Balance
	rec.a.Balance = 0
	return prev, nil
}

func (m *Memory) CreateProduct(_ context.Context, p *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[p.ID] = &productRec{p: *p}
	return nil
}

func (m *Memory) GetProduct(_ context.Context, id uuid.UUID) (*domain.Product, error) {
	rec, err := m.product(id)
	if err != nil {
		return nil, err
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	p := rec.p
	return &p, nil
}

func (m *Memory) ListProducts(_ context.Context) ([]domain.Product, error) {
	m.mu.RLock()
	recs := make([]*productRec, 0, len(m.products))
	for _, rec := range m.products {
		recs = append(recs, rec)
	}
	m.mu.RUnlock()

	out := make([]domain.Product, 0, len(recs))
	for _, rec := range recs {
		rec.mu.Lock()
		out = append(out, rec.p)
		rec.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) UpdateProduct(_ context.Context, id uuid.UUID, name string, price int64) (*domain.Product, error) {
	rec, err := m.product(id)
	if err != nil {
		return nil, err
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	rec.p.Name = name
	rec.p.Price = price
	p := rec.p
	return &p, nil
}

func (m *Memory) DeleteProduct(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *Memory) DecrementStock(_ context.Context, id uuid.UUID, qty int64) (*domain.Product, error) {
	rec, err := m.product(id)
	if err != nil {
		return nil, err
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.p.Stock < qty {
		return nil, domain.ErrInsufficientStock
	}
	rec.p.Stock -= qty
	if rec.p.Stock < 0 {
		panic(fmt.Sprintf("store: stock went negative for product %s", id))
	}
	p := rec.p
	return &p, nil
}

func (m *Memory) AddStock(_ context.Context, id uuid.UUID, qty int64) (*domain.Product, error) {
	rec, err := m.product(id)
	if err != nil {
		return nil, err
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.p.Stock > math.MaxInt64-qty {
		// Committing the wrapped value would leave stock negative.
		return nil, fmt.Errorf("store: stock overflow for product %s", id)
	}
	rec.p.Stock += qty
	p := rec.p
	return &p, nil
}
