// Package store provides durable access to accounts and products. Every
// balance or stock mutation exposed here is atomic with respect to all other
// mutations of the same record; no caller ever does a read-then-write pair.
package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/vendcore/vendcore/internal/domain"
)

// Store is the persistence contract shared by the Postgres and in-memory
// backends. Each method is a single atomic operation scoped to one record.
type Store interface {
	CreateAccount(ctx context.Context, a *domain.Account) error
	GetAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	GetAccountByUsername(ctx context.Context, username string) (*domain.Account, error)

	// AddBalance atomically applies balance += amount and returns the new
	// balance.
	AddBalance(ctx context.Context, id uuid.UUID, amount int64) (int64, error)
	// DebitBalance atomically applies balance -= amount iff balance >= amount,
	// returning the new balance or domain.ErrInsufficientFunds.
	DebitBalance(ctx context.Context, id uuid.UUID, amount int64) (int64, error)
	// ResetBalance atomically zeroes the balance and returns the prior value.
	ResetBalance(ctx context.Context, id uuid.UUID) (int64, error)

	CreateProduct(ctx context.Context, p *domain.Product) error
	GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	ListProducts(ctx context.Context) ([]domain.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, name string, price int64) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error

	// DecrementStock atomically applies stock -= qty iff stock >= qty,
	// returning the updated product or domain.ErrInsufficientStock.
	DecrementStock(ctx context.Context, id uuid.UUID, qty int64) (*domain.Product, error)
	// AddStock atomically applies stock += qty. It serves both owner restocking
	// and the purchase compensation path.
	AddStock(ctx context.Context, id uuid.UUID, qty int64) (*domain.Product, error)

	Close()
}
