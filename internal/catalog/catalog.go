// Package catalog owns product records: seller-scoped CRUD plus the atomic
// stock movements used by purchases and restocking.
package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vendcore/vendcore/internal/domain"
	"github.com/vendcore/vendcore/internal/store"
)

type Catalog struct {
	store store.Store
}

func New(s store.Store) *Catalog {
	return &Catalog{store: s}
}

func validPrice(price int64) bool {
	return price > 0 && price%5 == 0
}

// Create adds a product owned by the acting seller.
func (c *Catalog) Create(ctx context.Context, sellerID uuid.UUID, name string, price, stock int64) (*domain.Product, error) {
	a, err := c.store.GetAccount(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	if a.Role != domain.RoleSeller {
		return nil, domain.ErrInvalidRole
	}
	if !validPrice(price) {
		return nil, domain.ErrInvalidPrice
	}
	if stock < 0 {
		return nil, fmt.Errorf("catalog: negative initial stock")
	}

	p := &domain.Product{
		ID:        uuid.New(),
		OwnerID:   sellerID,
		Name:      name,
		Price:     price,
		Stock:     stock,
		CreatedAt: time.Now().UTC(),
	}
	if err := c.store.CreateProduct(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (c *Catalog) Get(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return c.store.GetProduct(ctx, id)
}

func (c *Catalog) List(ctx context.Context) ([]domain.Product, error) {
	return c.store.ListProducts(ctx)
}

// requireOwner loads the product and checks that actorID created it.
func (c *Catalog) requireOwner(ctx context.Context, actorID, productID uuid.UUID) (*domain.Product, error) {
	p, err := c.store.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p.OwnerID != actorID {
		return nil, domain.ErrForbidden
	}
	return p, nil
}

// Update renames or reprices a product. Only the owning seller may call it.
func (c *Catalog) Update(ctx context.Context, actorID, productID uuid.UUID, name string, price int64) (*domain.Product, error) {
	if _, err := c.requireOwner(ctx, actorID, productID); err != nil {
		return nil, err
	}
	if !validPrice(price) {
		return nil, domain.ErrInvalidPrice
	}
	return c.store.UpdateProduct(ctx, productID, name, price)
}

// Delete removes a product. Only the owning seller may call it.
func (c *Catalog) Delete(ctx context.Context, actorID, productID uuid.UUID) error {
	if _, err := c.requireOwner(ctx, actorID, productID); err != nil {
		return err
	}
	return c.store.DeleteProduct(ctx, productID)
}

// Restock adds qty units to a product owned by actorID. It goes through the
// same atomic path as the purchase-side stock movements.
func (c *Catalog) Restock(ctx context.Context, actorID, productID uuid.UUID, qty int64) (*domain.Product, error) {
	if _, err := c.requireOwner(ctx, actorID, productID); err != nil {
		return nil, err
	}
	if qty <= 0 {
		return nil, fmt.Errorf("catalog: restock quantity must be positive")
	}
	return c.store.AddStock(ctx, productID, qty)
}

// ReserveAndDecrement atomically takes qty units of stock for a purchase.
func (c *Catalog) ReserveAndDecrement(ctx context.Context, productID uuid.UUID, qty int64) (*domain.Product, error) {
	return c.store.DecrementStock(ctx, productID, qty)
}

// Release returns qty units reserved by ReserveAndDecrement. It is the
// compensation path for a purchase whose debit failed.
func (c *Catalog) Release(ctx context.Context, productID uuid.UUID, qty int64) (*domain.Product, error) {
	return c.store.AddStock(ctx, productID, qty)
}
