// Package engine orchestrates a purchase across the catalog and the ledger.
package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vendcore/vendcore/internal/catalog"
	"github.com/vendcore/vendcore/internal/coin"
	"github.com/vendcore/vendcore/internal/domain"
	"github.com/vendcore/vendcore/internal/ledger"
	"github.com/vendcore/vendcore/internal/store"
)

// Engine runs the purchase flow: validate, reserve stock, debit, settle.
// Stock is reserved before the debit for every caller, so per-entity critical
// sections are always entered in the same order. A failed debit compensates
// the reservation before the error is surfaced, so no partial effect is ever
// observable.
type Engine struct {
	store   store.Store
	catalog *catalog.Catalog
	ledger  *ledger.Ledger
	log     zerolog.Logger
}

func New(s store.Store, c *catalog.Catalog, l *ledger.Ledger, log zerolog.Logger) *Engine {
	return &Engine{store: s, catalog: c, ledger: l, log: log}
}

// Purchase buys qty units of a product for the buyer and returns a receipt.
// On any failure both balance and stock are left as they were before the
// call.
func (e *Engine) Purchase(ctx context.Context, buyerID, productID uuid.UUID, qty int64) (*domain.Receipt, error) {
	if qty <= 0 {
		return nil, fmt.Errorf("engine: quantity must be positive")
	}

	// Validating
	buyer, err := e.store.GetAccount(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	if buyer.Role != domain.RoleBuyer {
		return nil, domain.ErrInvalidRole
	}
	product, err := e.store.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	cost := qty * product.Price
	if cost <= 0 || cost/qty != product.Price {
		// A cost that wraps int64 can never be covered by a real balance, so
		// reject it before any stock moves.
		return nil, domain.ErrInsufficientFunds
	}

	// Reserving
	updated, err := e.catalog.ReserveAndDecrement(ctx, productID, qty)
	if err != nil {
		return nil, err
	}

	// Debiting
	newBalance, err := e.ledger.Debit(ctx, buyerID, cost)
	if err != nil {
		// The reservation is void; put the stock back before anyone else can
		// be refused it.
		if _, compErr := e.catalog.Release(context.WithoutCancel(ctx), productID, qty); compErr != nil {
			e.log.Error().
				Err(compErr).
				Str("product_id", productID.String()).
				Int64("quantity", qty).
				Msg("stock compensation failed")
			return nil, errors.Join(err, fmt.Errorf("stock compensation failed: %w", compErr))
		}
		return nil, err
	}

	// Settled
	return &domain.Receipt{
		AmountSpent:    cost,
		ProductID:      productID,
		RemainingStock: updated.Stock,
		Change:         coin.MakeChange(newBalance),
	}, nil
}
