package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role tags what an account is allowed to do. Buyers deposit, purchase and
// reset their balance; sellers manage the products they own.
type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleBuyer || r == RoleSeller
}

// Account represents a user of the vending machine. Balance is denominated in
// the smallest coin unit and is always a sum of coins from the machine's
// denomination set.
type Account struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Balance      int64     `json:"balance"`
	CreatedAt    time.Time `json:"created_at"`
}

// Product is a catalog entry owned by the seller that created it. Ownership
// never transfers. Price is a positive multiple of 5 and stock never goes
// negative.
type Product struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	Name      string    `json:"name"`
	Price     int64     `json:"price"`
	Stock     int64     `json:"stock"`
	CreatedAt time.Time `json:"created_at"`
}

// Receipt is the ephemeral result of a settled purchase. Change is the coin
// breakdown of the buyer's entire remaining balance, largest coin first; it is
// informational and withdraws nothing from the account.
type Receipt struct {
	AmountSpent    int64     `json:"amount_spent"`
	ProductID      uuid.UUID `json:"product_id"`
	RemainingStock int64     `json:"remaining_stock"`
	Change         []int64   `json:"change"`
}
