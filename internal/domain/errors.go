package domain

import "errors"

var (
	// ErrInvalidRole is returned when an operation restricted to one role is
	// attempted by an account holding the other.
	ErrInvalidRole = errors.New("operation not permitted for role")
	// ErrInvalidCoin is returned when a deposited amount is not one of the
	// machine's denominations.
	ErrInvalidCoin = errors.New("coin not in denomination set")
	// ErrInvalidPrice is returned when a product price is not a positive
	// multiple of 5.
	ErrInvalidPrice = errors.New("price must be a positive multiple of 5")
	// ErrNotFound is returned when a referenced account or product does not
	// exist.
	ErrNotFound = errors.New("not found")
	// ErrInsufficientStock is returned when a purchase asks for more units
	// than are available.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrInsufficientFunds is returned when a buyer's balance cannot cover a
	// purchase.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrForbidden is returned when a seller mutates a product it does not own.
	ErrForbidden = errors.New("not the product owner")
	// ErrUsernameTaken is returned when registering a username that exists.
	ErrUsernameTaken = errors.New("username already taken")
)
