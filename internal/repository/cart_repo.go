// internal/repository/cart_repo.go
package repository

import (
	"context"

	"storefront/internal/domain"
)

// CartRepository defines the interface for cart data operations.
type CartRepository interface {
	// GetCartItems returns the account's cart lines joined with the live catalog.
	GetCartItems(ctx context.Context, q DBExecutor, accountID int64) ([]domain.CartItem, error)
	// DeleteCart removes every line of the account's cart.
	DeleteCart(ctx context.Context, q DBExecutor, accountID int64) error
	// PutLine stores a line, overwriting the quantity of an existing (account, item) row.
	PutLine(ctx context.Context, q DBExecutor, line domain.CartLine) error
	// AddLine stores a line, adding to the quantity of an existing (account, item) row.
	AddLine(ctx context.Context, q DBExecutor, line domain.CartLine) error
}
