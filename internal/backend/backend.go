// Package backend defines the persistence contract shared by the local and
// relational storage implementations.
package backend

import (
	"context"

	"storefront/internal/domain"
)

// Backend is implemented by every storage implementation. Both implementations
// satisfy the same pre/postconditions; callers can only tell them apart by
// latency and durability.
//
// Errors returned by a Backend already belong to the util error taxonomy
// (ErrNotFound, ErrConflict, ErrBackendUnavailable, ...) where the cause is
// known; anything else is an unexpected storage failure.
type Backend interface {
	// Name identifies the implementation ("local" or "postgres").
	Name() string
	// Ping verifies the store is reachable.
	Ping(ctx context.Context) error
	// Close releases the store's resources.
	Close() error

	// GetAccount returns the account with its full purchase history.
	GetAccount(ctx context.Context, id int64) (*domain.Account, error)
	// GetAccountByUsername returns the account, including its secret hash, with its purchase history.
	GetAccountByUsername(ctx context.Context, username string) (*domain.Account, error)
	// CreateAccount stores a new account, rejecting a taken username or email.
	CreateAccount(ctx context.Context, account *domain.Account) error
	// UpdateAccount overwrites username, email and balance. account.Points must match
	// the stored value; checkout is the only writer of points.
	UpdateAccount(ctx context.Context, account *domain.Account) (*domain.Account, error)

	// ListCatalog returns the catalog ordered by title.
	ListCatalog(ctx context.Context) ([]domain.CatalogItem, error)
	// SeedCatalog inserts items when the catalog is empty and reports how many were added.
	SeedCatalog(ctx context.Context, items []domain.CatalogItem) (int, error)

	// GetCart returns the account's cart joined with the live catalog.
	GetCart(ctx context.Context, accountID int64) ([]domain.CartItem, error)
	// ReplaceCart atomically swaps the account's cart for lines.
	// lines must already be merged (one line per item) with positive quantities.
	ReplaceCart(ctx context.Context, accountID int64, lines []domain.CartLine) error
	// AddToCart merges one line into the account's cart.
	AddToCart(ctx context.Context, line domain.CartLine) error
	// ClearCart deletes every line of the account's cart. It is idempotent.
	ClearCart(ctx context.Context, accountID int64) error

	// Checkout atomically records the purchase and its lines, awards the points and
	// clears the cart. On success purchase.ID is set and its items carry catalog metadata.
	Checkout(ctx context.Context, purchase *domain.Purchase) error
}
