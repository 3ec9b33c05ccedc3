package backend

import (
	"context"
	"fmt"

	"storefront/internal/domain"
	"storefront/internal/util"
)

// Unavailable is installed when the configured backend cannot be opened.
// Every operation fails with util.ErrBackendUnavailable; there is no fallback
// to the other backend.
type Unavailable struct {
	name  string
	cause error
}

// NewUnavailable returns a Backend that reports cause on every call.
func NewUnavailable(name string, cause error) *Unavailable {
	return &Unavailable{name: name, cause: cause}
}

func (u *Unavailable) err() error {
	return fmt.Errorf("%w: %s: %v", util.ErrBackendUnavailable, u.name, u.cause)
}

func (u *Unavailable) Name() string { return u.name }
func (u *Unavailable) Ping(ctx context.Context) error { return u.err() }
func (u *Unavailable) Close() error { return nil }

func (u *Unavailable) GetAccount(ctx context.Context, id int64) (*domain.Account, error) {
	return nil, u.err()
}

func (u *Unavailable) GetAccountByUsername(ctx context.Context, username string) (*domain.Account, error) {
	return nil, u.err()
}

func (u *Unavailable) CreateAccount(ctx context.Context, account *domain.Account) error {
	return u.err()
}

func (u *Unavailable) UpdateAccount(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	return nil, u.err()
}

func (u *Unavailable) ListCatalog(ctx context.Context) ([]domain.CatalogItem, error) {
	return nil, u.err()
}

func (u *Unavailable) SeedCatalog(ctx context.Context, items []domain.CatalogItem) (int, error) {
	return 0, u.err()
}

func (u *Unavailable) GetCart(ctx context.Context, accountID int64) ([]domain.CartItem, error) {
	return nil, u.err()
}

func (u *Unavailable) ReplaceCart(ctx context.Context, accountID int64, lines []domain.CartLine) error {
	return u.err()
}

func (u *Unavailable) AddToCart(ctx context.Context, line domain.CartLine) error {
	return u.err()
}

func (u *Unavailable) ClearCart(ctx context.Context, accountID int64) error {
	return u.err()
}

func (u *Unavailable) Checkout(ctx context.Context, purchase *domain.Purchase) error {
	return u.err()
}
