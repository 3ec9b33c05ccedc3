// internal/repository/account_repo.go
package repository

import (
	"context"

	"storefront/internal/domain"
)

// AccountRepository defines the interface for account data operations.
type AccountRepository interface {
	// CreateAccount inserts a new account and fills in its ID.
	CreateAccount(ctx context.Context, q DBExecutor, account *domain.Account) error
	// GetAccountByID retrieves an account (without purchases) by ID.
	GetAccountByID(ctx context.Context, q DBExecutor, id int64) (*domain.Account, error)
	// GetAccountByUsername retrieves an account (without purchases) by its username.
	GetAccountByUsername(ctx context.Context, q DBExecutor, username string) (*domain.Account, error)
	// LockAccount retrieves an account and holds a row lock until the surrounding transaction ends.
	LockAccount(ctx context.Context, q DBExecutor, id int64) (*domain.Account, error)
	// FindIdentityConflict reports ErrUsernameTaken or ErrEmailTaken when another account
	// (other than excludeID) already uses the username or email.
	FindIdentityConflict(ctx context.Context, q DBExecutor, username, email string, excludeID int64) error
	// UpdateAccount overwrites username, email, balance and points.
	UpdateAccount(ctx context.Context, q DBExecutor, account *domain.Account) error
	// AddPoints increments the account's loyalty points.
	AddPoints(ctx context.Context, q DBExecutor, id int64, points int64) error
}
