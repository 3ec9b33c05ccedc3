// internal/repository/purchase_repo.go
package repository

import (
	"context"

	"storefront/internal/domain"
)

// PurchaseRepository defines the interface for purchase ledger operations.
type PurchaseRepository interface {
	// CreatePurchase inserts the purchase header and fills in its ID.
	CreatePurchase(ctx context.Context, q DBExecutor, purchase *domain.Purchase) error
	// CreatePurchaseLine inserts one line of a purchase.
	CreatePurchaseLine(ctx context.Context, q DBExecutor, line *domain.PurchaseLine) error
	// ListPurchasesByAccount returns the account's purchases, newest first, each with its items.
	ListPurchasesByAccount(ctx context.Context, q DBExecutor, accountID int64) ([]domain.Purchase, error)
}
