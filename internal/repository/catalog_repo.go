// internal/repository/catalog_repo.go
package repository

import (
	"context"

	"storefront/internal/domain"
)

// CatalogRepository defines the interface for catalog data operations.
type CatalogRepository interface {
	// ListItems returns the whole catalog ordered by title.
	ListItems(ctx context.Context, q DBExecutor) ([]domain.CatalogItem, error)
	// CountItems returns the number of catalog entries.
	CountItems(ctx context.Context, q DBExecutor) (int, error)
	// CreateItem inserts a catalog entry and fills in its ID.
	CreateItem(ctx context.Context, q DBExecutor, item *domain.CatalogItem) error
}
