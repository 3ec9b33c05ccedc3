// internal/repository/postgres/catalog_pg.go
package postgres

import (
	"context"
	"fmt"

	"storefront/internal/domain"
	"storefront/internal/repository"
)

// CatalogRepository implements repository.CatalogRepository for PostgreSQL.
type CatalogRepository struct{}

// NewCatalogRepository creates a new CatalogRepository.
func NewCatalogRepository() repository.CatalogRepository {
	return &CatalogRepository{}
}

// ListItems returns the catalog ordered by title.
func (r *CatalogRepository) ListItems(ctx context.Context, q repository.DBExecutor) ([]domain.CatalogItem, error) {
	items := []domain.CatalogItem{}
	query := `SELECT id, title, price, original_price, description, genre, rating, image, discount
              FROM catalog_items ORDER BY title, id`
	if err := q.SelectContext(ctx, &items, query); err != nil {
		return nil, fmt.Errorf("failed to list catalog items: %w", TranslateError(err))
	}
	return items, nil
}

// CountItems returns the number of catalog entries.
func (r *CatalogRepository) CountItems(ctx context.Context, q repository.DBExecutor) (int, error) {
	var count int
	if err := q.GetContext(ctx, &count, `SELECT COUNT(*) FROM catalog_items`); err != nil {
		return 0, fmt.Errorf("failed to count catalog items: %w", TranslateError(err))
	}
	return count, nil
}

// CreateItem inserts a catalog entry.
func (r *CatalogRepository) CreateItem(ctx context.Context, q repository.DBExecutor, item *domain.CatalogItem) error {
	query := `INSERT INTO catalog_items (title, price, original_price, description, genre, rating, image, discount)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	err := q.QueryRowContext(ctx, query,
		item.Title,
		item.Price,
		item.OriginalPrice,
		item.Description,
		item.Genre,
		item.Rating,
		item.Image,
		item.Discount,
	).Scan(&item.ID)
	if err != nil {
		return fmt.Errorf("failed to create catalog item '%s': %w", item.Title, TranslateError(err))
	}
	return nil
}
