// internal/repository/postgres/cart_pg.go
package postgres

import (
	"context"
	"fmt"

	"storefront/internal/domain"
	"storefront/internal/repository"
)

// CartRepository implements repository.CartRepository for PostgreSQL.
type CartRepository struct{}

// NewCartRepository creates a new CartRepository.
func NewCartRepository() repository.CartRepository {
	return &CartRepository{}
}

// GetCartItems returns cart lines joined with the current catalog price and metadata.
func (r *CartRepository) GetCartItems(ctx context.Context, q repository.DBExecutor, accountID int64) ([]domain.CartItem, error) {
	items := []domain.CartItem{}
	query := `
		SELECT c.id, c.title, c.price, c.original_price, c.description, c.genre, c.rating, c.image, c.discount,
		       l.quantity
		FROM cart_lines l
		JOIN catalog_items c ON c.id = l.item_id
		WHERE l.account_id = $1
		ORDER BY l.id`
	if err := q.SelectContext(ctx, &items, query, accountID); err != nil {
		return nil, fmt.Errorf("failed to get cart for account %d: %w", accountID, TranslateError(err))
	}
	return items, nil
}

// DeleteCart removes all cart lines of an account. Deleting an empty cart is not an error.
func (r *CartRepository) DeleteCart(ctx context.Context, q repository.DBExecutor, accountID int64) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM cart_lines WHERE account_id = $1`, accountID); err != nil {
		return fmt.Errorf("failed to clear cart for account %d: %w", accountID, TranslateError(err))
	}
	return nil
}

// PutLine inserts a line or overwrites the quantity of the existing (account, item) row.
func (r *CartRepository) PutLine(ctx context.Context, q repository.DBExecutor, line domain.CartLine) error {
	query := `INSERT INTO cart_lines (account_id, item_id, quantity) VALUES ($1, $2, $3)
              ON CONFLICT (account_id, item_id)
              DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = NOW()`
	if _, err := q.ExecContext(ctx, query, line.AccountID, line.ItemID, line.Quantity); err != nil {
		return fmt.Errorf("failed to put cart line for item %d: %w", line.ItemID, TranslateError(err))
	}
	return nil
}

// AddLine inserts a line or merges its quantity into the existing (account, item) row.
func (r *CartRepository) AddLine(ctx context.Context, q repository.DBExecutor, line domain.CartLine) error {
	query := `INSERT INTO cart_lines (account_id, item_id, quantity) VALUES ($1, $2, $3)
              ON CONFLICT (account_id, item_id)
              DO UPDATE SET quantity = cart_lines.quantity + EXCLUDED.quantity, updated_at = NOW()`
	if _, err := q.ExecContext(ctx, query, line.AccountID, line.ItemID, line.Quantity); err != nil {
		return fmt.Errorf("failed to add cart line for item %d: %w", line.ItemID, TranslateError(err))
	}
	return nil
}
