// internal/repository/postgres/purchase_pg.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	"storefront/internal/repository"
)

// PurchaseRepository implements repository.PurchaseRepository for PostgreSQL.
type PurchaseRepository struct{}

// NewPurchaseRepository creates a new PurchaseRepository.
func NewPurchaseRepository() repository.PurchaseRepository {
	return &PurchaseRepository{}
}

// CreatePurchase inserts the purchase header.
func (r *PurchaseRepository) CreatePurchase(ctx context.Context, q repository.DBExecutor, purchase *domain.Purchase) error {
	query := `INSERT INTO purchases (reference, account_id, total, points_earned, created_at)
              VALUES ($1, $2, $3, $4, $5) RETURNING id`
	err := q.QueryRowContext(ctx, query,
		purchase.Reference,
		purchase.AccountID,
		purchase.Total,
		purchase.PointsEarned,
		purchase.CreatedAt,
	).Scan(&purchase.ID)
	if err != nil {
		return fmt.Errorf("failed to create purchase: %w", TranslateError(err))
	}
	return nil
}

// CreatePurchaseLine inserts one purchase line with its price snapshot.
func (r *PurchaseRepository) CreatePurchaseLine(ctx context.Context, q repository.DBExecutor, line *domain.PurchaseLine) error {
	query := `INSERT INTO purchase_lines (purchase_id, item_id, quantity, price)
              VALUES ($1, $2, $3, $4) RETURNING id`
	err := q.QueryRowContext(ctx, query, line.PurchaseID, line.ItemID, line.Quantity, line.Price).Scan(&line.ID)
	if err != nil {
		return fmt.Errorf("failed to create purchase line for item %d: %w", line.ItemID, TranslateError(err))
	}
	return nil
}

// purchaseRow is one row of the purchase history join. Line and catalog columns are
// NULL for a purchase without lines or a line whose catalog entry is gone.
type purchaseRow struct {
	ID           int64               `db:"id"`
	Reference    uuid.UUID           `db:"reference"`
	AccountID    int64               `db:"account_id"`
	Total        decimal.Decimal     `db:"total"`
	PointsEarned int64               `db:"points_earned"`
	CreatedAt    time.Time           `db:"created_at"`
	ItemID       sql.NullInt64       `db:"item_id"`
	Quantity     sql.NullInt64       `db:"quantity"`
	Price        decimal.NullDecimal `db:"item_price"`
	Title        sql.NullString      `db:"title"`
	Description  sql.NullString      `db:"description"`
	Genre        sql.NullString      `db:"genre"`
	Rating       sql.NullFloat64     `db:"rating"`
	Image        sql.NullString      `db:"image"`
}

// ListPurchasesByAccount loads the purchase history with frozen line prices and live catalog metadata.
func (r *PurchaseRepository) ListPurchasesByAccount(ctx context.Context, q repository.DBExecutor, accountID int64) ([]domain.Purchase, error) {
	rows := []purchaseRow{}
	query := `
		SELECT p.id, p.reference, p.account_id, p.total, p.points_earned, p.created_at,
		       pl.item_id, pl.quantity, pl.price AS item_price,
		       c.title, c.description, c.genre, c.rating, c.image
		FROM purchases p
		LEFT JOIN purchase_lines pl ON pl.purchase_id = p.id
		LEFT JOIN catalog_items c ON c.id = pl.item_id
		WHERE p.account_id = $1
		ORDER BY p.created_at DESC, p.id DESC, pl.id ASC`
	if err := q.SelectContext(ctx, &rows, query, accountID); err != nil {
		return nil, fmt.Errorf("failed to list purchases for account %d: %w", accountID, TranslateError(err))
	}
	return groupPurchaseRows(rows), nil
}

// groupPurchaseRows folds join rows into purchases, keeping first-seen purchase order.
func groupPurchaseRows(rows []purchaseRow) []domain.Purchase {
	purchases := []domain.Purchase{}
	index := make(map[int64]int)
	for _, row := range rows {
		i, ok := index[row.ID]
		if !ok {
			i = len(purchases)
			index[row.ID] = i
			purchases = append(purchases, domain.Purchase{
				ID:           row.ID,
				Reference:    row.Reference,
				AccountID:    row.AccountID,
				Total:        row.Total,
				PointsEarned: row.PointsEarned,
				CreatedAt:    row.CreatedAt,
				Items:        []domain.PurchaseItem{},
			})
		}
		if !row.ItemID.Valid {
			continue
		}
		purchases[i].Items = append(purchases[i].Items, domain.PurchaseItem{
			ItemID:      row.ItemID.Int64,
			Title:       row.Title.String,
			Description: row.Description.String,
			Genre:       row.Genre.String,
			Rating:      row.Rating.Float64,
			Image:       row.Image.String,
			Price:       row.Price.Decimal,
			Quantity:    int(row.Quantity.Int64),
		})
	}
	return purchases
}
