package local

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	"storefront/internal/repository"
)

const (
	keyAccounts = "accounts"
	keyCatalog  = "catalog"
)

func cartKey(accountID int64) string { return fmt.Sprintf("cart:%d", accountID) }
func purchasesKey(accountID int64) string { return fmt.Sprintf("purchases:%d", accountID) }
func sequenceKey(name string) string { return "sequence:" + name }

// accountDoc is the stored form of an account. Unlike domain.Account it keeps the secret hash.
type accountDoc struct {
	ID         int64           `json:"id"`
	Username   string          `json:"username"`
	Email      string          `json:"email"`
	SecretHash string          `json:"secretHash"`
	Balance    decimal.Decimal `json:"balance"`
	Points     int64           `json:"points"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

func (d accountDoc) toDomain() *domain.Account {
	return &domain.Account{
		ID:         d.ID,
		Username:   d.Username,
		Email:      d.Email,
		SecretHash: d.SecretHash,
		Balance:    d.Balance,
		Points:     d.Points,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
		Purchases:  []domain.Purchase{},
	}
}

type cartLineDoc struct {
	ItemID   int64 `json:"id"`
	Quantity int   `json:"quantity"`
}

type purchaseDoc struct {
	ID           int64             `json:"id"`
	Reference    uuid.UUID         `json:"reference"`
	Total        decimal.Decimal   `json:"total"`
	PointsEarned int64             `json:"pointsEarned"`
	CreatedAt    time.Time         `json:"date"`
	Lines        []purchaseLineDoc `json:"lines"`
}

type purchaseLineDoc struct {
	ItemID   int64           `json:"id"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

func (d purchaseDoc) toDomain(accountID int64) domain.Purchase {
	items := make([]domain.PurchaseItem, 0, len(d.Lines))
	for _, line := range d.Lines {
		items = append(items, domain.PurchaseItem{ItemID: line.ItemID, Price: line.Price, Quantity: line.Quantity})
	}
	return domain.Purchase{
		ID:           d.ID,
		Reference:    d.Reference,
		AccountID:    accountID,
		Total:        d.Total,
		PointsEarned: d.PointsEarned,
		CreatedAt:    d.CreatedAt,
		Items:        items,
	}
}

// getDoc decodes the document under key into dest. found is false when the key is absent.
func getDoc(ctx context.Context, q repository.DBExecutor, key string, dest any) (bool, error) {
	var raw string
	if err := q.GetContext(ctx, &raw, `SELECT value FROM documents WHERE key = ?`, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read document %s: %w", key, translateError(err))
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return false, fmt.Errorf("failed to decode document %s: %w", key, err)
	}
	return true, nil
}

func putDoc(ctx context.Context, q repository.DBExecutor, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode document %s: %w", key, err)
	}
	query := `INSERT INTO documents (key, value, updated_at) VALUES (?, ?, ?)
              ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	if _, err := q.ExecContext(ctx, query, key, string(raw), time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to write document %s: %w", key, translateError(err))
	}
	return nil
}

// deleteDoc removes the document under key. A missing key is not an error.
func deleteDoc(ctx context.Context, q repository.DBExecutor, key string) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM documents WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete document %s: %w", key, translateError(err))
	}
	return nil
}

// nextID advances the named sequence and returns the new value. Ids start at 1.
func nextID(ctx context.Context, q repository.DBExecutor, name string) (int64, error) {
	var last int64
	if _, err := getDoc(ctx, q, sequenceKey(name), &last); err != nil {
		return 0, err
	}
	last++
	if err := putDoc(ctx, q, sequenceKey(name), last); err != nil {
		return 0, err
	}
	return last, nil
}

func loadAccounts(ctx context.Context, q repository.DBExecutor) ([]accountDoc, error) {
	accounts := []accountDoc{}
	if _, err := getDoc(ctx, q, keyAccounts, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

func loadCatalog(ctx context.Context, q repository.DBExecutor) ([]domain.CatalogItem, error) {
	items := []domain.CatalogItem{}
	if _, err := getDoc(ctx, q, keyCatalog, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func loadCart(ctx context.Context, q repository.DBExecutor, accountID int64) ([]cartLineDoc, error) {
	lines := []cartLineDoc{}
	if _, err := getDoc(ctx, q, cartKey(accountID), &lines); err != nil {
		return nil, err
	}
	return lines, nil
}

func loadPurchases(ctx context.Context, q repository.DBExecutor, accountID int64) ([]purchaseDoc, error) {
	purchases := []purchaseDoc{}
	if _, err := getDoc(ctx, q, purchasesKey(accountID), &purchases); err != nil {
		return nil, err
	}
	return purchases, nil
}
