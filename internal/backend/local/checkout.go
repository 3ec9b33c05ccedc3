package local

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repository"
	"storefront/internal/util"
)

// Steps of a checkout that failAt can interrupt.
const (
	stepPurchaseRecorded = "purchase-recorded"
	stepPointsAwarded    = "points-awarded"
)

// Checkout appends the purchase to the account's ledger, awards the points and
// deletes the cart document in one transaction.
func (b *Backend) Checkout(ctx context.Context, purchase *domain.Purchase) error {
	var (
		catalog    []domain.CatalogItem
		purchaseID int64
	)
	err := b.runInTx(ctx, "checkout", func(q repository.DBExecutor) error {
		accounts, err := loadAccounts(ctx, q)
		if err != nil {
			return fmt.Errorf("checkout: %w", err)
		}
		i := findAccount(accounts, func(a accountDoc) bool { return a.ID == purchase.AccountID })
		if i < 0 {
			return fmt.Errorf("checkout: account %d: %w", purchase.AccountID, util.ErrNotFound)
		}

		catalog, err = loadCatalog(ctx, q)
		if err != nil {
			return fmt.Errorf("checkout: %w", err)
		}
		byID := indexCatalog(catalog)
		lines := make([]purchaseLineDoc, 0, len(purchase.Items))
		for _, item := range purchase.Items {
			if err := requireItems(byID, item.ItemID); err != nil {
				return fmt.Errorf("checkout: %w", err)
			}
			lines = append(lines, purchaseLineDoc{ItemID: item.ItemID, Quantity: item.Quantity, Price: item.Price})
		}

		ledger, err := loadPurchases(ctx, q, purchase.AccountID)
		if err != nil {
			return fmt.Errorf("checkout: %w", err)
		}
		id, err := nextID(ctx, q, "purchases")
		if err != nil {
			return fmt.Errorf("checkout: %w", err)
		}
		ledger = append(ledger, purchaseDoc{
			ID:           id,
			Reference:    purchase.Reference,
			Total:        purchase.Total,
			PointsEarned: purchase.PointsEarned,
			CreatedAt:    purchase.CreatedAt,
			Lines:        lines,
		})
		if err := putDoc(ctx, q, purchasesKey(purchase.AccountID), ledger); err != nil {
			return fmt.Errorf("checkout: failed to record purchase: %w", err)
		}
		if err := b.step(stepPurchaseRecorded); err != nil {
			return fmt.Errorf("checkout: %w", err)
		}

		accounts[i].Points += purchase.PointsEarned
		accounts[i].UpdatedAt = time.Now().UTC()
		if err := putDoc(ctx, q, keyAccounts, accounts); err != nil {
			return fmt.Errorf("checkout: failed to award points: %w", err)
		}
		if err := b.step(stepPointsAwarded); err != nil {
			return fmt.Errorf("checkout: %w", err)
		}

		if err := deleteDoc(ctx, q, cartKey(purchase.AccountID)); err != nil {
			return fmt.Errorf("checkout: failed to clear cart: %w", err)
		}

		purchaseID = id
		return nil
	})
	if err != nil {
		return err
	}

	purchase.ID = purchaseID
	domain.DescribePurchaseItems(purchase.Items, catalog)
	return nil
}
