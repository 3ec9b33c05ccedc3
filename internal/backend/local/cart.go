package local

import (
	"context"
	"fmt"

	"storefront/internal/domain"
	"storefront/internal/repository"
	"storefront/internal/util"
)

func (b *Backend) ListCatalog(ctx context.Context) ([]domain.CatalogItem, error) {
	items, err := loadCatalog(ctx, b.db)
	if err != nil {
		return nil, fmt.Errorf("list catalog: %w", err)
	}
	domain.SortByTitle(items)
	return items, nil
}

// SeedCatalog stores items with fresh ids when the catalog document is empty.
func (b *Backend) SeedCatalog(ctx context.Context, items []domain.CatalogItem) (int, error) {
	added := 0
	err := b.runInTx(ctx, "seed catalog", func(q repository.DBExecutor) error {
		existing, err := loadCatalog(ctx, q)
		if err != nil {
			return fmt.Errorf("seed catalog: %w", err)
		}
		if len(existing) > 0 || len(items) == 0 {
			return nil
		}

		seeded := make([]domain.CatalogItem, len(items))
		for i, item := range items {
			id, err := nextID(ctx, q, "catalog")
			if err != nil {
				return fmt.Errorf("seed catalog: %w", err)
			}
			item.ID = id
			seeded[i] = item
			items[i].ID = id
		}
		if err := putDoc(ctx, q, keyCatalog, seeded); err != nil {
			return fmt.Errorf("seed catalog: %w", err)
		}
		added = len(seeded)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return added, nil
}

func indexCatalog(items []domain.CatalogItem) map[int64]domain.CatalogItem {
	byID := make(map[int64]domain.CatalogItem, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}
	return byID
}

// requireAccount fails with ErrNotFound when no account has id.
func requireAccount(ctx context.Context, q repository.DBExecutor, id int64) error {
	accounts, err := loadAccounts(ctx, q)
	if err != nil {
		return err
	}
	if findAccount(accounts, func(a accountDoc) bool { return a.ID == id }) < 0 {
		return fmt.Errorf("account %d: %w", id, util.ErrNotFound)
	}
	return nil
}

// requireItems fails with ErrNotFound for the first item id missing from the catalog.
func requireItems(catalog map[int64]domain.CatalogItem, ids ...int64) error {
	for _, id := range ids {
		if _, ok := catalog[id]; !ok {
			return fmt.Errorf("catalog item %d: %w", id, util.ErrNotFound)
		}
	}
	return nil
}

// GetCart joins the cart document with the live catalog. Lines whose item left
// the catalog are skipped.
func (b *Backend) GetCart(ctx context.Context, accountID int64) ([]domain.CartItem, error) {
	items := []domain.CartItem{}
	err := b.runInTx(ctx, "get cart", func(q repository.DBExecutor) error {
		lines, err := loadCart(ctx, q, accountID)
		if err != nil {
			return fmt.Errorf("get cart: %w", err)
		}
		if len(lines) == 0 {
			return nil
		}
		catalog, err := loadCatalog(ctx, q)
		if err != nil {
			return fmt.Errorf("get cart: %w", err)
		}
		byID := indexCatalog(catalog)
		for _, line := range lines {
			if entry, ok := byID[line.ItemID]; ok {
				items = append(items, domain.CartItem{CatalogItem: entry, Quantity: line.Quantity})
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (b *Backend) ReplaceCart(ctx context.Context, accountID int64, lines []domain.CartLine) error {
	return b.runInTx(ctx, "replace cart", func(q repository.DBExecutor) error {
		if err := requireAccount(ctx, q, accountID); err != nil {
			return fmt.Errorf("replace cart: %w", err)
		}
		if len(lines) == 0 {
			if err := deleteDoc(ctx, q, cartKey(accountID)); err != nil {
				return fmt.Errorf("replace cart: %w", err)
			}
			return nil
		}

		catalog, err := loadCatalog(ctx, q)
		if err != nil {
			return fmt.Errorf("replace cart: %w", err)
		}
		byID := indexCatalog(catalog)

		docs := make([]cartLineDoc, 0, len(lines))
		for _, line := range lines {
			if err := requireItems(byID, line.ItemID); err != nil {
				return fmt.Errorf("replace cart: %w", err)
			}
			if !domain.QuantityInRange(line.Quantity) {
				return fmt.Errorf("replace cart: %w", util.Validationf("item %d: quantity %d out of range", line.ItemID, line.Quantity))
			}
			docs = append(docs, cartLineDoc{ItemID: line.ItemID, Quantity: line.Quantity})
		}
		if err := putDoc(ctx, q, cartKey(accountID), docs); err != nil {
			return fmt.Errorf("replace cart: %w", err)
		}
		return nil
	})
}

func (b *Backend) AddToCart(ctx context.Context, line domain.CartLine) error {
	if !domain.QuantityInRange(line.Quantity) {
		return fmt.Errorf("add to cart: %w", util.Validationf("item %d: quantity %d out of range", line.ItemID, line.Quantity))
	}
	return b.runInTx(ctx, "add to cart", func(q repository.DBExecutor) error {
		if err := requireAccount(ctx, q, line.AccountID); err != nil {
			return fmt.Errorf("add to cart: %w", err)
		}
		catalog, err := loadCatalog(ctx, q)
		if err != nil {
			return fmt.Errorf("add to cart: %w", err)
		}
		if err := requireItems(indexCatalog(catalog), line.ItemID); err != nil {
			return fmt.Errorf("add to cart: %w", err)
		}

		docs, err := loadCart(ctx, q, line.AccountID)
		if err != nil {
			return fmt.Errorf("add to cart: %w", err)
		}
		merged := false
		for i := range docs {
			if docs[i].ItemID == line.ItemID {
				if docs[i].Quantity > domain.MaxLineQuantity-line.Quantity {
					return fmt.Errorf("add to cart: %w", util.Validationf("item %d: quantity would exceed %d", line.ItemID, domain.MaxLineQuantity))
				}
				docs[i].Quantity += line.Quantity
				merged = true
				break
			}
		}
		if !merged {
			docs = append(docs, cartLineDoc{ItemID: line.ItemID, Quantity: line.Quantity})
		}
		if err := putDoc(ctx, q, cartKey(line.AccountID), docs); err != nil {
			return fmt.Errorf("add to cart: %w", err)
		}
		return nil
	})
}

func (b *Backend) ClearCart(ctx context.Context, accountID int64) error {
	if err := deleteDoc(ctx, b.db, cartKey(accountID)); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}
