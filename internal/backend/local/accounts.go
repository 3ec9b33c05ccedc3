package local

import (
	"context"
	"fmt"
	"sort"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repository"
	"storefront/internal/util"
)

func findAccount(accounts []accountDoc, match func(accountDoc) bool) int {
	for i, a := range accounts {
		if match(a) {
			return i
		}
	}
	return -1
}

// identityConflict reports which identity another account (other than excludeID) already holds.
func identityConflict(accounts []accountDoc, username, email string, excludeID int64) error {
	for _, a := range accounts {
		if a.ID == excludeID {
			continue
		}
		if a.Username == username {
			return util.ErrUsernameTaken
		}
		if a.Email == email {
			return util.ErrEmailTaken
		}
	}
	return nil
}

func (b *Backend) GetAccount(ctx context.Context, id int64) (*domain.Account, error) {
	return b.readAccount(ctx, "get account", func(a accountDoc) bool { return a.ID == id })
}

func (b *Backend) GetAccountByUsername(ctx context.Context, username string) (*domain.Account, error) {
	return b.readAccount(ctx, "get account by username", func(a accountDoc) bool { return a.Username == username })
}

// readAccount loads the matching account with its purchases, newest first.
func (b *Backend) readAccount(ctx context.Context, op string, match func(accountDoc) bool) (*domain.Account, error) {
	var account *domain.Account
	err := b.runInTx(ctx, op, func(q repository.DBExecutor) error {
		accounts, err := loadAccounts(ctx, q)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		i := findAccount(accounts, match)
		if i < 0 {
			return fmt.Errorf("%s: %w", op, util.ErrNotFound)
		}
		account, err = withPurchases(ctx, q, accounts[i])
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

// withPurchases converts doc and attaches its described purchase history.
func withPurchases(ctx context.Context, q repository.DBExecutor, doc accountDoc) (*domain.Account, error) {
	account := doc.toDomain()

	stored, err := loadPurchases(ctx, q, account.ID)
	if err != nil {
		return nil, err
	}
	catalog, err := loadCatalog(ctx, q)
	if err != nil {
		return nil, err
	}

	for _, p := range stored {
		purchase := p.toDomain(account.ID)
		domain.DescribePurchaseItems(purchase.Items, catalog)
		account.Purchases = append(account.Purchases, purchase)
	}
	sort.SliceStable(account.Purchases, func(i, j int) bool {
		pi, pj := account.Purchases[i], account.Purchases[j]
		if !pi.CreatedAt.Equal(pj.CreatedAt) {
			return pi.CreatedAt.After(pj.CreatedAt)
		}
		return pi.ID > pj.ID
	})
	return account, nil
}

func (b *Backend) CreateAccount(ctx context.Context, account *domain.Account) error {
	return b.runInTx(ctx, "create account", func(q repository.DBExecutor) error {
		accounts, err := loadAccounts(ctx, q)
		if err != nil {
			return fmt.Errorf("create account: %w", err)
		}
		if err := identityConflict(accounts, account.Username, account.Email, 0); err != nil {
			return fmt.Errorf("create account: %w", err)
		}

		id, err := nextID(ctx, q, "accounts")
		if err != nil {
			return fmt.Errorf("create account: %w", err)
		}
		accounts = append(accounts, accountDoc{
			ID:         id,
			Username:   account.Username,
			Email:      account.Email,
			SecretHash: account.SecretHash,
			Balance:    account.Balance,
			Points:     account.Points,
			CreatedAt:  account.CreatedAt,
			UpdatedAt:  account.UpdatedAt,
		})
		if err := putDoc(ctx, q, keyAccounts, accounts); err != nil {
			return fmt.Errorf("create account: %w", err)
		}

		account.ID = id
		if account.Purchases == nil {
			account.Purchases = []domain.Purchase{}
		}
		return nil
	})
}

// UpdateAccount returns the record as committed, read inside the same transaction.
func (b *Backend) UpdateAccount(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	var updated *domain.Account
	err := b.runInTx(ctx, "update account", func(q repository.DBExecutor) error {
		accounts, err := loadAccounts(ctx, q)
		if err != nil {
			return fmt.Errorf("update account: %w", err)
		}
		i := findAccount(accounts, func(a accountDoc) bool { return a.ID == account.ID })
		if i < 0 {
			return fmt.Errorf("update account %d: %w", account.ID, util.ErrNotFound)
		}
		if accounts[i].Points != account.Points {
			return fmt.Errorf("update account %d: %w", account.ID, util.ErrStaleAccount)
		}
		if err := identityConflict(accounts, account.Username, account.Email, account.ID); err != nil {
			return fmt.Errorf("update account: %w", err)
		}

		accounts[i].Username = account.Username
		accounts[i].Email = account.Email
		accounts[i].Balance = account.Balance
		accounts[i].UpdatedAt = time.Now().UTC()
		if err := putDoc(ctx, q, keyAccounts, accounts); err != nil {
			return fmt.Errorf("update account: %w", err)
		}

		updated, err = withPurchases(ctx, q, accounts[i])
		if err != nil {
			return fmt.Errorf("update account: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
