// Package relational implements the storage backend on PostgreSQL through
// per-entity repositories that run on either the pool or a transaction.
package relational

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"storefront/internal/config"
	"storefront/internal/domain"
	"storefront/internal/repository"
	"storefront/internal/repository/postgres"
	"storefront/internal/util"
	"storefront/pkg/db"
)

// Conn is the pooled database handle. *sqlx.DB implements it.
type Conn interface {
	db.DBTxBeginner
	repository.DBExecutor
	PingContext(ctx context.Context) error
	Close() error
}

// CatalogCache is the optional read-through cache in front of the catalog.
type CatalogCache interface {
	GetCatalog(ctx context.Context) ([]domain.CatalogItem, bool, error)
	SetCatalog(ctx context.Context, items []domain.CatalogItem) error
	InvalidateCatalog(ctx context.Context) error
}

// Repositories groups the per-entity repositories the backend runs on.
type Repositories struct {
	Accounts  repository.AccountRepository
	Catalog   repository.CatalogRepository
	Carts     repository.CartRepository
	Purchases repository.PurchaseRepository
}

// NewRepositories returns the PostgreSQL repositories.
func NewRepositories() Repositories {
	return Repositories{
		Accounts:  postgres.NewAccountRepository(),
		Catalog:   postgres.NewCatalogRepository(),
		Carts:     postgres.NewCartRepository(),
		Purchases: postgres.NewPurchaseRepository(),
	}
}

// TxFuncs are the transaction hooks; tests replace them with mocks.
type TxFuncs struct {
	Begin     db.BeginTxFunc // read-write
	BeginRead db.BeginTxFunc // read-only snapshot
	Commit    db.CommitTxFunc
	Rollback  db.RollbackTxFunc
}

// DefaultTxFuncs returns the pkg/db transaction helpers.
func DefaultTxFuncs() TxFuncs {
	return TxFuncs{
		Begin:     db.BeginTx,
		BeginRead: db.BeginReadTx,
		Commit:    db.CommitTx,
		Rollback:  db.RollbackTx,
	}
}

// Backend is the PostgreSQL storage backend.
type Backend struct {
	conn         Conn
	accountRepo  repository.AccountRepository
	catalogRepo  repository.CatalogRepository
	cartRepo     repository.CartRepository
	purchaseRepo repository.PurchaseRepository
	tx           TxFuncs
	cache        CatalogCache
	closers      []io.Closer
	logger       *slog.Logger
}

// NewBackend creates the relational backend. cache may be nil.
func NewBackend(conn Conn, repos Repositories, tx TxFuncs, cache CatalogCache, logger *slog.Logger) *Backend {
	return &Backend{
		conn:         conn,
		accountRepo:  repos.Accounts,
		catalogRepo:  repos.Catalog,
		cartRepo:     repos.Carts,
		purchaseRepo: repos.Purchases,
		tx:           tx,
		cache:        cache,
		logger:       logger,
	}
}

// UseCatalogCache installs a catalog cache. closer, when not nil, is closed with the backend.
func (b *Backend) UseCatalogCache(cache CatalogCache, closer io.Closer) {
	b.cache = cache
	if closer != nil {
		b.closers = append(b.closers, closer)
	}
}

func (b *Backend) Name() string { return config.BackendPostgres }

func (b *Backend) Ping(ctx context.Context) error {
	if err := b.conn.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %w", util.ErrBackendUnavailable, err)
	}
	return nil
}

func (b *Backend) Close() error {
	var errs []error
	for _, c := range b.closers {
		errs = append(errs, c.Close())
	}
	errs = append(errs, b.conn.Close())
	return errors.Join(errs...)
}

// runInTx runs fn inside a transaction opened by begin and commits when fn succeeds.
// Any error leaves the transaction rolled back.
func (b *Backend) runInTx(ctx context.Context, op string, begin db.BeginTxFunc, fn func(q repository.DBExecutor) error) error {
	txController, err := begin(ctx, b.conn)
	if err != nil {
		return fmt.Errorf("%s: failed to begin transaction: %w", op, postgres.TranslateError(err))
	}
	defer b.tx.Rollback(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return fmt.Errorf("%s: transaction controller does not implement DBExecutor", op)
	}

	if err := fn(txExecutor); err != nil {
		return err
	}

	if err := b.tx.Commit(txController); err != nil {
		return fmt.Errorf("%s: failed to commit transaction: %w", op, postgres.TranslateError(err))
	}
	return nil
}

// GetAccount reads the account and its purchases from one snapshot.
func (b *Backend) GetAccount(ctx context.Context, id int64) (*domain.Account, error) {
	var account *domain.Account
	err := b.runInTx(ctx, "get account", b.tx.BeginRead, func(q repository.DBExecutor) error {
		var err error
		account, err = b.accountRepo.GetAccountByID(ctx, q, id)
		if err != nil {
			return fmt.Errorf("get account: failed to get account %d: %w", id, err)
		}
		return b.loadPurchases(ctx, q, account)
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

func (b *Backend) GetAccountByUsername(ctx context.Context, username string) (*domain.Account, error) {
	var account *domain.Account
	err := b.runInTx(ctx, "get account by username", b.tx.BeginRead, func(q repository.DBExecutor) error {
		var err error
		account, err = b.accountRepo.GetAccountByUsername(ctx, q, username)
		if err != nil {
			return fmt.Errorf("get account by username: %w", err)
		}
		return b.loadPurchases(ctx, q, account)
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

func (b *Backend) loadPurchases(ctx context.Context, q repository.DBExecutor, account *domain.Account) error {
	purchases, err := b.purchaseRepo.ListPurchasesByAccount(ctx, q, account.ID)
	if err != nil {
		return fmt.Errorf("failed to list purchases for account %d: %w", account.ID, err)
	}
	account.Purchases = purchases
	return nil
}

// CreateAccount checks both identities before inserting so the caller learns which one is taken.
// The unique constraints still decide a race between two registrations.
func (b *Backend) CreateAccount(ctx context.Context, account *domain.Account) error {
	return b.runInTx(ctx, "create account", b.tx.Begin, func(q repository.DBExecutor) error {
		if err := b.accountRepo.FindIdentityConflict(ctx, q, account.Username, account.Email, 0); err != nil {
			return fmt.Errorf("create account: %w", err)
		}
		if err := b.accountRepo.CreateAccount(ctx, q, account); err != nil {
			return fmt.Errorf("create account: %w", err)
		}
		if account.Purchases == nil {
			account.Purchases = []domain.Purchase{}
		}
		return nil
	})
}

// UpdateAccount returns the record as committed: the locked row with the new
// identity and balance, plus the history read inside the same transaction.
func (b *Backend) UpdateAccount(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	var updated *domain.Account
	err := b.runInTx(ctx, "update account", b.tx.Begin, func(q repository.DBExecutor) error {
		current, err := b.accountRepo.LockAccount(ctx, q, account.ID)
		if err != nil {
			return fmt.Errorf("update account: failed to lock account %d: %w", account.ID, err)
		}
		if current.Points != account.Points {
			return fmt.Errorf("update account %d: %w", account.ID, util.ErrStaleAccount)
		}
		if err := b.accountRepo.FindIdentityConflict(ctx, q, account.Username, account.Email, account.ID); err != nil {
			return fmt.Errorf("update account: %w", err)
		}
		if err := b.accountRepo.UpdateAccount(ctx, q, account); err != nil {
			return fmt.Errorf("update account: %w", err)
		}

		result := *current
		result.Username = account.Username
		result.Email = account.Email
		result.Balance = account.Balance
		result.UpdatedAt = account.UpdatedAt
		if err := b.loadPurchases(ctx, q, &result); err != nil {
			return fmt.Errorf("update account: %w", err)
		}
		updated = &result
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ListCatalog serves from the cache when one is installed. Cache failures only cost a query.
func (b *Backend) ListCatalog(ctx context.Context) ([]domain.CatalogItem, error) {
	if b.cache != nil {
		items, ok, err := b.cache.GetCatalog(ctx)
		if err != nil {
			b.logger.Warn("Catalog cache read failed", "error", err)
		} else if ok {
			return items, nil
		}
	}

	items, err := b.catalogRepo.ListItems(ctx, b.conn)
	if err != nil {
		return nil, fmt.Errorf("list catalog: %w", err)
	}
	domain.SortByTitle(items)

	if b.cache != nil {
		if err := b.cache.SetCatalog(ctx, items); err != nil {
			b.logger.Warn("Catalog cache write failed", "error", err)
		}
	}
	return items, nil
}

func (b *Backend) SeedCatalog(ctx context.Context, items []domain.CatalogItem) (int, error) {
	added := 0
	err := b.runInTx(ctx, "seed catalog", b.tx.Begin, func(q repository.DBExecutor) error {
		count, err := b.catalogRepo.CountItems(ctx, q)
		if err != nil {
			return fmt.Errorf("seed catalog: %w", err)
		}
		if count > 0 {
			return nil
		}
		for i := range items {
			if err := b.catalogRepo.CreateItem(ctx, q, &items[i]); err != nil {
				return fmt.Errorf("seed catalog: failed to create %q: %w", items[i].Title, err)
			}
		}
		added = len(items)
		return nil
	})
	if err != nil {
		return 0, err
	}

	if added > 0 && b.cache != nil {
		if err := b.cache.InvalidateCatalog(ctx); err != nil {
			b.logger.Warn("Catalog cache invalidation failed", "error", err)
		}
	}
	return added, nil
}

func (b *Backend) GetCart(ctx context.Context, accountID int64) ([]domain.CartItem, error) {
	items, err := b.cartRepo.GetCartItems(ctx, b.conn, accountID)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	return items, nil
}

// ReplaceCart deletes the old lines and writes the new ones in one transaction.
// The account row lock serializes it against checkout and other cart writes.
func (b *Backend) ReplaceCart(ctx context.Context, accountID int64, lines []domain.CartLine) error {
	return b.runInTx(ctx, "replace cart", b.tx.Begin, func(q repository.DBExecutor) error {
		if _, err := b.accountRepo.LockAccount(ctx, q, accountID); err != nil {
			return fmt.Errorf("replace cart: failed to lock account %d: %w", accountID, err)
		}
		if err := b.cartRepo.DeleteCart(ctx, q, accountID); err != nil {
			return fmt.Errorf("replace cart: %w", err)
		}
		for _, line := range lines {
			line.AccountID = accountID
			if err := b.cartRepo.PutLine(ctx, q, line); err != nil {
				return fmt.Errorf("replace cart: %w", err)
			}
		}
		return nil
	})
}

func (b *Backend) AddToCart(ctx context.Context, line domain.CartLine) error {
	return b.runInTx(ctx, "add to cart", b.tx.Begin, func(q repository.DBExecutor) error {
		if _, err := b.accountRepo.LockAccount(ctx, q, line.AccountID); err != nil {
			return fmt.Errorf("add to cart: failed to lock account %d: %w", line.AccountID, err)
		}
		if err := b.cartRepo.AddLine(ctx, q, line); err != nil {
			return fmt.Errorf("add to cart: %w", err)
		}
		return nil
	})
}

func (b *Backend) ClearCart(ctx context.Context, accountID int64) error {
	if err := b.cartRepo.DeleteCart(ctx, b.conn, accountID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

// Checkout writes the purchase, its lines, the points award and the cart removal
// in a single transaction.
func (b *Backend) Checkout(ctx context.Context, purchase *domain.Purchase) error {
	txController, err := b.tx.Begin(ctx, b.conn)
	if err != nil {
		return fmt.Errorf("checkout: failed to begin transaction: %w", postgres.TranslateError(err))
	}
	defer b.tx.Rollback(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return fmt.Errorf("checkout: transaction controller does not implement DBExecutor")
	}

	if _, err := b.accountRepo.LockAccount(ctx, txExecutor, purchase.AccountID); err != nil {
		return fmt.Errorf("checkout: failed to lock account %d: %w", purchase.AccountID, err)
	}

	if err := b.purchaseRepo.CreatePurchase(ctx, txExecutor, purchase); err != nil {
		return fmt.Errorf("checkout: failed to create purchase: %w", err)
	}

	for _, item := range purchase.Items {
		line := &domain.PurchaseLine{
			PurchaseID: purchase.ID,
			ItemID:     item.ItemID,
			Quantity:   item.Quantity,
			Price:      item.Price,
		}
		if err := b.purchaseRepo.CreatePurchaseLine(ctx, txExecutor, line); err != nil {
			return fmt.Errorf("checkout: failed to create purchase line for item %d: %w", item.ItemID, err)
		}
	}

	if err := b.accountRepo.AddPoints(ctx, txExecutor, purchase.AccountID, purchase.PointsEarned); err != nil {
		return fmt.Errorf("checkout: failed to award points: %w", err)
	}

	if err := b.cartRepo.DeleteCart(ctx, txExecutor, purchase.AccountID); err != nil {
		return fmt.Errorf("checkout: failed to clear cart: %w", err)
	}

	catalog, err := b.catalogRepo.ListItems(ctx, txExecutor)
	if err != nil {
		return fmt.Errorf("checkout: failed to resolve catalog entries: %w", err)
	}

	if err := b.tx.Commit(txController); err != nil {
		return fmt.Errorf("checkout: failed to commit transaction: %w", postgres.TranslateError(err))
	}

	domain.DescribePurchaseItems(purchase.Items, catalog)
	return nil
}
