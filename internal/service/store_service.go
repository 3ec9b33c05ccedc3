// internal/service/store_service.go
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"storefront/internal/auth"
	"storefront/internal/backend"
	"storefront/internal/config"
	"storefront/internal/domain"
	"storefront/internal/util"
)

// StoreService is the storage facade: one method per storefront use case, all
// served by the backend chosen at startup.
type StoreService interface {
	GetAccount(ctx context.Context, id int64) (*domain.Account, error)
	Authenticate(ctx context.Context, username, secret string) (*domain.Account, error)
	Register(ctx context.Context, username, email, secret string) (*domain.Account, error)
	UpdateAccount(ctx context.Context, account *domain.Account) (*domain.Account, error)
	ListCatalog(ctx context.Context) ([]domain.CatalogItem, error)
	GetCart(ctx context.Context, accountID int64) ([]domain.CartItem, error)
	ReplaceCart(ctx context.Context, accountID int64, lines []domain.CartLine) error
	AddToCart(ctx context.Context, accountID, itemID int64, quantity int) error
	ClearCart(ctx context.Context, accountID int64) error
	Checkout(ctx context.Context, accountID int64, lines []domain.CheckoutLine, total decimal.Decimal, pointsEarned int64) (*domain.Purchase, error)
	Health(ctx context.Context) error
	BackendName() string
}

// storeService implements the StoreService interface.
type storeService struct {
	backend  backend.Backend
	hasher   auth.Hasher
	settings config.StoreSettings
	logger   *slog.Logger
}

// NewStoreService creates a new instance of StoreService.
func NewStoreService(b backend.Backend, hasher auth.Hasher, settings config.StoreSettings, logger *slog.Logger) StoreService {
	return &storeService{
		backend:  b,
		hasher:   hasher,
		settings: settings,
		logger:   logger,
	}
}

// fail returns err when it already belongs to the error taxonomy. Anything else
// is logged and surfaced as fallback so backend-specific errors never reach a caller.
func (s *storeService) fail(op string, err error, fallback error, attrs ...any) error {
	if util.IsTaxonomy(err) {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.logger.Error("Storage operation failed", append([]any{"op", op, "backend", s.backend.Name(), "error", err}, attrs...)...)
	return fmt.Errorf("%s: %w: %v", op, fallback, err)
}

// failTx is fail for multi-row writes. A backend failure there matches
// ErrTransactionFailed and keeps its refined cause.
func (s *storeService) failTx(op string, err error, attrs ...any) error {
	if util.IsTaxonomy(err) && !util.IsError(err, util.ErrTransactionFailed) {
		return fmt.Errorf("%s: %w: %w", op, util.ErrTransactionFailed, err)
	}
	return s.fail(op, err, util.ErrTransactionFailed, attrs...)
}

func (s *storeService) BackendName() string {
	return s.backend.Name()
}

func (s *storeService) Health(ctx context.Context) error {
	if err := s.backend.Ping(ctx); err != nil {
		return s.fail("health", err, util.ErrBackendUnavailable)
	}
	return nil
}

// GetAccount returns the account with its purchase history, newest first.
func (s *storeService) GetAccount(ctx context.Context, id int64) (*domain.Account, error) {
	if id <= 0 {
		return nil, fmt.Errorf("get account: %w", util.ErrNotFound)
	}
	account, err := s.backend.GetAccount(ctx, id)
	if err != nil {
		return nil, s.fail("get account", err, util.ErrInternal, "account_id", id)
	}
	return account, nil
}

// Authenticate returns the account whose stored hash matches secret.
// An unknown username and a wrong secret are indistinguishable to the caller.
func (s *storeService) Authenticate(ctx context.Context, username, secret string) (*domain.Account, error) {
	username = auth.NormalizeUsername(username)
	if username == "" || secret == "" {
		return nil, fmt.Errorf("authenticate: %w", util.ErrInvalidCredentials)
	}

	account, err := s.backend.GetAccountByUsername(ctx, username)
	if err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return nil, fmt.Errorf("authenticate: %w", util.ErrInvalidCredentials)
		}
		return nil, s.fail("authenticate", err, util.ErrInternal)
	}

	ok, err := s.hasher.Verify(account.SecretHash, secret)
	if err != nil {
		return nil, s.fail("authenticate", err, util.ErrInternal, "account_id", account.ID)
	}
	if !ok {
		return nil, fmt.Errorf("authenticate: %w", util.ErrInvalidCredentials)
	}
	return account, nil
}

// Register creates an account with the starting balance, zero points and no history.
func (s *storeService) Register(ctx context.Context, username, email, secret string) (*domain.Account, error) {
	username = auth.NormalizeUsername(username)
	email = auth.NormalizeEmail(email)
	if err := validateIdentity(username, email); err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	if err := auth.ValidateSecret(secret); err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	hash, err := s.hasher.Hash(secret)
	if err != nil {
		return nil, s.fail("register", err, util.ErrInternal)
	}

	account := domain.NewAccount(username, email, hash, s.settings.StartingBalance)
	if err := s.backend.CreateAccount(ctx, account); err != nil {
		return nil, s.fail("register", err, util.ErrTransactionFailed)
	}
	s.logger.Info("Account registered", "account_id", account.ID, "backend", s.backend.Name())
	return account, nil
}

// UpdateAccount overwrites username, email and balance. account.Points must be the
// stored value: a record read before a checkout is stale and rejected.
func (s *storeService) UpdateAccount(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	if account == nil || account.ID <= 0 {
		return nil, fmt.Errorf("update account: %w", util.ErrNotFound)
	}
	if account.Balance.IsNegative() {
		return nil, fmt.Errorf("update account: %w", util.Validationf("balance must not be negative"))
	}
	if !domain.ValidAmount(account.Balance) {
		return nil, fmt.Errorf("update account: %w", util.Validationf("balance %s exceeds %d digits or %d decimals",
			account.Balance, domain.AmountPrecision, domain.AmountScale))
	}
	if account.Points < 0 {
		return nil, fmt.Errorf("update account: %w", util.Validationf("points must not be negative"))
	}

	update := *account
	update.Username = auth.NormalizeUsername(account.Username)
	update.Email = auth.NormalizeEmail(account.Email)
	if err := validateIdentity(update.Username, update.Email); err != nil {
		return nil, fmt.Errorf("update account: %w", err)
	}

	updated, err := s.backend.UpdateAccount(ctx, &update)
	if err != nil {
		return nil, s.fail("update account", err, util.ErrTransactionFailed, "account_id", account.ID)
	}
	return updated, nil
}

func validateIdentity(username, email string) error {
	if err := auth.ValidateUsername(username); err != nil {
		return err
	}
	return auth.ValidateEmail(email)
}

func (s *storeService) ListCatalog(ctx context.Context) ([]domain.CatalogItem, error) {
	items, err := s.backend.ListCatalog(ctx)
	if err != nil {
		return nil, s.fail("list catalog", err, util.ErrInternal)
	}
	return items, nil
}

func (s *storeService) GetCart(ctx context.Context, accountID int64) ([]domain.CartItem, error) {
	items, err := s.backend.GetCart(ctx, accountID)
	if err != nil {
		return nil, s.fail("get cart", err, util.ErrInternal, "account_id", accountID)
	}
	return items, nil
}

// ReplaceCart swaps the account's cart for lines. Duplicate items are merged by
// summing quantities and zero-quantity lines are dropped; a list that ends up
// empty clears the cart.
func (s *storeService) ReplaceCart(ctx context.Context, accountID int64, lines []domain.CartLine) error {
	for _, line := range lines {
		if line.Quantity < 0 {
			return fmt.Errorf("replace cart: %w", util.Validationf("item %d has negative quantity %d", line.ItemID, line.Quantity))
		}
		if line.Quantity > domain.MaxLineQuantity {
			return fmt.Errorf("replace cart: %w", util.Validationf("item %d: quantity %d exceeds %d", line.ItemID, line.Quantity, domain.MaxLineQuantity))
		}
	}

	merged := domain.MergeCartLines(lines)
	if len(merged) == 0 {
		return s.ClearCart(ctx, accountID)
	}
	for i := range merged {
		if merged[i].Quantity > domain.MaxLineQuantity {
			return fmt.Errorf("replace cart: %w", util.Validationf("item %d: merged quantity %d exceeds %d", merged[i].ItemID, merged[i].Quantity, domain.MaxLineQuantity))
		}
		merged[i].AccountID = accountID
	}

	if err := s.backend.ReplaceCart(ctx, accountID, merged); err != nil {
		return s.failTx("replace cart", err, "account_id", accountID)
	}
	return nil
}

// AddToCart adds quantity of itemID, merging into an existing line.
func (s *storeService) AddToCart(ctx context.Context, accountID, itemID int64, quantity int) error {
	if !domain.QuantityInRange(quantity) {
		return fmt.Errorf("add to cart: %w", util.Validationf("quantity must be between 1 and %d", domain.MaxLineQuantity))
	}
	line := domain.CartLine{AccountID: accountID, ItemID: itemID, Quantity: quantity}
	if err := s.backend.AddToCart(ctx, line); err != nil {
		return s.failTx("add to cart", err, "account_id", accountID)
	}
	return nil
}

// ClearCart empties the cart. Clearing an empty cart succeeds.
func (s *storeService) ClearCart(ctx context.Context, accountID int64) error {
	if err := s.backend.ClearCart(ctx, accountID); err != nil {
		return s.fail("clear cart", err, util.ErrTransactionFailed, "account_id", accountID)
	}
	return nil
}

// Checkout records a purchase of lines, awards pointsEarned and clears the cart
// as one unit. total and pointsEarned are checked against the lines; the wallet
// balance is left untouched.
func (s *storeService) Checkout(ctx context.Context, accountID int64, lines []domain.CheckoutLine, total decimal.Decimal, pointsEarned int64) (*domain.Purchase, error) {
	merged, err := mergeCheckoutLines(lines)
	if err != nil {
		return nil, fmt.Errorf("checkout: %w", err)
	}

	if !domain.ValidAmount(total) {
		return nil, fmt.Errorf("checkout: %w", util.Validationf("total %s exceeds %d digits or %d decimals", total, domain.AmountPrecision, domain.AmountScale))
	}
	expected := domain.LineTotal(merged)
	if !total.Equal(expected) {
		return nil, fmt.Errorf("checkout: %w", util.Validationf("total %s does not match line total %s", total, expected))
	}
	if points := domain.PointsFor(total, s.settings.PointsPerUnit); pointsEarned != points {
		return nil, fmt.Errorf("checkout: %w", util.Validationf("points earned %d, expected %d", pointsEarned, points))
	}

	purchase := domain.NewPurchase(accountID, total, pointsEarned, merged)
	if err := s.backend.Checkout(ctx, purchase); err != nil {
		return nil, s.failTx("checkout", err, "account_id", accountID)
	}
	s.logger.Info("Checkout completed",
		"account_id", accountID,
		"purchase_id", purchase.ID,
		"reference", purchase.Reference,
		"total", purchase.Total,
		"points", purchase.PointsEarned,
	)
	return purchase, nil
}

// mergeCheckoutLines validates lines and folds duplicate items into one line.
// Duplicates must agree on price.
func mergeCheckoutLines(lines []domain.CheckoutLine) ([]domain.CheckoutLine, error) {
	if len(lines) == 0 {
		return nil, util.ErrEmptyCart
	}

	merged := make([]domain.CheckoutLine, 0, len(lines))
	index := make(map[int64]int, len(lines))
	for _, line := range lines {
		if !domain.QuantityInRange(line.Quantity) {
			return nil, util.Validationf("item %d: quantity must be between 1 and %d", line.ItemID, domain.MaxLineQuantity)
		}
		if line.Price.IsNegative() {
			return nil, util.Validationf("item %d: price must not be negative", line.ItemID)
		}
		if !domain.ValidPrice(line.Price) {
			return nil, util.Validationf("item %d: price %s exceeds %d digits or %d decimals",
				line.ItemID, line.Price, domain.PricePrecision, domain.PriceScale)
		}
		if i, ok := index[line.ItemID]; ok {
			if !merged[i].Price.Equal(line.Price) {
				return nil, util.Validationf("item %d appears with prices %s and %s", line.ItemID, merged[i].Price, line.Price)
			}
			if merged[i].Quantity > domain.MaxLineQuantity-line.Quantity {
				return nil, util.Validationf("item %d: merged quantity exceeds %d", line.ItemID, domain.MaxLineQuantity)
			}
			merged[i].Quantity += line.Quantity
			continue
		}
		index[line.ItemID] = len(merged)
		merged = append(merged, line)
	}
	return merged, nil
}
