package relational_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/backend/relational"
	"storefront/internal/catalog"
	"storefront/internal/config"
	"storefront/internal/domain"
	"storefront/internal/util"
	"storefront/pkg/db"
)

// openPostgres connects to the database named by the DB_* variables. It is
// skipped unless STOREFRONT_PG_TEST=1, and it truncates every store table.
func openPostgres(t *testing.T) *relational.Backend {
	t.Helper()
	if os.Getenv("STOREFRONT_PG_TEST") != "1" {
		t.Skip("set STOREFRONT_PG_TEST=1 to run against PostgreSQL")
	}

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	ctx := context.Background()
	database, err := db.NewPostgresDB(ctx, cfg.DB)
	require.NoError(t, err)

	_, err = db.Migrate(ctx, database)
	require.NoError(t, err)
	truncate(t, database)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	b := relational.NewBackend(database, relational.NewRepositories(), relational.DefaultTxFuncs(), nil, logger)
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func truncate(t *testing.T, database *sqlx.DB) {
	t.Helper()
	_, err := database.Exec(`TRUNCATE TABLE purchase_lines, purchases, cart_lines, catalog_items, accounts RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
}

func TestPostgresCheckoutFlow(t *testing.T) {
	b := openPostgres(t)
	ctx := context.Background()

	items, err := catalog.Default()
	require.NoError(t, err)
	added, err := b.SeedCatalog(ctx, items)
	require.NoError(t, err)
	assert.Equal(t, len(items), added)

	again, err := b.SeedCatalog(ctx, items)
	require.NoError(t, err)
	assert.Zero(t, again, "a populated catalog is not reseeded")

	games, err := b.ListCatalog(ctx)
	require.NoError(t, err)
	var cyberpunk domain.CatalogItem
	for _, g := range games {
		if g.Title == "Cyberpunk 2077" {
			cyberpunk = g
		}
	}
	require.NotZero(t, cyberpunk.ID)

	account := domain.NewAccount("pg_user", "pg_user@example.com", "hash", decimal.NewFromInt(999999))
	require.NoError(t, b.CreateAccount(ctx, account))
	require.Positive(t, account.ID)

	dup := domain.NewAccount("pg_user", "else@example.com", "hash", decimal.Zero)
	assert.ErrorIs(t, b.CreateAccount(ctx, dup), util.ErrUsernameTaken)

	require.NoError(t, b.ReplaceCart(ctx, account.ID, []domain.CartLine{{ItemID: cyberpunk.ID, Quantity: 1}}))
	require.NoError(t, b.AddToCart(ctx, domain.CartLine{AccountID: account.ID, ItemID: cyberpunk.ID, Quantity: 1}))
	cart, err := b.GetCart(ctx, account.ID)
	require.NoError(t, err)
	require.Len(t, cart, 1)
	assert.Equal(t, 2, cart[0].Quantity)

	price := decimal.RequireFromString("29.99")
	purchase := domain.NewPurchase(account.ID, price, 29, []domain.CheckoutLine{{ItemID: cyberpunk.ID, Quantity: 1, Price: price}})
	require.NoError(t, b.Checkout(ctx, purchase))
	assert.Positive(t, purchase.ID)

	got, err := b.GetAccount(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(29), got.Points)
	assert.True(t, decimal.NewFromInt(999999).Equal(got.Balance))
	require.Len(t, got.Purchases, 1)
	require.Len(t, got.Purchases[0].Items, 1)
	assert.Equal(t, "Cyberpunk 2077", got.Purchases[0].Items[0].Title)

	cart, err = b.GetCart(ctx, account.ID)
	require.NoError(t, err)
	assert.Empty(t, cart)

	require.NoError(t, b.ClearCart(ctx, account.ID))
	require.NoError(t, b.ClearCart(ctx, account.ID))
}

func TestPostgresCheckoutUnknownAccount(t *testing.T) {
	b := openPostgres(t)
	ctx := context.Background()

	purchase := domain.NewPurchase(404, decimal.NewFromInt(1), 1, []domain.CheckoutLine{{ItemID: 1, Quantity: 1, Price: decimal.NewFromInt(1)}})
	assert.ErrorIs(t, b.Checkout(ctx, purchase), util.ErrNotFound)
}
