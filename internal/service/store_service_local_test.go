package service

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"storefront/internal/auth"
	"storefront/internal/backend/local"
	"storefront/internal/domain"
	"storefront/internal/util"
)

// Cart quantity limits hold end to end over a real local store.
func TestCartQuantityLimitsOverLocalStore(t *testing.T) {
	ctx := context.Background()
	b, err := local.Open(ctx, filepath.Join(t.TempDir(), "store.db"), util.GetLogger())
	require.NoError(t, err)
	t.Cleanup(func() { b.Close() })

	service := NewStoreService(b, auth.NewBcryptHasher(bcrypt.MinCost), testSettings, util.GetLogger())
	account, err := service.Register(ctx, "alice", "alice@example.com", "s3cret")
	require.NoError(t, err)
	games, err := service.ListCatalog(ctx)
	require.NoError(t, err)
	item := games[0]

	err = service.ReplaceCart(ctx, account.ID, []domain.CartLine{
		{ItemID: item.ID, Quantity: math.MaxInt},
		{ItemID: item.ID, Quantity: math.MaxInt},
	})
	assert.ErrorIs(t, err, util.ErrValidationFailed)

	require.NoError(t, service.AddToCart(ctx, account.ID, item.ID, domain.MaxLineQuantity))
	assert.ErrorIs(t, service.AddToCart(ctx, account.ID, item.ID, 2), util.ErrValidationFailed)
	assert.ErrorIs(t, service.AddToCart(ctx, account.ID, item.ID, math.MaxInt), util.ErrValidationFailed)

	cart, err := service.GetCart(ctx, account.ID)
	require.NoError(t, err)
	require.Len(t, cart, 1)
	assert.Equal(t, domain.MaxLineQuantity, cart[0].Quantity)
	for _, line := range cart {
		assert.True(t, domain.QuantityInRange(line.Quantity))
	}
}

// A sub-cent price never reaches the store, so the stored total matches the lines.
func TestCheckoutRejectsSubCentPriceOverLocalStore(t *testing.T) {
	ctx := context.Background()
	b, err := local.Open(ctx, filepath.Join(t.TempDir(), "store.db"), util.GetLogger())
	require.NoError(t, err)
	t.Cleanup(func() { b.Close() })

	service := NewStoreService(b, auth.NewBcryptHasher(bcrypt.MinCost), testSettings, util.GetLogger())
	account, err := service.Register(ctx, "alice", "alice@example.com", "s3cret")
	require.NoError(t, err)
	games, err := service.ListCatalog(ctx)
	require.NoError(t, err)

	lines := []domain.CheckoutLine{{ItemID: games[0].ID, Quantity: 2, Price: decimal.RequireFromString("0.005")}}
	_, err = service.Checkout(ctx, account.ID, lines, decimal.RequireFromString("0.01"), 0)
	assert.ErrorIs(t, err, util.ErrValidationFailed)

	got, err := service.GetAccount(ctx, account.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Purchases)
}
