// internal/service/store_service_test.go
package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"storefront/internal/auth"
	"storefront/internal/config"
	"storefront/internal/domain"
	"storefront/internal/util"
)

// MockBackend is a mock implementation of backend.Backend.
type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) Name() string { return "mock" }

func (m *MockBackend) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockBackend) Close() error {
	return m.Called().Error(0)
}

func (m *MockBackend) GetAccount(ctx context.Context, id int64) (*domain.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockBackend) GetAccountByUsername(ctx context.Context, username string) (*domain.Account, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockBackend) CreateAccount(ctx context.Context, account *domain.Account) error {
	return m.Called(ctx, account).Error(0)
}

func (m *MockBackend) UpdateAccount(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	args := m.Called(ctx, account)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockBackend) ListCatalog(ctx context.Context) ([]domain.CatalogItem, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CatalogItem), args.Error(1)
}

func (m *MockBackend) SeedCatalog(ctx context.Context, items []domain.CatalogItem) (int, error) {
	args := m.Called(ctx, items)
	return args.Int(0), args.Error(1)
}

func (m *MockBackend) GetCart(ctx context.Context, accountID int64) ([]domain.CartItem, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CartItem), args.Error(1)
}

func (m *MockBackend) ReplaceCart(ctx context.Context, accountID int64, lines []domain.CartLine) error {
	return m.Called(ctx, accountID, lines).Error(0)
}

func (m *MockBackend) AddToCart(ctx context.Context, line domain.CartLine) error {
	return m.Called(ctx, line).Error(0)
}

func (m *MockBackend) ClearCart(ctx context.Context, accountID int64) error {
	return m.Called(ctx, accountID).Error(0)
}

func (m *MockBackend) Checkout(ctx context.Context, purchase *domain.Purchase) error {
	return m.Called(ctx, purchase).Error(0)
}

var testSettings = config.StoreSettings{
	StartingBalance: decimal.NewFromInt(999999),
	PointsPerUnit:   1,
}

func newTestService(b *MockBackend) StoreService {
	return NewStoreService(b, auth.NewBcryptHasher(bcrypt.MinCost), testSettings, util.GetLogger())
}

func TestRegister(t *testing.T) {
	t.Run("SuccessfulRegister", func(t *testing.T) {
		ctx := context.Background()
		mockBackend := new(MockBackend)
		service := newTestService(mockBackend)

		mockBackend.On("CreateAccount", ctx, mock.MatchedBy(func(a *domain.Account) bool {
			return a.Username == "alice" && a.Email == "alice@example.com"
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*domain.Account).ID = 1
		}).Return(nil).Once()

		account, err := service.Register(ctx, " alice ", "Alice@Example.com", "s3cret")

		require.NoError(t, err)
		assert.Equal(t, int64(1), account.ID)
		assert.Equal(t, int64(0), account.Points)
		assert.True(t, decimal.NewFromInt(999999).Equal(account.Balance))
		assert.Empty(t, account.Purchases)
		assert.NotEqual(t, "s3cret", account.SecretHash)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(account.SecretHash), []byte("s3cret")))
		mockBackend.AssertExpectations(t)
	})

	t.Run("UsernameTaken", func(t *testing.T) {
		ctx := context.Background()
		mockBackend := new(MockBackend)
		service := newTestService(mockBackend)

		mockBackend.On("CreateAccount", ctx, mock.Anything).Return(util.ErrUsernameTaken).Once()

		account, err := service.Register(ctx, "alice", "alice@example.com", "s3cret")

		assert.ErrorIs(t, err, util.ErrUsernameTaken)
		assert.ErrorIs(t, err, util.ErrConflict)
		assert.Nil(t, account)
		mockBackend.AssertExpectations(t)
	})

	t.Run("InvalidInput", func(t *testing.T) {
		tests := []struct {
			name, username, email, secret string
		}{
			{"EmptyUsername", "  ", "a@example.com", "pw"},
			{"BadEmail", "alice", "not-an-email", "pw"},
			{"EmptySecret", "alice", "a@example.com", ""},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				mockBackend := new(MockBackend)
				service := newTestService(mockBackend)

				_, err := service.Register(context.Background(), tt.username, tt.email, tt.secret)

				assert.ErrorIs(t, err, util.ErrValidationFailed)
				mockBackend.AssertNotCalled(t, "CreateAccount", mock.Anything, mock.Anything)
			})
		}
	})

	t.Run("UnknownBackendErrorIsHidden", func(t *testing.T) {
		ctx := context.Background()
		mockBackend := new(MockBackend)
		service := newTestService(mockBackend)

		mockBackend.On("CreateAccount", ctx, mock.Anything).Return(errors.New("pq: something odd")).Once()

		_, err := service.Register(ctx, "alice", "alice@example.com", "s3cret")

		assert.ErrorIs(t, err, util.ErrTransactionFailed)
		mockBackend.AssertExpectations(t)
	})
}

func TestAuthenticate(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	stored := &domain.Account{ID: 3, Username: "alice", SecretHash: string(hash), Purchases: []domain.Purchase{{ID: 9}}}

	t.Run("Match", func(t *testing.T) {
		ctx := context.Background()
		mockBackend := new(MockBackend)
		service := newTestService(mockBackend)
		mockBackend.On("GetAccountByUsername", ctx, "alice").Return(stored, nil).Once()

		account, err := service.Authenticate(ctx, "alice", "s3cret")

		require.NoError(t, err)
		assert.Equal(t, int64(3), account.ID)
		assert.Len(t, account.Purchases, 1)
		mockBackend.AssertExpectations(t)
	})

	t.Run("WrongSecret", func(t *testing.T) {
		ctx := context.Background()
		mockBackend := new(MockBackend)
		service := newTestService(mockBackend)
		mockBackend.On("GetAccountByUsername", ctx, "alice").Return(stored, nil).Once()

		account, err := service.Authenticate(ctx, "alice", "guess")

		assert.ErrorIs(t, err, util.ErrInvalidCredentials)
		assert.Nil(t, account)
	})

	t.Run("UnknownUsername", func(t *testing.T) {
		ctx := context.Background()
		mockBackend := new(MockBackend)
		service := newTestService(mockBackend)
		mockBackend.On("GetAccountByUsername", ctx, "mallory").Return(nil, util.ErrNotFound).Once()

		_, err := service.Authenticate(ctx, "mallory", "s3cret")

		assert.ErrorIs(t, err, util.ErrInvalidCredentials)
		assert.False(t, util.IsError(err, util.ErrNotFound))
	})

	t.Run("BackendUnavailable", func(t *testing.T) {
		ctx := context.Background()
		mockBackend := new(MockBackend)
		service := newTestService(mockBackend)
		mockBackend.On("GetAccountByUsername", ctx, "alice").Return(nil, util.ErrBackendUnavailable).Once()

		_, err := service.Authenticate(ctx, "alice", "s3cret")

		assert.ErrorIs(t, err, util.ErrBackendUnavailable)
	})
}

func TestUpdateAccount(t *testing.T) {
	t.Run("NormalizesAndDelegates", func(t *testing.T) {
		ctx := context.Background()
		mockBackend := new(MockBackend)
		service := newTestService(mockBackend)
		input := &domain.Account{ID: 3, Username: "alice", Email: "ALICE@new.example.com", Balance: decimal.NewFromInt(5), Points: 47}
		stored := &domain.Account{ID: 3, Username: "alice", Email: "alice@new.example.com", Balance: decimal.NewFromInt(5), Points: 47}

		mockBackend.On("UpdateAccount", ctx, mock.MatchedBy(func(a *domain.Account) bool {
			return a.Email == "alice@new.example.com" && a.Points == 47
		})).Return(stored, nil).Once()

		updated, err := service.UpdateAccount(ctx, input)

		require.NoError(t, err)
		assert.Equal(t, stored, updated)
		assert.Equal(t, "ALICE@new.example.com", input.Email, "caller's record is not modified")
		mockBackend.AssertExpectations(t)
	})

	t.Run("NegativeValues", func(t *testing.T) {
		mockBackend := new(MockBackend)
		service := newTestService(mockBackend)

		_, err := service.UpdateAccount(context.Background(), &domain.Account{ID: 3, Username: "a", Email: "a@example.com", Balance: decimal.NewFromInt(-1)})
		assert.ErrorIs(t, err, util.ErrValidationFailed)

		_, err = service.UpdateAccount(context.Background(), &domain.Account{ID: 3, Username: "a", Email: "a@example.com", Points: -1})
		assert.ErrorIs(t, err, util.ErrValidationFailed)

		_, err = service.UpdateAccount(context.Background(), &domain.Account{ID: 3, Username: "a", Email: "a@example.com", Balance: decimal.RequireFromString("0.00001")})
		assert.ErrorIs(t, err, util.ErrValidationFailed, "balance finer than the stored scale")

		mockBackend.AssertNotCalled(t, "UpdateAccount", mock.Anything, mock.Anything)
	})

	t.Run("StaleRecord", func(t *testing.T) {
		ctx := context.Background()
		mockBackend := new(MockBackend)
		service := newTestService(mockBackend)
		mockBackend.On("UpdateAccount", ctx, mock.Anything).Return(nil, util.ErrStaleAccount).Once()

		_, err := service.UpdateAccount(ctx, &domain.Account{ID: 3, Username: "a", Email: "a@example.com"})

		assert.ErrorIs(t, err, util.ErrConflict)
	})
}

func TestReplaceCart(t *testing.T) {
	accountID := int64(7)

	t.Run("DuplicatesAreMerged", func(t *testing.T) {
		ctx := context.Background()
		mockBackend := new(MockBackend)
		service := newTestService(mockBackend)

		mockBackend.On("ReplaceCart", ctx, accountID, []domain.CartLine{
			{AccountID: accountID, ItemID: 1, Quantity: 3},
			{AccountID: accountID, ItemID: 2, Quantity: 1},
		}).Return(nil).Once()

		err := service.ReplaceCart(ctx, accountID, []domain.CartLine{
			{ItemID: 1, Quantity: 1},
			{ItemID: 2, Quantity: 1},
			{ItemID: 1, Quantity: 2},
			{ItemID: 5, Quantity: 0},
		})

		assert.NoError(t, err)
		mockBackend.AssertExpectations(t)
	})

	t.Run("EmptyListClears", func(t *testing.T) {
		ctx := context.Background()
		mockBackend := new(MockBackend)
		service := newTestService(mockBackend)
		mockBackend.On("ClearCart", ctx, accountID).Return(nil).Once()

		assert.NoError(t, service.ReplaceCart(ctx, accountID, nil))
		mockBackend.AssertNotCalled(t, "ReplaceCart", mock.Anything, mock.Anything, mock.Anything)
		mockBackend.AssertExpectations(t)
	})

	t.Run("NegativeQuantity", func(t *testing.T) {
		mockBackend := new(MockBackend)
		service := newTestService(mockBackend)

		err := service.ReplaceCart(context.Background(), accountID, []domain.CartLine{{ItemID: 1, Quantity: -1}})

		assert.ErrorIs(t, err, util.ErrValidationFailed)
		mockBackend.AssertNotCalled(t, "ReplaceCart", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("UnknownFailureIsTransactionFailed", func(t *testing.T) {
		ctx := context.Background()
		mockBackend := new(MockBackend)
		service := newTestService(mockBackend)
		mockBackend.On("ReplaceCart", ctx, accountID, mock.Anything).Return(errors.New("disk I/O error")).Once()

		err := service.ReplaceCart(ctx, accountID, []domain.CartLine{{ItemID: 1, Quantity: 1}})

		assert.ErrorIs(t, err, util.ErrTransactionFailed)
	})

	t.Run("KnownFailureKeepsCauseAndIsTransactionFailed", func(t *testing.T) {
		for _, cause := range []error{util.ErrNotFound, util.ErrBackendUnavailable} {
			ctx := context.Background()
			mockBackend := new(MockBackend)
			service := newTestService(mockBackend)
			mockBackend.On("ReplaceCart", ctx, accountID, mock.Anything).Return(fmt.Errorf("replace cart: %w", cause)).Once()

			err := service.ReplaceCart(ctx, accountID, []domain.CartLine{{ItemID: 1, Quantity: 1}})

			assert.ErrorIs(t, err, util.ErrTransactionFailed)
			assert.ErrorIs(t, err, cause)
		}
	})

	t.Run("QuantityLimits", func(t *testing.T) {
		tests := []struct {
			name  string
			lines []domain.CartLine
		}{
			{"SingleLineAboveLimit", []domain.CartLine{{ItemID: 1, Quantity: domain.MaxLineQuantity + 1}}},
			{"HugeLines", []domain.CartLine{{ItemID: 1, Quantity: math.MaxInt}, {ItemID: 1, Quantity: math.MaxInt}}},
			{"MergedAboveLimit", []domain.CartLine{{ItemID: 1, Quantity: domain.MaxLineQuantity}, {ItemID: 1, Quantity: 1}}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				mockBackend := new(MockBackend)
				service := newTestService(mockBackend)

				err := service.ReplaceCart(context.Background(), accountID, tt.lines)

				assert.ErrorIs(t, err, util.ErrValidationFailed)
				mockBackend.AssertNotCalled(t, "ReplaceCart", mock.Anything, mock.Anything, mock.Anything)
			})
		}
	})

	t.Run("MergedAtLimitIsAccepted", func(t *testing.T) {
		ctx := context.Background()
		mockBackend := new(MockBackend)
		service := newTestService(mockBackend)
		mockBackend.On("ReplaceCart", ctx, accountID, []domain.CartLine{
			{AccountID: accountID, ItemID: 1, Quantity: domain.MaxLineQuantity},
		}).Return(nil).Once()

		err := service.ReplaceCart(ctx, accountID, []domain.CartLine{
			{ItemID: 1, Quantity: domain.MaxLineQuantity - 1},
			{ItemID: 1, Quantity: 1},
		})

		assert.NoError(t, err)
		mockBackend.AssertExpectations(t)
	})
}

func TestAddToCart(t *testing.T) {
	ctx := context.Background()
	mockBackend := new(MockBackend)
	service := newTestService(mockBackend)
	mockBackend.On("AddToCart", ctx, domain.CartLine{AccountID: 7, ItemID: 2, Quantity: 2}).Return(nil).Once()

	assert.NoError(t, service.AddToCart(ctx, 7, 2, 2))
	assert.ErrorIs(t, service.AddToCart(ctx, 7, 2, 0), util.ErrValidationFailed)
	assert.ErrorIs(t, service.AddToCart(ctx, 7, 2, math.MaxInt), util.ErrValidationFailed)
	assert.ErrorIs(t, service.AddToCart(ctx, 7, 2, domain.MaxLineQuantity+1), util.ErrValidationFailed)
	mockBackend.AssertExpectations(t)
}

func TestCheckout(t *testing.T) {
	accountID := int64(7)
	lines := []domain.CheckoutLine{
		{ItemID: 1, Quantity: 1, Price: decimal.RequireFromString("19.99")},
		{ItemID: 2, Quantity: 1, Price: decimal.RequireFromString("7.82")},
		{ItemID: 1, Quantity: 1, Price: decimal.RequireFromString("19.99")},
	}
	total := decimal.RequireFromString("47.80")

	t.Run("SuccessfulCheckout", func(t *testing.T) {
		ctx := context.Background()
		mockBackend := new(MockBackend)
		service := newTestService(mockBackend)

		mockBackend.On("Checkout", ctx, mock.MatchedBy(func(p *domain.Purchase) bool {
			return p.AccountID == accountID && len(p.Items) == 2 && p.Items[0].Quantity == 2 && p.PointsEarned == 47
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*domain.Purchase).ID = 11
		}).Return(nil).Once()

		purchase, err := service.Checkout(ctx, accountID, lines, total, 47)

		require.NoError(t, err)
		assert.Equal(t, int64(11), purchase.ID)
		assert.True(t, total.Equal(purchase.Total))
		mockBackend.AssertExpectations(t)
	})

	t.Run("EmptyCart", func(t *testing.T) {
		mockBackend := new(MockBackend)
		service := newTestService(mockBackend)

		_, err := service.Checkout(context.Background(), accountID, nil, decimal.Zero, 0)

		assert.ErrorIs(t, err, util.ErrEmptyCart)
		assert.ErrorIs(t, err, util.ErrValidationFailed)
	})

	t.Run("RejectedInput", func(t *testing.T) {
		tests := []struct {
			name   string
			lines  []domain.CheckoutLine
			total  string
			points int64
		}{
			{"TotalMismatch", lines, "50.00", 50},
			{"PointsMismatch", lines, "47.80", 48},
			{"ZeroQuantity", []domain.CheckoutLine{{ItemID: 1, Quantity: 0, Price: decimal.NewFromInt(1)}}, "0", 0},
			{"NegativePrice", []domain.CheckoutLine{{ItemID: 1, Quantity: 1, Price: decimal.NewFromInt(-1)}}, "-1", 0},
			{"SubCentPrice", []domain.CheckoutLine{{ItemID: 1, Quantity: 2, Price: decimal.RequireFromString("0.005")}}, "0.01", 0},
			{"PriceAboveColumn", []domain.CheckoutLine{{ItemID: 1, Quantity: 1, Price: decimal.New(1, 8)}}, "100000000", 100000000},
			{"QuantityAboveLimit", []domain.CheckoutLine{{ItemID: 1, Quantity: domain.MaxLineQuantity + 1, Price: decimal.Zero}}, "0", 0},
			{"MergedQuantityAboveLimit", []domain.CheckoutLine{
				{ItemID: 1, Quantity: domain.MaxLineQuantity, Price: decimal.Zero},
				{ItemID: 1, Quantity: 1, Price: decimal.Zero},
			}, "0", 0},
			{"ConflictingPrices", []domain.CheckoutLine{
				{ItemID: 1, Quantity: 1, Price: decimal.NewFromInt(1)},
				{ItemID: 1, Quantity: 1, Price: decimal.NewFromInt(2)},
			}, "3", 3},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				mockBackend := new(MockBackend)
				service := newTestService(mockBackend)

				_, err := service.Checkout(context.Background(), accountID, tt.lines, decimal.RequireFromString(tt.total), tt.points)

				assert.ErrorIs(t, err, util.ErrValidationFailed)
				mockBackend.AssertNotCalled(t, "Checkout", mock.Anything, mock.Anything)
			})
		}
	})

	t.Run("BackendFailure", func(t *testing.T) {
		ctx := context.Background()
		mockBackend := new(MockBackend)
		service := newTestService(mockBackend)
		mockBackend.On("Checkout", ctx, mock.Anything).Return(errors.New("connection reset by peer")).Once()

		purchase, err := service.Checkout(ctx, accountID, lines, total, 47)

		assert.ErrorIs(t, err, util.ErrTransactionFailed)
		assert.Nil(t, purchase)
	})

	t.Run("AccountMissing", func(t *testing.T) {
		ctx := context.Background()
		mockBackend := new(MockBackend)
		service := newTestService(mockBackend)
		mockBackend.On("Checkout", ctx, mock.Anything).Return(util.ErrNotFound).Once()

		_, err := service.Checkout(ctx, accountID, lines, total, 47)

		assert.ErrorIs(t, err, util.ErrNotFound)
		assert.ErrorIs(t, err, util.ErrTransactionFailed)
	})
}

func TestReadsHideUnknownErrors(t *testing.T) {
	ctx := context.Background()
	mockBackend := new(MockBackend)
	service := newTestService(mockBackend)
	mockBackend.On("ListCatalog", ctx).Return(nil, errors.New("weird")).Once()
	mockBackend.On("GetCart", ctx, int64(1)).Return(nil, util.ErrBackendUnavailable).Once()

	_, err := service.ListCatalog(ctx)
	assert.ErrorIs(t, err, util.ErrInternal)

	_, err = service.GetCart(ctx, 1)
	assert.ErrorIs(t, err, util.ErrBackendUnavailable)

	_, err = service.GetAccount(ctx, 0)
	assert.ErrorIs(t, err, util.ErrNotFound)
}
