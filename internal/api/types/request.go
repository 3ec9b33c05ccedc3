// internal/api/types/request.go
package types

import (
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	"storefront/internal/util"
)

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	if r.Username == "" || r.Password == "" {
		return util.Validationf("username and password are required")
	}
	return nil
}

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r RegisterRequest) Validate() error {
	if r.Username == "" || r.Email == "" || r.Password == "" {
		return util.Validationf("username, email and password are required")
	}
	return nil
}

// UpdateAccountRequest is the body of PUT /api/users/{id}: the full account record.
// Points must echo the stored value.
type UpdateAccountRequest struct {
	Username string          `json:"username"`
	Email    string          `json:"email"`
	Money    decimal.Decimal `json:"money"`
	Points   int64           `json:"points"`
}

func (r UpdateAccountRequest) Validate() error {
	if r.Username == "" || r.Email == "" {
		return util.Validationf("username and email are required")
	}
	return nil
}

// ToAccount builds the account record for id.
func (r UpdateAccountRequest) ToAccount(id int64) *domain.Account {
	return &domain.Account{
		ID:       id,
		Username: r.Username,
		Email:    r.Email,
		Balance:  r.Money,
		Points:   r.Points,
	}
}

// CartLineRequest is one cart entry. Clients may send full catalog entries; only id and quantity are read.
type CartLineRequest struct {
	ID       int64 `json:"id"`
	Quantity int   `json:"quantity"`
}

// ReplaceCartRequest is the body of PUT /api/cart/{userID}.
type ReplaceCartRequest struct {
	Items []CartLineRequest `json:"items"`
}

func (r ReplaceCartRequest) Validate() error {
	for _, item := range r.Items {
		if item.ID <= 0 {
			return util.Validationf("item id must be positive")
		}
		if item.Quantity > domain.MaxLineQuantity {
			return util.Validationf("quantity must be at most %d", domain.MaxLineQuantity)
		}
	}
	return nil
}

// Lines converts the request to cart lines for accountID.
func (r ReplaceCartRequest) Lines(accountID int64) []domain.CartLine {
	lines := make([]domain.CartLine, 0, len(r.Items))
	for _, item := range r.Items {
		lines = append(lines, domain.CartLine{AccountID: accountID, ItemID: item.ID, Quantity: item.Quantity})
	}
	return lines
}

// AddToCartRequest is the body of POST /api/cart/{userID}/items.
type AddToCartRequest struct {
	ID       int64 `json:"id"`
	Quantity int   `json:"quantity"`
}

func (r AddToCartRequest) Validate() error {
	if r.ID <= 0 {
		return util.Validationf("item id must be positive")
	}
	if !domain.QuantityInRange(r.Quantity) {
		return util.Validationf("quantity must be between 1 and %d", domain.MaxLineQuantity)
	}
	return nil
}

// CheckoutRequest is the body of POST /api/purchases.
type CheckoutRequest struct {
	UserID       int64                 `json:"userId"`
	Items        []domain.CheckoutLine `json:"items"`
	Total        decimal.Decimal       `json:"total"`
	PointsEarned int64                 `json:"pointsEarned"`
}

func (r CheckoutRequest) Validate() error {
	if r.UserID <= 0 {
		return util.Validationf("userId is required")
	}
	if len(r.Items) == 0 {
		return util.ErrEmptyCart
	}
	return nil
}
