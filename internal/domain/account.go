// internal/domain/account.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account represents a storefront customer with a virtual wallet and loyalty points.
type Account struct {
	ID         int64           `db:"id" json:"id"`
	Username   string          `db:"username" json:"username"`
	Email      string          `db:"email" json:"email"`
	SecretHash string          `db:"secret_hash" json:"-"` // bcrypt hash, never serialized
	Balance    decimal.Decimal `db:"balance" json:"balance"`
	Points     int64           `db:"points" json:"points"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time       `db:"updated_at" json:"updated_at"`

	// Purchases is populated by read paths that return the full history.
	Purchases []Purchase `db:"-" json:"purchases"`
}

// NewAccount creates a new Account with the starting balance, zero points and an empty history.
func NewAccount(username, email, secretHash string, startingBalance decimal.Decimal) *Account {
	now := time.Now().UTC()
	return &Account{
		Username:   username,
		Email:      email,
		SecretHash: secretHash,
		Balance:    startingBalance,
		Points:     0,
		CreatedAt:  now,
		UpdatedAt:  now,
		Purchases:  []Purchase{},
	}
}
