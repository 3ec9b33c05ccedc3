// internal/api/types/response.go
package types

import (
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

// AccountResponse is the wire form of an account. The secret hash never leaves the server.
type AccountResponse struct {
	ID        int64             `json:"id"`
	Username  string            `json:"username"`
	Email     string            `json:"email"`
	Money     decimal.Decimal   `json:"money"`
	Points    int64             `json:"points"`
	Purchases []domain.Purchase `json:"purchases"`
}

// NewAccountResponse converts an account for the wire.
func NewAccountResponse(account *domain.Account) AccountResponse {
	purchases := account.Purchases
	if purchases == nil {
		purchases = []domain.Purchase{}
	}
	return AccountResponse{
		ID:        account.ID,
		Username:  account.Username,
		Email:     account.Email,
		Money:     account.Balance,
		Points:    account.Points,
		Purchases: purchases,
	}
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse reports whether the storage backend answers.
type HealthResponse struct {
	Status  string `json:"status"`
	Backend string `json:"backend"`
}
