// internal/repository/postgres/account_pg.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repository"
	"storefront/internal/util"
)

const accountColumns = `id, username, email, secret_hash, balance, points, created_at, updated_at`

// AccountRepository implements repository.AccountRepository for PostgreSQL.
type AccountRepository struct{}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository() repository.AccountRepository {
	return &AccountRepository{}
}

// CreateAccount inserts a new account using the provided DBExecutor.
func (r *AccountRepository) CreateAccount(ctx context.Context, q repository.DBExecutor, account *domain.Account) error {
	query := `INSERT INTO accounts (username, email, secret_hash, balance, points, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	err := q.QueryRowContext(ctx, query,
		account.Username,
		account.Email,
		account.SecretHash,
		account.Balance,
		account.Points,
		account.CreatedAt,
		account.UpdatedAt,
	).Scan(&account.ID)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", TranslateError(err))
	}
	return nil
}

// GetAccountByID retrieves an account by its ID.
func (r *AccountRepository) GetAccountByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Account, error) {
	var account domain.Account
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	if err := q.GetContext(ctx, &account, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get account by ID %d: %w", id, TranslateError(err))
	}
	return &account, nil
}

// GetAccountByUsername retrieves an account by its username.
func (r *AccountRepository) GetAccountByUsername(ctx context.Context, q repository.DBExecutor, username string) (*domain.Account, error) {
	var account domain.Account
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE username = $1`
	if err := q.GetContext(ctx, &account, query, username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get account by username '%s': %w", username, TranslateError(err))
	}
	return &account, nil
}

// LockAccount selects the account row FOR UPDATE. Only meaningful inside a transaction.
func (r *AccountRepository) LockAccount(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Account, error) {
	var account domain.Account
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1 FOR UPDATE`
	if err := q.GetContext(ctx, &account, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock account %d: %w", id, TranslateError(err))
	}
	return &account, nil
}

// FindIdentityConflict checks whether the username or email belongs to another account.
func (r *AccountRepository) FindIdentityConflict(ctx context.Context, q repository.DBExecutor, username, email string, excludeID int64) error {
	var rows []struct {
		Username string `db:"username"`
		Email    string `db:"email"`
	}
	query := `SELECT username, email FROM accounts WHERE (username = $1 OR email = $2) AND id <> $3`
	if err := q.SelectContext(ctx, &rows, query, username, email, excludeID); err != nil {
		return fmt.Errorf("failed to check account identity: %w", TranslateError(err))
	}
	for _, row := range rows {
		if row.Username == username {
			return util.ErrUsernameTaken
		}
	}
	if len(rows) > 0 {
		return util.ErrEmailTaken
	}
	return nil
}

// UpdateAccount overwrites the mutable fields of an account.
func (r *AccountRepository) UpdateAccount(ctx context.Context, q repository.DBExecutor, account *domain.Account) error {
	account.UpdatedAt = time.Now().UTC()
	query := `UPDATE accounts SET username = $1, email = $2, balance = $3, points = $4, updated_at = $5 WHERE id = $6`
	result, err := q.ExecContext(ctx, query,
		account.Username,
		account.Email,
		account.Balance,
		account.Points,
		account.UpdatedAt,
		account.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update account %d: %w", account.ID, TranslateError(err))
	}
	return expectOneRow(result, util.ErrNotFound)
}

// AddPoints increments the loyalty points of an account.
func (r *AccountRepository) AddPoints(ctx context.Context, q repository.DBExecutor, id int64, points int64) error {
	query := `UPDATE accounts SET points = points + $1, updated_at = $2 WHERE id = $3`
	result, err := q.ExecContext(ctx, query, points, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to add points to account %d: %w", id, TranslateError(err))
	}
	return expectOneRow(result, util.ErrNotFound)
}

// expectOneRow returns missing when the statement touched no row.
func expectOneRow(result sql.Result, missing error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", TranslateError(err))
	}
	if rowsAffected == 0 {
		return missing
	}
	return nil
}
