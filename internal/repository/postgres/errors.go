// internal/repository/postgres/errors.go
package postgres

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"github.com/lib/pq"

	"storefront/internal/util"
)

// PostgreSQL SQLSTATE codes the repositories translate.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
)

// Default constraint names generated for the UNIQUE columns of accounts.
const (
	constraintAccountUsername = "accounts_username_key"
	constraintAccountEmail    = "accounts_email_key"
)

// TranslateError maps driver-level failures onto the storefront error taxonomy.
// The original error stays in the chain for logging.
func TranslateError(err error) error {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch {
		case pqErr.Code == codeUniqueViolation && pqErr.Constraint == constraintAccountUsername:
			return fmt.Errorf("%w: %w", util.ErrUsernameTaken, err)
		case pqErr.Code == codeUniqueViolation && pqErr.Constraint == constraintAccountEmail:
			return fmt.Errorf("%w: %w", util.ErrEmailTaken, err)
		case pqErr.Code == codeUniqueViolation:
			return fmt.Errorf("%w: %w", util.ErrConflict, err)
		case pqErr.Code == codeForeignKeyViolation:
			return fmt.Errorf("%w: %w", util.ErrNotFound, err)
		case pqErr.Code == codeCheckViolation, pqErr.Code.Class() == "22":
			return fmt.Errorf("%w: %w", util.ErrValidationFailed, err)
		case pqErr.Code.Class() == "08", pqErr.Code.Class() == "53", pqErr.Code.Class() == "57":
			return fmt.Errorf("%w: %w", util.ErrBackendUnavailable, err)
		}
		return err
	}

	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return fmt.Errorf("%w: %w", util.ErrBackendUnavailable, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %w", util.ErrBackendUnavailable, err)
	}
	return err
}
