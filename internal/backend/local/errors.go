package local

import (
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"storefront/internal/util"
)

// translateError maps SQLite result codes onto the storefront error taxonomy.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return err
	}
	switch sqliteErr.Code {
	case sqlite3.ErrConstraint:
		return fmt.Errorf("%w: %w", util.ErrConflict, err)
	case sqlite3.ErrBusy, sqlite3.ErrLocked, sqlite3.ErrCantOpen, sqlite3.ErrIoErr,
		sqlite3.ErrFull, sqlite3.ErrReadonly, sqlite3.ErrNotADB, sqlite3.ErrCorrupt:
		return fmt.Errorf("%w: %w", util.ErrBackendUnavailable, err)
	}
	return err
}
