// Package local implements the storage backend as a key/value document store in
// a single SQLite file. Each document is a JSON value under a well-known key:
//
//	accounts           every account, including secret hashes
//	catalog            the catalog entries
//	cart:<id>          one account's cart lines
//	purchases:<id>     one account's purchase ledger
//	sequence:<name>    the last id handed out for accounts, purchases or catalog
//
// Multi-document writes run in one SQLite transaction, so a failure part way
// through leaves every document as it was.
package local

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"storefront/internal/catalog"
	"storefront/internal/config"
	"storefront/internal/repository"
	"storefront/internal/util"
	"storefront/pkg/db"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 1 - documents table
const currentSchemaVersion = 1

// Backend is the SQLite document store.
type Backend struct {
	db     *sqlx.DB
	logger *slog.Logger

	// failAt, when set, is called at named steps of a multi-document write.
	// Returning an error aborts the write at that step.
	failAt func(step string) error
}

// Open creates or opens the store at path, applies the schema and seeds the
// default catalog into an empty store.
func Open(ctx context.Context, path string, logger *slog.Logger) (*Backend, error) {
	database, err := db.NewSQLiteDB(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", util.ErrBackendUnavailable, err)
	}

	if err := applySchema(ctx, database); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	b := &Backend{db: database, logger: logger}

	items, err := catalog.Default()
	if err != nil {
		database.Close()
		return nil, err
	}
	added, err := b.SeedCatalog(ctx, items)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to seed catalog: %w", err)
	}
	if added > 0 {
		logger.Info("Seeded local catalog", "items", added, "path", path)
	}

	return b, nil
}

func applySchema(ctx context.Context, database *sqlx.DB) error {
	if _, err := database.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	var version int
	if err := database.GetContext(ctx, &version, "PRAGMA user_version"); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}
	if version > currentSchemaVersion {
		return fmt.Errorf("store schema version %d is newer than supported version %d", version, currentSchemaVersion)
	}
	if _, err := database.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}

func (b *Backend) Name() string { return config.BackendLocal }

func (b *Backend) Ping(ctx context.Context) error {
	if err := b.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %w", util.ErrBackendUnavailable, err)
	}
	return nil
}

func (b *Backend) Close() error {
	if b.db == nil {
		return nil
	}
	return b.db.Close()
}

// runInTx runs fn in a transaction and commits when fn succeeds.
// The pool holds a single connection, so fn must only use q.
func (b *Backend) runInTx(ctx context.Context, op string, fn func(q repository.DBExecutor) error) error {
	txController, err := db.BeginTx(ctx, b.db)
	if err != nil {
		return fmt.Errorf("%s: failed to begin transaction: %w", op, translateError(err))
	}
	defer db.RollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return fmt.Errorf("%s: transaction controller does not implement DBExecutor", op)
	}

	if err := fn(txExecutor); err != nil {
		return err
	}

	if err := db.CommitTx(txController); err != nil {
		return fmt.Errorf("%s: failed to commit transaction: %w", op, translateError(err))
	}
	return nil
}

func (b *Backend) step(name string) error {
	if b.failAt == nil {
		return nil
	}
	return b.failAt(name)
}
