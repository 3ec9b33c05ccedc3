// internal/app.go
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	router "storefront/internal/api"
	"storefront/internal/api/handler"
	"storefront/internal/auth"
	"storefront/internal/backend"
	"storefront/internal/catalog"
	"storefront/internal/config"
	"storefront/internal/service"
	"storefront/internal/util"
	"storefront/pkg/db"
)

// Application holds all the initialized components of the application.
type Application struct {
	Config *config.AppConfig
	Logger *slog.Logger

	// Backend is the storage implementation selected by STORAGE_BACKEND.
	Backend backend.Backend

	// Services
	StoreService service.StoreService

	// HTTP API
	HTTPHandler http.Handler

	// HashCost is the bcrypt cost for new secrets. Zero means bcrypt.DefaultCost.
	HashCost int
}

// NewApplication creates a new Application instance.
func NewApplication() *Application {
	return &Application{}
}

// LoadConfig loads configuration and the logger unless they are already set.
func (app *Application) LoadConfig() error {
	if app.Config == nil {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		app.Config = cfg
	}
	if app.Logger == nil {
		util.InitLogger(app.Config.LogLevel)
		app.Logger = util.GetLogger()
	}
	return nil
}

// Initialize initializes all application components.
// A backend that cannot be opened does not stop startup: it is replaced by one
// that reports ErrBackendUnavailable on every call.
func (app *Application) Initialize(ctx context.Context) error {
	// 1. Configuration and logger
	if err := app.LoadConfig(); err != nil {
		return err
	}
	app.Logger.Info("Application configuration loaded", "backend", app.Config.Backend)

	// 2. Storage backend
	b, err := backend.Open(ctx, app.Config, app.Logger)
	if err != nil {
		app.Logger.Error("Storage backend unavailable", "backend", app.Config.Backend, "error", err)
		b = backend.NewUnavailable(app.Config.Backend, err)
	} else {
		app.Logger.Info("Storage backend opened", "backend", b.Name())
	}
	app.Backend = b

	// 3. Services
	cost := app.HashCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	app.StoreService = service.NewStoreService(app.Backend, auth.NewBcryptHasher(cost), app.Config.Store, app.Logger)

	// 4. HTTP handlers and router
	storeHandler := handler.NewStoreHandler(app.StoreService, app.Logger)
	app.HTTPHandler = router.NewRouter(storeHandler, app.Logger)
	app.Logger.Info("HTTP router and handlers initialized")

	return nil
}

// Migrate applies pending schema migrations to the relational database.
// The local backend manages its own schema, so there is nothing to do for it.
func (app *Application) Migrate(ctx context.Context) ([]string, error) {
	if err := app.LoadConfig(); err != nil {
		return nil, err
	}
	if app.Config.Backend != config.BackendPostgres {
		app.Logger.Info("Migrations skipped", "backend", app.Config.Backend)
		return nil, nil
	}

	database, err := db.NewPostgresDB(ctx, app.Config.DB)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	applied, err := db.Migrate(ctx, database)
	if err != nil {
		return applied, fmt.Errorf("failed to migrate database: %w", err)
	}
	app.Logger.Info("Database migrated", "applied", applied)
	return applied, nil
}

// SeedCatalog loads the seed file named by CATALOG_SEED_FILE (or the built-in
// catalog) into an empty catalog. Initialize must have been called.
func (app *Application) SeedCatalog(ctx context.Context) (int, error) {
	items, err := catalog.Load(app.Config.CatalogSeed)
	if err != nil {
		return 0, err
	}
	added, err := app.Backend.SeedCatalog(ctx, items)
	if err != nil {
		return 0, fmt.Errorf("failed to seed catalog: %w", err)
	}
	app.Logger.Info("Catalog seeded", "added", added, "backend", app.Backend.Name())
	return added, nil
}

// Shutdown gracefully shuts down application resources.
func (app *Application) Shutdown(ctx context.Context) error {
	app.Logger.Info("Shutting down application...")
	if app.Backend != nil {
		if err := app.Backend.Close(); err != nil {
			app.Logger.Error("Failed to close storage backend", "error", err)
			return fmt.Errorf("failed to close storage backend: %w", err)
		}
		app.Logger.Info("Storage backend closed")
	}
	app.Logger.Info("Application shut down gracefully.")
	return nil
}
