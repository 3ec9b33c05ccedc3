// Package cli implements the storefront command line.
package cli

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	app "storefront/internal"
	"storefront/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Backend string // overrides STORAGE_BACKEND when set
	EnvFile string
}

// NewRootCommand creates the root command for the storefront CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "storefront",
		Short: "Storefront commerce backend",
		Long:  "Serves the storefront API over a local SQLite store or PostgreSQL and manages its schema and catalog.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.Backend != "" && opts.Backend != config.BackendLocal && opts.Backend != config.BackendPostgres {
				return fmt.Errorf("invalid backend %q: must be %q or %q", opts.Backend, config.BackendLocal, config.BackendPostgres)
			}
			if opts.EnvFile != "" {
				if err := godotenv.Load(opts.EnvFile); err != nil {
					return fmt.Errorf("failed to load env file %s: %w", opts.EnvFile, err)
				}
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Backend, "backend", "", "storage backend (local|postgres), overrides STORAGE_BACKEND")
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", "", "read environment variables from this file first")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))

	return cmd
}

// newApplication loads configuration and applies the global flag overrides.
func newApplication(opts *RootOptions) (*app.Application, error) {
	application := app.NewApplication()
	if err := application.LoadConfig(); err != nil {
		return nil, err
	}
	if opts.Backend != "" {
		application.Config.Backend = opts.Backend
	}
	return application, nil
}
