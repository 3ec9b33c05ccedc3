package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the catalog into an empty store",
		Long: `Load the catalog into an empty store.

The seed is a YAML file (--file or CATALOG_SEED_FILE); without one the
built-in catalog is used. A catalog that already has entries is left alone.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := newApplication(rootOpts)
			if err != nil {
				return err
			}
			if file != "" {
				application.Config.CatalogSeed = file
			}
			if err := application.Initialize(cmd.Context()); err != nil {
				return err
			}
			defer application.Shutdown(cmd.Context())

			if err := application.Backend.Ping(cmd.Context()); err != nil {
				return err
			}
			added, err := application.SeedCatalog(cmd.Context())
			if err != nil {
				return err
			}
			if added == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "catalog already populated; nothing seeded")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d catalog items\n", added)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "catalog seed file (YAML)")
	return cmd
}
