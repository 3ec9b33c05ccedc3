package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"storefront/internal/config"
)

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "migrate",
		Short:        "Apply pending PostgreSQL migrations",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := newApplication(rootOpts)
			if err != nil {
				return err
			}
			if application.Config.Backend != config.BackendPostgres {
				fmt.Fprintf(cmd.OutOrStdout(), "backend %s manages its own schema; nothing to migrate\n", application.Config.Backend)
				return nil
			}

			applied, err := application.Migrate(cmd.Context())
			if err != nil {
				return err
			}
			if len(applied) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
				return nil
			}
			for _, name := range applied {
				fmt.Fprintf(cmd.OutOrStdout(), "applied %s\n", name)
			}
			return nil
		},
	}
	return cmd
}
