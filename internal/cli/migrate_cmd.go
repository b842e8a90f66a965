package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := migrate(cmd.Context(), a.cfg.Database); err != nil {
				return fmt.Errorf("migrate %s: %w", a.cfg.Database.Driver, err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s schema is up to date\n", a.cfg.Database.Driver)
			return nil
		},
	}
}
