package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"despesas/internal/database"
	"despesas/internal/database/migration"
	"despesas/internal/service"
)

func newMigrateCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the expenses schema when it is missing",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			db, err := database.NewPostgres(ctx, root.cfg.Database)
			if err != nil {
				return fmt.Errorf("%w: %v", service.ErrStoreUnavailable, err)
			}
			defer db.Close()

			applied, err := migration.EnsureMigrated(ctx, db)
			if err != nil {
				return err
			}
			if applied {
				fmt.Fprintln(cmd.OutOrStdout(), "schema created")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			}
			return nil
		},
	}
}
