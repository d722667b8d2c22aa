package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/phrazzld/flashgen/internal/platform/database"
	"github.com/phrazzld/flashgen/internal/platform/migrations"
)

func newMigrateCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate [up|down|status]",
		Short: "Manage the database schema",
		Long: `Apply, roll back or inspect database migrations for the configured
driver. Defaults to "up".

Examples:
  flashgen migrate
  flashgen migrate status
  FLASHGEN_DATABASE_DRIVER=pgx FLASHGEN_DATABASE_URL=postgres://... flashgen migrate up`,
		ValidArgs: []string{migrations.CommandUp, migrations.CommandDown, migrations.CommandStatus},
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			command := migrations.CommandUp
			if len(args) == 1 {
				command = args[0]
			}

			cfg, log, err := root.loadConfig(cmd)
			if err != nil {
				return err
			}

			db, err := database.Open(cmd.Context(), cfg.Database, false, log)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			if err := migrations.Run(cmd.Context(), db, cfg.Database.Driver, command, log); err != nil {
				return err
			}

			version, err := migrations.Version(cmd.Context(), db, cfg.Database.Driver)
			if err != nil {
				return fmt.Errorf("failed to read schema version: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Schema version: %d\n", version)
			return nil
		},
	}
}
