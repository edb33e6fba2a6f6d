package main

import (
	infraDB "contentops-workflow/internal/infrastructure/db"
	"contentops-workflow/internal/logging"

	"github.com/spf13/cobra"
)

func newMigrateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the workflow tables",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := ctx.load()
			if err != nil {
				return err
			}
			a, err := openApp(cfg)
			if err != nil {
				return err
			}
			defer a.close()

			if err := infraDB.Migrate(a.db); err != nil {
				return err
			}
			log := logging.Component("migrate")
			log.Info().Int("tables", len(infraDB.Models())).Msg("migrated")
			return nil
		},
	}
}
