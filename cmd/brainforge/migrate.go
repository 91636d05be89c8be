package main

import (
	"github.com/spf13/cobra"

	"github.com/yungbote/brainforge-backend/internal/app"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and exit",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		log, err := newLogger()
		if err != nil {
			return err
		}
		defer log.Sync()

		cfg := app.LoadConfig(log)
		dbs, err := app.OpenDatabase(log, cfg)
		if err != nil {
			return err
		}
		defer dbs.Close()

		log.Info("Migrations applied", "driver", cfg.DB.Driver)
		return nil
	},
}
