package main

import (
	"log/slog"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, db, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close()

		slog.Info("database is up to date", "path", cfg.DBPath)
		return nil
	},
}
