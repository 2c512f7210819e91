package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jengzang/patroliq-backend-go/internal/config"
	"github.com/jengzang/patroliq-backend-go/internal/database"
	"github.com/jengzang/patroliq-backend-go/internal/observability"
)

var v = config.New()

var rootCmd = &cobra.Command{
	Use:           "patroliq",
	Short:         "Crime hotspot and patrol planning backend",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("port", ":8080", "HTTP listen address")
	flags.String("db", "./data/patroliq.db", "SQLite database path")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "text", "log format (text, json)")

	bindFlags(rootCmd, true, map[string]string{
		config.KeyPort:      "port",
		config.KeyDBPath:    "db",
		config.KeyLogLevel:  "log-level",
		config.KeyLogFormat: "log-format",
	})

	rootCmd.AddCommand(serveCmd, migrateCmd, importCmd, hotspotsCmd, tokenCmd)
}

// bindFlags binds command flags onto config keys so a set flag overrides the environment
func bindFlags(cmd *cobra.Command, persistent bool, keys map[string]string) {
	flags := cmd.Flags()
	if persistent {
		flags = cmd.PersistentFlags()
	}
	for key, name := range keys {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(err)
		}
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// setup loads configuration, initializes logging and opens a migrated database
func setup(ctx context.Context) (*config.Config, *sql.DB, error) {
	cfg, err := config.FromViper(v)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	observability.InitLogger(observability.LogConfig{Level: cfg.LogLevel, Format: cfg.LogFormat})

	db, err := database.Open(database.Config{Path: cfg.DBPath})
	if err != nil {
		return nil, nil, err
	}
	if err := database.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return cfg, db, nil
}
