package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ryanwdavies/final-project-ThamesBoats/internal/config"
	"github.com/ryanwdavies/final-project-ThamesBoats/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the PostgreSQL schema and exit",
	RunE:  runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(nil, (*config.Config).ValidateDatabase)
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Log)

	pool, err := database.Connect(cmd.Context(), cfg.Database, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	from, err := database.Migrate(cmd.Context(), pool)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	logger.Info("schema up to date", "from", from, "to", database.SchemaVersion)
	return nil
}
