package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ecobrain/internal/config"
	"ecobrain/internal/log"
	"ecobrain/internal/storage"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Long:  `Apply every pending migration to the SQLite database at SQLITE_DB_PATH.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			dbPath := config.Load().SQLiteDBPath
			if err := storage.RunMigrations(dbPath); err != nil {
				return err
			}
			return reportVersion(dbPath)
		},
	}

	cmd.AddCommand(migrateRollbackCmd())
	cmd.AddCommand(migrateVersionCmd())
	return cmd
}

func migrateRollbackCmd() *cobra.Command {
	var steps int
	cmd := &cobra.Command{
		Use:   "rollback",
		Short: "Revert the most recent migrations",
		RunE: func(_ *cobra.Command, _ []string) error {
			dbPath := config.Load().SQLiteDBPath
			if err := storage.RollbackMigrations(dbPath, steps); err != nil {
				return err
			}
			return reportVersion(dbPath)
		},
	}
	cmd.Flags().IntVar(&steps, "steps", 1, "number of migrations to revert")
	return cmd
}

func migrateVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the applied schema version",
		RunE: func(_ *cobra.Command, _ []string) error {
			return reportVersion(config.Load().SQLiteDBPath)
		},
	}
}

func reportVersion(dbPath string) error {
	version, dirty, err := storage.MigrationVersion(dbPath)
	if err != nil {
		return err
	}
	if dirty {
		return fmt.Errorf("schema version %d is dirty, fix it by hand and force the version", version)
	}
	logger.Info("Schema version", "version", version, "path", dbPath, log.FieldComponent, log.ComponentStorage)
	return nil
}
