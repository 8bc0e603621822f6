package commands

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"
)

// Migrator applies and reverts the embedded schema migrations
type Migrator interface {
	RunMigrations(ctx context.Context, db *sql.DB) error
	MigrateDown(ctx context.Context, db *sql.DB, steps int) error
}

// DatabaseFactory opens the configured database on first use
type DatabaseFactory func(ctx context.Context) (*sql.DB, error)

// DatabaseCommands returns the database management commands
func DatabaseCommands(migrator Migrator, openDB DatabaseFactory, databaseURL string) *cobra.Command {
	dbCmd := &cobra.Command{
		Use:   "db",
		Short: "Database management commands",
		Long: `Database management commands for the quiz results store.

Available commands:
  migrate up    - Apply all pending migrations
  migrate down  - Revert migrations
  info          - Show the database connection`,
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or revert schema migrations",
	}
	migrateCmd.AddCommand(migrateUpCmd(migrator, openDB))
	migrateCmd.AddCommand(migrateDownCmd(migrator, openDB))

	dbCmd.AddCommand(migrateCmd)
	dbCmd.AddCommand(infoCmd(openDB, databaseURL))

	return dbCmd
}

func migrateUpCmd(migrator Migrator, openDB DatabaseFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := openDB(cmd.Context())
			if err != nil {
				return err
			}
			if err := migrator.RunMigrations(cmd.Context(), db); err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied")
			return err
		},
	}
}

func migrateDownCmd(migrator Migrator, openDB DatabaseFactory) *cobra.Command {
	var steps int

	cmd := &cobra.Command{
		Use:   "down",
		Short: "Revert migrations",
		Long: `Revert migrations. With --steps 0 (the default) every migration is reverted,
which drops the quiz results table.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if steps < 0 {
				return fmt.Errorf("--steps must not be negative, got %d", steps)
			}
			db, err := openDB(cmd.Context())
			if err != nil {
				return err
			}
			if err := migrator.MigrateDown(cmd.Context(), db, steps); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Reverted %s\n", describeSteps(steps))
			return err
		},
	}
	cmd.Flags().IntVar(&steps, "steps", 1, "Number of migrations to revert, 0 for all")

	return cmd
}

func infoCmd(openDB DatabaseFactory, databaseURL string) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the database connection",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := openDB(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "URL:      %s\n", maskDatabaseURL(databaseURL))
			fmt.Fprintf(out, "Database: %s\n", getDatabaseInfo(cmd.Context(), db))
			return nil
		},
	}
}

func describeSteps(steps int) string {
	switch steps {
	case 0:
		return "all migrations"
	case 1:
		return "1 migration"
	}
	return fmt.Sprintf("%d migrations", steps)
}
