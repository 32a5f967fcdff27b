package main

import (
	"errors"
	"fmt"

	"alcyxob/ecofit/internal/config"
	"alcyxob/ecofit/internal/repository/postgres"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the embedded PostgreSQL migrations",
	Long: `Apply the embedded .up.sql migrations that the database has not seen yet.

Applied versions are tracked in schema_migrations, so running this twice is safe.

Example:
  DATABASE_URL=postgres://... ecofitctl migrate`,
	Args: cobra.NoArgs,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	db := current.cfg.Database
	if db.Driver != config.DriverPostgres {
		return errors.New("migrate only applies to the postgres driver")
	}

	version, err := postgres.Migrate(db.URL)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Schema at version %d\n", version)
	return nil
}
