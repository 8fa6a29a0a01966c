package main

import (
	"fmt"

	"github.com/Lambton-Digital-Transformation-Lab/blue-water-anglers/pkg/database"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	Long:  `Create or upgrade the reading log schema for the configured store.`,
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	dbManager := dbManagerFrom(cmd)

	if err := dbManager.Init(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	fmt.Printf("✓ %s store is up to date\n", dbManager.Driver())
	return nil
}

// requireSchema fails with a hint when the store has not been migrated
func requireSchema(cmd *cobra.Command) (*database.DatabaseManager, error) {
	dbManager := dbManagerFrom(cmd)
	if err := dbManager.VerifySchema(cmd.Context()); err != nil {
		return nil, fmt.Errorf("%w (run 'bluewater migrate' first)", err)
	}
	return dbManager, nil
}
