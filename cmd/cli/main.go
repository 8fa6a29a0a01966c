package main

import (
	"context"
	"fmt"
	"os"

	"github.com/Lambton-Digital-Transformation-Lab/blue-water-anglers/pkg/database"
	"github.com/spf13/cobra"
)

type contextKey string

const (
	dbManagerContextKey contextKey = "dbManager"
	userContextKey      contextKey = "user"
)

var rootCmd = &cobra.Command{
	Use:   "bluewater",
	Short: "Blue Water Anglers - hatchery reading log",
	Long: `Blue Water Anglers records periodic facility readings (pumps, blowers,
generator, water temperature) together with per-tank husbandry snapshots.`,
	SilenceUsage: true,
}

func main() {
	dbManager, err := database.NewDatabaseManagerFromEnv()
	if err != nil {
		fmt.Printf("Failed to initialize database: %v\n", err)
		os.Exit(1)
	}

	ctx := context.WithValue(context.Background(), dbManagerContextKey, dbManager)
	err = rootCmd.ExecuteContext(ctx)
	dbManager.Close()

	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// dbManagerFrom returns the store opened in main
func dbManagerFrom(cmd *cobra.Command) *database.DatabaseManager {
	return cmd.Context().Value(dbManagerContextKey).(*database.DatabaseManager)
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
