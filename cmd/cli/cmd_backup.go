package main

import (
	"fmt"

	"github.com/Lambton-Digital-Transformation-Lab/blue-water-anglers/pkg/backup"
	"github.com/spf13/cobra"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Snapshot the store to the configured backup target",
	Long: `Write a consistent copy of the SQLite store to BACKUP_DRIVER (fs or s3).
Scheduled backups run inside 'serve'; this command takes one now.`,
	RunE: runBackup,
}

func init() {
	rootCmd.AddCommand(backupCmd)
	backupCmd.Flags().String("driver", "", "override BACKUP_DRIVER (fs|s3)")
	backupCmd.Flags().String("dir", "", "override BACKUP_DIR for the fs driver")
}

func runBackup(cmd *cobra.Command, args []string) error {
	dbManager, err := requireSchema(cmd)
	if err != nil {
		return err
	}

	cfg := backup.ConfigFromEnv()
	if driver, _ := cmd.Flags().GetString("driver"); driver != "" {
		cfg.Driver = driver
	}
	if dir, _ := cmd.Flags().GetString("dir"); dir != "" {
		cfg.Dir = dir
	}

	target, err := backup.OpenTarget(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("failed to open backup target: %w", err)
	}

	key, err := backup.NewService(dbManager, target, 0).RunOnce(cmd.Context())
	if err != nil {
		return fmt.Errorf("backup failed: %w", err)
	}

	fmt.Printf("✓ Backup stored as %s (%s)\n", key, target.Name())
	return nil
}
