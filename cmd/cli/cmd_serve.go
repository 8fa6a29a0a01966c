package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/Lambton-Digital-Transformation-Lab/blue-water-anglers/pkg/backup"
	"github.com/Lambton-Digital-Transformation-Lab/blue-water-anglers/pkg/database"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Blue Water Anglers API server",
	Long:  `Run migrations, start scheduled backups and serve the reading log API.`,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	jwtSecret := getEnv("JWT_SECRET", "")
	if jwtSecret == "" || jwtSecret == "change_me_in_production" {
		return errors.New("JWT_SECRET environment variable is not set or has an invalid value")
	}

	dbManager := dbManagerFrom(cmd)

	// Run migrations
	if err := dbManager.Init(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	backupService, err := newBackupService(cmd.Context(), dbManager)
	if err != nil {
		return err
	}
	if backupService != nil {
		backupService.Start()
	}

	routeManager := NewRouteManager(dbManager, RouteConfig{
		JWTSecret:      jwtSecret,
		AllowedOrigins: allowedOriginsFromEnv(),
		PageSize:       pageSizeFromEnv(),
	})
	routeManager.Setup()

	addr := ":" + getEnv("SERVER_PORT", "8080")

	server := &http.Server{
		Handler:      routeManager.Router,
		Addr:         addr,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Println("Shutdown signal received")

		if backupService != nil {
			backupService.Stop()
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	log.Printf("Starting Blue Water Anglers server on %s...", addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// newBackupService returns nil when the store is not a local SQLite file
func newBackupService(ctx context.Context, dbManager *database.DatabaseManager) (*backup.Service, error) {
	if dbManager.Driver() != database.DriverSQLite {
		log.Printf("Backups disabled for %s store", dbManager.Driver())
		return nil, nil
	}

	cfg := backup.ConfigFromEnv()
	target, err := backup.OpenTarget(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open backup target: %w", err)
	}

	return backup.NewService(dbManager, target, cfg.Interval), nil
}

func allowedOriginsFromEnv() []string {
	raw := getEnv("SERVER_ALLOWED_ORIGINS", "")
	if raw == "" {
		return []string{"http://localhost:5173", "http://localhost:3000"}
	}

	var origins []string
	for _, origin := range strings.Split(raw, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

func pageSizeFromEnv() int {
	if n, err := strconv.Atoi(getEnv("PAGE_SIZE", "")); err == nil && n > 0 {
		return n
	}
	return 0
}
