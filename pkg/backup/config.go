package backup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	DriverFilesystem = "fs"
	DriverS3         = "s3"
)

// Config selects where snapshots go and how often
type Config struct {
	Driver string
	Dir    string

	// Interval of zero disables scheduled backups
	Interval time.Duration

	S3 S3Config
}

// ConfigFromEnv reads the backup configuration.
//
//	BACKUP_DRIVER: fs|s3 (default fs)
//	BACKUP_DIR: directory for the fs driver (default data/backups)
//	BACKUP_INTERVAL: Go duration, 0 disables the schedule (default 24h)
//	BACKUP_S3_BUCKET, BACKUP_S3_REGION, BACKUP_S3_ENDPOINT,
//	BACKUP_S3_PATH_STYLE, BACKUP_S3_PREFIX: s3 driver settings
func ConfigFromEnv() Config {
	cfg := Config{
		Driver:   strings.ToLower(getEnv("BACKUP_DRIVER", DriverFilesystem)),
		Dir:      getEnv("BACKUP_DIR", filepath.Join("data", "backups")),
		Interval: 24 * time.Hour,
		S3: S3Config{
			Bucket:    os.Getenv("BACKUP_S3_BUCKET"),
			Region:    os.Getenv("BACKUP_S3_REGION"),
			Endpoint:  os.Getenv("BACKUP_S3_ENDPOINT"),
			PathStyle: strings.EqualFold(os.Getenv("BACKUP_S3_PATH_STYLE"), "true"),
			Prefix:    os.Getenv("BACKUP_S3_PREFIX"),
		},
	}

	if raw := os.Getenv("BACKUP_INTERVAL"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d >= 0 {
			cfg.Interval = d
		}
	}

	return cfg
}

// OpenTarget builds the configured Target
func OpenTarget(ctx context.Context, cfg Config) (Target, error) {
	switch cfg.Driver {
	case "", DriverFilesystem:
		return NewFilesystemTarget(cfg.Dir)
	case DriverS3:
		return NewS3Target(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unknown backup driver %s", cfg.Driver)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
