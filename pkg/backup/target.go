package backup

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Target receives finished store snapshots
type Target interface {
	Name() string
	Store(ctx context.Context, key string, r io.Reader, size int64) error
}

// FilesystemTarget copies snapshots into a local directory
type FilesystemTarget struct {
	root string
}

// NewFilesystemTarget creates the directory if needed
func NewFilesystemTarget(root string) (*FilesystemTarget, error) {
	if root == "" {
		return nil, fmt.Errorf("backup directory required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}
	return &FilesystemTarget{root: root}, nil
}

func (t *FilesystemTarget) Name() string { return DriverFilesystem }

// Store writes the snapshot under a temporary name and renames it into place
func (t *FilesystemTarget) Store(ctx context.Context, key string, r io.Reader, size int64) error {
	if strings.Contains(key, "..") {
		return fmt.Errorf("invalid backup key: %s", key)
	}

	dest := filepath.Join(t.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("failed to create backup directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".backup-*")
	if err != nil {
		return fmt.Errorf("failed to create backup file: %w", err)
	}
	defer os.Remove(tmp.Name())

	written, err := io.Copy(tmp, r)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("failed to write backup file: %w", err)
	}
	if size >= 0 && written != size {
		return fmt.Errorf("short backup write: %d of %d bytes", written, size)
	}

	if err := os.Rename(tmp.Name(), dest); err != nil {
		return fmt.Errorf("failed to move backup into place: %w", err)
	}
	return nil
}

// S3Config describes an S3-compatible bucket (AWS S3 or MinIO)
type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	PathStyle bool
	Prefix    string
}

// S3Target uploads snapshots to a bucket
type S3Target struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3Target loads AWS credentials from the default chain
func NewS3Target(ctx context.Context, cfg S3Config, optFns ...func(*s3.Options)) (*S3Target, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		for _, fn := range optFns {
			fn(o)
		}
	})

	return &S3Target{
		client: client,
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
	}, nil
}

func (t *S3Target) Name() string { return DriverS3 }

// Store uploads the snapshot with PutObject
func (t *S3Target) Store(ctx context.Context, key string, r io.Reader, size int64) error {
	if t.prefix != "" {
		key = t.prefix + "/" + key
	}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(t.bucket),
		Key:         aws.String(key),
		Body:        r,
		ContentType: aws.String("application/vnd.sqlite3"),
	}
	if size >= 0 {
		input.ContentLength = aws.Int64(size)
	}

	if _, err := t.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("failed to upload backup to s3://%s/%s: %w", t.bucket, key, err)
	}
	return nil
}
