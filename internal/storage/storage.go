package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"go-task-organizer/internal/config"
	"go-task-organizer/internal/export"
	"go-task-organizer/internal/models"
)

// StorageProvider represents the type of backup storage being used
type StorageProvider string

const (
	Local StorageProvider = "local"
	S3    StorageProvider = "s3"
)

// Storage is a destination for snapshot backups.
type Storage interface {
	Upload(ctx context.Context, reader io.Reader, key string) (string, error)
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	List(ctx context.Context) ([]string, error)
}

// New returns the configured backup storage.
func New(ctx context.Context, cfg config.BackupConfig) (Storage, error) {
	switch StorageProvider(cfg.Provider) {
	case Local:
		return NewLocalStorage(cfg.Path)
	case S3:
		return NewS3Storage(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unsupported backup provider: %s", cfg.Provider)
	}
}

// Backup writes a JSON export of snap and returns its key.
func Backup(ctx context.Context, s Storage, snap *models.Snapshot, at time.Time) (string, error) {
	var buf bytes.Buffer
	if err := export.Write(&buf, export.JSON, snap); err != nil {
		return "", fmt.Errorf("failed to encode backup: %w", err)
	}
	return s.Upload(ctx, &buf, export.JSON.Filename(at))
}

// LocalStorage keeps backups as files in a directory.
type LocalStorage struct {
	dir string
}

// NewLocalStorage creates dir if needed.
func NewLocalStorage(dir string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}
	return &LocalStorage{dir: dir}, nil
}

// Upload writes reader to a file named key.
func (l *LocalStorage) Upload(ctx context.Context, reader io.Reader, key string) (string, error) {
	name := filepath.Join(l.dir, filepath.Base(filepath.Clean(key)))
	tmp, err := os.CreateTemp(l.dir, ".backup-*")
	if err != nil {
		return "", fmt.Errorf("failed to create backup file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, reader); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write backup file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to write backup file: %w", err)
	}
	if err := os.Rename(tmp.Name(), name); err != nil {
		return "", fmt.Errorf("failed to store backup file: %w", err)
	}
	return name, nil
}

// Download opens the backup named key.
func (l *LocalStorage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(l.dir, filepath.Base(filepath.Clean(key))))
	if err != nil {
		return nil, fmt.Errorf("failed to open backup: %w", err)
	}
	return f, nil
}

// List returns backup names, oldest first.
func (l *LocalStorage) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// S3Storage implements the Storage interface for AWS S3
type S3Storage struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3Storage builds an S3 client from static credentials when given, the
// default AWS credential chain otherwise.
func NewS3Storage(ctx context.Context, cfg config.S3Config) (*S3Storage, error) {
	if cfg.BucketName == "" {
		return nil, fmt.Errorf("AWS_BUCKET_NAME is required for s3 backups")
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %v", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.ForcePathStyle
	})
	return &S3Storage{client: client, bucket: cfg.BucketName, prefix: cfg.Prefix}, nil
}

func (s *S3Storage) key(name string) string {
	return path.Join(s.prefix, path.Base(name))
}

// Upload uploads a backup to S3
func (s *S3Storage) Upload(ctx context.Context, reader io.Reader, name string) (string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("failed to read backup: %v", err)
	}
	key := s.key(name)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Body:        bytes.NewReader(data),
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(export.JSON.ContentType()),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload backup to S3: %v", err)
	}
	return key, nil
}

// Download downloads a backup from S3
func (s *S3Storage) Download(ctx context.Context, name string) (io.ReadCloser, error) {
	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to download backup from S3: %v", err)
	}
	return result.Body, nil
}

// List returns backup names under the prefix, oldest first.
func (s *S3Storage) List(ctx context.Context) ([]string, error) {
	var names []string
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list backups: %v", err)
		}
		for _, obj := range page.Contents {
			names = append(names, path.Base(aws.ToString(obj.Key)))
		}
	}
	sort.Strings(names)
	return names, nil
}
