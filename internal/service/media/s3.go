package media

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// Asset is a stored media object
type Asset struct {
	Key string
	URL string
}

type Config struct {
	// S3 compatible storage settings. Endpoint may point to MinIO
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string

	// Base for public asset links, usually the same host the bucket
	// is served from
	PublicBaseURL string
}

// Storage uploads media files to S3 compatible object storage.
// It stands in for the third party media host: handlers stream uploaded
// files here and persist only the resulting URL.
type Storage struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

func NewStorage(ctx context.Context, cfg Config) (*Storage, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("bucket must not be empty")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("error while loading s3 config. Err: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	baseURL := strings.TrimSuffix(cfg.PublicBaseURL, "/")
	if baseURL == "" {
		baseURL = strings.TrimSuffix(cfg.Endpoint, "/")
	}

	return &Storage{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: baseURL,
	}, nil
}

// Upload streams the file into the bucket under a fresh date partitioned key
func (s *Storage) Upload(ctx context.Context, r Upload) (Asset, error) {
	key := storageKey()

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          r.Reader,
		ContentLength: aws.Int64(r.Size),
		ContentType:   aws.String(r.ContentType),
	})
	if err != nil {
		return Asset{}, fmt.Errorf("error while uploading object. Err: %w", err)
	}

	return Asset{Key: key, URL: s.baseURL + "/" + s.bucket + "/" + key}, nil
}

// Delete removes the object. Used for superseded avatars and thumbnails,
// callers treat failures as best effort
func (s *Storage) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("error while deleting object. Err: %w", err)
	}

	return nil
}

// KeyFromURL recovers the storage key from a public asset URL.
// Empty string when the URL does not belong to this storage
func (s *Storage) KeyFromURL(url string) string {
	prefix := s.baseURL + "/" + s.bucket + "/"
	if !strings.HasPrefix(url, prefix) {
		return ""
	}
	return strings.TrimPrefix(url, prefix)
}

func storageKey() string {
	d := time.Now()
	return fmt.Sprintf("media/%d/%02d/%02d/%v", d.Year(), d.Month(), d.Day(), uuid.New())
}
