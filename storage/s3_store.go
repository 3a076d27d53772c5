package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Dosada05/pitch-tracker/models"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3StoreConfig описывает S3-совместимый эндпоинт (Supabase Storage, R2, MinIO).
type S3StoreConfig struct {
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	PublicBaseURL   string
}

type s3Store struct {
	s3Client      *s3.Client
	publicBaseURL string
}

func NewS3Store(ctx context.Context, cfg S3StoreConfig) (BlobStore, error) {
	if cfg.Endpoint == "" || cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" || cfg.PublicBaseURL == "" {
		return nil, errors.New("invalid storage configuration: endpoint, credentials and public base URL are required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	sdkCfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
		config.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS SDK config for storage: %w", err)
	}

	s3Client := s3.NewFromConfig(sdkCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		// Supabase Storage и MinIO не поддерживают virtual-hosted адресацию бакетов.
		o.UsePathStyle = true
	})

	return &s3Store{
		s3Client:      s3Client,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
	}, nil
}

func (u *s3Store) Upload(ctx context.Context, namespace, key, contentType string, reader io.Reader) (*UploadResult, error) {
	putObjectInput := &s3.PutObjectInput{
		Bucket:      aws.String(namespace),
		Key:         aws.String(key),
		Body:        reader,
		ContentType: aws.String(contentType),
	}

	result, err := u.s3Client.PutObject(ctx, putObjectInput)
	if err != nil {
		return nil, fmt.Errorf("failed to upload object (bucket: %s, key: %s): %w", namespace, key, err)
	}

	etag := ""
	if result.ETag != nil {
		// ETag от S3-совместимых API часто приходит в двойных кавычках, их нужно убрать.
		etag = strings.Trim(*result.ETag, "\"")
	}

	return &UploadResult{
		Namespace: namespace,
		Key:       key,
		Location:  u.PublicURL(namespace, key),
		ETag:      etag,
	}, nil
}

func (u *s3Store) Remove(ctx context.Context, namespace string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	objects := make([]types.ObjectIdentifier, 0, len(keys))
	for _, key := range keys {
		objects = append(objects, types.ObjectIdentifier{Key: aws.String(key)})
	}

	out, err := u.s3Client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(namespace),
		Delete: &types.Delete{Objects: objects, Quiet: aws.Bool(true)},
	})
	if err != nil {
		return fmt.Errorf("failed to remove objects from bucket %s: %w", namespace, err)
	}
	if len(out.Errors) > 0 {
		first := out.Errors[0]
		return fmt.Errorf("failed to remove %d object(s) from bucket %s, first %s: %s",
			len(out.Errors), namespace, aws.ToString(first.Key), aws.ToString(first.Message))
	}
	return nil
}

func (u *s3Store) Open(ctx context.Context, namespace, key string) (io.ReadCloser, error) {
	out, err := u.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(namespace),
		Key:    aws.String(key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("failed to read object (bucket: %s, key: %s): %w", namespace, key, err)
	}
	return out.Body, nil
}

func (u *s3Store) PublicURL(namespace, key string) string {
	return BuildPublicURL(u.publicBaseURL, namespace, key)
}

func (u *s3Store) ObjectFromURL(rawURL string) (string, string, bool) {
	return ParseStoredURL(u.publicBaseURL, rawURL, models.NamespaceCSV, models.NamespaceVideos)
}
