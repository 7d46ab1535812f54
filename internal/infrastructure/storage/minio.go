// Package storage mirrors generated thumbnails into S3-compatible object storage.
package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/hszk-dev/gocatalog/internal/domain/repository"
)

const (
	thumbnailContentType = "image/jpeg"
	// Presigned URLs outlive the object on eviction, so clients revalidate.
	thumbnailCacheControl = "public, max-age=300"
)

// minioClient defines the subset of *minio.Client used here.
// *minio.Client satisfies it directly.
type minioClient interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PresignedGetObject(ctx context.Context, bucketName, objectName string, expiry time.Duration, reqParams url.Values) (*url.URL, error)
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
}

// ClientConfig holds configuration for the MinIO mirror.
type ClientConfig struct {
	Endpoint string
	// PublicEndpoint, when set, is the host baked into presigned URLs.
	PublicEndpoint string
	AccessKey      string
	SecretKey      string
	Bucket         string
	UseSSL         bool
	// CreateBucket makes the bucket at startup when it is missing.
	CreateBucket bool
}

// Client is a repository.ThumbnailMirror backed by a MinIO bucket.
type Client struct {
	client    minioClient
	presigner minioClient
	bucket    string
}

// NewClient connects to MinIO and verifies the mirror bucket.
func NewClient(ctx context.Context, cfg ClientConfig) (*Client, error) {
	client, err := newMinio(cfg.Endpoint, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	var presigner minioClient = client
	if cfg.PublicEndpoint != "" {
		public, err := newMinio(cfg.PublicEndpoint, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create public minio client: %w", err)
		}
		presigner = public
	}

	return newClientWithMinioClient(ctx, client, presigner, cfg.Bucket, cfg.CreateBucket)
}

func newMinio(endpoint string, cfg ClientConfig) (*minio.Client, error) {
	return minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
}

func newClientWithMinioClient(ctx context.Context, client, presigner minioClient, bucket string, create bool) (*Client, error) {
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if !create {
			return nil, fmt.Errorf("%w: %s", repository.ErrBucketNotFound, bucket)
		}
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", bucket, err)
		}
	}

	return &Client{
		client:    client,
		presigner: presigner,
		bucket:    bucket,
	}, nil
}

// PutThumbnail uploads one JPEG thumbnail.
func (c *Client) PutThumbnail(ctx context.Context, key string, r io.Reader, size int64) error {
	_, err := c.client.PutObject(ctx, c.bucket, key, r, size, minio.PutObjectOptions{
		ContentType:  thumbnailContentType,
		CacheControl: thumbnailCacheControl,
	})
	if err != nil {
		return fmt.Errorf("failed to upload thumbnail %s: %w", key, err)
	}
	return nil
}

// StatThumbnail reports the size and upload time of a mirrored thumbnail.
func (c *Client) StatThumbnail(ctx context.Context, key string) (repository.MirrorObject, error) {
	info, err := c.client.StatObject(ctx, c.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return repository.MirrorObject{}, fmt.Errorf("%w: %s", repository.ErrObjectNotFound, key)
		}
		return repository.MirrorObject{}, fmt.Errorf("failed to stat thumbnail %s: %w", key, err)
	}
	return repository.MirrorObject{
		Key:          key,
		Size:         info.Size,
		LastModified: info.LastModified,
	}, nil
}

// RemoveThumbnail deletes a mirrored thumbnail.
func (c *Client) RemoveThumbnail(ctx context.Context, key string) error {
	if err := c.client.RemoveObject(ctx, c.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove thumbnail %s: %w", key, err)
	}
	return nil
}

// PresignThumbnail signs a GET URL using the public endpoint when configured.
func (c *Client) PresignThumbnail(ctx context.Context, key string, expiry time.Duration) (string, error) {
	params := url.Values{}
	params.Set("response-content-type", thumbnailContentType)

	u, err := c.presigner.PresignedGetObject(ctx, c.bucket, key, expiry, params)
	if err != nil {
		return "", fmt.Errorf("failed to presign thumbnail %s: %w", key, err)
	}
	return u.String(), nil
}

// Ping checks that the mirror bucket is reachable.
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.client.BucketExists(ctx, c.bucket); err != nil {
		return fmt.Errorf("failed to ping minio: %w", err)
	}
	return nil
}

var _ repository.ThumbnailMirror = (*Client)(nil)
