package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"

	"github.com/hszk-dev/gocatalog/internal/domain/repository"
)

// mockMinioClient implements minioClient interface for testing.
type mockMinioClient struct {
	bucketExistsFunc       func(ctx context.Context, bucketName string) (bool, error)
	makeBucketFunc         func(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	presignedGetObjectFunc func(ctx context.Context, bucketName, objectName string, expiry time.Duration, reqParams url.Values) (*url.URL, error)
	putObjectFunc          func(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	removeObjectFunc       func(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
	statObjectFunc         func(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
}

func (m *mockMinioClient) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	if m.bucketExistsFunc != nil {
		return m.bucketExistsFunc(ctx, bucketName)
	}
	return true, nil
}

func (m *mockMinioClient) MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error {
	if m.makeBucketFunc != nil {
		return m.makeBucketFunc(ctx, bucketName, opts)
	}
	return nil
}

func (m *mockMinioClient) PresignedGetObject(ctx context.Context, bucketName, objectName string, expiry time.Duration, reqParams url.Values) (*url.URL, error) {
	if m.presignedGetObjectFunc != nil {
		return m.presignedGetObjectFunc(ctx, bucketName, objectName, expiry, reqParams)
	}
	return nil, nil
}

func (m *mockMinioClient) PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	if m.putObjectFunc != nil {
		return m.putObjectFunc(ctx, bucketName, objectName, reader, objectSize, opts)
	}
	return minio.UploadInfo{}, nil
}

func (m *mockMinioClient) RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error {
	if m.removeObjectFunc != nil {
		return m.removeObjectFunc(ctx, bucketName, objectName, opts)
	}
	return nil
}

func (m *mockMinioClient) StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error) {
	if m.statObjectFunc != nil {
		return m.statObjectFunc(ctx, bucketName, objectName, opts)
	}
	return minio.ObjectInfo{}, nil
}

func TestNewClientWithMinioClient(t *testing.T) {
	tests := []struct {
		name        string
		create      bool
		mockClient  *mockMinioClient
		wantCreated bool
		wantErr     error
	}{
		{
			name:       "bucket exists",
			mockClient: &mockMinioClient{},
		},
		{
			name: "bucket does not exist",
			mockClient: &mockMinioClient{
				bucketExistsFunc: func(ctx context.Context, bucketName string) (bool, error) {
					return false, nil
				},
			},
			wantErr: repository.ErrBucketNotFound,
		},
		{
			name:   "bucket created when missing",
			create: true,
			mockClient: &mockMinioClient{
				bucketExistsFunc: func(ctx context.Context, bucketName string) (bool, error) {
					return false, nil
				},
			},
			wantCreated: true,
		},
		{
			name: "bucket check error",
			mockClient: &mockMinioClient{
				bucketExistsFunc: func(ctx context.Context, bucketName string) (bool, error) {
					return false, errors.New("connection refused")
				},
			},
			wantErr: errors.New("failed to check bucket existence"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			created := false
			if tt.mockClient.makeBucketFunc == nil {
				tt.mockClient.makeBucketFunc = func(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error {
					created = true
					return nil
				}
			}

			client, err := newClientWithMinioClient(context.Background(), tt.mockClient, tt.mockClient, "thumbnails", tt.create)

			if tt.wantErr != nil {
				if err == nil {
					t.Fatal("newClientWithMinioClient() expected error, got nil")
				}
				if !errors.Is(err, tt.wantErr) && !strings.Contains(err.Error(), tt.wantErr.Error()) {
					t.Errorf("newClientWithMinioClient() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}

			if err != nil {
				t.Fatalf("newClientWithMinioClient() unexpected error = %v", err)
			}
			if client.bucket != "thumbnails" {
				t.Errorf("client.bucket = %v, want thumbnails", client.bucket)
			}
			if created != tt.wantCreated {
				t.Errorf("bucket created = %v, want %v", created, tt.wantCreated)
			}
		})
	}
}

func TestClient_PresignThumbnail(t *testing.T) {
	internal := &mockMinioClient{
		presignedGetObjectFunc: func(ctx context.Context, bucketName, objectName string, expiry time.Duration, reqParams url.Values) (*url.URL, error) {
			t.Error("presigned URL must come from the public client")
			return nil, errors.New("wrong client")
		},
	}
	public := &mockMinioClient{
		presignedGetObjectFunc: func(ctx context.Context, bucketName, objectName string, expiry time.Duration, reqParams url.Values) (*url.URL, error) {
			if objectName != "thumbnails/thumbnail-4.jpg" {
				t.Errorf("objectName = %v", objectName)
			}
			if expiry != 15*time.Minute {
				t.Errorf("expiry = %v, want 15m", expiry)
			}
			if got := reqParams.Get("response-content-type"); got != "image/jpeg" {
				t.Errorf("response-content-type = %q, want image/jpeg", got)
			}
			return url.Parse("https://cdn.example.com/thumbnails/thumbnails/thumbnail-4.jpg?X-Amz-Signature=abc")
		},
	}

	client := &Client{client: internal, presigner: public, bucket: "thumbnails"}

	got, err := client.PresignThumbnail(context.Background(), "thumbnails/thumbnail-4.jpg", 15*time.Minute)
	if err != nil {
		t.Fatalf("PresignThumbnail() unexpected error = %v", err)
	}
	if !strings.HasPrefix(got, "https://cdn.example.com/") {
		t.Errorf("PresignThumbnail() = %v", got)
	}
}

func TestClient_PresignThumbnail_Error(t *testing.T) {
	mock := &mockMinioClient{
		presignedGetObjectFunc: func(ctx context.Context, bucketName, objectName string, expiry time.Duration, reqParams url.Values) (*url.URL, error) {
			return nil, errors.New("signature failure")
		},
	}
	client := &Client{client: mock, presigner: mock, bucket: "thumbnails"}

	_, err := client.PresignThumbnail(context.Background(), "k", time.Minute)
	if err == nil || !strings.Contains(err.Error(), "failed to presign thumbnail") {
		t.Errorf("error = %v", err)
	}
}

func TestClient_PutThumbnail(t *testing.T) {
	var (
		gotKey  string
		gotSize int64
		gotOpts minio.PutObjectOptions
		gotBody []byte
	)
	mock := &mockMinioClient{
		putObjectFunc: func(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
			gotKey, gotSize, gotOpts = objectName, objectSize, opts
			gotBody, _ = io.ReadAll(reader)
			return minio.UploadInfo{Key: objectName}, nil
		},
	}
	client := &Client{client: mock, presigner: mock, bucket: "thumbnails"}

	err := client.PutThumbnail(context.Background(), "thumbnails/thumbnail-1.jpg", bytes.NewReader([]byte("jpeg")), 4)
	if err != nil {
		t.Fatalf("PutThumbnail() unexpected error = %v", err)
	}
	if gotKey != "thumbnails/thumbnail-1.jpg" || gotSize != 4 || string(gotBody) != "jpeg" {
		t.Errorf("PutThumbnail() key=%v size=%v body=%q", gotKey, gotSize, gotBody)
	}
	if gotOpts.ContentType != "image/jpeg" {
		t.Errorf("ContentType = %q, want image/jpeg", gotOpts.ContentType)
	}
	if gotOpts.CacheControl == "" {
		t.Error("CacheControl not set")
	}

	mock.putObjectFunc = func(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
		return minio.UploadInfo{}, errors.New("disk full")
	}
	if err := client.PutThumbnail(context.Background(), "k", bytes.NewReader(nil), 0); err == nil {
		t.Error("PutThumbnail() expected error, got nil")
	}
}

func TestClient_RemoveThumbnail(t *testing.T) {
	var gotKey string
	mock := &mockMinioClient{
		removeObjectFunc: func(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error {
			gotKey = objectName
			return nil
		},
	}
	client := &Client{client: mock, presigner: mock, bucket: "thumbnails"}

	if err := client.RemoveThumbnail(context.Background(), "thumbnails/thumbnail-1.jpg"); err != nil {
		t.Fatalf("RemoveThumbnail() unexpected error = %v", err)
	}
	if gotKey != "thumbnails/thumbnail-1.jpg" {
		t.Errorf("removed key = %v", gotKey)
	}

	mock.removeObjectFunc = func(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error {
		return errors.New("access denied")
	}
	err := client.RemoveThumbnail(context.Background(), "thumbnails/thumbnail-1.jpg")
	if err == nil || !strings.Contains(err.Error(), "failed to remove thumbnail") {
		t.Errorf("RemoveThumbnail() error = %v", err)
	}
}

func TestClient_StatThumbnail(t *testing.T) {
	modified := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		info     minio.ObjectInfo
		statErr  error
		want     repository.MirrorObject
		wantErr  error
		anyError bool
	}{
		{
			name: "object exists",
			info: minio.ObjectInfo{Size: 2048, LastModified: modified},
			want: repository.MirrorObject{Key: "k", Size: 2048, LastModified: modified},
		},
		{
			name:    "object missing",
			statErr: minio.ErrorResponse{Code: "NoSuchKey"},
			wantErr: repository.ErrObjectNotFound,
		},
		{
			name:     "stat failure",
			statErr:  errors.New("connection reset"),
			anyError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockMinioClient{
				statObjectFunc: func(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error) {
					return tt.info, tt.statErr
				},
			}
			client := &Client{client: mock, presigner: mock, bucket: "thumbnails"}

			got, err := client.StatThumbnail(context.Background(), "k")
			switch {
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("StatThumbnail() error = %v, want %v", err, tt.wantErr)
				}
				return
			case tt.anyError:
				if err == nil || errors.Is(err, repository.ErrObjectNotFound) {
					t.Fatalf("StatThumbnail() error = %v, want transport error", err)
				}
				return
			case err != nil:
				t.Fatalf("StatThumbnail() unexpected error = %v", err)
			}
			if got != tt.want {
				t.Errorf("StatThumbnail() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestClient_Ping(t *testing.T) {
	mock := &mockMinioClient{
		bucketExistsFunc: func(ctx context.Context, bucketName string) (bool, error) {
			return false, errors.New("connection refused")
		},
	}
	client := &Client{client: mock, presigner: mock, bucket: "thumbnails"}

	if err := client.Ping(context.Background()); err == nil {
		t.Error("Ping() expected error, got nil")
	}
}
