package media

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/JDamianDelgado/ValleDePaz/internal/config"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

func NewS3Client(cfg config.S3Config) (*minio.Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("s3 endpoint is required")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create s3 client: %w", err)
	}

	return client, nil
}

// S3Uploader stores images in an S3-compatible bucket that is served
// publicly under publicBaseURL.
type S3Uploader struct {
	client        *minio.Client
	bucket        string
	publicBaseURL string

	// ensured latches only after the bucket is known to exist
	ensureMu sync.Mutex
	ensured  bool
}

func NewS3Uploader(client *minio.Client, bucket, publicBaseURL string) *S3Uploader {
	return &S3Uploader{
		client:        client,
		bucket:        strings.TrimSpace(bucket),
		publicBaseURL: strings.TrimRight(strings.TrimSpace(publicBaseURL), "/"),
	}
}

func (s *S3Uploader) ensureBucket(ctx context.Context) error {
	if s.bucket == "" {
		return fmt.Errorf("s3 bucket is empty")
	}

	s.ensureMu.Lock()
	defer s.ensureMu.Unlock()
	if s.ensured {
		return nil
	}

	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("ensure s3 bucket %q: %w", s.bucket, err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create s3 bucket %q: %w", s.bucket, err)
		}
	}

	s.ensured = true
	return nil
}

func (s *S3Uploader) Upload(ctx context.Context, folder string, file File) (string, error) {
	if s.client == nil {
		return "", fmt.Errorf("s3 client is nil")
	}
	if len(file.Data) == 0 {
		return "", ErrEmptyFile
	}
	if err := s.ensureBucket(ctx); err != nil {
		return "", err
	}

	key := objectKey(folder, file.Extension)
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(file.Data), int64(len(file.Data)), minio.PutObjectOptions{
		ContentType: file.ContentType,
	})
	if err != nil {
		return "", fmt.Errorf("put object to s3: %w", err)
	}

	return s.publicURL(key), nil
}

func (s *S3Uploader) publicURL(key string) string {
	if s.publicBaseURL == "" {
		return "/" + s.bucket + "/" + key
	}
	return s.publicBaseURL + "/" + key
}

func objectKey(folder, ext string) string {
	if ext == "" {
		ext = ".bin"
	}
	folder = strings.Trim(folder, "/")
	if folder == "" {
		return uuid.NewString() + ext
	}
	return folder + "/" + uuid.NewString() + ext
}
