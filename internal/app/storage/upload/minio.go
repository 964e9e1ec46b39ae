package upload

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/ltrain81/TwelveLabs-on-bedrock-demo/internal/app/errors"
	"github.com/ltrain81/TwelveLabs-on-bedrock-demo/internal/app/model"
)

// MaxVideoBytes is the upload size ceiling enforced through presign policy.
const MaxVideoBytes = 2 << 30 // 2GB

// Ticket is a presigned upload slot: the client PUTs the video body to URL
// and the resulting object is addressable by Ref.
type Ticket struct {
	URL       string               `json:"uploadUrl"`
	Method    string               `json:"method"`
	Ref       model.VideoReference `json:"ref"`
	ExpiresAt time.Time            `json:"expiresAt"`
}

// Service is the upload collaborator: it mints presigned URLs and answers
// whether a reference has become durably visible. Object-store propagation is
// eventually consistent, so a fresh upload may be invisible for a while.
type Service interface {
	PresignUpload(ctx context.Context, filename, contentType string) (*Ticket, error)
	PresignPlayback(ctx context.Context, ref model.VideoReference) (string, error)
	Visible(ctx context.Context, ref model.VideoReference) (bool, error)
}

// MinioService implements Service against MinIO or any S3-compatible store.
type MinioService struct {
	client *minio.Client
	bucket string
	expiry time.Duration
}

// NewMinioService builds the service from MINIO_* environment configuration
// and ensures the video bucket exists.
func NewMinioService() (*MinioService, error) {
	endpoint := envOr("MINIO_ENDPOINT", "localhost:9000")
	accessKey := envOr("MINIO_ACCESS_KEY", "minioadmin")
	secretKey := envOr("MINIO_SECRET_KEY", "minioadmin")
	bucket := envOr("VIDEO_BUCKET", "video-understanding")
	useSSL := os.Getenv("MINIO_USE_SSL") == "true"

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object store client: %w", err)
	}

	ctx := context.Background()
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", bucket, err)
		}
	}

	return &MinioService{client: client, bucket: bucket, expiry: time.Hour}, nil
}

// PresignUpload mints a presigned PUT for videos/{filename}.
func (s *MinioService) PresignUpload(ctx context.Context, filename, contentType string) (*Ticket, error) {
	if strings.TrimSpace(filename) == "" {
		return nil, errors.RequiredField("filename")
	}
	if contentType == "" {
		contentType = "video/mp4"
	}

	key := "videos/" + filename
	u, err := s.client.PresignedPutObject(ctx, s.bucket, key, s.expiry)
	if err != nil {
		return nil, errors.Transient(err, "failed to presign upload for %s", key)
	}
	return &Ticket{
		URL:       u.String(),
		Method:    "PUT",
		Ref:       model.VideoReference{Bucket: s.bucket, Key: key},
		ExpiresAt: time.Now().Add(s.expiry),
	}, nil
}

// PresignPlayback mints a presigned GET for an existing video.
func (s *MinioService) PresignPlayback(ctx context.Context, ref model.VideoReference) (string, error) {
	if ref.IsZero() {
		return "", errors.RequiredField("video reference")
	}
	if _, err := s.client.StatObject(ctx, ref.Bucket, ref.Key, minio.StatObjectOptions{}); err != nil {
		return "", errors.NotFound("video", ref.URI())
	}
	u, err := s.client.PresignedGetObject(ctx, ref.Bucket, ref.Key, s.expiry, url.Values{})
	if err != nil {
		return "", errors.Transient(err, "failed to presign playback for %s", ref.URI())
	}
	return u.String(), nil
}

// Visible reports whether the object exists yet. A missing object is not an
// error here: the caller owns the retry loop through the propagation window.
func (s *MinioService) Visible(ctx context.Context, ref model.VideoReference) (bool, error) {
	_, err := s.client.StatObject(ctx, ref.Bucket, ref.Key, minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	resp := minio.ToErrorResponse(err)
	if resp.Code == "NoSuchKey" || resp.Code == "NoSuchBucket" {
		return false, nil
	}
	return false, errors.Transient(err, "failed to stat %s", ref.URI())
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
