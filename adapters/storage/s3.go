package storage

import (
	"context"
	"fmt"
	"io"

	apperrors "github.com/scanify/scankit/errors"
)

// S3Config holds S3 connection parameters.
type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string // optional: MinIO, localstack, etc.
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
}

// S3Client defines the minimal AWS S3 interface used by the target.
// This allows injection of real aws-sdk-go-v2 clients or test doubles.
type S3Client interface {
	PutObject(ctx context.Context, bucket, key string, body io.Reader, meta map[string]string) error
	HeadObject(ctx context.Context, bucket, key string) (bool, error)
}

// S3 stores processed documents in an S3-compatible bucket, e.g. a shared
// archive that several conversion hosts write into.
type S3 struct {
	cfg    S3Config
	client S3Client
	prefix string
}

// NewS3 creates an S3 target.  prefix is prepended to every object key.
func NewS3(cfg S3Config, client S3Client, prefix string) (*S3, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 target: bucket is required")
	}
	if client == nil {
		return nil, fmt.Errorf("s3 target: client is required")
	}
	return &S3{cfg: cfg, client: client, prefix: prefix}, nil
}

func (s *S3) key(name string) string {
	if s.prefix == "" {
		return name
	}
	return s.prefix + "/" + name
}

func (s *S3) Put(ctx context.Context, name string, r io.Reader, meta map[string]string) error {
	if err := ctx.Err(); err != nil {
		return apperrors.Wrap(apperrors.CategoryStorage, "s3.put", err)
	}
	if err := s.client.PutObject(ctx, s.cfg.Bucket, s.key(name), r, meta); err != nil {
		return apperrors.Wrap(apperrors.CategoryStorage, "s3.put", err)
	}
	return nil
}

func (s *S3) Exists(ctx context.Context, name string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, apperrors.Wrap(apperrors.CategoryStorage, "s3.exists", err)
	}
	ok, err := s.client.HeadObject(ctx, s.cfg.Bucket, s.key(name))
	if err != nil {
		return false, apperrors.Wrap(apperrors.CategoryStorage, "s3.exists", err)
	}
	return ok, nil
}
