package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioStore writes to S3-compatible buckets. Buckets are created on first
// use with an anonymous read policy so returned URLs are public.
type MinioStore struct {
	cli        *minio.Client
	publicBase string

	mu    sync.Mutex
	ready map[string]bool
}

func newMinioClient(address, accessKey, secretKey string) (*minio.Client, error) {
	endpoint := address
	secure := false

	if strings.HasPrefix(address, "http://") || strings.HasPrefix(address, "https://") {
		u, err := url.Parse(address)
		if err != nil {
			return nil, err
		}
		if u.Path != "" && u.Path != "/" {
			return nil, errors.New("endpoint url cannot have fully qualified paths")
		}
		endpoint = u.Host
		secure = u.Scheme == "https"
	}

	return minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: secure,
		Region: "us-east-1",
	})
}

func NewMinioStore(endpoint, publicBase, accessKey, secretKey string) (*MinioStore, error) {
	cli, err := newMinioClient(endpoint, accessKey, secretKey)
	if err != nil {
		return nil, err
	}
	if publicBase == "" {
		publicBase = endpoint
	}
	return &MinioStore{cli: cli, publicBase: strings.TrimSuffix(publicBase, "/"), ready: map[string]bool{}}, nil
}

func (s *MinioStore) Put(ctx context.Context, bucket, key string, r io.Reader, size int64, contentType string) (string, error) {
	k, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	if err := s.ensureBucket(ctx, bucket); err != nil {
		return "", fmt.Errorf("bucket %s: %w", bucket, err)
	}
	if size <= 0 {
		size = -1
	}
	if _, err := s.cli.PutObject(ctx, bucket, k, r, size, minio.PutObjectOptions{ContentType: contentType}); err != nil {
		return "", err
	}
	return s.publicBase + "/" + bucket + "/" + k, nil
}

func (s *MinioStore) ensureBucket(ctx context.Context, bucket string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ready[bucket] {
		return nil
	}
	exists, err := s.cli.BucketExists(ctx, bucket)
	if err != nil {
		return err
	}
	if !exists {
		if err := s.cli.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return err
		}
	}
	if err := s.cli.SetBucketPolicy(ctx, bucket, publicReadPolicy(bucket)); err != nil {
		return err
	}
	s.ready[bucket] = true
	return nil
}

type bucketPolicy struct {
	Version   string            `json:"Version"`
	Statement []policyStatement `json:"Statement"`
}

type policyStatement struct {
	Effect    string `json:"Effect"`
	Principal any    `json:"Principal"`
	Action    any    `json:"Action"`
	Resource  any    `json:"Resource"`
}

func publicReadPolicy(bucket string) string {
	b, _ := json.Marshal(bucketPolicy{
		Version: "2012-10-17",
		Statement: []policyStatement{{
			Effect:    "Allow",
			Principal: map[string][]string{"AWS": {"*"}},
			Action:    []string{"s3:GetObject"},
			Resource:  []string{fmt.Sprintf("arn:aws:s3:::%s/*", bucket)},
		}},
	})
	return string(b)
}
