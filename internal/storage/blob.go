package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

// Buckets used by the admin API.
const (
	BucketTestMedia = "test-media" // part images and listening audio
	BucketAvatars   = "avatars"
)

var ErrBadKey = errors.New("invalid object key")

// BlobStore puts bytes and hands back a public URL for them.
type BlobStore interface {
	Put(ctx context.Context, bucket, key string, r io.Reader, size int64, contentType string) (string, error)
}

// NewKey builds "<kind>/<uuid><ext>" with ext taken from filename.
func NewKey(kind, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return kind + "/" + uuid.NewString() + ext
}

// cleanKey rejects keys that would escape their bucket.
func cleanKey(key string) (string, error) {
	key = strings.TrimPrefix(key, "/")
	if key == "" {
		return "", ErrBadKey
	}
	c := path.Clean(key)
	if c == "." || c == ".." || strings.HasPrefix(c, "../") {
		return "", ErrBadKey
	}
	return c, nil
}
