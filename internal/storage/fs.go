package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// FSStore keeps blobs under base/<bucket>/<key> and returns URLs under
// publicBase, which the API serves from the same tree.
type FSStore struct {
	base       string
	publicBase string
}

func NewFSStore(base, publicBase string) (*FSStore, error) {
	if base == "" {
		base = "./data"
	}
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, err
	}
	return &FSStore{base: base, publicBase: strings.TrimSuffix(publicBase, "/")}, nil
}

func (s *FSStore) Put(_ context.Context, bucket, key string, r io.Reader, _ int64, _ string) (string, error) {
	rel, err := s.rel(bucket, key)
	if err != nil {
		return "", err
	}
	dst := filepath.Join(s.base, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", err
	}
	f, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return "", err
	}
	return s.publicBase + "/" + rel, nil
}

// Open returns the blob stored at "<bucket>/<key>".
func (s *FSStore) Open(name string) (io.ReadCloser, error) {
	rel, err := cleanKey(name)
	if err != nil {
		return nil, err
	}
	return os.Open(filepath.Join(s.base, filepath.FromSlash(rel)))
}

func (s *FSStore) rel(bucket, key string) (string, error) {
	k, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	if _, err := cleanKey(bucket); err != nil || strings.Contains(bucket, "/") {
		return "", ErrBadKey
	}
	return bucket + "/" + k, nil
}
