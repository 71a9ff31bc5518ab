// Package localfs keeps objects on the local disk for development setups.
// The application serves the files itself under its public prefix.
package localfs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Store is an ObjectStore rooted at a directory
type Store struct {
	basePath  string
	publicURL string
}

// New creates the root directory if needed. publicURL is the absolute or
// root-relative prefix the files are served under.
func New(basePath, publicURL string) (*Store, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &Store{
		basePath:  basePath,
		publicURL: strings.TrimRight(publicURL, "/"),
	}, nil
}

// Root returns the directory objects are stored in
func (s *Store) Root() string {
	return s.basePath
}

func (s *Store) Upload(ctx context.Context, bucket, key string, body io.Reader, size int64, contentType string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	path, err := s.path(bucket, key)
	if err != nil {
		return err
	}

	// concurrent uploads are safe: MkdirAll tolerates races and O_EXCL
	// serialises creation of the same key
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create bucket directory: %w", err)
	}
	// O_EXCL mirrors the hosted store refusing to overwrite an existing key
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("the resource already exists: %s/%s", bucket, key)
		}
		return fmt.Errorf("failed to create object file: %w", err)
	}

	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("failed to write object file: %w", err)
	}
	return f.Close()
}

func (s *Store) PublicURL(bucket, key string) string {
	return s.publicURL + "/" + url.PathEscape(bucket) + "/" + url.PathEscape(key)
}

func (s *Store) Remove(ctx context.Context, bucket string, keys ...string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	for _, key := range keys {
		path, err := s.path(bucket, key)
		if err != nil {
			return err
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to delete object file: %w", err)
		}
	}
	return nil
}

// path resolves bucket/key inside the root and rejects traversal
func (s *Store) path(bucket, key string) (string, error) {
	for _, part := range []string{bucket, key} {
		if part == "" || part == "." || part == ".." || strings.ContainsAny(part, `/\`) {
			return "", fmt.Errorf("invalid object path %q", bucket+"/"+key)
		}
	}
	return filepath.Join(s.basePath, bucket, key), nil
}
