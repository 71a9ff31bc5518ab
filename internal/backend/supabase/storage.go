package supabase

import (
	"context"
	"io"
	"net/url"
	"strings"
)

type storageAPI struct{ c *Client }

type removeRequest struct {
	Prefixes []string `json:"prefixes"`
}

func (s *storageAPI) Upload(ctx context.Context, bucket, key string, body io.Reader, size int64, contentType string) error {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	// size is not needed, the body is streamed
	resp, err := s.c.request(ctx).
		SetPathParam("bucket", bucket).
		SetPathParam("key", key).
		SetHeader("Content-Type", contentType).
		SetHeader("Cache-Control", "max-age=3600").
		SetHeader("x-upsert", "false").
		SetBody(body).
		Post("/storage/v1/object/{bucket}/{key}")
	return checkResponse(resp, err)
}

func (s *storageAPI) PublicURL(bucket, key string) string {
	return s.c.baseURL + "/storage/v1/object/public/" + url.PathEscape(bucket) + "/" + escapeKey(key)
}

func (s *storageAPI) Remove(ctx context.Context, bucket string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	resp, err := s.c.request(ctx).
		SetPathParam("bucket", bucket).
		SetBody(removeRequest{Prefixes: keys}).
		Delete("/storage/v1/object/{bucket}")
	return checkResponse(resp, err)
}

func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
