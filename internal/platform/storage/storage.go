// Package storage stores uploaded media and rendered certificates either on
// local disk or in a Google Cloud Storage bucket.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/lshigami/vaikuntha/config"
)

var ErrInvalidKey = errors.New("invalid object key")

type Store interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string) error
	Delete(ctx context.Context, key string) error
	PublicURL(key string) string
	Close() error
}

// New builds the store selected by MEDIA_STORAGE.
func New(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.Media.Driver {
	case "gcs":
		return NewGCSStore(ctx, cfg.Media.GCSBucket, cfg.Media.PublicBaseURL)
	case "local", "":
		return NewLocalStore(cfg.Media.LocalDir, cfg.Media.PublicBaseURL)
	default:
		return nil, fmt.Errorf("unsupported media storage driver %q", cfg.Media.Driver)
	}
}

// CleanKey normalises a key and rejects keys escaping the store root.
func CleanKey(key string) (string, error) {
	k := strings.TrimSpace(key)
	k = strings.ReplaceAll(k, "\\", "/")
	k = strings.TrimLeft(path.Clean("/"+k), "/")
	if k == "" || k == "." || strings.HasPrefix(k, "..") || k != strings.TrimLeft(strings.TrimSpace(key), "/") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return k, nil
}

// ContentTypeForKey guesses a content type from the key extension.
func ContentTypeForKey(key string) string {
	s := strings.ToLower(strings.TrimSpace(key))
	switch {
	case strings.HasSuffix(s, ".png"):
		return "image/png"
	case strings.HasSuffix(s, ".jpg"), strings.HasSuffix(s, ".jpeg"):
		return "image/jpeg"
	case strings.HasSuffix(s, ".gif"):
		return "image/gif"
	case strings.HasSuffix(s, ".webp"):
		return "image/webp"
	case strings.HasSuffix(s, ".mp4"), strings.HasSuffix(s, ".m4v"):
		return "video/mp4"
	case strings.HasSuffix(s, ".webm"):
		return "video/webm"
	case strings.HasSuffix(s, ".mov"):
		return "video/quicktime"
	case strings.HasSuffix(s, ".pdf"):
		return "application/pdf"
	case strings.HasSuffix(s, ".zip"):
		return "application/zip"
	case strings.HasSuffix(s, ".txt"), strings.HasSuffix(s, ".md"):
		return "text/plain; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}
