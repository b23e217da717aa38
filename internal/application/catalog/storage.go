package catalog

import (
	"context"
	"io"
	"strings"
)

// ObjectStorage stores product and category images
type ObjectStorage interface {
	// Upload writes an object under key
	Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	// DeleteObject removes an object. Missing objects are not an error.
	DeleteObject(ctx context.Context, key string) error
	// PublicURL returns the URL the storefront serves the object from
	PublicURL(key string) string
}

// resolveURL turns a stored image reference into a URL. Absolute URLs,
// e.g. images imported from an external CDN, are returned unchanged.
func resolveURL(storage ObjectStorage, key string) string {
	if key == "" {
		return ""
	}
	if strings.HasPrefix(key, "http://") || strings.HasPrefix(key, "https://") {
		return key
	}
	if storage == nil {
		return key
	}
	return storage.PublicURL(key)
}
