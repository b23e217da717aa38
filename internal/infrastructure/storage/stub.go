package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	catalogapp "github.com/jossiefancies/storefront/internal/application/catalog"
)

// MemoryObjectStorage keeps objects in process memory. It is used when
// object storage is disabled and in tests.
type MemoryObjectStorage struct {
	// BaseURL prefixes public URLs, e.g. "/media"
	BaseURL string

	mu      sync.RWMutex
	objects map[string][]byte
}

// NewMemoryObjectStorage creates an empty in-memory store
func NewMemoryObjectStorage(baseURL string) *MemoryObjectStorage {
	if baseURL == "" {
		baseURL = "/media"
	}
	return &MemoryObjectStorage{
		BaseURL: strings.TrimRight(baseURL, "/"),
		objects: make(map[string][]byte),
	}
}

var _ catalogapp.ObjectStorage = (*MemoryObjectStorage)(nil)

// Upload stores the object body under key
func (s *MemoryObjectStorage) Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	if key == "" {
		return errors.New("storage key is required")
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = buf.Bytes()
	return nil
}

// DeleteObject removes key; deleting a missing key succeeds
func (s *MemoryObjectStorage) DeleteObject(ctx context.Context, key string) error {
	if key == "" {
		return errors.New("storage key is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

// PublicURL returns BaseURL/key
func (s *MemoryObjectStorage) PublicURL(key string) string {
	if key == "" {
		return ""
	}
	return s.BaseURL + "/" + escapeKey(key)
}

// Exists reports whether key is stored
func (s *MemoryObjectStorage) Exists(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[key]
	return ok
}
