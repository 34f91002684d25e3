package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/ledgerbook/backend/internal/domain/document"
	"github.com/ledgerbook/backend/internal/domain/shared"
)

// MemoryObjectStorage keeps blobs in process memory.
// For development and tests; contents are lost on restart.
type MemoryObjectStorage struct {
	// BaseURL prefixes generated download URLs
	BaseURL string

	mu      sync.RWMutex
	objects map[string]memoryObject
	clock   clockwork.Clock
}

type memoryObject struct {
	data        []byte
	contentType string
	modified    time.Time
}

var _ document.ObjectStorage = (*MemoryObjectStorage)(nil)

// NewMemoryObjectStorage creates an empty in-memory storage
func NewMemoryObjectStorage() *MemoryObjectStorage {
	return &MemoryObjectStorage{
		BaseURL: "http://localhost/storage",
		objects: make(map[string]memoryObject),
		clock:   clockwork.NewRealClock(),
	}
}

// Put stores a copy of body under key
func (s *MemoryObjectStorage) Put(_ context.Context, key string, body io.Reader, size int64, contentType string) error {
	if key == "" {
		return errors.New("storage key is required")
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("failed to read upload body: %w", err)
	}
	if size >= 0 && int64(len(data)) != size {
		return fmt.Errorf("size mismatch: declared %d, read %d", size, len(data))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = memoryObject{data: data, contentType: contentType, modified: s.clock.Now()}
	return nil
}

// Get returns a reader over the stored bytes
func (s *MemoryObjectStorage) Get(_ context.Context, key string) (io.ReadCloser, *document.ObjectInfo, error) {
	if key == "" {
		return nil, nil, errors.New("storage key is required")
	}
	s.mu.RLock()
	obj, ok := s.objects[key]
	s.mu.RUnlock()
	if !ok {
		return nil, nil, shared.ErrNotFound
	}

	info := &document.ObjectInfo{
		Key:          key,
		Size:         int64(len(obj.data)),
		ContentType:  obj.contentType,
		LastModified: obj.modified,
	}
	return io.NopCloser(bytes.NewReader(obj.data)), info, nil
}

// Delete removes an object; missing keys are ignored
func (s *MemoryObjectStorage) Delete(_ context.Context, key string) error {
	if key == "" {
		return errors.New("storage key is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

// Exists reports whether key is stored
func (s *MemoryObjectStorage) Exists(_ context.Context, key string) (bool, error) {
	if key == "" {
		return false, errors.New("storage key is required")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[key]
	return ok, nil
}

// PresignGet builds a pseudo-signed URL carrying the expiry time
func (s *MemoryObjectStorage) PresignGet(_ context.Context, key string, expires time.Duration) (string, error) {
	if key == "" {
		return "", errors.New("storage key is required")
	}
	if expires <= 0 {
		expires = DefaultPresignExpiration
	}
	expiresAt := s.clock.Now().Add(expires).UTC()
	return s.BaseURL + "/" + key + "?expires=" + url.QueryEscape(expiresAt.Format(time.RFC3339)), nil
}

// Len returns the number of stored objects
func (s *MemoryObjectStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
