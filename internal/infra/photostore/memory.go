package photostore

import (
	"context"
	"fmt"
	"sync"

	domain "github.com/eclatderm/visage/internal/domain/analysis"
)

// MemoryStore keeps photo blobs in process memory. Useful for tests and
// local development.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string]domain.StoredPhoto
}

// NewMemoryStore constructs the store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string]domain.StoredPhoto)}
}

// Put stores the blob under the key.
func (s *MemoryStore) Put(_ context.Context, key string, data []byte, mimeType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := make([]byte, len(data))
	copy(copied, data)
	s.blobs[key] = domain.StoredPhoto{Data: copied, MimeType: mimeType}
	return nil
}

// Get returns the stored blob.
func (s *MemoryStore) Get(_ context.Context, key string) (domain.StoredPhoto, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	blob, ok := s.blobs[key]
	if !ok {
		return domain.StoredPhoto{}, fmt.Errorf("photo %q not found", key)
	}
	return blob, nil
}

// Delete removes the listed blobs. Missing keys are ignored.
func (s *MemoryStore) Delete(_ context.Context, keys []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.blobs, key)
	}
	return nil
}

// Clear drops every stored blob.
func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs = make(map[string]domain.StoredPhoto)
	return nil
}

var _ domain.PhotoStore = (*MemoryStore)(nil)
