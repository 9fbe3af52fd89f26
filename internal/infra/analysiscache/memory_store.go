package analysiscache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/eclatderm/visage/internal/domain/analysis"
)

type cachedResult struct {
	payload   analysis.Response
	expiresAt time.Time
}

// MemoryStore is an in-memory analysis cache for tests/dev.
type MemoryStore struct {
	mu      sync.RWMutex
	results map[uuid.UUID]cachedResult
}

// NewMemoryStore constructs a store backed by process memory.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{results: make(map[uuid.UUID]cachedResult)}
}

// Save caches the analysis with optional TTL.
func (s *MemoryStore) Save(_ context.Context, res analysis.Response, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp := time.Time{}
	if ttl > 0 {
		exp = time.Now().Add(ttl)
	}
	s.results[res.ID] = cachedResult{payload: res, expiresAt: exp}
	return nil
}

// Get implements analysis.ResultStore.
func (s *MemoryStore) Get(_ context.Context, id uuid.UUID) (analysis.Response, bool, error) {
	s.mu.RLock()
	record, ok := s.results[id]
	s.mu.RUnlock()
	if !ok {
		return analysis.Response{}, false, nil
	}
	if hasExpired(record.expiresAt) {
		s.mu.Lock()
		delete(s.results, id)
		s.mu.Unlock()
		return analysis.Response{}, false, nil
	}
	return record.payload, true, nil
}

func hasExpired(expiresAt time.Time) bool {
	return !expiresAt.IsZero() && time.Now().After(expiresAt)
}

var _ analysis.ResultStore = (*MemoryStore)(nil)
