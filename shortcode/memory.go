package shortcode

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory implementation of Store. It is concurrency-safe
// and intended for single-process deployments or testing.
type MemoryStore struct {
	mu      sync.RWMutex
	next    int
	anchors map[int]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		next:    InitialShortCode,
		anchors: make(map[int]string),
	}
}

func (s *MemoryStore) NextShortCode(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	code := s.next
	s.next++
	return code, nil
}

func (s *MemoryStore) StoreUsingShortCode(_ context.Context, code int, cloudAnchorID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.anchors[code] = cloudAnchorID
	return nil
}

func (s *MemoryStore) GetCloudAnchorID(_ context.Context, code int) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.anchors[code]
	if !ok || id == "" {
		return "", ErrNotFound
	}
	return id, nil
}
