package snapshot

import (
	"context"
	"sync"
	"time"

	"profiled/internal/profile"
	"profiled/pkg/platform/sentinel"
)

// InMemoryStore keeps snapshots in a process-local map. It ignores TTLs and
// intentionally favors clarity over performance; use RedisStore when
// snapshots must be shared or expire.
type InMemoryStore struct {
	mu        sync.RWMutex
	snapshots map[string]profile.RawProfile
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{snapshots: make(map[string]profile.RawProfile)}
}

func (s *InMemoryStore) Find(_ context.Context, id string) (*profile.RawProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if raw, ok := s.snapshots[id]; ok {
		return &raw, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryStore) Save(_ context.Context, id string, raw profile.RawProfile, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[id] = raw
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snapshots, id)
	return nil
}
