package memory

import (
	"context"
	"sync"

	audit "doccheck/pkg/platform/audit"
)

const defaultCapacity = 500

// InMemoryStore keeps the most recent events in a ring. When full, the
// oldest event is overwritten.
type InMemoryStore struct {
	mu       sync.RWMutex
	events   []audit.Event
	head     int // next write position
	count    int
	capacity int
	dropped  int64
}

func NewInMemoryStore(capacity int) *InMemoryStore {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &InMemoryStore{
		events:   make([]audit.Event, capacity),
		capacity: capacity,
	}
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.count == s.capacity {
		s.dropped++
	} else {
		s.count++
	}
	s.events[s.head] = event
	s.head = (s.head + 1) % s.capacity
	return nil
}

func (s *InMemoryStore) ListRecent(_ context.Context, limit int) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > s.count {
		limit = s.count
	}
	out := make([]audit.Event, 0, limit)
	for i := 1; i <= limit; i++ {
		idx := (s.head - i + s.capacity) % s.capacity
		out = append(out, s.events[idx])
	}
	return out, nil
}

// Len returns the number of events held.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.count
}

// Dropped returns how many events were overwritten.
func (s *InMemoryStore) Dropped() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dropped
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = make([]audit.Event, s.capacity)
	s.head = 0
	s.count = 0
}
