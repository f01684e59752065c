package memory

import (
	"context"
	"sync"

	audit "casework/pkg/platform/audit"
)

type entityKey struct {
	entityType audit.EntityType
	entityID   string
}

type InMemoryStore struct {
	mu     sync.RWMutex
	events map[entityKey][]audit.Event
	all    []audit.Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{events: make(map[entityKey][]audit.Event)}
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := entityKey{entityType: event.EntityType, entityID: event.EntityID}
	s.events[key] = append(s.events[key], event)
	s.all = append(s.all, event)
	return nil
}

func (s *InMemoryStore) ListByEntity(_ context.Context, entityType audit.EntityType, entityID string) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]audit.Event{}, s.events[entityKey{entityType: entityType, entityID: entityID}]...), nil
}

// ListAll returns every event in append order.
func (s *InMemoryStore) ListAll(_ context.Context) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]audit.Event{}, s.all...), nil
}

// ListByAction returns events with the given action in append order.
func (s *InMemoryStore) ListByAction(_ context.Context, action audit.Action) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []audit.Event
	for _, e := range s.all {
		if e.Action == action {
			out = append(out, e)
		}
	}
	return out, nil
}
