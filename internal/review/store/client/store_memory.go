package client

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"casework/internal/review/models"
	id "casework/pkg/domain"
	"casework/pkg/platform/sentinel"
)

// InMemory stores clients in memory for tests and dev.
type InMemory struct {
	mu      sync.RWMutex
	clients map[id.ClientRef]*models.Client
}

func NewInMemory() *InMemory {
	return &InMemory{clients: make(map[id.ClientRef]*models.Client)}
}

// Save creates the client or replaces the stored copy, keeping the original CreatedAt.
func (s *InMemory) Save(_ context.Context, client *models.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *client
	if existing, ok := s.clients[client.Ref]; ok {
		copied.CreatedAt = existing.CreatedAt
	}
	s.clients[client.Ref] = &copied
	return nil
}

func (s *InMemory) FindByRef(_ context.Context, ref id.ClientRef) (*models.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.clients[ref]
	if !ok {
		return nil, fmt.Errorf("client %s: %w", ref, sentinel.ErrNotFound)
	}
	copied := *c
	return &copied, nil
}

// ListAutoReviewEligible returns high-risk clients with at least one auto-review
// flag, ordered by reference.
func (s *InMemory) ListAutoReviewEligible(_ context.Context) ([]*models.Client, error) {
	s.mu.RLock()
	out := make([]*models.Client, 0)
	for _, c := range s.clients {
		if c.IsAutoReviewEligible() {
			copied := *c
			out = append(out, &copied)
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b *models.Client) int {
		return cmp.Compare(a.Ref, b.Ref)
	})
	return out, nil
}
