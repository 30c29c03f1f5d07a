package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/skillgraph/pkg/domain"
)

// Store implements ports.GraphStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.GraphDocument
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.GraphDocument),
	}
}

// Save keeps a deep copy of the document.
func (s *Store) Save(ctx context.Context, doc *domain.GraphDocument) error {
	if doc == nil || doc.ID == "" {
		return fmt.Errorf("memory store: document id cannot be empty")
	}
	copied := doc.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[doc.ID] = copied
	return nil
}

// Load returns a copy so callers cannot mutate the stored document.
func (s *Store) Load(ctx context.Context, id string) (*domain.GraphDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.data[id]
	if !ok {
		return nil, fmt.Errorf("graph %q: %w", id, domain.ErrGraphNotFound)
	}
	return doc.Clone(), nil
}

// Delete removes the document.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	return nil
}

// List returns the stored IDs.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
