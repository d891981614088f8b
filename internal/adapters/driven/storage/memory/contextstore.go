package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/contextpilot/contextpilot-cli/internal/core/domain"
	"github.com/contextpilot/contextpilot-cli/internal/core/ports/driven"
)

// Ensure ContextStore implements the interface.
var _ driven.ContextStore = (*ContextStore)(nil)

// ContextStore is an in-memory implementation of driven.ContextStore.
// Listing order is insertion order, which keeps ranking stable across
// repeated calls on an unmodified store.
type ContextStore struct {
	mu         sync.RWMutex
	order      []string
	units      map[string]domain.ContextUnit
	embeddings map[string][]float32
}

// NewContextStore creates a new in-memory context store.
func NewContextStore() *ContextStore {
	return &ContextStore{
		units:      make(map[string]domain.ContextUnit),
		embeddings: make(map[string][]float32),
	}
}

// Add stores a unit with an optional embedding. An existing unit with
// the same ID is overwritten in place, keeping its original position.
func (s *ContextStore) Add(_ context.Context, unit *domain.ContextUnit, embedding []float32) error {
	if err := unit.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.units[unit.ID]; !exists {
		s.order = append(s.order, unit.ID)
	}
	s.units[unit.ID] = *unit

	if embedding != nil {
		s.embeddings[unit.ID] = cloneVector(embedding)
	} else {
		delete(s.embeddings, unit.ID)
	}
	return nil
}

// Get retrieves a unit by ID.
func (s *ContextStore) Get(_ context.Context, id string) (*domain.ContextUnit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	unit, ok := s.units[id]
	if !ok {
		return nil, fmt.Errorf("context %s: %w", id, domain.ErrNotFound)
	}
	return &unit, nil
}

// ListAll returns units in insertion order.
func (s *ContextStore) ListAll(_ context.Context, includeSuperseded bool) ([]domain.ContextUnit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.ContextUnit, 0, len(s.order))
	for _, id := range s.order {
		unit := s.units[id]
		if !includeSuperseded && !unit.IsActive() {
			continue
		}
		result = append(result, unit)
	}
	return result, nil
}

// Update applies the set fields of the partial update.
func (s *ContextStore) Update(_ context.Context, id string, update domain.ContextUpdate) (*domain.ContextUnit, error) {
	if err := update.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	unit, ok := s.units[id]
	if !ok {
		return nil, fmt.Errorf("context %s: %w", id, domain.ErrNotFound)
	}

	update.Apply(&unit)
	if err := unit.Validate(); err != nil {
		return nil, err
	}
	s.units[id] = unit
	return &unit, nil
}

// Delete removes a unit and its embedding.
func (s *ContextStore) Delete(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.units[id]; !ok {
		return false, nil
	}

	delete(s.units, id)
	delete(s.embeddings, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true, nil
}

// Supersede marks oldID as replaced by newID. The superseding unit
// must already exist so a reader never sees a dangling reference.
func (s *ContextStore) Supersede(_ context.Context, oldID, newID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.units[newID]; !ok {
		return false, fmt.Errorf("superseding context %s: %w", newID, domain.ErrNotFound)
	}

	unit, ok := s.units[oldID]
	if !ok {
		return false, nil
	}

	if err := unit.MarkSuperseded(newID); err != nil {
		return false, err
	}
	s.units[oldID] = unit
	return true, nil
}

// GetEmbedding returns the unit's embedding.
func (s *ContextStore) GetEmbedding(_ context.Context, id string) ([]float32, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	embedding, ok := s.embeddings[id]
	if !ok {
		return nil, fmt.Errorf("embedding for context %s: %w", id, domain.ErrNotFound)
	}
	return cloneVector(embedding), nil
}

// UpdateEmbedding replaces the unit's embedding.
func (s *ContextStore) UpdateEmbedding(_ context.Context, id string, embedding []float32) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.units[id]; !ok {
		return false, nil
	}
	s.embeddings[id] = cloneVector(embedding)
	return true, nil
}

// ListWithEmbeddings returns embedded units in insertion order.
func (s *ContextStore) ListWithEmbeddings(_ context.Context, includeSuperseded bool) ([]driven.EmbeddedContext, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]driven.EmbeddedContext, 0, len(s.order))
	for _, id := range s.order {
		unit := s.units[id]
		if !includeSuperseded && !unit.IsActive() {
			continue
		}
		embedding, ok := s.embeddings[id]
		if !ok {
			continue
		}
		result = append(result, driven.EmbeddedContext{
			Unit:      unit,
			Embedding: cloneVector(embedding),
		})
	}
	return result, nil
}

// Close is a no-op for the in-memory store.
func (s *ContextStore) Close() error {
	return nil
}

func cloneVector(v []float32) []float32 {
	out := make([]float32, len(v))
	copy(out, v)
	return out
}
