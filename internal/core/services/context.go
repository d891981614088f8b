package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/contextpilot/contextpilot-cli/internal/cache"
	"github.com/contextpilot/contextpilot-cli/internal/core/domain"
	"github.com/contextpilot/contextpilot-cli/internal/core/ports/driven"
	"github.com/contextpilot/contextpilot-cli/internal/core/ports/driving"
	"github.com/contextpilot/contextpilot-cli/internal/logger"
)

// Ensure ContextService implements the interface.
var _ driving.ContextService = (*ContextService)(nil)

// ContextService owns the lifecycle of context units: construction,
// embedding, updates, deletion and supersession.
//
// The store never talks to the embedding provider; this service is the
// caller responsible for regenerating embeddings when content changes.
type ContextService struct {
	store    driven.ContextStore
	embedder driven.EmbeddingService
	cache    *cache.EmbeddingCache
}

// NewContextService creates a context service. The embedder and cache
// are optional (can be nil); without an embedder, units are stored
// without embeddings and are invisible to ranking.
func NewContextService(store driven.ContextStore, embedder driven.EmbeddingService, embCache *cache.EmbeddingCache) *ContextService {
	return &ContextService{
		store:    store,
		embedder: embedder,
		cache:    embCache,
	}
}

// Add validates and stores a new context unit, embedding its content
// when an embedding provider is configured.
func (s *ContextService) Add(ctx context.Context, req driving.CreateContext) (*domain.ContextUnit, error) {
	unit, err := domain.NewContextUnit(uuid.NewString(), req.Type, req.Content, req.Confidence, req.Tags, req.Source)
	if err != nil {
		return nil, err
	}

	embedding, err := s.embedContent(ctx, unit.Content)
	if err != nil {
		return nil, fmt.Errorf("embed content: %w", err)
	}

	if err := s.store.Add(ctx, unit, embedding); err != nil {
		return nil, fmt.Errorf("store context: %w", err)
	}

	logger.Debug("Added context %s (type=%s, embedded=%t)", unit.ID, unit.Type, embedding != nil)
	return unit, nil
}

// Get retrieves a unit by ID.
func (s *ContextService) Get(ctx context.Context, id string) (*domain.ContextUnit, error) {
	return s.store.Get(ctx, id)
}

// List returns units, optionally including superseded ones.
func (s *ContextService) List(ctx context.Context, includeSuperseded bool) ([]domain.ContextUnit, error) {
	return s.store.ListAll(ctx, includeSuperseded)
}

// Update applies a partial update. When content changes, the unit's
// embedding is regenerated and written through UpdateEmbedding.
func (s *ContextService) Update(ctx context.Context, id string, update domain.ContextUpdate) (*domain.ContextUnit, error) {
	if err := update.Validate(); err != nil {
		return nil, err
	}

	unit, err := s.store.Update(ctx, id, update)
	if err != nil {
		return nil, err
	}

	if update.Content != nil {
		embedding, err := s.embedContent(ctx, unit.Content)
		if err != nil {
			return nil, fmt.Errorf("re-embed content: %w", err)
		}
		if embedding != nil {
			if _, err := s.store.UpdateEmbedding(ctx, id, embedding); err != nil {
				return nil, fmt.Errorf("update embedding: %w", err)
			}
		}
		logger.Debug("Re-embedded context %s after content change", id)
	}

	return unit, nil
}

// Delete removes a unit and its embedding.
func (s *ContextService) Delete(ctx context.Context, id string) (bool, error) {
	return s.store.Delete(ctx, id)
}

// Supersede creates a replacement unit from req and marks oldID as
// superseded by it. The replacement is stored first so the
// back-reference never dangles.
func (s *ContextService) Supersede(ctx context.Context, oldID string, req driving.CreateContext) (*domain.ContextUnit, error) {
	if _, err := s.store.Get(ctx, oldID); err != nil {
		return nil, err
	}

	replacement, err := s.Add(ctx, req)
	if err != nil {
		return nil, err
	}

	ok, err := s.store.Supersede(ctx, oldID, replacement.ID)
	if err != nil {
		return nil, fmt.Errorf("supersede %s: %w", oldID, err)
	}
	if !ok {
		// The old unit vanished between the existence check and the
		// transition. The replacement stays; report the race.
		return nil, fmt.Errorf("supersede %s: %w", oldID, domain.ErrNotFound)
	}

	logger.Debug("Context %s superseded by %s", oldID, replacement.ID)
	return replacement, nil
}

// MarkUsed stamps LastUsed on the given units. Unknown IDs are
// skipped; a ranking consumer may hold results for a unit deleted
// since ranking.
func (s *ContextService) MarkUsed(ctx context.Context, ids []string) error {
	now := time.Now().UTC()
	for _, id := range ids {
		_, err := s.store.Update(ctx, id, domain.ContextUpdate{LastUsed: &now})
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("mark used %s: %w", id, err)
		}
	}
	return nil
}

// embedContent encodes text through the cache, or returns nil when no
// embedding provider is configured.
func (s *ContextService) embedContent(ctx context.Context, content string) ([]float32, error) {
	if s.embedder == nil {
		return nil, nil
	}

	if s.cache != nil {
		if cached := s.cache.Get(content); cached != nil {
			return cached, nil
		}
	}

	embedding, err := s.embedder.Embed(ctx, content)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Put(content, embedding)
	}
	return embedding, nil
}
