package driven

import (
	"context"

	"github.com/contextpilot/contextpilot-cli/internal/core/domain"
)

// EmbeddedContext pairs a context unit with its embedding vector.
// This is the primary read shape for the relevance ranker.
type EmbeddedContext struct {
	// Unit is the context unit.
	Unit domain.ContextUnit

	// Embedding is the unit's vector. Always non-nil when returned
	// from ListWithEmbeddings.
	Embedding []float32
}

// ContextStore persists context units and their embeddings.
// Implementations: in-memory (ephemeral runs, tests) and SQLite.
//
// All embeddings within one store share a single dimensionality; that
// constant is owned by the embedding provider configuration, not by
// individual units.
//
// Absence is reported as domain.ErrNotFound on read paths and as a
// false boolean on write paths that target an unknown id. Store
// methods never fail for well-typed input beyond infrastructure
// errors; unit validation happens at construction, upstream.
type ContextStore interface {
	// Add stores a unit, optionally with its embedding (nil is
	// allowed). An existing unit with the same ID is overwritten;
	// callers generate IDs before calling.
	Add(ctx context.Context, unit *domain.ContextUnit, embedding []float32) error

	// Get retrieves a unit by ID. Returns domain.ErrNotFound if absent.
	Get(ctx context.Context, id string) (*domain.ContextUnit, error)

	// ListAll returns units, excluding superseded ones unless
	// includeSuperseded is set. Order is stable across repeated calls
	// on an unmodified store.
	ListAll(ctx context.Context, includeSuperseded bool) ([]domain.ContextUnit, error)

	// Update applies the set fields of the partial update and returns
	// the updated unit, or domain.ErrNotFound if the ID is unknown.
	// Content changes do NOT recompute embeddings; the caller
	// regenerates and calls UpdateEmbedding separately.
	Update(ctx context.Context, id string, update domain.ContextUpdate) (*domain.ContextUnit, error)

	// Delete removes a unit and its embedding together. Returns
	// whether anything was removed.
	Delete(ctx context.Context, id string) (bool, error)

	// Supersede marks oldID as replaced by newID. Returns false if
	// oldID is unknown. The superseding unit must already exist in
	// the store; a missing newID is an error, so a reader can never
	// observe a dangling back-reference.
	Supersede(ctx context.Context, oldID, newID string) (bool, error)

	// GetEmbedding returns the unit's embedding, or domain.ErrNotFound
	// if the unit is unknown or has no embedding.
	GetEmbedding(ctx context.Context, id string) ([]float32, error)

	// UpdateEmbedding replaces the unit's embedding. Returns false if
	// the unit is unknown.
	UpdateEmbedding(ctx context.Context, id string, embedding []float32) (bool, error)

	// ListWithEmbeddings returns units that have both the requested
	// status and a non-nil embedding, in the same stable order as
	// ListAll.
	ListWithEmbeddings(ctx context.Context, includeSuperseded bool) ([]EmbeddedContext, error)

	// Close releases resources.
	Close() error
}
