package driving

import (
	"context"

	"github.com/contextpilot/contextpilot-cli/internal/core/domain"
)

// CreateContext carries the caller-supplied fields for a new context
// unit. ID and timestamps are assigned by the service.
type CreateContext struct {
	// Type categorises the unit.
	Type domain.ContextType

	// Content is the free-text body.
	Content string

	// Confidence is the caller's trust in the unit, in [0, 1].
	Confidence float64

	// Tags are short labels for lexical matching.
	Tags []string

	// Source records where the unit came from. Defaults to "manual".
	Source string
}

// ContextService manages the lifecycle of context units.
type ContextService interface {
	// Add validates and stores a new unit, generating its ID and
	// embedding its content when an embedding provider is configured.
	Add(ctx context.Context, req CreateContext) (*domain.ContextUnit, error)

	// Get retrieves a unit by ID.
	Get(ctx context.Context, id string) (*domain.ContextUnit, error)

	// List returns units, optionally including superseded ones.
	List(ctx context.Context, includeSuperseded bool) ([]domain.ContextUnit, error)

	// Update applies a partial update. When content changes, the
	// unit's embedding is regenerated.
	Update(ctx context.Context, id string, update domain.ContextUpdate) (*domain.ContextUnit, error)

	// Delete removes a unit and its embedding. Returns whether
	// anything was removed.
	Delete(ctx context.Context, id string) (bool, error)

	// Supersede creates a replacement unit from req and marks oldID
	// as superseded by it.
	Supersede(ctx context.Context, oldID string, req CreateContext) (*domain.ContextUnit, error)

	// MarkUsed stamps LastUsed on the given units. Called by ranking
	// consumers after selecting results.
	MarkUsed(ctx context.Context, ids []string) error
}
