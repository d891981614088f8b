package driving

import (
	"context"

	"github.com/contextpilot/contextpilot-cli/internal/core/domain"
)

// RankService ranks active context units by relevance to a task.
type RankService interface {
	// Rank returns the top-scoring active units using semantic
	// similarity only.
	Rank(ctx context.Context, task string, opts domain.RankOptions) ([]domain.RankedContextUnit, error)

	// RankHybrid blends semantic similarity with keyword and tag
	// matching.
	RankHybrid(ctx context.Context, task string, opts domain.RankOptions) ([]domain.RankedContextUnit, error)
}
