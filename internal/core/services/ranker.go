package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/contextpilot/contextpilot-cli/internal/cache"
	"github.com/contextpilot/contextpilot-cli/internal/core/domain"
	"github.com/contextpilot/contextpilot-cli/internal/core/ports/driven"
	"github.com/contextpilot/contextpilot-cli/internal/core/ports/driving"
	"github.com/contextpilot/contextpilot-cli/internal/logger"
)

// Ensure RelevanceRanker implements the interface.
var _ driving.RankService = (*RelevanceRanker)(nil)

// RelevanceRanker scores and selects active context units for a task.
//
// Ranking is a pure function of (task, store state, embedding
// provider, cache state): it never mutates units. Stamping LastUsed on
// selected units is the consumer's job after receiving results.
type RelevanceRanker struct {
	store    driven.ContextStore
	embedder driven.EmbeddingService
	cache    *cache.EmbeddingCache
}

// NewRelevanceRanker creates a ranker. The cache parameter is optional
// (can be nil); without it every call re-encodes the task.
func NewRelevanceRanker(store driven.ContextStore, embedder driven.EmbeddingService, embCache *cache.EmbeddingCache) *RelevanceRanker {
	return &RelevanceRanker{
		store:    store,
		embedder: embedder,
		cache:    embCache,
	}
}

// Rank returns the top-scoring active units using semantic similarity
// only: cosine similarity against the task embedding, weighted by each
// unit's confidence.
func (r *RelevanceRanker) Rank(ctx context.Context, task string, opts domain.RankOptions) ([]domain.RankedContextUnit, error) {
	if err := r.checkRequest(opts); err != nil {
		return nil, err
	}

	logger.Section("Semantic Ranking")
	logger.Debug("Task: %q, limit: %d", task, opts.MaxResults)

	ranked, err := r.semanticCandidates(ctx, task)
	if err != nil {
		return nil, err
	}

	if len(ranked) > opts.MaxResults {
		ranked = ranked[:opts.MaxResults]
	}
	logger.Info("Semantic ranking: %d results", len(ranked))
	return ranked, nil
}

// RankHybrid blends semantic similarity with lexical matching.
//
// Stage 1 oversamples the semantic ranking to build a wider candidate
// pool; stage 2 re-ranks that pool with keyword overlap and tag
// matches blended in at the configured weight. Both stages use stable
// sorts, so equal scores preserve candidate order.
func (r *RelevanceRanker) RankHybrid(ctx context.Context, task string, opts domain.RankOptions) ([]domain.RankedContextUnit, error) {
	if err := r.checkRequest(opts); err != nil {
		return nil, err
	}

	oversample := opts.Oversample
	if oversample <= 0 {
		oversample = domain.DefaultOversample
	}
	keywordWeight := opts.KeywordWeight
	if keywordWeight == 0 {
		keywordWeight = domain.DefaultKeywordWeight
	}

	logger.Section("Hybrid Ranking")
	logger.Debug("Task: %q, limit: %d, keyword_weight: %.2f, oversample: %d",
		task, opts.MaxResults, keywordWeight, oversample)

	pool, err := r.semanticCandidates(ctx, task)
	if err != nil {
		return nil, err
	}

	// Widened stage-1 pool gives the lexical stage room to promote
	// units without truncating too early.
	poolSize := opts.MaxResults * oversample
	if len(pool) > poolSize {
		pool = pool[:poolSize]
	}
	logger.Debug("Stage 1 pool: %d candidates", len(pool))

	taskLower := strings.ToLower(task)
	taskWords := wordSet(taskLower)

	for i := range pool {
		keywordScore := keywordScore(taskLower, taskWords, &pool[i].Unit)
		semantic := pool[i].Score * (1 - keywordWeight)
		pool[i].Score = semantic + keywordScore*keywordWeight
	}

	sort.SliceStable(pool, func(i, j int) bool {
		return pool[i].Score > pool[j].Score
	})

	if len(pool) > opts.MaxResults {
		pool = pool[:opts.MaxResults]
	}
	logger.Info("Hybrid ranking: %d results", len(pool))
	return pool, nil
}

// checkRequest validates the caller contract at the driving boundary.
func (r *RelevanceRanker) checkRequest(opts domain.RankOptions) error {
	if opts.MaxResults <= 0 {
		return fmt.Errorf("%w: max results must be positive, got %d", domain.ErrInvalidInput, opts.MaxResults)
	}
	if r.embedder == nil {
		return domain.ErrEmbeddingUnavailable
	}
	return nil
}

// semanticCandidates scores every active embedded unit against the
// task and returns all of them sorted by score descending.
func (r *RelevanceRanker) semanticCandidates(ctx context.Context, task string) ([]domain.RankedContextUnit, error) {
	taskEmbedding, err := r.encodeTask(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("encode task: %w", err)
	}

	candidates, err := r.store.ListWithEmbeddings(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("list embedded contexts: %w", err)
	}

	logger.Debug("Scoring %d embedded contexts", len(candidates))

	ranked := make([]domain.RankedContextUnit, 0, len(candidates))
	for _, c := range candidates {
		sim := cosineSimilarity(taskEmbedding, c.Embedding)
		ranked = append(ranked, domain.RankedContextUnit{
			Unit:  c.Unit,
			Score: sim * c.Unit.Confidence,
		})
	}

	// Stable: equal scores keep the store's candidate order, which is
	// itself stable across calls on an unmodified store.
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	return ranked, nil
}

// encodeTask embeds the task text, serving repeats from the cache.
func (r *RelevanceRanker) encodeTask(ctx context.Context, task string) ([]float32, error) {
	if r.cache != nil {
		if cached := r.cache.Get(task); cached != nil {
			return cached, nil
		}
	}

	embedding, err := r.embedder.Embed(ctx, task)
	if err != nil {
		return nil, err
	}

	if r.cache != nil {
		r.cache.Put(task, embedding)
	}
	return embedding, nil
}

// cosineSimilarity computes the cosine of the angle between two
// vectors, accumulating in float64. A zero-norm vector yields 0 by
// policy rather than an error, so one degenerate embedding cannot
// poison a whole ranking pass.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// wordSet splits lowered text into its set of words.
func wordSet(lowered string) map[string]struct{} {
	words := strings.Fields(lowered)
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// keywordScore measures lexical affinity between the task and a unit:
// word overlap against the task, plus a fixed bonus per tag appearing
// as a substring of the task.
func keywordScore(taskLower string, taskWords map[string]struct{}, unit *domain.ContextUnit) float64 {
	contentWords := wordSet(strings.ToLower(unit.Content))

	overlap := 0
	for w := range taskWords {
		if _, ok := contentWords[w]; ok {
			overlap++
		}
	}
	denom := len(taskWords)
	if denom < 1 {
		denom = 1
	}
	overlapScore := float64(overlap) / float64(denom)

	tagMatches := 0
	for _, tag := range unit.Tags {
		if tag != "" && strings.Contains(taskLower, strings.ToLower(tag)) {
			tagMatches++
		}
	}

	return overlapScore + domain.TagMatchBonus*float64(tagMatches)
}
