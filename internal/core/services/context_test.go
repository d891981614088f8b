package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contextpilot/contextpilot-cli/internal/cache"
	"github.com/contextpilot/contextpilot-cli/internal/core/domain"
	"github.com/contextpilot/contextpilot-cli/internal/core/ports/driving"
)

// TestContextServiceAdd verifies creation assigns ID and embedding.
func TestContextServiceAdd(t *testing.T) {
	store := newMockContextStore()
	embedder := &mockEmbeddingService{embedding: []float32{1, 2, 3}}
	svc := NewContextService(store, embedder, nil)
	ctx := context.Background()

	unit, err := svc.Add(ctx, driving.CreateContext{
		Type:       domain.ContextTypePreference,
		Content:    "prefers dark mode",
		Confidence: 0.9,
		Tags:       []string{"ui"},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, unit.ID)
	assert.Equal(t, domain.ContextStatusActive, unit.Status)
	assert.Equal(t, domain.SourceManual, unit.Source)

	emb, err := store.GetEmbedding(ctx, unit.ID)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3}, emb)
}

// TestContextServiceAddValidation verifies invalid input is rejected
// before anything reaches the store.
func TestContextServiceAddValidation(t *testing.T) {
	store := newMockContextStore()
	svc := NewContextService(store, &mockEmbeddingService{embedding: []float32{1}}, nil)
	ctx := context.Background()

	tests := []struct {
		name string
		req  driving.CreateContext
	}{
		{"empty content", driving.CreateContext{Type: domain.ContextTypeFact, Content: "   ", Confidence: 0.5}},
		{"bad type", driving.CreateContext{Type: "opinion", Content: "x", Confidence: 0.5}},
		{"confidence too high", driving.CreateContext{Type: domain.ContextTypeFact, Content: "x", Confidence: 1.5}},
		{"confidence negative", driving.CreateContext{Type: domain.ContextTypeFact, Content: "x", Confidence: -0.1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Add(ctx, tt.req)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}

	units, err := store.ListAll(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, units)
}

// TestContextServiceAddWithoutEmbedder verifies units can be stored
// with no embedding provider configured.
func TestContextServiceAddWithoutEmbedder(t *testing.T) {
	store := newMockContextStore()
	svc := NewContextService(store, nil, nil)
	ctx := context.Background()

	unit, err := svc.Add(ctx, driving.CreateContext{
		Type:       domain.ContextTypeFact,
		Content:    "works offline",
		Confidence: 0.8,
	})
	require.NoError(t, err)

	_, err = store.GetEmbedding(ctx, unit.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// TestContextServiceGetNotFound verifies the absence contract.
func TestContextServiceGetNotFound(t *testing.T) {
	svc := NewContextService(newMockContextStore(), nil, nil)

	_, err := svc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// TestContextServiceUpdateContentReembeds verifies content changes
// regenerate the embedding.
func TestContextServiceUpdateContentReembeds(t *testing.T) {
	store := newMockContextStore()
	embedder := &mockEmbeddingService{
		byText: map[string][]float32{
			"original": {1, 0},
			"revised":  {0, 1},
		},
	}
	svc := NewContextService(store, embedder, nil)
	ctx := context.Background()

	unit, err := svc.Add(ctx, driving.CreateContext{
		Type: domain.ContextTypeFact, Content: "original", Confidence: 0.5,
	})
	require.NoError(t, err)

	newContent := "revised"
	updated, err := svc.Update(ctx, unit.ID, domain.ContextUpdate{Content: &newContent})
	require.NoError(t, err)
	assert.Equal(t, "revised", updated.Content)

	emb, err := store.GetEmbedding(ctx, unit.ID)
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 1}, emb)
}

// TestContextServiceUpdateConfidenceKeepsEmbedding verifies non-content
// updates leave the embedding alone.
func TestContextServiceUpdateConfidenceKeepsEmbedding(t *testing.T) {
	store := newMockContextStore()
	embedder := &mockEmbeddingService{embedding: []float32{1, 2}}
	svc := NewContextService(store, embedder, nil)
	ctx := context.Background()

	unit, err := svc.Add(ctx, driving.CreateContext{
		Type: domain.ContextTypeFact, Content: "stable", Confidence: 0.5,
	})
	require.NoError(t, err)
	callsAfterAdd := embedder.calls

	conf := 0.95
	updated, err := svc.Update(ctx, unit.ID, domain.ContextUpdate{Confidence: &conf})
	require.NoError(t, err)
	assert.Equal(t, 0.95, updated.Confidence)
	assert.Equal(t, callsAfterAdd, embedder.calls)
}

// TestContextServiceUpdateNotFound verifies updating a missing unit.
func TestContextServiceUpdateNotFound(t *testing.T) {
	svc := NewContextService(newMockContextStore(), nil, nil)

	conf := 0.5
	_, err := svc.Update(context.Background(), "missing", domain.ContextUpdate{Confidence: &conf})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// TestContextServiceUpdateInvalid verifies partial update validation.
func TestContextServiceUpdateInvalid(t *testing.T) {
	svc := NewContextService(newMockContextStore(), nil, nil)

	empty := " "
	_, err := svc.Update(context.Background(), "any", domain.ContextUpdate{Content: &empty})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// TestContextServiceDelete verifies deletion reporting.
func TestContextServiceDelete(t *testing.T) {
	store := newMockContextStore()
	svc := NewContextService(store, nil, nil)
	ctx := context.Background()

	unit, err := svc.Add(ctx, driving.CreateContext{
		Type: domain.ContextTypeFact, Content: "transient", Confidence: 0.5,
	})
	require.NoError(t, err)

	removed, err := svc.Delete(ctx, unit.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = svc.Delete(ctx, unit.ID)
	require.NoError(t, err)
	assert.False(t, removed)
}

// TestContextServiceSupersede verifies the replacement flow.
func TestContextServiceSupersede(t *testing.T) {
	store := newMockContextStore()
	embedder := &mockEmbeddingService{embedding: []float32{1}}
	svc := NewContextService(store, embedder, nil)
	ctx := context.Background()

	old, err := svc.Add(ctx, driving.CreateContext{
		Type: domain.ContextTypeDecision, Content: "use postgres", Confidence: 0.8,
	})
	require.NoError(t, err)

	replacement, err := svc.Supersede(ctx, old.ID, driving.CreateContext{
		Type: domain.ContextTypeDecision, Content: "use sqlite", Confidence: 0.9,
	})
	require.NoError(t, err)
	assert.NotEqual(t, old.ID, replacement.ID)
	assert.Equal(t, domain.ContextStatusActive, replacement.Status)

	reloaded, err := svc.Get(ctx, old.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ContextStatusSuperseded, reloaded.Status)
	require.NotNil(t, reloaded.SupersededBy)
	assert.Equal(t, replacement.ID, *reloaded.SupersededBy)

	// Active listing hides the superseded unit, full listing keeps it.
	active, err := svc.List(ctx, false)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, replacement.ID, active[0].ID)

	all, err := svc.List(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

// TestContextServiceSupersedeUnknownOld verifies the old unit must exist.
func TestContextServiceSupersedeUnknownOld(t *testing.T) {
	store := newMockContextStore()
	svc := NewContextService(store, nil, nil)
	ctx := context.Background()

	_, err := svc.Supersede(ctx, "missing", driving.CreateContext{
		Type: domain.ContextTypeFact, Content: "replacement", Confidence: 0.5,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Nothing should have been stored.
	units, err := store.ListAll(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, units)
}

// TestContextServiceSupersedeInvalidReplacement verifies a bad
// replacement leaves the old unit active.
func TestContextServiceSupersedeInvalidReplacement(t *testing.T) {
	store := newMockContextStore()
	svc := NewContextService(store, nil, nil)
	ctx := context.Background()

	old, err := svc.Add(ctx, driving.CreateContext{
		Type: domain.ContextTypeFact, Content: "still valid", Confidence: 0.5,
	})
	require.NoError(t, err)

	_, err = svc.Supersede(ctx, old.ID, driving.CreateContext{
		Type: domain.ContextTypeFact, Content: "", Confidence: 0.5,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	reloaded, err := svc.Get(ctx, old.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ContextStatusActive, reloaded.Status)
}

// TestContextServiceMarkUsed verifies LastUsed stamping and that
// unknown IDs are skipped.
func TestContextServiceMarkUsed(t *testing.T) {
	store := newMockContextStore()
	svc := NewContextService(store, nil, nil)
	ctx := context.Background()

	unit, err := svc.Add(ctx, driving.CreateContext{
		Type: domain.ContextTypeFact, Content: "used", Confidence: 0.5,
	})
	require.NoError(t, err)
	require.Nil(t, unit.LastUsed)

	before := time.Now().UTC()
	err = svc.MarkUsed(ctx, []string{unit.ID, "deleted-since-ranking"})
	require.NoError(t, err)

	reloaded, err := svc.Get(ctx, unit.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.LastUsed)
	assert.False(t, reloaded.LastUsed.Before(before))
}

// TestContextServiceAddPropagatesEmbedError verifies embedding
// failures block creation.
func TestContextServiceAddPropagatesEmbedError(t *testing.T) {
	store := newMockContextStore()
	embedder := &mockEmbeddingService{embedErr: errors.New("provider down")}
	svc := NewContextService(store, embedder, nil)
	ctx := context.Background()

	_, err := svc.Add(ctx, driving.CreateContext{
		Type: domain.ContextTypeFact, Content: "content", Confidence: 0.5,
	})
	require.Error(t, err)

	units, err := store.ListAll(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, units)
}

// TestContextServiceAddUsesCache verifies identical content is
// embedded once.
func TestContextServiceAddUsesCache(t *testing.T) {
	store := newMockContextStore()
	embedder := &mockEmbeddingService{embedding: []float32{1}}
	embCache := cache.New(10, 3600)
	svc := NewContextService(store, embedder, embCache)
	ctx := context.Background()

	for range 2 {
		_, err := svc.Add(ctx, driving.CreateContext{
			Type: domain.ContextTypeFact, Content: "same content", Confidence: 0.5,
		})
		require.NoError(t, err)
	}

	assert.Equal(t, 1, embedder.calls)
}
