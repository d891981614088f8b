package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contextpilot/contextpilot-cli/internal/core/domain"
)

// newTestStore creates a store in a temp directory, closed on cleanup.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

// mustUnit constructs a valid unit or fails the test.
func mustUnit(t *testing.T, id, content string, tags []string) *domain.ContextUnit {
	t.Helper()
	unit, err := domain.NewContextUnit(id, domain.ContextTypeFact, content, 0.8, tags, "")
	require.NoError(t, err)
	return unit
}

// TestStoreCreatesSchema verifies store creation and reopening.
func TestStoreCreatesSchema(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	assert.Contains(t, store.Path(), "contexts.db")
	require.NoError(t, store.Close())

	// Reopening must not re-run migrations or lose data.
	store2, err := NewStore(dir)
	require.NoError(t, err)
	defer store2.Close()

	units, err := store2.ListAll(context.Background(), true)
	require.NoError(t, err)
	assert.Empty(t, units)
}

// TestStoreAddGetRoundTrip verifies all fields survive persistence.
func TestStoreAddGetRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	unit := mustUnit(t, "u1", "likes coffee", []string{"food", "habits"})
	require.NoError(t, store.Add(ctx, unit, []float32{0.1, -0.2, 3.5}))

	got, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, unit.ID, got.ID)
	assert.Equal(t, unit.Type, got.Type)
	assert.Equal(t, unit.Content, got.Content)
	assert.Equal(t, unit.Confidence, got.Confidence)
	assert.Equal(t, []string{"food", "habits"}, got.Tags)
	assert.Equal(t, domain.SourceManual, got.Source)
	assert.Equal(t, domain.ContextStatusActive, got.Status)
	assert.Nil(t, got.SupersededBy)
	assert.Nil(t, got.LastUsed)
	assert.WithinDuration(t, unit.CreatedAt, got.CreatedAt, time.Second)

	emb, err := store.GetEmbedding(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, -0.2, 3.5}, emb)
}

// TestStoreAddWithoutEmbedding verifies NULL embedding handling.
func TestStoreAddWithoutEmbedding(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, mustUnit(t, "bare", "no vector", nil), nil))

	_, err := store.GetEmbedding(ctx, "bare")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Unit itself is retrievable and not visible to the ranker.
	_, err = store.Get(ctx, "bare")
	require.NoError(t, err)

	embedded, err := store.ListWithEmbeddings(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, embedded)
}

// TestStoreGetNotFound verifies the absence contract.
func TestStoreGetNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = store.GetEmbedding(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// TestStoreListRowidOrder verifies stable insertion ordering.
func TestStoreListRowidOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	ids := []string{"z", "a", "m"}
	for _, id := range ids {
		require.NoError(t, store.Add(ctx, mustUnit(t, id, "content "+id, nil), []float32{1}))
	}

	for range 3 {
		units, err := store.ListAll(ctx, false)
		require.NoError(t, err)
		require.Len(t, units, 3)
		for i, id := range ids {
			assert.Equal(t, id, units[i].ID)
		}
	}
}

// TestStoreUpdate verifies partial updates persist.
func TestStoreUpdate(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, mustUnit(t, "u1", "original", []string{"a"}), nil))

	content := "revised"
	conf := 0.4
	tags := []string{"b", "c"}
	updated, err := store.Update(ctx, "u1", domain.ContextUpdate{
		Content: &content, Confidence: &conf, Tags: &tags,
	})
	require.NoError(t, err)
	assert.Equal(t, "revised", updated.Content)
	assert.Equal(t, 0.4, updated.Confidence)
	assert.Equal(t, []string{"b", "c"}, updated.Tags)

	got, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "revised", got.Content)
	assert.Equal(t, []string{"b", "c"}, got.Tags)
}

// TestStoreUpdateNotFound verifies updating a missing unit.
func TestStoreUpdateNotFound(t *testing.T) {
	store := newTestStore(t)

	content := "x"
	_, err := store.Update(context.Background(), "missing", domain.ContextUpdate{Content: &content})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// TestStoreUpdateLastUsed verifies the usage timestamp round trips.
func TestStoreUpdateLastUsed(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, mustUnit(t, "u1", "content", nil), nil))

	used := time.Now().UTC().Truncate(time.Second)
	_, err := store.Update(ctx, "u1", domain.ContextUpdate{LastUsed: &used})
	require.NoError(t, err)

	got, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, got.LastUsed)
	assert.WithinDuration(t, used, *got.LastUsed, time.Second)
}

// TestStoreDelete verifies delete reporting and embedding cleanup.
func TestStoreDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, mustUnit(t, "u1", "content", nil), []float32{1}))

	removed, err := store.Delete(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, removed)

	_, err = store.Get(ctx, "u1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = store.GetEmbedding(ctx, "u1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	removed, err = store.Delete(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, removed)
}

// TestStoreSupersede verifies the lifecycle transition persists.
func TestStoreSupersede(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, mustUnit(t, "old", "v1", nil), []float32{1}))
	require.NoError(t, store.Add(ctx, mustUnit(t, "new", "v2", nil), []float32{2}))

	// Unknown new unit is an error.
	_, err := store.Supersede(ctx, "old", "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Unknown old unit is a false.
	ok, err := store.Supersede(ctx, "ghost", "new")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = store.Supersede(ctx, "old", "new")
	require.NoError(t, err)
	require.True(t, ok)

	got, err := store.Get(ctx, "old")
	require.NoError(t, err)
	assert.Equal(t, domain.ContextStatusSuperseded, got.Status)
	require.NotNil(t, got.SupersededBy)
	assert.Equal(t, "new", *got.SupersededBy)

	// Superseding twice is rejected.
	_, err = store.Supersede(ctx, "old", "new")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	active, err := store.ListAll(ctx, false)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "new", active[0].ID)
}

// TestStoreUpdateEmbedding verifies vector replacement.
func TestStoreUpdateEmbedding(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, mustUnit(t, "u1", "content", nil), []float32{1, 0}))

	ok, err := store.UpdateEmbedding(ctx, "u1", []float32{0, 1})
	require.NoError(t, err)
	require.True(t, ok)

	emb, err := store.GetEmbedding(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 1}, emb)

	ok, err = store.UpdateEmbedding(ctx, "missing", []float32{1})
	require.NoError(t, err)
	assert.False(t, ok)
}

// TestStoreListWithEmbeddings verifies the ranker read shape.
func TestStoreListWithEmbeddings(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, mustUnit(t, "a", "first", nil), []float32{1, 2}))
	require.NoError(t, store.Add(ctx, mustUnit(t, "b", "bare", nil), nil))
	require.NoError(t, store.Add(ctx, mustUnit(t, "c", "third", nil), []float32{3, 4}))

	embedded, err := store.ListWithEmbeddings(ctx, false)
	require.NoError(t, err)
	require.Len(t, embedded, 2)
	assert.Equal(t, "a", embedded[0].Unit.ID)
	assert.Equal(t, []float32{1, 2}, embedded[0].Embedding)
	assert.Equal(t, "c", embedded[1].Unit.ID)
	assert.Equal(t, []float32{3, 4}, embedded[1].Embedding)
}

// TestStorePersistenceAcrossReopen verifies data survives a restart.
func TestStorePersistenceAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Add(ctx, mustUnit(t, "u1", "durable", []string{"keep"}), []float32{1, 2}))
	require.NoError(t, store.Close())

	reopened, err := NewStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "durable", got.Content)
	assert.Equal(t, []string{"keep"}, got.Tags)

	emb, err := reopened.GetEmbedding(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2}, emb)
}

// TestFloat32BlobRoundTrip verifies the embedding codec.
func TestFloat32BlobRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		input []float32
	}{
		{"nil", nil},
		{"empty", []float32{}},
		{"values", []float32{0, -1.5, 3.14159, 1e10, -1e-10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := bytesToFloat32Slice(float32SliceToBytes(tt.input))
			if len(tt.input) == 0 {
				assert.Nil(t, got)
				return
			}
			assert.Equal(t, tt.input, got)
		})
	}
}
