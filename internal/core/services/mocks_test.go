package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/contextpilot/contextpilot-cli/internal/core/domain"
	"github.com/contextpilot/contextpilot-cli/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockContextStore implements driven.ContextStore in memory with
// insertion-ordered listing.
type mockContextStore struct {
	order      []string
	units      map[string]*domain.ContextUnit
	embeddings map[string][]float32

	addErr  error
	listErr error
}

func newMockContextStore() *mockContextStore {
	return &mockContextStore{
		units:      make(map[string]*domain.ContextUnit),
		embeddings: make(map[string][]float32),
	}
}

func (m *mockContextStore) Add(_ context.Context, unit *domain.ContextUnit, embedding []float32) error {
	if m.addErr != nil {
		return m.addErr
	}
	if _, exists := m.units[unit.ID]; !exists {
		m.order = append(m.order, unit.ID)
	}
	cp := *unit
	m.units[unit.ID] = &cp
	if embedding != nil {
		m.embeddings[unit.ID] = embedding
	}
	return nil
}

func (m *mockContextStore) Get(_ context.Context, id string) (*domain.ContextUnit, error) {
	unit, ok := m.units[id]
	if !ok {
		return nil, fmt.Errorf("context %s: %w", id, domain.ErrNotFound)
	}
	cp := *unit
	return &cp, nil
}

func (m *mockContextStore) ListAll(_ context.Context, includeSuperseded bool) ([]domain.ContextUnit, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []domain.ContextUnit
	for _, id := range m.order {
		unit := m.units[id]
		if !includeSuperseded && !unit.IsActive() {
			continue
		}
		out = append(out, *unit)
	}
	return out, nil
}

func (m *mockContextStore) Update(_ context.Context, id string, update domain.ContextUpdate) (*domain.ContextUnit, error) {
	unit, ok := m.units[id]
	if !ok {
		return nil, fmt.Errorf("context %s: %w", id, domain.ErrNotFound)
	}
	update.Apply(unit)
	cp := *unit
	return &cp, nil
}

func (m *mockContextStore) Delete(_ context.Context, id string) (bool, error) {
	if _, ok := m.units[id]; !ok {
		return false, nil
	}
	delete(m.units, id)
	delete(m.embeddings, id)
	for i, oid := range m.order {
		if oid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return true, nil
}

func (m *mockContextStore) Supersede(_ context.Context, oldID, newID string) (bool, error) {
	if _, ok := m.units[newID]; !ok {
		return false, fmt.Errorf("superseding context %s: %w", newID, domain.ErrNotFound)
	}
	unit, ok := m.units[oldID]
	if !ok {
		return false, nil
	}
	if err := unit.MarkSuperseded(newID); err != nil {
		return false, err
	}
	return true, nil
}

func (m *mockContextStore) GetEmbedding(_ context.Context, id string) ([]float32, error) {
	emb, ok := m.embeddings[id]
	if !ok {
		return nil, fmt.Errorf("embedding for %s: %w", id, domain.ErrNotFound)
	}
	return emb, nil
}

func (m *mockContextStore) UpdateEmbedding(_ context.Context, id string, embedding []float32) (bool, error) {
	if _, ok := m.units[id]; !ok {
		return false, nil
	}
	m.embeddings[id] = embedding
	return true, nil
}

func (m *mockContextStore) ListWithEmbeddings(_ context.Context, includeSuperseded bool) ([]driven.EmbeddedContext, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []driven.EmbeddedContext
	for _, id := range m.order {
		unit := m.units[id]
		if !includeSuperseded && !unit.IsActive() {
			continue
		}
		emb, ok := m.embeddings[id]
		if !ok {
			continue
		}
		out = append(out, driven.EmbeddedContext{Unit: *unit, Embedding: emb})
	}
	return out, nil
}

func (m *mockContextStore) Close() error {
	return nil
}

// mockEmbeddingService implements driven.EmbeddingService for testing.
// Embeddings are deterministic per text: byText wins, then the fixed
// vector, then a crude bag-of-letters fallback.
type mockEmbeddingService struct {
	embedding []float32
	byText    map[string][]float32
	embedErr  error
	calls     int
}

func (m *mockEmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	m.calls++
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	if v, ok := m.byText[text]; ok {
		return v, nil
	}
	if m.embedding != nil {
		return m.embedding, nil
	}
	return letterVector(text), nil
}

func (m *mockEmbeddingService) Dimensions() int {
	return 26
}

func (m *mockEmbeddingService) ModelName() string {
	return "mock-embed"
}

func (m *mockEmbeddingService) Ping(_ context.Context) error {
	return nil
}

func (m *mockEmbeddingService) Close() error {
	return nil
}

// letterVector embeds text as lowercase letter frequencies. Crude, but
// similar texts really do get similar vectors.
func letterVector(text string) []float32 {
	v := make([]float32, 26)
	for _, r := range strings.ToLower(text) {
		if r >= 'a' && r <= 'z' {
			v[r-'a']++
		}
	}
	return v
}

// mockConfigStore implements driven.ConfigStore on a map.
type mockConfigStore struct {
	values map[string]any
	setErr error
}

func newMockConfigStore() *mockConfigStore {
	return &mockConfigStore{values: make(map[string]any)}
}

func (m *mockConfigStore) Get(key string) (any, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m *mockConfigStore) GetString(key string) string {
	if v, ok := m.values[key].(string); ok {
		return v
	}
	return ""
}

func (m *mockConfigStore) GetInt(key string) int {
	switch v := m.values[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

func (m *mockConfigStore) GetFloat(key string) float64 {
	switch v := m.values[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}

func (m *mockConfigStore) GetBool(key string) bool {
	if v, ok := m.values[key].(bool); ok {
		return v
	}
	return false
}

func (m *mockConfigStore) GetStringSlice(key string) []string {
	if v, ok := m.values[key].([]string); ok {
		return v
	}
	return nil
}

func (m *mockConfigStore) Set(key string, value any) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.values[key] = value
	return nil
}

func (m *mockConfigStore) Save() error { return nil }
func (m *mockConfigStore) Load() error { return nil }
func (m *mockConfigStore) Path() string {
	return "/tmp/contextpilot-test/config.toml"
}

// Interface checks for the mocks.
var (
	_ driven.ContextStore     = (*mockContextStore)(nil)
	_ driven.EmbeddingService = (*mockEmbeddingService)(nil)
	_ driven.ConfigStore      = (*mockConfigStore)(nil)
)
