package mcp

import (
	"context"

	"github.com/contextpilot/contextpilot-cli/internal/core/domain"
	"github.com/contextpilot/contextpilot-cli/internal/core/ports/driving"
)

// mockContextService is a mock implementation of driving.ContextService.
type mockContextService struct {
	units   []domain.ContextUnit
	unit    *domain.ContextUnit
	created *driving.CreateContext
	err     error
}

func (m *mockContextService) Add(_ context.Context, req driving.CreateContext) (*domain.ContextUnit, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.created = &req
	if m.unit != nil {
		return m.unit, nil
	}
	unit, err := domain.NewContextUnit("unit-1", req.Type, req.Content, req.Confidence, req.Tags, req.Source)
	if err != nil {
		return nil, err
	}
	return unit, nil
}

func (m *mockContextService) Get(_ context.Context, _ string) (*domain.ContextUnit, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.unit == nil {
		return nil, domain.ErrNotFound
	}
	return m.unit, nil
}

func (m *mockContextService) List(_ context.Context, _ bool) ([]domain.ContextUnit, error) {
	return m.units, m.err
}

func (m *mockContextService) Update(_ context.Context, _ string, _ domain.ContextUpdate) (*domain.ContextUnit, error) {
	return m.unit, m.err
}

func (m *mockContextService) Delete(_ context.Context, _ string) (bool, error) {
	return m.unit != nil, m.err
}

func (m *mockContextService) Supersede(_ context.Context, _ string, _ driving.CreateContext) (*domain.ContextUnit, error) {
	return m.unit, m.err
}

func (m *mockContextService) MarkUsed(_ context.Context, _ []string) error {
	return m.err
}

// mockRankService is a mock implementation of driving.RankService.
type mockRankService struct {
	ranked []domain.RankedContextUnit
	err    error
}

func (m *mockRankService) Rank(_ context.Context, _ string, _ domain.RankOptions) ([]domain.RankedContextUnit, error) {
	return m.ranked, m.err
}

func (m *mockRankService) RankHybrid(_ context.Context, _ string, _ domain.RankOptions) ([]domain.RankedContextUnit, error) {
	return m.ranked, m.err
}

// mockComposeService is a mock implementation of driving.ComposeService.
type mockComposeService struct {
	prompt *domain.GeneratedPrompt
	err    error
}

func (m *mockComposeService) Compose(_ context.Context, _ string, _ domain.PromptStyle, _ domain.RankOptions) (*domain.GeneratedPrompt, error) {
	return m.prompt, m.err
}
