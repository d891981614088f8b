package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/contextpilot/contextpilot-cli/internal/core/domain"
	"github.com/contextpilot/contextpilot-cli/internal/core/ports/driving"
)

// sourceMCP marks units created through the MCP server.
const sourceMCP = "mcp"

// RankInput is the input schema for the rank_context tool.
type RankInput struct {
	Task  string `json:"task" jsonschema:"the task to find relevant context for"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of context units to return (default 5)"`
}

// RankOutput is the output schema for the rank_context tool.
type RankOutput struct {
	Results []RankedUnitOutput `json:"results"`
	Count   int                `json:"count"`
}

// RankedUnitOutput represents a single ranked context unit.
type RankedUnitOutput struct {
	ID         string   `json:"id"`
	Type       string   `json:"type"`
	Content    string   `json:"content"`
	Confidence float64  `json:"confidence"`
	Tags       []string `json:"tags,omitempty"`
	Score      float64  `json:"score"`
}

// AddContextInput is the input schema for the add_context tool.
type AddContextInput struct {
	Type       string   `json:"type" jsonschema:"context type: preference, decision, fact or goal"`
	Content    string   `json:"content" jsonschema:"the context content to remember"`
	Confidence float64  `json:"confidence,omitempty" jsonschema:"trust in the unit between 0 and 1 (default 1)"`
	Tags       []string `json:"tags,omitempty" jsonschema:"short labels for lexical matching"`
}

// AddContextOutput is the output schema for the add_context tool.
type AddContextOutput struct {
	ID         string  `json:"id"`
	Type       string  `json:"type"`
	Content    string  `json:"content"`
	Confidence float64 `json:"confidence"`
	Status     string  `json:"status"`
	CreatedAt  string  `json:"created_at"`
}

// ComposeInput is the input schema for the compose_prompt tool.
type ComposeInput struct {
	Task  string `json:"task" jsonschema:"the task to compose a contextualised prompt for"`
	Style string `json:"style,omitempty" jsonschema:"prompt style: full or compact (default full)"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of context units to include (default 5)"`
}

// ComposeOutput is the output schema for the compose_prompt tool.
type ComposeOutput struct {
	Prompt       string `json:"prompt"`
	ContextCount int    `json:"context_count"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "rank_context",
		Description: "Rank stored context units by relevance to a task",
	}, s.handleRankContext)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "add_context",
		Description: "Store a new piece of user context (preference, decision, fact or goal)",
	}, s.handleAddContext)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "compose_prompt",
		Description: "Build a prompt that combines a task with the most relevant stored context",
	}, s.handleComposePrompt)
}

// handleRankContext handles the rank_context tool invocation.
func (s *Server) handleRankContext(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RankInput,
) (*mcp.CallToolResult, RankOutput, error) {
	if s.ports.Rank == nil {
		return nil, RankOutput{}, errors.New("ranking is not available: no embedding provider configured")
	}

	limit := input.Limit
	if limit <= 0 {
		limit = domain.DefaultMaxResults
	}

	opts := domain.RankOptions{MaxResults: limit}
	results, err := s.ports.Rank.RankHybrid(ctx, input.Task, opts)
	if err != nil {
		return nil, RankOutput{}, err
	}

	output := RankOutput{
		Results: make([]RankedUnitOutput, len(results)),
		Count:   len(results),
	}

	for i := range results {
		output.Results[i] = RankedUnitOutput{
			ID:         results[i].Unit.ID,
			Type:       results[i].Unit.Type.String(),
			Content:    results[i].Unit.Content,
			Confidence: results[i].Unit.Confidence,
			Tags:       results[i].Unit.Tags,
			Score:      results[i].Score,
		}
	}

	return nil, output, nil
}

// handleAddContext handles the add_context tool invocation.
func (s *Server) handleAddContext(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AddContextInput,
) (*mcp.CallToolResult, AddContextOutput, error) {
	confidence := input.Confidence
	if confidence == 0 {
		confidence = 1.0
	}

	unit, err := s.ports.Context.Add(ctx, driving.CreateContext{
		Type:       domain.ContextType(input.Type),
		Content:    input.Content,
		Confidence: confidence,
		Tags:       input.Tags,
		Source:     sourceMCP,
	})
	if err != nil {
		return nil, AddContextOutput{}, fmt.Errorf("adding context: %w", err)
	}

	return nil, AddContextOutput{
		ID:         unit.ID,
		Type:       unit.Type.String(),
		Content:    unit.Content,
		Confidence: unit.Confidence,
		Status:     unit.Status.String(),
		CreatedAt:  unit.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}, nil
}

// handleComposePrompt handles the compose_prompt tool invocation.
func (s *Server) handleComposePrompt(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ComposeInput,
) (*mcp.CallToolResult, ComposeOutput, error) {
	if s.ports.Compose == nil {
		return nil, ComposeOutput{}, errors.New("composing is not available: no embedding provider configured")
	}

	style := domain.PromptStyle(input.Style)
	if input.Style == "" {
		style = domain.PromptStyleFull
	}

	limit := input.Limit
	if limit <= 0 {
		limit = domain.DefaultMaxResults
	}

	prompt, err := s.ports.Compose.Compose(ctx, input.Task, style, domain.RankOptions{MaxResults: limit})
	if err != nil {
		return nil, ComposeOutput{}, err
	}

	return nil, ComposeOutput{
		Prompt:       prompt.Prompt,
		ContextCount: len(prompt.RelevantContext),
	}, nil
}
