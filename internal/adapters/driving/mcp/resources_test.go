package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contextpilot/contextpilot-cli/internal/core/domain"
)

func readRequest(uri string) *mcp.ReadResourceRequest {
	req := &mcp.ReadResourceRequest{}
	req.Params = &mcp.ReadResourceParams{URI: uri}
	return req
}

func TestServer_handleContextsResource(t *testing.T) {
	ctx := context.Background()

	mockCtx := &mockContextService{
		units: []domain.ContextUnit{
			{
				ID:         "ctx-1",
				Type:       domain.ContextTypeFact,
				Content:    "works in UTC+1",
				Confidence: 1.0,
				Source:     "manual",
				Status:     domain.ContextStatusActive,
			},
			{
				ID:         "ctx-2",
				Type:       domain.ContextTypeGoal,
				Content:    "ship the migration",
				Confidence: 0.7,
				Tags:       []string{"work"},
				Source:     "mcp",
				Status:     domain.ContextStatusActive,
			},
		},
	}

	server, err := NewServer(&Ports{Context: mockCtx})
	require.NoError(t, err)

	result, err := server.handleContextsResource(ctx, readRequest(uriScheme+"contexts"))

	require.NoError(t, err)
	require.Len(t, result.Contents, 1)
	assert.Equal(t, "application/json", result.Contents[0].MIMEType)

	var infos []unitInfo
	require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &infos))
	require.Len(t, infos, 2)
	assert.Equal(t, "ctx-1", infos[0].ID)
	assert.Equal(t, "fact", infos[0].Type)
	assert.Equal(t, "ctx-2", infos[1].ID)
	assert.Equal(t, []string{"work"}, infos[1].Tags)
}

func TestServer_handleContextsResource_Empty(t *testing.T) {
	server, err := NewServer(&Ports{Context: &mockContextService{}})
	require.NoError(t, err)

	result, err := server.handleContextsResource(context.Background(), readRequest(uriScheme+"contexts"))

	require.NoError(t, err)
	require.Len(t, result.Contents, 1)
	assert.Equal(t, "[]", result.Contents[0].Text)
}

func TestServer_handleContextUnitResource(t *testing.T) {
	ctx := context.Background()

	supersededBy := "ctx-9"
	mockCtx := &mockContextService{
		unit: &domain.ContextUnit{
			ID:           "ctx-1",
			Type:         domain.ContextTypeDecision,
			Content:      "using sqlite for storage",
			Confidence:   0.95,
			Source:       "manual",
			Status:       domain.ContextStatusSuperseded,
			SupersededBy: &supersededBy,
		},
	}

	server, err := NewServer(&Ports{Context: mockCtx})
	require.NoError(t, err)

	result, err := server.handleContextUnitResource(ctx, readRequest(uriScheme+"contexts/ctx-1"))

	require.NoError(t, err)
	require.Len(t, result.Contents, 1)

	var info unitInfo
	require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &info))
	assert.Equal(t, "ctx-1", info.ID)
	assert.Equal(t, "decision", info.Type)
	assert.Equal(t, "superseded", info.Status)
	assert.Equal(t, "ctx-9", info.SupersededBy)
}

func TestServer_handleContextUnitResource_NotFound(t *testing.T) {
	server, err := NewServer(&Ports{Context: &mockContextService{}})
	require.NoError(t, err)

	_, err = server.handleContextUnitResource(context.Background(), readRequest(uriScheme+"contexts/ghost"))

	assert.Error(t, err)
}

func TestServer_handleContextUnitResource_BadURI(t *testing.T) {
	server, err := NewServer(&Ports{Context: &mockContextService{}})
	require.NoError(t, err)

	_, err = server.handleContextUnitResource(context.Background(), readRequest("wrong://contexts/ctx-1"))

	assert.Error(t, err)
}

func TestExtractContextID(t *testing.T) {
	tests := []struct {
		name string
		uri  string
		want string
	}{
		{"valid", uriScheme + "contexts/abc-123", "abc-123"},
		{"wrong scheme", "other://contexts/abc", ""},
		{"missing id", uriScheme + "contexts/", ""},
		{"listing uri", uriScheme + "contexts", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractContextID(tt.uri))
		})
	}
}
