package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/contextpilot/contextpilot-cli/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for ContextPilot resources.
	uriScheme = "contextpilot://"
)

// unitInfo is the JSON shape resources expose for a context unit.
type unitInfo struct {
	ID           string   `json:"id"`
	Type         string   `json:"type"`
	Content      string   `json:"content"`
	Confidence   float64  `json:"confidence"`
	Tags         []string `json:"tags,omitempty"`
	Source       string   `json:"source"`
	Status       string   `json:"status"`
	SupersededBy string   `json:"superseded_by,omitempty"`
}

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for listing active context units.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "contexts",
		Name:        "contexts",
		Description: "All active context units",
		MIMEType:    "application/json",
	}, s.handleContextsResource)

	// Template for a single context unit.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "contexts/{contextId}",
		Name:        "context-unit",
		Description: "A single context unit by ID",
		MIMEType:    "application/json",
	}, s.handleContextUnitResource)
}

// handleContextsResource returns a list of all active context units.
func (s *Server) handleContextsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	units, err := s.ports.Context.List(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("listing contexts: %w", err)
	}

	infos := make([]unitInfo, len(units))
	for i := range units {
		infos[i] = toUnitInfo(&units[i])
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling contexts: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleContextUnitResource returns a single context unit by ID.
func (s *Server) handleContextUnitResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	// Extract the unit ID from a URI like contextpilot://contexts/{contextId}
	unitID := extractContextID(req.Params.URI)
	if unitID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	unit, err := s.ports.Context.Get(ctx, unitID)
	if err != nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	info := toUnitInfo(unit)
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling context unit: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// toUnitInfo converts a domain unit to its resource representation.
func toUnitInfo(unit *domain.ContextUnit) unitInfo {
	info := unitInfo{
		ID:         unit.ID,
		Type:       unit.Type.String(),
		Content:    unit.Content,
		Confidence: unit.Confidence,
		Tags:       unit.Tags,
		Source:     unit.Source,
		Status:     unit.Status.String(),
	}
	if unit.SupersededBy != nil {
		info.SupersededBy = *unit.SupersededBy
	}
	return info
}

// extractContextID extracts the unit ID from a URI like contextpilot://contexts/{contextId}.
func extractContextID(uri string) string {
	const prefix = uriScheme + "contexts/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	return strings.TrimPrefix(uri, prefix)
}
