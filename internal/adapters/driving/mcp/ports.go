package mcp

import (
	"github.com/contextpilot/contextpilot-cli/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Context manages context units.
	Context driving.ContextService

	// Rank ranks context units by task relevance.
	Rank driving.RankService

	// Compose builds contextualised prompts.
	Compose driving.ComposeService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Context == nil {
		return ErrMissingContextService
	}
	// Rank and Compose degrade gracefully when no embedding provider
	// is configured; their handlers report the missing capability.
	return nil
}
