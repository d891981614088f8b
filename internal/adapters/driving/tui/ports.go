// Package tui provides an interactive terminal user interface for
// ContextPilot. It implements a driving adapter following hexagonal
// architecture principles.
package tui

import (
	"github.com/contextpilot/contextpilot-cli/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Context manages the lifecycle of context units.
	Context driving.ContextService
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(contextService driving.ContextService) *Ports {
	return &Ports{
		Context: contextService,
	}
}

// Validate ensures all required ports are set.
// Returns an error if any port is nil.
func (p *Ports) Validate() error {
	if p.Context == nil {
		return ErrMissingContextService
	}
	return nil
}
