// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/contextpilot/contextpilot-cli/internal/core/domain"
)

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewContexts is the context unit list view.
	ViewContexts ViewType = iota
	// ViewContextDetail shows a single context unit in full.
	ViewContextDetail
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewContexts:
		return "contexts"
	case ViewContextDetail:
		return "context_detail"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ContextsLoaded carries the list of context units from the service.
type ContextsLoaded struct {
	Units []domain.ContextUnit
	Err   error
}

// ContextSelected signals a context unit was selected for detail view.
type ContextSelected struct {
	Unit domain.ContextUnit
}

// ContextDeleted signals a context unit was deleted.
type ContextDeleted struct {
	ID  string
	Err error
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
