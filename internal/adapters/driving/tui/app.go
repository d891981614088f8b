package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/contextpilot/contextpilot-cli/internal/adapters/driving/tui/messages"
	"github.com/contextpilot/contextpilot-cli/internal/adapters/driving/tui/styles"
	"github.com/contextpilot/contextpilot-cli/internal/adapters/driving/tui/views/contextdetail"
	"github.com/contextpilot/contextpilot-cli/internal/adapters/driving/tui/views/contexts"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	// styles holds the TUI styles.
	styles *styles.Styles

	// contextsView is the context unit list view component.
	contextsView *contexts.View

	// detailView is the single unit detail view component.
	detailView *contextdetail.View

	// currentView tracks which view is active.
	currentView messages.ViewType

	// err holds the last error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has initialised.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()

	return &App{
		ports:        ports,
		ctx:          context.Background(),
		styles:       s,
		contextsView: contexts.NewView(s, ports.Context),
		detailView:   contextdetail.NewView(s),
		currentView:  messages.ViewContexts,
	}, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Init implements tea.Model.
// It runs initial commands when the program starts.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle("contextpilot - Context Browser"),
		a.contextsView.Init(),
	)
}

// Update implements tea.Model.
// It handles messages and updates the model state.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.contextsView.SetDimensions(msg.Width, msg.Height)
		a.detailView.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		// Global quit with ctrl+c
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}

		switch a.currentView {
		case messages.ViewContexts:
			switch msg.String() {
			case "q":
				return a, tea.Quit
			case "?":
				a.currentView = messages.ViewHelp
				return a, nil
			}
			a.contextsView, cmd = a.contextsView.Update(msg)
			return a, cmd

		case messages.ViewContextDetail:
			a.detailView, cmd = a.detailView.Update(msg)
			return a, cmd

		case messages.ViewHelp:
			if msg.Type == tea.KeyEsc || msg.String() == "q" {
				a.currentView = messages.ViewContexts
				return a, nil
			}
			return a, nil
		}
		return a, nil

	case messages.ViewChanged:
		a.currentView = msg.View
		if msg.View == messages.ViewContexts {
			return a, a.contextsView.Init()
		}
		return a, nil

	case messages.ContextSelected:
		a.detailView.SetUnit(msg.Unit)
		a.currentView = messages.ViewContextDetail
		return a, a.detailView.Init()

	case messages.ContextsLoaded, messages.ContextDeleted:
		a.contextsView, cmd = a.contextsView.Update(msg)
		return a, cmd

	case messages.ErrorOccurred:
		a.err = msg.Err
		return a, nil

	case messages.Quit:
		return a, tea.Quit
	}

	// Forward other messages to the active view
	switch a.currentView {
	case messages.ViewContexts:
		a.contextsView, cmd = a.contextsView.Update(msg)
	case messages.ViewContextDetail:
		a.detailView, cmd = a.detailView.Update(msg)
	case messages.ViewHelp:
		// Help view doesn't need to handle other messages
	}

	return a, cmd
}

// View implements tea.Model.
// It renders the current view as a string.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewContexts:
		return a.contextsView.View()
	case messages.ViewContextDetail:
		return a.detailView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	default:
		return a.contextsView.View()
	}
}

// viewHelp renders the help view.
func (a *App) viewHelp() string {
	return `Help

Navigation:
  esc         Back
  ctrl+c      Quit

Context list:
  j/k, ↑/↓    Navigate units
  enter       View unit details
  s           Toggle superseded units
  d           Delete selected unit
  r           Reload
  q           Quit

[esc] back to list`
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions (for testing).
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.contextsView.SetDimensions(width, height)
	a.detailView.SetDimensions(width, height)
}
