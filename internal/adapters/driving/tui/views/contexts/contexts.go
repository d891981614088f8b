// Package contexts provides the context unit list view for the TUI.
package contexts

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/contextpilot/contextpilot-cli/internal/adapters/driving/tui/keymap"
	"github.com/contextpilot/contextpilot-cli/internal/adapters/driving/tui/messages"
	"github.com/contextpilot/contextpilot-cli/internal/adapters/driving/tui/styles"
	"github.com/contextpilot/contextpilot-cli/internal/core/domain"
	"github.com/contextpilot/contextpilot-cli/internal/core/ports/driving"
)

// View is the context unit list view.
type View struct {
	styles         *styles.Styles
	keys           *keymap.KeyMap
	contextService driving.ContextService

	units          []domain.ContextUnit
	showSuperseded bool
	selected       int
	width          int
	height         int
	ready          bool
	err            error
	loading        bool
}

// NewView creates a new contexts view.
func NewView(s *styles.Styles, contextService driving.ContextService) *View {
	return &View{
		styles:         s,
		keys:           keymap.DefaultKeyMap(),
		contextService: contextService,
		units:          []domain.ContextUnit{},
	}
}

// Init initialises the view and loads context units.
func (v *View) Init() tea.Cmd {
	v.loading = true
	return v.loadUnits()
}

// loadUnits returns a command that loads units from the service.
func (v *View) loadUnits() tea.Cmd {
	return func() tea.Msg {
		if v.contextService == nil {
			return messages.ContextsLoaded{Err: fmt.Errorf("context service not available")}
		}

		units, err := v.contextService.List(context.Background(), v.showSuperseded)
		return messages.ContextsLoaded{Units: units, Err: err}
	}
}

// Update handles messages for the contexts view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.ready = true
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.ContextsLoaded:
		v.loading = false
		if msg.Err != nil {
			v.err = msg.Err
		} else {
			v.units = msg.Units
			v.err = nil
			if v.selected >= len(v.units) {
				v.selected = 0
			}
		}
		return v, nil

	case messages.ContextDeleted:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		// Reload units after removal
		cmd := v.loadUnits()
		return v, cmd
	}

	return v, nil
}

// handleKeyMsg handles key presses.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Up):
		if v.selected > 0 {
			v.selected--
		}
	case key.Matches(msg, v.keys.Down):
		if v.selected < len(v.units)-1 {
			v.selected++
		}
	case key.Matches(msg, v.keys.Select):
		// Navigate to unit detail
		if len(v.units) > 0 && v.selected < len(v.units) {
			unit := v.units[v.selected]
			return v, func() tea.Msg {
				return messages.ContextSelected{Unit: unit}
			}
		}
	case key.Matches(msg, v.keys.ToggleSuperseded):
		v.showSuperseded = !v.showSuperseded
		v.loading = true
		cmd := v.loadUnits()
		return v, cmd
	case key.Matches(msg, v.keys.Delete):
		if len(v.units) > 0 && v.selected < len(v.units) {
			cmd := v.deleteUnit(v.units[v.selected].ID)
			return v, cmd
		}
	case key.Matches(msg, v.keys.Reload):
		v.loading = true
		cmd := v.loadUnits()
		return v, cmd
	}

	return v, nil
}

// deleteUnit returns a command that deletes a unit.
func (v *View) deleteUnit(id string) tea.Cmd {
	return func() tea.Msg {
		if v.contextService == nil {
			return messages.ContextDeleted{ID: id, Err: fmt.Errorf("context service not available")}
		}

		_, err := v.contextService.Delete(context.Background(), id)
		return messages.ContextDeleted{ID: id, Err: err}
	}
}

// View renders the contexts view.
func (v *View) View() string {
	var b strings.Builder

	// Title
	title := "Context Units"
	if v.showSuperseded {
		title = "Context Units (including superseded)"
	}
	b.WriteString(v.styles.Title.Render(title))
	b.WriteString("\n\n")

	// Loading state
	if v.loading {
		b.WriteString(v.styles.Muted.Render("Loading context units..."))
		b.WriteString("\n\n")
		b.WriteString(v.renderHelp())
		return b.String()
	}

	// Error state
	if v.err != nil {
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
		b.WriteString("\n\n")
		b.WriteString(v.renderHelp())
		return b.String()
	}

	// Empty state
	if len(v.units) == 0 {
		b.WriteString(v.styles.Muted.Render("No context units stored."))
		b.WriteString("\n\n")
		b.WriteString(v.renderHelp())
		return b.String()
	}

	// Units list
	for i := range v.units {
		line := v.renderUnit(i, &v.units[i])
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.renderHelp())

	return b.String()
}

// renderUnit renders a single unit line.
func (v *View) renderUnit(index int, unit *domain.ContextUnit) string {
	indicator := "  "
	if index == v.selected {
		indicator = "> "
	}

	// Format: > [type] content (0.90)
	typeStr := fmt.Sprintf("[%s]", unit.Type)
	content := unit.Content
	suffix := fmt.Sprintf(" (%.2f)", unit.Confidence)

	// Truncate content if needed
	maxContentLen := v.width - len(typeStr) - len(suffix) - 14
	if maxContentLen < 10 {
		maxContentLen = 10
	}
	if len(content) > maxContentLen {
		content = content[:maxContentLen-3] + "..."
	}

	var line string
	switch {
	case index == v.selected:
		line = v.styles.Selected.Render(fmt.Sprintf("%s%-12s %s%s", indicator, typeStr, content, suffix))
	case !unit.IsActive():
		line = v.styles.Normal.Render(indicator) +
			v.styles.Superseded.Render(fmt.Sprintf("%-12s %s%s", typeStr, content, suffix))
	default:
		line = v.styles.Normal.Render(indicator) +
			v.styles.Subtitle.Render(fmt.Sprintf("%-12s ", typeStr)) +
			v.styles.Normal.Render(content) +
			v.styles.Muted.Render(suffix)
	}

	return line
}

// renderHelp renders the help footer.
func (v *View) renderHelp() string {
	return v.styles.Help.Render("[enter] details  [s] superseded  [d] delete  [r] reload  [?] help  [q] quit")
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Units returns the current list of units.
func (v *View) Units() []domain.ContextUnit {
	return v.units
}

// SelectedIndex returns the currently selected unit index.
func (v *View) SelectedIndex() int {
	return v.selected
}

// ShowSuperseded returns whether superseded units are visible.
func (v *View) ShowSuperseded() bool {
	return v.showSuperseded
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
