// Package contextdetail provides the single context unit detail view for the TUI.
package contextdetail

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/contextpilot/contextpilot-cli/internal/adapters/driving/tui/keymap"
	"github.com/contextpilot/contextpilot-cli/internal/adapters/driving/tui/messages"
	"github.com/contextpilot/contextpilot-cli/internal/adapters/driving/tui/styles"
	"github.com/contextpilot/contextpilot-cli/internal/core/domain"
)

// timeLayout is the display format for timestamps.
const timeLayout = "2006-01-02 15:04:05"

// View shows a single context unit in full.
type View struct {
	styles *styles.Styles
	keys   *keymap.KeyMap

	unit   *domain.ContextUnit
	width  int
	height int
	ready  bool
}

// NewView creates a new context detail view.
func NewView(s *styles.Styles) *View {
	return &View{styles: s, keys: keymap.DefaultKeyMap()}
}

// SetUnit sets the unit to display.
func (v *View) SetUnit(unit domain.ContextUnit) {
	v.unit = &unit
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update handles messages for the detail view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.ready = true
		return v, nil

	case tea.KeyMsg:
		if key.Matches(msg, v.keys.Back) || msg.String() == "q" {
			return v, func() tea.Msg {
				return messages.ViewChanged{View: messages.ViewContexts}
			}
		}
	}

	return v, nil
}

// View renders the detail view.
func (v *View) View() string {
	if v.unit == nil {
		return v.styles.Muted.Render("No context unit selected.")
	}

	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Context Unit"))
	b.WriteString("\n\n")

	b.WriteString(v.renderField("ID", v.unit.ID))
	b.WriteString(v.renderField("Type", v.unit.Type.String()))
	b.WriteString(v.renderField("Status", v.renderStatus()))
	b.WriteString(v.renderField("Confidence", fmt.Sprintf("%.2f", v.unit.Confidence)))
	b.WriteString(v.renderField("Source", v.unit.Source))
	if len(v.unit.Tags) > 0 {
		b.WriteString(v.renderField("Tags", strings.Join(v.unit.Tags, ", ")))
	}
	if v.unit.SupersededBy != nil {
		b.WriteString(v.renderField("Superseded by", *v.unit.SupersededBy))
	}
	b.WriteString(v.renderField("Created", v.unit.CreatedAt.Local().Format(timeLayout)))
	if v.unit.LastUsed != nil {
		b.WriteString(v.renderField("Last used", v.unit.LastUsed.Local().Format(timeLayout)))
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Subtitle.Render("Content"))
	b.WriteString("\n")
	b.WriteString(v.styles.Normal.Render(v.unit.Content))
	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[esc] back  [ctrl+c] quit"))

	return b.String()
}

// renderField renders a labelled field line.
func (v *View) renderField(label, value string) string {
	return v.styles.Muted.Render(fmt.Sprintf("%-14s", label)) +
		v.styles.Normal.Render(value) + "\n"
}

// renderStatus renders the status with its colour.
func (v *View) renderStatus() string {
	if v.unit.IsActive() {
		return v.styles.Active.Render(v.unit.Status.String())
	}
	return v.styles.Superseded.Render(v.unit.Status.String())
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Unit returns the currently displayed unit.
func (v *View) Unit() *domain.ContextUnit {
	return v.unit
}
