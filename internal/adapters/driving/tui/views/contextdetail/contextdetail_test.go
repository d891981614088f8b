package contextdetail

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contextpilot/contextpilot-cli/internal/adapters/driving/tui/messages"
	"github.com/contextpilot/contextpilot-cli/internal/adapters/driving/tui/styles"
	"github.com/contextpilot/contextpilot-cli/internal/core/domain"
)

func testUnit() domain.ContextUnit {
	return domain.ContextUnit{
		ID:         "ctx-1",
		Type:       domain.ContextTypeDecision,
		Content:    "Use PostgreSQL for the new service",
		Confidence: 0.85,
		Tags:       []string{"database", "architecture"},
		Source:     "manual",
		Status:     domain.ContextStatusActive,
		CreatedAt:  time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC),
	}
}

func TestNewView(t *testing.T) {
	view := NewView(styles.DefaultStyles())

	require.NotNil(t, view)
	assert.Nil(t, view.Unit())
}

func TestView_View_NoUnit(t *testing.T) {
	view := NewView(styles.DefaultStyles())

	out := view.View()
	assert.Contains(t, out, "No context unit selected.")
}

func TestView_View_RendersUnit(t *testing.T) {
	view := NewView(styles.DefaultStyles())
	view.SetUnit(testUnit())

	out := view.View()
	assert.Contains(t, out, "ctx-1")
	assert.Contains(t, out, "decision")
	assert.Contains(t, out, "active")
	assert.Contains(t, out, "0.85")
	assert.Contains(t, out, "database, architecture")
	assert.Contains(t, out, "Use PostgreSQL for the new service")
}

func TestView_View_SupersededUnit(t *testing.T) {
	unit := testUnit()
	byID := "ctx-2"
	unit.Status = domain.ContextStatusSuperseded
	unit.SupersededBy = &byID

	view := NewView(styles.DefaultStyles())
	view.SetUnit(unit)

	out := view.View()
	assert.Contains(t, out, "superseded")
	assert.Contains(t, out, "ctx-2")
}

func TestView_View_LastUsed(t *testing.T) {
	unit := testUnit()
	used := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	unit.LastUsed = &used

	view := NewView(styles.DefaultStyles())
	view.SetUnit(unit)

	out := view.View()
	assert.Contains(t, out, "Last used")
}

func TestView_Update_EscGoesBack(t *testing.T) {
	view := NewView(styles.DefaultStyles())
	view.SetUnit(testUnit())

	view, cmd := view.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)

	msg := cmd()
	changed, ok := msg.(messages.ViewChanged)
	require.True(t, ok)
	assert.Equal(t, messages.ViewContexts, changed.View)
	_ = view
}

func TestView_Update_WindowSize(t *testing.T) {
	view := NewView(styles.DefaultStyles())

	view, cmd := view.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	assert.Nil(t, cmd)
	assert.True(t, view.ready)
}
