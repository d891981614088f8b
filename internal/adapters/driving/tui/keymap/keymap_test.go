package keymap

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultKeyMap(t *testing.T) {
	km := DefaultKeyMap()

	require.NotNil(t, km)
}

func TestDefaultKeyMap_QuitBinding(t *testing.T) {
	km := DefaultKeyMap()

	keys := km.Quit.Keys()
	assert.Contains(t, keys, "q")
	assert.Contains(t, keys, "ctrl+c")
}

func TestDefaultKeyMap_HelpBinding(t *testing.T) {
	km := DefaultKeyMap()

	keys := km.Help.Keys()
	assert.Contains(t, keys, "?")
}

func TestDefaultKeyMap_BackBinding(t *testing.T) {
	km := DefaultKeyMap()

	keys := km.Back.Keys()
	assert.Contains(t, keys, "esc")
}

func TestDefaultKeyMap_NavigationBindings(t *testing.T) {
	km := DefaultKeyMap()

	assert.Contains(t, km.Up.Keys(), "up")
	assert.Contains(t, km.Up.Keys(), "k")
	assert.Contains(t, km.Down.Keys(), "down")
	assert.Contains(t, km.Down.Keys(), "j")
	assert.Contains(t, km.Select.Keys(), "enter")
}

func TestDefaultKeyMap_ToggleSupersededBinding(t *testing.T) {
	km := DefaultKeyMap()

	keys := km.ToggleSuperseded.Keys()
	assert.Contains(t, keys, "s")
}

func TestDefaultKeyMap_DeleteBinding(t *testing.T) {
	km := DefaultKeyMap()

	keys := km.Delete.Keys()
	assert.Contains(t, keys, "d")
	assert.Contains(t, keys, "delete")
}

func TestDefaultKeyMap_ReloadBinding(t *testing.T) {
	km := DefaultKeyMap()

	keys := km.Reload.Keys()
	assert.Contains(t, keys, "r")
}

func TestKeyMap_ShortHelp(t *testing.T) {
	km := DefaultKeyMap()

	bindings := km.ShortHelp()
	assert.Len(t, bindings, 2)
}

func TestKeyMap_ListHelp(t *testing.T) {
	km := DefaultKeyMap()

	bindings := km.ListHelp()
	assert.Len(t, bindings, 6)
}

func TestKeyMap_FullHelp(t *testing.T) {
	km := DefaultKeyMap()

	groups := km.FullHelp()
	require.Len(t, groups, 3)
	for _, group := range groups {
		assert.NotEmpty(t, group)
	}
}

func TestMatches(t *testing.T) {
	binding := key.NewBinding(key.WithKeys("q", "ctrl+c"))

	assert.True(t, Matches("q", binding))
	assert.True(t, Matches("ctrl+c", binding))
	assert.False(t, Matches("x", binding))
}
