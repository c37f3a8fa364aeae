package tray

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meettimer/internal/bus"
)

func TestMenuReflectsPages(t *testing.T) {
	var focused bus.Target
	opened := false
	manager := New(nil, Callbacks{
		OnOpenPopup: func() { opened = true },
		OnFocusPage: func(target bus.Target) { focused = target },
	})

	menu := manager.Menu()
	require.Len(t, menu.Items, 5)
	assert.True(t, menu.Items[2].Disabled)

	manager.SetStatus("03:20")
	manager.SetPages([]bus.Tab{
		{Target: "page-a", URL: "https://meet.google.com/a"},
		{Target: "page-b", URL: "https://docs.google.com/presentation/d/b/edit"},
	}, "page-b")

	menu = manager.Menu()
	assert.Equal(t, "Status: 03:20", menu.Items[0].Label)

	menu.Items[1].Action()
	assert.True(t, opened)

	pages := menu.Items[2].ChildMenu
	require.NotNil(t, pages)
	require.Len(t, pages.Items, 2)
	assert.False(t, pages.Items[0].Checked)
	assert.True(t, pages.Items[1].Checked)

	pages.Items[0].Action()
	assert.Equal(t, bus.Target("page-a"), focused)

	menu.Items[4].Action()
}
