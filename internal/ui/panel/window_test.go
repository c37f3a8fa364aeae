package panel

import (
	"testing"
	"time"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meettimer/internal/bus"
	"meettimer/internal/core/message"
	"meettimer/internal/core/model"
	"meettimer/internal/popup"
	"meettimer/internal/storage"
)

func openPanel(t *testing.T) (*Window, *storage.MemoryStore, *bus.Hub, <-chan message.Message) {
	t.Helper()
	app := test.NewTempApp(t)
	store := storage.NewMemoryStore()
	hub := bus.NewHub(nil)
	page := hub.Open("https://meet.google.com/abc-defg-hij")
	inbox, cancel := hub.Subscribe(page, 16)
	t.Cleanup(cancel)

	panel := Open(app, Deps{
		Popup:      popup.Deps{Store: store, Sender: hub, Tabs: hub},
		Subscriber: hub,
		Watcher:    store,
	}, nil)
	t.Cleanup(panel.Close)
	return panel, store, hub, inbox
}

func TestPanelButtonsDriveController(t *testing.T) {
	panel, store, _, inbox := openPanel(t)
	assert.Equal(t, "0 min", panel.target.Text)
	assert.Equal(t, popup.StatusReady, panel.status.Text)

	test.Tap(panel.startButton)
	assert.Equal(t, popup.StartLabelPause, panel.startButton.Text)
	assert.True(t, panel.showOnMeet.Disabled())
	assert.Equal(t, message.ToggleTimer(true), <-inbox)

	test.Tap(panel.resetButton)
	assert.Equal(t, popup.StartLabelStart, panel.startButton.Text)
	assert.False(t, panel.showOnMeet.Disabled())
	assert.Equal(t, message.ResetTimer(), <-inbox)

	stored, err := store.Get(t.Context(), model.KeyIsRunning)
	require.NoError(t, err)
	assert.Equal(t, false, stored[model.KeyIsRunning])
}

func TestPanelChecksDisableStart(t *testing.T) {
	panel, _, _, _ := openPanel(t)

	test.Tap(panel.showOnMeet)
	test.Tap(panel.showOnDeck)
	assert.True(t, panel.startButton.Disabled())
	assert.Equal(t, popup.StatusNoTarget, panel.status.Text)

	test.Tap(panel.showOnDeck)
	assert.False(t, panel.startButton.Disabled())
}

func TestPanelReceivesTimeUpdates(t *testing.T) {
	panel, store, hub, _ := openPanel(t)

	require.NoError(t, hub.Send(t.Context(), bus.PopupTarget, message.TimeUpdate(125)))
	assert.Eventually(t, func() bool { return panel.controller.State().CurrentSeconds == 125 }, time.Second, 10*time.Millisecond)

	require.NoError(t, store.Set(t.Context(), model.Values{model.KeyTargetMinutes: 9}))
	assert.Eventually(t, func() bool { return panel.controller.State().TargetMinutes == 9 }, time.Second, 10*time.Millisecond)
}
