package page

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meettimer/internal/core/message"
	"meettimer/internal/core/model"
	"meettimer/internal/popup"
)

func (h *harness) openPopup(t *testing.T) *popup.Controller {
	t.Helper()
	return popup.Open(t.Context(), popup.Deps{Store: h.store, Sender: h.hub, Tabs: h.hub, Clock: h.clock})
}

func TestPopupResumeWithoutPageKeepsPausedElapsed(t *testing.T) {
	first := newHarness(t, meetURL)
	first.load(t)
	first.send(t, message.ToggleTimer(true))
	first.tickAfter(t, 10*time.Second)
	first.send(t, message.ToggleTimer(false))
	require.Equal(t, "00:10", first.widget(t).text)

	first.controller.Close()
	first.hub.Close(first.controller.target)
	first.clock.Advance(20 * time.Second)

	ctrl := first.openPopup(t)
	ctrl.ToggleRun(t.Context())
	require.True(t, ctrl.State().IsRunning)
	first.clock.Advance(5 * time.Second)

	second := newHarnessOn(t, meetURL, first.store, first.hub, first.clock)
	second.load(t)
	assert.Equal(t, "00:15", second.widget(t).text)
}

func TestPopupResetClearsStaleStart(t *testing.T) {
	h := newHarness(t, meetURL)
	require.NoError(t, h.store.Set(t.Context(), model.Values{
		model.KeyIsRunning: true,
		model.KeyStartTime: h.clock.Now().Add(-time.Hour).UnixMilli(),
	}))

	ctrl := h.openPopup(t)
	ctrl.Reset(t.Context())

	stored := h.stored(t)
	assert.False(t, stored.IsRunning)
	assert.False(t, stored.HasStart())
	assert.Zero(t, stored.PausedTime)
	assert.Zero(t, stored.CurrentSeconds)

	ctrl.ToggleRun(t.Context())
	h.load(t)
	assert.Equal(t, "00:00", h.widget(t).text)
	assert.True(t, h.controller.State().IsRunning)
}
