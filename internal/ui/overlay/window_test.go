package overlay

import (
	"testing"
	"time"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"

	"meettimer/internal/ui/animation"
)

func TestWindowRendersTextAndAlarm(t *testing.T) {
	app := test.NewTempApp(t)
	config := DefaultConfig()
	config.Blink = animation.BlinkConfig{On: time.Hour, Off: time.Hour}

	overlay := New(app, config)
	overlay.SetText("05:01")
	assert.Eventually(t, func() bool { return overlay.timerLabel.Text == "05:01" }, time.Second, 10*time.Millisecond)

	overlay.SetAlarm(true)
	overlay.SetAlarm(true)
	assert.True(t, overlay.blinker.Running())
	assert.Eventually(t, func() bool { return overlay.background.FillColor == alarmColor }, time.Second, 10*time.Millisecond)

	overlay.SetAlarm(false)
	assert.False(t, overlay.blinker.Running())
	assert.Eventually(t, func() bool { return overlay.background.FillColor != alarmColor }, time.Second, 10*time.Millisecond)

	overlay.Remove()
	overlay.Remove()
	overlay.SetAlarm(true)
	assert.False(t, overlay.blinker.Running())
}

func TestMountCreatesWidgets(t *testing.T) {
	app := test.NewTempApp(t)
	mount := Mount(app, DefaultConfig())

	first := mount()
	second := mount()
	assert.NotSame(t, first, second)
	first.Remove()
	second.Remove()
}
