package overlay

import (
	"context"
	"image/color"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"

	"meettimer/internal/page"
	"meettimer/internal/ui/animation"
)

// Config defines overlay visuals.
type Config struct {
	Title   string
	Opacity uint8
	Blink   animation.BlinkConfig
}

// DefaultConfig returns a small translucent badge.
func DefaultConfig() Config {
	return Config{
		Title:   "Meeting timer",
		Opacity: 200,
		Blink:   animation.DefaultBlinkConfig(),
	}
}

var (
	textColor      = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	alarmColor     = color.NRGBA{R: 217, G: 48, B: 37, A: 255}
	alarmDimColor  = color.NRGBA{R: 217, G: 48, B: 37, A: 90}
	idleBackground = color.NRGBA{R: 32, G: 33, B: 36}
)

// Window is the on-page timer badge.
type Window struct {
	window     fyne.Window
	config     Config
	background *canvas.Rectangle
	timerLabel *canvas.Text
	blinker    *animation.Blinker

	mu      sync.Mutex
	alarm   bool
	removed bool
}

type splashWindowDriver interface {
	CreateSplashWindow() fyne.Window
}

// Mount returns a page.Mount creating one badge window per call.
func Mount(app fyne.App, config Config) page.Mount {
	return func() page.Widget {
		return New(app, config)
	}
}

// New creates and shows a badge window.
func New(app fyne.App, config Config) *Window {
	overlay := &Window{config: config}

	fyne.DoAndWait(func() {
		window := app.NewWindow(config.Title)
		if driver, ok := app.Driver().(splashWindowDriver); ok {
			// Splash window is undecorated (no native frame/buttons).
			window = driver.CreateSplashWindow()
		}
		window.SetPadded(false)

		background := canvas.NewRectangle(overlay.backgroundColor(false, true))
		background.CornerRadius = 6

		timerLabel := canvas.NewText("00:00", textColor)
		timerLabel.Alignment = fyne.TextAlignCenter
		timerLabel.TextStyle = fyne.TextStyle{Bold: true, Monospace: true}
		timerLabel.TextSize = 20

		window.SetContent(container.NewStack(background, container.NewPadded(timerLabel)))
		window.Resize(window.Content().MinSize())

		overlay.window = window
		overlay.background = background
		overlay.timerLabel = timerLabel
		window.Show()
	})

	overlay.blinker = animation.NewBlinker(config.Blink, overlay.pulse)
	return overlay
}

// SetText updates the elapsed label.
func (overlay *Window) SetText(text string) {
	fyne.Do(func() {
		overlay.timerLabel.Text = text
		overlay.timerLabel.Refresh()
	})
}

// SetAlarm switches the blinking alarm look. Repeated calls are no-ops.
func (overlay *Window) SetAlarm(active bool) {
	overlay.mu.Lock()
	if overlay.removed || overlay.alarm == active {
		overlay.mu.Unlock()
		return
	}
	overlay.alarm = active
	overlay.mu.Unlock()

	if active {
		overlay.blinker.Start(context.Background())
		return
	}
	overlay.blinker.Stop()
	overlay.paint(false, true)
}

// Remove closes the badge and stops its animation.
func (overlay *Window) Remove() {
	overlay.mu.Lock()
	if overlay.removed {
		overlay.mu.Unlock()
		return
	}
	overlay.removed = true
	overlay.alarm = false
	overlay.mu.Unlock()

	overlay.blinker.Stop()
	fyne.Do(func() {
		overlay.window.Close()
	})
}

func (overlay *Window) pulse(on bool) {
	overlay.mu.Lock()
	alarm := overlay.alarm
	overlay.mu.Unlock()
	overlay.paint(alarm, on)
}

func (overlay *Window) paint(alarm, on bool) {
	fill := overlay.backgroundColor(alarm, on)
	fyne.Do(func() {
		overlay.background.FillColor = fill
		overlay.background.Refresh()
	})
}

func (overlay *Window) backgroundColor(alarm, on bool) color.Color {
	switch {
	case alarm && on:
		return alarmColor
	case alarm:
		return alarmDimColor
	default:
		bg := idleBackground
		bg.A = overlay.config.Opacity
		return bg
	}
}
