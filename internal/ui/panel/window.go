// Package panel is the popup surface: a short-lived window with the timer
// controls, backed by a popup.Controller.
package panel

import (
	"context"
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"meettimer/internal/bus"
	"meettimer/internal/core/message"
	"meettimer/internal/popup"
	"meettimer/internal/storage"
)

const inboxBuffer = 16

// Subscriber hands out inboxes on the bus.
type Subscriber interface {
	Subscribe(target bus.Target, buffer int) (<-chan message.Message, func())
}

// Deps are the collaborators of the panel. Watcher is optional.
type Deps struct {
	Popup      popup.Deps
	Subscriber Subscriber
	Watcher    storage.Watcher
	Logger     *slog.Logger
}

// Window handles the popup UI. All methods run on the fyne main goroutine.
type Window struct {
	window      fyne.Window
	controller  *popup.Controller
	ctx         context.Context
	cancel      context.CancelFunc
	target      *widget.Label
	current     *widget.Label
	status      *widget.Label
	startButton *widget.Button
	resetButton *widget.Button
	showOnMeet  *widget.Check
	showOnDeck  *widget.Check
	rendering   bool
	onClosed    func()
}

// Open builds the window, loads the timer and starts listening for page
// updates until the window is closed.
func Open(app fyne.App, deps Deps, onClosed func()) *Window {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	panel := &Window{
		window:   app.NewWindow("Meeting timer"),
		ctx:      ctx,
		cancel:   cancel,
		target:   widget.NewLabelWithStyle("", fyne.TextAlignCenter, fyne.TextStyle{Bold: true}),
		current:  widget.NewLabelWithStyle("00:00", fyne.TextAlignCenter, fyne.TextStyle{Monospace: true}),
		status:   widget.NewLabelWithStyle("", fyne.TextAlignCenter, fyne.TextStyle{Italic: true}),
		onClosed: onClosed,
	}

	decrease := widget.NewButtonWithIcon("", theme.ContentRemoveIcon(), func() {
		panel.controller.DecreaseTarget(panel.ctx)
	})
	increase := widget.NewButtonWithIcon("", theme.ContentAddIcon(), func() {
		panel.controller.IncreaseTarget(panel.ctx)
	})
	panel.startButton = widget.NewButtonWithIcon(popup.StartLabelStart, theme.MediaPlayIcon(), func() {
		panel.controller.ToggleRun(panel.ctx)
	})
	panel.resetButton = widget.NewButtonWithIcon("Reset", theme.MediaReplayIcon(), func() {
		panel.controller.Reset(panel.ctx)
	})
	panel.showOnMeet = widget.NewCheck("Show on Meet", func(checked bool) {
		if !panel.rendering {
			panel.controller.SetShowOnMeet(panel.ctx, checked)
		}
	})
	panel.showOnDeck = widget.NewCheck("Show on Presentation", func(checked bool) {
		if !panel.rendering {
			panel.controller.SetShowOnPresentation(panel.ctx, checked)
		}
	})

	form := container.NewVBox(
		widget.NewLabelWithStyle("Target", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewBorder(nil, nil, decrease, increase, panel.target),
		panel.current,
		container.NewGridWithColumns(2, panel.startButton, panel.resetButton),
		widget.NewSeparator(),
		panel.showOnMeet,
		panel.showOnDeck,
		layout.NewSpacer(),
		panel.status,
	)
	panel.window.SetContent(container.NewPadded(form))
	panel.window.Resize(fyne.NewSize(280, 320))
	panel.window.SetOnClosed(panel.closed)

	popupDeps := deps.Popup
	popupDeps.View = panel
	panel.controller = popup.Open(ctx, popupDeps)

	if deps.Subscriber != nil {
		inbox, unsubscribe := deps.Subscriber.Subscribe(bus.PopupTarget, inboxBuffer)
		go panel.listen(inbox)
		go func() {
			<-ctx.Done()
			unsubscribe()
		}()
	}
	if deps.Watcher != nil {
		err := deps.Watcher.Watch(ctx, func() {
			fyne.Do(func() {
				if panel.ctx.Err() == nil {
					panel.controller.Reload(panel.ctx)
				}
			})
		})
		if err != nil {
			logger.Warn("Store change notifications unavailable", "error", err)
		}
	}

	panel.window.Show()
	panel.window.RequestFocus()
	return panel
}

// Controller exposes the backing controller.
func (panel *Window) Controller() *popup.Controller {
	return panel.controller
}

// RequestFocus raises the window.
func (panel *Window) RequestFocus() {
	panel.window.RequestFocus()
}

// Close disposes the window.
func (panel *Window) Close() {
	panel.window.Close()
}

// Render applies a view model to the widgets.
func (panel *Window) Render(view popup.ViewModel) {
	panel.rendering = true
	defer func() { panel.rendering = false }()

	panel.target.SetText(view.TargetLabel)
	panel.current.SetText(view.CurrentLabel)
	panel.status.SetText(view.Status)

	panel.startButton.SetText(view.StartLabel)
	if view.StartLabel == popup.StartLabelPause {
		panel.startButton.SetIcon(theme.MediaPauseIcon())
	} else {
		panel.startButton.SetIcon(theme.MediaPlayIcon())
	}
	setEnabled(panel.startButton, !view.StartDisabled)

	panel.showOnMeet.SetChecked(view.ShowOnMeet)
	panel.showOnDeck.SetChecked(view.ShowOnPresentation)
	setEnabled(panel.showOnMeet, !view.TogglesDisabled)
	setEnabled(panel.showOnDeck, !view.TogglesDisabled)
}

func (panel *Window) listen(inbox <-chan message.Message) {
	for msg := range inbox {
		fyne.Do(func() {
			if panel.ctx.Err() == nil {
				panel.controller.Handle(msg)
			}
		})
	}
}

func (panel *Window) closed() {
	panel.cancel()
	if panel.onClosed != nil {
		panel.onClosed()
	}
}

type disableable interface {
	Enable()
	Disable()
}

func setEnabled(target disableable, enabled bool) {
	if enabled {
		target.Enable()
		return
	}
	target.Disable()
}
