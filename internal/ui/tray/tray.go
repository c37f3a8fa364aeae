package tray

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"

	"meettimer/internal/bus"
)

// Callbacks defines tray action handlers.
type Callbacks struct {
	OnOpenPopup func()
	OnFocusPage func(target bus.Target)
	OnQuit      func()
}

// Manager handles system tray state. Methods run on the fyne main goroutine.
type Manager struct {
	app        desktop.App
	statusItem *fyne.MenuItem
	callbacks  Callbacks
	tabs       []bus.Tab
	active     bus.Target
}

// New creates a tray manager with the provided callbacks.
func New(app desktop.App, callbacks Callbacks) *Manager {
	manager := &Manager{
		app:       app,
		callbacks: callbacks,
	}
	manager.statusItem = fyne.NewMenuItem("Status: 00:00", nil)
	manager.statusItem.Disabled = true
	manager.refreshMenu()
	return manager
}

// SetStatus updates the elapsed label.
func (manager *Manager) SetStatus(elapsed string) {
	manager.statusItem.Label = fmt.Sprintf("Status: %s", elapsed)
	manager.refreshMenu()
}

// SetPages replaces the page list. active is marked as checked.
func (manager *Manager) SetPages(tabs []bus.Tab, active bus.Target) {
	manager.tabs = append([]bus.Tab(nil), tabs...)
	manager.active = active
	manager.refreshMenu()
}

// Menu builds the current tray menu.
func (manager *Manager) Menu() *fyne.Menu {
	open := fyne.NewMenuItem("Open timer", func() {
		if manager.callbacks.OnOpenPopup != nil {
			manager.callbacks.OnOpenPopup()
		}
	})

	pages := fyne.NewMenuItem("Focus page", nil)
	items := make([]*fyne.MenuItem, 0, len(manager.tabs))
	for _, tab := range manager.tabs {
		target := tab.Target
		item := fyne.NewMenuItem(tab.URL, func() {
			if manager.callbacks.OnFocusPage != nil {
				manager.callbacks.OnFocusPage(target)
			}
		})
		item.Checked = target == manager.active
		items = append(items, item)
	}
	if len(items) == 0 {
		pages.Disabled = true
	} else {
		pages.ChildMenu = fyne.NewMenu("", items...)
	}

	quit := fyne.NewMenuItem("Quit", func() {
		if manager.callbacks.OnQuit != nil {
			manager.callbacks.OnQuit()
		}
	})
	quit.IsQuit = true

	return fyne.NewMenu("Meeting timer", manager.statusItem, open, pages, fyne.NewMenuItemSeparator(), quit)
}

func (manager *Manager) refreshMenu() {
	if manager.app != nil {
		manager.app.SetSystemTrayMenu(manager.Menu())
	}
}
