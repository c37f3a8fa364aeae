package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	prom "github.com/prometheus/client_golang/prometheus"

	"meettimer/internal/bus"
	"meettimer/internal/config"
	"meettimer/internal/core/message"
	"meettimer/internal/core/timekeeper"
	"meettimer/internal/logfields"
	"meettimer/internal/metrics"
	"meettimer/internal/page"
	"meettimer/internal/platform"
	"meettimer/internal/popup"
	"meettimer/internal/relay"
	"meettimer/internal/schedule"
	"meettimer/internal/storage"
	"meettimer/internal/ui/overlay"
	"meettimer/internal/ui/panel"
	"meettimer/internal/ui/tray"
)

var version = "dev"

const pageInboxBuffer = 16

// CLI flags. Every flag can also be set from the environment or a .env file.
type CLI struct {
	Config      string           `short:"c" help:"Settings file path" env:"MEETTIMER_CONFIG"`
	StoreDriver string           `help:"State store driver (memory, yaml, sqlite)" env:"MEETTIMER_STORE_DRIVER"`
	StorePath   string           `help:"State store location" env:"MEETTIMER_STORE_PATH"`
	Page        []string         `help:"Page address to host, repeatable" env:"MEETTIMER_PAGES" sep:","`
	Document    []string         `help:"HTML file backing the page at the same position" env:"MEETTIMER_DOCUMENTS" sep:","`
	LogLevel    string           `help:"Log level (debug, info, warn, error)" env:"MEETTIMER_LOG_LEVEL"`
	Verbose     bool             `short:"v" help:"Enable verbose logging"`
	Version     kong.VersionFlag `name:"version" help:"Show version and exit"`
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
	}

	var cli CLI
	kong.Parse(&cli,
		kong.Name(config.AppName),
		kong.Description("Elapsed-time overlay for video calls and slide decks."),
		kong.Vars{"version": version},
	)

	if err := run(cli); err != nil {
		slog.Error("Meeting timer failed", logfields.Error(err))
		os.Exit(1)
	}
}

func run(cli CLI) error {
	settings, settingsErr := loadSettings(cli)
	level := settings.Level()
	if cli.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	if settingsErr != nil {
		logger.Warn("Using default settings", logfields.Error(settingsErr))
	}

	guard, err := platform.AcquireSingleInstance(config.AppName)
	if errors.Is(err, platform.ErrAlreadyRunning) {
		logger.Info("Meeting timer already running, opening its popup")
		return platform.Signal(config.AppName, platform.RequestPopup)
	}
	if err != nil {
		return err
	}
	defer func() { _ = guard.Release() }()

	pageConfig, err := settings.PageConfig()
	if err != nil {
		return err
	}

	recorder := metrics.NewPrometheusRecorder(prom.NewRegistry())

	storePath, err := resolveStorePath(settings)
	if err != nil {
		return err
	}
	backend, err := storage.Open(settings.StoreDriver, storePath, logger)
	if err != nil {
		return err
	}
	defer func() { _ = backend.Close() }()
	logger.Info("State store ready", logfields.Store(settings.StoreDriver), logfields.Path(storePath))

	hub := bus.NewHub(recorder)
	background := relay.New(logger, recorder)
	background.Attach(hub)
	background.OnInstalled()

	clock := clockwork.NewRealClock()
	scheduler, err := schedule.New(clock)
	if err != nil {
		return err
	}
	scheduler.Start()
	defer func() { _ = scheduler.Stop() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fyneApp := app.NewWithID("io.meettimer.host")
	fyneApp.SetIcon(theme.HistoryIcon())
	desktopApp, ok := fyneApp.(desktop.App)
	if !ok {
		return errors.New("system tray unsupported on this platform")
	}

	trayWindow := fyneApp.NewWindow("Meeting timer")
	trayWindow.SetContent(widget.NewLabel("Meeting timer is running in the system tray."))
	trayWindow.SetCloseIntercept(func() {
		trayWindow.Hide()
	})
	trayWindow.Hide()
	desktopApp.SetSystemTrayWindow(trayWindow)

	controllers := make(map[bus.Target]*page.Controller, len(cli.Page))
	mount := overlay.Mount(fyneApp, overlay.DefaultConfig())
	for i, url := range cli.Page {
		document := platform.NewFileDocument(url, documentAt(cli.Document, i), logger)
		target := hub.Open(url)
		controller := page.New(pageConfig, page.Deps{
			Target:    target,
			Document:  document,
			Mount:     mount,
			Store:     backend,
			Sender:    hub,
			Scheduler: scheduler,
			Navigator: hub,
			Clock:     clock,
			Logger:    logger,
			Metrics:   recorder,
		})
		controllers[target] = controller

		inbox, unsubscribe := hub.Subscribe(target, pageInboxBuffer)
		go func() {
			defer unsubscribe()
			_ = controller.Run(ctx, inbox)
		}()
		if err := document.Watch(ctx, func(trigger page.Trigger) { controller.Trigger(trigger) }); err != nil {
			logger.Warn("Document changes not observed", logfields.URL(url), logfields.Error(err))
		}
	}

	var popupWindow *panel.Window
	openPopup := func() {
		if popupWindow != nil {
			popupWindow.RequestFocus()
			return
		}
		watcher, _ := backend.(storage.Watcher)
		popupWindow = panel.Open(fyneApp, panel.Deps{
			Popup: popup.Deps{
				Store:      backend,
				Sender:     hub,
				Tabs:       hub,
				Classifier: pageConfig.Classifier,
				Clock:      clock,
				Logger:     logger,
				Metrics:    recorder,
			},
			Subscriber: hub,
			Watcher:    watcher,
			Logger:     logger,
		}, func() { popupWindow = nil })
	}

	var trayManager *tray.Manager
	focusPage := func(target bus.Target) {
		if !hub.Activate(target) {
			return
		}
		if controller, ok := controllers[target]; ok {
			controller.Trigger(page.TriggerFocus)
		}
		trayManager.SetPages(hub.Tabs(), target)
	}
	trayManager = tray.New(desktopApp, tray.Callbacks{
		OnOpenPopup: openPopup,
		OnFocusPage: focusPage,
		OnQuit: func() {
			fyneApp.Quit()
		},
	})
	if active, ok := hub.Active(); ok {
		trayManager.SetPages(hub.Tabs(), active.Target)
	}

	hub.Tap(func(envelope bus.Envelope) {
		if envelope.Message.Action != message.ActionTimeUpdate {
			return
		}
		elapsed := timekeeper.Format(envelope.Message.CurrentSeconds)
		fyne.Do(func() {
			trayManager.SetStatus(elapsed)
		})
	})

	go guard.Serve(ctx, func(request string) {
		fyne.Do(func() {
			switch request {
			case platform.RequestPopup:
				openPopup()
			case platform.RequestFocus:
				if active, ok := hub.Active(); ok {
					focusPage(active.Target)
				}
			default:
				logger.Debug("Unknown instance request", "request", request)
			}
		})
	})

	go func() {
		<-ctx.Done()
		fyne.Do(fyneApp.Quit)
	}()

	fyneApp.Run()
	background.OnSuspend()
	stop()
	return nil
}

func loadSettings(cli CLI) (config.Settings, error) {
	path := cli.Config
	if path == "" {
		defaultPath, err := config.DefaultPath(config.AppName)
		if err != nil {
			return applyFlags(config.DefaultSettings(), cli), err
		}
		path = defaultPath
	}
	settings, err := config.LoadSettings(path)
	return applyFlags(settings, cli), err
}

func applyFlags(settings config.Settings, cli CLI) config.Settings {
	if cli.StoreDriver != "" {
		settings.StoreDriver = cli.StoreDriver
	}
	if cli.StorePath != "" {
		settings.StorePath = cli.StorePath
	}
	if cli.LogLevel != "" {
		settings.LogLevel = cli.LogLevel
	}
	return settings
}

func resolveStorePath(settings config.Settings) (string, error) {
	if settings.StorePath != "" || settings.StoreDriver == storage.DriverMemory {
		return settings.StorePath, nil
	}
	path, err := storage.DefaultStatePath(config.AppName)
	if err != nil {
		return "", err
	}
	if settings.StoreDriver == storage.DriverSQLite {
		path = filepath.Join(filepath.Dir(path), "state.db")
	}
	return path, nil
}

func documentAt(documents []string, index int) string {
	if index < len(documents) {
		return documents[index]
	}
	return ""
}
