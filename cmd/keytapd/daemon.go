package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"keytap/internal/core/capture"
	"keytap/internal/core/model"
	"keytap/internal/ipc"
	"keytap/internal/logging"
	"keytap/internal/platform"
	"keytap/internal/storage"
	"keytap/internal/ui/capturewin"
	"keytap/internal/ui/preferences"
	"keytap/internal/ui/status"
	"keytap/internal/ui/tray"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"
)

const statusRefreshInterval = 250 * time.Millisecond

type daemonOptions struct {
	configPath string
	logLevel   string
	hidden     bool
}

// server is an IPC endpoint owned by the daemon.
type server interface {
	Start() error
	Stop() error
}

func run(options daemonOptions) error {
	settingsPath := options.configPath
	if settingsPath == "" {
		resolved, err := storage.ResolveSettingsPath(appName)
		if err != nil {
			return err
		}
		settingsPath = resolved
	}
	settings, loadErr := storage.LoadSettingsFile(settingsPath)
	if options.logLevel != "" {
		settings.LogLevel = options.logLevel
	}

	logger, err := newLogger(settings)
	if err != nil {
		return err
	}
	slog.SetDefault(logger.Logger)
	if loadErr != nil {
		logger.Warn("[config] settings file ignored, using defaults", "path", settingsPath, "error", loadErr)
	}

	state := capture.NewState(capture.Options{Logger: logger.Logger})
	defer state.Close()
	service := capture.NewService(state, logger.Logger)

	servers, err := startServers(settings, service, logger.Logger)
	if err != nil {
		return err
	}
	defer stopServers(servers, logger.Logger)

	fyneApp := app.NewWithID(appID)
	capWindow := capturewin.New(fyneApp, capturewin.Config{Title: settings.WindowTitle}, state)

	prefsWindow := preferences.New(fyneApp, settings, func(updated model.Settings) {
		if err := storage.SaveSettingsFile(settingsPath, updated); err != nil {
			logger.Error("[config] failed to save settings", "path", settingsPath, "error", err)
		}
	})

	var trayManager *tray.Manager
	if desktopApp, ok := fyneApp.(desktop.App); ok && settings.TrayEnabled {
		trayManager = tray.New(desktopApp, settings.WindowTitle, tray.Callbacks{
			OnShowWindow:  capWindow.Show,
			OnPreferences: prefsWindow.Show,
			OnQuit:        fyneApp.Quit,
		})
		trayManager.SetStatus(status.Idle)
	} else {
		capWindow.SetOnClose(fyneApp.Quit)
	}

	events := state.Subscribe(16)
	go func() {
		for event := range events {
			capWindow.HandleEvent(event)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if trayManager != nil {
		go refreshTrayStatus(ctx, state, trayManager)
	}
	watchSettings(ctx, settingsPath, logger, func(updated model.Settings) {
		fyne.Do(func() {
			prefsWindow.UpdateSettings(updated)
		})
	})

	if (settings.ShowWindow && !options.hidden) || trayManager == nil {
		capWindow.Show()
	}
	logger.Info("[daemon] started", "transport", string(settings.Transport), "settings", settingsPath)
	fyneApp.Run()
	logger.Info("[daemon] shutting down")
	return nil
}

// refreshTrayStatus mirrors the window snapshot into the tray until ctx is done.
func refreshTrayStatus(ctx context.Context, state *capture.State, trayManager *tray.Manager) {
	ticker := time.NewTicker(statusRefreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		line := status.DescribeSnapshot(state.Snapshot())
		fyne.Do(func() {
			trayManager.SetStatus(line)
		})
	}
}

func newLogger(settings model.Settings) (*logging.Logger, error) {
	logger, err := logging.New(logging.Options{Level: settings.LogLevel, Format: settings.LogFormat, Output: os.Stderr})
	if err == nil {
		return logger, nil
	}
	fallback, fallbackErr := logging.New(logging.Options{Output: os.Stderr})
	if fallbackErr != nil {
		return nil, fmt.Errorf("create logger: %w", fallbackErr)
	}
	fallback.Warn("[config] invalid logging settings, using defaults", "error", err)
	return fallback, nil
}

// startServers starts every endpoint the transport asks for. With transport
// "both", a missing session bus is tolerated as long as the socket is served.
// Another running instance is always fatal.
func startServers(settings model.Settings, capturer ipc.Capturer, logger *slog.Logger) ([]server, error) {
	var started []server

	if settings.Transport.ServesDBus() {
		dbusServer := ipc.NewDBusServer(settings.BusName, settings.ObjectPath, capturer, logger)
		switch err := dbusServer.Start(); {
		case err == nil:
			started = append(started, dbusServer)
		case errors.Is(err, platform.ErrAlreadyRunning) || settings.Transport == model.TransportDBus:
			return nil, fmt.Errorf("start dbus service: %w", err)
		default:
			logger.Warn("[ipc] dbus unavailable, serving socket only", "error", err)
		}
	}

	if settings.Transport.ServesSocket() {
		streamServer := ipc.NewStreamServer(settings.SocketPath, capturer, logger)
		if err := streamServer.Start(); err != nil {
			stopServers(started, logger)
			return nil, fmt.Errorf("start stream server: %w", err)
		}
		started = append(started, streamServer)
	}

	if len(started) == 0 {
		return nil, errors.New("no ipc transport configured")
	}
	return started, nil
}

func stopServers(servers []server, logger *slog.Logger) {
	for _, srv := range servers {
		if err := srv.Stop(); err != nil {
			logger.Warn("[ipc] failed to stop server", "error", err)
		}
	}
}

// watchSettings applies the log level from the settings file as it changes.
func watchSettings(ctx context.Context, settingsPath string, logger *logging.Logger, onChange func(model.Settings)) {
	if err := os.MkdirAll(filepath.Dir(settingsPath), 0o755); err != nil {
		logger.Warn("[config] settings watcher disabled", "error", err)
		return
	}
	err := storage.WatchSettings(ctx, settingsPath, logger.Logger, func(updated model.Settings) {
		if err := logger.SetLevel(updated.LogLevel); err != nil {
			logger.Warn("[config] ignoring log level", "level", updated.LogLevel, "error", err)
		} else {
			logger.Info("[config] settings reloaded", "log_level", updated.LogLevel)
		}
		onChange(updated)
	})
	if err != nil {
		logger.Warn("[config] settings watcher disabled", "error", err)
	}
}
