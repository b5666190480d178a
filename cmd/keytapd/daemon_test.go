//go:build !windows

package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"keytap/internal/core/capture"
	"keytap/internal/core/model"
	"keytap/internal/platform"
	"keytap/internal/ui/tray"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartServersSocketOnly(t *testing.T) {
	dir, err := os.MkdirTemp("", "ktd")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(dir) })

	settings := model.DefaultSettings()
	settings.Transport = model.TransportSocket
	settings.SocketPath = filepath.Join(dir, "keytap.sock")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := capture.NewService(capture.NewState(capture.Options{Logger: logger}), logger)

	servers, err := startServers(settings, service, logger)
	require.NoError(t, err)
	require.Len(t, servers, 1)
	defer stopServers(servers, logger)

	_, err = startServers(settings, service, logger)
	assert.ErrorIs(t, err, platform.ErrAlreadyRunning)
}

func TestNewLoggerFallsBackOnInvalidSettings(t *testing.T) {
	settings := model.DefaultSettings()
	settings.LogLevel = "chatty"

	logger, err := newLogger(settings)
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, logger.Level())
}

type recordingTrayApp struct {
	mu    sync.Mutex
	menus []*fyne.Menu
}

func (app *recordingTrayApp) SetSystemTrayMenu(menu *fyne.Menu) {
	app.mu.Lock()
	defer app.mu.Unlock()
	app.menus = append(app.menus, menu)
}

func (app *recordingTrayApp) SetSystemTrayIcon(fyne.Resource) {}

func (app *recordingTrayApp) SetSystemTrayWindow(fyne.Window) {}

func (app *recordingTrayApp) statusLine() string {
	app.mu.Lock()
	defer app.mu.Unlock()
	if len(app.menus) == 0 {
		return ""
	}
	return app.menus[len(app.menus)-1].Items[0].Label
}

func TestRefreshTrayStatusFollowsSnapshot(t *testing.T) {
	fyneApp := test.NewApp()
	t.Cleanup(fyneApp.Quit)

	state := capture.NewState(capture.Options{})
	service := capture.NewService(state, nil)
	trayApp := &recordingTrayApp{}
	trayManager := tray.New(trayApp, "KeyTap", tray.Callbacks{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go refreshTrayStatus(ctx, state, trayManager)

	assert.Eventually(t, func() bool {
		return trayApp.statusLine() == "Status: Idle"
	}, 2*time.Second, 20*time.Millisecond)

	require.NoError(t, service.Begin(5000, 3))
	state.Append([]rune("y"))
	assert.Eventually(t, func() bool {
		return strings.HasPrefix(trayApp.statusLine(), "Status: Taps: 1 / 3,")
	}, 2*time.Second, 20*time.Millisecond)
}
