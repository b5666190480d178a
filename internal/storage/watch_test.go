package storage

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"keytap/internal/core/model"

	"github.com/stretchr/testify/require"
)

func TestWatchSettingsReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: info\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	changes := make(chan model.Settings, 4)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	require.NoError(t, WatchSettings(ctx, path, logger, func(settings model.Settings) {
		changes <- settings
	}))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("log_level: error\n"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte("log_level: debug\n"), 0o644))

	deadline := time.After(5 * time.Second)
	for {
		select {
		case settings := <-changes:
			if settings.LogLevel == "debug" {
				return
			}
		case <-deadline:
			t.Fatalf("settings change not observed")
		}
	}
}

func TestWatchSettingsMissingDirectory(t *testing.T) {
	err := WatchSettings(context.Background(), filepath.Join(t.TempDir(), "missing", "settings.yaml"), nil, func(model.Settings) {})
	require.Error(t, err)
}
