package storage

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"keytap/internal/core/model"

	"github.com/fsnotify/fsnotify"
)

// WatchSettings reloads configPath whenever it changes and passes the result to onChange.
// The parent directory is watched so editors that replace the file are seen too.
// It returns once the watch is established; watching stops when ctx is done.
func WatchSettings(ctx context.Context, configPath string, logger *slog.Logger, onChange func(model.Settings)) error {
	if logger == nil {
		logger = slog.Default()
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create settings watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(configPath)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch settings directory: %w", err)
	}

	target := filepath.Clean(configPath)
	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				settings, err := LoadSettingsFile(configPath)
				if err != nil {
					logger.Warn("[settings] reload failed, keeping previous settings", "path", configPath, "error", err)
					continue
				}
				logger.Debug("[settings] reloaded", "path", configPath)
				onChange(settings)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("[settings] watcher error", "error", err)
			}
		}
	}()
	return nil
}
