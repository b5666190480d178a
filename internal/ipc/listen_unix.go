//go:build !windows

package ipc

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"keytap/internal/platform"
)

const (
	socketFileName = "keytap.sock"
	probeTimeout   = 250 * time.Millisecond
)

// DefaultEndpoint returns the per-user socket path inside the runtime directory.
func DefaultEndpoint() (string, error) {
	runtimeDir, err := platform.NewService().RuntimeDir("keytap")
	if err != nil {
		return "", fmt.Errorf("resolve socket path: %w", err)
	}
	return filepath.Join(runtimeDir, socketFileName), nil
}

// listen claims the socket path. A socket that still accepts connections
// belongs to a running daemon; a dead one is removed.
func listen(path string) (net.Listener, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create socket dir: %w", err)
	}

	if conn, err := net.DialTimeout("unix", path, probeTimeout); err == nil {
		_ = conn.Close()
		return nil, platform.ErrAlreadyRunning
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("remove stale socket: %w", err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, err
	}
	if err := os.Chmod(path, 0o600); err != nil {
		_ = listener.Close()
		return nil, fmt.Errorf("restrict socket permissions: %w", err)
	}
	if unixListener, ok := listener.(*net.UnixListener); ok {
		unixListener.SetUnlinkOnClose(true)
	}
	return listener, nil
}
