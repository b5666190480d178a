package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrAlreadyRunning indicates another daemon instance owns the endpoint.
	ErrAlreadyRunning = errors.New("instance already running")

	// ErrAutostartUnsupported indicates login autostart is not available on this system.
	ErrAutostartUnsupported = errors.New("autostart unsupported")
)

// Entry describes a program registered to start at login.
type Entry struct {
	Name string
	Exec string
	Args []string
}

func (entry Entry) validate(action string) error {
	if strings.TrimSpace(entry.Name) == "" {
		return fmt.Errorf("%s autostart: app name is empty", action)
	}
	if action == "enable" && strings.TrimSpace(entry.Exec) == "" {
		return fmt.Errorf("%s autostart: exec path is empty", action)
	}
	return nil
}

// slug turns an app name into a lowercase file-name friendly identifier.
func slug(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = "keytap"
	}
	return strings.ReplaceAll(name, " ", "-")
}

// Service defines OS-specific helpers needed by the daemon and the CLI.
type Service interface {
	ConfigDir() (string, error)
	RuntimeDir(appName string) (string, error)
	EnableAutostart(entry Entry) error
	DisableAutostart(appName string) error
}

type platformService struct{}

// NewService returns a platform-specific implementation.
func NewService() Service {
	return &platformService{}
}

// ConfigDir returns the OS-standard configuration directory.
func (service *platformService) ConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err == nil && configDir != "" {
		return configDir, nil
	}

	homeDir, homeErr := os.UserHomeDir()
	if homeErr != nil {
		if err != nil {
			return "", fmt.Errorf("get config dir: %w", err)
		}
		return "", fmt.Errorf("get config dir: %w", homeErr)
	}
	return fallbackConfigDir(homeDir), nil
}

// RuntimeDir returns a per-user directory for sockets, creating it with mode 0700.
func (service *platformService) RuntimeDir(appName string) (string, error) {
	base := os.Getenv("XDG_RUNTIME_DIR")
	if base == "" {
		base = filepath.Join(os.TempDir(), fmt.Sprintf("%s-%d", slug(appName), os.Getuid()))
	} else {
		base = filepath.Join(base, slug(appName))
	}
	if err := os.MkdirAll(base, 0o700); err != nil {
		return "", fmt.Errorf("create runtime dir: %w", err)
	}
	return base, nil
}
