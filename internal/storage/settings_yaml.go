package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"keytap/internal/core/model"

	"github.com/godbus/dbus/v5"
	"gopkg.in/yaml.v3"
)

const settingsFileName = "settings.yaml"

type yamlSettings struct {
	Transport  string `yaml:"transport,omitempty"`
	BusName    string `yaml:"bus_name,omitempty"`
	ObjectPath string `yaml:"object_path,omitempty"`
	SocketPath string `yaml:"socket_path,omitempty"`
	LogLevel   string `yaml:"log_level,omitempty"`
	LogFormat  string `yaml:"log_format,omitempty"`

	ShowWindow  *bool  `yaml:"show_window,omitempty"`
	TrayEnabled *bool  `yaml:"tray_enabled,omitempty"`
	WindowTitle string `yaml:"window_title,omitempty"`
}

// LoadSettingsFile reads settings from configPath on top of the defaults.
// Unknown or malformed field values keep their defaults.
func LoadSettingsFile(configPath string) (model.Settings, error) {
	settings := model.DefaultSettings()

	rawData, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return settings, fmt.Errorf("read settings file: %w", err)
	}

	var fileData yamlSettings
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return settings, fmt.Errorf("parse settings yaml: %w", err)
	}

	applyYamlSettings(&settings, fileData)
	return settings, nil
}

// SaveSettingsFile writes settings to configPath, creating its directory.
func SaveSettingsFile(configPath string, settings model.Settings) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	showWindow := settings.ShowWindow
	trayEnabled := settings.TrayEnabled
	fileData := yamlSettings{
		Transport:   string(settings.Transport),
		BusName:     settings.BusName,
		ObjectPath:  settings.ObjectPath,
		SocketPath:  settings.SocketPath,
		LogLevel:    settings.LogLevel,
		LogFormat:   settings.LogFormat,
		ShowWindow:  &showWindow,
		TrayEnabled: &trayEnabled,
		WindowTitle: settings.WindowTitle,
	}

	serialized, err := yaml.Marshal(fileData)
	if err != nil {
		return fmt.Errorf("marshal settings yaml: %w", err)
	}

	if err := os.WriteFile(configPath, serialized, 0o644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}

	return nil
}

// ResolveSettingsPath returns the per-user settings file location.
func ResolveSettingsPath(appName string) (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(configDir, appName, settingsFileName), nil
}

func applyYamlSettings(settings *model.Settings, fileData yamlSettings) {
	if transport := model.Transport(strings.ToLower(strings.TrimSpace(fileData.Transport))); transport.Valid() {
		settings.Transport = transport
	}
	if isBusName(fileData.BusName) {
		settings.BusName = fileData.BusName
	}
	if fileData.ObjectPath != "" && dbus.ObjectPath(fileData.ObjectPath).IsValid() {
		settings.ObjectPath = fileData.ObjectPath
	}
	if fileData.SocketPath != "" {
		settings.SocketPath = fileData.SocketPath
	}
	if fileData.LogLevel != "" {
		settings.LogLevel = strings.ToLower(strings.TrimSpace(fileData.LogLevel))
	}
	if fileData.LogFormat != "" {
		settings.LogFormat = strings.ToLower(strings.TrimSpace(fileData.LogFormat))
	}
	if fileData.ShowWindow != nil {
		settings.ShowWindow = *fileData.ShowWindow
	}
	if fileData.TrayEnabled != nil {
		settings.TrayEnabled = *fileData.TrayEnabled
	}
	if title := strings.TrimSpace(fileData.WindowTitle); title != "" {
		settings.WindowTitle = title
	}
}

// isBusName accepts well-known names with at least two dot-separated elements.
func isBusName(name string) bool {
	if name == "" || len(name) > 255 || strings.HasPrefix(name, ":") {
		return false
	}
	elements := strings.Split(name, ".")
	if len(elements) < 2 {
		return false
	}
	for _, element := range elements {
		if element == "" || (element[0] >= '0' && element[0] <= '9') {
			return false
		}
		for _, char := range element {
			if !isNameChar(char) && char != '-' {
				return false
			}
		}
	}
	return true
}

func isNameChar(char rune) bool {
	return char == '_' ||
		(char >= 'a' && char <= 'z') ||
		(char >= 'A' && char <= 'Z') ||
		(char >= '0' && char <= '9')
}
