package storage

import (
	"os"
	"path/filepath"
	"testing"

	"keytap/internal/core/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSettingsFileMissingReturnsDefaults(t *testing.T) {
	settings, err := LoadSettingsFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, model.DefaultSettings(), settings)
}

func TestLoadSettingsFileAppliesValidFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	content := `
transport: SOCKET
bus_name: com.example.Taps
object_path: /com/example/Taps
socket_path: /tmp/taps.sock
log_level: Debug
log_format: json
show_window: false
tray_enabled: false
window_title: "  Tap here  "
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	settings, err := LoadSettingsFile(path)
	require.NoError(t, err)
	assert.Equal(t, model.Settings{
		Transport:   model.TransportSocket,
		BusName:     "com.example.Taps",
		ObjectPath:  "/com/example/Taps",
		SocketPath:  "/tmp/taps.sock",
		LogLevel:    "debug",
		LogFormat:   "json",
		ShowWindow:  false,
		TrayEnabled: false,
		WindowTitle: "Tap here",
	}, settings)
}

func TestLoadSettingsFileIgnoresInvalidFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	content := `
transport: carrier-pigeon
bus_name: nodots
object_path: relative/path
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	settings, err := LoadSettingsFile(path)
	require.NoError(t, err)
	defaults := model.DefaultSettings()
	assert.Equal(t, defaults.Transport, settings.Transport)
	assert.Equal(t, defaults.BusName, settings.BusName)
	assert.Equal(t, defaults.ObjectPath, settings.ObjectPath)
}

func TestLoadSettingsFileRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("transport: [unclosed"), 0o644))

	settings, err := LoadSettingsFile(path)
	assert.ErrorContains(t, err, "parse settings yaml")
	assert.Equal(t, model.DefaultSettings(), settings)
}

func TestSaveSettingsFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.yaml")
	settings := model.DefaultSettings()
	settings.Transport = model.TransportDBus
	settings.ShowWindow = false
	settings.LogLevel = "warn"

	require.NoError(t, SaveSettingsFile(path, settings))
	loaded, err := LoadSettingsFile(path)
	require.NoError(t, err)
	assert.Equal(t, settings, loaded)
}

func TestIsBusName(t *testing.T) {
	assert.True(t, isBusName("org.keytap.Capture"))
	assert.True(t, isBusName("org.key-tap.Capture_2"))
	assert.False(t, isBusName(""))
	assert.False(t, isBusName("single"))
	assert.False(t, isBusName(":1.42"))
	assert.False(t, isBusName("org..Capture"))
	assert.False(t, isBusName("org.9lives"))
}
