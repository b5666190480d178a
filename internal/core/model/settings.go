package model

import "runtime"

// Transport selects which IPC endpoints the daemon serves.
type Transport string

const (
	TransportDBus   Transport = "dbus"
	TransportSocket Transport = "socket"
	TransportBoth   Transport = "both"
)

// Valid reports whether the transport is known.
func (transport Transport) Valid() bool {
	switch transport {
	case TransportDBus, TransportSocket, TransportBoth:
		return true
	default:
		return false
	}
}

// ServesDBus reports whether the D-Bus endpoint should be exported.
func (transport Transport) ServesDBus() bool {
	return transport == TransportDBus || transport == TransportBoth
}

// ServesSocket reports whether the stream socket should be opened.
func (transport Transport) ServesSocket() bool {
	return transport == TransportSocket || transport == TransportBoth
}

// Settings defines daemon preferences loaded from the settings file.
type Settings struct {
	Transport  Transport
	BusName    string
	ObjectPath string
	SocketPath string

	LogLevel  string
	LogFormat string

	ShowWindow  bool
	TrayEnabled bool
	WindowTitle string
}

// Default D-Bus coordinates of the capture service.
const (
	DefaultBusName    = "org.keytap.Capture"
	DefaultObjectPath = "/org/keytap/Capture"
)

// DefaultSettings returns default settings for KeyTap.
func DefaultSettings() Settings {
	transport := TransportSocket
	if runtime.GOOS == "linux" {
		transport = TransportBoth
	}
	return Settings{
		Transport:   transport,
		BusName:     DefaultBusName,
		ObjectPath:  DefaultObjectPath,
		LogLevel:    "info",
		LogFormat:   "text",
		ShowWindow:  true,
		TrayEnabled: true,
		WindowTitle: "KeyTap",
	}
}
