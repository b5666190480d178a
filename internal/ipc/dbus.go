package ipc

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"keytap/internal/core/capture"
	"keytap/internal/platform"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
)

// DBusInterface is the interface exported on the capture object.
const DBusInterface = "org.keytap.Capture1"

// D-Bus error names returned by Begin.
const (
	ErrorInvalidArgument = DBusInterface + ".Error.InvalidArgument"
	ErrorUnavailable     = DBusInterface + ".Error.Unavailable"
)

// dbusObject is exported on the session bus. godbus dispatches each call on
// its own goroutine.
type dbusObject struct {
	capturer Capturer
	logger   *slog.Logger
}

// Begin arms a capture window.
func (object *dbusObject) Begin(durationMs, targetCount int32) *dbus.Error {
	err := object.capturer.Begin(int(durationMs), int(targetCount))
	if err == nil {
		return nil
	}
	switch {
	case capture.IsValidation(err):
		return dbus.NewError(ErrorInvalidArgument, []interface{}{err.Error()})
	case errors.Is(err, capture.ErrStateUnavailable):
		return dbus.NewError(ErrorUnavailable, []interface{}{err.Error()})
	default:
		return dbus.MakeFailedError(err)
	}
}

// Drain returns "", "#escape" or the captured text.
func (object *dbusObject) Drain() (string, *dbus.Error) {
	return object.capturer.Drain().Wire(), nil
}

// DBusServer owns a bus name and serves the capture object on it.
type DBusServer struct {
	busName    string
	objectPath dbus.ObjectPath
	object     *dbusObject
	logger     *slog.Logger

	mu   sync.Mutex
	conn *dbus.Conn
}

// NewDBusServer constructs a DBusServer.
func NewDBusServer(busName, objectPath string, capturer Capturer, logger *slog.Logger) *DBusServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &DBusServer{
		busName:    busName,
		objectPath: dbus.ObjectPath(objectPath),
		object:     &dbusObject{capturer: capturer, logger: logger},
		logger:     logger,
	}
}

// Start connects to the session bus, exports the object and claims the name.
// It returns platform.ErrAlreadyRunning when another process owns the name.
func (server *DBusServer) Start() error {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return fmt.Errorf("connect session bus: %w", err)
	}
	if err := server.serve(conn); err != nil {
		_ = conn.Close()
		return err
	}
	return nil
}

func (server *DBusServer) serve(conn *dbus.Conn) error {
	server.mu.Lock()
	defer server.mu.Unlock()

	if server.conn != nil {
		return errors.New("dbus server already started")
	}
	if !server.objectPath.IsValid() {
		return fmt.Errorf("invalid object path %q", server.objectPath)
	}

	if err := conn.Export(server.object, server.objectPath, DBusInterface); err != nil {
		return fmt.Errorf("export capture object: %w", err)
	}
	if err := conn.Export(introspect.NewIntrospectable(server.introspectNode()), server.objectPath, "org.freedesktop.DBus.Introspectable"); err != nil {
		return fmt.Errorf("export introspection: %w", err)
	}

	reply, err := conn.RequestName(server.busName, dbus.NameFlagDoNotQueue)
	if err != nil {
		return fmt.Errorf("request name %s: %w", server.busName, err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return fmt.Errorf("request name %s: %w", server.busName, platform.ErrAlreadyRunning)
	}

	server.conn = conn
	server.logger.Info("[ipc] dbus service registered", "name", server.busName, "path", string(server.objectPath))
	return nil
}

func (server *DBusServer) introspectNode() *introspect.Node {
	return &introspect.Node{
		Name: string(server.objectPath),
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			{
				Name:    DBusInterface,
				Methods: introspect.Methods(server.object),
			},
		},
	}
}

// Stop releases the bus name and closes the connection.
func (server *DBusServer) Stop() error {
	server.mu.Lock()
	conn := server.conn
	server.conn = nil
	server.mu.Unlock()

	if conn == nil {
		return nil
	}
	if _, err := conn.ReleaseName(server.busName); err != nil {
		server.logger.Warn("[ipc] failed to release bus name", "name", server.busName, "error", err)
	}
	return conn.Close()
}
