package ipc

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/godbus/dbus/v5"
)

// DBusClient calls the capture object over the session bus.
type DBusClient struct {
	conn    *dbus.Conn
	object  dbus.BusObject
	timeout time.Duration
}

// NewDBusClient connects to the session bus.
func NewDBusClient(busName, objectPath string, timeout time.Duration) (*DBusClient, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("connect session bus: %w", err)
	}
	if timeout <= 0 {
		timeout = defaultCallTimeout
	}
	return &DBusClient{
		conn:    conn,
		object:  conn.Object(busName, dbus.ObjectPath(objectPath)),
		timeout: timeout,
	}, nil
}

// Begin arms a capture window on the daemon.
func (client *DBusClient) Begin(ctx context.Context, durationMs, targetCount int) error {
	ctx, cancel := context.WithTimeout(ctx, client.timeout)
	defer cancel()
	call := client.object.CallWithContext(ctx, DBusInterface+".Begin", 0, clampInt32(durationMs), clampInt32(targetCount))
	return remoteError(call.Err)
}

// Drain returns the raw drain text.
func (client *DBusClient) Drain(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, client.timeout)
	defer cancel()
	var text string
	if err := client.object.CallWithContext(ctx, DBusInterface+".Drain", 0).Store(&text); err != nil {
		return "", remoteError(err)
	}
	return text, nil
}

// Close closes the bus connection.
func (client *DBusClient) Close() error {
	return client.conn.Close()
}

func remoteError(err error) error {
	if err == nil {
		return nil
	}
	var dbusErr dbus.Error
	if errors.As(err, &dbusErr) && (dbusErr.Name == ErrorInvalidArgument || dbusErr.Name == ErrorUnavailable) {
		return &RemoteError{Message: dbusErr.Error()}
	}
	return err
}

// clampInt32 saturates out-of-range values so the daemon still rejects them.
func clampInt32(value int) int32 {
	switch {
	case value > math.MaxInt32:
		return math.MaxInt32
	case value < math.MinInt32:
		return math.MinInt32
	default:
		return int32(value)
	}
}
