package ipc

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"keytap/internal/core/capture"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDBusObjectBegin(t *testing.T) {
	service := capture.NewService(capture.NewState(capture.Options{}), nil)
	object := &dbusObject{capturer: service}

	assert.Nil(t, object.Begin(1000, 3))

	dbusErr := object.Begin(499, 3)
	require.NotNil(t, dbusErr)
	assert.Equal(t, ErrorInvalidArgument, dbusErr.Name)
	assert.Contains(t, dbusErr.Error(), "duration_ms 499")

	dbusErr = object.Begin(1000, 256)
	require.NotNil(t, dbusErr)
	assert.Equal(t, ErrorInvalidArgument, dbusErr.Name)
}

func TestDBusObjectBeginUnavailable(t *testing.T) {
	object := &dbusObject{capturer: &fakeCapturer{beginErr: fmt.Errorf("arm: %w", capture.ErrStateUnavailable)}}

	dbusErr := object.Begin(1000, 3)
	require.NotNil(t, dbusErr)
	assert.Equal(t, ErrorUnavailable, dbusErr.Name)
}

func TestDBusObjectBeginOtherFailure(t *testing.T) {
	object := &dbusObject{capturer: &fakeCapturer{beginErr: errors.New("boom")}}

	dbusErr := object.Begin(1000, 3)
	require.NotNil(t, dbusErr)
	assert.Equal(t, "org.freedesktop.DBus.Error.Failed", dbusErr.Name)
}

func TestDBusObjectDrain(t *testing.T) {
	state := capture.NewState(capture.Options{})
	object := &dbusObject{capturer: capture.NewService(state, nil)}

	text, dbusErr := object.Drain()
	assert.Nil(t, dbusErr)
	assert.Empty(t, text)

	require.Nil(t, object.Begin(1000, 2))
	state.Append([]rune("k"))
	state.Append([]rune("k"))

	text, dbusErr = object.Drain()
	assert.Nil(t, dbusErr)
	assert.Equal(t, "kk", text)
}

func TestDBusIntrospectionListsMethods(t *testing.T) {
	server := NewDBusServer("org.keytap.Capture", "/org/keytap/Capture", &fakeCapturer{}, nil)
	node := server.introspectNode()

	require.Len(t, node.Interfaces, 2)
	assert.Equal(t, "org.freedesktop.DBus.Introspectable", node.Interfaces[0].Name)
	assert.Equal(t, DBusInterface, node.Interfaces[1].Name)

	names := make([]string, 0, len(node.Interfaces[1].Methods))
	for _, method := range node.Interfaces[1].Methods {
		names = append(names, method.Name)
	}
	assert.ElementsMatch(t, []string{"Begin", "Drain"}, names)
}

func TestDBusServerStopWithoutStart(t *testing.T) {
	server := NewDBusServer("org.keytap.Capture", "/org/keytap/Capture", &fakeCapturer{}, nil)
	assert.NoError(t, server.Stop())
}

func TestRemoteErrorMapping(t *testing.T) {
	assert.NoError(t, remoteError(nil))

	err := remoteError(dbus.Error{Name: ErrorInvalidArgument, Body: []interface{}{"target_count 0 not in [1, 255]"}})
	var remoteErr *RemoteError
	require.ErrorAs(t, err, &remoteErr)
	assert.Equal(t, "target_count 0 not in [1, 255]", remoteErr.Message)

	other := dbus.Error{Name: "org.freedesktop.DBus.Error.ServiceUnknown"}
	assert.Equal(t, error(other), remoteError(other))

	assert.ErrorIs(t, remoteError(context.Canceled), context.Canceled)
}

func TestClampInt32(t *testing.T) {
	assert.Equal(t, int32(1000), clampInt32(1000))
	assert.Equal(t, int32(math.MaxInt32), clampInt32(math.MaxInt64))
	assert.Equal(t, int32(math.MinInt32), clampInt32(math.MinInt64))
}

func TestIsConnectionErrorRecognisesMissingBusName(t *testing.T) {
	assert.True(t, IsConnectionError(dbus.Error{Name: "org.freedesktop.DBus.Error.ServiceUnknown"}))
	assert.False(t, IsConnectionError(dbus.Error{Name: ErrorInvalidArgument}))
	assert.False(t, IsConnectionError(nil))
}
