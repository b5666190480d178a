package ipc

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/godbus/dbus/v5"
)

const defaultCallTimeout = 3 * time.Second

// Client calls a running daemon.
type Client interface {
	Begin(ctx context.Context, durationMs, targetCount int) error
	Drain(ctx context.Context) (string, error)
	Close() error
}

// StreamClient talks to a StreamServer, one connection per call.
type StreamClient struct {
	endpoint string
	timeout  time.Duration
}

// NewStreamClient returns a client for endpoint. An empty endpoint selects DefaultEndpoint.
func NewStreamClient(endpoint string, timeout time.Duration) (*StreamClient, error) {
	if endpoint == "" {
		resolved, err := DefaultEndpoint()
		if err != nil {
			return nil, err
		}
		endpoint = resolved
	}
	if timeout <= 0 {
		timeout = defaultCallTimeout
	}
	return &StreamClient{endpoint: endpoint, timeout: timeout}, nil
}

// Begin arms a capture window on the daemon.
func (client *StreamClient) Begin(ctx context.Context, durationMs, targetCount int) error {
	_, err := client.call(ctx, Request{Method: MethodBegin, DurationMs: durationMs, TargetCount: targetCount})
	return err
}

// Drain returns the raw drain text.
func (client *StreamClient) Drain(ctx context.Context) (string, error) {
	return client.call(ctx, Request{Method: MethodDrain})
}

// Close is a no-op; connections are per call.
func (client *StreamClient) Close() error {
	return nil
}

func (client *StreamClient) call(ctx context.Context, req Request) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, client.timeout)
	defer cancel()

	conn, err := dial(ctx, client.endpoint)
	if err != nil {
		return "", fmt.Errorf("dial %s: %w", client.endpoint, err)
	}
	defer conn.Close()

	deadline, _ := ctx.Deadline()
	if err := conn.SetDeadline(deadline); err != nil {
		return "", fmt.Errorf("set deadline: %w", err)
	}

	rawReq, err := encodeRequest(req)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}
	if err := writeFrame(conn, rawReq); err != nil {
		return "", fmt.Errorf("write request: %w", err)
	}

	rawResp, err := readFrame(bufio.NewReaderSize(conn, maxFrameBytes+1), maxFrameBytes)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	resp, err := decodeResponse(rawResp)
	if err != nil {
		return "", fmt.Errorf("invalid response: %w", err)
	}
	if !resp.OK {
		return "", &RemoteError{Message: resp.Error}
	}
	return resp.Result, nil
}

// IsConnectionError reports whether err means the daemon is absent or unreachable.
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return opErr.Op == "dial" || opErr.Op == "open"
	}
	var dbusErr dbus.Error
	if errors.As(err, &dbusErr) {
		return dbusErr.Name == "org.freedesktop.DBus.Error.ServiceUnknown" ||
			dbusErr.Name == "org.freedesktop.DBus.Error.NameHasNoOwner"
	}
	return errors.Is(err, os.ErrNotExist)
}
