package ipc

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"time"
)

const (
	defaultConnTimeout              = 5 * time.Second
	defaultMaxConcurrentConnections = 16
	connSlotAcquireTimeout          = 2 * time.Second
)

// StreamServer serves begin/drain requests over a local stream endpoint
// (a Unix domain socket, or a named pipe on Windows). One request per connection.
type StreamServer struct {
	endpoint string
	capturer Capturer
	logger   *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	listener  net.Listener
	started   bool
	wg        sync.WaitGroup
	connSlots chan struct{}
}

// NewStreamServer constructs a StreamServer. An empty endpoint selects DefaultEndpoint.
func NewStreamServer(endpoint string, capturer Capturer, logger *slog.Logger) *StreamServer {
	ctx, cancel := context.WithCancel(context.Background())
	if logger == nil {
		logger = slog.Default()
	}
	return &StreamServer{
		endpoint:  endpoint,
		capturer:  capturer,
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
		connSlots: make(chan struct{}, defaultMaxConcurrentConnections),
	}
}

// Endpoint returns the listen address.
func (server *StreamServer) Endpoint() string {
	return server.endpoint
}

// Start claims the endpoint and begins accepting connections.
// It returns platform.ErrAlreadyRunning when a live server already owns it.
func (server *StreamServer) Start() error {
	server.mu.Lock()
	defer server.mu.Unlock()

	if server.started {
		return errors.New("stream server already started")
	}
	if server.capturer == nil {
		return errors.New("stream server requires capturer")
	}
	if server.endpoint == "" {
		endpoint, err := DefaultEndpoint()
		if err != nil {
			return err
		}
		server.endpoint = endpoint
	}

	listener, err := listen(server.endpoint)
	if err != nil {
		return fmt.Errorf("listen %s: %w", server.endpoint, err)
	}

	server.listener = listener
	server.started = true
	server.wg.Add(1)
	go func() {
		defer server.wg.Done()
		server.acceptLoop(listener)
	}()
	server.logger.Info("[ipc] stream server listening", "endpoint", server.endpoint)
	return nil
}

// Stop closes the listener and waits for in-flight connections.
func (server *StreamServer) Stop() error {
	server.mu.Lock()
	if !server.started {
		server.mu.Unlock()
		return nil
	}
	server.started = false
	server.cancel()
	listener := server.listener
	server.listener = nil
	server.mu.Unlock()

	if listener != nil {
		if err := listener.Close(); err != nil {
			server.logger.Warn("[ipc] failed to close listener during shutdown", "error", err)
		}
	}
	server.wg.Wait()
	return nil
}

func (server *StreamServer) acceptLoop(listener net.Listener) {
	consecutiveErrors := 0
	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-server.ctx.Done():
				return
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return
			}
			consecutiveErrors++
			if consecutiveErrors > 10 {
				server.logger.Warn("[ipc] accept loop: repeated failures", "error", err, "count", consecutiveErrors)
				time.Sleep(500 * time.Millisecond)
			} else {
				server.logger.Debug("[ipc] accept error", "error", err)
			}
			continue
		}
		consecutiveErrors = 0

		if !server.acquireConnectionSlot() {
			server.writeResponse(conn, Response{OK: false, Error: "server busy, try again later"})
			if closeErr := conn.Close(); closeErr != nil {
				server.logger.Debug("[ipc] failed to close rejected connection", "error", closeErr)
			}
			continue
		}

		server.wg.Add(1)
		go func() {
			defer server.wg.Done()
			defer server.releaseConnectionSlot()
			server.handleConnection(conn)
		}()
	}
}

func (server *StreamServer) handleConnection(conn net.Conn) {
	defer conn.Close()
	if err := conn.SetDeadline(time.Now().Add(defaultConnTimeout)); err != nil {
		server.logger.Warn("[ipc] failed to set connection deadline", "error", err)
		return
	}

	reader := bufio.NewReaderSize(conn, maxFrameBytes+1)
	rawReq, err := readFrame(reader, maxFrameBytes)
	if errors.Is(err, io.EOF) {
		server.logger.Debug("[ipc] client disconnected without sending data")
		return
	}
	if err != nil {
		server.writeResponse(conn, Response{OK: false, Error: fmt.Sprintf("invalid request: %v", err)})
		return
	}

	req, err := decodeRequest(rawReq)
	if err != nil {
		server.writeResponse(conn, Response{OK: false, Error: fmt.Sprintf("invalid request: %v", err)})
		return
	}

	server.logger.Debug("[ipc] request received", "method", req.Method)
	server.writeResponse(conn, dispatch(server.capturer, req))
}

func (server *StreamServer) writeResponse(conn net.Conn, resp Response) {
	rawResp, err := encodeResponse(resp)
	if err != nil {
		server.logger.Warn("[ipc] failed to encode response", "error", err)
		rawResp = []byte(`{"ok":false,"error":"internal encode error"}`)
	}
	if err := writeFrame(conn, rawResp); err != nil {
		server.logger.Debug("[ipc] failed to write response", "error", err)
	}
}

func (server *StreamServer) acquireConnectionSlot() bool {
	timer := time.NewTimer(connSlotAcquireTimeout)
	defer timer.Stop()
	select {
	case server.connSlots <- struct{}{}:
		return true
	case <-timer.C:
		server.logger.Warn("[ipc] connection slots exhausted, rejecting client")
		return false
	case <-server.ctx.Done():
		return false
	}
}

func (server *StreamServer) releaseConnectionSlot() {
	select {
	case <-server.connSlots:
	default:
		server.logger.Warn("[ipc] releaseConnectionSlot: no slot to release")
	}
}
