//go:build windows

package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/user"
	"regexp"
	"strings"
	"time"

	"keytap/internal/platform"

	"github.com/Microsoft/go-winio"
)

const (
	pipePrefix    = `\\.\pipe\keytap-`
	probeTimeout  = 250 * time.Millisecond
	pipeBufferLen = maxFrameBytes
)

var (
	validSIDPattern     = regexp.MustCompile(`^S-1(-\d+)+$`)
	unsafeUsernameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)
)

// DefaultEndpoint returns the per-user named pipe path.
func DefaultEndpoint() (string, error) {
	username := strings.TrimSpace(os.Getenv("USERNAME"))
	if username == "" {
		current, err := user.Current()
		if err != nil {
			return "", fmt.Errorf("resolve pipe name: %w", err)
		}
		username = current.Username
	}
	if idx := strings.LastIndex(username, `\`); idx >= 0 {
		username = username[idx+1:]
	}
	username = unsafeUsernameChars.ReplaceAllString(username, "_")
	if username == "" {
		username = "user"
	}
	return pipePrefix + strings.ToLower(username), nil
}

// listen creates a named pipe restricted to SYSTEM and the current user.
func listen(pipeName string) (net.Listener, error) {
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()
	if conn, err := winio.DialPipeContext(ctx, pipeName); err == nil {
		_ = conn.Close()
		return nil, platform.ErrAlreadyRunning
	}

	securityDescriptor, err := pipeSecurityDescriptor()
	if err != nil {
		return nil, err
	}
	listener, err := winio.ListenPipe(pipeName, &winio.PipeConfig{
		SecurityDescriptor: securityDescriptor,
		InputBufferSize:    int32(pipeBufferLen),
		OutputBufferSize:   int32(pipeBufferLen),
	})
	if errors.Is(err, os.ErrPermission) {
		return nil, platform.ErrAlreadyRunning
	}
	return listener, err
}

func pipeSecurityDescriptor() (string, error) {
	current, err := user.Current()
	if err != nil {
		return "", fmt.Errorf("resolve current user: %w", err)
	}
	sid := strings.TrimSpace(current.Uid)
	if !validSIDPattern.MatchString(sid) {
		return "", fmt.Errorf("current user SID has unexpected format: %q", sid)
	}
	// D:P protected DACL, full access for SYSTEM and the current user only.
	return fmt.Sprintf("D:P(A;;GA;;;SY)(A;;GA;;;%s)", sid), nil
}
