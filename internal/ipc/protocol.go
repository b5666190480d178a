package ipc

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"keytap/internal/core/capture"
)

const (
	MethodBegin = "begin"
	MethodDrain = "drain"
)

const maxFrameBytes = 4 * 1024

// Capturer is the capture surface served over IPC.
type Capturer interface {
	Begin(durationMs, targetCount int) error
	Drain() capture.Result
}

// Request is a single stream-socket call.
type Request struct {
	Method      string `json:"method"`
	DurationMs  int    `json:"duration_ms,omitempty"`
	TargetCount int    `json:"target_count,omitempty"`
}

// Response carries the drain text or an error message.
type Response struct {
	OK     bool   `json:"ok"`
	Result string `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// RemoteError is a failure reported by the daemon in a Response.
type RemoteError struct {
	Message string
}

func (err *RemoteError) Error() string {
	return "keytapd: " + err.Message
}

func encodeRequest(req Request) ([]byte, error) {
	return json.Marshal(req)
}

func decodeRequest(raw []byte) (Request, error) {
	var req Request
	if err := json.Unmarshal(raw, &req); err != nil {
		return Request{}, err
	}
	req.Method = strings.ToLower(strings.TrimSpace(req.Method))
	switch req.Method {
	case MethodBegin, MethodDrain:
		return req, nil
	case "":
		return Request{}, errors.New("method is required")
	default:
		return Request{}, fmt.Errorf("unknown method %q", req.Method)
	}
}

func encodeResponse(resp Response) ([]byte, error) {
	return json.Marshal(resp)
}

func decodeResponse(raw []byte) (Response, error) {
	var resp Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return Response{}, err
	}
	return resp, nil
}

// dispatch runs req against capturer and builds the reply.
func dispatch(capturer Capturer, req Request) Response {
	switch req.Method {
	case MethodBegin:
		if err := capturer.Begin(req.DurationMs, req.TargetCount); err != nil {
			return Response{OK: false, Error: err.Error()}
		}
		return Response{OK: true}
	case MethodDrain:
		return Response{OK: true, Result: capturer.Drain().Wire()}
	default:
		return Response{OK: false, Error: fmt.Sprintf("unknown method %q", req.Method)}
	}
}
