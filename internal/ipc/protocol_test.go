package ipc

import (
	"bufio"
	"errors"
	"io"
	"strings"
	"testing"

	"keytap/internal/core/capture"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCapturer struct {
	beginErr    error
	drainResult capture.Result
	begins      [][2]int
	drains      int
}

func (capturer *fakeCapturer) Begin(durationMs, targetCount int) error {
	capturer.begins = append(capturer.begins, [2]int{durationMs, targetCount})
	return capturer.beginErr
}

func (capturer *fakeCapturer) Drain() capture.Result {
	capturer.drains++
	return capturer.drainResult
}

func TestReadFrameWithinLimit(t *testing.T) {
	payload := `{"method":"drain"}` + "\n"
	reader := bufio.NewReaderSize(strings.NewReader(payload), maxFrameBytes+1)

	raw, err := readFrame(reader, maxFrameBytes)
	require.NoError(t, err)
	assert.Equal(t, payload, string(raw))
}

func TestReadFrameRejectsOversizedFrame(t *testing.T) {
	oversized := strings.Repeat("a", maxFrameBytes+1) + "\n"
	reader := bufio.NewReaderSize(strings.NewReader(oversized), maxFrameBytes+1)

	_, err := readFrame(reader, maxFrameBytes)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds")
}

func TestReadFrameAcceptsEOFWithoutDelimiter(t *testing.T) {
	payload := `{"method":"drain"}`
	reader := bufio.NewReaderSize(strings.NewReader(payload), maxFrameBytes+1)

	raw, err := readFrame(reader, maxFrameBytes)
	require.NoError(t, err)
	assert.Equal(t, payload, string(raw))
}

func TestReadFrameReturnsEOFOnEmptyInput(t *testing.T) {
	reader := bufio.NewReaderSize(strings.NewReader(""), maxFrameBytes+1)

	_, err := readFrame(reader, maxFrameBytes)
	assert.ErrorIs(t, err, io.EOF)
}

func TestDecodeRequest(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    Request
		wantErr string
	}{
		{name: "begin", raw: `{"method":"begin","duration_ms":1000,"target_count":3}`, want: Request{Method: MethodBegin, DurationMs: 1000, TargetCount: 3}},
		{name: "drain", raw: `{"method":"drain"}`, want: Request{Method: MethodDrain}},
		{name: "method case is ignored", raw: `{"method":" DRAIN "}`, want: Request{Method: MethodDrain}},
		{name: "missing method", raw: `{}`, wantErr: "method is required"},
		{name: "unknown method", raw: `{"method":"reset"}`, wantErr: `unknown method "reset"`},
		{name: "malformed json", raw: `{"method":`, wantErr: "unexpected end"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeRequest([]byte(tt.raw))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncodeResponseShape(t *testing.T) {
	raw, err := encodeResponse(Response{OK: true, Result: capture.EscapeSentinel})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true,"result":"#escape"}`, string(raw))

	raw, err = encodeResponse(Response{OK: false, Error: "boom"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":false,"error":"boom"}`, string(raw))
}

func TestDispatch(t *testing.T) {
	t.Run("begin forwards arguments", func(t *testing.T) {
		capturer := &fakeCapturer{}
		resp := dispatch(capturer, Request{Method: MethodBegin, DurationMs: 1500, TargetCount: 4})
		assert.Equal(t, Response{OK: true}, resp)
		assert.Equal(t, [][2]int{{1500, 4}}, capturer.begins)
	})

	t.Run("begin error becomes error response", func(t *testing.T) {
		capturer := &fakeCapturer{beginErr: errors.New("duration 10 not in range")}
		resp := dispatch(capturer, Request{Method: MethodBegin, DurationMs: 10, TargetCount: 1})
		assert.False(t, resp.OK)
		assert.Equal(t, "duration 10 not in range", resp.Error)
	})

	t.Run("drain returns wire text", func(t *testing.T) {
		capturer := &fakeCapturer{drainResult: capture.Sequence("qqq")}
		assert.Equal(t, Response{OK: true, Result: "qqq"}, dispatch(capturer, Request{Method: MethodDrain}))

		capturer.drainResult = capture.Escaped()
		assert.Equal(t, Response{OK: true, Result: "#escape"}, dispatch(capturer, Request{Method: MethodDrain}))

		capturer.drainResult = capture.Incomplete()
		assert.Equal(t, Response{OK: true}, dispatch(capturer, Request{Method: MethodDrain}))
		assert.Equal(t, 3, capturer.drains)
	})
}
