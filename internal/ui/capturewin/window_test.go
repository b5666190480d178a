package capturewin

import (
	"sync"
	"testing"
	"time"

	"keytap/internal/core/capture"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingProducer struct {
	mu     sync.Mutex
	events [][]rune
}

func (producer *recordingProducer) Append(chars []rune) {
	producer.mu.Lock()
	defer producer.mu.Unlock()
	producer.events = append(producer.events, chars)
}

func (producer *recordingProducer) recorded() [][]rune {
	producer.mu.Lock()
	defer producer.mu.Unlock()
	return append([][]rune(nil), producer.events...)
}

func newTestWindow(t *testing.T, producer Producer) *Window {
	t.Helper()
	app := test.NewApp()
	t.Cleanup(app.Quit)
	return New(app, Config{Title: "KeyTap test"}, producer)
}

func TestTypedInputReachesProducer(t *testing.T) {
	producer := &recordingProducer{}
	window := newTestWindow(t, producer)
	canvas := window.window.Canvas()

	canvas.OnTypedRune()('q')
	canvas.OnTypedKey()(&fyne.KeyEvent{Name: fyne.KeyA})
	canvas.OnTypedKey()(&fyne.KeyEvent{Name: fyne.KeyEscape})
	canvas.OnTypedKey()(&fyne.KeyEvent{Name: fyne.KeyReturn})
	canvas.OnTypedKey()(nil)

	assert.Equal(t, [][]rune{{'q'}, {'\x1b'}, {'\n'}}, producer.recorded())
}

func TestTypedInputFeedsCaptureState(t *testing.T) {
	state := capture.NewState(capture.Options{})
	service := capture.NewService(state, nil)
	window := newTestWindow(t, state)

	require.NoError(t, service.Begin(1000, 2))
	window.typedRune('x')
	window.typedRune('x')

	assert.Equal(t, capture.Sequence("xx"), service.Drain())
}

func TestHandleEventUpdatesStatus(t *testing.T) {
	window := newTestWindow(t, &recordingProducer{})

	window.HandleEvent(capture.Event{Type: capture.EventArmed, TargetCount: 3, Duration: 2 * time.Second})
	assert.Eventually(t, func() bool {
		return window.StatusText() == "Tap 3 times within 2s"
	}, time.Second, 10*time.Millisecond)

	window.HandleEvent(capture.Event{Type: capture.EventTap, Taps: 2, TargetCount: 3})
	assert.Eventually(t, func() bool {
		return window.StatusText() == "Taps: 2 / 3"
	}, time.Second, 10*time.Millisecond)

	window.HandleEvent(capture.Event{Type: capture.EventEscaped, Taps: 2, TargetCount: 3})
	assert.Eventually(t, func() bool {
		return window.StatusText() == "Cancelled"
	}, time.Second, 10*time.Millisecond)
}
