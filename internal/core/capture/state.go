package capture

import (
	"errors"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"keytap/internal/core/model"

	"github.com/google/uuid"
)

// InactivityGap is how long a short window waits for another tap before it finalizes early.
const InactivityGap = 400 * time.Millisecond

// Options contains runtime options for State.
type Options struct {
	Clock       func() time.Time
	NewWindowID func() string
	Logger      *slog.Logger
}

// State is the shared record of the current capture window.
//
// A single mutex covers every field: completion reads several of them
// together. Zero windowStart means no window is armed, zero lastKeyTime
// means no tap arrived since arming.
type State struct {
	mu             sync.Mutex
	keys           []rune
	targetCount    int
	windowStart    time.Time
	lastKeyTime    time.Time
	windowDuration time.Duration
	windowID       string
	seq            uint64

	clock  func() time.Time
	newID  func() string
	logger *slog.Logger
	events broadcaster
}

// Snapshot is a read-only view of the capture window.
type Snapshot struct {
	Armed       bool
	WindowID    string
	Taps        int
	TargetCount int
	Duration    time.Duration
	Elapsed     time.Duration
	Expired     bool
}

// NewState creates an idle capture state.
func NewState(options Options) *State {
	if options.Clock == nil {
		options.Clock = time.Now
	}
	if options.NewWindowID == nil {
		options.NewWindowID = uuid.NewString
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	return &State{
		clock:  options.Clock,
		newID:  options.NewWindowID,
		logger: options.Logger,
	}
}

// Subscribe registers a new observer channel. Slow observers miss events.
func (state *State) Subscribe(buffer int) <-chan Event {
	return state.events.subscribe(buffer)
}

// Close closes every observer channel.
func (state *State) Close() {
	state.events.close()
}

// Append records the characters produced by one key event.
// Events outside an armed, unexpired window are dropped.
func (state *State) Append(chars []rune) {
	var (
		accepted bool
		event    Event
	)
	err := state.locked("append", func() {
		if state.windowStart.IsZero() {
			return
		}
		now := state.clock()
		if now.Sub(state.windowStart) > state.windowDuration {
			return
		}
		state.keys = append(state.keys, chars...)
		state.lastKeyTime = now
		accepted = true
		event = state.eventLocked(EventTap, now)
	})
	if err != nil {
		state.logRecovered(err)
		return
	}
	if !accepted {
		state.logger.Debug("[capture] key event dropped, no open window", "chars", len(chars))
		return
	}
	state.events.emit(event)
}

// Snapshot returns the current window without mutating it.
func (state *State) Snapshot() Snapshot {
	var snapshot Snapshot
	err := state.locked("snapshot", func() {
		if state.windowStart.IsZero() {
			return
		}
		elapsed := state.clock().Sub(state.windowStart)
		snapshot = Snapshot{
			Armed:       true,
			WindowID:    state.windowID,
			Taps:        len(state.keys),
			TargetCount: state.targetCount,
			Duration:    state.windowDuration,
			Elapsed:     elapsed,
			Expired:     elapsed > state.windowDuration,
		}
	})
	if err != nil {
		state.logRecovered(err)
	}
	return snapshot
}

// arm opens a new window, discarding any previous one. spec must be validated.
func (state *State) arm(spec model.WindowSpec) (Event, error) {
	windowID := state.newID()
	var event Event
	err := state.locked("arm", func() {
		now := state.clock()
		state.keys = state.keys[:0]
		state.targetCount = spec.TargetCount
		state.windowStart = now
		state.lastKeyTime = time.Time{}
		state.windowDuration = spec.Duration
		state.windowID = windowID
		event = state.eventLocked(EventArmed, now)
	})
	if err != nil {
		return Event{}, err
	}
	return event, nil
}

// drain evaluates the window and finalizes it when complete.
func (state *State) drain() (Result, Event, error) {
	result := Incomplete()
	var event Event
	err := state.locked("drain", func() {
		if state.windowStart.IsZero() {
			return
		}
		if state.hasDivergentKeyLocked() {
			event = state.eventLocked(EventEscaped, state.clock())
			state.resetLocked()
			result = Escaped()
			return
		}

		now := state.clock()
		if !state.completeLocked(now) {
			return
		}

		event = state.eventLocked(EventCompleted, now)
		keys := state.keys
		state.resetLocked()
		for _, key := range keys {
			if key == EscapeRune {
				event.Type = EventEscaped
				result = Escaped()
				return
			}
		}
		result = Sequence(string(keys))
	})
	if err != nil {
		return Incomplete(), Event{}, err
	}
	return result, event, nil
}

// hasDivergentKeyLocked stops at the first key that differs from the first one.
func (state *State) hasDivergentKeyLocked() bool {
	if len(state.keys) == 0 {
		return false
	}
	first := state.keys[0]
	for _, key := range state.keys[1:] {
		if key != first {
			return true
		}
	}
	return false
}

func (state *State) completeLocked(now time.Time) bool {
	if now.Sub(state.windowStart) > state.windowDuration {
		return false
	}
	if len(state.keys) == 0 || state.lastKeyTime.IsZero() {
		return false
	}
	if len(state.keys) > state.targetCount {
		return false
	}
	if len(state.keys) < state.targetCount && now.Sub(state.lastKeyTime) < InactivityGap {
		return false
	}
	return true
}

// resetLocked returns to idle. The finalized keys slice is handed to the caller, so a fresh buffer is used.
func (state *State) resetLocked() {
	state.windowStart = time.Time{}
	state.lastKeyTime = time.Time{}
	state.keys = nil
	state.windowID = ""
}

func (state *State) eventLocked(eventType EventType, now time.Time) Event {
	state.seq++
	return Event{
		Seq:         state.seq,
		Type:        eventType,
		WindowID:    state.windowID,
		Taps:        len(state.keys),
		TargetCount: state.targetCount,
		Duration:    state.windowDuration,
		At:          now,
	}
}

// locked runs fn under the state mutex. A panic inside fn is recovered and
// reported as ErrStateUnavailable; the window is left as it was. Every
// critical section reads the clock before it writes any field.
func (state *State) locked(op string, fn func()) (err error) {
	state.mu.Lock()
	defer state.mu.Unlock()
	defer func() {
		if recovered := recover(); recovered != nil {
			err = &panicError{op: op, recovered: recovered, stack: debug.Stack()}
		}
	}()
	fn()
	return nil
}

func (state *State) logRecovered(err error) {
	var panicErr *panicError
	if errors.As(err, &panicErr) {
		state.logger.Error("[capture] critical section recovered from panic",
			"op", panicErr.op,
			"panic", panicErr.recovered,
			"stack", string(panicErr.stack),
		)
		return
	}
	state.logger.Error("[capture] state unavailable", "error", err)
}
