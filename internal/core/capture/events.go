package capture

import (
	"sync"
	"time"
)

// EventType defines the type of capture event.
type EventType string

const (
	EventArmed     EventType = "armed"
	EventTap       EventType = "tap"
	EventCompleted EventType = "completed"
	EventEscaped   EventType = "escaped"
	EventRejected  EventType = "rejected"
)

// Event represents a capture update for observers. Seq orders events taken
// under the state lock; zero means unordered.
type Event struct {
	Seq         uint64
	Type        EventType
	WindowID    string
	Taps        int
	TargetCount int
	Duration    time.Duration
	At          time.Time
}

// broadcaster fans events out to subscribers without blocking the sender.
// A full subscriber loses its oldest buffered event, so the newest one
// always arrives. Events older than one already sent are discarded.
type broadcaster struct {
	mu      sync.Mutex
	subs    []chan Event
	closed  bool
	lastSeq uint64
}

func (caster *broadcaster) subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	caster.mu.Lock()
	defer caster.mu.Unlock()
	if caster.closed {
		close(ch)
		return ch
	}
	caster.subs = append(caster.subs, ch)
	return ch
}

func (caster *broadcaster) emit(event Event) {
	caster.mu.Lock()
	defer caster.mu.Unlock()
	if event.Seq != 0 {
		if event.Seq <= caster.lastSeq {
			return
		}
		caster.lastSeq = event.Seq
	}
	for _, ch := range caster.subs {
		select {
		case ch <- event:
			continue
		default:
		}
		// Sends are serialized by caster.mu, so one receive frees a slot.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- event:
		default:
		}
	}
}

func (caster *broadcaster) close() {
	caster.mu.Lock()
	defer caster.mu.Unlock()
	if caster.closed {
		return
	}
	caster.closed = true
	for _, ch := range caster.subs {
		close(ch)
	}
	caster.subs = nil
}
