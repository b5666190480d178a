package capture

import (
	"log/slog"

	"keytap/internal/core/model"
)

// Service is the IPC-facing side of the capture engine.
type Service struct {
	state  *State
	logger *slog.Logger
}

// NewService creates a Service operating on state.
func NewService(state *State, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{state: state, logger: logger}
}

// State returns the shared capture state.
func (service *Service) State() *State {
	return service.state
}

// Begin validates the request and arms a new window, replacing any previous one.
// A rejected request leaves the current window untouched.
func (service *Service) Begin(durationMs, targetCount int) error {
	if err := ValidateMillis(durationMs, targetCount); err != nil {
		service.logger.Warn("[capture] begin rejected", "duration_ms", durationMs, "target_count", targetCount, "error", err)
		service.state.events.emit(Event{Type: EventRejected, TargetCount: targetCount, At: service.state.clock()})
		return err
	}
	spec := model.WindowSpecFromMillis(durationMs, targetCount)

	event, err := service.state.arm(spec)
	if err != nil {
		service.state.logRecovered(err)
		return err
	}
	service.logger.Debug("[capture] window armed",
		"window", event.WindowID,
		"duration_ms", durationMs,
		"target_count", targetCount,
	)
	service.state.events.emit(event)
	return nil
}

// Drain evaluates the current window. Incomplete leaves the window untouched;
// Escaped and Sequence clear it.
func (service *Service) Drain() Result {
	result, event, err := service.state.drain()
	if err != nil {
		service.state.logRecovered(err)
		return Incomplete()
	}
	if result.Done() {
		service.logger.Info("[capture] window finalized",
			"window", event.WindowID,
			"outcome", result.Outcome.String(),
			"taps", event.Taps,
			"target_count", event.TargetCount,
		)
		service.state.events.emit(event)
	}
	return result
}

// Validate checks a window request against the accepted ranges.
func Validate(spec model.WindowSpec) error {
	if !spec.DurationInRange() {
		return invalidDuration(spec.Duration.Milliseconds())
	}
	if !spec.TargetCountInRange() {
		return invalidTargetCount(spec.TargetCount)
	}
	return nil
}

// ValidateMillis checks the wire representation before any duration arithmetic.
func ValidateMillis(durationMs, targetCount int) error {
	if int64(durationMs) < model.MinWindowDuration.Milliseconds() || int64(durationMs) > model.MaxWindowDuration.Milliseconds() {
		return invalidDuration(int64(durationMs))
	}
	return Validate(model.WindowSpecFromMillis(durationMs, targetCount))
}
