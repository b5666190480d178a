package model

import "time"

// Capture window limits accepted by Begin.
const (
	MinWindowDuration = 500 * time.Millisecond
	MaxWindowDuration = 10 * time.Second
	MinTargetCount    = 1
	MaxTargetCount    = 255
)

// WindowSpec describes a single capture window request.
type WindowSpec struct {
	Duration    time.Duration
	TargetCount int
}

// WindowSpecFromMillis builds a WindowSpec from the wire representation.
func WindowSpecFromMillis(durationMs, targetCount int) WindowSpec {
	return WindowSpec{
		Duration:    time.Duration(durationMs) * time.Millisecond,
		TargetCount: targetCount,
	}
}

// DurationInRange reports whether the window duration is accepted.
func (spec WindowSpec) DurationInRange() bool {
	return spec.Duration >= MinWindowDuration && spec.Duration <= MaxWindowDuration
}

// TargetCountInRange reports whether the tap count is accepted.
func (spec WindowSpec) TargetCountInRange() bool {
	return spec.TargetCount >= MinTargetCount && spec.TargetCount <= MaxTargetCount
}
