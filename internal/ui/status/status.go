// Package status renders capture events as short human-readable lines.
package status

import (
	"fmt"

	"keytap/internal/core/capture"
)

// Idle is shown while no window is armed.
const Idle = "Idle"

// Describe returns the status line for event.
func Describe(event capture.Event) string {
	switch event.Type {
	case capture.EventArmed:
		return fmt.Sprintf("Tap %d times within %s", event.TargetCount, formatSeconds(event.Duration.Seconds()))
	case capture.EventTap:
		return fmt.Sprintf("Taps: %d / %d", event.Taps, event.TargetCount)
	case capture.EventCompleted:
		return fmt.Sprintf("Captured %d taps", event.Taps)
	case capture.EventEscaped:
		return "Cancelled"
	case capture.EventRejected:
		return "Request rejected"
	default:
		return Idle
	}
}

// DescribeSnapshot returns the status line for the current window. An
// expired window stays armed until the next begin and is reported as such.
func DescribeSnapshot(snapshot capture.Snapshot) string {
	switch {
	case !snapshot.Armed:
		return Idle
	case snapshot.Expired:
		return fmt.Sprintf("Timed out at %d / %d taps", snapshot.Taps, snapshot.TargetCount)
	default:
		remaining := snapshot.Duration - snapshot.Elapsed
		return fmt.Sprintf("Taps: %d / %d, %.1fs left", snapshot.Taps, snapshot.TargetCount, remaining.Seconds())
	}
}

func formatSeconds(seconds float64) string {
	if seconds == float64(int64(seconds)) {
		return fmt.Sprintf("%ds", int64(seconds))
	}
	return fmt.Sprintf("%.1fs", seconds)
}
