package ipc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"keytap/internal/core/capture"
)

const (
	defaultPollInterval = 50 * time.Millisecond
	defaultCaptureGrace = time.Second
)

// ErrCaptureTimeout is returned when no result arrives before the window and grace expire.
var ErrCaptureTimeout = errors.New("capture timed out")

// CaptureOptions configures Capture.
type CaptureOptions struct {
	DurationMs   int
	TargetCount  int
	PollInterval time.Duration
	Grace        time.Duration
}

// Capture arms a window and polls Drain until it finalizes.
func Capture(ctx context.Context, client Client, options CaptureOptions) (capture.Result, error) {
	if options.PollInterval <= 0 {
		options.PollInterval = defaultPollInterval
	}
	if options.Grace <= 0 {
		options.Grace = defaultCaptureGrace
	}

	if err := client.Begin(ctx, options.DurationMs, options.TargetCount); err != nil {
		return capture.Incomplete(), fmt.Errorf("begin capture: %w", err)
	}

	wait := time.Duration(options.DurationMs)*time.Millisecond + options.Grace
	ctx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	ticker := time.NewTicker(options.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return capture.Incomplete(), ErrCaptureTimeout
			}
			return capture.Incomplete(), ctx.Err()
		case <-ticker.C:
		}

		text, err := client.Drain(ctx)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			return capture.Incomplete(), fmt.Errorf("drain capture: %w", err)
		}
		if result := capture.ParseWire(text); result.Done() {
			return result, nil
		}
	}
}
