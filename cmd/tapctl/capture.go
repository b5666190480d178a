package main

import (
	"errors"
	"fmt"
	"time"

	"keytap/internal/core/capture"
	"keytap/internal/ipc"

	"github.com/spf13/cobra"
)

const (
	exitEscaped = 2
	exitTimeout = 3
)

func newBeginCommand(dial func() (ipc.Client, error)) *cobra.Command {
	var durationMs, count int
	cmd := &cobra.Command{
		Use:   "begin",
		Short: "Arm a capture window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := dial()
			if err != nil {
				return err
			}
			defer client.Close()
			return client.Begin(cmd.Context(), durationMs, count)
		},
	}
	cmd.Flags().IntVar(&durationMs, "duration", 2000, "window length in milliseconds (500-10000)")
	cmd.Flags().IntVar(&count, "count", 3, "number of taps that completes the window (1-255)")
	return cmd
}

func newDrainCommand(dial func() (ipc.Client, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "drain",
		Short: "Read the current window; prints nothing while it is incomplete",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := dial()
			if err != nil {
				return err
			}
			defer client.Close()
			text, err := client.Drain(cmd.Context())
			if err != nil {
				return err
			}
			if text != "" {
				fmt.Fprintln(cmd.OutOrStdout(), text)
			}
			return nil
		},
	}
}

func newCaptureCommand(dial func() (ipc.Client, error)) *cobra.Command {
	options := ipc.CaptureOptions{}
	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Arm a window and wait for the tapped sequence",
		Long: `capture arms a window, polls until it finalizes and prints the sequence.
It exits with status 2 when the gesture was cancelled and 3 when it timed out.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := dial()
			if err != nil {
				return err
			}
			defer client.Close()

			result, err := ipc.Capture(cmd.Context(), client, options)
			if errors.Is(err, ipc.ErrCaptureTimeout) {
				return &exitError{code: exitTimeout, message: "capture timed out"}
			}
			if err != nil {
				return err
			}
			if result.Outcome == capture.OutcomeEscaped {
				return &exitError{code: exitEscaped, message: "capture cancelled"}
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.Text)
			return nil
		},
	}
	cmd.Flags().IntVar(&options.DurationMs, "duration", 2000, "window length in milliseconds (500-10000)")
	cmd.Flags().IntVar(&options.TargetCount, "count", 3, "number of taps that completes the window (1-255)")
	cmd.Flags().DurationVar(&options.PollInterval, "poll", 50*time.Millisecond, "drain polling interval")
	cmd.Flags().DurationVar(&options.Grace, "grace", time.Second, "extra wait after the window closes")
	return cmd
}
