package main

import (
	"errors"
	"fmt"
	"os"

	"keytap/internal/ipc"
)

func main() {
	if err := newRootCommand(newClient).Execute(); err != nil {
		var exit *exitError
		if errors.As(err, &exit) {
			if exit.message != "" {
				fmt.Fprintln(os.Stderr, exit.message)
			}
			os.Exit(exit.code)
		}
		fmt.Fprintln(os.Stderr, "tapctl:", describeError(err))
		os.Exit(1)
	}
}

func describeError(err error) string {
	if ipc.IsConnectionError(err) {
		return fmt.Sprintf("keytapd is not running (%v)", err)
	}
	return err.Error()
}

// exitError ends the process with a specific status.
type exitError struct {
	code    int
	message string
}

func (err *exitError) Error() string {
	return fmt.Sprintf("exit status %d: %s", err.code, err.message)
}
