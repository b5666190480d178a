package main

import (
	"fmt"
	"strings"
	"time"

	"keytap/internal/core/model"
	"keytap/internal/ipc"

	"github.com/spf13/cobra"
)

// connectionOptions select the daemon endpoint.
type connectionOptions struct {
	transport  string
	busName    string
	objectPath string
	socketPath string
	timeout    time.Duration
}

type clientFactory func(options connectionOptions) (ipc.Client, error)

func newRootCommand(connect clientFactory) *cobra.Command {
	options := &connectionOptions{}
	rootCmd := &cobra.Command{
		Use:           "tapctl",
		Short:         "Control the KeyTap capture daemon",
		Long:          `tapctl arms capture windows on a running keytapd and reads back the tapped sequence.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&options.transport, "transport", defaultTransport(), "IPC transport: dbus or socket")
	flags.StringVar(&options.busName, "bus-name", model.DefaultBusName, "D-Bus name of the daemon")
	flags.StringVar(&options.objectPath, "object-path", model.DefaultObjectPath, "D-Bus object path of the capture object")
	flags.StringVar(&options.socketPath, "socket", "", "stream socket path (default per-user runtime socket)")
	flags.DurationVar(&options.timeout, "timeout", 3*time.Second, "timeout for each IPC call")

	dial := func() (ipc.Client, error) {
		return connect(*options)
	}
	rootCmd.AddCommand(
		newBeginCommand(dial),
		newDrainCommand(dial),
		newCaptureCommand(dial),
		newAutostartCommand(),
	)
	return rootCmd
}

func defaultTransport() string {
	if model.DefaultSettings().Transport.ServesDBus() {
		return string(model.TransportDBus)
	}
	return string(model.TransportSocket)
}

func newClient(options connectionOptions) (ipc.Client, error) {
	switch strings.ToLower(options.transport) {
	case string(model.TransportDBus):
		return ipc.NewDBusClient(options.busName, options.objectPath, options.timeout)
	case string(model.TransportSocket):
		return ipc.NewStreamClient(options.socketPath, options.timeout)
	default:
		return nil, fmt.Errorf("unknown transport %q (want dbus or socket)", options.transport)
	}
}
