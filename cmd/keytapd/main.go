package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const (
	appName = "KeyTap"
	appID   = "org.keytap.daemon"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "keytapd:", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var options daemonOptions
	cmd := &cobra.Command{
		Use:           "keytapd",
		Short:         "Capture repeated key taps and serve them over IPC",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(options)
		},
	}
	cmd.Flags().StringVar(&options.configPath, "config", "", "settings file (default <user config dir>/KeyTap/settings.yaml)")
	cmd.Flags().StringVar(&options.logLevel, "log-level", "", "override the configured log level")
	cmd.Flags().BoolVar(&options.hidden, "hidden", false, "start without showing the capture window")
	return cmd
}
