package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"keytap/internal/platform"

	"github.com/spf13/cobra"
)

const autostartName = "KeyTap"

func newAutostartCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "autostart",
		Short: "Start keytapd at login",
	}

	var execPath string
	var hidden bool
	enable := &cobra.Command{
		Use:   "enable",
		Short: "Register keytapd to start at login",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if execPath == "" {
				resolved, err := findDaemon()
				if err != nil {
					return err
				}
				execPath = resolved
			}
			entry := platform.Entry{Name: autostartName, Exec: execPath}
			if hidden {
				entry.Args = []string{"--hidden"}
			}
			if err := platform.NewService().EnableAutostart(entry); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "autostart enabled: %s\n", execPath)
			return nil
		},
	}
	enable.Flags().StringVar(&execPath, "exec", "", "path to keytapd (default: next to tapctl, then PATH)")
	enable.Flags().BoolVar(&hidden, "hidden", true, "start without showing the capture window")

	disable := &cobra.Command{
		Use:   "disable",
		Short: "Remove the login entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := platform.NewService().DisableAutostart(autostartName); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "autostart disabled")
			return nil
		},
	}

	cmd.AddCommand(enable, disable)
	return cmd
}

func findDaemon() (string, error) {
	name := "keytapd"
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	if self, err := os.Executable(); err == nil {
		sibling := filepath.Join(filepath.Dir(self), name)
		if info, statErr := os.Stat(sibling); statErr == nil && !info.IsDir() {
			return sibling, nil
		}
	}
	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("locate keytapd: %w", err)
	}
	return filepath.Abs(path)
}
