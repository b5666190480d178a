//go:build windows

package platform

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
)

const registryRunKey = `HKCU\Software\Microsoft\Windows\CurrentVersion\Run`

// EnableAutostart registers the command line under the per-user Run key.
func (service *platformService) EnableAutostart(entry Entry) error {
	if err := entry.validate("enable"); err != nil {
		return err
	}
	return runReg("enable autostart", "add", registryRunKey, "/v", entry.Name, "/t", "REG_SZ", "/d", commandLine(entry), "/f")
}

// DisableAutostart deletes the Run key value.
func (service *platformService) DisableAutostart(appName string) error {
	if err := (Entry{Name: appName}).validate("disable"); err != nil {
		return err
	}
	return runReg("disable autostart", "delete", registryRunKey, "/v", appName, "/f")
}

func runReg(action string, args ...string) error {
	output, err := exec.Command("reg", args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: reg %s failed: %w: %s", action, args[0], err, strings.TrimSpace(string(output)))
	}
	return nil
}

func fallbackConfigDir(homeDir string) string {
	return filepath.Join(homeDir, "AppData", "Roaming")
}

func commandLine(entry Entry) string {
	parts := make([]string, 0, len(entry.Args)+1)
	parts = append(parts, `"`+strings.Trim(entry.Exec, `"`)+`"`)
	for _, arg := range entry.Args {
		parts = append(parts, syscall.EscapeArg(arg))
	}
	return strings.Join(parts, " ")
}
