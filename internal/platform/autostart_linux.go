//go:build linux

package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnableAutostart writes an XDG autostart desktop entry.
func (service *platformService) EnableAutostart(entry Entry) error {
	if err := entry.validate("enable"); err != nil {
		return err
	}
	autostartDir, err := service.autostartDir()
	if err != nil {
		return fmt.Errorf("enable autostart: %w", err)
	}
	if err := os.MkdirAll(autostartDir, 0o755); err != nil {
		return fmt.Errorf("enable autostart: create autostart dir: %w", err)
	}

	path := filepath.Join(autostartDir, slug(entry.Name)+".desktop")
	if err := os.WriteFile(path, []byte(renderDesktopEntry(entry)), 0o644); err != nil {
		return fmt.Errorf("enable autostart: write desktop entry: %w", err)
	}
	return nil
}

// DisableAutostart removes the desktop entry; a missing entry is not an error.
func (service *platformService) DisableAutostart(appName string) error {
	if err := (Entry{Name: appName}).validate("disable"); err != nil {
		return err
	}
	autostartDir, err := service.autostartDir()
	if err != nil {
		return fmt.Errorf("disable autostart: %w", err)
	}
	path := filepath.Join(autostartDir, slug(appName)+".desktop")
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("disable autostart: remove desktop entry: %w", err)
	}
	return nil
}

func (service *platformService) autostartDir() (string, error) {
	configDir, err := service.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "autostart"), nil
}

func fallbackConfigDir(homeDir string) string {
	return filepath.Join(homeDir, ".config")
}

func renderDesktopEntry(entry Entry) string {
	fields := make([]string, 0, len(entry.Args)+1)
	for _, arg := range append([]string{entry.Exec}, entry.Args...) {
		fields = append(fields, quoteExecArg(arg))
	}

	var builder strings.Builder
	builder.WriteString("[Desktop Entry]\n")
	builder.WriteString("Type=Application\n")
	fmt.Fprintf(&builder, "Name=%s\n", entry.Name)
	fmt.Fprintf(&builder, "Exec=%s\n", strings.Join(fields, " "))
	builder.WriteString("X-GNOME-Autostart-enabled=true\n")
	builder.WriteString("NoDisplay=true\n")
	builder.WriteString("Terminal=false\n")
	return builder.String()
}

// quoteExecArg applies the desktop entry Exec quoting rules.
func quoteExecArg(arg string) string {
	if arg != "" && !strings.ContainsAny(arg, " \t\n\"'\\><~|&;$*?#()`") {
		return arg
	}
	replacer := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "`", "\\`", `$`, `\$`)
	return `"` + replacer.Replace(arg) + `"`
}
