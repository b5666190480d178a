//go:build darwin

package platform

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnableAutostart writes a LaunchAgent property list that runs at login.
func (service *platformService) EnableAutostart(entry Entry) error {
	if err := entry.validate("enable"); err != nil {
		return err
	}
	agentsDir, err := launchAgentsDir()
	if err != nil {
		return fmt.Errorf("enable autostart: %w", err)
	}
	if err := os.MkdirAll(agentsDir, 0o755); err != nil {
		return fmt.Errorf("enable autostart: create LaunchAgents dir: %w", err)
	}

	label := launchAgentLabel(entry.Name)
	path := filepath.Join(agentsDir, label+".plist")
	if err := os.WriteFile(path, []byte(renderLaunchAgent(label, entry)), 0o644); err != nil {
		return fmt.Errorf("enable autostart: write plist: %w", err)
	}
	return nil
}

// DisableAutostart removes the LaunchAgent; a missing agent is not an error.
func (service *platformService) DisableAutostart(appName string) error {
	if err := (Entry{Name: appName}).validate("disable"); err != nil {
		return err
	}
	agentsDir, err := launchAgentsDir()
	if err != nil {
		return fmt.Errorf("disable autostart: %w", err)
	}
	path := filepath.Join(agentsDir, launchAgentLabel(appName)+".plist")
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("disable autostart: remove plist: %w", err)
	}
	return nil
}

func launchAgentsDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(homeDir, "Library", "LaunchAgents"), nil
}

func fallbackConfigDir(homeDir string) string {
	return filepath.Join(homeDir, "Library", "Application Support")
}

func launchAgentLabel(appName string) string {
	return "org.keytap." + slug(appName)
}

func renderLaunchAgent(label string, entry Entry) string {
	var builder strings.Builder
	builder.WriteString(xml.Header)
	builder.WriteString(`<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">` + "\n")
	builder.WriteString("<plist version=\"1.0\">\n<dict>\n")
	builder.WriteString("\t<key>Label</key>\n")
	fmt.Fprintf(&builder, "\t<string>%s</string>\n", escapeXML(label))
	builder.WriteString("\t<key>ProgramArguments</key>\n\t<array>\n")
	for _, arg := range append([]string{entry.Exec}, entry.Args...) {
		fmt.Fprintf(&builder, "\t\t<string>%s</string>\n", escapeXML(arg))
	}
	builder.WriteString("\t</array>\n")
	builder.WriteString("\t<key>RunAtLoad</key>\n\t<true/>\n")
	builder.WriteString("</dict>\n</plist>\n")
	return builder.String()
}

func escapeXML(value string) string {
	var builder strings.Builder
	_ = xml.EscapeText(&builder, []byte(value))
	return builder.String()
}
