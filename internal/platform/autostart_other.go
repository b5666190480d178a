//go:build !linux && !darwin && !windows

package platform

import "path/filepath"

func (service *platformService) EnableAutostart(entry Entry) error {
	if err := entry.validate("enable"); err != nil {
		return err
	}
	return ErrAutostartUnsupported
}

func (service *platformService) DisableAutostart(appName string) error {
	return ErrAutostartUnsupported
}

func fallbackConfigDir(homeDir string) string {
	return filepath.Join(homeDir, ".config")
}
