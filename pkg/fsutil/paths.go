package fsutil

import (
	"os"
	"path/filepath"
)

// AppName is the name of the application used in paths.
const AppName = "corsget"

// GetConfigDir returns the platform-specific configuration directory for corsget.
// On Linux: ~/.config/corsget/
// On macOS: ~/Library/Application Support/corsget/
// On Windows: %AppData%\corsget\
func GetConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, AppName), nil
}
