package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// ConfigDir returns the config directory for OSFiler.
// Order: XDG_CONFIG_HOME/osfiler, platform-specific fallback.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "osfiler")
	}
	if runtime.GOOS == "windows" {
		if appData := os.Getenv("AppData"); appData != "" {
			return filepath.Join(appData, "OSFiler")
		}
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "osfiler")
}

// DataDir returns the data directory for OSFiler.
// Order: XDG_DATA_HOME/osfiler, platform-specific fallback.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "osfiler")
	}
	if runtime.GOOS == "windows" {
		if appData := os.Getenv("AppData"); appData != "" {
			return filepath.Join(appData, "OSFiler")
		}
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "osfiler")
}

// ModuleConfigDir returns the directory holding per-module configuration
// documents, one JSON document per module name.
func ModuleConfigDir() string {
	return filepath.Join(ConfigDir(), "modules")
}
