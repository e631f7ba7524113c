// pkg/config/types.go
package config

// Config is the root configuration structure for the OSFiler engine host.
type Config struct {
	Log     LogConfig     `description:"Logging configuration" koanf:"log"`
	Modules ModulesConfig `description:"Module engine configuration" koanf:"modules"`
}

// LogConfig holds logging related configuration.
type LogConfig struct {
	Level  string `description:"Log level (debug, info, warn, error)" koanf:"level"`
	Format string `description:"Log format: json | text" koanf:"format"`
}

// ModulesConfig holds configuration for the module engine.
type ModulesConfig struct {
	// ConfigDir is the directory holding per-module configuration
	// documents. Empty means the platform default under the user config
	// directory.
	ConfigDir string `description:"Per-module configuration directory" koanf:"config_dir"`

	// WatchConfig enables the fsnotify watcher that refreshes module
	// configuration when documents are edited externally.
	WatchConfig bool `description:"Reload module configuration on external edits" koanf:"watch_config"`
}
