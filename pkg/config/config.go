// pkg/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	kyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	kfile "github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/OnlyOneCookie/OSFiler/pkg/paths"
)

// Global Koanf instance, initialized once at startup.
var (
	k    *koanf.Koanf
	once sync.Once
)

// InitGlobalConfig initializes the global Koanf instance.
// This should be called early in the application lifecycle, before Load.
func InitGlobalConfig() {
	once.Do(func() {
		k = koanf.New(".")
	})
}

// Manager handles loading and accessing application configuration.
type Manager struct {
	koanfInstance *koanf.Koanf
	currentConfig Config
	mu            sync.RWMutex // To protect currentConfig during runtime updates
}

// NewManager creates a new configuration Manager.
func NewManager() *Manager {
	InitGlobalConfig()
	return &Manager{
		koanfInstance: k,
	}
}

// DefaultConfig returns a new Config struct populated with hardcoded
// default values. These serve as the baseline if no other source
// overrides them.
func DefaultConfig() Config {
	return Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Modules: ModulesConfig{
			ConfigDir:   paths.ModuleConfigDir(),
			WatchConfig: false,
		},
	}
}

// Load loads configuration from defaults, an optional YAML file, and
// command-line flags, in increasing precedence.
func (m *Manager) Load(flags *pflag.FlagSet, customConfigFilePath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.koanfInstance.Load(confmap.Provider(DefaultConfigAsMap(), "."), nil); err != nil {
		return fmt.Errorf("error loading hardcoded defaults into koanf: %w", err)
	}

	configFile := customConfigFilePath
	if configFile == "" {
		candidate := filepath.Join(paths.ConfigDir(), "config.yaml")
		if _, err := os.Stat(candidate); err == nil {
			configFile = candidate
		}
	}
	if configFile != "" {
		if err := m.koanfInstance.Load(kfile.Provider(configFile), kyaml.Parser()); err != nil {
			return fmt.Errorf("error loading config file %s: %w", configFile, err)
		}
	}

	// Command-line flags take precedence over file and defaults.
	if flags != nil {
		if err := m.koanfInstance.Load(posflag.Provider(flags, ".", m.koanfInstance), nil); err != nil {
			return fmt.Errorf("error loading command-line flags: %w", err)
		}

		debugFlag := flags.Lookup("debug")
		if debugFlag != nil && debugFlag.Value.String() == "true" {
			_ = m.koanfInstance.Set("log.level", "debug")
		}
	}

	var newCfg Config
	if err := m.koanfInstance.UnmarshalWithConf("", &newCfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return fmt.Errorf("error unmarshaling final config: %w", err)
	}
	if newCfg.Modules.ConfigDir == "" {
		newCfg.Modules.ConfigDir = paths.ModuleConfigDir()
	}
	m.currentConfig = newCfg

	return nil
}

// Get returns a copy of the current configuration.
func (m *Manager) Get() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cfgCopy := m.currentConfig
	return cfgCopy
}

// DefaultConfigAsMap converts the DefaultConfig struct to a flat map for
// koanf's confmap provider, so koanf knows every key.
func DefaultConfigAsMap() map[string]interface{} {
	def := DefaultConfig()
	return map[string]interface{}{
		"log.level":  def.Log.Level,
		"log.format": def.Log.Format,

		"modules.config_dir":   def.Modules.ConfigDir,
		"modules.watch_config": def.Modules.WatchConfig,
	}
}

// BindFlags defines command-line flags corresponding to configuration
// settings. Call when setting up the root cobra command.
func BindFlags(flags *pflag.FlagSet) {
	defaults := DefaultConfig()

	flags.String("log.level", defaults.Log.Level, "Log level (debug, info, warn, error)")
	flags.String("modules.config_dir", defaults.Modules.ConfigDir, "Per-module configuration directory")

	var flagvar bool
	flags.BoolVar(&flagvar, "debug", false, "Enable debug logging")
}
