// pkg/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	manager := NewManager()
	require.NoError(t, manager.Load(nil, ""))

	cfg := manager.Get()
	require.Equal(t, "info", cfg.Log.Level)
	require.Equal(t, "text", cfg.Log.Format)
	require.NotEmpty(t, cfg.Modules.ConfigDir)
	require.False(t, cfg.Modules.WatchConfig)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	content := `
log:
  level: warn
  format: json
modules:
  config_dir: /tmp/osfiler-test-modules
  watch_config: true
`
	require.NoError(t, os.WriteFile(configFile, []byte(content), 0o640))

	manager := NewManager()
	require.NoError(t, manager.Load(nil, configFile))

	cfg := manager.Get()
	require.Equal(t, "warn", cfg.Log.Level)
	require.Equal(t, "json", cfg.Log.Format)
	require.Equal(t, "/tmp/osfiler-test-modules", cfg.Modules.ConfigDir)
	require.True(t, cfg.Modules.WatchConfig)
}

func TestLoadMissingFileFails(t *testing.T) {
	manager := NewManager()
	require.Error(t, manager.Load(nil, filepath.Join(t.TempDir(), "nope.yaml")))
}

func TestLoadFlagsOverrideFile(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("log:\n  level: warn\n"), 0o640))

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindFlags(flags)
	require.NoError(t, flags.Parse([]string{"--log.level=error"}))

	manager := NewManager()
	require.NoError(t, manager.Load(flags, configFile))
	require.Equal(t, "error", manager.Get().Log.Level)
}

func TestLoadDebugFlag(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindFlags(flags)
	require.NoError(t, flags.Parse([]string{"--debug"}))

	manager := NewManager()
	require.NoError(t, manager.Load(flags, ""))
	require.Equal(t, "debug", manager.Get().Log.Level)
}

func TestDefaultConfigAsMap(t *testing.T) {
	m := DefaultConfigAsMap()
	require.Equal(t, "info", m["log.level"])
	require.Contains(t, m, "modules.config_dir")
	require.Contains(t, m, "modules.watch_config")
}
