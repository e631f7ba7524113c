package paths

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfigDirHonorsXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	require.Equal(t, filepath.Join("/custom/config", "osfiler"), ConfigDir())
}

func TestDataDirHonorsXDG(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/custom/data")
	require.Equal(t, filepath.Join("/custom/data", "osfiler"), DataDir())
}

func TestModuleConfigDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	require.Equal(t, filepath.Join("/custom/config", "osfiler", "modules"), ModuleConfigDir())
}
