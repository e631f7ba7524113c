// cmd/osfiler/commands/root_test.go
package commands

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewCommand(t *testing.T) {
	cmd := NewCommand()
	require.Equal(t, "osfiler", cmd.Use)
	require.NotEmpty(t, cmd.Version)

	t.Run("registers the modules command group", func(t *testing.T) {
		modules, _, err := cmd.Find([]string{"modules"})
		require.NoError(t, err)
		require.Equal(t, "modules", modules.Name())
	})

	t.Run("declares the global flags", func(t *testing.T) {
		require.NotNil(t, cmd.PersistentFlags().Lookup("config"))
		require.NotNil(t, cmd.PersistentFlags().Lookup("log.level"))
		require.NotNil(t, cmd.PersistentFlags().Lookup("debug"))
	})
}
