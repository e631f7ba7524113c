// pkg/engine/service_test.go
package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

// configurableModule is a test module carrying an in-memory configuration.
type configurableModule struct {
	testModule
	config  map[string]any
	saveErr error
}

func (m *configurableModule) LoadConfig(forceReload bool) map[string]any { return m.config }

func (m *configurableModule) SaveConfig(cfg map[string]any) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.config = cfg
	return nil
}

func newConfigurableModule(name string) *configurableModule {
	m := &configurableModule{config: map[string]any{"timeout": 10}}
	m.desc = ModuleDescriptor{
		Name:      name,
		Version:   "1.0.0",
		Enabled:   true,
		HasConfig: true,
		ConfigSchema: Schema{
			"timeout": {Kind: KindInteger, Default: 10, Required: true},
		},
	}
	return m
}

var (
	adminCaller = Caller{ID: "admin-1", IsAdmin: true}
	plainCaller = Caller{ID: "user-1", IsAdmin: false}
)

func TestServiceGetModuleConfig(t *testing.T) {
	module := newConfigurableModule("svc_config_module")
	Register("svc_config_module", func(env Env) (Module, error) { return module, nil })
	Register("svc_bare_module", func(env Env) (Module, error) { return newTestModule("svc_bare_module"), nil })
	service := NewService(NewRunner(Env{ConfigDir: t.TempDir()}))

	t.Run("non-admin is forbidden", func(t *testing.T) {
		_, err := service.GetModuleConfig("svc_config_module", plainCaller)
		require.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("unknown module", func(t *testing.T) {
		_, err := service.GetModuleConfig("svc_missing_module", adminCaller)
		require.ErrorIs(t, err, ErrModuleNotFound)
	})

	t.Run("module without config yields empty view", func(t *testing.T) {
		view, err := service.GetModuleConfig("svc_bare_module", adminCaller)
		require.NoError(t, err)
		require.False(t, view.HasConfig)
		require.Empty(t, view.Config)
		require.Empty(t, view.ConfigSchema)
	})

	t.Run("configured module returns effective config and schema", func(t *testing.T) {
		view, err := service.GetModuleConfig("svc_config_module", adminCaller)
		require.NoError(t, err)
		require.True(t, view.HasConfig)
		require.Equal(t, module.config, view.Config)
		require.Contains(t, view.ConfigSchema, "timeout")
	})
}

func TestServiceUpdateModuleConfig(t *testing.T) {
	module := newConfigurableModule("svc_update_module")
	Register("svc_update_module", func(env Env) (Module, error) { return module, nil })
	Register("svc_update_bare_module", func(env Env) (Module, error) { return newTestModule("svc_update_bare_module"), nil })
	service := NewService(NewRunner(Env{ConfigDir: t.TempDir()}))

	t.Run("non-admin is forbidden", func(t *testing.T) {
		_, err := service.UpdateModuleConfig("svc_update_module", map[string]any{"timeout": 5}, plainCaller)
		require.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("module without config is rejected", func(t *testing.T) {
		_, err := service.UpdateModuleConfig("svc_update_bare_module", map[string]any{}, adminCaller)
		require.ErrorIs(t, err, ErrNoConfig)
	})

	t.Run("missing required field is rejected", func(t *testing.T) {
		_, err := service.UpdateModuleConfig("svc_update_module", map[string]any{"other": 1}, adminCaller)
		require.ErrorIs(t, err, ErrInvalidInput)
		require.Contains(t, err.Error(), "timeout")
	})

	t.Run("valid document is persisted and echoed", func(t *testing.T) {
		saved, err := service.UpdateModuleConfig("svc_update_module", map[string]any{"timeout": 30}, adminCaller)
		require.NoError(t, err)
		require.Equal(t, 30, saved["timeout"])
		require.Equal(t, 30, module.config["timeout"])
	})

	t.Run("save failure maps to ErrConfigSave", func(t *testing.T) {
		module.saveErr = errors.New("disk full")
		defer func() { module.saveErr = nil }()

		_, err := service.UpdateModuleConfig("svc_update_module", map[string]any{"timeout": 30}, adminCaller)
		require.ErrorIs(t, err, ErrConfigSave)
	})
}

func TestServiceExecute(t *testing.T) {
	module := newTestModule("svc_exec_module")
	Register("svc_exec_module", func(env Env) (Module, error) { return module, nil })
	service := NewService(NewRunner(Env{ConfigDir: t.TempDir()}))

	result, err := service.Execute(context.Background(), "svc_exec_module", map[string]any{"target": "x"}, adminCaller)
	require.NoError(t, err)
	require.Equal(t, StatusSuccess, result.Status)

	// The caller identity is injected so modules can attribute entities.
	require.Equal(t, "admin-1", module.lastParams["current_user_id"])
}

func TestServiceReload(t *testing.T) {
	Register("svc_reload_module", func(env Env) (Module, error) { return newTestModule("svc_reload_module"), nil })
	service := NewService(NewRunner(Env{ConfigDir: t.TempDir()}))

	t.Run("non-admin is forbidden", func(t *testing.T) {
		_, err := service.Reload("svc_reload_module", plainCaller)
		require.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("empty name reloads everything", func(t *testing.T) {
		ok, err := service.Reload("", adminCaller)
		require.NoError(t, err)
		require.True(t, ok)
	})

	t.Run("named reload", func(t *testing.T) {
		ok, err := service.Reload("svc_reload_module", adminCaller)
		require.NoError(t, err)
		require.True(t, ok)
	})

	t.Run("unknown module reports false", func(t *testing.T) {
		ok, err := service.Reload("svc_reload_missing", adminCaller)
		require.NoError(t, err)
		require.False(t, ok)
	})
}
