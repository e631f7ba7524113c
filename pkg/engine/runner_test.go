// pkg/engine/runner_test.go
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

// testModule is a minimal module implementation for runner tests. It counts
// Execute invocations so short-circuit behavior can be asserted.
type testModule struct {
	desc       ModuleDescriptor
	executions atomic.Int64
	lastParams map[string]any
	executeFn  func(ctx context.Context, params map[string]any) (any, error)
}

func (m *testModule) Metadata() ModuleDescriptor { return m.desc }

func (m *testModule) ValidateParams(params map[string]any) bool {
	return ValidateRequiredParams(m.desc, params)
}

func (m *testModule) Execute(ctx context.Context, params map[string]any) (any, error) {
	m.executions.Add(1)
	m.lastParams = params
	if m.executeFn != nil {
		return m.executeFn(ctx, params)
	}
	return map[string]any{"ok": true}, nil
}

func (m *testModule) LoadConfig(forceReload bool) map[string]any { return map[string]any{} }

func (m *testModule) SaveConfig(cfg map[string]any) error { return ErrNoConfig }

func newTestModule(name string) *testModule {
	return &testModule{
		desc: ModuleDescriptor{
			Name:        name,
			DisplayName: name,
			Version:     "1.0.0",
			Enabled:     true,
			RequiredParams: []ParamSpec{
				{Name: "target", Type: "string", Description: "Target value"},
			},
		},
	}
}

func TestRunnerLoadModules(t *testing.T) {
	t.Run("loads registered factories", func(t *testing.T) {
		module := newTestModule("load_ok_module")
		Register("load_ok_module", func(env Env) (Module, error) { return module, nil })

		runner := NewRunner(Env{ConfigDir: t.TempDir()})

		got, ok := runner.GetModule("load_ok_module")
		require.True(t, ok)
		require.Same(t, Module(module), got)
	})

	t.Run("skips failing factory without affecting others", func(t *testing.T) {
		Register("load_broken_module", func(env Env) (Module, error) {
			return nil, errors.New("boom")
		})
		Register("load_survivor_module", func(env Env) (Module, error) {
			return newTestModule("load_survivor_module"), nil
		})

		runner := NewRunner(Env{ConfigDir: t.TempDir()})

		_, ok := runner.GetModule("load_broken_module")
		require.False(t, ok)
		_, ok = runner.GetModule("load_survivor_module")
		require.True(t, ok)
	})

	t.Run("skips panicking factory", func(t *testing.T) {
		Register("load_panic_module", func(env Env) (Module, error) {
			panic("factory exploded")
		})

		runner := NewRunner(Env{ConfigDir: t.TempDir()})

		_, ok := runner.GetModule("load_panic_module")
		require.False(t, ok)
	})

	t.Run("rejects reserved and empty module names", func(t *testing.T) {
		Register("load_reserved_factory", func(env Env) (Module, error) {
			return newTestModule(BaseModuleName), nil
		})
		Register("load_nameless_factory", func(env Env) (Module, error) {
			return newTestModule(""), nil
		})

		runner := NewRunner(Env{ConfigDir: t.TempDir()})

		_, ok := runner.GetModule(BaseModuleName)
		require.False(t, ok)
		_, ok = runner.GetModule("")
		require.False(t, ok)
	})
}

func TestRunnerExecuteModule(t *testing.T) {
	t.Run("unknown module returns ErrModuleNotFound", func(t *testing.T) {
		runner := NewRunner(Env{ConfigDir: t.TempDir()})

		_, err := runner.ExecuteModule(context.Background(), "no_such_module", nil)
		require.ErrorIs(t, err, ErrModuleNotFound)
	})

	t.Run("success envelope", func(t *testing.T) {
		module := newTestModule("exec_ok_module")
		Register("exec_ok_module", func(env Env) (Module, error) { return module, nil })
		runner := NewRunner(Env{ConfigDir: t.TempDir()})

		result, err := runner.ExecuteModule(context.Background(), "exec_ok_module", map[string]any{"target": "x"})
		require.NoError(t, err)
		require.Equal(t, StatusSuccess, result.Status)
		require.Equal(t, "exec_ok_module", result.Module)
		require.Empty(t, result.Error)
		require.NotNil(t, result.Data)
		require.False(t, result.Timestamp.IsZero())
	})

	t.Run("missing parameters short-circuit before Execute", func(t *testing.T) {
		module := newTestModule("exec_params_module")
		Register("exec_params_module", func(env Env) (Module, error) { return module, nil })
		runner := NewRunner(Env{ConfigDir: t.TempDir()})

		result, err := runner.ExecuteModule(context.Background(), "exec_params_module", map[string]any{})
		require.NoError(t, err)
		require.Equal(t, StatusError, result.Status)
		require.Equal(t, ErrInvalidParams.Error(), result.Error)
		require.EqualValues(t, 0, module.executions.Load())
	})

	t.Run("module error becomes error envelope", func(t *testing.T) {
		module := newTestModule("exec_fail_module")
		module.executeFn = func(ctx context.Context, params map[string]any) (any, error) {
			return nil, errors.New("upstream timed out")
		}
		Register("exec_fail_module", func(env Env) (Module, error) { return module, nil })
		runner := NewRunner(Env{ConfigDir: t.TempDir()})

		result, err := runner.ExecuteModule(context.Background(), "exec_fail_module", map[string]any{"target": "x"})
		require.NoError(t, err)
		require.Equal(t, StatusError, result.Status)
		require.Equal(t, "upstream timed out", result.Error)
		require.Nil(t, result.Data)
	})

	t.Run("module panic is contained", func(t *testing.T) {
		module := newTestModule("exec_panic_module")
		module.executeFn = func(ctx context.Context, params map[string]any) (any, error) {
			panic("nil map write")
		}
		Register("exec_panic_module", func(env Env) (Module, error) { return module, nil })
		runner := NewRunner(Env{ConfigDir: t.TempDir()})

		result, err := runner.ExecuteModule(context.Background(), "exec_panic_module", map[string]any{"target": "x"})
		require.NoError(t, err)
		require.Equal(t, StatusError, result.Status)
		require.Contains(t, result.Error, "module execution failed")
	})
}

func TestRunnerReload(t *testing.T) {
	t.Run("reload one replaces the instance", func(t *testing.T) {
		var built atomic.Int64
		Register("reload_one_module", func(env Env) (Module, error) {
			built.Add(1)
			return newTestModule("reload_one_module"), nil
		})
		runner := NewRunner(Env{ConfigDir: t.TempDir()})

		before, ok := runner.GetModule("reload_one_module")
		require.True(t, ok)
		builtBefore := built.Load()

		require.True(t, runner.ReloadModule("reload_one_module"))
		require.Equal(t, builtBefore+1, built.Load())

		after, ok := runner.GetModule("reload_one_module")
		require.True(t, ok)
		require.NotSame(t, before, after)
	})

	t.Run("reload failure keeps previous instance", func(t *testing.T) {
		var calls atomic.Int64
		Register("reload_flaky_module", func(env Env) (Module, error) {
			if calls.Add(1) > 1 {
				return nil, fmt.Errorf("config file corrupted")
			}
			return newTestModule("reload_flaky_module"), nil
		})
		runner := NewRunner(Env{ConfigDir: t.TempDir()})

		before, ok := runner.GetModule("reload_flaky_module")
		require.True(t, ok)

		require.False(t, runner.ReloadModule("reload_flaky_module"))

		after, ok := runner.GetModule("reload_flaky_module")
		require.True(t, ok)
		require.Same(t, before, after)
	})

	t.Run("reload unknown module returns false", func(t *testing.T) {
		runner := NewRunner(Env{ConfigDir: t.TempDir()})
		require.False(t, runner.ReloadModule("reload_missing_module"))
	})

	t.Run("reload all repeats discovery", func(t *testing.T) {
		var built atomic.Int64
		Register("reload_all_module", func(env Env) (Module, error) {
			built.Add(1)
			return newTestModule("reload_all_module"), nil
		})
		runner := NewRunner(Env{ConfigDir: t.TempDir()})
		builtBefore := built.Load()

		runner.ReloadAll()

		require.Equal(t, builtBefore+1, built.Load())
		_, ok := runner.GetModule("reload_all_module")
		require.True(t, ok)
	})
}

func TestRunnerDescriptors(t *testing.T) {
	Register("descriptor_module", func(env Env) (Module, error) {
		m := newTestModule("descriptor_module")
		m.desc.RequiredParams = nil
		m.desc.ConfigSchema = nil
		return m, nil
	})
	runner := NewRunner(Env{ConfigDir: t.TempDir()})

	var found bool
	for _, desc := range runner.Descriptors() {
		if desc.Name != "descriptor_module" {
			continue
		}
		found = true
		require.NotNil(t, desc.ConfigSchema)
		require.NotNil(t, desc.RequiredParams)
		require.NotNil(t, desc.OptionalParams)
	}
	require.True(t, found)
	require.Equal(t, len(runner.Descriptors()), runner.Count())
}
