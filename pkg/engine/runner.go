// pkg/engine/runner.go
package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/Masterminds/semver/v3"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/OnlyOneCookie/OSFiler/pkg/modconfig"
)

// slot tracks a loaded module together with the factory that produced it,
// so a single module can be reloaded without re-running the full discovery.
type slot struct {
	factoryName string
	module      Module
}

// Runner is the process-wide module coordinator: it discovers, indexes,
// executes, and reloads modules. Construct one instance at process start
// and tear it down at shutdown; concurrent access is synchronized
// internally.
type Runner struct {
	env    Env
	logger zerolog.Logger

	mu    sync.RWMutex
	slots map[string]slot
}

// NewRunner creates a runner and performs the initial module load.
func NewRunner(env Env) *Runner {
	r := &Runner{
		env:    env,
		logger: log.With().Str("component", "engine.runner").Logger(),
		slots:  map[string]slot{},
	}
	r.LoadModules()
	return r
}

// LoadModules instantiates every registered factory and atomically replaces
// the runner's index. A factory that fails to construct is logged and
// skipped; one broken module must not prevent others from loading.
func (r *Runner) LoadModules() {
	registered := RegisteredFactories()
	next := make(map[string]slot, len(registered))

	for factoryName, factory := range registered {
		module, err := r.buildModule(factoryName, factory)
		if err != nil {
			r.logger.Error().Err(err).Str("factory", factoryName).Msg("Skipping module")
			continue
		}
		name := module.Metadata().Name
		if _, dup := next[name]; dup {
			r.logger.Warn().Str("module", name).Str("factory", factoryName).Msg("Duplicate module name; keeping first registration")
			continue
		}
		next[name] = slot{factoryName: factoryName, module: module}
		r.logger.Info().Str("module", name).Msg("Registered module")
	}

	r.mu.Lock()
	r.slots = next
	r.mu.Unlock()

	r.logger.Info().Int("count", len(next)).Msg("Modules loaded")
}

// buildModule runs a factory and applies the registration gates.
func (r *Runner) buildModule(factoryName string, factory ModuleFactory) (Module, error) {
	var module Module
	var err error
	func() {
		defer func() {
			if rec := recover(); rec != nil {
				err = fmt.Errorf("factory %q panicked: %v", factoryName, rec)
			}
		}()
		module, err = factory(r.env)
	}()
	if err != nil {
		return nil, err
	}
	if module == nil {
		return nil, fmt.Errorf("factory %q returned nil module", factoryName)
	}

	desc := module.Metadata()
	if desc.Name == "" || desc.Name == BaseModuleName {
		return nil, fmt.Errorf("factory %q produced invalid module name %q", factoryName, desc.Name)
	}
	if _, verr := semver.NewVersion(desc.Version); verr != nil {
		r.logger.Warn().Str("module", desc.Name).Str("version", desc.Version).Msg("Module version is not valid semver")
	}
	return module, nil
}

// GetModule returns the module registered under name.
func (r *Runner) GetModule(name string) (Module, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.slots[name]
	if !ok {
		return nil, false
	}
	return s.module, true
}

// Descriptors returns the metadata of all loaded modules with HasConfig and
// ConfigSchema normalized for the API layer (ConfigSchema is never nil).
func (r *Runner) Descriptors() []ModuleDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	descriptors := make([]ModuleDescriptor, 0, len(r.slots))
	for _, s := range r.slots {
		desc := s.module.Metadata()
		if desc.ConfigSchema == nil {
			desc.ConfigSchema = Schema{}
		}
		if desc.RequiredParams == nil {
			desc.RequiredParams = []ParamSpec{}
		}
		if desc.OptionalParams == nil {
			desc.OptionalParams = []ParamSpec{}
		}
		descriptors = append(descriptors, desc)
	}
	return descriptors
}

// Count returns the number of loaded modules.
func (r *Runner) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.slots)
}

// ExecuteModule runs the named module inside the error-containment
// envelope. It returns ErrModuleNotFound for unregistered names; every
// other failure mode is absorbed into the returned ExecutionResult.
func (r *Runner) ExecuteModule(ctx context.Context, name string, params map[string]any) (ExecutionResult, error) {
	module, ok := r.GetModule(name)
	if !ok {
		r.logger.Warn().Str("module", name).Msg("Module not found")
		return ExecutionResult{}, fmt.Errorf("%w: %s", ErrModuleNotFound, name)
	}

	execID := uuid.NewString()
	logger := r.logger.With().Str("module", name).Str("execution_id", execID).Logger()
	logger.Info().Msg("Running module")

	return r.run(ctx, logger, module, params), nil
}

// run wraps Execute with parameter validation and error containment. The
// caller never sees a raw fault from module code.
func (r *Runner) run(ctx context.Context, logger zerolog.Logger, module Module, params map[string]any) (result ExecutionResult) {
	name := module.Metadata().Name

	defer func() {
		if rec := recover(); rec != nil {
			logger.Error().Interface("panic", rec).Msg("Module panicked during execution")
			result = ErrorResult(name, fmt.Sprintf("module execution failed: %v", rec))
		}
	}()

	if !module.ValidateParams(params) {
		logger.Error().Msg("Missing required parameters")
		return ErrorResult(name, ErrInvalidParams.Error())
	}

	data, err := module.Execute(ctx, params)
	if err != nil {
		logger.Error().Err(err).Msg("Module execution failed")
		return ErrorResult(name, err.Error())
	}

	logger.Info().Msg("Module executed successfully")
	return SuccessResult(name, data)
}

// ReloadModule re-runs the factory backing the named module and replaces
// its registry entry. It returns false, leaving the previous instance in
// place, when the name is unknown, the factory fails, or the fresh
// instance no longer reports the same name.
func (r *Runner) ReloadModule(name string) bool {
	r.mu.RLock()
	s, ok := r.slots[name]
	r.mu.RUnlock()
	if !ok {
		r.logger.Warn().Str("module", name).Msg("Cannot reload module: not found")
		return false
	}

	factory, ok := RegisteredFactories()[s.factoryName]
	if !ok {
		r.logger.Warn().Str("module", name).Str("factory", s.factoryName).Msg("Cannot reload module: factory no longer registered")
		return false
	}

	fresh, err := r.buildModule(s.factoryName, factory)
	if err != nil {
		r.logger.Error().Err(err).Str("module", name).Msg("Module reload failed; keeping previous instance")
		return false
	}
	if fresh.Metadata().Name != name {
		r.logger.Warn().Str("module", name).Str("got", fresh.Metadata().Name).Msg("Reloaded factory no longer yields this module")
		return false
	}

	r.mu.Lock()
	r.slots[name] = slot{factoryName: s.factoryName, module: fresh}
	r.mu.Unlock()

	r.logger.Info().Str("module", name).Msg("Module reloaded")
	return true
}

// ReloadAll fully repeats discovery and registration.
func (r *Runner) ReloadAll() {
	r.logger.Info().Msg("Reloading all modules")
	r.LoadModules()
}

// WatchConfigs force-reloads a module's configuration when its persisted
// document is edited externally. It blocks until ctx is canceled.
func (r *Runner) WatchConfigs(ctx context.Context) error {
	watcher, err := modconfig.NewWatcher(r.env.ConfigDir, func(moduleName string) {
		module, ok := r.GetModule(moduleName)
		if !ok {
			return
		}
		module.LoadConfig(true)
		r.logger.Info().Str("module", moduleName).Msg("Configuration reloaded after external edit")
	})
	if err != nil {
		return err
	}
	return watcher.Start(ctx)
}
