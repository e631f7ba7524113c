// pkg/engine/registry.go
package engine

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// Env carries the dependencies a module factory needs at construction time.
type Env struct {
	// ConfigDir is the directory holding per-module configuration documents.
	ConfigDir string
}

// ModuleFactory constructs a fresh module instance. Factories are invoked
// on every load and reload; a returned error skips the module without
// affecting the rest of the registry.
type ModuleFactory func(env Env) (Module, error)

var (
	factoryMu sync.RWMutex
	factories = make(map[string]ModuleFactory)
)

// Register adds a module factory under the given name. Module packages call
// it from init(); the runner derives its index from the registered set.
func Register(name string, factory ModuleFactory) {
	factoryMu.Lock()
	defer factoryMu.Unlock()
	if _, exists := factories[name]; exists {
		log.Warn().Str("module", name).Msg("Module factory is being overwritten")
	}
	factories[name] = factory
}

// RegisteredFactories returns a snapshot of the factory map.
func RegisteredFactories() map[string]ModuleFactory {
	factoryMu.RLock()
	defer factoryMu.RUnlock()
	snapshot := make(map[string]ModuleFactory, len(factories))
	for name, factory := range factories {
		snapshot[name] = factory
	}
	return snapshot
}
