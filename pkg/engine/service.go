// pkg/engine/service.go
package engine

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Caller identifies the already-authenticated principal on whose behalf a
// boundary operation runs. The API layer fills it in.
type Caller struct {
	ID      string
	IsAdmin bool
}

// ModuleConfigView is the administrative view of a module's configuration.
type ModuleConfigView struct {
	HasConfig    bool           `json:"has_config"`
	Config       map[string]any `json:"config"`
	ConfigSchema Schema         `json:"config_schema"`
}

// Service is the boundary facade consumed by the API layer. It translates
// runner state into typed results and enforces administrative gating for
// config and reload operations.
type Service struct {
	runner *Runner
	logger zerolog.Logger
}

// NewService wraps a runner in the boundary facade.
func NewService(runner *Runner) *Service {
	return &Service{
		runner: runner,
		logger: log.With().Str("component", "engine.service").Logger(),
	}
}

// ListModules returns the descriptors of all loaded modules.
func (s *Service) ListModules() []ModuleDescriptor {
	return s.runner.Descriptors()
}

// GetModuleDescriptor returns the named module's descriptor.
func (s *Service) GetModuleDescriptor(name string) (ModuleDescriptor, error) {
	module, ok := s.runner.GetModule(name)
	if !ok {
		return ModuleDescriptor{}, fmt.Errorf("%w: %s", ErrModuleNotFound, name)
	}
	desc := module.Metadata()
	if desc.ConfigSchema == nil {
		desc.ConfigSchema = Schema{}
	}
	return desc, nil
}

// GetModuleConfig returns the effective configuration of the named module.
// Administrative callers only.
func (s *Service) GetModuleConfig(name string, caller Caller) (ModuleConfigView, error) {
	if !caller.IsAdmin {
		return ModuleConfigView{}, fmt.Errorf("%w: only administrators can view module configurations", ErrForbidden)
	}

	module, ok := s.runner.GetModule(name)
	if !ok {
		return ModuleConfigView{}, fmt.Errorf("%w: %s", ErrModuleNotFound, name)
	}

	desc := module.Metadata()
	if !desc.HasConfig {
		return ModuleConfigView{HasConfig: false, Config: map[string]any{}, ConfigSchema: Schema{}}, nil
	}
	return ModuleConfigView{
		HasConfig:    true,
		Config:       module.LoadConfig(true),
		ConfigSchema: desc.ConfigSchema,
	}, nil
}

// UpdateModuleConfig validates and persists a module configuration
// document. Administrative callers only.
func (s *Service) UpdateModuleConfig(name string, cfg map[string]any, caller Caller) (map[string]any, error) {
	if !caller.IsAdmin {
		return nil, fmt.Errorf("%w: only administrators can update module configurations", ErrForbidden)
	}

	module, ok := s.runner.GetModule(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrModuleNotFound, name)
	}

	desc := module.Metadata()
	if !desc.HasConfig {
		return nil, fmt.Errorf("%w: %s", ErrNoConfig, name)
	}
	if missing, ok := desc.ConfigSchema.ValidateConfig(cfg); !ok {
		return nil, fmt.Errorf("%w: missing required configuration field: %s", ErrInvalidInput, missing)
	}

	if err := module.SaveConfig(cfg); err != nil {
		s.logger.Error().Err(err).Str("module", name).Msg("Failed to save module configuration")
		return nil, fmt.Errorf("%w: %s", ErrConfigSave, name)
	}

	s.logger.Info().Str("module", name).Msg("Module configuration updated")
	return cfg, nil
}

// Execute runs the named module with the given parameters on behalf of the
// caller. The caller's ID is injected into the parameter map so modules can
// attribute discovered entities.
func (s *Service) Execute(ctx context.Context, name string, params map[string]any, caller Caller) (ExecutionResult, error) {
	if params == nil {
		params = map[string]any{}
	}
	if caller.ID != "" {
		params["current_user_id"] = caller.ID
	}
	return s.runner.ExecuteModule(ctx, name, params)
}

// Reload reloads the named module, or every module when name is empty.
// Administrative callers only.
func (s *Service) Reload(name string, caller Caller) (bool, error) {
	if !caller.IsAdmin {
		return false, fmt.Errorf("%w: only administrators can reload modules", ErrForbidden)
	}
	if name == "" {
		s.runner.ReloadAll()
		return true, nil
	}
	return s.runner.ReloadModule(name), nil
}
