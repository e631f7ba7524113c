// pkg/engine/module.go
// Package engine provides the core functionality for managing and executing modules.
package engine

import (
	"context"
)

// BaseModuleName is the reserved name of the abstract module contract.
// A module reporting this name (or an empty name) is rejected at registration.
const BaseModuleName = "base_module"

// ParamSpec describes a single declared module parameter.
type ParamSpec struct {
	Name        string `json:"name"`
	Type        string `json:"type"` // "string", "integer", "boolean", "file"
	Description string `json:"description"`
	Default     any    `json:"default,omitempty"`
}

// FileParam is the representation of a file-like parameter value.
// The API layer converts uploads into this form before execution.
type FileParam struct {
	Filename string
	Data     []byte
}

// ModuleDescriptor holds a module's metadata. It is populated once at
// construction time and read-only thereafter, except for Enabled.
type ModuleDescriptor struct {
	Name           string      `json:"name"`
	DisplayName    string      `json:"display_name"`
	Description    string      `json:"description"`
	Version        string      `json:"version"`
	Author         string      `json:"author"`
	RequiredParams []ParamSpec `json:"required_params"`
	OptionalParams []ParamSpec `json:"optional_params"`
	Category       string      `json:"category"`
	Tags           []string    `json:"tags"`
	Enabled        bool        `json:"enabled"`
	HasConfig      bool        `json:"has_config"`
	ConfigSchema   Schema      `json:"config_schema"`
}

// Module is the contract every OSFiler module implements. The runner never
// needs to know a module's concrete behavior, only this capability set.
type Module interface {
	// Metadata returns the module's descriptor. Pure, no side effects.
	Metadata() ModuleDescriptor

	// ValidateParams reports whether all declared required parameters are
	// present and minimally well-formed. It never panics.
	ValidateParams(params map[string]any) bool

	// Execute runs the module's domain logic and returns its structured
	// payload. Errors are converted into the result envelope by the runner.
	Execute(ctx context.Context, params map[string]any) (any, error)

	// LoadConfig returns the module's effective configuration: persisted
	// document deep-merged onto schema-derived defaults. Modules without
	// configuration return an empty map.
	LoadConfig(forceReload bool) map[string]any

	// SaveConfig persists the given configuration document. Modules without
	// configuration return ErrNoConfig.
	SaveConfig(cfg map[string]any) error
}

// ValidateRequiredParams is the default ValidateParams implementation:
// every declared required parameter must be present in the map. Modules
// with alternative-field semantics (e.g. "one of file or url") override it.
func ValidateRequiredParams(desc ModuleDescriptor, params map[string]any) bool {
	for _, p := range desc.RequiredParams {
		if _, ok := params[p.Name]; !ok {
			return false
		}
	}
	return true
}
