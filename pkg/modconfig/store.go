// pkg/modconfig/store.go
// Package modconfig persists per-module configuration documents.
//
// Each module owns one JSON document under the configuration directory,
// keyed by module name. The effective configuration returned to a module is
// always the deep merge of its schema-derived defaults with the persisted
// document, persisted values winning at every nesting level. This keeps
// previously-saved customizations intact when the schema evolves between
// versions.
package modconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// FileSuffix is appended to the module name to form the document filename.
const FileSuffix = "_config.json"

// Store manages one module's persisted configuration document. It caches
// the merged configuration in memory and only re-reads the document when
// its modification time changes or a reload is forced.
type Store struct {
	module   string
	path     string
	defaults map[string]any
	logger   zerolog.Logger

	mu      sync.Mutex
	cached  map[string]any
	modTime time.Time
}

// NewStore creates a store for the named module. The document lives at
// <dir>/<module>_config.json; defaults are the schema-derived baseline.
func NewStore(dir, module string, defaults map[string]any) *Store {
	if defaults == nil {
		defaults = map[string]any{}
	}
	return &Store{
		module:   module,
		path:     filepath.Join(dir, module+FileSuffix),
		defaults: defaults,
		logger:   log.With().Str("component", "modconfig").Str("module", module).Logger(),
	}
}

// Path returns the location of the persisted document.
func (s *Store) Path() string {
	return s.path
}

// Load returns the effective configuration. Read failures fall back to the
// schema-derived defaults and are logged, never raised.
func (s *Store) Load(forceReload bool) map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !forceReload && s.cached != nil && !s.modified() {
		return cloneMap(s.cached)
	}

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		// First load: persist the defaults as the initial document.
		defaults := cloneMap(s.defaults)
		if err := s.write(defaults); err != nil {
			s.logger.Error().Err(err).Msg("Failed to write initial configuration")
			return cloneMap(s.defaults)
		}
		return cloneMap(defaults)
	}

	raw, err := os.ReadFile(s.path)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to read configuration; using defaults")
		return cloneMap(s.defaults)
	}

	var persisted map[string]any
	if err := json.Unmarshal(raw, &persisted); err != nil {
		s.logger.Error().Err(err).Msg("Failed to parse configuration; using defaults")
		return cloneMap(s.defaults)
	}

	merged := DeepMerge(s.defaults, persisted)
	s.cached = merged
	if info, err := os.Stat(s.path); err == nil {
		s.modTime = info.ModTime()
	}

	s.logger.Debug().Msg("Configuration loaded")
	return cloneMap(merged)
}

// Save persists the document, refreshes the modification marker, and
// updates the in-memory cache.
func (s *Store) Save(cfg map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.write(cfg); err != nil {
		s.logger.Error().Err(err).Msg("Failed to save configuration")
		return err
	}
	s.logger.Info().Msg("Configuration saved")
	return nil
}

// Invalidate drops the in-memory cache so the next Load re-reads the
// document regardless of the modification marker.
func (s *Store) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cached = nil
	s.modTime = time.Time{}
}

// modified reports whether the document changed since the cache was filled.
// Caller holds s.mu.
func (s *Store) modified() bool {
	info, err := os.Stat(s.path)
	if err != nil {
		return false
	}
	return info.ModTime().After(s.modTime)
}

// write persists cfg and updates the cache. Caller holds s.mu. A file lock
// guards against interleaved writers from other processes (CLI vs. server).
func (s *Store) write(cfg map[string]any) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	lock := flock.New(s.path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock config document: %w", err)
	}
	defer func() { _ = lock.Unlock() }()

	data, err := json.MarshalIndent(cfg, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal config document: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o640); err != nil {
		return fmt.Errorf("write config document: %w", err)
	}

	s.cached = cloneMap(cfg)
	if info, err := os.Stat(s.path); err == nil {
		s.modTime = info.ModTime()
	}
	return nil
}

// DeepMerge overlays persisted values onto defaults, recursing into nested
// maps so partially-specified documents keep schema defaults for the keys
// they omit. Neither input is mutated.
func DeepMerge(defaults, persisted map[string]any) map[string]any {
	merged := cloneMap(defaults)
	for key, value := range persisted {
		if base, ok := merged[key].(map[string]any); ok {
			if overlay, ok := value.(map[string]any); ok {
				merged[key] = DeepMerge(base, overlay)
				continue
			}
		}
		merged[key] = cloneValue(value)
	}
	return merged
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return cloneMap(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}
