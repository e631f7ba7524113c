// pkg/modules/osint/username_search.go
// Package osint contains modules that gather open-source intelligence.
package osint

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cast"

	"github.com/OnlyOneCookie/OSFiler/pkg/engine"
	"github.com/OnlyOneCookie/OSFiler/pkg/modconfig"
	"github.com/OnlyOneCookie/OSFiler/pkg/probe"
)

const (
	usernameModuleName = "usernames_module"

	defaultTimeoutSeconds       = 10
	defaultRefreshIntervalHours = 24
)

// UsernameSearchModule checks a username across the social platforms
// described in its configuration and returns a card per found account.
type UsernameSearchModule struct {
	desc   engine.ModuleDescriptor
	store  *modconfig.Store
	logger zerolog.Logger

	mu                sync.Mutex
	config            map[string]any
	platformsLoadedAt time.Time
}

// NewUsernameSearchModule constructs the module, loading and normalizing
// its persisted platform configuration.
func NewUsernameSearchModule(env engine.Env) (engine.Module, error) {
	schema := engine.Schema{
		"timeout": {
			Kind:        engine.KindInteger,
			Description: "Request timeout in seconds",
			Default:     defaultTimeoutSeconds,
		},
		"user_agent": {
			Kind:        engine.KindString,
			Description: "User agent to use for requests",
			Default:     probe.DefaultUserAgent,
		},
		"platforms_refresh_interval": {
			Kind:        engine.KindInteger,
			Description: "How often to refresh platforms data (in hours)",
			Default:     defaultRefreshIntervalHours,
		},
		"platforms": {
			Kind:        engine.KindObject,
			Description: "Social media platforms configuration",
			Default:     defaultPlatforms(),
		},
	}

	m := &UsernameSearchModule{
		store:  modconfig.NewStore(env.ConfigDir, usernameModuleName, engine.DefaultConfig(schema)),
		logger: log.With().Str("module", usernameModuleName).Logger(),
	}
	m.config = m.store.Load(false)
	m.normalizePlatforms()
	m.platformsLoadedAt = time.Now()

	m.desc = engine.ModuleDescriptor{
		Name:        usernameModuleName,
		DisplayName: "Username Search",
		Description: "Search for usernames across social media platforms",
		Version:     "0.1.0",
		Author:      "OSFiler Team",
		RequiredParams: []engine.ParamSpec{
			{Name: "username", Type: "string", Description: "The username to search for"},
		},
		OptionalParams: []engine.ParamSpec{
			{
				Name:        "timeout",
				Type:        "integer",
				Description: fmt.Sprintf("Timeout for requests in seconds (default: %d)", m.timeoutSeconds()),
				Default:     m.timeoutSeconds(),
			},
		},
		Category:     "osint",
		Tags:         []string{"username", "social media", "search"},
		Enabled:      true,
		HasConfig:    true,
		ConfigSchema: schema,
	}
	return m, nil
}

// defaultPlatforms seeds the platform set for a fresh installation.
func defaultPlatforms() map[string]any {
	return map[string]any{
		"instagram": map[string]any{
			"url":        "https://www.instagram.com/{}",
			"urlMain":    "https://www.instagram.com",
			"errorMsg":   []any{"Sorry, this page isn't available."},
			"errorType":  "message",
			"regexCheck": "^[A-Za-z0-9._](?:[A-Za-z0-9._]{0,28}[A-Za-z0-9])?$",
		},
		"github": map[string]any{
			"url":        "https://github.com/{}",
			"urlMain":    "https://github.com",
			"errorType":  "status_code",
			"regexCheck": "^[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,37}[a-zA-Z0-9])?$",
		},
	}
}

// Metadata implements engine.Module.
func (m *UsernameSearchModule) Metadata() engine.ModuleDescriptor {
	return m.desc
}

// ValidateParams implements engine.Module.
func (m *UsernameSearchModule) ValidateParams(params map[string]any) bool {
	return engine.ValidateRequiredParams(m.desc, params)
}

// LoadConfig implements engine.Module.
func (m *UsernameSearchModule) LoadConfig(forceReload bool) map[string]any {
	cfg := m.store.Load(forceReload)
	m.mu.Lock()
	m.config = cfg
	m.mu.Unlock()
	return cfg
}

// SaveConfig implements engine.Module.
func (m *UsernameSearchModule) SaveConfig(cfg map[string]any) error {
	if err := m.store.Save(cfg); err != nil {
		return err
	}
	m.mu.Lock()
	m.config = cfg
	m.mu.Unlock()
	return nil
}

// Execute implements engine.Module: it probes every configured platform
// sequentially and returns a card per found account.
func (m *UsernameSearchModule) Execute(ctx context.Context, params map[string]any) (any, error) {
	username := strings.TrimSpace(cast.ToString(params["username"]))
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", engine.ErrInvalidInput)
	}

	m.refreshPlatformsIfStale()

	timeout := m.timeoutSeconds()
	if v, ok := params["timeout"]; ok {
		if t := cast.ToInt(v); t > 0 {
			timeout = t
		}
	}

	m.mu.Lock()
	userAgent := cast.ToString(m.config["user_agent"])
	targets := m.targets()
	m.mu.Unlock()

	prober := probe.New(time.Duration(timeout)*time.Second, userAgent)

	cards := make([]engine.Card, 0, len(targets))
	for _, target := range targets {
		m.logger.Info().Str("platform", target.Name).Str("username", username).Msg("Checking platform")
		outcome := prober.Check(ctx, target.Name, target.Config, username)
		if !outcome.Exists {
			continue
		}

		entityData := map[string]any{
			"platform": target.Name,
			"username": username,
			"url":      outcome.URL,
			"found_at": time.Now().UTC().Format(time.RFC3339),
		}
		card := engine.NewCard(target.Name, entityData).
			WithSubtitle(username).
			WithURL(outcome.URL).
			WithIcon(target.Name).
			WithAction(engine.AddToInvestigationAction("SOCIAL_PROFILE",
				engine.EntityData(usernameModuleName, "SOCIAL_PROFILE", username, entityData))).
			WithoutProperties()
		cards = append(cards, card)
	}

	display := engine.DisplayCardCollection
	if len(cards) == 1 {
		display = engine.DisplaySingleCard
	}
	subtitle := fmt.Sprintf("Found %d accounts for '%s' across %d platforms", len(cards), username, len(targets))
	return engine.BuildResult(cards, display, "", subtitle), nil
}

// ProfileURL returns the profile URL for a username on a platform, or
// false when the platform is not configured.
func (m *UsernameSearchModule) ProfileURL(platform, username string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.platformMap()[platform]
	if !ok {
		return "", false
	}
	cfg := probe.PlatformFromMap(cast.ToStringMap(entry))
	return strings.Replace(cfg.URL, "{}", strings.TrimSpace(username), 1), true
}

// timeoutSeconds returns the configured request timeout.
func (m *UsernameSearchModule) timeoutSeconds() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t := cast.ToInt(m.config["timeout"]); t > 0 {
		return t
	}
	return defaultTimeoutSeconds
}

// platformMap returns the platforms section of the config. Caller holds m.mu.
func (m *UsernameSearchModule) platformMap() map[string]any {
	return cast.ToStringMap(m.config["platforms"])
}

// targets returns the configured platforms in deterministic (name) order.
// Entries that fail structural validation are logged and skipped so one
// misconfigured platform does not spoil the rest. Caller holds m.mu.
func (m *UsernameSearchModule) targets() []probe.Target {
	platforms := m.platformMap()
	names := make([]string, 0, len(platforms))
	for name := range platforms {
		names = append(names, name)
	}
	sort.Strings(names)

	targets := make([]probe.Target, 0, len(names))
	for _, name := range names {
		cfg := probe.PlatformFromMap(cast.ToStringMap(platforms[name]))
		if err := cfg.Validate(); err != nil {
			m.logger.Warn().Err(err).Str("platform", name).Msg("Skipping misconfigured platform")
			continue
		}
		targets = append(targets, probe.Target{Name: name, Config: cfg})
	}
	return targets
}

// refreshPlatformsIfStale reloads the platform set from the configuration
// store once the configured refresh interval has elapsed, picking up
// externally-updated configuration without an explicit module reload.
func (m *UsernameSearchModule) refreshPlatformsIfStale() {
	m.mu.Lock()
	interval := cast.ToInt(m.config["platforms_refresh_interval"])
	if interval <= 0 {
		interval = defaultRefreshIntervalHours
	}
	stale := time.Since(m.platformsLoadedAt) >= time.Duration(interval)*time.Hour
	m.mu.Unlock()

	if !stale {
		return
	}
	m.logger.Info().Msg("Reloading platforms configuration after refresh interval")
	m.LoadConfig(true)
	m.normalizePlatforms()
	m.mu.Lock()
	m.platformsLoadedAt = time.Now()
	m.mu.Unlock()
}

// normalizePlatforms is an idempotent cleanup of the persisted platform
// set: duplicate names differing only in case are merged onto the
// lowercase key, and the legacy "html" error type becomes "message". The
// document is rewritten only when something changed.
func (m *UsernameSearchModule) normalizePlatforms() {
	m.mu.Lock()
	defer m.mu.Unlock()

	platforms := m.platformMap()
	if len(platforms) == 0 {
		return
	}

	changed := false
	for _, name := range sortedKeys(platforms) {
		entry := cast.ToStringMap(platforms[name])

		lower := strings.ToLower(name)
		if lower != name {
			m.logger.Warn().Str("platform", name).Msg("Normalizing platform name to lowercase")
			if existingRaw, ok := platforms[lower]; ok {
				// Keep the lowercase entry; fill in fields only it lacks.
				existing := cast.ToStringMap(existingRaw)
				for key, value := range entry {
					if cur, ok := existing[key]; !ok || cur == "" {
						existing[key] = value
					}
				}
				platforms[lower] = existing
			} else {
				platforms[lower] = entry
			}
			delete(platforms, name)
			changed = true
			entry = cast.ToStringMap(platforms[lower])
			name = lower
		}

		if cast.ToString(entry["errorType"]) == string(probe.ErrorTypeHTML) {
			entry["errorType"] = string(probe.ErrorTypeMessage)
			platforms[name] = entry
			changed = true
		}
	}

	if changed {
		m.config["platforms"] = platforms
		if err := m.store.Save(m.config); err != nil {
			m.logger.Error().Err(err).Msg("Failed to persist normalized platform configuration")
		}
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func init() {
	engine.Register(usernameModuleName, NewUsernameSearchModule)
}
