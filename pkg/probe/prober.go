// pkg/probe/prober.go
package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultUserAgent is sent when no user agent is configured.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// maxBodyBytes bounds how much of a response body is inspected for error
// markers.
const maxBodyBytes = 2 << 20

// Prober issues existence checks against configured target services.
// Checks within one Run are sequential; each request is bounded by the
// prober's timeout.
type Prober struct {
	client    *http.Client
	userAgent string
	logger    zerolog.Logger
}

// New creates a prober with the given per-request timeout and user agent.
func New(timeout time.Duration, userAgent string) *Prober {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &Prober{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
		logger:    log.With().Str("component", "probe").Logger(),
	}
}

// Run checks the identifier against every target in the supplied order.
// Per-target failures are isolated: one target timing out or being
// misconfigured does not abort the remaining targets.
func (p *Prober) Run(ctx context.Context, targets []Target, identifier string) []Outcome {
	outcomes := make([]Outcome, 0, len(targets))
	for _, target := range targets {
		outcomes = append(outcomes, p.Check(ctx, target.Name, target.Config, identifier))
	}
	return outcomes
}

// Check classifies the existence of identifier on a single target.
func (p *Prober) Check(ctx context.Context, platform string, cfg PlatformConfig, identifier string) Outcome {
	outcome := Outcome{
		Platform:     platform,
		PlatformName: capitalize(platform),
		URL:          substitute(cfg.URL, identifier),
	}

	if !p.identifierValid(platform, cfg.RegexCheck, identifier) {
		outcome.Reason = ReasonInvalidFormat
		return outcome
	}

	resp, err := p.request(ctx, cfg, identifier)
	if err != nil {
		p.logger.Warn().Err(err).Str("platform", platform).Str("identifier", identifier).Msg("Probe request failed")
		outcome.Reason = ReasonRequestError
		outcome.Err = err.Error()
		return outcome
	}
	defer func() { _ = resp.Body.Close() }()

	outcome.StatusCode = resp.StatusCode

	switch cfg.ErrorType {
	case ErrorTypeMessage, ErrorTypeHTML:
		if resp.StatusCode != http.StatusOK {
			outcome.Reason = ReasonHTTPError
			return outcome
		}
		body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if err != nil {
			outcome.Reason = ReasonRequestError
			outcome.Err = err.Error()
			return outcome
		}
		content := strings.ToLower(string(body))
		for _, msg := range cfg.ErrorMsgs {
			if strings.Contains(content, strings.ToLower(msg)) {
				outcome.Reason = ReasonErrorMessage
				outcome.ErrorMsg = msg
				return outcome
			}
		}
		outcome.Exists = true
		return outcome

	case ErrorTypeResponseURL:
		finalURL := resp.Request.URL.String()
		outcome.FinalURL = finalURL
		redirectedToError := cfg.ErrorURL != "" && strings.Contains(finalURL, cfg.ErrorURL)
		if resp.StatusCode == http.StatusOK && !redirectedToError {
			outcome.Exists = true
			return outcome
		}
		if redirectedToError {
			outcome.Reason = ReasonRedirectToError
		} else {
			outcome.Reason = ReasonStatusCode
		}
		return outcome

	default:
		// status_code strategy, also the fallback for unrecognized values.
		if resp.StatusCode == http.StatusOK {
			outcome.Exists = true
			return outcome
		}
		outcome.Reason = ReasonStatusCode
		return outcome
	}
}

// identifierValid applies the platform's regex gate. No pattern means the
// identifier is always considered valid; a broken pattern is treated the
// same way rather than silently excluding the platform.
func (p *Prober) identifierValid(platform, pattern, identifier string) bool {
	if pattern == "" {
		return true
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		p.logger.Error().Err(err).Str("platform", platform).Msg("Invalid regexCheck pattern; treating identifier as valid")
		return true
	}
	if !re.MatchString(identifier) {
		p.logger.Info().Str("platform", platform).Str("identifier", identifier).Msg("Identifier does not match platform pattern")
		return false
	}
	return true
}

// request builds and issues the probe request. When urlProbe is configured
// the existence check goes through that endpoint, with the identifier
// substituted into the URL and any templated payload fields; otherwise a
// plain GET against the profile URL is used.
func (p *Prober) request(ctx context.Context, cfg PlatformConfig, identifier string) (*http.Response, error) {
	headers := map[string]string{
		"User-Agent":      p.userAgent,
		"Accept-Language": "en-US,en;q=0.9",
		"Cache-Control":   "no-cache",
	}
	for k, v := range cfg.Headers {
		headers[k] = v
	}

	var req *http.Request
	var err error

	if cfg.URLProbe != "" {
		probeURL := substitute(cfg.URLProbe, identifier)
		method := strings.ToUpper(cfg.RequestMethod)
		if method == "" {
			method = http.MethodGet
		}

		if method == http.MethodPost && len(cfg.RequestPayload) > 0 {
			payload := make(map[string]any, len(cfg.RequestPayload))
			for key, value := range cfg.RequestPayload {
				if str, ok := value.(string); ok && strings.Contains(str, placeholder) {
					payload[key] = substitute(str, identifier)
				} else {
					payload[key] = value
				}
			}
			body, merr := json.Marshal(payload)
			if merr != nil {
				return nil, merr
			}
			req, err = http.NewRequestWithContext(ctx, method, probeURL, bytes.NewReader(body))
			if err == nil {
				req.Header.Set("Content-Type", "application/json")
			}
		} else {
			req, err = http.NewRequestWithContext(ctx, method, probeURL, nil)
		}
	} else {
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, substitute(cfg.URL, identifier), nil)
	}
	if err != nil {
		return nil, err
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return p.client.Do(req)
}

func substitute(template, identifier string) string {
	return strings.Replace(template, placeholder, identifier, 1)
}

// capitalize uppercases the first rune and lowercases the rest, matching
// the display convention for platform names.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(strings.ToLower(s))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
