// pkg/probe/types.go
// Package probe implements the multi-strategy existence check used to
// determine whether an identifier (e.g. a username) exists on an external
// service described entirely by configuration data.
package probe

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cast"
)

// ErrorType selects the detection strategy for a platform.
type ErrorType string

const (
	// ErrorTypeStatusCode: exists iff the HTTP status is exactly 200.
	ErrorTypeStatusCode ErrorType = "status_code"
	// ErrorTypeMessage: exists iff status is 200 and none of the configured
	// error substrings appear in the body (case-insensitive).
	ErrorTypeMessage ErrorType = "message"
	// ErrorTypeHTML is a legacy alias of ErrorTypeMessage.
	ErrorTypeHTML ErrorType = "html"
	// ErrorTypeResponseURL: exists iff status is 200 and the final
	// post-redirect URL does not contain the configured error substring.
	ErrorTypeResponseURL ErrorType = "response_url"
)

// Reason codes attached to negative or skipped outcomes.
const (
	ReasonInvalidFormat   = "invalid_format"
	ReasonStatusCode      = "status_code"
	ReasonHTTPError       = "http_error"
	ReasonErrorMessage    = "error_message"
	ReasonRedirectToError = "redirect_to_error"
	ReasonRequestError    = "request_error"
)

// placeholder is substituted with the probed identifier in URLs and
// payload fields.
const placeholder = "{}"

// PlatformConfig describes one external target service. JSON keys follow
// the persisted configuration document.
type PlatformConfig struct {
	URL            string            `json:"url" validate:"required"`
	URLMain        string            `json:"urlMain,omitempty"`
	URLProbe       string            `json:"urlProbe,omitempty"`
	RequestMethod  string            `json:"request_method,omitempty" validate:"omitempty,oneof=GET POST"`
	RequestPayload map[string]any    `json:"request_payload,omitempty"`
	Headers        map[string]string `json:"headers,omitempty"`
	ErrorType      ErrorType         `json:"errorType,omitempty" validate:"omitempty,oneof=status_code message html response_url"`
	ErrorMsgs      []string          `json:"errorMsg,omitempty"`
	ErrorURL       string            `json:"errorUrl,omitempty"`
	RegexCheck     string            `json:"regexCheck,omitempty"`
}

var validate = validator.New()

// Validate checks structural constraints: a profile URL with exactly one
// identifier placeholder and a recognized method/error type.
func (c PlatformConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if n := strings.Count(c.URL, placeholder); n != 1 {
		return fmt.Errorf("url must contain exactly one %q placeholder, found %d", placeholder, n)
	}
	return nil
}

// PlatformFromMap decodes a platform entry from the loosely-typed
// configuration document.
func PlatformFromMap(m map[string]any) PlatformConfig {
	cfg := PlatformConfig{
		URL:           cast.ToString(m["url"]),
		URLMain:       cast.ToString(m["urlMain"]),
		URLProbe:      cast.ToString(m["urlProbe"]),
		RequestMethod: cast.ToString(m["request_method"]),
		ErrorType:     ErrorType(cast.ToString(m["errorType"])),
		ErrorURL:      cast.ToString(m["errorUrl"]),
		RegexCheck:    cast.ToString(m["regexCheck"]),
	}
	if payload, ok := m["request_payload"].(map[string]any); ok {
		cfg.RequestPayload = payload
	}
	if headers, ok := m["headers"]; ok {
		cfg.Headers = cast.ToStringMapString(headers)
	}
	if msgs, ok := m["errorMsg"]; ok {
		cfg.ErrorMsgs = cast.ToStringSlice(msgs)
	}
	return cfg
}

// Target pairs a platform name with its configuration.
type Target struct {
	Name   string
	Config PlatformConfig
}

// Outcome is the classification of one existence check.
type Outcome struct {
	Exists       bool   `json:"exists"`
	Platform     string `json:"platform"`
	PlatformName string `json:"platform_name"`
	URL          string `json:"url"`
	StatusCode   int    `json:"status_code,omitempty"`
	FinalURL     string `json:"final_url,omitempty"`
	Reason       string `json:"reason,omitempty"`
	ErrorMsg     string `json:"error_msg,omitempty"`
	Err          string `json:"error,omitempty"`
}
