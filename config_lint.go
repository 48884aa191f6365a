package goAuthClient

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/MrEthical07/goAuthClient/mode"
)

// LintSeverity ranks a configuration warning.
type LintSeverity int

const (
	LintInfo LintSeverity = iota
	LintWarn
	LintHigh
)

func (s LintSeverity) String() string {
	switch s {
	case LintInfo:
		return "INFO"
	case LintWarn:
		return "WARN"
	case LintHigh:
		return "HIGH"
	default:
		return "UNKNOWN"
	}
}

// LintWarning is one finding of Config.Lint. Code is stable; Message is for
// humans.
type LintWarning struct {
	Code     string
	Severity LintSeverity
	Message  string
}

// LintResult is the list of findings of one Lint call.
type LintResult []LintWarning

// Codes returns the code of every finding in order.
func (r LintResult) Codes() []string {
	out := make([]string, 0, len(r))
	for _, w := range r {
		out = append(out, w.Code)
	}
	return out
}

// BySeverity returns the findings at or above min.
func (r LintResult) BySeverity(min LintSeverity) LintResult {
	var out LintResult
	for _, w := range r {
		if w.Severity >= min {
			out = append(out, w)
		}
	}
	return out
}

// AsError folds the findings at or above min into one error, or returns nil.
func (r LintResult) AsError(min LintSeverity) error {
	hits := r.BySeverity(min)
	if len(hits) == 0 {
		return nil
	}
	parts := make([]string, 0, len(hits))
	for _, w := range hits {
		parts = append(parts, w.Code+": "+w.Message)
	}
	return fmt.Errorf("config lint: %s", strings.Join(parts, "; "))
}

// Lint reports settings that are valid but likely unintended. It never
// fails; Validate is the gate for invalid configurations.
func (c *Config) Lint() LintResult {
	var ws LintResult
	add := func(code string, sev LintSeverity, format string, args ...any) {
		ws = append(ws, LintWarning{Code: code, Severity: sev, Message: fmt.Sprintf(format, args...)})
	}

	if u, err := url.Parse(c.BaseURL); err == nil && u.Scheme == "http" {
		if !mode.IsTestHostname(u.Hostname()) {
			add("base_url_insecure", LintHigh, "API base URL %s sends credentials over plain http", c.BaseURL)
		}
		if c.Mode == mode.Live {
			add("live_mode_insecure_base", LintHigh, "live mode talks to a plain http API")
		}
	}
	if c.Mode == mode.Test {
		add("test_mode_forced", LintInfo, "mode forced to test; token cookies are written without Secure")
	}

	if c.PKCE.TTL > 30*time.Minute {
		add("pkce_ttl_long", LintWarn, "PKCE challenge kept for %s; a login rarely takes that long", c.PKCE.TTL)
	}

	switch {
	case c.HTTP.Timeout == 0:
		add("http_timeout_disabled", LintWarn, "API requests have no timeout")
	case c.HTTP.Timeout > time.Minute:
		add("http_timeout_long", LintWarn, "API timeout of %s blocks login flows for a long time", c.HTTP.Timeout)
	}

	if !c.Metrics.Enabled {
		add("metrics_disabled", LintInfo, "in-process metrics are off")
	}
	return ws
}
