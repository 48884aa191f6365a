package goAuthClient

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/MrEthical07/goAuthClient/mode"
	"github.com/MrEthical07/goAuthClient/pkce"
)

// DefaultBaseURL is the production authentication API.
const DefaultBaseURL = "https://api.userfront.com/v0/"

// Config defines how a Client talks to the authentication API.
//
// Config instances are intended to be configured during initialization and then treated as immutable.
type Config struct {
	TenantID string
	BaseURL  string
	// Mode pins the environment mode. Empty means infer it from the location
	// and let ResolveMode ask the API.
	Mode    mode.Mode
	PKCE    PKCEConfig
	HTTP    HTTPConfig
	Metrics MetricsConfig
}

/*
====================================
PKCE CONFIG
====================================
*/

// PKCEConfig controls the locally cached code challenge.
type PKCEConfig struct {
	TTL time.Duration
}

/*
====================================
HTTP CONFIG
====================================
*/

// HTTPConfig configures the default HTTP client. It is ignored when a client
// is supplied through Builder.WithHTTPClient.
type HTTPConfig struct {
	Timeout time.Duration
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig enables the in-process counters read by the exporters.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
DEFAULT CONFIG
====================================
*/

func defaultConfig() Config {
	return Config{
		BaseURL: DefaultBaseURL,
		PKCE: PKCEConfig{
			TTL: pkce.DefaultTTL,
		},
		HTTP: HTTPConfig{
			Timeout: 15 * time.Second,
		},
	}
}

// DefaultConfig returns the configuration used when none is supplied.
func DefaultConfig() Config {
	return defaultConfig()
}

/*
====================================
VALIDATION
====================================
*/

// Validate reports the first invalid field of c.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.TenantID) == "" {
		return errors.New("TenantID must be set")
	}

	if c.BaseURL == "" {
		return errors.New("BaseURL must be set")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return errors.New("BaseURL is not a valid URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("BaseURL scheme must be http or https")
	}
	if u.Host == "" {
		return errors.New("BaseURL must include a host")
	}

	switch c.Mode {
	case "", mode.Test, mode.Live:
	default:
		return errors.New("Mode must be empty, 'test' or 'live'")
	}

	if c.PKCE.TTL <= 0 {
		return errors.New("PKCE TTL must be > 0")
	}
	if c.PKCE.TTL > time.Hour {
		return errors.New("PKCE TTL must be <= 1h")
	}

	if c.HTTP.Timeout < 0 {
		return errors.New("HTTP Timeout must be >= 0")
	}

	if c.Metrics.EnableLatencyHistograms && !c.Metrics.Enabled {
		return errors.New("Metrics EnableLatencyHistograms requires Metrics Enabled")
	}

	return nil
}
