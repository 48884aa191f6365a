package goAuthClient

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/MrEthical07/goAuthClient/browser"
	"github.com/MrEthical07/goAuthClient/internal/api"
	"github.com/MrEthical07/goAuthClient/jwt"
	"github.com/MrEthical07/goAuthClient/mfa"
	"github.com/MrEthical07/goAuthClient/mode"
	"github.com/MrEthical07/goAuthClient/pkce"
	"github.com/MrEthical07/goAuthClient/tokens"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Client is one session context: a tenant, its mode, and the token, MFA and
// PKCE state that belong to it. Clients share nothing, so many may coexist in
// one process.
//
// Methods are safe for concurrent use. Concurrent flows are not serialized;
// when two logins race, the last response to be handled wins.
type Client struct {
	config Config

	mu          sync.RWMutex
	tenantID    string
	mode        mode.Mode
	modeAttempt bool
	generation  uint64
	modeLookups singleflight.Group

	api       *api.Client
	location  browser.Location
	navigator browser.Navigator
	tokens    *tokens.Store
	mfa       *mfa.State
	pkce      *pkce.State
	verifier  *jwt.Verifier
	metrics   *Metrics
	log       *zap.Logger
}

// Init re-initializes the client for tenantID. MFA state is fully reset, the
// token store is renamed and its in-memory values dropped, the mode is
// recomputed from the current location, and the PKCE challenge is read again.
func (c *Client) Init(ctx context.Context, tenantID string) error {
	tenantID = strings.TrimSpace(tenantID)
	if tenantID == "" {
		return missing("Init", "tenantID")
	}

	c.mu.Lock()
	c.tenantID = tenantID
	c.generation++
	if c.config.Mode != "" {
		c.mode = c.config.Mode
		c.modeAttempt = true
	} else {
		c.mode = mode.FromURL(c.location.URL())
		c.modeAttempt = false
	}
	c.mu.Unlock()

	c.mfa.ResetMfa()
	c.tokens.Reset(tenantID)
	c.pkce.Reset()
	c.pkce.Setup(ctx)
	return nil
}

// TenantID returns the current tenant.
func (c *Client) TenantID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tenantID
}

// Mode returns the current mode. Until ResolveMode succeeds it is the
// location heuristic or the configured override.
func (c *Client) Mode() mode.Mode {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.mode
}

// BaseURL returns the API base URL.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// Tokens returns the token store.
func (c *Client) Tokens() *tokens.Store {
	return c.tokens
}

// MFA returns the multi-factor state.
func (c *Client) MFA() *mfa.State {
	return c.mfa
}

// PKCE returns the PKCE state.
func (c *Client) PKCE() *pkce.State {
	return c.pkce
}

// Metrics returns the client's counters.
func (c *Client) Metrics() *Metrics {
	return c.metrics
}

// MetricsSnapshot copies the current counters. It satisfies the source
// interface of the metrics exporters.
func (c *Client) MetricsSnapshot() MetricsSnapshot {
	return c.metrics.Snapshot()
}

func (c *Client) observeRequest(method, path string, status int, elapsed time.Duration) {
	c.metrics.Observe(MetricRequestLatency, elapsed)
	c.log.Debug("api round trip",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", status),
		zap.Duration("elapsed", elapsed),
	)
}

// firstFactorRequest is the header and query decoration shared by every
// first-factor and second-factor call.
func (c *Client) firstFactorRequest() api.Request {
	return api.Request{
		Headers: c.mfa.MfaHeaders(),
		Query:   c.pkce.RequestQueryParams(),
	}
}

func bearer(token string) api.Request {
	return api.Request{Headers: map[string]string{"authorization": "Bearer " + token}}
}
