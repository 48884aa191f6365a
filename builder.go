package goAuthClient

import (
	"context"
	"net/http"
	"time"

	"github.com/MrEthical07/goAuthClient/browser"
	"github.com/MrEthical07/goAuthClient/internal/api"
	"github.com/MrEthical07/goAuthClient/jwt"
	"github.com/MrEthical07/goAuthClient/mfa"
	"github.com/MrEthical07/goAuthClient/pkce"
	"github.com/MrEthical07/goAuthClient/tokens"
	"go.uber.org/zap"
)

// Builder assembles a Client from a Config and the host primitives it runs on.
//
// Builder instances are single use: configure, call Build once, discard.
type Builder struct {
	config Config

	httpClient *http.Client
	jar        browser.CookieJar
	storage    browser.Storage
	location   browser.Location
	navigator  browser.Navigator
	logger     *zap.Logger
	verifier   *jwt.Verifier
	metrics    *Metrics
	now        func() time.Time

	built bool
}

// New returns a Builder seeded with the default configuration.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the whole configuration. Zero-valued BaseURL, PKCE TTL
// and HTTP timeout fall back to their defaults.
func (b *Builder) WithConfig(cfg Config) *Builder {
	def := defaultConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.PKCE.TTL == 0 {
		cfg.PKCE.TTL = def.PKCE.TTL
	}
	if cfg.HTTP.Timeout == 0 {
		cfg.HTTP.Timeout = def.HTTP.Timeout
	}
	b.config = cfg
	return b
}

// WithTenantID sets Config.TenantID.
func (b *Builder) WithTenantID(tenantID string) *Builder {
	b.config.TenantID = tenantID
	return b
}

// WithHTTPClient sets the HTTP client used for API calls.
func (b *Builder) WithHTTPClient(c *http.Client) *Builder {
	b.httpClient = c
	return b
}

// WithCookieJar sets where token cookies are mirrored. Defaults to an
// in-memory jar.
func (b *Builder) WithCookieJar(jar browser.CookieJar) *Builder {
	b.jar = jar
	return b
}

// WithStorage sets the local storage used for the PKCE cache. Defaults to an
// in-memory store.
func (b *Builder) WithStorage(s browser.Storage) *Builder {
	b.storage = s
	return b
}

// WithLocation sets the source of the current page URL.
func (b *Builder) WithLocation(l browser.Location) *Builder {
	b.location = l
	return b
}

// WithNavigator sets how redirects are performed. Without one, redirects are
// logged and skipped.
func (b *Builder) WithNavigator(n browser.Navigator) *Builder {
	b.navigator = n
	return b
}

// WithLogger sets the logger. Defaults to zap.NewNop.
func (b *Builder) WithLogger(l *zap.Logger) *Builder {
	b.logger = l
	return b
}

// WithVerifier enables VerifyAccessToken.
func (b *Builder) WithVerifier(v *jwt.Verifier) *Builder {
	b.verifier = v
	return b
}

// WithMetricsEnabled toggles the in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the request latency histogram.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// WithMetrics shares m between clients, typically one client per HTTP
// request. The Metrics section of the configuration is then ignored.
func (b *Builder) WithMetrics(m *Metrics) *Builder {
	b.metrics = m
	return b
}

// WithClock overrides time.Now for cookie expiry and the PKCE cache.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// Build validates the configuration and returns an initialized Client. The
// page URL is read once to pick the mode and any PKCE challenge.
func (b *Builder) Build() (*Client, error) {
	if b.built {
		return nil, ErrBuilderUsed
	}

	cfg := b.config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := b.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	for _, w := range cfg.Lint().BySeverity(LintWarn) {
		logger.Warn("config lint",
			zap.String("code", w.Code),
			zap.Stringer("severity", w.Severity),
			zap.String("message", w.Message),
		)
	}
	now := b.now
	if now == nil {
		now = time.Now
	}

	httpClient := b.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.HTTP.Timeout}
	}
	apiClient, err := api.New(cfg.BaseURL, httpClient, logger.Named("api"))
	if err != nil {
		return nil, err
	}

	jar := b.jar
	if jar == nil {
		jar = browser.NewMemoryJar()
	}
	storage := b.storage
	if storage == nil {
		storage = browser.NewMemoryStorage()
	}
	location := b.location
	if location == nil {
		location = &browser.StaticLocation{}
	}
	navigator := b.navigator
	if navigator == nil {
		navigator = browser.NavigatorFunc(func(_ context.Context, target string) error {
			logger.Debug("no navigator configured, redirect skipped", zap.String("target", target))
			return nil
		})
	}

	metrics := b.metrics
	if metrics == nil {
		metrics = NewMetrics(cfg.Metrics)
	}

	c := &Client{
		config:    cfg,
		api:       apiClient,
		location:  location,
		navigator: navigator,
		verifier:  b.verifier,
		metrics:   metrics,
		log:       logger,
	}
	apiClient.SetObserver(c.observeRequest)

	c.tokens = tokens.NewStore(jar, location, cfg.TenantID,
		tokens.WithLogger(logger.Named("tokens")),
		tokens.WithLiveMode(func() bool { return c.Mode().IsLive() }),
		tokens.WithClock(now),
	)
	c.mfa = mfa.New(c.TenantID, logger.Named("mfa"))
	c.pkce = pkce.New(storage, location, navigator,
		pkce.WithTTL(cfg.PKCE.TTL),
		pkce.WithClock(now),
		pkce.WithLogger(logger.Named("pkce")),
	)

	if err := c.Init(context.Background(), cfg.TenantID); err != nil {
		return nil, err
	}

	b.built = true
	return c, nil
}
