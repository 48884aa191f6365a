package httpbridge

import (
	"net/http"

	goAuthClient "github.com/MrEthical07/goAuthClient"
	"github.com/MrEthical07/goAuthClient/browser"
	"github.com/MrEthical07/goAuthClient/jwt"
	"go.uber.org/zap"
)

// Factory builds one client per request. The storage, HTTP client, logger,
// verifier and metrics are shared across requests.
//
// Storage holds the PKCE challenge. A storage shared by every visitor lets
// one visitor's challenge leak into another's login; give each browser
// session its own key space when PKCE is in use.
type Factory struct {
	Config     goAuthClient.Config
	Storage    browser.Storage
	HTTPClient *http.Client
	Logger     *zap.Logger
	Verifier   *jwt.Verifier
	Metrics    *goAuthClient.Metrics
	Options    []Option
}

// MetricsSnapshot reads the shared metrics, so a Factory can feed the
// metrics exporters directly.
func (f *Factory) MetricsSnapshot() goAuthClient.MetricsSnapshot {
	return f.Metrics.Snapshot()
}

// Client returns a client bound to the request and the Exchange that backs it.
func (f *Factory) Client(w http.ResponseWriter, r *http.Request) (*goAuthClient.Client, *Exchange, error) {
	ex := NewExchange(w, r, f.Options...)

	b := goAuthClient.New().
		WithConfig(f.Config).
		WithCookieJar(ex).
		WithLocation(ex).
		WithNavigator(ex)
	if f.Storage != nil {
		b.WithStorage(f.Storage)
	}
	if f.HTTPClient != nil {
		b.WithHTTPClient(f.HTTPClient)
	}
	if f.Logger != nil {
		b.WithLogger(f.Logger)
	}
	if f.Verifier != nil {
		b.WithVerifier(f.Verifier)
	}
	if f.Metrics != nil {
		b.WithMetrics(f.Metrics)
	}

	c, err := b.Build()
	if err != nil {
		return nil, nil, err
	}
	return c, ex, nil
}
