package goAuthClient

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/MrEthical07/goAuthClient/browser"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

const testTenant = "demo1234"

type recordedRequest struct {
	Method        string
	Path          string
	Query         url.Values
	Authorization string
	Body          map[string]any
}

type fixture struct {
	client   *Client
	jar      *browser.MemoryJar
	storage  *browser.MemoryStorage
	location *browser.StaticLocation
	nav      *browser.RecordingNavigator
	logs     *observer.ObservedLogs
	server   *httptest.Server

	mu       sync.Mutex
	requests []recordedRequest
}

type fixtureOption func(*Builder)

// newFixture builds a client whose page is pageURL and whose API is served by
// routes. Every API request is recorded.
func newFixture(t *testing.T, pageURL string, routes func(r chi.Router), opts ...fixtureOption) *fixture {
	t.Helper()

	f := &fixture{
		jar:      browser.NewMemoryJar(),
		storage:  browser.NewMemoryStorage(),
		location: browser.MustStaticLocation(pageURL),
	}
	f.nav = &browser.RecordingNavigator{Location: f.location}

	r := chi.NewRouter()
	r.Use(f.record)
	r.Route("/v0", func(r chi.Router) {
		if routes != nil {
			routes(r)
		}
	})
	f.server = httptest.NewServer(r)
	t.Cleanup(f.server.Close)

	core, logs := observer.New(zap.DebugLevel)
	f.logs = logs

	b := New().
		WithConfig(Config{TenantID: testTenant, BaseURL: f.server.URL + "/v0/"}).
		WithHTTPClient(f.server.Client()).
		WithCookieJar(f.jar).
		WithStorage(f.storage).
		WithLocation(f.location).
		WithNavigator(f.nav).
		WithLogger(zap.New(core)).
		WithMetricsEnabled(true)
	for _, opt := range opts {
		opt(b)
	}

	c, err := b.Build()
	require.NoError(t, err)
	f.client = c
	return f
}

func (f *fixture) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(raw))

		rec := recordedRequest{
			Method:        r.Method,
			Path:          r.URL.Path,
			Query:         r.URL.Query(),
			Authorization: r.Header.Get("Authorization"),
		}
		if len(raw) > 0 {
			_ = json.Unmarshal(raw, &rec.Body)
		}

		f.mu.Lock()
		f.requests = append(f.requests, rec)
		f.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

func (f *fixture) recorded() []recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedRequest(nil), f.requests...)
}

func (f *fixture) lastRequest(t *testing.T) recordedRequest {
	t.Helper()
	reqs := f.recorded()
	require.NotEmpty(t, reqs, "no API request recorded")
	return reqs[len(reqs)-1]
}

func (f *fixture) cookie(name string) (string, bool) {
	return f.jar.Cookie(name)
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func respond(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, status, body)
	}
}

const tokensBody = `{
	"message": "OK",
	"redirectTo": "/dashboard",
	"tokens": {
		"access": {"value": "access-1", "cookieOptions": {"secure": true, "sameSite": "Lax", "expires": 30}},
		"id": {"value": "id-1", "cookieOptions": {"secure": true, "sameSite": "Lax", "expires": 30}},
		"refresh": {"value": "refresh-1", "cookieOptions": {"secure": true, "sameSite": "None", "expires": 30}}
	}
}`

const mfaBody = `{
	"message": "MFA required",
	"isMfaRequired": true,
	"firstFactorToken": "uf_ff_1",
	"authentication": {
		"firstFactors": [{"strategy": "password", "channel": "email"}],
		"secondFactors": [{"strategy": "totp", "channel": "authenticator"}]
	}
}`

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}
