package httpbridge

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	goAuthClient "github.com/MrEthical07/goAuthClient"
	"github.com/MrEthical07/goAuthClient/browser"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tokensBody = `{
	"message": "OK",
	"redirectTo": "/dashboard",
	"tokens": {
		"access": {"value": "access-1", "cookieOptions": {"secure": false, "sameSite": "Lax", "expires": 30}},
		"id": {"value": "id-1", "cookieOptions": {"secure": false, "sameSite": "Lax", "expires": 30}},
		"refresh": {"value": "refresh-1", "cookieOptions": {"secure": false, "sameSite": "Strict", "expires": 30}}
	}
}`

func newAPI(t *testing.T) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	r.Post("/v0/auth/basic", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(tokensBody))
	})
	r.Get("/v0/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer access-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":"Logged out","redirectTo":"/login"}`))
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func newApp(t *testing.T, api *httptest.Server) http.Handler {
	t.Helper()
	f := &Factory{
		Config:     goAuthClient.Config{TenantID: "demo1234", BaseURL: api.URL + "/v0/"},
		Storage:    browser.NewMemoryStorage(),
		HTTPClient: api.Client(),
	}

	r := chi.NewRouter()
	r.Post("/login", func(w http.ResponseWriter, r *http.Request) {
		client, ex, err := f.Client(w, r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if _, err := client.Login(r.Context(), goAuthClient.LoginOptions{
			Method:          goAuthClient.MethodPassword,
			EmailOrUsername: r.FormValue("email"),
			Password:        r.FormValue("password"),
		}); err != nil {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}
		if ex.Commit() {
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
	r.Post("/logout", func(w http.ResponseWriter, r *http.Request) {
		client, ex, err := f.Client(w, r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if err := client.Logout(r.Context(), goAuthClient.LogoutOptions{}); err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		if !ex.Commit() {
			w.WriteHeader(http.StatusNoContent)
		}
	})
	return r
}

func TestFactoryLoginSetsCookiesAndRedirects(t *testing.T) {
	app := newApp(t, newAPI(t))

	form := url.Values{"email": {"jane@example.com"}, "password": {"pw"}}
	req := httptest.NewRequest(http.MethodPost, "http://localhost:3000/login?"+form.Encode(), nil)
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))

	values := make(map[string]string)
	for _, c := range rec.Result().Cookies() {
		values[c.Name] = c.Value
	}
	assert.Equal(t, "access-1", values["access.demo1234"])
	assert.Equal(t, "id-1", values["id.demo1234"])
	assert.Equal(t, "refresh-1", values["refresh.demo1234"])
}

func TestFactoryLogoutExpiresRequestCookies(t *testing.T) {
	app := newApp(t, newAPI(t))

	req := httptest.NewRequest(http.MethodPost, "http://localhost:3000/logout", nil)
	req.AddCookie(&http.Cookie{Name: "access.demo1234", Value: "access-1"})
	req.AddCookie(&http.Cookie{Name: "id.demo1234", Value: "id-1"})
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	expired := make(map[string]bool)
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 {
			expired[c.Name] = true
		}
	}
	assert.True(t, expired["access.demo1234"])
	assert.True(t, expired["id.demo1234"])
	assert.False(t, expired["refresh.demo1234"], "cookie absent from the request is left alone")
}

func TestFactoryRejectsInvalidConfig(t *testing.T) {
	f := &Factory{Config: goAuthClient.Config{}}
	req := httptest.NewRequest(http.MethodGet, "http://localhost:3000/", nil)
	_, _, err := f.Client(httptest.NewRecorder(), req)
	assert.Error(t, err)
}

func TestFactorySharesMetricsAcrossRequests(t *testing.T) {
	api := newAPI(t)
	f := &Factory{
		Config:     goAuthClient.Config{TenantID: "demo1234", BaseURL: api.URL + "/v0/"},
		HTTPClient: api.Client(),
		Metrics:    goAuthClient.NewMetrics(goAuthClient.MetricsConfig{Enabled: true}),
	}

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "http://localhost:3000/logout", nil)
		client, _, err := f.Client(httptest.NewRecorder(), req)
		require.NoError(t, err)
		require.NoError(t, client.Logout(req.Context(), goAuthClient.LogoutOptions{}))
	}

	assert.Equal(t, uint64(3), f.MetricsSnapshot().Counters[goAuthClient.MetricLogout])
}
