package httpbridge

import (
	"context"
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setCookies(rec *httptest.ResponseRecorder) map[string]*http.Cookie {
	out := make(map[string]*http.Cookie)
	for _, c := range rec.Result().Cookies() {
		out[c.Name+"|"+c.Domain+"|"+c.Path] = c
	}
	return out
}

func TestExchangeReadsRequestCookies(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "http://app.example.com/login", nil)
	r.AddCookie(&http.Cookie{Name: "access.demo1234", Value: "a1"})
	ex := NewExchange(httptest.NewRecorder(), r)

	v, ok := ex.Cookie("access.demo1234")
	assert.True(t, ok)
	assert.Equal(t, "a1", v)

	_, ok = ex.Cookie("id.demo1234")
	assert.False(t, ok)
}

func TestExchangeWritesShadowRequestCookies(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "http://app.example.com/login", nil)
	r.AddCookie(&http.Cookie{Name: "access.demo1234", Value: "old"})
	rec := httptest.NewRecorder()
	ex := NewExchange(rec, r)

	require.NoError(t, ex.SetCookie(&http.Cookie{Name: "access.demo1234", Value: "new", Path: "/"}))
	v, _ := ex.Cookie("access.demo1234")
	assert.Equal(t, "new", v)

	written := setCookies(rec)
	require.Contains(t, written, "access.demo1234||/")
	assert.Equal(t, "new", written["access.demo1234||/"].Value)
}

func TestExchangeRemoveOnlyKnownCookies(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "http://app.example.com/login", nil)
	r.AddCookie(&http.Cookie{Name: "access.demo1234", Value: "a1"})
	rec := httptest.NewRecorder()
	ex := NewExchange(rec, r)

	require.NoError(t, ex.RemoveCookie("access.demo1234", "", "/"))
	require.NoError(t, ex.RemoveCookie("access.demo1234", "", "/"))
	require.NoError(t, ex.RemoveCookie("access.demo1234", "app.example.com", "/"))
	require.NoError(t, ex.RemoveCookie("id.demo1234", "", "/"))

	headers := rec.Header().Values("Set-Cookie")
	assert.Len(t, headers, 2)

	_, ok := ex.Cookie("access.demo1234")
	assert.False(t, ok, "removed cookie must not fall back to the request value")
}

func TestExchangeURL(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "http://app.example.com/login?redirect=%2Fhome", nil)
	u := NewExchange(httptest.NewRecorder(), r).URL()
	assert.Equal(t, "http://app.example.com/login?redirect=%2Fhome", u.String())

	r.TLS = &tls.ConnectionState{}
	assert.Equal(t, "https", NewExchange(httptest.NewRecorder(), r).URL().Scheme)

	r = httptest.NewRequest(http.MethodGet, "http://10.0.0.5:8080/login", nil)
	r.Header.Set("X-Forwarded-Proto", "https")
	r.Header.Set("X-Forwarded-Host", "app.example.com")

	assert.Equal(t, "http://10.0.0.5:8080/login", NewExchange(httptest.NewRecorder(), r).URL().String())
	assert.Equal(t, "https://app.example.com/login",
		NewExchange(httptest.NewRecorder(), r, WithTrustForwarded()).URL().String())
}

func TestExchangeDefersRedirectUntilCommit(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "http://app.example.com/login", nil)
	rec := httptest.NewRecorder()
	ex := NewExchange(rec, r)

	assert.False(t, ex.Commit())

	require.NoError(t, ex.Navigate(context.Background(), "/dashboard"))
	target, ok := ex.Target()
	assert.True(t, ok)
	assert.Equal(t, "/dashboard", target)
	assert.Equal(t, http.StatusOK, rec.Code, "nothing written before Commit")

	assert.True(t, ex.Commit())
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))

	assert.ErrorIs(t, ex.Navigate(context.Background(), "/other"), ErrCommitted)
	assert.ErrorIs(t, ex.SetCookie(&http.Cookie{Name: "late", Value: "x"}), ErrCommitted)
}

func TestExchangeImmediateRedirect(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "http://app.example.com/", nil)
	rec := httptest.NewRecorder()
	ex := NewExchange(rec, r, WithImmediateRedirect(), WithRedirectStatus(http.StatusFound))

	require.NoError(t, ex.Navigate(context.Background(), "https://api.example.com/auth/google/login"))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://api.example.com/auth/google/login", rec.Header().Get("Location"))
}
