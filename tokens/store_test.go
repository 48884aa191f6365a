package tokens

import (
	"errors"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/MrEthical07/goAuthClient/browser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, rawURL string, live bool) (*Store, *browser.MemoryJar) {
	t.Helper()

	jar := browser.NewMemoryJar()
	loc := browser.MustStaticLocation(rawURL)
	store := NewStore(jar, loc, "t1", WithLiveMode(func() bool { return live }))
	return store, jar
}

func boolPtr(b bool) *bool { return &b }

func TestStoreNames(t *testing.T) {
	store, _ := newTestStore(t, "https://app.example.com/", true)

	assert.Equal(t, "access.t1", store.AccessTokenName())
	assert.Equal(t, "id.t1", store.IDTokenName())
	assert.Equal(t, "refresh.t1", store.RefreshTokenName())
}

func TestStoreSetMirrorsToCookie(t *testing.T) {
	for _, kind := range Kinds {
		store, jar := newTestStore(t, "https://app.example.com/", true)

		store.Set(kind, "value-"+kind.String())

		v, ok := jar.Cookie(store.Name(kind))
		require.True(t, ok, kind.String())
		assert.Equal(t, "value-"+kind.String(), v)

		fresh := NewStore(jar, browser.MustStaticLocation("https://app.example.com/"), "t1")
		assert.Equal(t, "value-"+kind.String(), fresh.Get(kind), "fresh store reads cookie")
	}
}

func TestStoreDefaultCookiePolicy(t *testing.T) {
	store, jar := newTestStore(t, "https://app.example.com/", true)
	store.SetAccessToken("a")

	c, ok := jar.Lookup("access.t1", "", "/")
	require.True(t, ok)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)

	testStore, testJar := newTestStore(t, "http://localhost:3000/", false)
	testStore.SetIDToken("i")
	c, ok = testJar.Lookup("id.t1", "", "/")
	require.True(t, ok)
	assert.False(t, c.Secure)
}

func TestStoreRefreshCookieAlwaysStrict(t *testing.T) {
	store, jar := newTestStore(t, "https://app.example.com/", true)

	for _, sameSite := range []string{"", "Lax", "None", "strict"} {
		store.SetIssued(&Issued{
			Refresh: &Issuance{
				Value:         "r-" + sameSite,
				CookieOptions: &CookieOptions{Secure: boolPtr(true), SameSite: sameSite, Expires: 30},
			},
		})
		c, ok := jar.Lookup("refresh.t1", "", "/")
		require.True(t, ok)
		assert.Equal(t, http.SameSiteStrictMode, c.SameSite, "sameSite=%q", sameSite)
	}

	store.SetRefreshToken("plain")
	c, ok := jar.Lookup("refresh.t1", "", "/")
	require.True(t, ok)
	assert.Equal(t, http.SameSiteStrictMode, c.SameSite)
}

func TestStoreIssuedOptionsOverrideDefaults(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	jar := browser.NewMemoryJar()
	store := NewStore(jar, browser.MustStaticLocation("https://app.example.com/"), "t1",
		WithClock(func() time.Time { return now }))

	store.SetIssued(&Issued{
		Access: &Issuance{
			Value:         "a",
			CookieOptions: &CookieOptions{Secure: boolPtr(false), SameSite: "Strict", Expires: 1, Path: "/app"},
		},
	})

	c, ok := jar.Lookup("access.t1", "", "/app")
	require.True(t, ok)
	assert.False(t, c.Secure)
	assert.Equal(t, http.SameSiteStrictMode, c.SameSite)
	assert.Equal(t, now.Add(24*time.Hour), c.Expires)

	// later writes reuse the recorded options
	store.SetAccessToken("b")
	c, ok = jar.Lookup("access.t1", "", "/app")
	require.True(t, ok)
	assert.Equal(t, "b", c.Value)
}

func TestStoreDeleteRemovesEveryCombination(t *testing.T) {
	store, jar := newTestStore(t, "https://app.example.com/account/login", true)
	page, _ := url.Parse("https://app.example.com/account/login")

	for _, kind := range Kinds {
		for _, target := range RemovalTargets(page) {
			require.NoError(t, jar.SetCookie(&http.Cookie{
				Name: store.Name(kind), Value: "stale", Domain: target.Domain, Path: target.Path,
			}))
		}
		store.Set(kind, "fresh")

		store.Delete(kind)

		_, ok := jar.Cookie(store.Name(kind))
		assert.False(t, ok, kind.String())
		assert.Equal(t, "", store.Get(kind))
	}
	assert.Empty(t, jar.Cookies())
}

func TestRemovalTargets(t *testing.T) {
	u, _ := url.Parse("https://app.example.com/login")
	targets := RemovalTargets(u)

	want := []CookieTarget{
		{"", ""}, {"", "/login"}, {"", "/"},
		{"app.example.com", ""}, {"app.example.com", "/login"}, {"app.example.com", "/"},
		{".app.example.com", ""}, {".app.example.com", "/login"}, {".app.example.com", "/"},
		{"example.com", ""}, {"example.com", "/login"}, {"example.com", "/"},
		{".example.com", ""}, {".example.com", "/login"}, {".example.com", "/"},
	}
	assert.Equal(t, want, targets)

	root, _ := url.Parse("https://example.com/")
	assert.Len(t, RemovalTargets(root), 6, "primary domain equals hostname and / dedupes")
}

func TestStoreClearAndReset(t *testing.T) {
	store, jar := newTestStore(t, "https://app.example.com/", true)
	store.SetIssued(&Issued{
		Access:  &Issuance{Value: "a"},
		ID:      &Issuance{Value: "i"},
		Refresh: &Issuance{Value: "r"},
	})
	require.Len(t, jar.Cookies(), 3)

	store.Reset("t2")
	assert.Equal(t, "access.t2", store.AccessTokenName())
	assert.Equal(t, "", store.AccessToken(), "new tenant has no cookie yet")

	store.Reset("t1")
	assert.Equal(t, "a", store.AccessToken(), "falls back to the t1 cookie")

	store.Clear()
	assert.Empty(t, jar.Cookies())
}

type failingJar struct{}

func (failingJar) Cookie(string) (string, bool) { return "", false }

func (failingJar) SetCookie(*http.Cookie) error { return errors.New("quota") }

func (failingJar) RemoveCookie(string, string, string) error { return errors.New("denied") }

func TestStoreSwallowsJarFailures(t *testing.T) {
	store := NewStore(failingJar{}, browser.MustStaticLocation("https://app.example.com/"), "t1")

	assert.NotPanics(t, func() {
		store.SetAccessToken("a")
		store.DeleteAccessToken()
		store.Clear()
	})
	assert.Equal(t, "", store.AccessToken())
}
